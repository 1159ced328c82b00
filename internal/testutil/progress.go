package testutil

import (
	"sync"
)

// ProgressEvent is one call recorded by RecordingProgress
type ProgressEvent struct {
	Kind    string // start, update, success, fail
	Message string
}

// RecordingProgress is an interaction.Progress that records every call
type RecordingProgress struct {
	mu     sync.Mutex
	events []ProgressEvent
}

// NewRecordingProgress creates an empty recorder
func NewRecordingProgress() *RecordingProgress {
	return &RecordingProgress{}
}

func (r *RecordingProgress) Start(message string)   { r.record("start", message) }
func (r *RecordingProgress) Update(message string)  { r.record("update", message) }
func (r *RecordingProgress) Success(message string) { r.record("success", message) }
func (r *RecordingProgress) Fail(message string)    { r.record("fail", message) }

// Events returns the recorded calls in order
func (r *RecordingProgress) Events() []ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ProgressEvent(nil), r.events...)
}

// Messages returns the messages of the recorded calls of kind, in order
func (r *RecordingProgress) Messages(kind string) []string {
	var out []string
	for _, e := range r.Events() {
		if e.Kind == kind {
			out = append(out, e.Message)
		}
	}
	return out
}

func (r *RecordingProgress) record(kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ProgressEvent{Kind: kind, Message: message})
}
