package interaction

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Spinner is a Progress that animates on a terminal and prints one line per
// message otherwise. Messages are shown in the order they arrive.
type Spinner struct {
	out      io.Writer
	animate  bool
	frames   []string
	interval time.Duration

	mu      sync.Mutex
	message string
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner creates a spinner writing to out. animate selects in-place redraws.
func NewSpinner(out io.Writer, animate bool) *Spinner {
	style := spinner.Dot
	return &Spinner{
		out:      out,
		animate:  animate,
		frames:   style.Frames,
		interval: style.FPS,
	}
}

// Start shows message and begins animating. A running spinner is stopped silently first.
func (s *Spinner) Start(message string) {
	s.halt()

	s.mu.Lock()
	s.message = message
	s.running = true
	if !s.animate {
		fmt.Fprintln(s.out, infoStyle.Render("◒")+" "+message)
		s.mu.Unlock()
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	go s.loop(stop, done)
}

// Update replaces the displayed message
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
	if !s.animate {
		fmt.Fprintln(s.out, hintStyle.Render("│")+" "+message)
	}
}

// Success stops the spinner with a success line
func (s *Spinner) Success(message string) {
	s.halt()
	fmt.Fprintln(s.out, successStyle.Render("✔")+" "+message)
}

// Fail stops the spinner with a failure line
func (s *Spinner) Fail(message string) {
	s.halt()
	fmt.Fprintln(s.out, errorStyle.Render("✖")+" "+message)
}

func (s *Spinner) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := s.interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	frame := 0
	for {
		s.mu.Lock()
		fmt.Fprintf(s.out, "\r\033[K%s %s", infoStyle.Render(s.frames[frame%len(s.frames)]), s.message)
		s.mu.Unlock()
		frame++

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// halt stops the animation and clears the line
func (s *Spinner) halt() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
		fmt.Fprint(s.out, "\r\033[K")
	}
}
