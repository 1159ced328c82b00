// Package terraform drives the terraform binary that provisions the edge
// cache infrastructure.
package terraform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/orion-edge/orion-cli/pkg/logger"
)

// DefaultBinary is looked up on $PATH when no binary is configured
const DefaultBinary = "terraform"

// Target is a working directory holding the infrastructure sources,
// plus the local state file used for apply, destroy and output.
type Target struct {
	Dir       string
	StateFile string
}

// Invocation carries per-command inputs. Env is the complete environment of
// the child process; nothing is inherited implicitly.
type Invocation struct {
	Vars   map[string]string
	Env    []string
	OnLine func(line string)
}

// IExecutor defines the terraform commands used by the provisioner
type IExecutor interface {
	Init(ctx context.Context, target Target, inv Invocation) error
	Apply(ctx context.Context, target Target, inv Invocation) error
	Destroy(ctx context.Context, target Target, inv Invocation) error
	Output(ctx context.Context, target Target, inv Invocation) (map[string]string, error)
}

// Executor wraps the terraform binary
type Executor struct {
	binaryPath string
	waitDelay  time.Duration
	logger     logger.Logger
}

var _ IExecutor = (*Executor)(nil)

// NewExecutor creates an executor. An empty binaryPath means DefaultBinary.
func NewExecutor(binaryPath string, log logger.Logger) *Executor {
	if binaryPath == "" {
		binaryPath = DefaultBinary
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Executor{
		binaryPath: binaryPath,
		waitDelay:  10 * time.Second,
		logger:     log,
	}
}

// BinaryPath returns the configured terraform executable
func (e *Executor) BinaryPath() string {
	return e.binaryPath
}

// Init runs terraform init. Safe to re-run.
func (e *Executor) Init(ctx context.Context, target Target, inv Invocation) error {
	args := []string{"init", "-input=false", "-no-color"}
	if _, stderr, err := e.run(ctx, target.Dir, args, inv); err != nil {
		return errors.Wrapf(err, "terraform init: %s", strings.TrimSpace(stderr))
	}
	return nil
}

// Apply creates or updates the infrastructure without interactive approval
func (e *Executor) Apply(ctx context.Context, target Target, inv Invocation) error {
	args := []string{"apply", "-input=false", "-no-color", "-auto-approve"}
	args = appendStateArg(args, target)
	args = appendVarArgs(args, inv.Vars)

	if _, stderr, err := e.run(ctx, target.Dir, args, inv); err != nil {
		return errors.Wrapf(err, "terraform apply: %s", strings.TrimSpace(stderr))
	}
	return nil
}

// Destroy tears down everything recorded in the state file
func (e *Executor) Destroy(ctx context.Context, target Target, inv Invocation) error {
	args := []string{"destroy", "-input=false", "-no-color", "-auto-approve"}
	args = appendStateArg(args, target)
	args = appendVarArgs(args, inv.Vars)

	if _, stderr, err := e.run(ctx, target.Dir, args, inv); err != nil {
		return errors.Wrapf(err, "terraform destroy: %s", strings.TrimSpace(stderr))
	}
	return nil
}

type outputEntry struct {
	Value     interface{} `json:"value"`
	Sensitive bool        `json:"sensitive"`
}

// Output reads the state outputs. Object values are flattened into dotted
// keys, so {"cdn_service": {"id": "x"}} becomes "cdn_service.id" = "x".
func (e *Executor) Output(ctx context.Context, target Target, inv Invocation) (map[string]string, error) {
	args := []string{"output", "-json", "-no-color"}
	args = appendStateArg(args, target)

	// stdout is JSON, not progress
	inv.OnLine = nil
	stdout, stderr, err := e.run(ctx, target.Dir, args, inv)
	if err != nil {
		return nil, errors.Wrapf(err, "terraform output: %s", strings.TrimSpace(stderr))
	}

	dec := json.NewDecoder(strings.NewReader(stdout))
	dec.UseNumber()
	var outputs map[string]outputEntry
	if err := dec.Decode(&outputs); err != nil {
		return nil, errors.Wrap(err, "parse terraform output JSON")
	}

	result := make(map[string]string, len(outputs))
	for name, entry := range outputs {
		flatten(name, entry.Value, result)
	}
	return result, nil
}

func (e *Executor) buildCommand(ctx context.Context, dir string, args []string, env []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, e.binaryPath, args...)
	cmd.Dir = dir
	cmd.Env = append([]string(nil), env...)
	setProcessGroup(cmd)
	cmd.WaitDelay = e.waitDelay
	return cmd
}

// run executes a terraform command. stdout lines are forwarded to
// inv.OnLine as they arrive; both streams are logged and captured.
func (e *Executor) run(ctx context.Context, dir string, args []string, inv Invocation) (stdout, stderr string, err error) {
	cmd := e.buildCommand(ctx, dir, args, inv.Env)

	var stdoutBuf, stderrBuf bytes.Buffer
	stdoutLW := newLineWriter(func(line string) {
		e.logger.Debug(line, logger.String("source", "terraform"), logger.String("stream", "stdout"))
		if inv.OnLine != nil {
			inv.OnLine(line)
		}
	})
	stderrLW := newLineWriter(func(line string) {
		e.logger.Warn(line, logger.String("source", "terraform"), logger.String("stream", "stderr"))
	})
	cmd.Stdout = io.MultiWriter(&stdoutBuf, stdoutLW)
	cmd.Stderr = io.MultiWriter(&stderrBuf, stderrLW)

	// Arguments and env may carry credentials; only the subcommand is logged.
	if len(args) > 0 {
		e.logger.Info("Executing terraform command", logger.String("subcommand", args[0]))
	}

	err = cmd.Run()
	stdoutLW.Close()
	stderrLW.Close()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			e.logger.Warn("Terraform command failed",
				logger.String("subcommand", args[0]),
				logger.Int("exit_code", exitErr.ExitCode()),
			)
		}
		return stdout, stderr, err
	}
	return stdout, stderr, nil
}

func appendStateArg(args []string, target Target) []string {
	if target.StateFile == "" {
		return args
	}
	return append(args, "-state="+target.StateFile)
}

// appendVarArgs appends -var key=value arguments, sorted for deterministic
// command lines. Secrets belong in TF_VAR_* env entries instead.
func appendVarArgs(args []string, vars map[string]string) []string {
	if len(vars) == 0 {
		return args
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		args = append(args, "-var", k+"="+vars[k])
	}
	return args
}

func flatten(prefix string, value interface{}, out map[string]string) {
	switch v := value.(type) {
	case map[string]interface{}:
		for k, child := range v {
			flatten(prefix+"."+k, child, out)
		}
	case []interface{}:
		for i, child := range v {
			flatten(fmt.Sprintf("%s.%d", prefix, i), child, out)
		}
	case nil:
		out[prefix] = ""
	case string:
		out[prefix] = v
	default:
		out[prefix] = fmt.Sprint(v)
	}
}

// lineWriter buffers writes and calls fn once per complete, non-empty line
type lineWriter struct {
	buf []byte
	fn  func(string)
}

func newLineWriter(fn func(string)) *lineWriter {
	return &lineWriter{fn: fn}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		idx := bytes.IndexByte(w.buf, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimRight(string(w.buf[:idx]), "\r")
		w.buf = w.buf[idx+1:]
		if strings.TrimSpace(line) != "" {
			w.fn(line)
		}
	}
	return len(p), nil
}

// Close flushes an incomplete last line. Calling it twice is harmless.
func (w *lineWriter) Close() {
	if len(w.buf) > 0 {
		line := string(w.buf)
		w.buf = nil
		if strings.TrimSpace(line) != "" {
			w.fn(line)
		}
	}
}
