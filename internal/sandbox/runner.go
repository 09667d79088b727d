package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config tunes the runner.
type Config struct {
	// Python is the interpreter path. Default: "python3".
	Python string

	// Timeout is the wall-clock limit per execution. Default: 25s.
	Timeout time.Duration

	// MaxOutputBytes bounds captured stdout/stderr. Default: 64 KiB each.
	MaxOutputBytes int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Python:         "python3",
		Timeout:        25 * time.Second,
		MaxOutputBytes: 64 * 1024,
	}
}

// execFunc runs the interpreter on a harnessed script. Tests substitute a
// stub so screening and cleanup can be verified without a real interpreter.
type execFunc func(ctx context.Context, python, dir, scriptPath string, maxOutput int) (stderr []byte, err error)

// Runner executes untrusted generated source in an isolated child process.
// It is the sole filesystem/process boundary in the pipeline.
type Runner struct {
	cfg    Config
	logger *zap.Logger
	exec   execFunc

	probeOnce sync.Once
	probe     *ProbeResult
	probeErr  error
	probeRun  func(ctx context.Context, dir, scriptPath string) ([]byte, error)
}

// NewRunner creates a Runner.
func NewRunner(cfg Config, logger *zap.Logger) *Runner {
	if cfg.Python == "" {
		cfg.Python = "python3"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 25 * time.Second
	}
	if cfg.MaxOutputBytes <= 0 {
		cfg.MaxOutputBytes = 64 * 1024
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, logger: logger, exec: runPython}
}

// Execute screens, harnesses, and runs generated source, returning the PNG
// artifact bytes. All failures are *Error. Temporary files are deleted on
// every exit path, including timeout and mid-execution panics.
func (r *Runner) Execute(ctx context.Context, source, subtype string) ([]byte, error) {
	// Static screening happens before any process or file exists.
	if err := Screen(source, subtype); err != nil {
		r.logger.Warn("sandbox rejected source", zap.String("subtype", subtype), zap.Error(err))
		return nil, err
	}

	dir, err := os.MkdirTemp("", "diagramgen-"+uuid.NewString()[:8]+"-")
	if err != nil {
		return nil, fmt.Errorf("create sandbox dir: %w", err)
	}
	defer os.RemoveAll(dir)

	outputPath := filepath.Join(dir, "diagram.png")
	scriptPath := filepath.Join(dir, "render.py")

	script := Harness(source, subtype, outputPath)
	if err := os.WriteFile(scriptPath, []byte(script), 0o600); err != nil {
		return nil, fmt.Errorf("write sandbox script: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	start := time.Now()
	stderr, runErr := r.exec(runCtx, r.cfg.Python, dir, scriptPath, r.cfg.MaxOutputBytes)
	elapsed := time.Since(start)

	if runErr != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			r.logger.Warn("sandbox execution timed out",
				zap.String("subtype", subtype), zap.Duration("elapsed", elapsed))
			return nil, &Error{
				Kind:   ErrTimeout,
				Detail: fmt.Sprintf("killed after %s", r.cfg.Timeout),
			}
		}
		return nil, &Error{
			Kind:   ErrRuntime,
			Detail: "interpreter exited with error",
			Stderr: tail(stderr, 2000),
		}
	}

	image, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, &Error{
			Kind:   ErrRuntime,
			Detail: "no output artifact produced",
			Stderr: tail(stderr, 2000),
		}
	}

	r.logger.Debug("sandbox render complete",
		zap.String("subtype", subtype),
		zap.Duration("elapsed", elapsed),
		zap.Int("image_bytes", len(image)))

	return image, nil
}

// runPython is the real execFunc: isolated interpreter mode, scrubbed
// environment, working directory inside the sandbox dir. CommandContext
// kills the process group when the context expires.
func runPython(ctx context.Context, python, dir, scriptPath string, maxOutput int) ([]byte, error) {
	cmd := exec.CommandContext(ctx, python, "-I", scriptPath)
	cmd.Dir = dir
	// Scrubbed environment: no proxy vars, no user site-packages paths.
	cmd.Env = []string{
		"HOME=" + dir,
		"MPLCONFIGDIR=" + dir,
		"MPLBACKEND=Agg",
		"PYTHONDONTWRITEBYTECODE=1",
		"PATH=/usr/local/bin:/usr/bin:/bin",
	}
	cmd.WaitDelay = 2 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &stdout, n: maxOutput}
	cmd.Stderr = &limitedWriter{w: &stderr, n: maxOutput}

	err := cmd.Run()
	return stderr.Bytes(), err
}

// runPythonStdout runs a trusted script and returns its stdout. Only the
// probe uses it; generated source always goes through runPython.
func runPythonStdout(ctx context.Context, python, dir, scriptPath string, maxOutput int) ([]byte, error) {
	cmd := exec.CommandContext(ctx, python, "-I", scriptPath)
	cmd.Dir = dir
	cmd.Env = []string{
		"HOME=" + dir,
		"MPLCONFIGDIR=" + dir,
		"PYTHONDONTWRITEBYTECODE=1",
		"PATH=/usr/local/bin:/usr/bin:/bin",
	}
	cmd.WaitDelay = 2 * time.Second

	var stdout bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &stdout, n: maxOutput}

	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

// limitedWriter caps captured process output; overflow is discarded.
type limitedWriter struct {
	w io.Writer
	n int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if l.n <= 0 {
		return len(p), nil
	}
	if len(p) > l.n {
		p = p[:l.n]
	}
	written, err := l.w.Write(p)
	l.n -= written
	if err != nil {
		return written, err
	}
	return len(p), nil
}

func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
