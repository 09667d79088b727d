package sandbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

// stubExec replaces the interpreter boundary. It records invocations and the
// sandbox dir so tests can verify screening and cleanup without Python.
type stubExec struct {
	calls  int
	dir    string
	script string

	produceArtifact bool
	stderr          []byte
	err             error
	waitForDeadline bool
}

func (s *stubExec) run(ctx context.Context, python, dir, scriptPath string, maxOutput int) ([]byte, error) {
	s.calls++
	s.dir = dir
	if data, err := os.ReadFile(scriptPath); err == nil {
		s.script = string(data)
	}
	if s.waitForDeadline {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.produceArtifact {
		if err := os.WriteFile(filepath.Join(dir, "diagram.png"), []byte("\x89PNG fake"), 0o600); err != nil {
			return nil, err
		}
	}
	return s.stderr, s.err
}

func newTestRunner(stub *stubExec) *Runner {
	r := NewRunner(DefaultConfig(), zap.NewNop())
	r.exec = stub.run
	return r
}

func TestExecute_DisallowedSourceNeverSpawns(t *testing.T) {
	stub := &stubExec{}
	r := newTestRunner(stub)

	_, err := r.Execute(context.Background(), "import subprocess\n", "pyplot")
	var sbErr *Error
	if !errors.As(err, &sbErr) || sbErr.Kind != ErrDisallowedPattern {
		t.Fatalf("expected disallowed_pattern, got: %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("interpreter was invoked %d times for rejected source", stub.calls)
	}
}

func TestExecute_ReturnsArtifactAndCleansUp(t *testing.T) {
	stub := &stubExec{produceArtifact: true}
	r := newTestRunner(stub)

	image, err := r.Execute(context.Background(), "import math\nprint(math.pi)\n", "pyplot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(image) == 0 {
		t.Fatal("expected artifact bytes")
	}
	if stub.calls != 1 {
		t.Fatalf("expected one interpreter invocation, got %d", stub.calls)
	}
	if _, statErr := os.Stat(stub.dir); !os.IsNotExist(statErr) {
		t.Fatalf("sandbox dir %s survived Execute", stub.dir)
	}
}

func TestExecute_CleansUpOnRuntimeError(t *testing.T) {
	stub := &stubExec{stderr: []byte("Traceback: NameError"), err: errors.New("exit status 1")}
	r := newTestRunner(stub)

	_, err := r.Execute(context.Background(), "import math\n", "pyplot")
	var sbErr *Error
	if !errors.As(err, &sbErr) || sbErr.Kind != ErrRuntime {
		t.Fatalf("expected runtime_error, got: %v", err)
	}
	if !strings.Contains(sbErr.Stderr, "NameError") {
		t.Fatalf("stderr tail not captured: %q", sbErr.Stderr)
	}
	if _, statErr := os.Stat(stub.dir); !os.IsNotExist(statErr) {
		t.Fatalf("sandbox dir %s survived failed Execute", stub.dir)
	}
}

func TestExecute_TimeoutClassifiedAndCleansUp(t *testing.T) {
	stub := &stubExec{waitForDeadline: true}
	cfg := DefaultConfig()
	cfg.Timeout = 10 * time.Millisecond
	r := NewRunner(cfg, zap.NewNop())
	r.exec = stub.run

	_, err := r.Execute(context.Background(), "import math\n", "pyplot")
	var sbErr *Error
	if !errors.As(err, &sbErr) || sbErr.Kind != ErrTimeout {
		t.Fatalf("expected timeout, got: %v", err)
	}
	if _, statErr := os.Stat(stub.dir); !os.IsNotExist(statErr) {
		t.Fatalf("sandbox dir %s survived timed-out Execute", stub.dir)
	}
}

func TestExecute_MissingArtifactIsRuntimeError(t *testing.T) {
	stub := &stubExec{} // exits cleanly, writes nothing
	r := newTestRunner(stub)

	_, err := r.Execute(context.Background(), "import math\n", "pyplot")
	var sbErr *Error
	if !errors.As(err, &sbErr) || sbErr.Kind != ErrRuntime {
		t.Fatalf("expected runtime_error for missing artifact, got: %v", err)
	}
}

func TestExecute_ScriptIsHarnessed(t *testing.T) {
	stub := &stubExec{produceArtifact: true}
	r := newTestRunner(stub)

	source := "import matplotlib.pyplot as plt\nplt.plot([1, 2])\nplt.savefig(\"mine.png\")\n"
	if _, err := r.Execute(context.Background(), source, "pyplot"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stub.script, `matplotlib.use("Agg")`) {
		t.Fatal("harness prologue missing Agg backend")
	}
	if strings.Contains(stub.script, `"mine.png"`) {
		t.Fatal("savefig target was not redirected")
	}
	if !strings.Contains(stub.script, "_DG_OUT") {
		t.Fatal("harness output redirect missing")
	}
}

func TestHarness_RewritesSaveCalls(t *testing.T) {
	tests := []struct {
		name   string
		source string
		gone   string
	}{
		{"savefig double quotes", `plt.savefig("fig.png", dpi=100)`, `"fig.png"`},
		{"savefig single quotes", `fig.savefig('circuit.png')`, `'circuit.png'`},
		{"schemdraw save", `d.save('out.svg')`, `'out.svg'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rewriteSaveCalls(tt.source)
			if strings.Contains(got, tt.gone) {
				t.Fatalf("literal target survived rewrite: %s", got)
			}
			if !strings.Contains(got, "_DG_OUT") {
				t.Fatalf("rewrite did not insert redirect: %s", got)
			}
		})
	}
}

func TestProbe_ParsesAndCaches(t *testing.T) {
	r := NewRunner(DefaultConfig(), zap.NewNop())
	probes := 0
	r.probeRun = func(ctx context.Context, dir, scriptPath string) ([]byte, error) {
		probes++
		return []byte(`{"python_ok": true, "matplotlib": "3.9.2", "schemdraw": "0.19", "networkx": "", "schemdraw_elements": ["Capacitor", "Resistor"]}`), nil
	}

	got, err := r.Probe(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.PythonOK || got.SchemdrawVersion != "0.19" || len(got.SchemdrawElements) != 2 {
		t.Fatalf("unexpected probe result: %+v", got)
	}

	if _, err := r.Probe(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if probes != 1 {
		t.Fatalf("probe ran %d times, want cached single run", probes)
	}
}

// Batch runs share one Runner, so the first renders can all hit Probe at
// once. Run under the race detector.
func TestProbe_ConcurrentCallersShareOneRun(t *testing.T) {
	r := NewRunner(DefaultConfig(), zap.NewNop())
	var probes atomic.Int64
	r.probeRun = func(ctx context.Context, dir, scriptPath string) ([]byte, error) {
		probes.Add(1)
		return []byte(`{"python_ok": true, "matplotlib": "3.9.2", "schemdraw": "", "networkx": "", "schemdraw_elements": []}`), nil
	}

	const callers = 8
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := r.Probe(context.Background())
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if got == nil || !got.PythonOK {
				t.Errorf("unexpected probe result: %+v", got)
			}
		}()
	}
	wg.Wait()

	if probes.Load() != 1 {
		t.Fatalf("probe ran %d times, want exactly one shared run", probes.Load())
	}
}

func TestProbe_FailurePropagates(t *testing.T) {
	r := NewRunner(DefaultConfig(), zap.NewNop())
	r.probeRun = func(ctx context.Context, dir, scriptPath string) ([]byte, error) {
		return nil, errors.New("exec: \"python3\": executable file not found")
	}
	if _, err := r.Probe(context.Background()); err == nil {
		t.Fatal("expected probe failure")
	}
}
