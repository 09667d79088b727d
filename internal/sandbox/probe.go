package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProbeResult is the sandbox interpreter's self-description: which renderer
// toolchains are installed, at what versions, and which schematic element
// symbols actually exist. Generation prompts embed the element list so the
// model can only name symbols the renderer has.
type ProbeResult struct {
	PythonOK          bool     `json:"python_ok"`
	MatplotlibVersion string   `json:"matplotlib"`
	SchemdrawVersion  string   `json:"schemdraw"`
	NetworkxVersion   string   `json:"networkx"`
	SchemdrawElements []string `json:"schemdraw_elements"`
}

// probeScript prints a single JSON object; missing toolchains report empty
// versions rather than failing the probe.
const probeScript = `import json
out = {"python_ok": True, "matplotlib": "", "schemdraw": "", "networkx": "", "schemdraw_elements": []}
try:
    import matplotlib
    out["matplotlib"] = matplotlib.__version__
except Exception:
    pass
try:
    import schemdraw
    import schemdraw.elements as elm
    out["schemdraw"] = schemdraw.__version__
    out["schemdraw_elements"] = sorted(n for n in dir(elm) if n[:1].isupper())
except Exception:
    pass
try:
    import networkx
    out["networkx"] = networkx.__version__
except Exception:
    pass
print(json.dumps(out))
`

// Probe introspects the sandbox interpreter once per Runner and caches the
// result, error included. Safe for concurrent callers. Callers that see an
// error fall back to static symbol tables and keep rendering.
func (r *Runner) Probe(ctx context.Context) (*ProbeResult, error) {
	r.probeOnce.Do(func() {
		r.probe, r.probeErr = r.runProbe(ctx)
	})
	return r.probe, r.probeErr
}

func (r *Runner) runProbe(ctx context.Context) (*ProbeResult, error) {
	dir, err := os.MkdirTemp("", "diagramgen-probe-"+uuid.NewString()[:8])
	if err != nil {
		return nil, fmt.Errorf("create probe dir: %w", err)
	}
	defer os.RemoveAll(dir)

	scriptPath := filepath.Join(dir, "probe.py")
	if err := os.WriteFile(scriptPath, []byte(probeScript), 0o600); err != nil {
		return nil, fmt.Errorf("write probe script: %w", err)
	}

	probeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	stdout, err := r.probeExec(probeCtx, dir, scriptPath)
	if err != nil {
		return nil, fmt.Errorf("probe interpreter %q: %w", r.cfg.Python, err)
	}

	var result ProbeResult
	if err := json.Unmarshal(stdout, &result); err != nil {
		return nil, fmt.Errorf("parse probe output: %w", err)
	}

	r.logger.Info("sandbox toolchain probed",
		zap.String("matplotlib", result.MatplotlibVersion),
		zap.String("schemdraw", result.SchemdrawVersion),
		zap.String("networkx", result.NetworkxVersion),
		zap.Int("schemdraw_elements", len(result.SchemdrawElements)))

	return &result, nil
}

// probeExec mirrors the execution seam but captures stdout.
func (r *Runner) probeExec(ctx context.Context, dir, scriptPath string) ([]byte, error) {
	if r.probeRun != nil {
		return r.probeRun(ctx, dir, scriptPath)
	}
	return runPythonStdout(ctx, r.cfg.Python, dir, scriptPath, r.cfg.MaxOutputBytes)
}
