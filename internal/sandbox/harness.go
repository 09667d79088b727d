package sandbox

import (
	"fmt"
	"regexp"
	"strings"
)

// The harness brackets generated source with non-negotiable boilerplate:
// non-interactive rendering, a minimum canvas and DPI floor, and a
// controlled output path. The generated source cannot override any of it —
// the prologue runs first and the epilogue claims the final artifact.

const (
	minFigWidth  = 8.0 // inches
	minFigHeight = 6.0
	minDPI       = 150
)

// reSaveTarget matches the first string-literal argument of savefig/save
// calls so the harness can redirect them to the controlled output path.
// Best-effort text rewriting: the epilogue saves the current figure anyway
// when the source never produced the artifact.
var reSaveTarget = regexp.MustCompile(`(\.\s*(?:savefig|save)\s*\(\s*)(?:"[^"]*"|'[^']*')`)

// Harness returns the full script to execute: prologue, rewritten source,
// epilogue.
func Harness(source, subtype, outputPath string) string {
	var b strings.Builder

	b.WriteString("import os\n")
	b.WriteString("import matplotlib\n")
	b.WriteString("matplotlib.use(\"Agg\")\n")
	b.WriteString("import matplotlib.pyplot as _dg_plt\n")
	fmt.Fprintf(&b, "_DG_OUT = %q\n", outputPath)
	fmt.Fprintf(&b, "_dg_plt.rcParams[\"figure.figsize\"] = (%g, %g)\n", minFigWidth, minFigHeight)
	fmt.Fprintf(&b, "_dg_plt.rcParams[\"figure.dpi\"] = %d\n", minDPI)
	fmt.Fprintf(&b, "_dg_plt.rcParams[\"savefig.dpi\"] = %d\n", minDPI)
	b.WriteString("_dg_savefig = _dg_plt.savefig\n")
	b.WriteString("def _dg_redirect(*args, **kwargs):\n")
	b.WriteString("    kwargs.pop(\"fname\", None)\n")
	fmt.Fprintf(&b, "    kwargs[\"dpi\"] = max(int(kwargs.get(\"dpi\") or %d), %d)\n", minDPI, minDPI)
	b.WriteString("    return _dg_savefig(_DG_OUT, **kwargs)\n")
	b.WriteString("_dg_plt.savefig = _dg_redirect\n")
	b.WriteString("\n")

	b.WriteString(rewriteSaveCalls(source))
	b.WriteString("\n\n")

	// Epilogue: if the source never saved, claim whatever figure exists.
	b.WriteString("if not os.path.exists(_DG_OUT):\n")
	b.WriteString("    try:\n")
	fmt.Fprintf(&b, "        _dg_savefig(_DG_OUT, dpi=%d, bbox_inches=\"tight\")\n", minDPI)
	b.WriteString("    except Exception:\n")
	b.WriteString("        pass\n")

	return b.String()
}

// rewriteSaveCalls redirects any quoted filename in savefig/save calls to
// the controlled output path variable.
func rewriteSaveCalls(source string) string {
	return reSaveTarget.ReplaceAllString(source, "${1}_DG_OUT")
}
