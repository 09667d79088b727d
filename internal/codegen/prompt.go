package codegen

import (
	"fmt"
	"strings"
)

// Structural rules shared by every code-producing subtype. Injected into
// each system prompt so the model cannot negotiate them away per request.
const structuralRules = `Structural rules, all mandatory:
- Canvas at least 8x6 inches (or 800x600 pixels for SVG).
- Label every axis, component, node, and force with its name and given value.
- Use only given quantities. NEVER compute, derive, or display the value the
  question asks for. The diagram sets up the problem; it must not solve it.
- Produce exactly one figure and save it exactly once.
- No titles that restate the full question text; a short descriptive title only.`

var systemPrompts = map[string]string{
	"pyplot": `You write matplotlib Python for STEM assignment diagrams.
Output a single fenced python code block and nothing else.
Allowed imports: matplotlib, mpl_toolkits, numpy, math.
Save the figure with plt.savefig("diagram.png", bbox_inches="tight").
` + structuralRules,

	"schemdraw": `You write schemdraw Python for electrical circuit schematics.
Output a single fenced python code block and nothing else.
Allowed imports: schemdraw, matplotlib, math.
Build the drawing with "with schemdraw.Drawing() as d:" and save it with
d.save("diagram.png").
Use only element names from the provided list; inventing an element name
fails the render.
` + structuralRules,

	"schemdraw-logic": `You write schemdraw Python for digital logic diagrams.
Output a single fenced python code block and nothing else.
Allowed imports: schemdraw (including schemdraw.logic), matplotlib, math.
Import gates as "from schemdraw import logic" and use logic.And, logic.Or,
logic.Not and the other gates from the provided list. Save the drawing with
d.save("diagram.png").
` + structuralRules,

	"networkx": `You write networkx + matplotlib Python for graph and tree diagrams.
Output a single fenced python code block and nothing else.
Allowed imports: networkx, matplotlib, numpy, math.
Use an explicit position dict or a deterministic layout with a fixed seed so
the drawing is reproducible. Draw node and edge labels. Save with
plt.savefig("diagram.png", bbox_inches="tight").
` + structuralRules,

	"svg": `You write complete standalone SVG documents for simple structural
diagrams: block diagrams, flowcharts, timelines.
Output one fenced svg code block containing a single <svg> element and
nothing else. No scripts, no external references, no embedded images.
Set explicit width and height of at least 800x600 and a matching viewBox.
Use <text> elements for every label; no label may rely on color alone.
` + structuralRules,
}

// buildPrompt assembles the generation request for a code or markup
// subtype. The corrected description, when present, replaces the original
// description and the failure context is spelled out so the model fixes
// rather than repeats.
func buildPrompt(in Input, symbols *SymbolTable) (system, user string) {
	system, ok := systemPrompts[in.Route.Subtype]
	if !ok {
		system = systemPrompts["pyplot"]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Question:\n%s\n\n", in.Request.QuestionText)

	desc := in.Request.DiagramDescription()
	if in.CorrectedDescription != "" {
		desc = in.CorrectedDescription
		b.WriteString("A previous attempt was rejected by review. ")
		b.WriteString("Follow this corrected description exactly:\n")
	} else {
		b.WriteString("Diagram to produce:\n")
	}
	b.WriteString(desc)
	b.WriteString("\n")

	if in.Route.Guidance != "" {
		fmt.Fprintf(&b, "\nStyle guidance:\n%s\n", in.Route.Guidance)
	}

	if in.Classification.Complexity != "" {
		fmt.Fprintf(&b, "\nComplexity: %s\n", in.Classification.Complexity)
	}

	if strings.HasPrefix(in.Route.Subtype, "schemdraw") && symbols != nil {
		fmt.Fprintf(&b, "\nValid element names:\n%s\n", strings.Join(symbols.List(), ", "))
	}

	return system, b.String()
}
