package taxonomy

import (
	"strings"

	"github.com/vidyaai/diagramgen/internal/diagram"
)

// keywordRule maps question-text keywords to a taxonomy entry. Rules run in
// priority order; the first keyword hit wins. More specific vocabulary sits
// above generic terms so "binary tree" never lands in mathematics via "node
// values".
type keywordRule struct {
	Domain      diagram.Domain
	DiagramType string
	Keywords    []string
}

var keywordRules = []keywordRule{
	{diagram.DomainElectrical, "logic_gate_diagram", []string{"cmos", "nand gate", "nor gate", "xor gate", "logic gate", "truth table", "inverter"}},
	{diagram.DomainElectrical, "circuit_diagram", []string{"circuit", "resistor", "capacitor", "inductor", "op-amp", "opamp", "voltage source", "transistor", "diode", "kirchhoff"}},
	{diagram.DomainComputerScience, "binary_tree", []string{"binary tree", "bst", "avl", "heap", "tree traversal"}},
	{diagram.DomainComputerScience, "linked_list", []string{"linked list", "doubly linked", "singly linked"}},
	{diagram.DomainComputerScience, "state_machine", []string{"state machine", "automaton", "dfa", "nfa", "state transition"}},
	{diagram.DomainComputerScience, "network_topology", []string{"network topology", "router", "subnet", "lan"}},
	{diagram.DomainComputerScience, "flowchart", []string{"flowchart", "flow chart", "pseudocode"}},
	{diagram.DomainMechanical, "free_body_diagram", []string{"free body", "free-body", "normal force", "friction force", "incline"}},
	{diagram.DomainMechanical, "pulley_system", []string{"pulley", "atwood"}},
	{diagram.DomainMechanical, "gear_train", []string{"gear", "gear ratio"}},
	{diagram.DomainMechanical, "linkage_diagram", []string{"linkage", "four-bar", "crank"}},
	{diagram.DomainPhysics, "ray_diagram", []string{"ray diagram", "lens", "mirror", "refraction", "focal"}},
	{diagram.DomainPhysics, "wave_plot", []string{"wave", "oscillation", "frequency spectrum", "standing wave"}},
	{diagram.DomainPhysics, "projectile_plot", []string{"projectile", "trajectory", "launch angle"}},
	{diagram.DomainPhysics, "field_line_diagram", []string{"field lines", "electric field", "magnetic field", "equipotential"}},
	{diagram.DomainChemistry, "molecular_structure", []string{"molecule", "lewis structure", "molecular", "benzene", "bond angle", "isomer"}},
	{diagram.DomainChemistry, "titration_curve", []string{"titration", "equivalence point"}},
	{diagram.DomainChemistry, "reaction_energy_plot", []string{"activation energy", "reaction coordinate", "enthalpy"}},
	{diagram.DomainChemistry, "apparatus_setup", []string{"distillation", "burette", "flask", "apparatus"}},
	{diagram.DomainCivil, "truss_diagram", []string{"truss", "pin joint", "method of joints"}},
	{diagram.DomainCivil, "beam_loading_diagram", []string{"beam", "shear diagram", "bending moment", "cantilever", "distributed load"}},
	{diagram.DomainMathematics, "function_plot", []string{"graph the function", "parabola", "sine", "cosine", "polynomial", "asymptote"}},
	{diagram.DomainMathematics, "geometry_figure", []string{"triangle", "quadrilateral", "circle theorem", "angle bisector", "polygon"}},
	{diagram.DomainMathematics, "statistical_chart", []string{"histogram", "box plot", "scatter plot", "bar chart"}},
	{diagram.DomainMathematics, "vector_field", []string{"vector field", "gradient field"}},
	{diagram.DomainGeneral, "timeline", []string{"timeline"}},
	{diagram.DomainGeneral, "concept_map", []string{"concept map", "mind map"}},
}

// domainHints maps upstream hint strings to a domain prior. A hint alone
// never outranks a keyword hit from the question text itself.
var domainHints = map[string]diagram.Domain{
	"electrical":       diagram.DomainElectrical,
	"electronics":      diagram.DomainElectrical,
	"mechanical":       diagram.DomainMechanical,
	"computer science": diagram.DomainComputerScience,
	"computer_science": diagram.DomainComputerScience,
	"programming":      diagram.DomainComputerScience,
	"physics":          diagram.DomainPhysics,
	"chemistry":        diagram.DomainChemistry,
	"math":             diagram.DomainMathematics,
	"mathematics":      diagram.DomainMathematics,
	"civil":            diagram.DomainCivil,
}

// KeywordClassify is the deterministic fallback classifier. It always
// succeeds: a keyword hit yields that taxonomy entry, an applicable domain
// hint yields the domain's first type, and anything else gets the hard
// default.
func KeywordClassify(questionText, domainHint string) diagram.Classification {
	text := strings.ToLower(questionText)

	for _, rule := range keywordRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return classificationFor(rule.Domain, rule.DiagramType, text)
			}
		}
	}

	if d, ok := domainHints[strings.ToLower(strings.TrimSpace(domainHint))]; ok {
		types := Types(d)
		return classificationFor(d, types[0].Name, text)
	}

	return DefaultClassification()
}

func classificationFor(domain diagram.Domain, diagramType, loweredText string) diagram.Classification {
	entry, ok := Lookup(domain, diagramType)
	if !ok {
		return DefaultClassification()
	}
	return diagram.Classification{
		Domain:           domain,
		DiagramType:      diagramType,
		Complexity:       estimateComplexity(loweredText),
		AISuitable:       entry.AISuitable,
		PreferredBackend: entry.PreferredBackend,
	}
}

// estimateComplexity is a crude word-count proxy; the model call grades
// complexity properly when it is available.
func estimateComplexity(loweredText string) diagram.Complexity {
	words := len(strings.Fields(loweredText))
	switch {
	case words < 25:
		return diagram.ComplexitySimple
	case words < 80:
		return diagram.ComplexityModerate
	default:
		return diagram.ComplexityComplex
	}
}
