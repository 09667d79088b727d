package taxonomy

import "github.com/vidyaai/diagramgen/internal/diagram"

// DiagramType describes one entry in the fixed classification taxonomy:
// a diagram kind within a domain, whether a generative image model tends to
// produce acceptable results for it, and the first-choice renderer.
type DiagramType struct {
	Name             string
	AISuitable       bool
	PreferredBackend diagram.Backend
}

// catalog is the fixed taxonomy: 8 domains, each with its enumerated
// diagram types. Order within a domain is the order types are listed in
// classification prompts.
var catalog = map[diagram.Domain][]DiagramType{
	diagram.DomainElectrical: {
		{Name: "circuit_diagram", AISuitable: false, PreferredBackend: diagram.BackendCircuit},
		{Name: "logic_gate_diagram", AISuitable: false, PreferredBackend: diagram.BackendCircuit},
		{Name: "signal_plot", AISuitable: false, PreferredBackend: diagram.BackendProcedural},
		{Name: "block_diagram", AISuitable: true, PreferredBackend: diagram.BackendMarkup},
	},
	diagram.DomainMechanical: {
		{Name: "free_body_diagram", AISuitable: false, PreferredBackend: diagram.BackendProcedural},
		{Name: "linkage_diagram", AISuitable: false, PreferredBackend: diagram.BackendProcedural},
		{Name: "pulley_system", AISuitable: true, PreferredBackend: diagram.BackendImage},
		{Name: "gear_train", AISuitable: true, PreferredBackend: diagram.BackendImage},
	},
	diagram.DomainComputerScience: {
		{Name: "binary_tree", AISuitable: false, PreferredBackend: diagram.BackendGraph},
		{Name: "linked_list", AISuitable: false, PreferredBackend: diagram.BackendGraph},
		{Name: "state_machine", AISuitable: false, PreferredBackend: diagram.BackendGraph},
		{Name: "network_topology", AISuitable: false, PreferredBackend: diagram.BackendGraph},
		{Name: "flowchart", AISuitable: true, PreferredBackend: diagram.BackendMarkup},
	},
	diagram.DomainPhysics: {
		{Name: "projectile_plot", AISuitable: false, PreferredBackend: diagram.BackendProcedural},
		{Name: "wave_plot", AISuitable: false, PreferredBackend: diagram.BackendProcedural},
		{Name: "ray_diagram", AISuitable: false, PreferredBackend: diagram.BackendProcedural},
		{Name: "field_line_diagram", AISuitable: true, PreferredBackend: diagram.BackendImage},
	},
	diagram.DomainChemistry: {
		{Name: "molecular_structure", AISuitable: true, PreferredBackend: diagram.BackendImage},
		{Name: "reaction_energy_plot", AISuitable: false, PreferredBackend: diagram.BackendProcedural},
		{Name: "apparatus_setup", AISuitable: true, PreferredBackend: diagram.BackendImage},
		{Name: "titration_curve", AISuitable: false, PreferredBackend: diagram.BackendProcedural},
	},
	diagram.DomainMathematics: {
		{Name: "function_plot", AISuitable: false, PreferredBackend: diagram.BackendProcedural},
		{Name: "geometry_figure", AISuitable: false, PreferredBackend: diagram.BackendProcedural},
		{Name: "statistical_chart", AISuitable: false, PreferredBackend: diagram.BackendProcedural},
		{Name: "vector_field", AISuitable: false, PreferredBackend: diagram.BackendProcedural},
	},
	diagram.DomainCivil: {
		{Name: "truss_diagram", AISuitable: false, PreferredBackend: diagram.BackendProcedural},
		{Name: "beam_loading_diagram", AISuitable: false, PreferredBackend: diagram.BackendProcedural},
		{Name: "cross_section", AISuitable: true, PreferredBackend: diagram.BackendImage},
	},
	diagram.DomainGeneral: {
		{Name: "block_diagram", AISuitable: true, PreferredBackend: diagram.BackendProcedural},
		{Name: "concept_map", AISuitable: false, PreferredBackend: diagram.BackendGraph},
		{Name: "timeline", AISuitable: true, PreferredBackend: diagram.BackendMarkup},
	},
}

// domainOrder fixes the enumeration order of domains in prompts.
var domainOrder = []diagram.Domain{
	diagram.DomainElectrical,
	diagram.DomainMechanical,
	diagram.DomainComputerScience,
	diagram.DomainPhysics,
	diagram.DomainChemistry,
	diagram.DomainMathematics,
	diagram.DomainCivil,
	diagram.DomainGeneral,
}

// Domains returns every domain in prompt order.
func Domains() []diagram.Domain {
	return domainOrder
}

// Types returns the diagram types for a domain, nil for unknown domains.
func Types(domain diagram.Domain) []DiagramType {
	return catalog[domain]
}

// Lookup returns the taxonomy entry for (domain, diagramType).
func Lookup(domain diagram.Domain, diagramType string) (DiagramType, bool) {
	for _, t := range catalog[domain] {
		if t.Name == diagramType {
			return t, true
		}
	}
	return DiagramType{}, false
}

// DefaultClassification is the hard-coded fallback when neither the model
// nor the keyword table can place a request.
func DefaultClassification() diagram.Classification {
	return diagram.Classification{
		Domain:           diagram.DomainGeneral,
		DiagramType:      "block_diagram",
		Complexity:       diagram.ComplexityModerate,
		AISuitable:       true,
		PreferredBackend: diagram.BackendProcedural,
	}
}
