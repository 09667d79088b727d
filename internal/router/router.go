package router

import "github.com/vidyaai/diagramgen/internal/diagram"

// Route is the rendering strategy for one (domain, diagram type) pair.
type Route struct {
	Backend diagram.Backend

	// Subtype selects the renderer flavor within the backend: "pyplot",
	// "schemdraw", "networkx", "svg", or "imagen".
	Subtype string

	// Guidance is opaque per-domain style text injected into generation
	// prompts. The router never interprets it.
	Guidance string
}

type routeKey struct {
	domain      diagram.Domain
	diagramType string
}

// routes is the static routing table. Unmatched keys resolve to
// defaultRoute. Pure data: no I/O, no fallthrough logic beyond the default.
var routes = map[routeKey]Route{
	{diagram.DomainElectrical, "circuit_diagram"}:    {diagram.BackendCircuit, "schemdraw", ""},
	{diagram.DomainElectrical, "logic_gate_diagram"}: {diagram.BackendCircuit, "schemdraw-logic", ""},
	{diagram.DomainElectrical, "signal_plot"}:        {diagram.BackendProcedural, "pyplot", ""},
	{diagram.DomainElectrical, "block_diagram"}:      {diagram.BackendMarkup, "svg", ""},

	{diagram.DomainMechanical, "free_body_diagram"}: {diagram.BackendProcedural, "pyplot", ""},
	{diagram.DomainMechanical, "linkage_diagram"}:   {diagram.BackendProcedural, "pyplot", ""},
	{diagram.DomainMechanical, "pulley_system"}:     {diagram.BackendImage, "imagen", ""},
	{diagram.DomainMechanical, "gear_train"}:        {diagram.BackendImage, "imagen", ""},

	{diagram.DomainComputerScience, "binary_tree"}:      {diagram.BackendGraph, "networkx", ""},
	{diagram.DomainComputerScience, "linked_list"}:      {diagram.BackendGraph, "networkx", ""},
	{diagram.DomainComputerScience, "state_machine"}:    {diagram.BackendGraph, "networkx", ""},
	{diagram.DomainComputerScience, "network_topology"}: {diagram.BackendGraph, "networkx", ""},
	{diagram.DomainComputerScience, "flowchart"}:        {diagram.BackendMarkup, "svg", ""},

	{diagram.DomainPhysics, "projectile_plot"}:    {diagram.BackendProcedural, "pyplot", ""},
	{diagram.DomainPhysics, "wave_plot"}:          {diagram.BackendProcedural, "pyplot", ""},
	{diagram.DomainPhysics, "ray_diagram"}:        {diagram.BackendProcedural, "pyplot", ""},
	{diagram.DomainPhysics, "field_line_diagram"}: {diagram.BackendImage, "imagen", ""},

	{diagram.DomainChemistry, "molecular_structure"}:  {diagram.BackendImage, "imagen", ""},
	{diagram.DomainChemistry, "reaction_energy_plot"}: {diagram.BackendProcedural, "pyplot", ""},
	{diagram.DomainChemistry, "apparatus_setup"}:      {diagram.BackendImage, "imagen", ""},
	{diagram.DomainChemistry, "titration_curve"}:      {diagram.BackendProcedural, "pyplot", ""},

	{diagram.DomainMathematics, "function_plot"}:     {diagram.BackendProcedural, "pyplot", ""},
	{diagram.DomainMathematics, "geometry_figure"}:   {diagram.BackendProcedural, "pyplot", ""},
	{diagram.DomainMathematics, "statistical_chart"}: {diagram.BackendProcedural, "pyplot", ""},
	{diagram.DomainMathematics, "vector_field"}:      {diagram.BackendProcedural, "pyplot", ""},

	{diagram.DomainCivil, "truss_diagram"}:        {diagram.BackendProcedural, "pyplot", ""},
	{diagram.DomainCivil, "beam_loading_diagram"}: {diagram.BackendProcedural, "pyplot", ""},
	{diagram.DomainCivil, "cross_section"}:        {diagram.BackendImage, "imagen", ""},

	{diagram.DomainGeneral, "block_diagram"}: {diagram.BackendProcedural, "pyplot", ""},
	{diagram.DomainGeneral, "concept_map"}:   {diagram.BackendGraph, "networkx", ""},
	{diagram.DomainGeneral, "timeline"}:      {diagram.BackendMarkup, "svg", ""},
}

// defaultRoute covers every key the table doesn't.
var defaultRoute = Route{Backend: diagram.BackendProcedural, Subtype: "pyplot"}

// Lookup returns the route for (domain, diagramType) with the domain's
// guidance text attached. Pure and deterministic: identical inputs always
// yield identical routes for a fixed table version.
func Lookup(domain diagram.Domain, diagramType string) Route {
	r, ok := routes[routeKey{domain, diagramType}]
	if !ok {
		r = defaultRoute
	}
	r.Guidance = guidanceFor(domain)
	return r
}
