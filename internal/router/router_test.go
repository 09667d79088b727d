package router

import (
	"testing"

	"github.com/vidyaai/diagramgen/internal/diagram"
	"github.com/vidyaai/diagramgen/internal/taxonomy"
)

func TestLookup_KnownKeys(t *testing.T) {
	tests := []struct {
		domain      diagram.Domain
		diagramType string
		backend     diagram.Backend
		subtype     string
	}{
		{diagram.DomainElectrical, "circuit_diagram", diagram.BackendCircuit, "schemdraw"},
		{diagram.DomainComputerScience, "binary_tree", diagram.BackendGraph, "networkx"},
		{diagram.DomainComputerScience, "flowchart", diagram.BackendMarkup, "svg"},
		{diagram.DomainChemistry, "molecular_structure", diagram.BackendImage, "imagen"},
		{diagram.DomainMathematics, "function_plot", diagram.BackendProcedural, "pyplot"},
	}
	for _, tt := range tests {
		r := Lookup(tt.domain, tt.diagramType)
		if r.Backend != tt.backend || r.Subtype != tt.subtype {
			t.Errorf("Lookup(%s, %s) = (%s, %s), want (%s, %s)",
				tt.domain, tt.diagramType, r.Backend, r.Subtype, tt.backend, tt.subtype)
		}
		if r.Guidance == "" {
			t.Errorf("Lookup(%s, %s) returned empty guidance", tt.domain, tt.diagramType)
		}
	}
}

func TestLookup_UnmatchedKeyGetsDefault(t *testing.T) {
	r := Lookup(diagram.DomainPhysics, "no_such_type")
	if r.Backend != diagram.BackendProcedural || r.Subtype != "pyplot" {
		t.Fatalf("expected default route, got (%s, %s)", r.Backend, r.Subtype)
	}
}

func TestLookup_IsPure(t *testing.T) {
	a := Lookup(diagram.DomainElectrical, "circuit_diagram")
	for i := 0; i < 100; i++ {
		b := Lookup(diagram.DomainElectrical, "circuit_diagram")
		if a != b {
			t.Fatalf("Lookup is not deterministic: %+v vs %+v", a, b)
		}
	}
}

func TestEveryTaxonomyEntryHasAnExplicitRoute(t *testing.T) {
	for _, d := range taxonomy.Domains() {
		for _, typ := range taxonomy.Types(d) {
			if _, ok := routes[routeKey{d, typ.Name}]; !ok {
				t.Errorf("taxonomy entry %s/%s has no routing entry", d, typ.Name)
			}
		}
	}
}
