package taxonomy

import (
	"testing"

	"github.com/vidyaai/diagramgen/internal/diagram"
)

func TestCatalogCoversEightDomains(t *testing.T) {
	if len(Domains()) != 8 {
		t.Fatalf("expected 8 domains, got %d", len(Domains()))
	}
	for _, d := range Domains() {
		if len(Types(d)) == 0 {
			t.Fatalf("domain %s has no diagram types", d)
		}
	}
}

func TestLookup(t *testing.T) {
	entry, ok := Lookup(diagram.DomainElectrical, "circuit_diagram")
	if !ok {
		t.Fatal("expected circuit_diagram in electrical")
	}
	if entry.PreferredBackend != diagram.BackendCircuit {
		t.Fatalf("expected circuit backend, got %s", entry.PreferredBackend)
	}
	if entry.AISuitable {
		t.Fatal("circuit diagrams must not be AI-suitable")
	}

	if _, ok := Lookup(diagram.DomainElectrical, "free_body_diagram"); ok {
		t.Fatal("free_body_diagram must not resolve under electrical")
	}
}

func TestEveryTypeHasABackend(t *testing.T) {
	valid := map[diagram.Backend]bool{
		diagram.BackendProcedural: true,
		diagram.BackendCircuit:    true,
		diagram.BackendGraph:      true,
		diagram.BackendMarkup:     true,
		diagram.BackendImage:      true,
	}
	for _, d := range Domains() {
		for _, typ := range Types(d) {
			if !valid[typ.PreferredBackend] {
				t.Fatalf("%s/%s has invalid backend %q", d, typ.Name, typ.PreferredBackend)
			}
		}
	}
}

func TestDefaultClassificationIsInTaxonomy(t *testing.T) {
	def := DefaultClassification()
	if _, ok := Lookup(def.Domain, def.DiagramType); !ok {
		t.Fatalf("default classification %s/%s not in taxonomy", def.Domain, def.DiagramType)
	}
}
