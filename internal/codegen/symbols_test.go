package codegen

import (
	"testing"

	"github.com/vidyaai/diagramgen/internal/sandbox"
)

func TestStaticSymbols(t *testing.T) {
	table := StaticSymbols()
	for _, name := range []string{"Resistor", "SourceV", "Ground", "And", "Not"} {
		if !table.Has(name) {
			t.Fatalf("static table missing %q", name)
		}
	}
	if table.Has("VoltageSource") {
		t.Fatal("hallucinated element present in static table")
	}
	if got := table.Suggest("VoltageSource"); got != "SourceV" {
		t.Fatalf("Suggest(VoltageSource) = %q", got)
	}
}

func TestSymbolsFromProbe_UsesProbedElements(t *testing.T) {
	table := SymbolsFromProbe(&sandbox.ProbeResult{
		SchemdrawVersion:  "0.19",
		SchemdrawElements: []string{"Resistor", "Capacitor", "SourceV"},
	})
	if !table.Has("Capacitor") {
		t.Fatal("probed element missing")
	}
	if table.Has("Motor") {
		t.Fatal("unprobed element should be absent")
	}
	// Logic gates come from the static set; the probe lists elements only.
	if !table.Has("Nand") {
		t.Fatal("logic gate missing from probed table")
	}
}

func TestSymbolsFromProbe_NilFallsBackToStatic(t *testing.T) {
	table := SymbolsFromProbe(nil)
	if !table.Has("Resistor") || !table.Has("And") {
		t.Fatal("nil probe should yield static table")
	}
}

func TestSymbolsFromProbe_VersionPrunesNewerElements(t *testing.T) {
	table := SymbolsFromProbe(&sandbox.ProbeResult{SchemdrawVersion: "0.13"})
	if table.Has("Tgate") {
		t.Fatal("Tgate requires schemdraw 0.14; 0.13 table should omit it")
	}
	if !table.Has("Solar") {
		t.Fatal("Solar predates 0.13 and should survive pruning")
	}
	if !table.Has("Resistor") {
		t.Fatal("baseline element lost during pruning")
	}
}
