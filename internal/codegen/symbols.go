package codegen

import (
	"sort"

	"golang.org/x/mod/semver"

	"github.com/vidyaai/diagramgen/internal/sandbox"
)

// SymbolTable is the set of schematic element names generated source may
// reference. Models routinely invent plausible-sounding elements; anything
// outside this table is rejected before the sandbox ever sees it.
type SymbolTable struct {
	elements map[string]struct{}
	version  string // schemdraw version, empty when unknown
}

// staticElements is the baseline schemdraw element set, used when the
// interpreter probe is unavailable. Conservative: only elements present in
// every supported schemdraw release.
var staticElements = []string{
	"Resistor", "ResistorIEC", "ResistorVar", "Capacitor", "Capacitor2",
	"Inductor", "Inductor2", "Diode", "LED", "Zener", "Schottky",
	"SourceV", "SourceI", "SourceSin", "SourceSquare", "SourceControlledV",
	"SourceControlledI", "Battery", "BatteryCell", "Ground", "GroundChassis",
	"GroundSignal", "Line", "Dot", "DotDotDot", "Arrow", "Gap", "Label",
	"Switch", "SwitchSpdt", "Button", "Fuse", "Lamp", "Motor", "Speaker",
	"Opamp", "NFet", "PFet", "JFet", "JFetN", "JFetP", "Bjt", "BjtNpn",
	"BjtPnp", "Transformer", "Potentiometer", "Photodiode", "Solar",
	"Crystal", "Antenna", "Vss", "Vdd", "MeterV", "MeterA", "MeterOhm",
	"Ic", "IcPin", "RBox", "CurrentLabel", "CurrentLabelInline", "LoopArrow",
}

// staticLogicGates is the baseline schemdraw.logic gate set.
var staticLogicGates = []string{
	"And", "Nand", "Or", "Nor", "Xor", "Xnor", "Not", "NotNot", "Buf",
	"Tgate", "Schmitt", "SchmittNot",
}

// hallucinatedElements are names models produce that no schemdraw release
// has ever shipped. Kept explicit so rejections name the confusion.
var hallucinatedElements = map[string]string{
	"VoltageSource":  "SourceV",
	"CurrentSource":  "SourceI",
	"ACSource":       "SourceSin",
	"DCSource":       "SourceV",
	"OpAmp":          "Opamp",
	"Wire":           "Line",
	"Node":           "Dot",
	"Transistor":     "BjtNpn",
	"NMOS":           "NFet",
	"PMOS":           "PFet",
	"VoltMeter":      "MeterV",
	"Ammeter":        "MeterA",
	"ANDGate":        "And",
	"ORGate":         "Or",
	"NOTGate":        "Not",
	"Inverter":       "Not",
	"GroundSymbol":   "Ground",
	"ResistorBox":    "RBox",
	"CapacitorPolar": "Capacitor2",
}

// elementMinVersions gates elements that only exist from a given schemdraw
// release onward. Checked only when the probe reported a version.
var elementMinVersions = map[string]string{
	"Solar":      "v0.11.0",
	"DotDotDot":  "v0.12.0",
	"Tgate":      "v0.14.0",
	"Schmitt":    "v0.14.0",
	"SchmittNot": "v0.14.0",
	"NotNot":     "v0.15.0",
}

// StaticSymbols returns the probe-free baseline table.
func StaticSymbols() *SymbolTable {
	t := &SymbolTable{elements: make(map[string]struct{}, len(staticElements)+len(staticLogicGates))}
	for _, e := range staticElements {
		t.elements[e] = struct{}{}
	}
	for _, g := range staticLogicGates {
		t.elements[g] = struct{}{}
	}
	return t
}

// SymbolsFromProbe builds the table from a live interpreter probe. A probe
// with no element listing falls back to the static table; a probe with a
// version prunes baseline elements newer than the installed release.
func SymbolsFromProbe(p *sandbox.ProbeResult) *SymbolTable {
	if p == nil || len(p.SchemdrawElements) == 0 {
		t := StaticSymbols()
		if p != nil {
			t.version = canonicalVersion(p.SchemdrawVersion)
			t.pruneByVersion()
		}
		return t
	}
	t := &SymbolTable{
		elements: make(map[string]struct{}, len(p.SchemdrawElements)+len(staticLogicGates)),
		version:  canonicalVersion(p.SchemdrawVersion),
	}
	for _, e := range p.SchemdrawElements {
		t.elements[e] = struct{}{}
	}
	// The probe lists schemdraw.elements only; gates live in schemdraw.logic.
	for _, g := range staticLogicGates {
		t.elements[g] = struct{}{}
	}
	t.pruneByVersion()
	return t
}

func (t *SymbolTable) pruneByVersion() {
	if t.version == "" || !semver.IsValid(t.version) {
		return
	}
	for name, min := range elementMinVersions {
		if semver.Compare(t.version, min) < 0 {
			delete(t.elements, name)
		}
	}
}

// canonicalVersion normalizes a Python-style version string ("0.19") to the
// semver form the comparison helpers expect.
func canonicalVersion(v string) string {
	if v == "" {
		return ""
	}
	v = "v" + v
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

// Has reports whether name is a real element or gate.
func (t *SymbolTable) Has(name string) bool {
	_, ok := t.elements[name]
	return ok
}

// Suggest returns the real element a known hallucination maps to, or "".
func (t *SymbolTable) Suggest(name string) string {
	return hallucinatedElements[name]
}

// List returns the table contents sorted, for prompt embedding.
func (t *SymbolTable) List() []string {
	out := make([]string, 0, len(t.elements))
	for e := range t.elements {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
