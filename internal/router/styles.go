package router

import "github.com/vidyaai/diagramgen/internal/diagram"

// styleRegistry holds per-domain drawing conventions. The text is injected
// verbatim into generation prompts; nothing in this package reads it.
var styleRegistry = map[diagram.Domain]string{
	diagram.DomainElectrical: `Use standard IEEE schematic symbols. Label every component with its
reference designator and symbolic value (R1, C2, Vin) - never a computed
value. Current arrows and polarity marks where the question mentions them.
Ground symbols at the bottom of the schematic.`,

	diagram.DomainMechanical: `Show all forces as arrows originating at the point of application, each
labeled symbolically (F, N, T, mg). Include the coordinate axes when an
incline or rotation is involved. Keep proportions roughly physical but
prioritize label legibility over scale accuracy.`,

	diagram.DomainComputerScience: `Nodes are circles or rounded boxes with their values or names centered
inside. Edges are drawn with clear arrowheads when direction matters.
Lay out trees top-down and lists left-to-right. Do not show traversal
results or computed outputs - only the structure the question describes.`,

	diagram.DomainPhysics: `Axes labeled with quantity and unit. Rays and field lines get arrowheads.
Mark given quantities symbolically (v0, theta, f) at their geometric
location. Dashed lines for virtual images, construction lines, and
asymptotes.`,

	diagram.DomainChemistry: `Use conventional structural formula notation: element symbols, single or
double bond lines, lone pairs only when the question asks about them.
Apparatus drawings are side-view cross sections with each vessel labeled.`,

	diagram.DomainMathematics: `Axes with tick marks and numeric gridlines only where the question gives
concrete values. Label curves with their function expression. Shade regions
of interest lightly. Angles marked with arcs and symbolic labels.`,

	diagram.DomainCivil: `Supports drawn with standard symbols (pin, roller, fixed). Loads as
arrows with symbolic magnitudes (P, w). Member labels at midspan. Include
dimension lines with symbolic or given lengths.`,

	diagram.DomainGeneral: `Clean block-and-arrow style: rectangular boxes with short labels,
orthogonal connectors, generous whitespace. No decorative styling.`,
}

// guidanceFor returns the style text for a domain. Every domain in the
// taxonomy has an entry; unknown domains get the general style.
func guidanceFor(domain diagram.Domain) string {
	if g, ok := styleRegistry[domain]; ok {
		return g
	}
	return styleRegistry[diagram.DomainGeneral]
}
