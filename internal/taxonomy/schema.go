package taxonomy

import "github.com/vidyaai/diagramgen/internal/llm"

// ClassificationSchema defines the JSON schema for classifier responses.
var ClassificationSchema = &llm.Schema{
	Name:        "diagram-classification",
	Description: "Classification of a question's diagram against the fixed domain taxonomy",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"domain": map[string]any{
				"type": "string",
				"enum": []any{
					"electrical", "mechanical", "computer_science", "physics",
					"chemistry", "mathematics", "civil", "general",
				},
				"description": "The subject domain the diagram belongs to",
			},
			"diagram_type": map[string]any{
				"type":        "string",
				"description": "A diagram type from the enumerated list for the chosen domain",
			},
			"complexity": map[string]any{
				"type":        "string",
				"enum":        []any{"simple", "moderate", "complex"},
				"description": "How involved the requested diagram is",
			},
		},
		"required":             []any{"domain", "diagram_type", "complexity"},
		"additionalProperties": false,
	},
}
