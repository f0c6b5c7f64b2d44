package generator

import "voice_idea_intake/idea"

// Schema is a named JSON schema the model output must follow.
type Schema struct {
	Name       string
	Definition map[string]any
}

func fieldNames() []any {
	names := make([]any, 0, len(idea.TrackedFields))
	for _, f := range idea.TrackedFields {
		names = append(names, string(f))
	}
	return names
}

func draftSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             fieldNames(),
		"properties": map[string]any{
			"title":             map[string]any{"type": "string"},
			"summary":           map[string]any{"type": "string"},
			"problem":           map[string]any{"type": "string"},
			"proposed_solution": map[string]any{"type": "string"},
			"target_audience":   map[string]any{"type": "string"},
			"expected_impact":   map[string]any{"type": "string"},
			"category":          map[string]any{"type": []any{"string", "null"}},
			"priority": map[string]any{
				"type": []any{"string", "null"},
				"enum": []any{"low", "medium", "high", nil},
			},
			"keywords": map[string]any{
				"type":  []any{"array", "null"},
				"items": map[string]any{"type": "string"},
			},
		},
	}
}

func fieldMetaSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"status", "confidence"},
		"properties": map[string]any{
			"status": map[string]any{
				"type": "string",
				"enum": []any{"confirmed", "guessed", "missing"},
			},
			"confidence": map[string]any{
				"type":    "number",
				"minimum": 0.0,
				"maximum": 1.0,
			},
		},
	}
}

// ExtractionSchema is the strict contract for both extraction and
// clarification responses: {draft, field_meta}, nine fields each.
func ExtractionSchema() *Schema {
	metaProps := make(map[string]any, len(idea.TrackedFields))
	for _, f := range idea.TrackedFields {
		metaProps[string(f)] = fieldMetaSchema()
	}
	return &Schema{
		Name: "IdeaExtraction",
		Definition: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []any{"draft", "field_meta"},
			"properties": map[string]any{
				"draft": draftSchema(),
				"field_meta": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             fieldNames(),
					"properties":           metaProps,
				},
			},
		},
	}
}
