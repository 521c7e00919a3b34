package llm

import "strings"

// SchemaType is a JSON value type.
type SchemaType string

// Supported schema types.
const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeInteger SchemaType = "integer"
	TypeNumber  SchemaType = "number"
	TypeBoolean SchemaType = "boolean"
)

// Schema describes the JSON shape a provider must return.
// Properties keeps declaration order through PropertyOrder.
type Schema struct {
	Type          SchemaType
	Description   string
	Properties    map[string]*Schema
	PropertyOrder []string
	Required      []string
	Items         *Schema
}

// Gemini renders the OpenAPI subset accepted by generateContent
// (upper-case type names, propertyOrdering).
func (s *Schema) Gemini() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": strings.ToUpper(string(s.Type))}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.Gemini()
		}
		out["properties"] = props
		if len(s.PropertyOrder) > 0 {
			out["propertyOrdering"] = s.PropertyOrder
		}
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	if s.Items != nil {
		out["items"] = s.Items.Gemini()
	}
	return out
}

// JSONSchema renders standard JSON Schema with closed objects, as required
// by strict structured outputs.
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": string(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if s.Type == TypeObject {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.JSONSchema()
		}
		out["properties"] = props
		out["additionalProperties"] = false
		required := s.Required
		if required == nil {
			required = []string{}
		}
		out["required"] = required
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	return out
}
