// Package schema turns a provider request schema (JSON-Schema shaped)
// into an ordered list of UI-describable parameters. Parsing is pure
// and deterministic: no I/O, no shared state, and identical input
// always yields the identical ordered list. Property shapes the parser
// does not understand are skipped, never fatal, so the result may be a
// strict subset of the schema's properties.
package schema

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// Parameter is one normalized model input. Type is a coarse kind tag
// (string|number|boolean|enum|array|object), not the full schema.
type Parameter struct {
	Name          string        `json:"name"`
	Type          string        `json:"type"`
	Required      bool          `json:"required"`
	DefaultValue  interface{}   `json:"default_value,omitempty"`
	MinValue      *float64      `json:"min_value,omitempty"`
	MaxValue      *float64      `json:"max_value,omitempty"`
	AllowedValues []interface{} `json:"allowed_values,omitempty"`
	UILabel       string        `json:"ui_label"`
	UIPlaceholder string        `json:"ui_placeholder,omitempty"`
	UIHelpText    string        `json:"ui_help_text,omitempty"`
	UIOrder       int           `json:"ui_order"`
	UIGroup       string        `json:"ui_group"`
}

// DefaultGroup is the flat bucket for properties without a grouping
// extension.
const DefaultGroup = "general"

// Resolve follows a single top-level $ref indirection into
// components/schemas. Anything else comes back unchanged. The returned
// bytes are raw so property order is preserved for Parse.
func Resolve(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return raw
	}

	var doc struct {
		Ref        string `json:"$ref"`
		Components struct {
			Schemas map[string]json.RawMessage `json:"schemas"`
		} `json:"components"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return raw
	}

	const prefix = "#/components/schemas/"
	if !strings.HasPrefix(doc.Ref, prefix) {
		return raw
	}

	name := strings.TrimPrefix(doc.Ref, prefix)
	if target, ok := doc.Components.Schemas[name]; ok {
		return target
	}
	return raw
}

// Parse extracts the ordered parameter list from a request schema.
// uiOrder follows the property's position in the source document, so
// the UI can render inputs the way the provider wrote them.
func Parse(raw json.RawMessage) []Parameter {
	if len(raw) == 0 {
		return nil
	}

	var doc struct {
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		zap.L().Debug("unparseable request schema", zap.Error(err))
		return nil
	}

	required := make(map[string]bool, len(doc.Required))
	for _, name := range doc.Required {
		required[name] = true
	}

	names := propertyOrder(raw)
	params := make([]Parameter, 0, len(names))

	for _, name := range names {
		propRaw, ok := doc.Properties[name]
		if !ok {
			continue
		}

		var prop map[string]interface{}
		if err := json.Unmarshal(propRaw, &prop); err != nil {
			zap.L().Debug("skipping unparseable property", zap.String("name", name), zap.Error(err))
			continue
		}

		param, ok := buildParameter(name, prop, required[name])
		if !ok {
			zap.L().Debug("skipping unsupported property shape", zap.String("name", name))
			continue
		}

		param.UIOrder = len(params)
		params = append(params, param)
	}

	return params
}

func buildParameter(name string, prop map[string]interface{}, isRequired bool) (Parameter, bool) {
	param := Parameter{
		Name:     name,
		Required: isRequired,
		UIGroup:  DefaultGroup,
	}

	declared, _ := prop["type"].(string)
	enum, hasEnum := prop["enum"].([]interface{})

	switch {
	case hasEnum:
		param.Type = "enum"
		param.AllowedValues = enum
	case declared == "integer":
		param.Type = "number"
	case declared == "string" || declared == "number" || declared == "boolean" ||
		declared == "array" || declared == "object":
		param.Type = declared
	default:
		return Parameter{}, false
	}

	if def, ok := prop["default"]; ok {
		param.DefaultValue = def
	}
	if min, ok := prop["minimum"].(float64); ok {
		param.MinValue = &min
	}
	if max, ok := prop["maximum"].(float64); ok {
		param.MaxValue = &max
	}

	if title, ok := prop["title"].(string); ok && title != "" {
		param.UILabel = title
	} else {
		param.UILabel = humanCase(name)
	}

	if placeholder, ok := prop["x-ui-placeholder"].(string); ok {
		param.UIPlaceholder = placeholder
	} else if example, ok := prop["example"].(string); ok {
		param.UIPlaceholder = example
	}

	if desc, ok := prop["description"].(string); ok {
		param.UIHelpText = desc
	}
	if group, ok := prop["x-ui-group"].(string); ok && group != "" {
		param.UIGroup = group
	}

	return param, true
}

// humanCase turns a property name like "num_inference_steps" into
// "Num Inference Steps".
func humanCase(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// propertyOrder walks the raw tokens to recover the order of the
// top-level properties object. encoding/json maps drop document order,
// which is exactly the thing uiOrder has to preserve.
func propertyOrder(raw []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, _ := keyTok.(string)

		if key == "properties" {
			return objectKeys(dec)
		}
		if err := skipValue(dec); err != nil {
			return nil
		}
	}
	return nil
}

func objectKeys(dec *json.Decoder) []string {
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil
	}

	var keys []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		if key, ok := keyTok.(string); ok {
			keys = append(keys, key)
		}
		if err := skipValue(dec); err != nil {
			return nil
		}
	}
	return keys
}

func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch tok {
	case json.Delim('{'), json.Delim('['):
		depth := 1
		for depth > 0 {
			t, err := dec.Token()
			if err != nil {
				return err
			}
			switch t {
			case json.Delim('{'), json.Delim('['):
				depth++
			case json.Delim('}'), json.Delim(']'):
				depth--
			}
		}
	}
	return nil
}
