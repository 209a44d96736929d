package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-modelform/pkg/forms"
)

// ErrorMapping splits a server error payload into field-level messages keyed
// by submitted input name and form-level messages with no matching field.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload normalises server error payloads (dotted, slash-separated,
// or JSON-pointer paths) onto the schema's input names, so the result plugs
// straight into RenderOptions.Errors. Collection indices survive the mapping:
// "tags/0/label" resolves to "tags-0-label". Unknown paths become form-level
// messages so nothing is lost.
func MapErrorPayload(schema *forms.Schema, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if schema == nil || len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}

		key := resolveErrorPath(schema, rawPath)
		if key == "" {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[key] = append(mapping.Fields[key], normalized...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// resolveErrorPath walks the payload path against the schema, descending into
// list fields when an index segment follows. Returns the submitted input
// name, or "" when the path does not land on a field.
func resolveErrorPath(schema *forms.Schema, rawPath string) string {
	if isFormLevelKey(rawPath) {
		return ""
	}
	segments := dropWrapperSegments(parsePathSegments(rawPath))
	if len(segments) == 0 {
		return ""
	}

	var key strings.Builder
	current := schema
	i := 0
	for {
		def, ok := current.Field(segments[i])
		if !ok {
			return ""
		}
		key.WriteString(def.Name)
		i++

		if def.Type != forms.TypeList {
			if i != len(segments) {
				return ""
			}
			return key.String()
		}

		// List fields need an index segment plus a field inside the entry.
		if i+1 >= len(segments) || def.Nested == nil {
			return ""
		}
		if idx, err := strconv.Atoi(segments[i]); err != nil || idx < 0 {
			return ""
		}
		key.WriteByte('-')
		key.WriteString(segments[i])
		key.WriteByte('-')
		current = def.Nested
		i++
	}
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimPrefix(clean, "#/")
	clean = strings.TrimPrefix(clean, "$/")
	clean = strings.TrimPrefix(clean, "$.")
	clean = strings.TrimLeft(clean, "#/.$")

	replacer := strings.NewReplacer("[", ".", "]", "")
	clean = replacer.Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

// dropWrapperSegments strips the envelope prefixes API error payloads tend to
// carry before the actual field path.
func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":       {},
		"request":    {},
		"payload":    {},
		"data":       {},
		"attributes": {},
	}

	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; ok {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
