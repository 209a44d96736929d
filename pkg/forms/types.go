package forms

import "fmt"

// FieldType is the widget-level classification of a form field.
type FieldType string

const (
	TypeText        FieldType = "text"
	TypeTextArea    FieldType = "textarea"
	TypeInteger     FieldType = "integer"
	TypeDecimal     FieldType = "decimal"
	TypeCheckbox    FieldType = "checkbox"
	TypeDate        FieldType = "date"
	TypeTime        FieldType = "time"
	TypeDateTime    FieldType = "datetime"
	TypeSelect      FieldType = "select"
	TypeModelSelect FieldType = "modelselect"
	TypeHidden      FieldType = "hidden"
	TypeHiddenKey   FieldType = "hiddenkey"
	TypeList        FieldType = "list"
)

// BlankSentinel is the submitted value representing an explicit blank choice
// on selects that allow one.
const BlankSentinel = "__None"

// DeleteField names the checkbox added to deletable nested forms.
const DeleteField = "delete_"

// Choice pairs a stored value with its display label.
type Choice struct {
	Value any
	Label string
}

// Coercer converts a submitted string into its typed value.
type Coercer func(string) (any, error)

// Filter post-processes a coerced value. Filters run in order after
// coercion.
type Filter func(any) any

// Validator inspects a coerced value and reports a user-facing problem.
type Validator func(any) error

// Definition describes one form field: how to coerce, filter, and validate a
// submitted value, plus everything a renderer needs to draw it.
type Definition struct {
	Name        string
	Type        FieldType
	Label       string
	Description string

	// Required rejects empty submissions; Optional short-circuits validation
	// when the value is empty. Neither set means empty values pass through
	// unvalidated.
	Required bool
	Optional bool

	Default    any
	Choices    []Choice
	Coerce     Coercer
	Filters    []Filter
	Validators []Validator

	// AllowBlank permits the blank sentinel on selects, yielding a nil value.
	AllowBlank bool
	BlankText  string

	// Ref names the related model backing a modelselect.
	Ref string

	// Nested carries the sub-form schema for list fields; ForeignKey names
	// the child model field linking back to the parent.
	Nested     *Schema
	ForeignKey string
	Depth      int
}

// Schema is an ordered set of field definitions bound to a model: the "form
// class" the converter produces.
type Schema struct {
	Name  string
	Model string

	fields []Definition
	index  map[string]int
}

// NewSchema constructs an empty Schema for the named model.
func NewSchema(name, model string) *Schema {
	return &Schema{Name: name, Model: model, index: make(map[string]int)}
}

// Add appends a field definition. Duplicate names are an error.
func (s *Schema) Add(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("forms: schema %q: field name is required", s.Name)
	}
	if _, exists := s.index[def.Name]; exists {
		return fmt.Errorf("forms: schema %q: duplicate field %q", s.Name, def.Name)
	}
	s.index[def.Name] = len(s.fields)
	s.fields = append(s.fields, def)
	return nil
}

// MustAdd panics on Add failure. Useful for fixtures.
func (s *Schema) MustAdd(def Definition) {
	if err := s.Add(def); err != nil {
		panic(err)
	}
}

// Fields returns the definitions in declaration order.
func (s *Schema) Fields() []Definition {
	return append([]Definition(nil), s.fields...)
}

// SetChoices replaces the choice list of the named field. Selects and
// modelselects with choices reject submissions outside the list at bind
// time, so populating a modelselect from live records turns fabricated keys
// into field errors instead of save-time failures.
func (s *Schema) SetChoices(name string, choices []Choice) bool {
	idx, ok := s.index[name]
	if !ok {
		return false
	}
	s.fields[idx].Choices = append([]Choice(nil), choices...)
	return true
}

// Field returns the named definition.
func (s *Schema) Field(name string) (Definition, bool) {
	idx, ok := s.index[name]
	if !ok {
		return Definition{}, false
	}
	return s.fields[idx], true
}

// Len reports the number of fields.
func (s *Schema) Len() int { return len(s.fields) }
