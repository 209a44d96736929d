package persist

import (
	"errors"

	"github.com/goliatone/go-modelform/pkg/forms"
	"github.com/goliatone/go-modelform/pkg/modelschema"
)

// Record is a model-backed value bag: one row's worth of column values keyed
// by field name, plus any loaded child collections. A nil primary-key value
// marks a record that has not been inserted yet.
type Record struct {
	model   *modelschema.Model
	values  map[string]any
	related map[string][]*Record
}

// NewRecord constructs an empty Record for the model.
func NewRecord(model *modelschema.Model) (*Record, error) {
	if model == nil {
		return nil, errors.New("persist: model is nil")
	}
	return &Record{
		model:   model,
		values:  make(map[string]any),
		related: make(map[string][]*Record),
	}, nil
}

// MustNewRecord panics when the model is nil. Useful for tests.
func MustNewRecord(model *modelschema.Model) *Record {
	rec, err := NewRecord(model)
	if err != nil {
		panic(err)
	}
	return rec
}

// Model returns the record's model metadata.
func (r *Record) Model() *modelschema.Model { return r.model }

// Set stores a field value.
func (r *Record) Set(name string, value any) {
	r.values[name] = value
}

// Get returns a field value.
func (r *Record) Get(name string) (any, bool) {
	value, ok := r.values[name]
	return value, ok
}

// Values returns a copy of the record's values.
func (r *Record) Values() map[string]any {
	out := make(map[string]any, len(r.values))
	for name, value := range r.values {
		out[name] = value
	}
	return out
}

// PK returns the primary-key value, nil when unset or when the model has no
// primary key.
func (r *Record) PK() any {
	pk := r.model.PrimaryKey()
	if pk == nil {
		return nil
	}
	return r.values[pk.Name]
}

// SetPK assigns the primary-key value.
func (r *Record) SetPK(value any) {
	if pk := r.model.PrimaryKey(); pk != nil {
		r.values[pk.Name] = value
	}
}

// SetRelated replaces the loaded child records of a relation.
func (r *Record) SetRelated(name string, children ...*Record) {
	r.related[name] = append([]*Record(nil), children...)
}

// RelatedRecords returns the loaded child records of a relation.
func (r *Record) RelatedRecords(name string) []*Record {
	return append([]*Record(nil), r.related[name]...)
}

// Related adapts the loaded children of a relation to forms.RecordSource, so
// a Record can prefill a form schema via Schema.BindRecord.
func (r *Record) Related(name string) []forms.RecordSource {
	children := r.related[name]
	if len(children) == 0 {
		return nil
	}
	out := make([]forms.RecordSource, len(children))
	for i, child := range children {
		out[i] = child
	}
	return out
}
