package modelschema

// FieldKind enumerates the declared column kinds the converter knows how to
// map onto form fields.
type FieldKind string

const (
	KindBare       FieldKind = "bare"
	KindChar       FieldKind = "char"
	KindText       FieldKind = "text"
	KindInt        FieldKind = "int"
	KindBigInt     FieldKind = "bigint"
	KindFloat      FieldKind = "float"
	KindDouble     FieldKind = "double"
	KindDecimal    FieldKind = "decimal"
	KindBool       FieldKind = "bool"
	KindDate       FieldKind = "date"
	KindTime       FieldKind = "time"
	KindDateTime   FieldKind = "datetime"
	KindTimestamp  FieldKind = "timestamp"
	KindBlob       FieldKind = "blob"
	KindUUID       FieldKind = "uuid"
	KindAutoKey    FieldKind = "autokey"
	KindForeignKey FieldKind = "foreignkey"
)

var knownKinds = map[FieldKind]struct{}{
	KindBare: {}, KindChar: {}, KindText: {}, KindInt: {}, KindBigInt: {},
	KindFloat: {}, KindDouble: {}, KindDecimal: {}, KindBool: {}, KindDate: {},
	KindTime: {}, KindDateTime: {}, KindTimestamp: {}, KindBlob: {},
	KindUUID: {}, KindAutoKey: {}, KindForeignKey: {},
}

// Known reports whether the kind is one of the declared constants.
func (k FieldKind) Known() bool {
	_, ok := knownKinds[k]
	return ok
}

// Choice pairs a stored value with its display label.
type Choice struct {
	Value any    `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Field describes a single typed attribute on a model.
type Field struct {
	Name       string    `json:"name" yaml:"name"`
	Column     string    `json:"column,omitempty" yaml:"column,omitempty"`
	Kind       FieldKind `json:"kind" yaml:"kind"`
	Null       bool      `json:"null,omitempty" yaml:"null,omitempty"`
	Default    any       `json:"default,omitempty" yaml:"default,omitempty"`
	HasDefault bool      `json:"hasDefault,omitempty" yaml:"hasDefault,omitempty"`
	Choices    []Choice  `json:"choices,omitempty" yaml:"choices,omitempty"`
	MaxLength  int       `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Label      string    `json:"label,omitempty" yaml:"label,omitempty"`
	HelpText   string    `json:"helpText,omitempty" yaml:"helpText,omitempty"`
	// Ref names the related model for foreignkey fields.
	Ref        string `json:"ref,omitempty" yaml:"ref,omitempty"`
	PrimaryKey bool   `json:"primaryKey,omitempty" yaml:"primaryKey,omitempty"`
}

// ColumnName returns the storage column for the field, defaulting to the
// field name.
func (f Field) ColumnName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// Relation describes a reverse foreign-key link: a collection of child
// records owned by this model through the child's FK field.
type Relation struct {
	Name       string `json:"name" yaml:"name"`
	Child      string `json:"child" yaml:"child"`
	ForeignKey string `json:"foreignKey" yaml:"foreignKey"`
}

// Model is the metadata for one database-backed record type. Fields keep
// declaration order; the first field is conventionally the primary key.
type Model struct {
	Name      string     `json:"name" yaml:"name"`
	Table     string     `json:"table,omitempty" yaml:"table,omitempty"`
	Fields    []Field    `json:"fields" yaml:"fields"`
	Relations []Relation `json:"relations,omitempty" yaml:"relations,omitempty"`
}

// TableName returns the storage table for the model, defaulting to the model
// name.
func (m *Model) TableName() string {
	if m.Table != "" {
		return m.Table
	}
	return m.Name
}

// PrimaryKey returns the model's primary-key field, or nil when the model
// declares none.
func (m *Model) PrimaryKey() *Field {
	for i := range m.Fields {
		if m.Fields[i].PrimaryKey {
			return &m.Fields[i]
		}
	}
	return nil
}

// FieldByName returns the named field, or nil.
func (m *Model) FieldByName(name string) *Field {
	for i := range m.Fields {
		if m.Fields[i].Name == name {
			return &m.Fields[i]
		}
	}
	return nil
}

// RelationByName returns the named reverse relation, or nil.
func (m *Model) RelationByName(name string) *Relation {
	for i := range m.Relations {
		if m.Relations[i].Name == name {
			return &m.Relations[i]
		}
	}
	return nil
}
