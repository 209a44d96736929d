package convert

import (
	"github.com/goliatone/go-modelform/pkg/forms"
	"github.com/goliatone/go-modelform/pkg/modelschema"
)

const defaultMaxDepth = 3

// kindDefault is one row of the ordered kind-to-widget table.
type kindDefault struct {
	kind modelschema.FieldKind
	make func(base forms.Definition, field modelschema.Field) forms.Definition
}

// defaultKindTable returns the built-in conversion table. Order is the lookup
// order; first matching row wins.
func defaultKindTable() []kindDefault {
	return []kindDefault{
		{modelschema.KindBare, textField},
		{modelschema.KindBigInt, integerField},
		{modelschema.KindBlob, textAreaField},
		{modelschema.KindBool, checkboxField},
		{modelschema.KindChar, charField},
		{modelschema.KindDate, dateField},
		{modelschema.KindDateTime, dateTimeField},
		{modelschema.KindDecimal, decimalField},
		{modelschema.KindDouble, decimalField},
		{modelschema.KindFloat, decimalField},
		{modelschema.KindAutoKey, hiddenKeyField},
		{modelschema.KindInt, integerField},
		{modelschema.KindText, textAreaField},
		{modelschema.KindTime, timeField},
		{modelschema.KindTimestamp, dateTimeField},
		{modelschema.KindUUID, uuidField},
	}
}

// coerceDefaults mirrors the kinds whose select-rendering needs a coercion.
var coerceDefaults = map[modelschema.FieldKind]forms.Coercer{
	modelschema.KindBigInt: forms.CoerceInt,
	modelschema.KindChar:   forms.CoerceString,
	modelschema.KindDouble: forms.CoerceFloat,
	modelschema.KindFloat:  forms.CoerceFloat,
	modelschema.KindInt:    forms.CoerceInt,
	modelschema.KindText:   forms.CoerceString,
}

// requiredKinds lists the kinds that demand a value when the column is
// neither nullable nor defaulted.
var requiredKinds = []modelschema.FieldKind{
	modelschema.KindChar,
	modelschema.KindDateTime,
	modelschema.KindForeignKey,
	modelschema.KindText,
}

func textField(base forms.Definition, _ modelschema.Field) forms.Definition {
	base.Type = forms.TypeText
	if base.Coerce == nil {
		base.Coerce = forms.CoerceString
	}
	return base
}

func charField(base forms.Definition, field modelschema.Field) forms.Definition {
	base = textField(base, field)
	if field.MaxLength > 0 {
		base.Validators = append(base.Validators, forms.MaxLength(field.MaxLength))
	}
	return base
}

func textAreaField(base forms.Definition, _ modelschema.Field) forms.Definition {
	base.Type = forms.TypeTextArea
	if base.Coerce == nil {
		base.Coerce = forms.CoerceString
	}
	return base
}

func integerField(base forms.Definition, _ modelschema.Field) forms.Definition {
	base.Type = forms.TypeInteger
	if base.Coerce == nil {
		base.Coerce = forms.CoerceInt
	}
	return base
}

func decimalField(base forms.Definition, _ modelschema.Field) forms.Definition {
	base.Type = forms.TypeDecimal
	if base.Coerce == nil {
		base.Coerce = forms.CoerceFloat
	}
	return base
}

func checkboxField(base forms.Definition, _ modelschema.Field) forms.Definition {
	base.Type = forms.TypeCheckbox
	return base
}

func dateField(base forms.Definition, _ modelschema.Field) forms.Definition {
	base.Type = forms.TypeDate
	if base.Coerce == nil {
		base.Coerce = forms.CoerceDate
	}
	return base
}

func timeField(base forms.Definition, _ modelschema.Field) forms.Definition {
	base.Type = forms.TypeTime
	if base.Coerce == nil {
		base.Coerce = forms.CoerceTime
	}
	return base
}

func dateTimeField(base forms.Definition, _ modelschema.Field) forms.Definition {
	base.Type = forms.TypeDateTime
	if base.Coerce == nil {
		base.Coerce = forms.CoerceDateTime
	}
	return base
}

func hiddenKeyField(base forms.Definition, _ modelschema.Field) forms.Definition {
	base.Type = forms.TypeHiddenKey
	if base.Coerce == nil {
		base.Coerce = forms.CoerceInt
	}
	return base
}

func uuidField(base forms.Definition, field modelschema.Field) forms.Definition {
	if field.PrimaryKey {
		base.Type = forms.TypeHiddenKey
	} else {
		base.Type = forms.TypeText
	}
	if base.Coerce == nil {
		base.Coerce = forms.CoerceString
	}
	return base
}
