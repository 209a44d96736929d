// Package forms provides the form-field primitives the converter emits and
// the save coordinator consumes: typed field definitions, ordered form
// schemas, submission binding with coercion and filtering, and per-field
// validation errors. Nested list fields address their entries with
// wtforms-style dashed prefixes (entries-0-title).
package forms
