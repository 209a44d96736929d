// Package modelschema defines the relational model metadata consumed by the
// form converter and the save coordinator. A Model describes a database-backed
// record type: its fields, primary key, and reverse relations to child models.
// Models are grouped in a Registry so foreign-key references resolve by name.
package modelschema
