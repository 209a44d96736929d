// Package orchestrator coordinates the pipeline from a model document to a
// rendered form: format detection, model parsing, schema conversion, and
// renderer dispatch.
package orchestrator
