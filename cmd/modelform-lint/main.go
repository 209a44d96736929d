// modelform-lint checks model documents for mistakes the parsers accept but
// the converter or persist layer would stumble over later: unknown kinds,
// duplicate names, bad lengths, and broken cross-model references.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-modelform/pkg/modelschema"
	"github.com/goliatone/go-modelform/pkg/orchestrator"
)

type violation struct {
	file     string
	location string
	message  string
}

func main() {
	flag.Usage = func() {
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [paths...]\n", filepath.Base(os.Args[0])); err != nil {
			panic(err)
		}
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "\nLint model documents (YAML or OpenAPI) for schema mistakes.\n"); err != nil {
			panic(err)
		}
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"examples/fixtures/blog.yaml"}
	}

	ctx := context.Background()
	adapters := orchestrator.DefaultAdapters()

	var violations []violation
	for _, path := range paths {
		linted, err := lintFile(ctx, adapters, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lint %s: %v\n", path, err)
			os.Exit(1)
		}
		violations = append(violations, linted...)
	}

	if len(violations) > 0 {
		sort.Slice(violations, func(i, j int) bool {
			if violations[i].file == violations[j].file {
				if violations[i].location == violations[j].location {
					return violations[i].message < violations[j].message
				}
				return violations[i].location < violations[j].location
			}
			return violations[i].file < violations[j].file
		})
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "%s: %s -> %s\n", v.file, v.location, v.message)
		}
		os.Exit(1)
	}
}

func lintFile(ctx context.Context, adapters *orchestrator.AdapterRegistry, path string) ([]violation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	doc, err := modelschema.NewDocument(modelschema.SourceFromFile(path), raw)
	if err != nil {
		return nil, fmt.Errorf("construct document: %w", err)
	}

	matches := adapters.Detect(doc.Source(), doc.Raw())
	if len(matches) != 1 {
		return nil, fmt.Errorf("cannot detect document format")
	}

	registry, err := matches[0].Parse(ctx, doc)
	if err != nil {
		// Parse failures include registry validation errors; report them as
		// a single violation so remaining files still get linted.
		return []violation{{file: path, location: "document", message: err.Error()}}, nil
	}

	var result []violation
	for _, name := range registry.Names() {
		model, _ := registry.Lookup(name)
		result = append(result, lintModel(path, model)...)
	}
	return result, nil
}

func lintModel(file string, model *modelschema.Model) []violation {
	var result []violation
	report := func(location, format string, args ...any) {
		result = append(result, violation{
			file:     file,
			location: location,
			message:  fmt.Sprintf(format, args...),
		})
	}

	seen := make(map[string]struct{}, len(model.Fields))
	for _, field := range model.Fields {
		location := model.Name + "." + field.Name
		if _, dup := seen[field.Name]; dup {
			report(location, "duplicate field name")
		}
		seen[field.Name] = struct{}{}

		if !field.Kind.Known() {
			report(location, "unknown field kind %q", field.Kind)
		}
		if field.MaxLength < 0 {
			report(location, "negative maxLength %d", field.MaxLength)
		}
		if field.Kind == modelschema.KindChar && field.MaxLength == 0 {
			report(location, "char field without maxLength, use kind text for unbounded strings")
		}
		if field.PrimaryKey && field.Null {
			report(location, "primary key cannot be nullable")
		}

		choiceValues := make(map[string]struct{}, len(field.Choices))
		for _, choice := range field.Choices {
			key := fmt.Sprint(choice.Value)
			if _, dup := choiceValues[key]; dup {
				report(location, "duplicate choice value %q", key)
			}
			choiceValues[key] = struct{}{}
		}
	}

	relations := make(map[string]struct{}, len(model.Relations))
	for _, rel := range model.Relations {
		location := model.Name + "." + rel.Name
		if _, dup := relations[rel.Name]; dup {
			report(location, "duplicate relation name")
		}
		relations[rel.Name] = struct{}{}
		if _, clash := seen[rel.Name]; clash {
			report(location, "relation name collides with field %q", rel.Name)
		}
		if strings.TrimSpace(rel.ForeignKey) == "" {
			report(location, "relation is missing a foreign key")
		}
	}

	return result
}
