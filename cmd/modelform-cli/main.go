package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/goliatone/go-modelform/pkg/modelschema"
	"github.com/goliatone/go-modelform/pkg/orchestrator"
	"github.com/goliatone/go-modelform/pkg/render"
	"github.com/goliatone/go-modelform/pkg/renderers/tui"
	"github.com/goliatone/go-modelform/pkg/renderers/vanilla"
)

func main() {
	source := flag.String("source", "examples/fixtures/blog.yaml", "model document path or URL")
	model := flag.String("model", "", "model to render (prompts when empty)")
	format := flag.String("format", "", "document format (yaml, openapi); detected when empty")
	renderer := flag.String("renderer", "vanilla", "renderer to use")
	action := flag.String("action", "", "form action URL")
	method := flag.String("method", "POST", "form submit method")
	output := flag.String("output", "", "output file (stdout if empty)")
	flag.Parse()

	ctx := context.Background()

	registry, err := loadModels(ctx, *source, *format)
	if err != nil {
		log.Fatalf("Failed to load models: %v", err)
	}

	target := *model
	if target == "" {
		target, err = promptModel(registry.Names())
		if err != nil {
			log.Fatalf("Failed to select model: %v", err)
		}
	}

	renderers := render.NewRegistry()
	vanillaRenderer, err := vanilla.New()
	if err != nil {
		log.Fatalf("Failed to initialise renderer: %v", err)
	}
	renderers.MustRegister(vanillaRenderer)
	renderers.MustRegister(tui.New())

	gen := orchestrator.New(
		orchestrator.WithModels(registry),
		orchestrator.WithRendererRegistry(renderers),
	)

	outputHTML, err := gen.Generate(ctx, orchestrator.Request{
		Model:    target,
		Renderer: *renderer,
		RenderOptions: render.RenderOptions{
			Action: *action,
			Method: *method,
		},
	})
	if err != nil {
		log.Fatalf("Failed to generate form: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, outputHTML, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Form written to %s\n", *output)
	} else {
		fmt.Println(string(outputHTML))
	}
}

func loadModels(ctx context.Context, path, format string) (*modelschema.Registry, error) {
	doc, err := loadDocument(ctx, path)
	if err != nil {
		return nil, err
	}

	adapters := orchestrator.DefaultAdapters()
	var adapter orchestrator.SchemaAdapter
	if format != "" {
		adapter, err = adapters.Get(format)
		if err != nil {
			return nil, err
		}
	} else {
		matches := adapters.Detect(doc.Source(), doc.Raw())
		if len(matches) != 1 {
			return nil, fmt.Errorf("cannot detect format of %s, pass -format", path)
		}
		adapter = matches[0]
	}

	return adapter.Parse(ctx, doc)
}

func loadDocument(ctx context.Context, path string) (modelschema.Document, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return modelschema.FetchDocument(ctx, nil, path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return modelschema.Document{}, err
	}
	return modelschema.NewDocument(modelschema.SourceFromFile(path), raw)
}

func promptModel(names []string) (string, error) {
	if len(names) == 1 {
		return names[0], nil
	}
	var out string
	prompt := &survey.Select{
		Message: "Model to render:",
		Options: names,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", err
	}
	return out, nil
}
