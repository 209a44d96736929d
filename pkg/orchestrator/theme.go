package orchestrator

import (
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// themeConfig resolves the renderer theme, consulting the selector on first
// use and caching the result.
func (o *Orchestrator) themeConfig() (*theme.RendererConfig, error) {
	if o.theme != nil {
		return o.theme, nil
	}
	if o.themeSelector == nil {
		return nil, nil
	}

	selection, err := o.themeSelector.Select(o.themeName, o.themeVariant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme %q/%q: %w", o.themeName, o.themeVariant, err)
	}
	if selection == nil {
		return nil, nil
	}

	o.theme = rendererConfigFromSelection(selection)
	return o.theme, nil
}

// rendererConfigFromSelection flattens a go-theme selection: variant tokens,
// templates, and asset files override the base manifest, and CSS custom
// properties are derived from the merged tokens.
func rendererConfigFromSelection(selection *theme.Selection) *theme.RendererConfig {
	cfg := &theme.RendererConfig{
		Theme:   selection.Theme,
		Variant: selection.Variant,
	}

	manifest := selection.Manifest
	if manifest == nil {
		return cfg
	}

	tokens := mergeStringMaps(manifest.Tokens, nil)
	partials := mergeStringMaps(manifest.Templates, nil)
	files := mergeStringMaps(manifest.Assets.Files, nil)
	prefix := manifest.Assets.Prefix

	if variant, ok := manifest.Variants[selection.Variant]; ok {
		tokens = mergeStringMaps(tokens, variant.Tokens)
		partials = mergeStringMaps(partials, variant.Templates)
		files = mergeStringMaps(files, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	cfg.Tokens = tokens
	cfg.Partials = partials
	cfg.CSSVars = cssVarsFromTokens(tokens)
	cfg.AssetURL = assetResolver(prefix, files)
	return cfg
}

func mergeStringMaps(base, overlay map[string]string) map[string]string {
	if len(base) == 0 && len(overlay) == 0 {
		return nil
	}
	merged := make(map[string]string, len(base)+len(overlay))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range overlay {
		merged[key] = value
	}
	return merged
}

func cssVarsFromTokens(tokens map[string]string) map[string]string {
	if len(tokens) == 0 {
		return nil
	}
	vars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		name := key
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		vars[name] = value
	}
	return vars
}

func assetResolver(prefix string, files map[string]string) func(string) string {
	return func(key string) string {
		if key == "" {
			return ""
		}
		file, ok := files[key]
		if !ok {
			return ""
		}
		if prefix == "" {
			return file
		}
		return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(file, "/")
	}
}
