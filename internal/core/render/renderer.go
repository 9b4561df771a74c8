// Package render expands declarative artifact templates against a resolved
// binding. This is part of the Functional Core - rendering is a pure,
// deterministic transform with no I/O.
package render

import (
	"regexp"
	"sort"
)

// =============================================================================
// Types
// =============================================================================

// ArtifactTemplate is a declarative document containing ${NAME} placeholders
// referencing binding keys.
type ArtifactTemplate struct {
	// Name identifies the template within its set, e.g. "compose.yaml".
	Name string

	// Content is the raw template body.
	Content string
}

// RenderedArtifact is a template with every placeholder substituted. It is
// only constructed once zero unresolved placeholders remain.
type RenderedArtifact struct {
	Name    string
	Content string
}

// =============================================================================
// Placeholder Grammar
// =============================================================================

// placeholderRegex matches ${VAR} placeholders. Default values (${VAR:-x})
// are deliberately not part of the grammar: a missing key is a hard failure,
// never silently defaulted.
var placeholderRegex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Placeholders returns the unique placeholder names in a template, in order
// of first appearance.
func Placeholders(content string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, match := range placeholderRegex.FindAllStringSubmatch(content, -1) {
		name := match[1]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// =============================================================================
// Rendering
// =============================================================================

// Render substitutes every placeholder in the template from the binding
// values. Every placeholder must resolve: all unresolved names are collected
// into a single RenderError and no partial artifact is returned.
//
// Rendering is deterministic: the same (template, values) pair always yields
// byte-identical output.
func Render(tmpl ArtifactTemplate, values map[string]string) (RenderedArtifact, error) {
	if tmpl.Content == "" {
		return RenderedArtifact{}, NewRenderError(tmpl.Name, nil, ErrEmptyTemplate)
	}

	var unresolved []string
	seen := make(map[string]bool)

	content := placeholderRegex.ReplaceAllStringFunc(tmpl.Content, func(match string) string {
		name := placeholderRegex.FindStringSubmatch(match)[1]
		if val, ok := values[name]; ok {
			return val
		}
		if !seen[name] {
			seen[name] = true
			unresolved = append(unresolved, name)
		}
		return match
	})

	if len(unresolved) > 0 {
		sort.Strings(unresolved)
		return RenderedArtifact{}, NewRenderError(tmpl.Name, unresolved, ErrUnresolvedPlaceholder)
	}

	return RenderedArtifact{Name: tmpl.Name, Content: content}, nil
}

// RenderSet renders every template in a set. The first template error aborts
// the set: renderer failures indicate a configuration defect, not a partial
// success.
func RenderSet(templates []ArtifactTemplate, values map[string]string) ([]RenderedArtifact, error) {
	artifacts := make([]RenderedArtifact, 0, len(templates))
	for _, tmpl := range templates {
		artifact, err := Render(tmpl, values)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, nil
}
