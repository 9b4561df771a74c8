package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/stackpact/stackpact/internal/core/identity"
	"github.com/stackpact/stackpact/internal/core/render"
)

// loadInputs assembles the raw binding inputs for a run: dotenv file first,
// then --set overrides, then --stack.
func loadInputs(opts *Options) (map[string]string, error) {
	inputs := map[string]string{}

	if opts.EnvFile != "" {
		fromFile, err := godotenv.Read(opts.EnvFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", opts.EnvFile, err)
		}
		for k, v := range fromFile {
			inputs[k] = v
		}
	}

	for _, set := range opts.Sets {
		key, value, found := strings.Cut(set, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --set %q, expected KEY=value", set)
		}
		inputs[key] = value
	}

	if opts.Stack != "" {
		inputs[identity.KeyStack] = opts.Stack
	}

	return inputs, nil
}

// loadTemplates reads every regular file in the templates directory as an
// artifact template. Hidden files are skipped; names are sorted for a
// deterministic render order.
func loadTemplates(dir string) ([]render.ArtifactTemplate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("no artifact templates in %s", dir)
	}

	templates := make([]render.ArtifactTemplate, 0, len(names))
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}
		templates = append(templates, render.ArtifactTemplate{
			Name:    name,
			Content: string(content),
		})
	}
	return templates, nil
}
