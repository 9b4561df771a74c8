package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Render Tests
// =============================================================================

func TestRender_Simple(t *testing.T) {
	artifact, err := Render(
		ArtifactTemplate{Name: "compose.yaml", Content: "host: ${APP_HOST}"},
		map[string]string{"APP_HOST": "acctdemo.localtest.me"},
	)
	require.NoError(t, err)
	assert.Equal(t, "host: acctdemo.localtest.me", artifact.Content)
	assert.Equal(t, "compose.yaml", artifact.Name)
}

func TestRender_MultiplePlaceholders(t *testing.T) {
	artifact, err := Render(
		ArtifactTemplate{Name: "t", Content: "postgres://${DB_USER}@${DB_HOST}/${DB_NAME}"},
		map[string]string{"DB_USER": "app", "DB_HOST": "db", "DB_NAME": "appdb"},
	)
	require.NoError(t, err)
	assert.Equal(t, "postgres://app@db/appdb", artifact.Content)
}

func TestRender_RepeatedPlaceholder(t *testing.T) {
	artifact, err := Render(
		ArtifactTemplate{Name: "t", Content: "${STACK}-web ${STACK}-db"},
		map[string]string{"STACK": "acctdemo"},
	)
	require.NoError(t, err)
	assert.Equal(t, "acctdemo-web acctdemo-db", artifact.Content)
}

func TestRender_EmptyValueAllowed(t *testing.T) {
	// An empty binding value is a resolution, not a miss.
	artifact, err := Render(
		ArtifactTemplate{Name: "t", Content: "prefix${SUFFIX}"},
		map[string]string{"SUFFIX": ""},
	)
	require.NoError(t, err)
	assert.Equal(t, "prefix", artifact.Content)
}

func TestRender_Deterministic(t *testing.T) {
	tmpl := ArtifactTemplate{Name: "t", Content: "a=${A} b=${B} a=${A}"}
	values := map[string]string{"A": "1", "B": "2"}
	first, err := Render(tmpl, values)
	require.NoError(t, err)
	second, err := Render(tmpl, values)
	require.NoError(t, err)
	assert.Equal(t, first.Content, second.Content)
}

func TestRender_UnresolvedFails(t *testing.T) {
	_, err := Render(
		ArtifactTemplate{Name: "compose.yaml", Content: "host: ${MISSING}"},
		map[string]string{},
	)
	assert.ErrorIs(t, err, ErrUnresolvedPlaceholder)

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "compose.yaml", renderErr.Template)
	assert.Equal(t, []string{"MISSING"}, renderErr.Placeholders)
}

func TestRender_CollectsAllUnresolved(t *testing.T) {
	_, err := Render(
		ArtifactTemplate{Name: "t", Content: "${B} ${A} ${A} ${C}"},
		map[string]string{"C": "ok"},
	)
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, []string{"A", "B"}, renderErr.Placeholders)
}

func TestRender_NoPartialArtifact(t *testing.T) {
	artifact, err := Render(
		ArtifactTemplate{Name: "t", Content: "${KNOWN} ${MISSING}"},
		map[string]string{"KNOWN": "ok"},
	)
	assert.Error(t, err)
	assert.Empty(t, artifact.Content)
}

func TestRender_NoDefaultSyntax(t *testing.T) {
	// ${VAR:-default} is not part of the grammar; the braces never match the
	// placeholder regex, so the text passes through untouched.
	artifact, err := Render(
		ArtifactTemplate{Name: "t", Content: "port: ${PORT:-8080}"},
		map[string]string{"PORT": "9090"},
	)
	require.NoError(t, err)
	assert.Equal(t, "port: ${PORT:-8080}", artifact.Content)
}

func TestRender_EmptyTemplate(t *testing.T) {
	_, err := Render(ArtifactTemplate{Name: "t"}, map[string]string{})
	assert.ErrorIs(t, err, ErrEmptyTemplate)
}

// =============================================================================
// RenderSet Tests
// =============================================================================

func TestRenderSet_AllTemplates(t *testing.T) {
	artifacts, err := RenderSet([]ArtifactTemplate{
		{Name: "one", Content: "${STACK}"},
		{Name: "two", Content: "${APP_HOST}"},
	}, map[string]string{"STACK": "acctdemo", "APP_HOST": "acctdemo.localtest.me"})
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, "acctdemo", artifacts[0].Content)
	assert.Equal(t, "acctdemo.localtest.me", artifacts[1].Content)
}

func TestRenderSet_AbortsOnFirstError(t *testing.T) {
	artifacts, err := RenderSet([]ArtifactTemplate{
		{Name: "bad", Content: "${MISSING}"},
		{Name: "good", Content: "static"},
	}, map[string]string{})
	assert.ErrorIs(t, err, ErrUnresolvedPlaceholder)
	assert.Nil(t, artifacts)
}

// =============================================================================
// Placeholders Tests
// =============================================================================

func TestPlaceholders_TableDriven(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"none", "static text", nil},
		{"single", "${A}", []string{"A"}},
		{"ordered", "${B} then ${A}", []string{"B", "A"}},
		{"deduplicated", "${A} ${A} ${B}", []string{"A", "B"}},
		{"underscore", "${DB_HOST}", []string{"DB_HOST"}},
		{"default-syntax-ignored", "${A:-x}", nil},
		{"unbraced-ignored", "$A", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Placeholders(tt.content))
		})
	}
}
