package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

const cleanTemplate = `services:
  web:
    image: nginx:1.25.3
    labels:
      pact.stackpact.io/stack: ${STACK}
      pact.stackpact.io/service: web
    environment:
      APP_HOST: ${APP_HOST}
`

func writeTemplates(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "compose.yaml"), []byte(content), 0o644))
	return dir
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	opts := &Options{}
	cmd := newRootCommand(opts, nil)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// =============================================================================
// Inputs
// =============================================================================

func TestLoadInputs(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "stack.env")
	require.NoError(t, os.WriteFile(envFile, []byte("LOCAL_DOMAIN=localtest.me\nDB_NAME=app\n"), 0o644))

	inputs, err := loadInputs(&Options{
		Stack:   "acctdemo",
		EnvFile: envFile,
		Sets:    []string{"DB_NAME=override", "EXTRA=1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "acctdemo", inputs["STACK"])
	assert.Equal(t, "localtest.me", inputs["LOCAL_DOMAIN"])
	// --set wins over the env file.
	assert.Equal(t, "override", inputs["DB_NAME"])
	assert.Equal(t, "1", inputs["EXTRA"])
}

func TestLoadInputs_InvalidSet(t *testing.T) {
	_, err := loadInputs(&Options{Sets: []string{"NO_EQUALS"}})
	assert.Error(t, err)

	_, err = loadInputs(&Options{Sets: []string{"=value"}})
	assert.Error(t, err)
}

func TestLoadInputs_MissingEnvFile(t *testing.T) {
	_, err := loadInputs(&Options{EnvFile: "/does/not/exist.env"})
	assert.Error(t, err)
}

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	templates, err := loadTemplates(dir)
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "a.yaml", templates[0].Name)
	assert.Equal(t, "b.yaml", templates[1].Name)
}

func TestLoadTemplates_EmptyDir(t *testing.T) {
	_, err := loadTemplates(t.TempDir())
	assert.Error(t, err)
}

// =============================================================================
// Exit Codes
// =============================================================================

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil is success", nil, ExitOK},
		{"policy failure", ErrPolicyFailed, ExitFailed},
		{"blocked gate", ErrGateBlocked, ExitBlocked},
		{"wrapped policy failure", fmt.Errorf("run: %w", ErrPolicyFailed), ExitFailed},
		{"anything else is internal", errors.New("boom"), ExitInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

// =============================================================================
// Commands
// =============================================================================

func TestValidateCommand_Clean(t *testing.T) {
	dir := writeTemplates(t, cleanTemplate)

	out, err := runCommand(t,
		"validate",
		"--stack", "acctdemo",
		"--env", "dev",
		"--set", "LOCAL_DOMAIN=localtest.me",
		"--templates", dir,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "acctdemo.localtest.me")
}

func TestValidateCommand_Violations(t *testing.T) {
	dir := writeTemplates(t, "services:\n  web:\n    image: nginx:latest\n")

	out, err := runCommand(t,
		"validate",
		"--stack", "acctdemo",
		"--env", "dev",
		"--set", "LOCAL_DOMAIN=localtest.me",
		"--templates", dir,
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPolicyFailed)
	assert.Contains(t, out, "FloatingImageTag")
}

func TestValidateCommand_UnknownEnvironment(t *testing.T) {
	dir := writeTemplates(t, cleanTemplate)

	_, err := runCommand(t,
		"validate",
		"--stack", "acctdemo",
		"--env", "staging",
		"--templates", dir,
	)
	require.Error(t, err)
	assert.Equal(t, ExitInternal, ExitCode(err))
}

func TestRenderCommand_WritesArtifacts(t *testing.T) {
	templatesDir := writeTemplates(t, cleanTemplate)
	outDir := filepath.Join(t.TempDir(), "out")

	_, err := runCommand(t,
		"render",
		"--stack", "acctdemo",
		"--env", "dev",
		"--set", "LOCAL_DOMAIN=localtest.me",
		"--templates", templatesDir,
		"--output", outDir,
	)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(outDir, "compose.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "acctdemo.localtest.me")
	assert.NotContains(t, string(content), "${")
}

func TestRenderCommand_Stdout(t *testing.T) {
	templatesDir := writeTemplates(t, cleanTemplate)

	out, err := runCommand(t,
		"render",
		"--stack", "acctdemo",
		"--env", "dev",
		"--set", "LOCAL_DOMAIN=localtest.me",
		"--templates", templatesDir,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "# compose.yaml")
	assert.Contains(t, out, "acctdemo.localtest.me")
}
