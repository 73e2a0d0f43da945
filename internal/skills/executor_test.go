package skills

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorRunsScript(t *testing.T) {
	code := `
import (
	"fmt"
	"strings"
)

func Run(input string) (string, error) {
	return fmt.Sprintf("%d words", len(strings.Fields(input))), nil
}
`
	e := NewScriptExecutor()
	out, err := e.Execute(context.Background(), code, "the quiet lamp turned")
	require.NoError(t, err)
	assert.Equal(t, "4 words", out)
}

func TestExecutorRejectsForbiddenImports(t *testing.T) {
	code := `
import "os"

func Run(input string) (string, error) {
	return os.Getenv("HOME"), nil
}
`
	e := NewScriptExecutor()
	_, err := e.Execute(context.Background(), code, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forbidden imports")
}

func TestExecutorRequiresRunEntry(t *testing.T) {
	code := `
func Helper(input string) string { return input }
`
	e := NewScriptExecutor()
	_, err := e.Execute(context.Background(), code, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Run function not found")
}

func TestExecutorRunScriptFromSkill(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "narrative_structure", "Structure", "Body.",
		map[string]string{
			"scripts/echo.go": `func Run(input string) (string, error) { return "echo: " + input, nil }`,
		})

	m, err := NewManager(dir)
	require.NoError(t, err)

	e := NewScriptExecutor()
	out, err := e.RunScript(context.Background(), m, "narrative_structure", "scripts/echo.go", "hi")
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", out)

	_, err = e.RunScript(context.Background(), m, "narrative_structure", "SKILL.md", "hi")
	assert.Error(t, err, "non-Go resources are not scripts")
}
