package skills

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSkill(t *testing.T, dir, name, description, instructions string, resources map[string]string) {
	t.Helper()
	skillDir := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(skillDir, 0755))

	content := "---\nname: " + name + "\ndescription: " + description + "\n---\n\n" + instructions + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(content), 0644))

	for rel, data := range resources {
		path := filepath.Join(skillDir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	}
}

func TestManagerLoadsMetadata(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "narrative_structure", "Story structure and beats", "Open with a hook.", nil)
	writeSkill(t, dir, "emotional_resonance", "Evoke specific emotions", "Use sensory anchors.", nil)

	m, err := NewManager(dir)
	require.NoError(t, err)

	all := m.All()
	require.Len(t, all, 2)
	// Sorted by name.
	assert.Equal(t, "emotional_resonance", all[0].Name)
	assert.Equal(t, "narrative_structure", all[1].Name)
	assert.Equal(t, "Story structure and beats", all[1].Description)
}

func TestManagerMissingDirIsEmpty(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, m.All())
	assert.Empty(t, m.SystemPromptSection())
}

func TestManagerSkipsSkillWithoutFrontmatter(t *testing.T) {
	dir := t.TempDir()
	skillDir := filepath.Join(dir, "broken")
	require.NoError(t, os.MkdirAll(skillDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, "SKILL.md"),
		[]byte("just instructions, no frontmatter"), 0644))
	writeSkill(t, dir, "good", "A valid skill", "Do the thing.", nil)

	m, err := NewManager(dir)
	require.NoError(t, err)
	all := m.All()
	require.Len(t, all, 1)
	assert.Equal(t, "good", all[0].Name)
}

func TestManagerLoadContent(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "narrative_structure", "Structure", "Open with a hook.\n\nClose with an echo.",
		map[string]string{
			"templates/ending_techniques.txt": "End on an image.",
			"scripts/count.go":                "func Run(input string) (string, error) { return input, nil }",
		})

	m, err := NewManager(dir)
	require.NoError(t, err)

	c, err := m.Load("narrative_structure")
	require.NoError(t, err)
	assert.Contains(t, c.Instructions, "Open with a hook.")
	assert.NotContains(t, c.Instructions, "description:", "frontmatter should be stripped")
	assert.Equal(t, []string{
		filepath.Join("scripts", "count.go"),
		filepath.Join("templates", "ending_techniques.txt"),
	}, c.Resources)

	_, err = m.Load("unknown")
	assert.Error(t, err)
}

func TestManagerUse(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "emotional_resonance", "Emotions", "Anchor feeling in objects.", nil)

	m, err := NewManager(dir)
	require.NoError(t, err)

	guidance, err := m.Use("emotional_resonance")
	require.NoError(t, err)
	assert.Equal(t, "Anchor feeling in objects.", guidance)
}

func TestManagerReadResource(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "narrative_structure", "Structure", "Body.",
		map[string]string{
			"templates/endings.txt": "End on an image.",
			"scripts/count.go":      "func Run(input string) (string, error) { return input, nil }",
		})

	m, err := NewManager(dir)
	require.NoError(t, err)

	t.Run("text resource returned verbatim", func(t *testing.T) {
		got, err := m.ReadResource("narrative_structure", "templates/endings.txt")
		require.NoError(t, err)
		assert.Equal(t, "End on an image.", got)
	})

	t.Run("go script pointed at the runner", func(t *testing.T) {
		got, err := m.ReadResource("narrative_structure", "scripts/count.go")
		require.NoError(t, err)
		assert.Contains(t, got, "Go script at:")
	})

	t.Run("path escape rejected", func(t *testing.T) {
		_, err := m.ReadResource("narrative_structure", "../../etc/passwd")
		assert.Error(t, err)
	})

	t.Run("missing resource", func(t *testing.T) {
		_, err := m.ReadResource("narrative_structure", "nope.txt")
		assert.Error(t, err)
	})
}

func TestSystemPromptSection(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "philosophical_storytelling", "Dramatize ideas through action", "Body.", nil)

	m, err := NewManager(dir)
	require.NoError(t, err)

	section := m.SystemPromptSection()
	assert.True(t, strings.Contains(section, "**philosophical_storytelling**"))
	assert.True(t, strings.Contains(section, "Dramatize ideas through action"))
}
