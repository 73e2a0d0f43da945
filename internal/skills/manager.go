// Package skills implements progressive disclosure of writing craft
// guidance. Each skill is a directory containing a SKILL.md with YAML
// frontmatter plus optional resource files:
//   - Level 1: metadata (name + description), always cheap to list
//   - Level 2: full instructions, loaded when a skill is used
//   - Level 3: resource files, loaded on demand as referenced
package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"muse/internal/logging"
)

// Metadata is the always-available level 1 view of a skill.
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Dir is the skill's directory on disk.
	Dir string `yaml:"-"`
}

// PromptLine renders the metadata for a system prompt listing.
func (m Metadata) PromptLine() string {
	return fmt.Sprintf("- **%s**: %s", m.Name, m.Description)
}

// Content is the level 2 view: full instructions plus the names of the
// skill's resource files.
type Content struct {
	Metadata     Metadata
	Instructions string
	Resources    []string
}

// Manager loads skills from a directory and caches both levels.
type Manager struct {
	dir string

	mu       sync.RWMutex
	metadata map[string]Metadata
	content  map[string]*Content
}

// NewManager creates a manager over a skills directory and loads level 1
// metadata. A missing directory yields an empty manager, not an error.
func NewManager(dir string) (*Manager, error) {
	m := &Manager{
		dir:      dir,
		metadata: make(map[string]Metadata),
		content:  make(map[string]*Content),
	}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload rescans the skills directory, replacing the metadata cache and
// dropping cached content.
func (m *Manager) Reload() error {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			m.mu.Lock()
			m.metadata = make(map[string]Metadata)
			m.content = make(map[string]*Content)
			m.mu.Unlock()
			return nil
		}
		return fmt.Errorf("failed to read skills dir: %w", err)
	}

	metadata := make(map[string]Metadata)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		skillDir := filepath.Join(m.dir, entry.Name())
		meta, err := parseMetadata(filepath.Join(skillDir, "SKILL.md"), skillDir, entry.Name())
		if err != nil {
			logging.Get(logging.CategorySkills).Warn("skipping skill %s: %v", entry.Name(), err)
			continue
		}
		metadata[meta.Name] = meta
	}

	m.mu.Lock()
	m.metadata = metadata
	m.content = make(map[string]*Content)
	m.mu.Unlock()

	logging.Skills("loaded %d skills from %s", len(metadata), m.dir)
	return nil
}

// parseMetadata reads the YAML frontmatter of a SKILL.md.
func parseMetadata(skillFile, skillDir, fallbackName string) (Metadata, error) {
	data, err := os.ReadFile(skillFile)
	if err != nil {
		return Metadata{}, fmt.Errorf("no SKILL.md: %w", err)
	}

	frontmatter, _, ok := splitFrontmatter(string(data))
	if !ok {
		return Metadata{}, fmt.Errorf("missing YAML frontmatter")
	}

	var meta Metadata
	if err := yaml.Unmarshal([]byte(frontmatter), &meta); err != nil {
		return Metadata{}, fmt.Errorf("invalid frontmatter: %w", err)
	}
	if meta.Name == "" {
		meta.Name = fallbackName
	}
	meta.Dir = skillDir
	return meta, nil
}

// splitFrontmatter separates a "---" delimited YAML block from the body.
func splitFrontmatter(content string) (frontmatter, body string, ok bool) {
	if !strings.HasPrefix(content, "---") {
		return "", content, false
	}
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return "", content, false
	}
	return parts[1], strings.TrimSpace(parts[2]), true
}

// All returns level 1 metadata for every skill, sorted by name.
func (m *Manager) All() []Metadata {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Metadata, 0, len(m.metadata))
	for _, meta := range m.metadata {
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Load returns the level 2 content of a skill, reading SKILL.md on first
// use and caching the result.
func (m *Manager) Load(name string) (*Content, error) {
	m.mu.RLock()
	if c, ok := m.content[name]; ok {
		m.mu.RUnlock()
		return c, nil
	}
	meta, ok := m.metadata[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("skill %q not found", name)
	}

	data, err := os.ReadFile(filepath.Join(meta.Dir, "SKILL.md"))
	if err != nil {
		return nil, fmt.Errorf("failed to read skill %s: %w", name, err)
	}
	_, body, _ := splitFrontmatter(string(data))

	var resources []string
	if err := filepath.WalkDir(meta.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, relErr := filepath.Rel(meta.Dir, path)
		if relErr != nil {
			return relErr
		}
		if rel != "SKILL.md" {
			resources = append(resources, rel)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to list resources for %s: %w", name, err)
	}
	sort.Strings(resources)

	c := &Content{Metadata: meta, Instructions: body, Resources: resources}
	m.mu.Lock()
	m.content[name] = c
	m.mu.Unlock()
	return c, nil
}

// Use returns a skill's full instructions. This is the lookup interface
// consumed by the story pipeline.
func (m *Manager) Use(name string) (string, error) {
	c, err := m.Load(name)
	if err != nil {
		return "", err
	}
	return c.Instructions, nil
}

// ReadResource returns a level 3 resource file. Go script resources are
// not returned verbatim; they are pointed at the script runner instead.
func (m *Manager) ReadResource(name, resourcePath string) (string, error) {
	c, err := m.Load(name)
	if err != nil {
		return "", err
	}

	full := filepath.Join(c.Metadata.Dir, filepath.Clean(resourcePath))
	// Resources must stay inside the skill directory.
	if !strings.HasPrefix(full, c.Metadata.Dir+string(os.PathSeparator)) {
		return "", fmt.Errorf("resource path escapes skill directory: %s", resourcePath)
	}

	if filepath.Ext(full) == ".go" {
		return fmt.Sprintf("Go script at: %s\nRun it with the skill script runner.", full), nil
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("failed to read resource %s: %w", resourcePath, err)
	}
	return string(data), nil
}

// SystemPromptSection renders the level 1 listing for a system prompt.
// Empty when no skills are installed.
func (m *Manager) SystemPromptSection() string {
	all := m.All()
	if len(all) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n## Available Writing Skills\n\n")
	b.WriteString("You have access to specialized writing skills. Use them when creating stories:\n")
	for _, meta := range all {
		b.WriteString(meta.PromptLine())
		b.WriteString("\n")
	}
	return b.String()
}
