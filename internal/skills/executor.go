package skills

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// Skill resources may include small Go scripts (word counters, structure
// checkers). They run interpreted rather than compiled: no build step, no
// binaries, and the import whitelist keeps them away from the filesystem,
// network, and exec.

// ScriptExecutor runs skill scripts in a sandboxed interpreter.
type ScriptExecutor struct {
	allowedPackages map[string]bool
}

// NewScriptExecutor creates an executor with the safe stdlib whitelist.
func NewScriptExecutor() *ScriptExecutor {
	return &ScriptExecutor{
		allowedPackages: map[string]bool{
			"strings":         true,
			"strconv":         true,
			"fmt":             true,
			"math":            true,
			"regexp":          true,
			"encoding/json":   true,
			"time":            true,
			"sort":            true,
			"bytes":           true,
			"unicode":         true,
			"unicode/utf8":    true,

			// Blocked: os, os/exec, net, net/http, syscall, unsafe.
		},
	}
}

// RunScript executes a skill's Go script resource with the given input.
// The script must define: func Run(input string) (string, error)
func (e *ScriptExecutor) RunScript(ctx context.Context, m *Manager, skillName, scriptPath, input string) (string, error) {
	c, err := m.Load(skillName)
	if err != nil {
		return "", err
	}

	full := filepath.Join(c.Metadata.Dir, filepath.Clean(scriptPath))
	if filepath.Ext(full) != ".go" {
		return "", fmt.Errorf("script %s is not a Go file", scriptPath)
	}
	code, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("failed to read script %s: %w", scriptPath, err)
	}

	return e.Execute(ctx, string(code), input)
}

// Execute evaluates Go source in the interpreter and calls its Run entry.
func (e *ScriptExecutor) Execute(ctx context.Context, code, input string) (string, error) {
	if err := e.validateImports(code); err != nil {
		return "", fmt.Errorf("invalid imports: %w", err)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return "", fmt.Errorf("failed to load stdlib: %w", err)
	}

	if _, err := i.Eval(wrapCode(code)); err != nil {
		return "", fmt.Errorf("script evaluation failed: %w", err)
	}

	entry, err := i.Eval("main.Run")
	if err != nil {
		return "", fmt.Errorf("Run function not found: %w", err)
	}
	run, ok := entry.Interface().(func(string) (string, error))
	if !ok {
		return "", fmt.Errorf("Run has incorrect signature (expected: func(string) (string, error))")
	}

	resultCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		out, runErr := run(input)
		if runErr != nil {
			errCh <- runErr
			return
		}
		resultCh <- out
	}()

	select {
	case out := <-resultCh:
		return out, nil
	case runErr := <-errCh:
		return "", runErr
	case <-ctx.Done():
		return "", fmt.Errorf("script execution timed out: %w", ctx.Err())
	}
}

// validateImports rejects code that imports anything off the whitelist.
func (e *ScriptExecutor) validateImports(code string) error {
	var imports []string
	inBlock := false
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "import (") {
			inBlock = true
			continue
		}
		if inBlock && strings.HasPrefix(trimmed, ")") {
			inBlock = false
			continue
		}
		if inBlock {
			imports = append(imports, strings.Trim(trimmed, `"`))
		} else if strings.HasPrefix(trimmed, "import ") {
			imports = append(imports, strings.Trim(strings.TrimPrefix(trimmed, "import "), `"`))
		}
	}

	var forbidden []string
	for _, pkg := range imports {
		if pkg == "" {
			continue
		}
		if !e.allowedPackages[pkg] {
			forbidden = append(forbidden, pkg)
		}
	}
	if len(forbidden) > 0 {
		return fmt.Errorf("forbidden imports: %v", forbidden)
	}
	return nil
}

func wrapCode(code string) string {
	if strings.Contains(code, "package main") {
		return code
	}
	return "package main\n\n" + code
}
