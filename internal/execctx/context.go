// Package execctx models the mutable process environment as an explicit
// value instead of ambient global state. Environment activation and service
// launch both mutate the search path and variable state of the processes they
// spawn; threading an ExecutionContext through them keeps that mutation in
// one owned place and lets tests assert on it without touching the real
// process environment.
package execctx

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// ExecutionContext is a snapshot of environment variables plus the search
// path, owned by a single logical actor. It is not safe for concurrent use;
// the bootstrap sequence is strictly sequential by design.
type ExecutionContext struct {
	vars map[string]string

	// pathKey preserves the original casing of the PATH variable.
	// Windows environments commonly carry "Path".
	pathKey string
}

// New returns an empty ExecutionContext. Useful for tests.
func New() *ExecutionContext {
	return &ExecutionContext{vars: make(map[string]string), pathKey: "PATH"}
}

// FromOS captures the current process environment.
func FromOS() *ExecutionContext {
	c := New()
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		c.Set(k, v)
	}
	return c
}

// Get returns the value of an environment variable, or "" if unset.
func (c *ExecutionContext) Get(key string) string {
	return c.vars[c.canonical(key)]
}

// Set assigns an environment variable.
func (c *ExecutionContext) Set(key, value string) {
	if strings.EqualFold(key, "PATH") {
		c.pathKey = key
	}
	c.vars[c.canonical(key)] = value
}

// Unset removes an environment variable.
func (c *ExecutionContext) Unset(key string) {
	delete(c.vars, c.canonical(key))
}

// PrependPath places dir at the front of the search path so binaries in it
// shadow any system-wide copies.
func (c *ExecutionContext) PrependPath(dir string) {
	current := c.Get("PATH")
	if current == "" {
		c.Set("PATH", dir)
		return
	}
	c.Set("PATH", dir+string(os.PathListSeparator)+current)
}

// PathEntries returns the search path split into its directories.
func (c *ExecutionContext) PathEntries() []string {
	return filepath.SplitList(c.Get("PATH"))
}

// Environ renders the context as KEY=VALUE pairs suitable for exec.Cmd.Env.
// Keys are sorted for deterministic output.
func (c *ExecutionContext) Environ() []string {
	env := make([]string, 0, len(c.vars))
	for k, v := range c.vars {
		key := k
		if k == "PATH" {
			key = c.pathKey
		}
		env = append(env, key+"="+v)
	}
	sort.Strings(env)
	return env
}

// LookPath resolves an executable against the context's own search path,
// not the real process PATH. Falls back to exec.LookPath semantics for
// absolute or relative names.
func (c *ExecutionContext) LookPath(name string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) {
		return exec.LookPath(name)
	}
	for _, dir := range c.PathEntries() {
		if dir == "" {
			continue
		}
		for _, candidate := range executableCandidates(filepath.Join(dir, name)) {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// canonical folds the PATH key so lookups behave the same on platforms with
// case-insensitive environment blocks.
func (c *ExecutionContext) canonical(key string) string {
	if strings.EqualFold(key, "PATH") {
		return "PATH"
	}
	return key
}
