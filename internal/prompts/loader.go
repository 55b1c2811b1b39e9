// Package prompts stores the prompt templates the analysts send to model
// providers. Templates compile in via embed; a directory override lets
// operators iterate on prompt wording without rebuilding.
package prompts

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed templates/*.md
var templates embed.FS

// ErrNotFound is returned when a prompt name resolves to no template.
type ErrNotFound struct {
	Name string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("prompt template %q not found", e.Name)
}

// Store loads prompt templates by name. A non-empty dir takes precedence over
// the embedded copies.
type Store struct {
	dir string
}

// NewStore creates a prompt store. dir may be empty to use only embedded
// templates.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Load returns the template body for a prompt name, without extension.
func (s *Store) Load(name string) (string, error) {
	filename := name + ".md"

	if s.dir != "" {
		data, err := os.ReadFile(filepath.Join(s.dir, filename))
		if err == nil {
			return string(data), nil
		}
	}

	data, err := templates.ReadFile("templates/" + filename)
	if err != nil {
		return "", &ErrNotFound{Name: name}
	}
	return string(data), nil
}

// Render loads a template and substitutes {placeholder} variables.
func (s *Store) Render(name string, vars map[string]string) (string, error) {
	body, err := s.Load(name)
	if err != nil {
		return "", err
	}
	for key, value := range vars {
		body = strings.ReplaceAll(body, "{"+key+"}", value)
	}
	return body, nil
}
