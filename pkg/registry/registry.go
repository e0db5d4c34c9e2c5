// Package registry stores generated component files keyed by component
// name. The name is the identity key: writes are upserts, so applying
// the same artifact twice leaves one entry.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// Registry errors.
var (
	ErrInvalidName = errors.New("registry: component name must start with an uppercase letter")
	ErrExists      = errors.New("registry: component already exists")
	ErrNotFound    = errors.New("registry: component not found")
	ErrNotCode     = errors.New("registry: content does not look like component code")
)

// Component is a stored component file.
type Component struct {
	Name     string
	FilePath string
	Code     string
}

// Registry is a file-backed component store. Component X lives at
// <dir>/components/X.tsx.
type Registry struct {
	dir string
}

// New creates a registry rooted at dir, creating the components
// directory if needed.
func New(dir string) (*Registry, error) {
	r := &Registry{dir: dir}
	if err := os.MkdirAll(r.componentsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create components dir: %w", err)
	}

	return r, nil
}

// Create writes a new component file. Fails if the component exists.
func (r *Registry) Create(name, code string) (Component, error) {
	if err := validate(name, code); err != nil {
		return Component{}, err
	}

	path := r.path(name)
	if _, err := os.Stat(path); err == nil {
		return Component{}, fmt.Errorf("%w: %s (use update)", ErrExists, name)
	}

	return r.write(name, code)
}

// Update overwrites an existing component file. Fails if it is missing.
func (r *Registry) Update(name, code string) (Component, error) {
	if err := validate(name, code); err != nil {
		return Component{}, err
	}

	if _, err := os.Stat(r.path(name)); err != nil {
		return Component{}, fmt.Errorf("%w: %s (use create)", ErrNotFound, name)
	}

	return r.write(name, code)
}

// Ensure upserts a component. This is the idempotent entry point the
// side-effect dispatcher uses: replaying the same artifact twice leaves
// one file with the same content.
func (r *Registry) Ensure(name, code string) error {
	if err := validate(name, code); err != nil {
		return err
	}
	_, err := r.write(name, code)

	return err
}

// Read returns a stored component.
func (r *Registry) Read(name string) (Component, error) {
	data, err := os.ReadFile(r.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return Component{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Component{}, fmt.Errorf("read component %s: %w", name, err)
	}

	return Component{Name: name, FilePath: r.path(name), Code: string(data)}, nil
}

// List returns the names of all stored components, sorted.
func (r *Registry) List() ([]string, error) {
	entries, err := os.ReadDir(r.componentsDir())
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tsx") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".tsx"))
	}
	sort.Strings(names)

	return names, nil
}

func (r *Registry) write(name, code string) (Component, error) {
	path := r.path(name)
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return Component{}, fmt.Errorf("write component %s: %w", name, err)
	}

	return Component{Name: name, FilePath: path, Code: code}, nil
}

func (r *Registry) componentsDir() string {
	return filepath.Join(r.dir, "components")
}

func (r *Registry) path(name string) string {
	return filepath.Join(r.componentsDir(), name+".tsx")
}

func validate(name, code string) error {
	if name == "" || !unicode.IsUpper(rune(name[0])) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !looksLikeCode(code) {
		return ErrNotCode
	}

	return nil
}

// looksLikeCode rejects payloads that are explanatory prose rather than
// component source. The model occasionally sends "Here is the
// component..." as the code argument.
func looksLikeCode(code string) bool {
	lower := strings.ToLower(code)
	for _, phrase := range []string{"here is", "i have created", "i've created", "i have updated", "i've updated", "## "} {
		if strings.Contains(lower, phrase) {
			return false
		}
	}

	return strings.Contains(lower, "function") ||
		strings.Contains(lower, "const") ||
		strings.Contains(code, "=>")
}
