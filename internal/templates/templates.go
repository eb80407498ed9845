// Package templates provides a catalog of parameterized shell command
// templates. The built-in catalog is embedded YAML; more catalogs can be
// loaded from disk and merged on top.
package templates

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtinYAML []byte

// ErrNotFound is returned when no template has the requested ID.
var ErrNotFound = errors.New("template not found")

// Parameter is one placeholder of a template command.
type Parameter struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Required    bool     `yaml:"required,omitempty" json:"required"`
	Default     string   `yaml:"default,omitempty" json:"defaultValue,omitempty"`
	Examples    []string `yaml:"examples,omitempty" json:"examples,omitempty"`
}

// Template is a reusable command with {name} placeholders.
type Template struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description" json:"description"`
	Command     string      `yaml:"command" json:"command"`
	Category    string      `yaml:"category" json:"category"`
	Tags        []string    `yaml:"tags" json:"tags"`
	Parameters  []Parameter `yaml:"parameters" json:"parameters"`
	Examples    []string    `yaml:"examples" json:"examples"`
	Safe        bool        `yaml:"safe" json:"safe"`
	Complexity  string      `yaml:"complexity" json:"complexity"`
}

// catalogFile is the top-level structure of a catalog YAML file.
type catalogFile struct {
	Version   int        `yaml:"version"`
	Templates []Template `yaml:"templates"`
}

// placeholderRe matches any {name} placeholder.
var placeholderRe = regexp.MustCompile(`\{[^}]+\}`)

// idRe matches kebab-case template IDs.
var idRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Catalog is an ordered, read-only set of templates.
type Catalog struct {
	templates []Template
}

var builtin = mustParse(builtinYAML)

func mustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("templates: invalid built-in catalog: %v", err))
	}
	return c
}

// Builtin returns the catalog shipped with cmdlens.
func Builtin() *Catalog {
	return builtin
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if cf.Version != 1 {
		return nil, fmt.Errorf("unsupported catalog version %d (expected 1)", cf.Version)
	}

	seen := make(map[string]bool, len(cf.Templates))
	for i := range cf.Templates {
		t := &cf.Templates[i]
		if !idRe.MatchString(t.ID) {
			return nil, fmt.Errorf("template %q: id must be kebab-case", t.ID)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("template %q: duplicate id", t.ID)
		}
		seen[t.ID] = true
		if strings.TrimSpace(t.Command) == "" {
			return nil, fmt.Errorf("template %q: command is required", t.ID)
		}
		for j, tag := range t.Tags {
			t.Tags[j] = strings.ToLower(tag)
		}
	}
	return &Catalog{templates: cf.Templates}, nil
}

// LoadFile reads a catalog file from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Merge returns a new catalog with the templates of other appended. A
// template in other replaces the one with the same ID in place.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	merged := slices.Clone(c.templates)
	for _, t := range other.templates {
		if i := slices.IndexFunc(merged, func(m Template) bool { return m.ID == t.ID }); i >= 0 {
			merged[i] = t
		} else {
			merged = append(merged, t)
		}
	}
	return &Catalog{templates: merged}
}

// All returns every template in catalog order.
func (c *Catalog) All() []Template {
	return slices.Clone(c.templates)
}

// Get returns the template with the given ID.
func (c *Catalog) Get(id string) (Template, error) {
	for _, t := range c.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// ByCategory returns templates in the given category.
func (c *Catalog) ByCategory(category string) []Template {
	return c.filter(func(t Template) bool { return t.Category == category })
}

// ByTag returns templates carrying tag, ignoring case.
func (c *Catalog) ByTag(tag string) []Template {
	tag = strings.ToLower(tag)
	return c.filter(func(t Template) bool { return slices.Contains(t.Tags, tag) })
}

// Search matches query against name, description, command and tags,
// ignoring case.
func (c *Catalog) Search(query string) []Template {
	q := strings.ToLower(query)
	return c.filter(func(t Template) bool {
		if strings.Contains(strings.ToLower(t.Name), q) ||
			strings.Contains(strings.ToLower(t.Description), q) ||
			strings.Contains(strings.ToLower(t.Command), q) {
			return true
		}
		return slices.ContainsFunc(t.Tags, func(tag string) bool {
			return strings.Contains(tag, q)
		})
	})
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	var out []string
	for _, t := range c.templates {
		if !slices.Contains(out, t.Category) {
			out = append(out, t.Category)
		}
	}
	return out
}

// PopularTags returns tags ordered by how many templates use them. Ties keep
// first-seen order.
func (c *Catalog) PopularTags() []string {
	counts := make(map[string]int)
	var order []string
	for _, t := range c.templates {
		for _, tag := range t.Tags {
			if counts[tag] == 0 {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}
	slices.SortStableFunc(order, func(a, b string) int {
		return counts[b] - counts[a]
	})
	return order
}

func (c *Catalog) filter(keep func(Template) bool) []Template {
	out := []Template{}
	for _, t := range c.templates {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// Missing returns the required parameters that have neither a value in
// params nor a default.
func (t Template) Missing(params map[string]string) []string {
	var missing []string
	for _, p := range t.Parameters {
		if p.Required && params[p.Name] == "" && p.Default == "" {
			missing = append(missing, p.Name)
		}
	}
	return missing
}

// Generate substitutes every {name} placeholder. A value from params wins,
// then the parameter default. Placeholders left without a value are removed
// and the result is trimmed.
func (t Template) Generate(params map[string]string) string {
	command := t.Command
	for _, p := range t.Parameters {
		value, ok := params[p.Name]
		if !ok {
			value = p.Default
		}
		command = strings.ReplaceAll(command, "{"+p.Name+"}", value)
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		command = strings.ReplaceAll(command, "{"+name+"}", params[name])
	}
	command = placeholderRe.ReplaceAllString(command, "")
	return strings.TrimSpace(command)
}
