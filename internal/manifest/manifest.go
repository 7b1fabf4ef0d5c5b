// Package manifest reads YAML rundown manifests and applies their elements
// to a rundown in document order.
package manifest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"vizmse/internal/rundown"
	"vizmse/internal/services"
)

// Manifest is a rundown definition with the elements it should contain.
type Manifest struct {
	Show        string    `yaml:"show"`
	Playlist    string    `yaml:"playlist"`
	Profile     string    `yaml:"profile"`
	Description string    `yaml:"description"`
	Elements    []Element `yaml:"elements"`
}

// Element is either an internal element (template and name) or an external
// reference (vcpid).
type Element struct {
	Template string   `yaml:"template,omitempty"`
	Name     string   `yaml:"name,omitempty"`
	Fields   []string `yaml:"fields,omitempty"`
	VCPID    *int     `yaml:"vcpid,omitempty"`
	Channel  string   `yaml:"channel,omitempty"`
}

// Spec converts the element into a creation request.
func (e Element) Spec() rundown.ElementSpec {
	if e.VCPID != nil {
		return rundown.ElementSpec{Ref: rundown.External(*e.VCPID), Channel: e.Channel}
	}
	return rundown.ElementSpec{
		Ref:      rundown.Internal(e.Name),
		Template: e.Template,
		Fields:   e.Fields,
		Channel:  e.Channel,
	}
}

// Result records the outcome of one applied element.
type Result struct {
	Index   int              `json:"index"`
	Created *rundown.Created `json:"created"`
}

// Creator is the part of a rundown Apply needs.
type Creator interface {
	Create(ctx context.Context, spec rundown.ElementSpec) (*rundown.Created, error)
}

// Parse decodes and validates a manifest payload.
func Parse(data []byte) (*Manifest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, services.Wrap(services.ErrUsage, "manifest", "parse", "manifest is empty", nil)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, services.Wrap(services.ErrUsage, "manifest", "parse", "decode yaml", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", path, err)
	}
	return m, nil
}

// Validate checks that every element names exactly one namespace.
func (m *Manifest) Validate() error {
	for i, el := range m.Elements {
		internal := strings.TrimSpace(el.Template) != "" || strings.TrimSpace(el.Name) != ""
		switch {
		case el.VCPID != nil && internal:
			return services.Wrap(services.ErrUsage, "manifest", "validate",
				fmt.Sprintf("element %d: vcpid cannot be combined with template or name", i), nil)
		case el.VCPID != nil:
			if *el.VCPID < 0 {
				return services.Wrap(services.ErrUsage, "manifest", "validate",
					fmt.Sprintf("element %d: vcpid must not be negative", i), nil)
			}
			if len(el.Fields) > 0 {
				return services.Wrap(services.ErrUsage, "manifest", "validate",
					fmt.Sprintf("element %d: external elements take no fields", i), nil)
			}
		case strings.TrimSpace(el.Template) == "" || strings.TrimSpace(el.Name) == "":
			return services.Wrap(services.ErrUsage, "manifest", "validate",
				fmt.Sprintf("element %d: internal elements need both template and name", i), nil)
		}
	}
	return nil
}

// Options returns rundown options for the manifest's identifiers. Empty
// manifest values fall back to the matching field of base.
func (m *Manifest) Options(base rundown.Options) rundown.Options {
	if m.Show != "" {
		base.Show = m.Show
	}
	if m.Playlist != "" {
		base.Playlist = m.Playlist
	}
	if m.Profile != "" {
		base.Profile = m.Profile
	}
	if m.Description != "" {
		base.Description = m.Description
	}
	return base
}

// Apply creates the manifest's elements in document order and stops at the
// first failure. Results for the elements created before it are returned
// with the error.
func (m *Manifest) Apply(ctx context.Context, target Creator) ([]Result, error) {
	results := make([]Result, 0, len(m.Elements))
	for i, el := range m.Elements {
		created, err := target.Create(ctx, el.Spec())
		if err != nil {
			return results, fmt.Errorf("element %d (%s): %w", i, el.Spec().Ref, err)
		}
		results = append(results, Result{Index: i, Created: created})
	}
	return results, nil
}
