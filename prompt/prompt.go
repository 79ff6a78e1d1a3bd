// Package prompt holds the text/template prompts sent to the model. Every
// model call renders a pair: "<name>.system" and "<name>.user".
package prompt

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"text/template"
)

// Vars are the values a prompt is rendered with.
type Vars map[string]any

// Template is one parsed prompt.
type Template struct {
	Name    string
	Content string
	tmpl    *template.Template
}

// NewTemplate parses content.
func NewTemplate(name, content string) (*Template, error) {
	tmpl, err := template.New(name).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", name, err)
	}
	return &Template{Name: name, Content: content, tmpl: tmpl}, nil
}

// Render executes the template with vars.
func (t *Template) Render(vars Vars) (string, error) {
	var buf strings.Builder
	if err := t.tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", t.Name, err)
	}
	return buf.String(), nil
}

// Manager is a named set of templates, safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{templates: make(map[string]*Template)}
}

// Register adds tmpl; names are unique.
func (m *Manager) Register(tmpl *Template) error {
	if tmpl.Name == "" {
		return fmt.Errorf("template name cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.templates[tmpl.Name]; exists {
		return fmt.Errorf("template %s already registered", tmpl.Name)
	}
	m.templates[tmpl.Name] = tmpl
	return nil
}

// RegisterString parses and registers content under name.
func (m *Manager) RegisterString(name, content string) error {
	tmpl, err := NewTemplate(name, content)
	if err != nil {
		return err
	}
	return m.Register(tmpl)
}

// MustRegisterString is RegisterString for prompts compiled into the binary.
func (m *Manager) MustRegisterString(name, content string) {
	if err := m.RegisterString(name, content); err != nil {
		panic(err)
	}
}

// Override replaces, or adds, the template called name.
func (m *Manager) Override(name, content string) error {
	tmpl, err := NewTemplate(name, content)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[name] = tmpl
	return nil
}

// Get looks a template up by name.
func (m *Manager) Get(name string) (*Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tmpl, ok := m.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %s not found", name)
	}
	return tmpl, nil
}

// Render renders the template called name.
func (m *Manager) Render(name string, vars Vars) (string, error) {
	tmpl, err := m.Get(name)
	if err != nil {
		return "", err
	}
	return tmpl.Render(vars)
}

// RenderPair renders the system and user halves of a prompt.
func (m *Manager) RenderPair(name string, vars Vars) (system, user string, err error) {
	if system, err = m.Render(name+systemSuffix, vars); err != nil {
		return "", "", err
	}
	if user, err = m.Render(name+userSuffix, vars); err != nil {
		return "", "", err
	}
	return system, user, nil
}

// Names lists the registered template names in order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.templates))
	for name := range m.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
