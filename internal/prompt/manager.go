package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"text/template"
)

// KeyGenerateCommand is the system instruction for command generation.
const KeyGenerateCommand = "generate_command"

// GenerateCommandData feeds the generate_command template.
type GenerateCommandData struct {
	Platform string
	Shell    string
}

var defaultPrompts = map[string]string{
	KeyGenerateCommand: "You are Shell Command Generator. " +
		"Provide only {{.Shell}} commands for {{.Platform}}. " +
		"Output ONLY the command itself without any explanations, quotes or markdown. " +
		"If the request is impossible or unclear, return 'ERROR: ' followed by a brief reason.",
}

// Manager handles loading and accessing prompts.
type Manager struct {
	prompts map[string]string
}

// NewDefaultManager creates a prompt manager with built-in default prompts.
func NewDefaultManager() *Manager {
	prompts := make(map[string]string, len(defaultPrompts))
	for k, v := range defaultPrompts {
		prompts[k] = v
	}
	return &Manager{prompts: prompts}
}

// NewManager creates a prompt manager from a JSON file of key -> template.
// Keys missing from the file keep their built-in default.
func NewManager(path string) (*Manager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var overrides map[string]string
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse prompts file %s: %w", path, err)
	}

	m := NewDefaultManager()
	for k, v := range overrides {
		if _, err := template.New(k).Parse(v); err != nil {
			return nil, fmt.Errorf("prompt %q: %w", k, err)
		}
		m.prompts[k] = v
	}
	return m, nil
}

// GetPrompt returns a prompt template by key.
func (m *Manager) GetPrompt(key string) (string, error) {
	if p, ok := m.prompts[key]; ok {
		return p, nil
	}
	return "", fmt.Errorf("prompt with key '%s' not found", key)
}

// Render executes the template stored under key with data.
func (m *Manager) Render(key string, data interface{}) (string, error) {
	promptTemplate, err := m.GetPrompt(key)
	if err != nil {
		return "", err
	}

	t, err := template.New(key).Option("missingkey=error").Parse(promptTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var tpl bytes.Buffer
	if err := t.Execute(&tpl, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return tpl.String(), nil
}
