package campaign

import (
	"fmt"
	"os"

	"github.com/osteele/liquid"
)

// Template is the newsletter body, loaded once and rendered per recipient.
// Rendering substitutes Liquid output tags against the recipient's merge
// fields; a document without tags passes through byte-identical, so plain
// HTML templates behave exactly as literal content.
type Template struct {
	raw string
	tpl *liquid.Template
}

// LoadTemplate reads and compiles the HTML template file.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}
	return ParseTemplate(string(data))
}

// ParseTemplate compiles a template from a string.
func ParseTemplate(content string) (*Template, error) {
	tpl, err := liquid.NewEngine().ParseString(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Template{raw: content, tpl: tpl}, nil
}

// Render produces the body for one recipient.
func (t *Template) Render(rec Recipient) (string, error) {
	out, err := t.tpl.RenderString(bindings(rec))
	if err != nil {
		return "", fmt.Errorf("failed to render template for %s: %w", rec.Email, err)
	}
	return out, nil
}

func bindings(rec Recipient) map[string]interface{} {
	b := make(map[string]interface{}, len(rec.Fields))
	for k, v := range rec.Fields {
		b[k] = v
	}
	return b
}
