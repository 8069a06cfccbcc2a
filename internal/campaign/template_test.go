package campaign

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_LiteralPassthrough(t *testing.T) {
	const html = `<!DOCTYPE html>
<html><body><h1>March update</h1><p>No merge fields here, 100% literal.</p></body></html>`

	tpl, err := ParseTemplate(html)
	require.NoError(t, err)

	out, err := tpl.Render(Recipient{Email: "a@x.com", Fields: map[string]string{"email": "a@x.com"}})
	require.NoError(t, err)
	assert.Equal(t, html, out, "a template without tags renders byte-identically")
}

func TestTemplate_MergeFields(t *testing.T) {
	tpl, err := ParseTemplate(`<p>Hi {{ first_name }}, your plan is {{ plan }}.</p>`)
	require.NoError(t, err)

	out, err := tpl.Render(Recipient{
		Email:  "ada@x.com",
		Fields: map[string]string{"email": "ada@x.com", "first_name": "Ada", "plan": "pro"},
	})
	require.NoError(t, err)
	assert.Equal(t, "<p>Hi Ada, your plan is pro.</p>", out)
}

func TestTemplate_MissingFieldRendersEmpty(t *testing.T) {
	tpl, err := ParseTemplate(`<p>Hi {{ nickname }}!</p>`)
	require.NoError(t, err)

	out, err := tpl.Render(Recipient{Email: "a@x.com", Fields: map[string]string{"email": "a@x.com"}})
	require.NoError(t, err)
	assert.Equal(t, "<p>Hi !</p>", out)
}

func TestLoadTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>Hello {{ first_name }}</p>"), 0o644))

	tpl, err := LoadTemplate(path)
	require.NoError(t, err)

	out, err := tpl.Render(Recipient{Email: "a@x.com", Fields: map[string]string{"first_name": "Ada"}})
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello Ada</p>", out)
}

func TestLoadTemplate_MissingFile(t *testing.T) {
	_, err := LoadTemplate(filepath.Join(t.TempDir(), "nope.html"))
	require.Error(t, err)
}
