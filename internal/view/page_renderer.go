package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"guildhall/internal/policy"
)

// Glyphs used by the HTML pages for each icon name.
var glyphs = map[policy.Icon]string{
	policy.IconNone:        "",
	policy.IconShieldCheck: "🛡",
	policy.IconShieldAlert: "⚠",
	policy.IconHash:        "#",
	policy.IconMic:         "🎙",
	policy.IconVideo:       "📹",
}

func Glyph(icon policy.Icon) string {
	return glyphs[icon]
}

var funcs = template.FuncMap{
	"glyph": Glyph,
}

// PageRenderer renderes web pages throuh a set of templates
type PageRenderer struct {
	templates map[string]*template.Template
}

// Creates a page renderer with the given set:
//
//	The key is a template path
//	The value is a set of paths of templates with layouts
func NewPageRenderer(tmplMap map[string][]string) (*PageRenderer, error) {
	templates := make(map[string]*template.Template)

	for k, v := range tmplMap {
		t, err := template.New(k).Funcs(funcs).ParseFiles(v...)
		if err != nil {
			return nil, fmt.Errorf("Template could not be parsed{%s}: %w", k, err)
		}
		templates[k] = t
	}
	return &PageRenderer{templates: templates}, nil
}

// Renders the template with name "name". Nothing is written to wr when
// execution fails.
func (pr *PageRenderer) RenderTemplate(wr io.Writer, name string, data any) error {
	t, ok := pr.templates[name]
	if !ok {
		return fmt.Errorf("Template is missing{%s}", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(wr)
	return err
}
