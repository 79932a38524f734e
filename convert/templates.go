package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"hbc/config"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Title      string
	Headers    []string
	Format     string
	SourceFile string
	SourceDir  string
	Blocks     int
	Entities   int
}

func expandTemplate(r *Result, name config.TemplateFieldName, field string) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:    string(name),
		Title:      r.Title(),
		Headers:    r.Headers(),
		Format:     r.Format.String(),
		SourceFile: strings.TrimSuffix(filepath.Base(r.SrcName), filepath.Ext(r.SrcName)),
		SourceDir:  filepath.ToSlash(filepath.Dir(r.SrcName)),
		Blocks:     len(r.Doc.Blocks),
	}
	if r.Doc.Entities != nil {
		values.Entities = r.Doc.Entities.Len()
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
