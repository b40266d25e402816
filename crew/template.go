package crew

import (
	_ "embed"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/habiliai/agenteat/errors"
)

var (
	//go:embed data/instructions/system.md.tmpl
	systemInst     string
	systemInstTmpl = template.Must(template.New("system").Funcs(funcMap()).Parse(systemInst))
)

func funcMap() template.FuncMap {
	return sprig.TxtFuncMap()
}

func parseTemplate(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(funcMap()).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "invalid %s template: %v", name, err)
	}
	return tmpl, nil
}

func render(tmpl *template.Template, values any) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, values); err != nil {
		return "", errors.Wrapf(err, "failed to render %s", tmpl.Name())
	}
	return buf.String(), nil
}
