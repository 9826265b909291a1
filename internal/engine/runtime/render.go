package runtime

import (
	_ "embed"
	"encoding/json"
	"errors"
	"strings"
	"text/template"

	"go.trai.ch/knit/internal/core/domain"
)

//go:embed bootstrap.js.tmpl
var bootstrapSource string

var bootstrap = template.Must(template.New("bootstrap").Parse(bootstrapSource))

// Markers delimiting the machine-readable parts of a bundle.
const (
	graphMarker  = "/* knit:graph */\nJSON.parse("
	entryMarker  = "/* knit:entry */ require("
	moduleMarker = "/* knit:module "
	moduleHead   = ": function (require, exports, module) {\n"
)

type templateData struct {
	Entry    string
	Count    int
	Manifest string
	Modules  []templateModule
}

type templateModule struct {
	Index  int
	Length int
	Path   string
	Code   string
}

// Render produces the bootstrap script for g. The graph must be complete:
// every recorded dependency has to be a module of g.
func Render(g *domain.Graph) (*domain.Bundle, error) {
	if err := g.Validate(); err != nil {
		return nil, errors.Join(domain.ErrRenderFailed, err)
	}

	data := templateData{
		Entry: quote(g.Entry().String()),
		Count: g.Len(),
	}

	var manifest strings.Builder
	manifest.WriteByte('{')
	index := 0
	for m := range g.Walk() {
		if index > 0 {
			manifest.WriteByte(',')
		}
		writeManifestEntry(&manifest, m)

		data.Modules = append(data.Modules, templateModule{
			Index:  index,
			Length: len(m.Code),
			Path:   quote(m.Path.String()),
			Code:   m.Code,
		})
		index++
	}
	manifest.WriteByte('}')
	data.Manifest = quote(manifest.String())

	var script strings.Builder
	if err := bootstrap.Execute(&script, data); err != nil {
		return nil, errors.Join(domain.ErrRenderFailed, err)
	}

	return &domain.Bundle{
		Entry:   g.Entry(),
		Modules: g.Len(),
		Script:  script.String(),
	}, nil
}

// writeManifestEntry writes `"path":{"dependencies":{...}}` keeping the
// module's specifier order.
func writeManifestEntry(sb *strings.Builder, m *domain.Module) {
	sb.WriteString(quote(m.Path.String()))
	sb.WriteString(`:{"dependencies":{`)
	for i, spec := range m.Specifiers {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(quote(spec))
		sb.WriteByte(':')
		sb.WriteString(quote(m.Dependencies[spec].String()))
	}
	sb.WriteString("}}")
}

// quote renders s as a JSON string literal, which is also a valid JavaScript
// string literal since line and paragraph separators are escaped.
func quote(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}
