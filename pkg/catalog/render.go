package catalog

import (
	"bytes"
	"html/template"
)

// Renderer turns a page of listings into the HTML fragment handed back to the
// result container.
type Renderer interface {
	Render(listings []*Listing) (string, error)
}

var listingTemplate = template.Must(template.New("listings").Parse(`<ul class="listing-grid">
{{- range . }}
<li class="listing" data-id="{{ .Id }}">
<h3>{{ .Title }}</h3>
<p class="price">{{ .Price }} kr</p>
<p class="details">{{ .Year }} &middot; {{ .Mileage }} km{{ if .FuelType }} &middot; {{ .FuelType }}{{ end }}</p>
</li>
{{- end }}
</ul>`))

// TemplateRenderer is the reference html/template fragment renderer.
type TemplateRenderer struct {
	Tmpl *template.Template
}

func NewTemplateRenderer() *TemplateRenderer {
	return &TemplateRenderer{Tmpl: listingTemplate}
}

func (r *TemplateRenderer) Render(listings []*Listing) (string, error) {
	buf := bytes.Buffer{}
	if err := r.Tmpl.Execute(&buf, listings); err != nil {
		return "", err
	}
	return buf.String(), nil
}
