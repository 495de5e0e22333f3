package placeholder

import (
	"html/template"
	"io"
)

var skeletonTmpl = template.Must(template.New("skeleton").Parse(`
{{- define "spec" -}}
<div class="skeleton skeleton--{{.Kind}}" data-kind="{{.Kind}}" data-count="{{.Count}}" aria-hidden="true">
{{- range .Items}}<div class="skeleton__item" data-index="{{.Index}}"></div>{{end -}}
</div>
{{- end -}}
<div class="skeleton-layout" data-page="{{.Page}}" aria-busy="true">
{{- range .Specs}}
{{template "spec" .}}
{{- end}}
</div>
`))

// Render writes the skeleton markup of a layout.
func Render(w io.Writer, l Layout) error {
	return skeletonTmpl.Execute(w, l)
}

// RenderSpec writes the skeleton markup of a single Spec.
func RenderSpec(w io.Writer, s Spec) error {
	return skeletonTmpl.ExecuteTemplate(w, "spec", s)
}
