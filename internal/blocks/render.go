// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blocks

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"sort"
	"strings"

	"tailorcms/internal/personalization"
)

//go:embed templates/*.html
var fragmentFS embed.FS

// AssetResolver turns a storage key reference into a public URL. Block
// data may reference images as "s3:<key>" so that moving buckets or CDNs
// never requires editing content.
type AssetResolver interface {
	AssetURL(key string) string
}

// Result is the outcome of rendering a page's block list: the visual
// markup plus the structured-data fragments collected on the side channel
// (injected once per page by the assembler, not inline with the blocks).
type Result struct {
	HTML           template.HTML
	StructuredData []map[string]any
}

// Renderer turns an ordered block list into HTML. Rendering is a pure
// projection from (blocks, session state) to markup: no I/O, no session
// mutation, recomputed per request.
type Renderer struct {
	tmpl   *template.Template
	assets AssetResolver
}

// NewRenderer compiles the embedded block fragments. assets may be nil
// when object storage is not configured; storage-keyed references then
// pass through unresolved.
func NewRenderer(assets AssetResolver) (*Renderer, error) {
	tmpl, err := template.New("blocks").Funcs(template.FuncMap{
		"rawHTML": func(s string) template.HTML { return template.HTML(s) },
		"add":     func(a, b int) int { return a + b },
	}).ParseFS(fragmentFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl, assets: assets}, nil
}

// Render resolves, decodes, and renders each block in order.
//
// Blocks are sorted by Order ascending with a stable sort, so array
// position breaks ties. A block with an unrecognized type is skipped with
// a warning — content authored against a newer schema must not take down
// older instances. Steps blocks flagged structuredData contribute a
// schema.org HowTo fragment to the side channel.
func (r *Renderer) Render(list []Block, state personalization.State) Result {
	ordered := make([]Block, len(list))
	copy(ordered, list)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	var out Result
	var buf bytes.Buffer
	for _, b := range ordered {
		data, err := decodeData(b.Type, effectiveData(b, state))
		if err != nil {
			slog.Warn("skipping block", "id", b.ID, "type", b.Type, "error", err)
			continue
		}

		r.resolveAssets(data)

		var frag bytes.Buffer
		if err := r.tmpl.ExecuteTemplate(&frag, string(b.Type)+".html", data); err != nil {
			slog.Warn("block template failed", "id", b.ID, "type", b.Type, "error", err)
			continue
		}
		buf.Write(frag.Bytes())

		if steps, ok := data.(*StepsData); ok && steps.StructuredData {
			out.StructuredData = append(out.StructuredData, howToFragment(steps))
		}
	}

	out.HTML = template.HTML(buf.String())
	return out
}

// resolveAssets rewrites "s3:<key>" image references in the decoded
// payload to public URLs. Plain URLs pass through untouched.
func (r *Renderer) resolveAssets(data BlockData) {
	switch d := data.(type) {
	case *HeroData:
		d.Image = r.resolveRef(d.Image)
	case *LogoGridData:
		for i := range d.Logos {
			d.Logos[i].Image = r.resolveRef(d.Logos[i].Image)
		}
	case *MartechIntegrationsData:
		for i := range d.Integrations {
			d.Integrations[i].Logo = r.resolveRef(d.Integrations[i].Logo)
		}
	}
}

func (r *Renderer) resolveRef(ref string) string {
	key, ok := strings.CutPrefix(ref, "s3:")
	if !ok || r.assets == nil {
		return ref
	}
	return r.assets.AssetURL(key)
}

// howToFragment builds the schema.org HowTo object for a steps block.
func howToFragment(d *StepsData) map[string]any {
	steps := make([]map[string]any, 0, len(d.Steps))
	for _, s := range d.Steps {
		steps = append(steps, map[string]any{
			"@type": "HowToStep",
			"name":  s.Title,
			"text":  s.Description,
		})
	}
	return map[string]any{
		"@context": "https://schema.org",
		"@type":    "HowTo",
		"name":     d.Title,
		"step":     steps,
	}
}
