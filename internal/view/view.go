// Package view 服务端页面渲染（pongo2 模板 + 内嵌静态资源）。
package view

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/secureport/internal/contactform"
	"github.com/secureport/internal/content"
	"github.com/secureport/internal/service"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

const pageTemplate = "page.html"

// Renderer pongo2 模板渲染器，模板按路径缓存
type Renderer struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

// Page 首页渲染数据
type Page struct {
	Site       *content.Site
	Captcha    service.PublicCaptchaSetting
	Form       contactform.Snapshot
	GatewayURL string
	Now        time.Time
}

type blockView struct {
	Kind string
	Data content.BlockData
}

type sectionView struct {
	ID       string
	Title    string
	Subtitle string
	CTA      *content.Link
	Blocks   []blockView
}

var registerFiltersOnce sync.Once

// New 创建渲染器，templates 为空时使用内嵌模板
func New(templates fs.FS) (*Renderer, error) {
	if templates == nil {
		sub, err := fs.Sub(templateFiles, "templates")
		if err != nil {
			return nil, fmt.Errorf("view: open embedded templates: %w", err)
		}
		templates = sub
	}
	registerFiltersOnce.Do(registerFilters)
	return &Renderer{
		set:       pongo2.NewSet("secureport", pongo2.NewFSLoader(templates)),
		templates: make(map[string]*pongo2.Template),
	}, nil
}

// RenderPage 渲染首页
func (r *Renderer) RenderPage(w io.Writer, page Page) error {
	if page.Site == nil {
		return errors.New("view: site content is nil")
	}
	if page.Now.IsZero() {
		page.Now = time.Now()
	}
	site := page.Site
	ctx := pongo2.Context{
		"site":        site,
		"sections":    buildSections(site),
		"captcha":     page.Captcha,
		"form":        page.Form,
		"form_state":  string(page.Form.State),
		"gateway_url": page.GatewayURL,
		"year":        page.Now.Year(),
		"image_url":   site.ImageURL,
	}
	return r.Render(w, pageTemplate, ctx)
}

// Render 渲染任意模板
func (r *Renderer) Render(w io.Writer, name string, ctx pongo2.Context) error {
	tmpl, err := r.template(name)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return fmt.Errorf("view: execute template %q: %w", name, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	if tmpl, ok := r.templates[name]; ok {
		r.mu.RUnlock()
		return tmpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("view: load template %q: %w", name, err)
	}
	r.templates[name] = tmpl
	return tmpl, nil
}

// StaticFS 内嵌静态资源（css/js/svg）
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

func buildSections(site *content.Site) []sectionView {
	enabled := site.EnabledSections()
	out := make([]sectionView, 0, len(enabled))
	for _, section := range enabled {
		blocks := make([]blockView, 0, len(section.Blocks))
		for _, block := range section.Blocks {
			blocks = append(blocks, blockView{Kind: string(block.Kind), Data: block.Data})
		}
		out = append(out, sectionView{
			ID:       section.ID,
			Title:    section.Title,
			Subtitle: section.Subtitle,
			CTA:      section.CTA,
			Blocks:   blocks,
		})
	}
	return out
}

func registerFilters() {
	if !pongo2.FilterExists("stars") {
		_ = pongo2.RegisterFilter("stars", filterStars)
	}
}

// filterStars 评分转为星号
func filterStars(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	n := in.Integer()
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	stars := make([]rune, 0, 5)
	for i := 0; i < 5; i++ {
		if i < n {
			stars = append(stars, '★')
		} else {
			stars = append(stars, '☆')
		}
	}
	return pongo2.AsValue(string(stars)), nil
}
