package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"
)

// Renderer manages template parsing and rendering with isolated template sets.
// It supports two layouts:
//   - "auth" layout for the login page
//   - "app" layout for everything behind a session (sidebar, flash, topbar)
//
// Templates are organized as:
//   - layouts/auth.html, layouts/app.html - base layouts
//   - components/*.html - reusable components (shared across layouts)
//   - partials/*.html - standalone fragments for htmx responses
//   - pages/auth/*.html - pages rendered in the auth layout
//   - pages/**/*.html - app pages, keyed by path (e.g. "customers/index")
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
	fsys      fs.FS
	isDev     bool
	mu        sync.RWMutex
}

// RendererConfig holds configuration for the renderer.
type RendererConfig struct {
	FS     fs.FS
	Logger *slog.Logger
	IsDev  bool
}

// NewRenderer creates a template renderer from a filesystem rooted at the
// templates directory. In dev mode templates reload on every render.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		logger:    cfg.Logger,
		fsys:      cfg.FS,
		isDev:     cfg.IsDev,
	}

	if err := r.loadTemplates(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Renderer) loadTemplates() error {
	componentFiles, err := fs.Glob(r.fsys, "components/*.html")
	if err != nil {
		return fmt.Errorf("failed to glob components: %w", err)
	}

	partialFiles, err := fs.Glob(r.fsys, "partials/*.html")
	if err != nil {
		return fmt.Errorf("failed to glob partials: %w", err)
	}

	// Parse each partial as a standalone template for htmx fragments
	for _, partial := range partialFiles {
		partialTmpl, err := template.New("").Funcs(TemplateFuncs()).ParseFS(r.fsys, partial)
		if err != nil {
			return fmt.Errorf("failed to parse partial %s: %w", partial, err)
		}

		name := strings.TrimSuffix(path.Base(partial), ".html")
		r.templates["partial/"+name] = partialTmpl
	}

	authBase, err := r.parseLayout("auth", componentFiles, partialFiles)
	if err != nil {
		return err
	}
	appBase, err := r.parseLayout("app", componentFiles, partialFiles)
	if err != nil {
		return err
	}

	// Pages are keyed by their path under pages/ without the extension:
	// pages/customers/index.html -> "customers/index". Pages under
	// pages/auth/ render in the auth layout, everything else in app.
	err = fs.WalkDir(r.fsys, "pages", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".html") {
			return nil
		}

		key := strings.TrimSuffix(strings.TrimPrefix(p, "pages/"), ".html")

		base := appBase
		if strings.HasPrefix(key, "auth/") {
			base = authBase
		}

		pageTmpl, err := base.Clone()
		if err != nil {
			return fmt.Errorf("failed to clone layout for %s: %w", p, err)
		}
		pageTmpl, err = pageTmpl.ParseFS(r.fsys, p)
		if err != nil {
			return fmt.Errorf("failed to parse page %s: %w", p, err)
		}

		r.templates[key] = pageTmpl
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk pages dir: %w", err)
	}

	r.logger.Info("templates loaded", "count", len(r.templates))
	return nil
}

func (r *Renderer) parseLayout(name string, components, partials []string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(TemplateFuncs()).ParseFS(r.fsys, "layouts/"+name+".html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s layout: %w", name, err)
	}

	if len(components) > 0 {
		tmpl, err = tmpl.ParseFS(r.fsys, components...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse components into %s layout: %w", name, err)
		}
	}

	if len(partials) > 0 {
		tmpl, err = tmpl.ParseFS(r.fsys, partials...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse partials into %s layout: %w", name, err)
		}
	}

	return tmpl, nil
}

// Reload reparses all templates. Useful for development.
func (r *Renderer) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.templates = make(map[string]*template.Template)
	return r.loadTemplates()
}

// Render renders a template to an io.Writer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	if r.isDev {
		if err := r.Reload(); err != nil {
			return fmt.Errorf("template reload failed: %w", err)
		}
	}

	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	return tmpl.ExecuteTemplate(w, r.layoutName(name), data)
}

// RenderHTTP renders a template directly to an http.ResponseWriter.
func (r *Renderer) RenderHTTP(w http.ResponseWriter, name string, data interface{}) {
	if r.isDev {
		if err := r.Reload(); err != nil {
			r.logger.Error("template reload failed", "error", err)
			http.Error(w, "Template reload failed", http.StatusInternalServerError)
			return
		}
	}

	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()

	if !ok {
		r.logger.Error("template not found", "name", name)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	// Render to buffer first to catch errors before writing headers
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, r.layoutName(name), data); err != nil {
		r.logger.Error("template execution failed", "name", name, "error", err)
		http.Error(w, "Template execution failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// RenderPartial renders a partial template (for htmx responses).
// The partial file must contain {{define "name"}}...{{end}} matching its file name.
func (r *Renderer) RenderPartial(w http.ResponseWriter, name string, data interface{}) {
	r.mu.RLock()
	tmpl, ok := r.templates["partial/"+name]
	r.mu.RUnlock()

	if !ok {
		r.logger.Error("partial template not found", "name", name)
		http.Error(w, "Partial not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		r.logger.Error("partial execution failed", "name", name, "error", err)
	}
}

// layoutName determines which base template to execute for a page key.
func (r *Renderer) layoutName(name string) string {
	if strings.HasPrefix(name, "auth/") {
		return "auth"
	}
	return "app"
}

// ListTemplates returns a list of all loaded template names.
// Useful for debugging.
func (r *Renderer) ListTemplates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}
