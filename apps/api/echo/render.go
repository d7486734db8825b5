package echoapi

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/conselho/core/grade"
	"github.com/trezcool/conselho/core/report"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

const baseTemplate = "templates/_base.gohtml"

type (
	// pageData is the context of every page template.
	pageData struct {
		AppName       string
		Title         string
		Status        int
		Error         string
		Errors        []string
		Notices       []string
		Authenticated bool

		HasData   bool
		Files     []grade.FileSummary
		MaxFiles  int
		Dashboard report.Dashboard
	}

	templateRenderer struct {
		appName   string
		templates map[string]*template.Template // {name: base + page}
	}
)

var _ echo.Renderer = (*templateRenderer)(nil)

var templateFuncs = template.FuncMap{
	"css": func(s string) template.CSS { return template.CSS(s) },
	// sel builds a dashboard query string from the current selection with one key overridden.
	"sel": func(s report.Selection, key, val string) template.URL {
		v := make(url.Values)
		set := func(k, cur string) {
			if k == key {
				cur = val
			}
			if cur != "" {
				v.Set(k, cur)
			}
		}
		set("turma", s.Class)
		set("bimestre", s.Term)
		set("aluno", s.Student)
		set("heatmap", s.HeatmapTerm)
		return template.URL(v.Encode())
	},
}

func newTemplateRenderer(appName string, debugOrTest bool) *templateRenderer {
	r := &templateRenderer{appName: appName, templates: make(map[string]*template.Template)}

	paths, err := templateFS.ReadDir("templates")
	if err != nil {
		panic(errors.Wrap(err, "reading embedded templates"))
	}
	for _, entry := range paths {
		fname := entry.Name()
		if strings.HasPrefix(fname, "_") || !strings.HasSuffix(fname, ".gohtml") {
			continue
		}
		name := strings.TrimSuffix(fname, ".gohtml")
		tmpl := template.Must(
			template.New(fname).Funcs(templateFuncs).ParseFS(templateFS, baseTemplate, "templates/"+fname),
		)
		if debugOrTest {
			tmpl = tmpl.Option("missingkey=error")
		}
		r.templates[name] = tmpl
	}
	return r
}

// Render executes the named page within the base layout.
func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}
	if pd, ok := data.(pageData); ok && pd.AppName == "" {
		pd.AppName = r.appName
		data = pd
	}

	var buff bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buff, "base", data); err != nil {
		return errors.Wrapf(err, "rendering %s", name)
	}
	_, err := buff.WriteTo(w)
	return err
}
