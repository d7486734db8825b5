package tests

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/conselho/apps/api/echo"
	"github.com/trezcool/conselho/core"
	"github.com/trezcool/conselho/core/grade"
	"github.com/trezcool/conselho/core/session"
	"github.com/trezcool/conselho/services/spreadsheet"
	inmemdb "github.com/trezcool/conselho/storage/database/inmem"
	"github.com/trezcool/conselho/tests"
)

const sessionCookie = "conselho_session"

// newServer starts an app whose access password is `password` ("" means not configured).
func newServer(t *testing.T, password string) echoapi.Server {
	app, _ := newServerWithRepo(t, password)
	return app
}

// newServerWithRepo also returns the session store, so tests can age sessions.
func newServerWithRepo(t *testing.T, password string) (echoapi.Server, session.Repository) {
	conf := testutil.NewConfig(password)
	repo := inmemdb.NewSessionRepository(inmemdb.Open())
	logger := testutil.NewLogger(t)

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)

	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		SessionSvc: session.NewService(repo, conf),
		Batch: grade.NewBatch(
			grade.NewExtractor(grade.RulesFromConfig(conf.Extract)),
			spreadsheet.NewExcelReader(),
			logger,
		),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	}), repo
}

// browser keeps the session cookie between requests, like a browser would.
type browser struct {
	t       *testing.T
	app     http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, app http.Handler) *browser {
	return &browser{t: t, app: app, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
	}
	rec := httptest.NewRecorder()
	b.app.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
		} else {
			b.cookies[c.Name] = c
		}
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

type upload struct {
	name string
	data []byte
}

func (b *browser) upload(files ...upload) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		fw, err := mw.CreateFormFile("files", f.name)
		require.NoError(b.t, err)
		_, err = fw.Write(f.data)
		require.NoError(b.t, err)
	}
	require.NoError(b.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return b.do(req)
}

func (b *browser) login(password string) *httptest.ResponseRecorder {
	return b.postForm("/login", url.Values{"password": {password}})
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	return doc
}

func texts(sel *goquery.Selection) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}
