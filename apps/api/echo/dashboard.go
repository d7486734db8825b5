package echoapi

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/conselho/core"
	"github.com/trezcool/conselho/core/grade"
	"github.com/trezcool/conselho/core/report"
	"github.com/trezcool/conselho/core/session"
	"github.com/trezcool/conselho/services/chart"
)

const (
	exportFilename = "dados_conselho.csv"
	uploadField    = "files"

	msgMissingTerm = "❌ Arquivo inválido: falta coluna Bimestre."
	msgNoFiles     = "Selecione ao menos um arquivo XLSX."
	msgTooManyFile = "Envie no máximo %d arquivos."
	msgNotXLSX     = "%s ignorado: apenas arquivos .xlsx são aceitos"
	msgTooLarge    = "%s ignorado: arquivo maior que %d MB"
)

type dashboardApi struct {
	deps ServerDeps
}

func registerDashboardAPI(g *echo.Group, deps ServerDeps) {
	api := dashboardApi{deps: deps}

	g.GET("/", api.dashboard)
	g.POST("/upload", api.upload)
	g.GET("/charts/class.png", api.classChart)
	g.GET("/charts/class-mean.png", api.classMeanChart)
	g.GET("/charts/student.png", api.studentChart)
	g.GET("/export.csv", api.exportCSV)
}

// bodyLimit allows a full batch of maximum sized files, plus room for the multipart envelope.
func bodyLimit(conf core.UploadConfig) string {
	kb := int64(conf.MaxFiles)*conf.MaxFileSize/1024 + 1024
	return fmt.Sprintf("%dK", kb)
}

// Handlers

func (api *dashboardApi) dashboard(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}
	sel, err := api.selection(ctx)
	if err != nil {
		return err
	}

	page := api.page(sess, sel)
	if len(page.Notices) > 0 {
		if err := api.deps.SessionSvc.Save(ctx.Request().Context(), sess); err != nil {
			return errors.Wrap(err, "saving session")
		}
	}
	return ctx.Render(http.StatusOK, "dashboard", page)
}

func (api *dashboardApi) upload(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}

	form, err := ctx.MultipartForm()
	if err != nil && err != http.ErrNotMultipart {
		return errors.Wrap(err, "parsing multipart form")
	}
	var headers []*multipart.FileHeader
	if form != nil {
		headers = form.File[uploadField]
	}

	if err := checkFileCount(len(headers), api.deps.Conf.Upload.MaxFiles); err != nil {
		return api.renderError(ctx, sess, http.StatusBadRequest, err.Error())
	}

	files, notices := api.acceptFiles(headers)
	res, err := api.deps.Batch.Run(files)
	if err != nil {
		if errors.Cause(err) == grade.ErrMissingTerm {
			sess.ReplaceTable(grade.BatchResult{})
			if err := api.deps.SessionSvc.Save(ctx.Request().Context(), sess); err != nil {
				return errors.Wrap(err, "saving session")
			}
			return api.renderError(ctx, sess, http.StatusUnprocessableEntity, msgMissingTerm)
		}
		return errors.Wrap(err, "running batch")
	}

	sess.ReplaceTable(res)
	sess.Notices = append(notices, sess.Notices...)
	if err := api.deps.SessionSvc.Save(ctx.Request().Context(), sess); err != nil {
		return errors.Wrap(err, "saving session")
	}
	api.deps.Logger.Info(
		fmt.Sprintf("upload: %d files, %d records, %d notices", len(headers), len(res.Table), len(sess.Notices)),
		*sess,
	)
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (api *dashboardApi) classChart(ctx echo.Context) error {
	return api.chart(ctx, func(d report.Dashboard) (string, []grade.Mean) {
		return d.ClassTitle, d.ClassMeans
	})
}

func (api *dashboardApi) classMeanChart(ctx echo.Context) error {
	return api.chart(ctx, func(d report.Dashboard) (string, []grade.Mean) {
		return d.ClassMeanTitle, d.AllClassMeans
	})
}

func (api *dashboardApi) studentChart(ctx echo.Context) error {
	return api.chart(ctx, func(d report.Dashboard) (string, []grade.Mean) {
		return d.StudentTitle, d.StudentMeans
	})
}

func (api *dashboardApi) exportCSV(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}
	if !sess.HasData() {
		return errNoData
	}

	var buff bytes.Buffer
	if err := grade.WriteCSV(&buff, sess.Table); err != nil {
		return errors.Wrap(err, "writing csv")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", exportFilename))
	return ctx.Blob(http.StatusOK, "text/csv; charset=utf-8", buff.Bytes())
}

// Helpers

func checkFileCount(n, maxFiles int) error {
	var msg string
	switch {
	case n == 0:
		msg = msgNoFiles
	case maxFiles > 0 && n > maxFiles:
		msg = fmt.Sprintf(msgTooManyFile, maxFiles)
	default:
		return nil
	}
	return core.NewValidationError(errors.New(msg), core.FieldError{Field: uploadField, Error: msg})
}

func (api *dashboardApi) selection(ctx echo.Context) (report.Selection, error) {
	var sel report.Selection
	if err := ctx.Bind(&sel); err != nil {
		return sel, errors.Wrap(err, "binding to report.Selection")
	}
	if err := api.deps.Validate.Struct(sel); err != nil {
		return sel, err
	}
	return sel, nil
}

func (api *dashboardApi) page(sess *session.Session, sel report.Selection) pageData {
	page := pageData{
		AppName:       api.deps.Conf.AppName,
		Title:         "Dashboard",
		Authenticated: sess.Authenticated,
		Notices:       sess.PopNotices(),
		HasData:       sess.HasData(),
		Files:         sess.Files,
		MaxFiles:      api.deps.Conf.Upload.MaxFiles,
	}
	if page.HasData {
		page.Dashboard = report.NewDashboard(sess.Table, sel)
	}
	return page
}

func (api *dashboardApi) renderError(ctx echo.Context, sess *session.Session, code int, msg string) error {
	page := api.page(sess, report.Selection{})
	page.Error = msg
	return ctx.Render(code, "dashboard", page)
}

func (api *dashboardApi) chart(ctx echo.Context, pick func(report.Dashboard) (string, []grade.Mean)) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}
	if !sess.HasData() {
		return errNoData
	}
	sel, err := api.selection(ctx)
	if err != nil {
		return err
	}

	title, means := pick(report.NewDashboard(sess.Table, sel))
	var buff bytes.Buffer
	if err := chartsvc.RenderBars(&buff, title, means); err != nil {
		if errors.Cause(err) == chartsvc.ErrNoData {
			return errNoData
		}
		return errors.Wrap(err, "rendering chart")
	}
	return ctx.Blob(http.StatusOK, "image/png", buff.Bytes())
}

// acceptFiles keeps the .xlsx files within the size limit; the others are reported as notices.
func (api *dashboardApi) acceptFiles(headers []*multipart.FileHeader) ([]grade.File, []string) {
	maxSize := api.deps.Conf.Upload.MaxFileSize

	files := make([]grade.File, 0, len(headers))
	var notices []string
	for _, fh := range headers {
		switch {
		case !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx"):
			notices = append(notices, fmt.Sprintf(msgNotXLSX, fh.Filename))
		case maxSize > 0 && fh.Size > maxSize:
			notices = append(notices, fmt.Sprintf(msgTooLarge, fh.Filename, maxSize>>20))
		default:
			files = append(files, uploadedFile{fh})
		}
	}
	return files, notices
}

// uploadedFile adapts a multipart file to grade.File.
type uploadedFile struct {
	header *multipart.FileHeader
}

func (f uploadedFile) Name() string { return filepath.Base(f.header.Filename) }

func (f uploadedFile) Open() (io.ReadCloser, error) {
	return f.header.Open()
}
