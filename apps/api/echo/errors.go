package echoapi

import (
	"net/http"
	"sort"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/conselho/core"
	"github.com/trezcool/conselho/core/grade"
)

var (
	errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "não encontrado")
	errNoData       = echo.NewHTTPError(http.StatusNotFound, "nenhum dado carregado")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// Browsers get the error page, other clients get JSON.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			if origErr == grade.ErrMissingTerm {
				code = http.StatusUnprocessableEntity
				message = msgMissingTerm
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			args := []interface{}{errors.Wrap(err, msg)}
			if sess, sErr := getContextSession(ctx); sErr == nil {
				args = append(args, *sess)
			}
			logger.Error(msg, args...)
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}

		// Send response
		if ctx.Response().Committed {
			return
		}
		switch {
		case ctx.Request().Method == http.MethodHead: // Issue #608
			err = ctx.NoContent(code)
		case wantsHTML(ctx):
			err = ctx.Render(code, "error", pageData{
				Title:  http.StatusText(code),
				Status: code,
				Errors: messageList(message),
			})
		default:
			if m, ok := message.(string); ok {
				message = echo.Map{"error": m}
			}
			err = ctx.JSON(code, message)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

func wantsHTML(ctx echo.Context) bool {
	return strings.Contains(ctx.Request().Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}

func messageList(message interface{}) []string {
	switch m := message.(type) {
	case string:
		return []string{m}
	case map[string]string:
		msgs := make([]string, 0, len(m))
		for _, v := range m {
			msgs = append(msgs, v)
		}
		sort.Strings(msgs)
		return msgs
	case nil:
		return nil
	default:
		if s, ok := m.(interface{ Error() string }); ok {
			return []string{s.Error()}
		}
		return []string{http.StatusText(http.StatusInternalServerError)}
	}
}

// translateFirst returns a user-facing message for a validation error.
func translateFirst(err error, translator ut.Translator) string {
	if vErrs, ok := errors.Cause(err).(validator.ValidationErrors); ok && len(vErrs) > 0 {
		return vErrs[0].Translate(translator)
	}
	return err.Error()
}
