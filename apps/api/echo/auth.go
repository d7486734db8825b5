package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/conselho/core"
	"github.com/trezcool/conselho/core/session"
)

const (
	sessionCookieName = "conselho_session"
	contextSessionKey = "session"
)

var errSessionNotFoundInCtx = errors.New("session object not found in echo.Context")

// SessionClaims carry the session id in the signed session cookie.
type SessionClaims struct {
	jwt.StandardClaims
}

// GenerateSessionToken signs a token for the session id.
// The token does not expire: idle sessions are expired by the session service.
func GenerateSessionToken(conf *core.Config, sessID string) (string, error) {
	claims := SessionClaims{
		StandardClaims: jwt.StandardClaims{
			Issuer:   conf.AppName,
			Subject:  sessID,
			IssuedAt: time.Now().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func parseSessionToken(conf *core.Config, ss string) (string, error) {
	claims := new(SessionClaims)
	_, err := jwt.ParseWithClaims(ss, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(conf.SecretKey), nil
	})
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// sessionMiddleware loads the browser session from its cookie, or starts a new one.
func (s *server) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		sess, err := s.loadSession(ctx)
		if err != nil {
			return errors.Wrap(err, "loading session")
		}
		ctx.Set(contextSessionKey, &sess)
		return next(ctx)
	}
}

func (s *server) loadSession(ctx echo.Context) (session.Session, error) {
	svc := s.deps.SessionSvc
	rctx := ctx.Request().Context()

	if cookie, err := ctx.Cookie(sessionCookieName); err == nil {
		if id, err := parseSessionToken(s.deps.Conf, cookie.Value); err == nil {
			sess, err := svc.Get(rctx, id)
			if err == nil {
				// any request counts as activity
				if err := svc.Save(rctx, &sess); err != nil {
					return session.Session{}, errors.Wrap(err, "touching session")
				}
				return sess, nil
			}
			if errors.Cause(err) != session.ErrNotFound {
				return session.Session{}, errors.Wrap(err, "finding session")
			}
		}
	}

	if n, err := svc.Purge(rctx); err != nil {
		s.deps.Logger.Error("purging sessions", err)
	} else if n > 0 {
		s.deps.Logger.Info("purged expired sessions", map[string]interface{}{"count": n})
	}

	sess, err := svc.Start(rctx)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "starting session")
	}
	token, err := GenerateSessionToken(s.deps.Conf, sess.ID)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "generating session token")
	}
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return sess, nil
}

func getContextSession(ctx echo.Context) (*session.Session, error) {
	if sess, ok := ctx.Get(contextSessionKey).(*session.Session); ok {
		return sess, nil
	}
	return nil, errSessionNotFoundInCtx
}

// authMiddleware sends unauthenticated sessions to the login page.
func authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		sess, err := getContextSession(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context session")
		}
		if !sess.Authenticated {
			return ctx.Redirect(http.StatusSeeOther, "/login")
		}
		return next(ctx)
	}
}

type authApi struct {
	deps ServerDeps
}

func registerAuthAPI(g *echo.Group, deps ServerDeps) {
	api := authApi{deps: deps}

	// no lockout, no attempt counting: a single shared password gates the dashboard
	g.GET("/login", api.loginPage)
	g.POST("/login", api.login)
	g.POST("/logout", api.logout)
}

// Handlers

func (api *authApi) loginPage(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}
	if sess.Authenticated {
		return ctx.Redirect(http.StatusSeeOther, "/")
	}
	return ctx.Render(http.StatusOK, "login", api.page(""))
}

func (api *authApi) login(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}

	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := api.deps.Validate.Struct(data); err != nil {
		return ctx.Render(http.StatusBadRequest, "login", api.page(translateFirst(err, api.deps.Translator)))
	}

	err = api.deps.SessionSvc.Authenticate(ctx.Request().Context(), sess, data.Password)
	switch errors.Cause(err) {
	case nil:
		return ctx.Redirect(http.StatusSeeOther, "/")
	case session.ErrNotConfigured:
		api.deps.Logger.Error("login: access password is not configured", *sess)
		return ctx.Render(http.StatusServiceUnavailable, "login", api.page(msgNotConfigured))
	case session.ErrAuthenticationFailed:
		return ctx.Render(http.StatusUnauthorized, "login", api.page(msgWrongPassword))
	default:
		return errors.Wrap(err, "authenticating")
	}
}

func (api *authApi) logout(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}
	if err := api.deps.SessionSvc.End(ctx.Request().Context(), sess.ID); err != nil {
		return errors.Wrap(err, "ending session")
	}
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return ctx.Redirect(http.StatusSeeOther, "/login")
}

func (api *authApi) page(errMsg string) pageData {
	return pageData{AppName: api.deps.Conf.AppName, Title: "Login", Error: errMsg}
}

const (
	msgNotConfigured = "Nenhuma senha configurada no secrets.toml"
	msgWrongPassword = "❌ Senha incorreta."
)

type LoginRequest struct {
	Password string `form:"password" validate:"required"`
}
