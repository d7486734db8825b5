package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/conselho/core"
)

var (
	// errors
	ErrNotFound             = errors.New("session not found")
	ErrNotConfigured        = errors.New("nenhuma senha configurada")
	ErrAuthenticationFailed = errors.New("senha incorreta")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		GetSession(ctx context.Context, id string) (Session, error)
		SaveSession(ctx context.Context, sess Session) error
		DeleteSessions(ctx context.Context, ids ...string) error
		// DeleteSessionsBefore removes sessions last updated before `t` and returns how many were removed.
		DeleteSessionsBefore(ctx context.Context, t time.Time) (int, error)
	}

	Service interface {
		Start(ctx context.Context) (Session, error)
		Get(ctx context.Context, id string) (Session, error)
		Save(ctx context.Context, sess *Session) error
		End(ctx context.Context, id string) error
		Authenticate(ctx context.Context, sess *Session, password string) error
		Purge(ctx context.Context) (int, error)
	}

	service struct {
		repo     Repository
		password string
		ttl      time.Duration
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, conf *core.Config) Service {
	return &service{
		repo:     repo,
		password: conf.Password,
		ttl:      conf.Server.SessionTTL,
	}
}

// Start creates a new, unauthenticated session.
func (svc *service) Start(ctx context.Context) (Session, error) {
	now := nowFunc().UTC()
	sess := Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := svc.repo.SaveSession(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Get returns a live session. Sessions idle for longer than the TTL are gone.
func (svc *service) Get(ctx context.Context, id string) (Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Session{}, ErrNotFound
	}
	sess, err := svc.repo.GetSession(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if svc.expired(sess) {
		_ = svc.repo.DeleteSessions(ctx, id)
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (svc *service) Save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = nowFunc().UTC()
	return svc.repo.SaveSession(ctx, *sess)
}

func (svc *service) End(ctx context.Context, id string) error {
	return svc.repo.DeleteSessions(ctx, id)
}

// Authenticate compares the password with the configured secret and unlocks the session on match.
// A missing secret is reported as ErrNotConfigured, any mismatch as ErrAuthenticationFailed.
func (svc *service) Authenticate(ctx context.Context, sess *Session, password string) error {
	if svc.password == "" {
		return ErrNotConfigured
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(svc.password)) != 1 {
		return ErrAuthenticationFailed
	}
	sess.Authenticated = true
	return svc.Save(ctx, sess)
}

// Purge drops expired sessions.
func (svc *service) Purge(ctx context.Context) (int, error) {
	if svc.ttl <= 0 {
		return 0, nil
	}
	return svc.repo.DeleteSessionsBefore(ctx, nowFunc().UTC().Add(-svc.ttl))
}

func (svc *service) expired(sess Session) bool {
	return svc.ttl > 0 && nowFunc().UTC().After(sess.UpdatedAt.Add(svc.ttl))
}
