package inmemdb

import (
	"context"
	"time"

	"github.com/trezcool/conselho/core/grade"
	"github.com/trezcool/conselho/core/session"
)

type sessionRepository struct {
	db *sessionTable
}

var _ session.Repository = (*sessionRepository)(nil)

func NewSessionRepository(db *DB) session.Repository {
	return &sessionRepository{db: db.session}
}

func (repo *sessionRepository) GetSession(_ context.Context, id string) (session.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sess, ok := repo.db.table[id]; ok {
		return copySession(*sess), nil
	}
	return session.Session{}, session.ErrNotFound
}

func (repo *sessionRepository) SaveSession(_ context.Context, sess session.Session) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sess = copySession(sess)
	repo.db.table[sess.ID] = &sess
	return nil
}

func (repo *sessionRepository) DeleteSessions(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func (repo *sessionRepository) DeleteSessionsBefore(_ context.Context, t time.Time) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for id, sess := range repo.db.table {
		if sess.UpdatedAt.Before(t) {
			delete(repo.db.table, id)
			n++
		}
	}
	return n, nil
}

// copySession detaches the slices so callers never share state with the stored session.
func copySession(sess session.Session) session.Session {
	if sess.Table != nil {
		sess.Table = append(grade.Table(nil), sess.Table...)
	}
	if sess.Files != nil {
		sess.Files = append([]grade.FileSummary(nil), sess.Files...)
	}
	if sess.Notices != nil {
		sess.Notices = append([]string(nil), sess.Notices...)
	}
	return sess
}
