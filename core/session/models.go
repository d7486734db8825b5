package session

import (
	"time"

	"github.com/trezcool/conselho/core/grade"
)

// Session is one browser's dashboard state: the access flag and the consolidated grade table.
type Session struct {
	ID            string
	Authenticated bool

	Table   grade.Table
	Files   []grade.FileSummary
	Notices []string // per-file problems of the last upload, shown once

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasData reports whether an upload produced something to show.
func (sess Session) HasData() bool {
	return len(sess.Table) > 0
}

// ReplaceTable swaps in the result of a new upload. The previous table is discarded in full.
func (sess *Session) ReplaceTable(res grade.BatchResult) {
	sess.Table = res.Table
	sess.Files = res.Files
	sess.Notices = nil
	for _, fErr := range res.Errors {
		sess.Notices = append(sess.Notices, fErr.Error())
	}
}

// PopNotices returns the pending notices and clears them.
func (sess *Session) PopNotices() []string {
	notices := sess.Notices
	sess.Notices = nil
	return notices
}
