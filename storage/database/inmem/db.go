package inmemdb

import (
	"sync"

	"github.com/trezcool/conselho/core/session"
)

type (
	// DB keeps sessions for the lifetime of the process. Nothing is written to disk.
	DB struct {
		session *sessionTable
	}

	sessionTable struct {
		table map[string]*session.Session
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		session: &sessionTable{table: make(map[string]*session.Session)},
	}
}
