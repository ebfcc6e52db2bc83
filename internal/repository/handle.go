package repository

import (
	"sync/atomic"

	"gorm.io/gorm"
)

// dbHandle holds a connection that may be handed over after requests are
// already being served.
type dbHandle struct {
	p atomic.Pointer[gorm.DB]
}

func (h *dbHandle) SetDB(db *gorm.DB) {
	h.p.Store(db)
}

func (h *dbHandle) conn() (*gorm.DB, error) {
	db := h.p.Load()
	if db == nil {
		return nil, ErrDBNotReady
	}
	return db, nil
}
