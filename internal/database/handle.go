package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mrlokans/curator/internal/config"
	"github.com/mrlokans/curator/internal/database/recommendations"
	"github.com/mrlokans/curator/internal/entities"
)

// ErrUnavailable is returned when the datastore connection cannot be established.
var ErrUnavailable = errors.New("datastore unavailable")

// Handle is the single shared datastore handle, opened on first use.
type Handle struct {
	cfg  config.Database
	open func(config.Database) (*Database, error)

	mu   sync.Mutex
	db   *Database
	repo *recommendations.Repository
}

// NewHandle creates a handle that connects with the given settings on first use.
func NewHandle(cfg config.Database) *Handle {
	return &Handle{
		cfg: cfg,
		open: func(c config.Database) (*Database, error) {
			return NewDatabase(c.Driver, c.DSN, c.AutoMigrate)
		},
	}
}

// NewHandleFromDatabase wraps an already open database.
func NewHandleFromDatabase(db *Database) *Handle {
	return &Handle{
		db:   db,
		repo: recommendations.NewRepository(db.DB),
	}
}

// Database returns the open database, connecting if necessary.
func (h *Handle) Database() (*Database, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.db != nil {
		return h.db, nil
	}
	if h.open == nil {
		return nil, ErrUnavailable
	}

	db, err := h.open(h.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	h.db = db
	h.repo = recommendations.NewRepository(db.DB)
	return db, nil
}

// Connected reports whether the connection has been opened.
func (h *Handle) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.db != nil
}

// Ping connects if necessary and verifies the connection is usable.
func (h *Handle) Ping(ctx context.Context) error {
	db, err := h.Database()
	if err != nil {
		return err
	}
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (h *Handle) recommendations() (*recommendations.Repository, error) {
	if _, err := h.Database(); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.repo, nil
}

// Exists reports whether a recommendation with a matching title is stored.
func (h *Handle) Exists(ctx context.Context, title string) (bool, error) {
	repo, err := h.recommendations()
	if err != nil {
		return false, err
	}
	return repo.Exists(ctx, title)
}

// Insert writes a recommendation and reports whether a row was created.
func (h *Handle) Insert(ctx context.Context, rec *entities.Recommendation) (bool, error) {
	repo, err := h.recommendations()
	if err != nil {
		return false, err
	}
	return repo.Insert(ctx, rec)
}

// Close closes the connection if it was opened.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.db == nil {
		return nil
	}
	err := h.db.Close()
	h.db = nil
	h.repo = nil
	return err
}
