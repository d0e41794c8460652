// Package store provides the persistence engines behind talker.Store.
//
// Every engine persists the whole collection on Save and returns it in the
// same order on Load. Callers are expected to serialize load-modify-save
// sequences themselves; engines only guarantee that a single Save is applied
// completely or not at all.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/zhouzirui/talker-manager/backend/internal/model/talker"
)

// ErrStoreUnavailable is returned when the backing storage cannot be read or written.
var ErrStoreUnavailable = errors.New("talker store unavailable")

// Supported engine names.
const (
	DriverFile   = "file"
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
)

// Config selects and locates a storage engine.
type Config struct {
	Driver string
	Path   string
	// Seed writes the default talkers into an empty store at startup.
	Seed bool
}

// Engine is a talker.Store that holds resources until closed.
type Engine interface {
	talker.Store
	io.Closer
}

// DefaultPath returns the default location for a driver.
func DefaultPath(driver string) string {
	switch driver {
	case DriverBolt:
		return "talker.db"
	case DriverSQLite:
		return "talker.sqlite"
	default:
		return "talker.json"
	}
}

// Open constructs the engine named by cfg.Driver.
func Open(cfg Config) (Engine, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath(cfg.Driver)
	}

	switch cfg.Driver {
	case "", DriverFile:
		return NewFileStore(path)
	case DriverBolt:
		return NewBoltStore(path)
	case DriverSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// SeedIfEmpty writes seed when the store holds no talkers yet. A file that
// does not exist counts as empty. It reports whether the seed was written.
func SeedIfEmpty(ctx context.Context, s talker.Store, seed []talker.Talker) (bool, error) {
	existing, err := s.Load(ctx)
	if err != nil && !isNotExist(err) {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	if err := s.Save(ctx, seed); err != nil {
		return false, err
	}
	return true, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
