package repository

import (
	"context"

	"veg_market/internal/domain/market"
)

// Snapshot is the unit of exchange between the Store and its persistence
// backend: the full catalog plus the full order history.
type Snapshot struct {
	Vegetables []market.Vegetable
	Orders     []market.Order
}

type Persistence interface {
	// Read loads the primary record. A missing record yields an empty
	// snapshot; an unparseable one yields market.ErrCorruptData.
	Read(ctx context.Context) (Snapshot, error)

	// Write replaces the primary record with snap.
	Write(ctx context.Context, snap Snapshot) error

	// Backup copies the primary record to a new backup artifact and
	// returns the artifact name. The primary is never modified.
	Backup(ctx context.Context) (string, error)

	// ReadBackup loads a named backup artifact. A missing artifact yields
	// market.ErrNotFound; an unparseable one market.ErrCorruptData.
	ReadBackup(ctx context.Context, name string) (Snapshot, error)

	// Backups lists backup artifact names, newest first.
	Backups(ctx context.Context) ([]string, error)
}
