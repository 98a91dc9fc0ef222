package board

import (
	"context"
	"errors"
	"fmt"

	"github.com/anatolykoptev/go_clip/internal/engine"
	"github.com/anatolykoptev/go_clip/internal/sheet"
)

var (
	// ErrUnknownItem: no row with the requested id in the current collection.
	ErrUnknownItem = errors.New("item not found")
	// ErrReadOnly: no script endpoint is configured for mutations.
	ErrReadOnly = errors.New("mutations are disabled: SCRIPT_URL is not configured")
)

// Store is the pipeline surface the view layer reads and patches.
type Store interface {
	Snapshot() engine.Snapshot
	Patch(id, field, value string) bool
	Refresh(ctx context.Context) (engine.Snapshot, error)
}

// Mutator forwards row mutations to the script endpoint.
type Mutator interface {
	Enabled() bool
	MarkAsRead(ctx context.Context, id string) error
	ToggleFavorite(ctx context.Context, id string, current bool) (bool, error)
}

// Writable reports whether m can send mutations.
func Writable(m Mutator) bool {
	return m != nil && m.Enabled()
}

// MarkRead asks the script to mark row id read and, once it confirms,
// patches Read=TRUE into the store.
func MarkRead(ctx context.Context, store Store, m Mutator, id string) error {
	if !Writable(m) {
		return ErrReadOnly
	}
	if store.Snapshot().Rows.Find(id) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	if err := m.MarkAsRead(ctx, id); err != nil {
		return err
	}
	store.Patch(id, sheet.ColRead, sheet.FormatBool(true))
	return nil
}

// ToggleFavorite sends the row's current Favorite state, patches the value
// the script answered with and returns it.
func ToggleFavorite(ctx context.Context, store Store, m Mutator, id string) (bool, error) {
	if !Writable(m) {
		return false, ErrReadOnly
	}
	rows := store.Snapshot().Rows
	i := rows.Find(id)
	if i < 0 {
		return false, fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	current := rows[i].Flag(sheet.ColFavorite)
	fav, err := m.ToggleFavorite(ctx, id, current)
	if err != nil {
		return current, err
	}
	store.Patch(id, sheet.ColFavorite, sheet.FormatBool(fav))
	return fav, nil
}
