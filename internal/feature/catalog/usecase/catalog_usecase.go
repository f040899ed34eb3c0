// Package usecase implements the business logic for the card catalog.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"cardlens/internal/feature/catalog/domain/entity"
)

// CardRepository abstracts the persistence layer for catalog records.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type CardRepository interface {
	// ListAll returns every record in catalog order.
	ListAll(ctx context.Context) ([]entity.Card, error)
	// UpsertBatch inserts records, or updates them when a record with the same name
	// (ignoring case) exists. When check is non-nil it receives every stored record after
	// the write, within the same transaction; a non-nil error rolls the write back.
	UpsertBatch(ctx context.Context, cards []entity.Card, check func(merged []entity.Card) error) error
}

// CardSource is a tabular source of catalog records (e.g. a CSV export).
type CardSource interface {
	Load(ctx context.Context) ([]entity.Card, error)
}

// SnapshotObserver is notified after every refresh attempt.
type SnapshotObserver interface {
	SetSnapshotSize(snapshot string, n int)
	IncRefreshError(snapshot string)
}

// CatalogUsecase owns the current catalog snapshot.
// Readers always observe a fully built snapshot; Refresh swaps in a new one atomically.
type CatalogUsecase struct {
	repo     CardRepository
	snapshot atomic.Pointer[entity.Catalog]
	group    singleflight.Group
	observer SnapshotObserver
}

// NewCatalogUsecase creates a new CatalogUsecase backed by the given repository.
func NewCatalogUsecase(repo CardRepository) *CatalogUsecase {
	return &CatalogUsecase{repo: repo}
}

// WithObserver sets the observer notified on refresh. It must be called before first use.
func (u *CatalogUsecase) WithObserver(o SnapshotObserver) *CatalogUsecase {
	u.observer = o
	return u
}

// Snapshot returns the current catalog, loading it on first use.
func (u *CatalogUsecase) Snapshot(ctx context.Context) (*entity.Catalog, error) {
	if c := u.snapshot.Load(); c != nil {
		return c, nil
	}
	return u.Refresh(ctx)
}

// Refresh rebuilds the snapshot from the repository and swaps it in.
// Concurrent refreshes share a single repository read. The read is detached from the
// caller's cancellation so that one cancelled caller does not fail the others;
// a cancelled caller stops waiting and gets ctx.Err().
func (u *CatalogUsecase) Refresh(ctx context.Context) (*entity.Catalog, error) {
	ch := u.group.DoChan("refresh", func() (any, error) {
		cards, err := u.repo.ListAll(context.WithoutCancel(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list cards: %w", err)
		}
		c, err := entity.NewCatalog(cards)
		if err != nil {
			return nil, fmt.Errorf("failed to build catalog: %w", err)
		}
		u.snapshot.Store(c)
		slog.Info("catalog snapshot refreshed", "cards", c.Len())
		return c, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			if u.observer != nil {
				u.observer.IncRefreshError("catalog")
			}
			return nil, res.Err
		}
		c := res.Val.(*entity.Catalog)
		if u.observer != nil {
			u.observer.SetSnapshotSize("catalog", c.Len())
		}
		return c, nil
	}
}

// Import validates every record from src, upserts them and refreshes the snapshot.
// Nothing is written when any record is invalid or when the stored records would
// no longer form a valid catalog.
func (u *CatalogUsecase) Import(ctx context.Context, src CardSource) (int, error) {
	cards, err := src.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load card source: %w", err)
	}
	if _, err := entity.NewCatalog(cards); err != nil {
		return 0, err
	}
	verify := func(merged []entity.Card) error {
		_, err := entity.NewCatalog(merged)
		return err
	}
	if err := u.repo.UpsertBatch(ctx, cards, verify); err != nil {
		return 0, fmt.Errorf("failed to store cards: %w", err)
	}
	if _, err := u.Refresh(ctx); err != nil {
		return 0, err
	}
	return len(cards), nil
}

// ListCards returns the records of the current snapshot.
func (u *CatalogUsecase) ListCards(ctx context.Context) ([]entity.Card, error) {
	c, err := u.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return c.Entries(), nil
}

// GetCard returns the record with the given name from the current snapshot, ignoring case.
func (u *CatalogUsecase) GetCard(ctx context.Context, name string) (entity.Card, error) {
	c, err := u.Snapshot(ctx)
	if err != nil {
		return entity.Card{}, err
	}
	card, ok := c.FindByName(name)
	if !ok {
		return entity.Card{}, fmt.Errorf("%w: %q", entity.ErrCardNotFound, name)
	}
	return card, nil
}
