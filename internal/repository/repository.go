// Package repository maps domain records onto the key-value store. Reads are
// full scans filtered in memory; volumes are one farm's worth of animals.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/repository/store"
)

// Repository reads and writes one record kind stored in a single table.
type Repository[T models.Entity] struct {
	store store.Store
	table store.Table
}

// New binds a repository to a table of the store.
func New[T models.Entity](s store.Store, table store.Table) *Repository[T] {
	return &Repository[T]{store: s, table: table}
}

// Table returns the backing table name.
func (r *Repository[T]) Table() store.Table { return r.table }

// All decodes every record of the table.
func (r *Repository[T]) All(ctx context.Context) ([]T, error) {
	rows, err := r.store.GetAll(ctx, r.table)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", r.table, err)
	}
	out := make([]T, 0, len(rows))
	for _, raw := range rows {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", r.table, err)
		}
		out = append(out, item)
	}
	return out, nil
}

// Filter returns the records accepted by keep.
func (r *Repository[T]) Filter(ctx context.Context, keep func(T) bool) ([]T, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(all))
	for _, item := range all {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Get finds a record by id. A missing record is reported through the boolean.
func (r *Repository[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	all, err := r.All(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, item := range all {
		if item.GetID() == id {
			return item, true, nil
		}
	}
	return zero, false, nil
}

// Save inserts or fully replaces the record.
func (r *Repository[T]) Save(ctx context.Context, item T) error {
	id := item.GetID()
	if id == "" {
		return fmt.Errorf("%w: %s record without id", models.ErrValidation, r.table)
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", r.table, id, err)
	}
	if err := r.store.Put(ctx, r.table, id, raw); err != nil {
		return fmt.Errorf("save %s/%s: %w", r.table, id, err)
	}
	return nil
}

// Delete removes the record with id. Ownership is not checked.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	if err := r.store.Remove(ctx, r.table, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", r.table, id, err)
	}
	return nil
}

// Scoped is a repository of records attached to a user and a breeder.
type Scoped[T models.ScopedEntity] struct {
	*Repository[T]
}

// NewScoped binds a scoped repository to a table of the store.
func NewScoped[T models.ScopedEntity](s store.Store, table store.Table) *Scoped[T] {
	return &Scoped[T]{Repository: New[T](s, table)}
}

// List returns the records owned by userID, narrowed to breederID when it is
// not empty.
func (r *Scoped[T]) List(ctx context.Context, userID, breederID string) ([]T, error) {
	scope := models.Scope{UserID: userID, BreederID: breederID}
	return r.Filter(ctx, func(item T) bool {
		return scope.Matches(item.OwnerID(), item.BreederRef())
	})
}

// ListScope is List for a scope value.
func (r *Scoped[T]) ListScope(ctx context.Context, scope models.Scope) ([]T, error) {
	return r.List(ctx, scope.UserID, scope.BreederID)
}
