package repository

import (
	"context"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/repository/store"
)

// Users stores local accounts.
type Users struct {
	*Repository[models.User]
}

func NewUsers(s store.Store) *Users {
	return &Users{Repository: New[models.User](s, store.Users)}
}

// FindByUsername returns the first account whose username matches exactly.
func (r *Users) FindByUsername(ctx context.Context, username string) (models.User, bool, error) {
	all, err := r.All(ctx)
	if err != nil {
		return models.User{}, false, err
	}
	for _, u := range all {
		if u.Username == username {
			return u, true, nil
		}
	}
	return models.User{}, false, nil
}

// FindByID returns the account with the given id.
func (r *Users) FindByID(ctx context.Context, id string) (models.User, bool, error) {
	return r.Get(ctx, id)
}

// Breeders stores the exploitations managed by each user.
type Breeders struct {
	*Repository[models.Breeder]
}

func NewBreeders(s store.Store) *Breeders {
	return &Breeders{Repository: New[models.Breeder](s, store.Breeders)}
}

// ListByUser returns the breeders owned by userID.
func (r *Breeders) ListByUser(ctx context.Context, userID string) ([]models.Breeder, error) {
	return r.Filter(ctx, func(b models.Breeder) bool { return b.UserID == userID })
}

// Prices stores the per-breeder ingredient prices.
type Prices struct {
	*Repository[models.IngredientPrice]
}

func NewPrices(s store.Store) *Prices {
	return &Prices{Repository: New[models.IngredientPrice](s, store.Prices)}
}

// ListByBreeder returns the prices of one breeder.
func (r *Prices) ListByBreeder(ctx context.Context, breederID string) ([]models.IngredientPrice, error) {
	return r.Filter(ctx, func(p models.IngredientPrice) bool { return p.BreederID == breederID })
}

// ListByBreeders returns the prices belonging to any of the given breeders.
func (r *Prices) ListByBreeders(ctx context.Context, breederIDs []string) ([]models.IngredientPrice, error) {
	wanted := make(map[string]struct{}, len(breederIDs))
	for _, id := range breederIDs {
		wanted[id] = struct{}{}
	}
	return r.Filter(ctx, func(p models.IngredientPrice) bool {
		_, ok := wanted[p.BreederID]
		return ok
	})
}
