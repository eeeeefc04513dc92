package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/repository/store"
)

func TestScopedListFiltersByUserAndBreeder(t *testing.T) {
	ctx := context.Background()
	set := NewSet(store.NewMemory())

	rows := []models.Sheep{
		{ID: "s1", UserID: "u1", BreederID: "b1", TagID: "HAM-001"},
		{ID: "s2", UserID: "u1", BreederID: "b2", TagID: "HAM-002"},
		{ID: "s3", UserID: "u2", BreederID: "b1", TagID: "OUD-001"},
	}
	for _, s := range rows {
		require.NoError(t, set.Sheep.Save(ctx, s))
	}

	all, err := set.Sheep.List(ctx, "u1", "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, ids(all))

	one, err := set.Sheep.List(ctx, "u1", "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids(one))

	none, err := set.Sheep.List(ctx, "u3", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveOverwritesAndDeleteHasNoOwnershipCheck(t *testing.T) {
	ctx := context.Background()
	set := NewSet(store.NewMemory())

	require.NoError(t, set.Health.Save(ctx, models.HealthRecord{ID: "h1", UserID: "u1", BreederID: "b1", Type: models.InterventionVaccine}))
	require.NoError(t, set.Health.Save(ctx, models.HealthRecord{ID: "h1", UserID: "u1", BreederID: "b1", Type: models.InterventionExam}))

	got, ok, err := set.Health.Get(ctx, "h1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.InterventionExam, got.Type)

	require.NoError(t, set.Health.Delete(ctx, "h1"))
	_, ok, err = set.Health.Get(ctx, "h1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveRejectsEmptyID(t *testing.T) {
	set := NewSet(store.NewMemory())
	err := set.Breeders.Save(context.Background(), models.Breeder{Name: "Ferme Atlas"})
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestUsersLookupsReturnNotFoundAsValue(t *testing.T) {
	ctx := context.Background()
	set := NewSet(store.NewMemory())
	require.NoError(t, set.Users.Save(ctx, models.User{ID: "u1", Username: "sofiane", FarmName: "Ferme Atlas", Role: models.RoleAdmin}))

	u, ok, err := set.Users.FindByUsername(ctx, "sofiane")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u1", u.ID)

	_, ok, err = set.Users.FindByUsername(ctx, "Sofiane")
	require.NoError(t, err)
	assert.False(t, ok, "lookup is case sensitive")

	_, ok, err = set.Users.FindByID(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPricesByBreeder(t *testing.T) {
	ctx := context.Background()
	set := NewSet(store.NewMemory())
	require.NoError(t, set.Prices.Save(ctx, models.IngredientPrice{ID: models.PriceID("b1", "ORGE"), BreederID: "b1", Name: "Orge", PricePerKg: 60}))
	require.NoError(t, set.Prices.Save(ctx, models.IngredientPrice{ID: models.PriceID("b2", "ORGE"), BreederID: "b2", Name: "Orge", PricePerKg: 65}))
	require.NoError(t, set.Prices.Save(ctx, models.IngredientPrice{ID: models.PriceID("b3", "ORGE"), BreederID: "b3", Name: "Orge", PricePerKg: 70}))

	b1, err := set.Prices.ListByBreeder(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, b1, 1)
	assert.Equal(t, "b1-ORGE", b1[0].ID)

	several, err := set.Prices.ListByBreeders(ctx, []string{"b1", "b3"})
	require.NoError(t, err)
	assert.Len(t, several, 2)
}

func ids(sheep []models.Sheep) []string {
	out := make([]string, 0, len(sheep))
	for _, s := range sheep {
		out = append(out, s.ID)
	}
	return out
}
