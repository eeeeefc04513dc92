package nutrition

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/repository"
	"github.com/rahim112008/ovinmanager/internal/repository/store"
)

type stubAdvisor struct {
	items  []models.RationItem
	err    error
	prices []models.IngredientPrice
}

func (a *stubAdvisor) SuggestRation(_ context.Context, _ models.Sheep, _ models.FeedingObjective, prices []models.IngredientPrice) ([]models.RationItem, error) {
	a.prices = prices
	return a.items, a.err
}

var scope = models.Scope{UserID: "u1", BreederID: "BRD-1"}

func setup(t *testing.T, advisor Advisor) (*Service, *repository.Set) {
	t.Helper()
	repos := repository.NewSet(store.NewMemory())
	ctx := context.Background()
	require.NoError(t, repos.Breeders.Save(ctx, models.Breeder{ID: "BRD-1", UserID: "u1", Name: "Ferme Atlas"}))
	require.NoError(t, repos.Breeders.Save(ctx, models.Breeder{ID: "BRD-9", UserID: "u2", Name: "Autre"}))
	require.NoError(t, repos.Sheep.Save(ctx, models.Sheep{ID: "s1", UserID: "u1", BreederID: "BRD-1", Race: models.RaceOuda, Weight: 60}))
	return NewService(repos, advisor, nil), repos
}

func TestEnsurePricesSeedsOnce(t *testing.T) {
	ctx := context.Background()
	svc, repos := setup(t, nil)

	prices, err := svc.EnsurePrices(ctx, "BRD-1")
	require.NoError(t, err)
	require.Len(t, prices, len(models.FeedCatalog))
	assert.Equal(t, "BRD-1-ORGE", prices[0].ID)

	_, err = svc.UpdatePrice(ctx, "u1", "BRD-1-ORGE", 72)
	require.NoError(t, err)

	again, err := svc.EnsurePrices(ctx, "BRD-1")
	require.NoError(t, err)
	assert.Len(t, again, len(models.FeedCatalog))

	orge, ok, err := repos.Prices.Get(ctx, "BRD-1-ORGE")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, float64(72), orge.PricePerKg)
}

func TestUpdatePriceChecksOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, nil)
	_, err := svc.EnsurePrices(ctx, "BRD-9")
	require.NoError(t, err)

	_, err = svc.UpdatePrice(ctx, "u1", "BRD-9-ORGE", 10)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.UpdatePrice(ctx, "u2", "BRD-9-ORGE", -1)
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = svc.UpdatePrice(ctx, "u2", "nope", 10)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCostRation(t *testing.T) {
	prices := []models.IngredientPrice{
		{Name: "Orge (Chaïr)", PricePerKg: 60},
		{Name: "Foin (Vesce-Avoine)", PricePerKg: 40},
	}
	c := CostRation(prices, []models.RationItem{
		{Name: "Orge (Chaïr)", QuantityKg: 0.5},
		{Name: "Foin (Vesce-Avoine)", QuantityKg: 1.5},
		{Name: "Caroube", QuantityKg: 2},
	})
	require.Len(t, c.Lines, 3)
	assert.InDelta(t, 30, c.Lines[0].Cost, 1e-9)
	assert.InDelta(t, 60, c.Lines[1].Cost, 1e-9)
	assert.Zero(t, c.Lines[2].Cost)
	assert.InDelta(t, 90, c.Total, 1e-9)
}

func TestSaveRation(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, nil)

	rec, err := svc.SaveRation(ctx, scope, RationInput{
		SheepID:   "s1",
		Objective: models.ObjectiveLactation,
		Items: []models.RationItem{
			{Name: "Orge (Chaïr)", QuantityKg: 0.8},
			{Name: "Paille (Tben)", QuantityKg: 0},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ration LACTATION", rec.RationName)
	require.Len(t, rec.Ingredients, 1)
	assert.InDelta(t, 48, rec.TotalCost, 1e-9)

	list, err := svc.ListRations(ctx, scope)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.SaveRation(ctx, scope, RationInput{SheepID: "s1", Objective: "FESTIN", Items: []models.RationItem{{Name: "x", QuantityKg: 1}}})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = svc.SaveRation(ctx, scope, RationInput{SheepID: "s1", Objective: models.ObjectiveMaintenance})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestSuggestRation(t *testing.T) {
	ctx := context.Background()
	advisor := &stubAdvisor{items: []models.RationItem{{Name: "Orge (Chaïr)", QuantityKg: 0.6}, {Name: "Foin (Vesce-Avoine)", QuantityKg: 1.2}}}
	svc, _ := setup(t, advisor)

	c, err := svc.SuggestRation(ctx, scope, "s1", models.ObjectiveFattening)
	require.NoError(t, err)
	assert.InDelta(t, 36+48, c.Total, 1e-9)
	assert.Len(t, advisor.prices, len(models.FeedCatalog))

	_, err = svc.SuggestRation(ctx, scope, "ghost", models.ObjectiveFattening)
	assert.ErrorIs(t, err, models.ErrNotFound)

	advisor.err = errors.New("overloaded")
	_, err = svc.SuggestRation(ctx, scope, "s1", models.ObjectiveFattening)
	assert.ErrorIs(t, err, models.ErrAnalysisFailed)

	offline, _ := setup(t, nil)
	_, err = offline.SuggestRation(ctx, scope, "s1", models.ObjectiveFattening)
	assert.ErrorIs(t, err, models.ErrAnalysisUnavailable)
}
