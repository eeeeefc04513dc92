package husbandry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/repository"
	"github.com/rahim112008/ovinmanager/internal/repository/store"
)

var fixedNow = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func newService() *Service {
	svc := NewService(repository.NewSet(store.NewMemory()), nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

var scope = models.Scope{UserID: "u1", BreederID: "BRD-1"}

func TestRecordMatingForecastsLambing(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	mating := models.NewTimestamp(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	rec, err := svc.RecordMating(ctx, scope, MatingInput{SheepID: "s1", MatingDate: mating})
	require.NoError(t, err)
	assert.Equal(t, models.ReproductionGestating, rec.Status)
	assert.Equal(t, "2024-06-08", rec.ExpectedLambing.Format("2006-01-02"))

	done, err := svc.CompleteReproduction(ctx, scope, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReproductionCompleted, done.Status)

	again, err := svc.CompleteReproduction(ctx, scope, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReproductionCompleted, again.Status)

	_, err = svc.CompleteReproduction(ctx, scope, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.CompleteReproduction(ctx, models.Scope{UserID: "u2"}, rec.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRecordMatingDefaultsToToday(t *testing.T) {
	rec, err := newService().RecordMating(context.Background(), scope, MatingInput{SheepID: "s1"})
	require.NoError(t, err)
	assert.True(t, rec.MatingDate.Equal(fixedNow))
	assert.True(t, rec.ExpectedLambing.Equal(fixedNow.AddDate(0, 0, 150)))
}

func TestRecordProductionAndScope(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, err := svc.RecordProduction(ctx, scope, ProductionInput{SheepID: "s1", Liters: 1.4, Butterfat: 6.8, Protein: 5.2})
	require.NoError(t, err)
	_, err = svc.RecordProduction(ctx, models.Scope{UserID: "u1", BreederID: "BRD-2"}, ProductionInput{SheepID: "s2", Liters: 0.9})
	require.NoError(t, err)

	one, err := svc.ListProduction(ctx, scope)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "s1", one[0].SheepID)
	assert.True(t, one[0].Date.Equal(fixedNow))

	all, err := svc.ListProduction(ctx, models.Scope{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.RecordProduction(ctx, scope, ProductionInput{SheepID: "s1", Liters: -1})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = svc.RecordProduction(ctx, models.Scope{UserID: "u1"}, ProductionInput{SheepID: "s1"})
	assert.ErrorIs(t, err, models.ErrNoActiveBreeder)
}

func TestRecordHealth(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	rec, err := svc.RecordHealth(ctx, scope, HealthInput{SheepID: "s1", Type: models.InterventionDeworming, Description: " Ivermectine ", Product: "Ivomec"})
	require.NoError(t, err)
	assert.Equal(t, "Ivermectine", rec.Description)

	_, err = svc.RecordHealth(ctx, scope, HealthInput{SheepID: "s1", Type: "MASSAGE", Description: "x"})
	assert.ErrorIs(t, err, models.ErrValidation)

	list, err := svc.ListHealth(ctx, scope)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListHealth(ctx, models.Scope{})
	assert.ErrorIs(t, err, models.ErrNoActiveUser)
}
