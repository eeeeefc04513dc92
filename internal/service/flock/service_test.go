package flock

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/repository"
	"github.com/rahim112008/ovinmanager/internal/repository/store"
)

type stubAnalyzer struct {
	result  models.AnalysisResult
	err     error
	started chan struct{}
	release chan struct{}
	got     models.AnalysisRequest
}

func (a *stubAnalyzer) AnalyzeImage(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	a.got = req
	if a.started != nil {
		close(a.started)
		<-a.release
	}
	return a.result, a.err
}

func hamraResult() models.AnalysisResult {
	score := 8.0
	return models.AnalysisResult{
		Race:           models.RaceHamra,
		CoatColor:      "Rousse",
		CoatQuality:    "Bonne",
		Measurements:   models.Measurements{models.TraitGirth: 92, models.TraitLength: 105},
		MammaryScore:   &score,
		Classification: "Type laitier",
		Feedback:       "Bonne conformation.",
	}
}

func newService(a Analyzer) (*Service, *repository.Set) {
	repos := repository.NewSet(store.NewMemory())
	return NewService(repos, a, nil), repos
}

func intPtr(v int) *int { return &v }

func TestAddAndDeleteBreeder(t *testing.T) {
	ctx := context.Background()
	svc, repos := newService(nil)

	b, err := svc.AddBreeder(ctx, "u1", BreederInput{Name: "  Ferme Atlas ", Locality: "Djelfa"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(b.ID, "BRD-"))
	assert.Equal(t, "Ferme Atlas", b.Name)
	assert.False(t, b.CreatedAt.IsZero())

	_, err = svc.AddBreeder(ctx, "u1", BreederInput{Name: "   "})
	assert.ErrorIs(t, err, models.ErrValidation)

	require.NoError(t, repos.Sheep.Save(ctx, models.Sheep{ID: "s1", UserID: "u1", BreederID: b.ID, TagID: "T1"}))
	require.NoError(t, svc.DeleteBreeder(ctx, b.ID))

	list, err := svc.ListBreeders(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)

	orphan, ok, err := repos.Sheep.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, b.ID, orphan.BreederID)

	stillListed, err := repos.Sheep.List(ctx, "u1", b.ID)
	require.NoError(t, err)
	assert.Len(t, stillListed, 1)
}

func TestAnalyzeOffline(t *testing.T) {
	svc, _ := newService(nil)
	assert.False(t, svc.AnalysisAvailable())

	_, err := svc.Analyze(context.Background(), "u1", models.AnalysisRequest{Image: []byte{1}, Mode: models.ModeProfile})
	assert.ErrorIs(t, err, models.ErrAnalysisUnavailable)
}

func TestAnalyzeNormalisesUnknownRace(t *testing.T) {
	res := hamraResult()
	res.Race = "texel"
	a := &stubAnalyzer{result: res}
	svc, _ := newService(a)

	got, err := svc.Analyze(context.Background(), "u1", models.AnalysisRequest{Image: []byte{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, models.RaceInconnue, got.Race)
	assert.Equal(t, models.ModeProfile, a.got.Mode)
	assert.Equal(t, models.ReferenceNone, a.got.Reference)
}

func TestAnalyzeRejectsBadResults(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.AnalysisResult)
	}{
		{"score above ten", func(r *models.AnalysisResult) { s := 12.0; r.MammaryScore = &s }},
		{"negative measurement", func(r *models.AnalysisResult) { r.Measurements[models.TraitHeight] = -3 }},
		{"missing classification", func(r *models.AnalysisResult) { r.Classification = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := hamraResult()
			tt.mutate(&res)
			svc, _ := newService(&stubAnalyzer{result: res})

			_, err := svc.Analyze(context.Background(), "u1", models.AnalysisRequest{Image: []byte{1}, Mode: models.ModeMammary})
			assert.ErrorIs(t, err, models.ErrAnalysisFailed)
		})
	}
}

func TestAnalyzeWrapsCallFailure(t *testing.T) {
	svc, _ := newService(&stubAnalyzer{err: errors.New("timeout")})

	_, err := svc.Analyze(context.Background(), "u1", models.AnalysisRequest{Image: []byte{1}})
	assert.ErrorIs(t, err, models.ErrAnalysisFailed)
}

func TestAnalyzeValidatesRequest(t *testing.T) {
	svc, _ := newService(&stubAnalyzer{result: hamraResult()})
	ctx := context.Background()

	_, err := svc.Analyze(ctx, "u1", models.AnalysisRequest{})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = svc.Analyze(ctx, "u1", models.AnalysisRequest{Image: []byte{1}, Mode: "XRAY"})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = svc.Analyze(ctx, "u1", models.AnalysisRequest{Image: []byte{1}, Reference: "REGLE"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestAnalyzeRejectsConcurrentSubmission(t *testing.T) {
	a := &stubAnalyzer{result: hamraResult(), started: make(chan struct{}), release: make(chan struct{})}
	svc, _ := newService(a)
	ctx := context.Background()
	req := models.AnalysisRequest{Image: []byte{1}}

	done := make(chan error, 1)
	go func() {
		_, err := svc.Analyze(ctx, "u1", req)
		done <- err
	}()
	<-a.started

	_, err := svc.Analyze(ctx, "u1", req)
	assert.ErrorIs(t, err, models.ErrAnalysisInProgress)

	close(a.release)
	require.NoError(t, <-done)

	a.started = nil
	_, err = svc.Analyze(ctx, "u1", req)
	assert.NoError(t, err)
}

func TestIntake(t *testing.T) {
	ctx := context.Background()
	svc, repos := newService(nil)
	scope := models.Scope{UserID: "u1", BreederID: "BRD-1"}

	sheep, err := svc.Intake(ctx, scope, IntakeInput{TagID: " HAM-001 ", Dentition: models.Dentition4}, hamraResult(), "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sheep.ID, "OVN-"))
	assert.Equal(t, "Ovin_HAM-001", sheep.Name)
	assert.Equal(t, float64(64), sheep.Weight)
	assert.Equal(t, models.SexFemale, sheep.Sex)
	assert.Equal(t, models.SheepActive, sheep.Status)
	assert.Equal(t, models.StateEmpty, sheep.State)
	assert.Equal(t, "Bonne conformation.", sheep.Notes)
	assert.Equal(t, "BRD-1", sheep.BreederID)

	stored, ok, err := repos.Sheep.Get(ctx, sheep.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sheep.TagID, stored.TagID)

	res := hamraResult()
	res.Measurements = nil
	noGirth, err := svc.Intake(ctx, scope, IntakeInput{TagID: "HAM-002", AgeMonths: intPtr(18)}, res, "")
	require.NoError(t, err)
	assert.Equal(t, float64(55), noGirth.Weight)
	assert.NotNil(t, noGirth.Measurements)
}

func TestIntakeRules(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(nil)
	scope := models.Scope{UserID: "u1", BreederID: "BRD-1"}

	_, err := svc.Intake(ctx, models.Scope{UserID: "u1"}, IntakeInput{TagID: "T", AgeMonths: intPtr(3)}, hamraResult(), "")
	assert.ErrorIs(t, err, models.ErrNoActiveBreeder)

	_, err = svc.Intake(ctx, scope, IntakeInput{AgeMonths: intPtr(3)}, hamraResult(), "")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Intake(ctx, scope, IntakeInput{TagID: "T"}, hamraResult(), "")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Intake(ctx, scope, IntakeInput{TagID: "T", AgeMonths: intPtr(3), Dentition: models.Dentition2}, hamraResult(), "")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdateSheep(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(nil)
	scope := models.Scope{UserID: "u1", BreederID: "BRD-1"}
	sheep, err := svc.Intake(ctx, scope, IntakeInput{TagID: "HAM-001", Dentition: models.Dentition2}, hamraResult(), "")
	require.NoError(t, err)

	sheep.Weight = 70
	sheep.UserID = "intruder"
	updated, err := svc.UpdateSheep(ctx, scope, sheep)
	require.NoError(t, err)
	assert.Equal(t, "u1", updated.UserID)
	assert.Equal(t, float64(70), updated.Weight)

	sheep.AgeMonths = intPtr(12)
	_, err = svc.UpdateSheep(ctx, scope, sheep)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.UpdateSheep(ctx, models.Scope{UserID: "u2"}, updated)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, svc.DeleteSheep(ctx, updated.ID))
	list, err := svc.ListSheep(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateSheepChecksBreederAndLabels(t *testing.T) {
	ctx := context.Background()
	svc, repos := newService(nil)
	require.NoError(t, repos.Breeders.Save(ctx, models.Breeder{ID: "BRD-2", UserID: "u1", Name: "Ferme Nord"}))
	require.NoError(t, repos.Breeders.Save(ctx, models.Breeder{ID: "BRD-X", UserID: "u2", Name: "Autre"}))
	scope := models.Scope{UserID: "u1", BreederID: "BRD-1"}
	sheep, err := svc.Intake(ctx, scope, IntakeInput{TagID: "HAM-001", Dentition: models.Dentition2}, hamraResult(), "")
	require.NoError(t, err)

	moved := sheep
	moved.BreederID = "BRD-X"
	_, err = svc.UpdateSheep(ctx, scope, moved)
	assert.ErrorIs(t, err, models.ErrNotFound)

	moved.BreederID = "BRD-missing"
	_, err = svc.UpdateSheep(ctx, scope, moved)
	assert.ErrorIs(t, err, models.ErrNotFound)

	moved.BreederID = "BRD-2"
	got, err := svc.UpdateSheep(ctx, scope, moved)
	require.NoError(t, err)
	assert.Equal(t, "BRD-2", got.BreederID)

	bad := got
	bad.Sex = "X"
	_, err = svc.UpdateSheep(ctx, scope, bad)
	assert.ErrorIs(t, err, models.ErrValidation)

	bad = got
	bad.Status = "perdu"
	_, err = svc.UpdateSheep(ctx, scope, bad)
	assert.ErrorIs(t, err, models.ErrValidation)

	bad = got
	bad.State = "DORMANTE"
	_, err = svc.UpdateSheep(ctx, scope, bad)
	assert.ErrorIs(t, err, models.ErrValidation)

	relabeled := got
	relabeled.Race = "texel"
	relabeled.Status = models.SheepSold
	got, err = svc.UpdateSheep(ctx, scope, relabeled)
	require.NoError(t, err)
	assert.Equal(t, models.RaceInconnue, got.Race)
	assert.Equal(t, models.SheepSold, got.Status)

	stored, ok, err := repos.Sheep.Get(ctx, sheep.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "BRD-2", stored.BreederID)
	assert.Equal(t, models.SexFemale, stored.Sex)
}

func TestConformity(t *testing.T) {
	sheep := models.Sheep{
		ID:           "s1",
		Race:         models.RaceHamra,
		Sex:          models.SexFemale,
		Weight:       64,
		Measurements: models.Measurements{models.TraitLength: 105, models.TraitHeight: 55, models.TraitGirth: 120},
	}

	report := Conformity(sheep)
	require.True(t, report.HasStandard)
	byTrait := map[string]string{}
	for _, c := range report.Checks {
		byTrait[c.Trait] = c.Status
	}
	assert.Equal(t, AboveRange, byTrait["poids"])
	assert.Equal(t, WithinRange, byTrait[models.TraitLength])
	assert.Equal(t, BelowRange, byTrait[models.TraitHeight])
	assert.Equal(t, AboveRange, byTrait[models.TraitGirth])
	assert.Equal(t, NotMeasured, byTrait[models.TraitPelvis])
	assert.Equal(t, 1, report.Conforming)
	assert.Equal(t, 3, report.Deviating)

	unknown := Conformity(models.Sheep{ID: "s2", Race: models.RaceCroise})
	assert.False(t, unknown.HasStandard)
	assert.Empty(t, unknown.Checks)
}
