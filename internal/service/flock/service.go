// Package flock manages breeders and the animals recorded through image
// analysis.
package flock

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/metrics"
	"github.com/rahim112008/ovinmanager/internal/repository"
	"github.com/rahim112008/ovinmanager/internal/repository/store"
)

const (
	defaultWeightKg = 55
	girthToWeight   = 0.7
)

// Analyzer is the external vision model.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error)
}

// BreederInput carries the breeder form.
type BreederInput struct {
	Name     string `json:"nom" validate:"required,max=120"`
	Locality string `json:"wilaya" validate:"max=80"`
	Phone    string `json:"telephone" validate:"max=32"`
	PhotoURL string `json:"photoUrl" validate:"omitempty,url"`
}

// IntakeInput carries the details an operator adds to an analysis before the
// animal is saved. Exactly one of AgeMonths and Dentition must be set.
type IntakeInput struct {
	TagID     string                    `json:"tagId" validate:"required,max=40"`
	Sex       models.Sex                `json:"sexe" validate:"omitempty,oneof=F M"`
	AgeMonths *int                      `json:"age_mois" validate:"omitempty,gte=0,lte=240"`
	Dentition models.Dentition          `json:"dentition" validate:"omitempty,oneof=0_DENT 2_DENTS 4_DENTS 6_DENTS 8_DENTS"`
	State     models.PhysiologicalState `json:"etat_physiologique" validate:"omitempty,oneof=VIDE GESTANTE_DEBUT GESTANTE_FIN ALLAITANTE TARIE EN_CROISSANCE"`
}

// Service runs the breeder and sheep workflows.
type Service struct {
	repos    *repository.Set
	analyzer Analyzer
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewService wires a new flock service instance. A nil analyzer keeps image
// analysis offline.
func NewService(repos *repository.Set, analyzer Analyzer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repos:    repos,
		analyzer: analyzer,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
		inflight: make(map[string]struct{}),
	}
}

// AnalysisAvailable reports whether an analyzer is configured.
func (s *Service) AnalysisAvailable() bool {
	return s.analyzer != nil
}

// AddBreeder creates a breeder for userID.
func (s *Service) AddBreeder(ctx context.Context, userID string, in BreederInput) (models.Breeder, error) {
	if userID == "" {
		return models.Breeder{}, models.ErrNoActiveUser
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return models.Breeder{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	b := models.Breeder{
		ID:        models.NewID("BRD"),
		UserID:    userID,
		Name:      in.Name,
		Locality:  strings.TrimSpace(in.Locality),
		Phone:     strings.TrimSpace(in.Phone),
		PhotoURL:  in.PhotoURL,
		CreatedAt: models.NewTimestamp(s.now()),
	}
	if err := s.repos.Breeders.Save(ctx, b); err != nil {
		return models.Breeder{}, err
	}
	metrics.RecordsWrittenTotal.WithLabelValues(string(store.Breeders)).Inc()
	s.logger.Info("breeder added", zap.String("user_id", userID), zap.String("breeder_id", b.ID))
	return b, nil
}

// ListBreeders returns the breeders of userID.
func (s *Service) ListBreeders(ctx context.Context, userID string) ([]models.Breeder, error) {
	return s.repos.Breeders.ListByUser(ctx, userID)
}

// DeleteBreeder removes the breeder only. Its animals and records keep their
// breederId.
func (s *Service) DeleteBreeder(ctx context.Context, id string) error {
	if err := s.repos.Breeders.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("breeder deleted", zap.String("breeder_id", id))
	return nil
}

// Analyze sends one photo to the analyzer. Only one analysis per user runs at
// a time.
func (s *Service) Analyze(ctx context.Context, userID string, req models.AnalysisRequest) (models.AnalysisResult, error) {
	if s.analyzer == nil {
		metrics.AnalysesTotal.WithLabelValues("rejected").Inc()
		return models.AnalysisResult{}, models.ErrAnalysisUnavailable
	}
	if userID == "" {
		return models.AnalysisResult{}, models.ErrNoActiveUser
	}
	if len(req.Image) == 0 {
		metrics.AnalysesTotal.WithLabelValues("rejected").Inc()
		return models.AnalysisResult{}, fmt.Errorf("%w: image is required", models.ErrValidation)
	}
	if req.Mode == "" {
		req.Mode = models.ModeProfile
	}
	if req.Reference == "" {
		req.Reference = models.ReferenceNone
	}
	if err := s.validate.Struct(req); err != nil {
		metrics.AnalysesTotal.WithLabelValues("rejected").Inc()
		return models.AnalysisResult{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if _, ok := models.LookupReference(req.Reference); !ok {
		metrics.AnalysesTotal.WithLabelValues("rejected").Inc()
		return models.AnalysisResult{}, fmt.Errorf("%w: unknown reference object %q", models.ErrValidation, req.Reference)
	}

	if !s.acquire(userID) {
		metrics.AnalysesTotal.WithLabelValues("busy").Inc()
		return models.AnalysisResult{}, models.ErrAnalysisInProgress
	}
	defer s.release(userID)

	started := s.now()
	result, err := s.analyzer.AnalyzeImage(ctx, req)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("failed").Inc()
		s.logger.Error("image analysis failed", zap.String("user_id", userID), zap.Error(err))
		return models.AnalysisResult{}, fmt.Errorf("%w: %v", models.ErrAnalysisFailed, err)
	}

	result.Race = normalizeRace(result.Race)
	if err := s.validate.Struct(result); err != nil {
		metrics.AnalysesTotal.WithLabelValues("failed").Inc()
		s.logger.Warn("analysis result rejected", zap.String("user_id", userID), zap.Error(err))
		return models.AnalysisResult{}, fmt.Errorf("%w: %v", models.ErrAnalysisFailed, err)
	}

	metrics.AnalysesTotal.WithLabelValues("ok").Inc()
	s.logger.Info("image analysed",
		zap.String("user_id", userID),
		zap.String("mode", string(req.Mode)),
		zap.String("race", string(result.Race)),
		zap.Duration("took", s.now().Sub(started)),
	)
	return result, nil
}

// normalizeRace maps labels outside the accepted list to INCONNU.
func normalizeRace(r models.Race) models.Race {
	r = models.Race(strings.ToUpper(strings.TrimSpace(string(r))))
	if !models.IsKnownRace(r) {
		return models.RaceInconnue
	}
	return r
}

func (s *Service) acquire(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[userID]; busy {
		return false
	}
	s.inflight[userID] = struct{}{}
	return true
}

func (s *Service) release(userID string) {
	s.mu.Lock()
	delete(s.inflight, userID)
	s.mu.Unlock()
}

// Intake saves the animal described by an analysis result into the selected
// breeder.
func (s *Service) Intake(ctx context.Context, scope models.Scope, in IntakeInput, result models.AnalysisResult, imageURL string) (models.Sheep, error) {
	if scope.UserID == "" {
		return models.Sheep{}, models.ErrNoActiveUser
	}
	if scope.BreederID == "" {
		return models.Sheep{}, models.ErrNoActiveBreeder
	}
	in.TagID = strings.TrimSpace(in.TagID)
	if err := s.checkIntake(in); err != nil {
		return models.Sheep{}, err
	}

	sex := in.Sex
	if sex == "" {
		sex = models.SexFemale
	}
	state := in.State
	if state == "" {
		state = models.StateEmpty
	}
	result.Race = normalizeRace(result.Race)
	if err := s.validate.Struct(result); err != nil {
		return models.Sheep{}, fmt.Errorf("%w: analysis: %v", models.ErrValidation, err)
	}

	sheep := models.Sheep{
		ID:             models.NewID("OVN"),
		UserID:         scope.UserID,
		BreederID:      scope.BreederID,
		Name:           "Ovin_" + in.TagID,
		TagID:          in.TagID,
		Race:           result.Race,
		Sex:            sex,
		AgeMonths:      in.AgeMonths,
		Dentition:      in.Dentition,
		Weight:         EstimateWeight(result.Measurements),
		State:          state,
		CoatColor:      result.CoatColor,
		CoatQuality:    result.CoatQuality,
		AnalyzedAt:     models.NewTimestamp(s.now()),
		Status:         models.SheepActive,
		Measurements:   result.Measurements,
		MammaryTraits:  result.MammaryTraits,
		MammaryScore:   result.MammaryScore,
		Classification: result.Classification,
		Notes:          result.Feedback,
		ImageURL:       imageURL,
	}
	if sheep.Measurements == nil {
		sheep.Measurements = models.Measurements{}
	}

	if err := s.repos.Sheep.Save(ctx, sheep); err != nil {
		return models.Sheep{}, err
	}
	metrics.RecordsWrittenTotal.WithLabelValues(string(store.Sheep)).Inc()
	s.logger.Info("sheep recorded",
		zap.String("user_id", scope.UserID),
		zap.String("breeder_id", scope.BreederID),
		zap.String("sheep_id", sheep.ID),
		zap.String("tag_id", sheep.TagID),
	)
	return sheep, nil
}

func (s *Service) checkIntake(in IntakeInput) error {
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	return checkAge(in.AgeMonths, in.Dentition)
}

func checkAge(months *int, dentition models.Dentition) error {
	switch {
	case months == nil && dentition == "":
		return fmt.Errorf("%w: age in months or dentition is required", models.ErrValidation)
	case months != nil && dentition != "":
		return fmt.Errorf("%w: give either age in months or dentition, not both", models.ErrValidation)
	}
	return nil
}

// EstimateWeight derives live weight from heart girth, or falls back to the
// flock average when the girth was not measured.
func EstimateWeight(m models.Measurements) float64 {
	if girth, ok := m[models.TraitGirth]; ok && girth > 0 {
		return math.Round(girth * girthToWeight)
	}
	return defaultWeightKg
}

// ListSheep returns the animals visible in scope.
func (s *Service) ListSheep(ctx context.Context, scope models.Scope) ([]models.Sheep, error) {
	if scope.UserID == "" {
		return nil, models.ErrNoActiveUser
	}
	return s.repos.Sheep.ListScope(ctx, scope)
}

// GetSheep returns one animal owned by the scope user.
func (s *Service) GetSheep(ctx context.Context, scope models.Scope, id string) (models.Sheep, error) {
	sheep, ok, err := s.repos.Sheep.Get(ctx, id)
	if err != nil {
		return models.Sheep{}, err
	}
	if !ok || sheep.UserID != scope.UserID {
		return models.Sheep{}, fmt.Errorf("%w: sheep %s", models.ErrNotFound, id)
	}
	return sheep, nil
}

// UpdateSheep overwrites an existing animal. Ownership and id come from the
// stored record; a new breeder must belong to the same user.
func (s *Service) UpdateSheep(ctx context.Context, scope models.Scope, sheep models.Sheep) (models.Sheep, error) {
	existing, err := s.GetSheep(ctx, scope, sheep.ID)
	if err != nil {
		return models.Sheep{}, err
	}
	sheep.TagID = strings.TrimSpace(sheep.TagID)
	if sheep.TagID == "" {
		return models.Sheep{}, fmt.Errorf("%w: tagId is required", models.ErrValidation)
	}
	if err := checkAge(sheep.AgeMonths, sheep.Dentition); err != nil {
		return models.Sheep{}, err
	}
	if sheep.MammaryScore != nil && (*sheep.MammaryScore < 0 || *sheep.MammaryScore > 10) {
		return models.Sheep{}, fmt.Errorf("%w: mammary score must be between 0 and 10", models.ErrValidation)
	}

	sheep.UserID = existing.UserID
	if sheep.BreederID == "" {
		sheep.BreederID = existing.BreederID
	}
	if sheep.BreederID != existing.BreederID {
		b, ok, err := s.repos.Breeders.Get(ctx, sheep.BreederID)
		if err != nil {
			return models.Sheep{}, err
		}
		if !ok || b.UserID != existing.UserID {
			return models.Sheep{}, fmt.Errorf("%w: breeder %s", models.ErrNotFound, sheep.BreederID)
		}
	}
	if sheep.AnalyzedAt.IsZero() {
		sheep.AnalyzedAt = existing.AnalyzedAt
	}
	if sheep.Status == "" {
		sheep.Status = existing.Status
	}
	if sheep.Sex == "" {
		sheep.Sex = existing.Sex
	}
	if sheep.Race == "" {
		sheep.Race = existing.Race
	}
	sheep.Race = normalizeRace(sheep.Race)
	if err := s.checkSheepEnums(sheep); err != nil {
		return models.Sheep{}, err
	}

	if err := s.repos.Sheep.Save(ctx, sheep); err != nil {
		return models.Sheep{}, err
	}
	metrics.RecordsWrittenTotal.WithLabelValues(string(store.Sheep)).Inc()
	return sheep, nil
}

func (s *Service) checkSheepEnums(sheep models.Sheep) error {
	checks := []struct {
		field string
		value string
		tag   string
	}{
		{"sexe", string(sheep.Sex), "omitempty,oneof=F M"},
		{"statut", string(sheep.Status), "omitempty,oneof=actif reforme vendu"},
		{"etat_physiologique", string(sheep.State), "omitempty,oneof=VIDE GESTANTE_DEBUT GESTANTE_FIN ALLAITANTE TARIE EN_CROISSANCE"},
	}
	for _, c := range checks {
		if err := s.validate.Var(c.value, c.tag); err != nil {
			return fmt.Errorf("%w: %s %q is not allowed", models.ErrValidation, c.field, c.value)
		}
	}
	return nil
}

// DeleteSheep removes an animal. Its records are left in place.
func (s *Service) DeleteSheep(ctx context.Context, id string) error {
	if err := s.repos.Sheep.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("sheep deleted", zap.String("sheep_id", id))
	return nil
}
