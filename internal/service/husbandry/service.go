// Package husbandry records milk production, health interventions and
// reproduction events.
package husbandry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/metrics"
	"github.com/rahim112008/ovinmanager/internal/repository"
	"github.com/rahim112008/ovinmanager/internal/repository/store"
)

// ProductionInput carries one milking measurement.
type ProductionInput struct {
	SheepID   string           `json:"sheepId" validate:"required"`
	Date      models.Timestamp `json:"date"`
	Liters    float64          `json:"quantite_litres" validate:"gte=0,lte=20"`
	Butterfat float64          `json:"taux_butyreux" validate:"gte=0,lte=100"`
	Protein   float64          `json:"taux_proteique" validate:"gte=0,lte=100"`
	Lactose   float64          `json:"lactose" validate:"gte=0,lte=100"`
}

// HealthInput carries one veterinary intervention.
type HealthInput struct {
	SheepID     string                  `json:"sheepId" validate:"required"`
	Date        models.Timestamp        `json:"date"`
	Type        models.InterventionType `json:"type" validate:"required,oneof=VACCIN TRAITEMENT DEPARASITAGE EXAMEN"`
	Description string                  `json:"description" validate:"required"`
	Product     string                  `json:"produit"`
}

// MatingInput carries one mating.
type MatingInput struct {
	SheepID    string           `json:"sheepId" validate:"required"`
	MatingDate models.Timestamp `json:"date_saillie"`
}

// Service runs the husbandry workflows.
type Service struct {
	repos    *repository.Set
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new husbandry service instance.
func NewService(repos *repository.Set, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repos: repos, validate: validator.New(), logger: logger, now: time.Now}
}

func (s *Service) check(scope models.Scope, in any) error {
	if scope.UserID == "" {
		return models.ErrNoActiveUser
	}
	if scope.BreederID == "" {
		return models.ErrNoActiveBreeder
	}
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	return nil
}

func (s *Service) dateOr(t models.Timestamp) models.Timestamp {
	if t.IsZero() {
		return models.NewTimestamp(s.now())
	}
	return t
}

// RecordProduction saves a milking record in the selected breeder.
func (s *Service) RecordProduction(ctx context.Context, scope models.Scope, in ProductionInput) (models.ProductionRecord, error) {
	if err := s.check(scope, in); err != nil {
		return models.ProductionRecord{}, err
	}
	rec := models.ProductionRecord{
		ID:        models.NewID(""),
		UserID:    scope.UserID,
		BreederID: scope.BreederID,
		SheepID:   in.SheepID,
		Date:      s.dateOr(in.Date),
		Liters:    in.Liters,
		Butterfat: in.Butterfat,
		Protein:   in.Protein,
		Lactose:   in.Lactose,
	}
	if err := s.repos.Production.Save(ctx, rec); err != nil {
		return models.ProductionRecord{}, err
	}
	metrics.RecordsWrittenTotal.WithLabelValues(string(store.Production)).Inc()
	s.logger.Debug("production recorded", zap.String("sheep_id", rec.SheepID), zap.Float64("liters", rec.Liters))
	return rec, nil
}

// RecordHealth saves a veterinary intervention in the selected breeder.
func (s *Service) RecordHealth(ctx context.Context, scope models.Scope, in HealthInput) (models.HealthRecord, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := s.check(scope, in); err != nil {
		return models.HealthRecord{}, err
	}
	rec := models.HealthRecord{
		ID:          models.NewID(""),
		UserID:      scope.UserID,
		BreederID:   scope.BreederID,
		SheepID:     in.SheepID,
		Date:        s.dateOr(in.Date),
		Type:        in.Type,
		Description: in.Description,
		Product:     strings.TrimSpace(in.Product),
	}
	if err := s.repos.Health.Save(ctx, rec); err != nil {
		return models.HealthRecord{}, err
	}
	metrics.RecordsWrittenTotal.WithLabelValues(string(store.Health)).Inc()
	s.logger.Debug("health event recorded", zap.String("sheep_id", rec.SheepID), zap.String("type", string(rec.Type)))
	return rec, nil
}

// ExpectedLambing is the forecast lambing date for a mating.
func ExpectedLambing(mating time.Time) time.Time {
	return mating.AddDate(0, 0, models.GestationDays)
}

// RecordMating opens a gestation with its lambing forecast.
func (s *Service) RecordMating(ctx context.Context, scope models.Scope, in MatingInput) (models.ReproductionRecord, error) {
	if err := s.check(scope, in); err != nil {
		return models.ReproductionRecord{}, err
	}
	mating := s.dateOr(in.MatingDate)
	rec := models.ReproductionRecord{
		ID:              models.NewID(""),
		UserID:          scope.UserID,
		BreederID:       scope.BreederID,
		SheepID:         in.SheepID,
		MatingDate:      mating,
		ExpectedLambing: models.NewTimestamp(ExpectedLambing(mating.Time)),
		Status:          models.ReproductionGestating,
	}
	if err := s.repos.Reproduction.Save(ctx, rec); err != nil {
		return models.ReproductionRecord{}, err
	}
	metrics.RecordsWrittenTotal.WithLabelValues(string(store.Reproduction)).Inc()
	s.logger.Info("mating recorded",
		zap.String("sheep_id", rec.SheepID),
		zap.Time("expected_lambing", rec.ExpectedLambing.Time),
	)
	return rec, nil
}

// CompleteReproduction closes a gestation. Completing an already closed one
// is a no-op.
func (s *Service) CompleteReproduction(ctx context.Context, scope models.Scope, id string) (models.ReproductionRecord, error) {
	rec, ok, err := s.repos.Reproduction.Get(ctx, id)
	if err != nil {
		return models.ReproductionRecord{}, err
	}
	if !ok || rec.UserID != scope.UserID {
		return models.ReproductionRecord{}, fmt.Errorf("%w: reproduction %s", models.ErrNotFound, id)
	}
	if rec.Status == models.ReproductionCompleted {
		return rec, nil
	}
	rec.Status = models.ReproductionCompleted
	if err := s.repos.Reproduction.Save(ctx, rec); err != nil {
		return models.ReproductionRecord{}, err
	}
	metrics.RecordsWrittenTotal.WithLabelValues(string(store.Reproduction)).Inc()
	s.logger.Info("gestation completed", zap.String("reproduction_id", id))
	return rec, nil
}

// ListProduction returns the milking records visible in scope.
func (s *Service) ListProduction(ctx context.Context, scope models.Scope) ([]models.ProductionRecord, error) {
	if scope.UserID == "" {
		return nil, models.ErrNoActiveUser
	}
	return s.repos.Production.ListScope(ctx, scope)
}

// ListHealth returns the interventions visible in scope.
func (s *Service) ListHealth(ctx context.Context, scope models.Scope) ([]models.HealthRecord, error) {
	if scope.UserID == "" {
		return nil, models.ErrNoActiveUser
	}
	return s.repos.Health.ListScope(ctx, scope)
}

// ListReproduction returns the reproduction records visible in scope.
func (s *Service) ListReproduction(ctx context.Context, scope models.Scope) ([]models.ReproductionRecord, error) {
	if scope.UserID == "" {
		return nil, models.ErrNoActiveUser
	}
	return s.repos.Reproduction.ListScope(ctx, scope)
}
