// Package nutrition keeps per-breeder feed prices and costs daily rations.
package nutrition

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/metrics"
	"github.com/rahim112008/ovinmanager/internal/repository"
	"github.com/rahim112008/ovinmanager/internal/repository/store"
)

// Advisor proposes ingredient quantities for an animal.
type Advisor interface {
	SuggestRation(ctx context.Context, animal models.Sheep, objective models.FeedingObjective, prices []models.IngredientPrice) ([]models.RationItem, error)
}

// RationInput carries a ration to cost and save.
type RationInput struct {
	SheepID   string                  `json:"sheepId" validate:"required"`
	Objective models.FeedingObjective `json:"objectif" validate:"required,oneof=ENTRETIEN ENGRAISSEMENT LACTATION GESTATION"`
	Items     []models.RationItem     `json:"items" validate:"required,min=1,dive"`
}

// Costing is a priced ration.
type Costing struct {
	Lines []models.RationLine `json:"ingredients"`
	Total float64             `json:"totalCost"`
}

// Service runs the nutrition workflows.
type Service struct {
	repos    *repository.Set
	advisor  Advisor
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new nutrition service instance. A nil advisor disables
// ration suggestions.
func NewService(repos *repository.Set, advisor Advisor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repos: repos, advisor: advisor, validate: validator.New(), logger: logger, now: time.Now}
}

// EnsurePrices returns the breeder's price list, seeding it from the feed
// catalog the first time.
func (s *Service) EnsurePrices(ctx context.Context, breederID string) ([]models.IngredientPrice, error) {
	if breederID == "" {
		return nil, models.ErrNoActiveBreeder
	}
	prices, err := s.repos.Prices.ListByBreeder(ctx, breederID)
	if err != nil {
		return nil, err
	}
	if len(prices) > 0 {
		return prices, nil
	}

	seeded := make([]models.IngredientPrice, 0, len(models.FeedCatalog))
	for _, f := range models.FeedCatalog {
		p := models.IngredientPrice{
			ID:         models.PriceID(breederID, f.ID),
			BreederID:  breederID,
			Name:       f.Name,
			PricePerKg: f.DefaultPrice,
			Category:   f.Category,
		}
		if err := s.repos.Prices.Save(ctx, p); err != nil {
			return nil, fmt.Errorf("seed prices: %w", err)
		}
		metrics.RecordsWrittenTotal.WithLabelValues(string(store.Prices)).Inc()
		seeded = append(seeded, p)
	}
	s.logger.Info("price list seeded", zap.String("breeder_id", breederID), zap.Int("count", len(seeded)))
	return seeded, nil
}

// UpdatePrice changes the unit price of one ingredient owned by userID.
func (s *Service) UpdatePrice(ctx context.Context, userID, priceID string, pricePerKg float64) (models.IngredientPrice, error) {
	if pricePerKg < 0 || math.IsNaN(pricePerKg) || math.IsInf(pricePerKg, 0) {
		return models.IngredientPrice{}, fmt.Errorf("%w: price must be a positive number", models.ErrValidation)
	}
	p, ok, err := s.repos.Prices.Get(ctx, priceID)
	if err != nil {
		return models.IngredientPrice{}, err
	}
	if !ok {
		return models.IngredientPrice{}, fmt.Errorf("%w: price %s", models.ErrNotFound, priceID)
	}
	b, ok, err := s.repos.Breeders.Get(ctx, p.BreederID)
	if err != nil {
		return models.IngredientPrice{}, err
	}
	if !ok || b.UserID != userID {
		return models.IngredientPrice{}, fmt.Errorf("%w: price %s", models.ErrNotFound, priceID)
	}

	p.PricePerKg = pricePerKg
	if err := s.repos.Prices.Save(ctx, p); err != nil {
		return models.IngredientPrice{}, err
	}
	metrics.RecordsWrittenTotal.WithLabelValues(string(store.Prices)).Inc()
	s.logger.Info("price updated", zap.String("price_id", p.ID), zap.Float64("price_per_kg", pricePerKg))
	return p, nil
}

// CostRation prices each item by ingredient name. Unknown ingredients cost 0.
func CostRation(prices []models.IngredientPrice, items []models.RationItem) Costing {
	byName := make(map[string]float64, len(prices))
	for _, p := range prices {
		if _, seen := byName[p.Name]; !seen {
			byName[p.Name] = p.PricePerKg
		}
	}

	c := Costing{Lines: make([]models.RationLine, 0, len(items))}
	for _, item := range items {
		cost := byName[item.Name] * item.QuantityKg
		c.Lines = append(c.Lines, models.RationLine{Name: item.Name, QuantityKg: item.QuantityKg, Cost: cost})
		c.Total += cost
	}
	return c
}

// Quote costs a ration against the breeder's current prices without saving it.
func (s *Service) Quote(ctx context.Context, breederID string, items []models.RationItem) (Costing, error) {
	prices, err := s.EnsurePrices(ctx, breederID)
	if err != nil {
		return Costing{}, err
	}
	return CostRation(prices, items), nil
}

// SaveRation costs and records a daily ration for an animal.
func (s *Service) SaveRation(ctx context.Context, scope models.Scope, in RationInput) (models.NutritionRecord, error) {
	if scope.UserID == "" {
		return models.NutritionRecord{}, models.ErrNoActiveUser
	}
	if scope.BreederID == "" {
		return models.NutritionRecord{}, models.ErrNoActiveBreeder
	}
	in.Items = dropEmpty(in.Items)
	if err := s.validate.Struct(in); err != nil {
		return models.NutritionRecord{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	costing, err := s.Quote(ctx, scope.BreederID, in.Items)
	if err != nil {
		return models.NutritionRecord{}, err
	}

	rec := models.NutritionRecord{
		ID:          models.NewID(""),
		UserID:      scope.UserID,
		BreederID:   scope.BreederID,
		SheepID:     in.SheepID,
		Date:        models.NewTimestamp(s.now()),
		RationName:  "Ration " + string(in.Objective),
		Ingredients: costing.Lines,
		TotalCost:   costing.Total,
		Objective:   in.Objective,
	}
	if err := s.repos.Nutrition.Save(ctx, rec); err != nil {
		return models.NutritionRecord{}, err
	}
	metrics.RecordsWrittenTotal.WithLabelValues(string(store.Nutrition)).Inc()
	s.logger.Info("ration saved",
		zap.String("sheep_id", rec.SheepID),
		zap.String("objective", string(rec.Objective)),
		zap.Float64("total_cost", rec.TotalCost),
	)
	return rec, nil
}

func dropEmpty(items []models.RationItem) []models.RationItem {
	out := make([]models.RationItem, 0, len(items))
	for _, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" || item.QuantityKg <= 0 {
			continue
		}
		out = append(out, item)
	}
	return out
}

// SuggestRation asks the advisor for a ration and returns it costed. Nothing
// is saved.
func (s *Service) SuggestRation(ctx context.Context, scope models.Scope, sheepID string, objective models.FeedingObjective) (Costing, error) {
	if s.advisor == nil {
		return Costing{}, models.ErrAnalysisUnavailable
	}
	if scope.BreederID == "" {
		return Costing{}, models.ErrNoActiveBreeder
	}
	if err := s.validate.Var(objective, "required,oneof=ENTRETIEN ENGRAISSEMENT LACTATION GESTATION"); err != nil {
		return Costing{}, fmt.Errorf("%w: objective: %v", models.ErrValidation, err)
	}

	animal, ok, err := s.repos.Sheep.Get(ctx, sheepID)
	if err != nil {
		return Costing{}, err
	}
	if !ok || animal.UserID != scope.UserID {
		return Costing{}, fmt.Errorf("%w: sheep %s", models.ErrNotFound, sheepID)
	}

	prices, err := s.EnsurePrices(ctx, scope.BreederID)
	if err != nil {
		return Costing{}, err
	}

	items, err := s.advisor.SuggestRation(ctx, animal, objective, prices)
	if err != nil {
		s.logger.Error("ration advice failed", zap.String("sheep_id", sheepID), zap.Error(err))
		return Costing{}, fmt.Errorf("%w: %v", models.ErrAnalysisFailed, err)
	}
	return CostRation(prices, dropEmpty(items)), nil
}

// ListRations returns the rations visible in scope.
func (s *Service) ListRations(ctx context.Context, scope models.Scope) ([]models.NutritionRecord, error) {
	if scope.UserID == "" {
		return nil, models.ErrNoActiveUser
	}
	return s.repos.Nutrition.ListScope(ctx, scope)
}
