package reporting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/repository"
	repo "github.com/rahim112008/ovinmanager/internal/repository/sheets"
)

const (
	dateLayout     = "2006-01-02"
	reportsTab     = "Rapports"
	reportsRange   = reportsTab + "!A:I"
	eliteLimit     = 5
	reportingWeek  = 7 * 24 * time.Hour
	reportTimeout  = 30 * time.Second
	colDate        = 0
	colUserID      = 1
	colTotalLiters = 6
)

var reportsHeader = []interface{}{
	"Date", "Utilisateur", "Ferme", "Eleveur", "Effectif", "Poids moyen", "Lait total (L)", "Gestations", "Cout aliment (DA)",
}

// ErrPublishingDisabled is returned when no spreadsheet is configured.
var ErrPublishingDisabled = errors.New("report publishing is not configured")

// Service computes herd figures and publishes them.
type Service struct {
	repos  *repository.Set
	sheets repo.Repository
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	tabReady bool
}

// NewService wires a new reporting service instance. A nil sheets repository
// disables publishing.
func NewService(repos *repository.Set, sheets repo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repos: repos, sheets: sheets, logger: logger, now: time.Now}
}

// Dashboard aggregates the animals and records visible in scope.
func (s *Service) Dashboard(ctx context.Context, scope models.Scope) (models.HerdDashboard, error) {
	if scope.UserID == "" {
		return models.HerdDashboard{}, models.ErrNoActiveUser
	}
	sheep, err := s.repos.Sheep.ListScope(ctx, scope)
	if err != nil {
		return models.HerdDashboard{}, err
	}
	production, err := s.repos.Production.ListScope(ctx, scope)
	if err != nil {
		return models.HerdDashboard{}, err
	}
	reproduction, err := s.repos.Reproduction.ListScope(ctx, scope)
	if err != nil {
		return models.HerdDashboard{}, err
	}
	health, err := s.repos.Health.ListScope(ctx, scope)
	if err != nil {
		return models.HerdDashboard{}, err
	}
	rations, err := s.repos.Nutrition.ListScope(ctx, scope)
	if err != nil {
		return models.HerdDashboard{}, err
	}

	now := s.now().UTC()
	d := models.HerdDashboard{
		BreederID:   scope.BreederID,
		HeadCount:   len(sheep),
		BreedCounts: map[models.Race]int{},
		Elite:       EliteEwes(sheep, production),
		GeneratedAt: now,
	}

	var weight float64
	for _, sh := range sheep {
		weight += sh.Weight
		d.BreedCounts[sh.Race]++
		switch sh.Sex {
		case models.SexFemale:
			d.Females++
		case models.SexMale:
			d.Males++
		}
	}
	if len(sheep) > 0 {
		d.AverageWeight = round1(weight / float64(len(sheep)))
	}

	weekStart := now.Add(-reportingWeek)
	for _, p := range production {
		d.TotalMilkLiters += p.Liters
		if !p.Date.Before(weekStart) && !p.Date.After(now) {
			d.WeekMilkLiters += p.Liters
		}
	}
	for _, r := range reproduction {
		if r.Status == models.ReproductionGestating {
			d.OpenGestations++
		}
	}
	d.HealthEvents = len(health)
	for _, n := range rations {
		d.FeedCost += n.TotalCost
	}
	return d, nil
}

// EliteEwes ranks females with production records by
// avgLiters*10 + avgButterfat + avgProtein and keeps the best five.
func EliteEwes(sheep []models.Sheep, production []models.ProductionRecord) []models.EliteEwe {
	bySheep := make(map[string][]models.ProductionRecord)
	for _, p := range production {
		bySheep[p.SheepID] = append(bySheep[p.SheepID], p)
	}

	elite := make([]models.EliteEwe, 0)
	for _, sh := range sheep {
		if sh.Sex != models.SexFemale {
			continue
		}
		records := bySheep[sh.ID]
		if len(records) == 0 {
			continue
		}
		var liters, fat, protein float64
		for _, r := range records {
			liters += r.Liters
			fat += r.Butterfat
			protein += r.Protein
		}
		n := float64(len(records))
		e := models.EliteEwe{
			SheepID:      sh.ID,
			TagID:        sh.TagID,
			Name:         sh.Name,
			Race:         sh.Race,
			AvgLiters:    liters / n,
			AvgButterfat: fat / n,
			AvgProtein:   protein / n,
		}
		e.Score = e.AvgLiters*10 + e.AvgButterfat + e.AvgProtein
		elite = append(elite, e)
	}

	sort.SliceStable(elite, func(i, j int) bool { return elite[i].Score > elite[j].Score })
	if len(elite) > eliteLimit {
		elite = elite[:eliteLimit]
	}
	return elite
}

// Summary renders a dashboard as a short WhatsApp message. previous is the
// milk total of the last published report, or negative when unknown.
func Summary(farm string, d models.HerdDashboard, previous float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rapport hebdomadaire - %s (%s)\n", farm, d.GeneratedAt.Format(dateLayout))
	fmt.Fprintf(&b, "Effectif: %d (F %d / M %d), poids moyen %.1f kg\n", d.HeadCount, d.Females, d.Males, d.AverageWeight)
	fmt.Fprintf(&b, "Lait 7 jours: %.1f L\n", d.WeekMilkLiters)
	fmt.Fprintf(&b, "Lait total: %.1f L", d.TotalMilkLiters)
	if previous >= 0 {
		fmt.Fprintf(&b, " (rapport precedent: %.1f L)", previous)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Gestations en cours: %d, interventions sanitaires: %d\n", d.OpenGestations, d.HealthEvents)
	fmt.Fprintf(&b, "Cout des rations: %.0f DA", d.FeedCost)
	if len(d.Elite) > 0 {
		b.WriteString("\nElites:")
		for i, e := range d.Elite {
			fmt.Fprintf(&b, "\n%d. %s (%s) score %.1f", i+1, e.TagID, e.Race, e.Score)
		}
	}
	return b.String()
}

// Publish appends the dashboard of user to the reports sheet.
func (s *Service) Publish(ctx context.Context, user models.User, d models.HerdDashboard) error {
	if s.sheets == nil {
		return ErrPublishingDisabled
	}
	row := []interface{}{
		d.GeneratedAt.Format(dateLayout),
		user.ID,
		user.FarmName,
		d.BreederID,
		d.HeadCount,
		d.AverageWeight,
		round1(d.TotalMilkLiters),
		d.OpenGestations,
		math.Round(d.FeedCost),
	}
	if err := s.ensureTab(ctx); err != nil {
		return fmt.Errorf("prepare reports tab: %w", err)
	}
	if err := s.sheets.AppendRow(ctx, reportsRange, row); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	s.logger.Info("report published", zap.String("user_id", user.ID), zap.Int("head_count", d.HeadCount))
	return nil
}

func (s *Service) ensureTab(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tabReady {
		return nil
	}
	if err := s.sheets.EnsureTab(ctx, reportsTab, reportsHeader); err != nil {
		return err
	}
	s.tabReady = true
	return nil
}

// LastPublishedMilk returns the total milk of the latest published report of
// userID before day, or -1 when there is none.
func (s *Service) LastPublishedMilk(ctx context.Context, userID string, day time.Time) (float64, error) {
	if s.sheets == nil {
		return -1, nil
	}
	rows, err := s.sheets.ReadRange(ctx, reportsRange)
	if err != nil {
		return -1, fmt.Errorf("load reports range: %w", err)
	}

	cutoff := day.UTC().Truncate(24 * time.Hour)
	var latest time.Time
	value := -1.0
	for _, row := range rows {
		if len(row) <= colTotalLiters || fmt.Sprint(row[colUserID]) != userID {
			continue
		}
		dateValue, err := parseDate(row[colDate])
		if err != nil {
			s.logger.Debug("skip report row with invalid date", zap.Any("value", row[colDate]), zap.Error(err))
			continue
		}
		if !dateValue.Before(cutoff) || dateValue.Before(latest) {
			continue
		}
		liters, err := parseFloat(row[colTotalLiters])
		if err != nil {
			s.logger.Debug("skip report row with invalid liters", zap.Any("value", row[colTotalLiters]), zap.Error(err))
			continue
		}
		latest = dateValue
		value = liters
	}
	return value, nil
}

// GenerateWeeklyReport builds the dashboard of every account, publishes it
// when a spreadsheet is configured and returns the combined message.
func (s *Service) GenerateWeeklyReport(ctx context.Context) (string, error) {
	users, err := s.repos.Users.All(ctx)
	if err != nil {
		return "", fmt.Errorf("load users: %w", err)
	}
	if len(users) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(users))
	for _, u := range users {
		d, err := s.Dashboard(ctx, models.Scope{UserID: u.ID})
		if err != nil {
			return "", fmt.Errorf("dashboard for %s: %w", u.ID, err)
		}

		previous := -1.0
		if s.sheets != nil {
			callCtx, cancel := context.WithTimeout(ctx, reportTimeout)
			previous, err = s.LastPublishedMilk(callCtx, u.ID, d.GeneratedAt)
			if err != nil {
				s.logger.Warn("previous report lookup failed", zap.String("user_id", u.ID), zap.Error(err))
				previous = -1
			}
			if err := s.Publish(callCtx, u, d); err != nil {
				s.logger.Error("failed to publish report", zap.String("user_id", u.ID), zap.Error(err))
			}
			cancel()
		}
		parts = append(parts, Summary(u.FarmName, d, previous))
	}
	return strings.Join(parts, "\n\n"), nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func parseDate(value interface{}) (time.Time, error) {
	str := fmt.Sprint(value)
	if str == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(str) > 10 {
		str = str[:10]
	}
	return time.Parse(dateLayout, str)
}

func parseFloat(value interface{}) (float64, error) {
	str := strings.ReplaceAll(fmt.Sprint(value), ",", ".")
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.ParseFloat(str, 64)
}
