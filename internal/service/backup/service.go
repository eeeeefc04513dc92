// Package backup exports one user's data as a portable JSON document and
// restores such documents into the local store.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/metrics"
	"github.com/rahim112008/ovinmanager/internal/repository"
	"github.com/rahim112008/ovinmanager/internal/repository/archive"
	"github.com/rahim112008/ovinmanager/internal/repository/store"
)

// ContentType of exported documents.
const ContentType = "application/json"

// Bundle is an exported document ready to hand to a share mechanism.
type Bundle struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Sharer delivers a bundle to a recipient outside the app.
type Sharer interface {
	ShareDocument(ctx context.Context, recipient, filename string, data []byte, caption string) error
}

// Service exports and imports backup documents.
type Service struct {
	repos  *repository.Set
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new backup service instance.
func NewService(repos *repository.Set, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repos: repos, logger: logger, now: time.Now}
}

// Filename is the conventional name of a user's backup for a given day.
func Filename(userID string, at time.Time) string {
	return fmt.Sprintf("ovin_backup_%s_%s.json", userID, at.UTC().Format("2006-01-02"))
}

// Export gathers every record owned by userID across all of their breeders.
// Prices are included when their breeder belongs to the user.
func (s *Service) Export(ctx context.Context, userID string) (models.Backup, error) {
	doc := models.Backup{
		Users:        []models.User{},
		Breeders:     []models.Breeder{},
		Sheep:        []models.Sheep{},
		Prices:       []models.IngredientPrice{},
		Production:   []models.ProductionRecord{},
		Health:       []models.HealthRecord{},
		Reproduction: []models.ReproductionRecord{},
		Nutrition:    []models.NutritionRecord{},
		ExportDate:   models.NewTimestamp(s.now()),
		Version:      models.BackupVersion,
	}

	user, ok, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return models.Backup{}, fmt.Errorf("export user: %w", err)
	}
	if ok {
		doc.Users = append(doc.Users, user)
	}

	breeders, err := s.repos.Breeders.ListByUser(ctx, userID)
	if err != nil {
		return models.Backup{}, fmt.Errorf("export breeders: %w", err)
	}
	doc.Breeders = append(doc.Breeders, breeders...)

	breederIDs := make([]string, 0, len(breeders))
	for _, b := range breeders {
		breederIDs = append(breederIDs, b.ID)
	}
	prices, err := s.repos.Prices.ListByBreeders(ctx, breederIDs)
	if err != nil {
		return models.Backup{}, fmt.Errorf("export prices: %w", err)
	}
	doc.Prices = append(doc.Prices, prices...)

	if doc.Sheep, err = appendScoped(ctx, doc.Sheep, s.repos.Sheep, userID); err != nil {
		return models.Backup{}, err
	}
	if doc.Production, err = appendScoped(ctx, doc.Production, s.repos.Production, userID); err != nil {
		return models.Backup{}, err
	}
	if doc.Health, err = appendScoped(ctx, doc.Health, s.repos.Health, userID); err != nil {
		return models.Backup{}, err
	}
	if doc.Reproduction, err = appendScoped(ctx, doc.Reproduction, s.repos.Reproduction, userID); err != nil {
		return models.Backup{}, err
	}
	if doc.Nutrition, err = appendScoped(ctx, doc.Nutrition, s.repos.Nutrition, userID); err != nil {
		return models.Backup{}, err
	}

	return doc, nil
}

func appendScoped[T models.ScopedEntity](ctx context.Context, dst []T, repo *repository.Scoped[T], userID string) ([]T, error) {
	rows, err := repo.List(ctx, userID, "")
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", repo.Table(), err)
	}
	return append(dst, rows...), nil
}

// Encode renders a document as indented JSON.
func Encode(doc models.Backup) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Bundle exports userID and returns the encoded document with its filename.
func (s *Service) Bundle(ctx context.Context, userID string) (Bundle, error) {
	doc, err := s.Export(ctx, userID)
	if err != nil {
		metrics.BackupsTotal.WithLabelValues("export", "error").Inc()
		return Bundle{}, err
	}
	data, err := Encode(doc)
	if err != nil {
		metrics.BackupsTotal.WithLabelValues("export", "error").Inc()
		return Bundle{}, err
	}
	metrics.BackupsTotal.WithLabelValues("export", "ok").Inc()

	s.logger.Info("backup exported",
		zap.String("user_id", userID),
		zap.Int("breeders", len(doc.Breeders)),
		zap.Int("sheep", len(doc.Sheep)),
		zap.Int("bytes", len(data)),
	)
	return Bundle{Filename: Filename(userID, doc.ExportDate.Time), ContentType: ContentType, Data: data}, nil
}

// Download writes the export of userID to w and returns the suggested filename.
func (s *Service) Download(ctx context.Context, userID string, w io.Writer) (string, error) {
	b, err := s.Bundle(ctx, userID)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(b.Data); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return b.Filename, nil
}

// Share exports userID and hands the bundle to sharer.
func (s *Service) Share(ctx context.Context, sharer Sharer, userID, recipient string) (Bundle, error) {
	b, err := s.Bundle(ctx, userID)
	if err != nil {
		return Bundle{}, err
	}
	caption := "Sauvegarde OvinManager " + b.Filename
	if err := sharer.ShareDocument(ctx, recipient, b.Filename, b.Data, caption); err != nil {
		return Bundle{}, fmt.Errorf("share backup: %w", err)
	}
	return b, nil
}

// ArchiveAll writes the backup of every local account to sink. Each user gets
// a folder named after their id. Failures are logged and the last one returned.
func (s *Service) ArchiveAll(ctx context.Context, sink archive.Sink) (int, error) {
	users, err := s.repos.Users.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	var (
		archived int
		lastErr  error
	)
	for _, u := range users {
		b, err := s.Bundle(ctx, u.ID)
		if err == nil {
			err = sink.Put(ctx, u.ID+"/"+b.Filename, b.Data)
		}
		metrics.BackupsTotal.WithLabelValues("archive", metrics.Result(err)).Inc()
		if err != nil {
			s.logger.Error("archive backup failed", zap.String("user_id", u.ID), zap.String("sink", sink.Name()), zap.Error(err))
			lastErr = err
			continue
		}
		archived++
	}
	s.logger.Info("backups archived", zap.Int("count", archived), zap.String("sink", sink.Name()))
	return archived, lastErr
}

// Import restores a backup document. Rows are upserted by id in a fixed order,
// users first, so re-importing the same document is harmless. A document that
// cannot be decoded, holds a row without id, or reuses the username of another
// account, writes nothing. The first
// failed write stops the import; rows already written stay.
func (s *Service) Import(ctx context.Context, data []byte) (models.ImportSummary, error) {
	var doc models.Backup
	if err := json.Unmarshal(data, &doc); err != nil {
		metrics.BackupsTotal.WithLabelValues("import", "error").Inc()
		return models.ImportSummary{}, fmt.Errorf("%w: %v", models.ErrImportParse, err)
	}

	steps := importSteps(s.repos, doc)
	for _, st := range steps {
		if err := st.check(); err != nil {
			metrics.BackupsTotal.WithLabelValues("import", "error").Inc()
			return models.ImportSummary{}, fmt.Errorf("%w: %v", models.ErrImportParse, err)
		}
	}
	if err := s.checkUsernames(ctx, doc.Users); err != nil {
		metrics.BackupsTotal.WithLabelValues("import", "error").Inc()
		return models.ImportSummary{}, err
	}

	var summary models.ImportSummary
	for _, st := range steps {
		n, err := st.write(ctx)
		*st.count(&summary) += n
		metrics.ImportedRowsTotal.WithLabelValues(string(st.table)).Add(float64(n))
		if err != nil {
			metrics.BackupsTotal.WithLabelValues("import", "error").Inc()
			s.logger.Error("backup import aborted", zap.String("table", string(st.table)), zap.Int("written", summary.Total()), zap.Error(err))
			return summary, fmt.Errorf("import %s: %w", st.table, err)
		}
	}

	metrics.BackupsTotal.WithLabelValues("import", "ok").Inc()
	s.logger.Info("backup imported", zap.Int("rows", summary.Total()), zap.String("version", doc.Version))
	return summary, nil
}

// checkUsernames rejects user rows whose username already belongs to another
// account, stored or earlier in the document.
func (s *Service) checkUsernames(ctx context.Context, users []models.User) error {
	if len(users) == 0 {
		return nil
	}
	stored, err := s.repos.Users.All(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	owner := make(map[string]string, len(stored)+len(users))
	for _, u := range stored {
		owner[u.Username] = u.ID
	}
	for i, u := range users {
		if id, taken := owner[u.Username]; taken && id != u.ID {
			return fmt.Errorf("%w: users[%d] username %q belongs to another account", models.ErrImportParse, i, u.Username)
		}
		owner[u.Username] = u.ID
	}
	return nil
}

type importStep struct {
	table store.Table
	check func() error
	write func(ctx context.Context) (int, error)
	count func(*models.ImportSummary) *int
}

func importSteps(repos *repository.Set, doc models.Backup) []importStep {
	return []importStep{
		tableStep(store.Users, doc.Users, repos.Users.Save, func(s *models.ImportSummary) *int { return &s.Users }),
		tableStep(store.Breeders, doc.Breeders, repos.Breeders.Save, func(s *models.ImportSummary) *int { return &s.Breeders }),
		tableStep(store.Sheep, doc.Sheep, repos.Sheep.Save, func(s *models.ImportSummary) *int { return &s.Sheep }),
		tableStep(store.Prices, doc.Prices, repos.Prices.Save, func(s *models.ImportSummary) *int { return &s.Prices }),
		tableStep(store.Production, doc.Production, repos.Production.Save, func(s *models.ImportSummary) *int { return &s.Production }),
		tableStep(store.Health, doc.Health, repos.Health.Save, func(s *models.ImportSummary) *int { return &s.Health }),
		tableStep(store.Reproduction, doc.Reproduction, repos.Reproduction.Save, func(s *models.ImportSummary) *int { return &s.Reproduction }),
		tableStep(store.Nutrition, doc.Nutrition, repos.Nutrition.Save, func(s *models.ImportSummary) *int { return &s.Nutrition }),
	}
}

func tableStep[T models.Entity](table store.Table, rows []T, save func(context.Context, T) error, count func(*models.ImportSummary) *int) importStep {
	return importStep{
		table: table,
		check: func() error {
			for i, row := range rows {
				if row.GetID() == "" {
					return fmt.Errorf("%s[%d] has no id", table, i)
				}
			}
			return nil
		},
		write: func(ctx context.Context) (int, error) {
			for i, row := range rows {
				if err := save(ctx, row); err != nil {
					return i, err
				}
			}
			return len(rows), nil
		},
		count: count,
	}
}
