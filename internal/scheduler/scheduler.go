package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rahim112008/ovinmanager/internal/config"
	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/repository/archive"
)

const (
	archiveTimeout = 10 * time.Minute
	reportTimeout  = 2 * time.Minute
)

// Archiver writes every account's backup into a sink.
type Archiver interface {
	ArchiveAll(ctx context.Context, sink archive.Sink) (int, error)
}

// Reporter builds the weekly report text.
type Reporter interface {
	GenerateWeeklyReport(ctx context.Context) (string, error)
}

// Messenger delivers the weekly report.
type Messenger interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	archiver  Archiver
	sink      archive.Sink
	reporter  Reporter
	messenger Messenger
	cfg       config.Config
	logger    *zap.Logger
}

// NewScheduler creates a new scheduler instance. A nil sink skips the archive
// job; a nil messenger or an empty recipient keeps the report unsent.
func NewScheduler(cfg config.Config, archiver Archiver, sink archive.Sink, reporter Reporter, messenger Messenger, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Reporting.Timezone, err)
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		archiver:  archiver,
		sink:      sink,
		reporter:  reporter,
		messenger: messenger,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")

	if s.sink != nil {
		if _, err := s.cron.AddFunc(s.cfg.Backup.CronSchedule, s.RunArchive); err != nil {
			return fmt.Errorf("schedule backup archive: %w", err)
		}
		s.logger.Info("backup archive scheduled", zap.String("cron", s.cfg.Backup.CronSchedule), zap.String("sink", s.sink.Name()))
	} else {
		s.logger.Warn("no backup sink configured, nightly archive disabled")
	}

	if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.RunWeeklyReport); err != nil {
		return fmt.Errorf("schedule weekly report: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// RunArchive writes the backup of every account into the sink.
func (s *Scheduler) RunArchive() {
	if s.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()

	n, err := s.archiver.ArchiveAll(ctx, s.sink)
	if err != nil {
		s.logger.Error("backup archive incomplete", zap.Int("archived", n), zap.Error(err))
		return
	}
	s.logger.Info("backup archive done", zap.Int("archived", n))
}

// RunWeeklyReport builds the report and sends it to the configured recipient.
func (s *Scheduler) RunWeeklyReport() {
	s.logger.Info("generating weekly report")
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	report, err := s.reporter.GenerateWeeklyReport(ctx)
	if err != nil {
		s.logger.Error("failed to generate weekly report", zap.Error(err))
		return
	}
	if report == "" {
		s.logger.Info("no accounts, weekly report skipped")
		return
	}
	if s.messenger == nil || s.cfg.WhatsApp.ReportRecipient == "" {
		s.logger.Debug("no report recipient configured")
		return
	}

	req := models.OutboundMessageRequest{
		To:      s.cfg.WhatsApp.ReportRecipient,
		Message: report,
	}

	if err := s.messenger.SendOutbound(ctx, req); err != nil {
		s.logger.Error("failed to send weekly report", zap.Error(err))
	} else {
		s.logger.Info("weekly report sent successfully")
	}
}
