package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahim112008/ovinmanager/internal/config"
	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/repository/archive"
)

type fakeArchiver struct {
	sinks []archive.Sink
}

func (f *fakeArchiver) ArchiveAll(_ context.Context, sink archive.Sink) (int, error) {
	f.sinks = append(f.sinks, sink)
	return 2, nil
}

type fakeReporter struct {
	text string
	err  error
}

func (f fakeReporter) GenerateWeeklyReport(context.Context) (string, error) { return f.text, f.err }

type fakeMessenger struct {
	sent []models.OutboundMessageRequest
}

func (f *fakeMessenger) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	f.sent = append(f.sent, req)
	return nil
}

func testConfig() config.Config {
	return config.Config{
		WhatsApp:  config.WhatsAppConfig{ReportRecipient: "213555"},
		Backup:    config.BackupConfig{CronSchedule: "0 2 * * *"},
		Reporting: config.ReportingConfig{CronSchedule: "0 20 * * 0", Timezone: "Africa/Algiers"},
	}
}

func TestRunWeeklyReportSends(t *testing.T) {
	m := &fakeMessenger{}
	s, err := NewScheduler(testConfig(), &fakeArchiver{}, nil, fakeReporter{text: "Rapport"}, m, nil)
	require.NoError(t, err)

	s.RunWeeklyReport()
	require.Len(t, m.sent, 1)
	assert.Equal(t, "213555", m.sent[0].To)
	assert.Equal(t, "Rapport", m.sent[0].Message)
}

func TestRunWeeklyReportSkips(t *testing.T) {
	m := &fakeMessenger{}
	s, err := NewScheduler(testConfig(), &fakeArchiver{}, nil, fakeReporter{err: errors.New("boom")}, m, nil)
	require.NoError(t, err)
	s.RunWeeklyReport()

	cfg := testConfig()
	cfg.WhatsApp.ReportRecipient = ""
	s, err = NewScheduler(cfg, &fakeArchiver{}, nil, fakeReporter{text: "Rapport"}, m, nil)
	require.NoError(t, err)
	s.RunWeeklyReport()

	assert.Empty(t, m.sent)
}

func TestRunArchiveUsesSink(t *testing.T) {
	a := &fakeArchiver{}
	sink, err := archive.NewDirSink(t.TempDir())
	require.NoError(t, err)
	s, err := NewScheduler(testConfig(), a, sink, fakeReporter{}, nil, nil)
	require.NoError(t, err)

	s.RunArchive()
	require.Len(t, a.sinks, 1)
	assert.Equal(t, sink.Name(), a.sinks[0].Name())
}

func TestStartRejectsBadSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Reporting.CronSchedule = "every sunday"
	s, err := NewScheduler(cfg, &fakeArchiver{}, nil, fakeReporter{}, nil, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())
}

func TestNewSchedulerRejectsUnknownTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Reporting.Timezone = "Mars/Olympus"
	_, err := NewScheduler(cfg, &fakeArchiver{}, nil, fakeReporter{}, nil, nil)
	assert.Error(t, err)
}
