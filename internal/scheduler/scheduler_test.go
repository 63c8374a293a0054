package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/bizdesk/internal/config"
	"github.com/mamadbah2/bizdesk/internal/domain/models"
)

type fakeReporting struct {
	digest models.WeeklyDigest
	err    error
	at     time.Time
}

func (f *fakeReporting) GenerateWeeklyDigest(_ context.Context, now time.Time) (models.WeeklyDigest, error) {
	f.at = now
	return f.digest, f.err
}

type fakeMessenger struct {
	sent []models.OutboundMessageRequest
	err  error
}

func (f *fakeMessenger) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	f.sent = append(f.sent, req)
	return f.err
}

type fakeSheet struct {
	sheetRange string
	rows       [][]interface{}
}

func (f *fakeSheet) AppendRows(_ context.Context, sheetRange string, rows [][]interface{}) error {
	f.sheetRange, f.rows = sheetRange, rows
	return nil
}

func testConfig() config.Config {
	return config.Config{
		Reporting: config.ReportingConfig{CronSchedule: "0 20 * * 5", Timezone: "UTC"},
		WhatsApp:  config.WhatsAppConfig{RecipientID: "224600"},
		Sheets:    config.SheetsConfig{DigestRange: "Digest!A:G"},
	}
}

func digest() models.WeeklyDigest {
	return models.WeeklyDigest{
		Start:   time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Workers: []models.WorkerDigest{{WorkerName: "Ali", DaysCount: 5}},
	}
}

func TestRunWeeklyDigest_AllSinks(t *testing.T) {
	report := &fakeReporting{digest: digest()}
	messenger := &fakeMessenger{}
	sheet := &fakeSheet{}

	s, err := NewScheduler(testConfig(), report, messenger, sheet, nil)
	require.NoError(t, err)
	now := time.Date(2024, 5, 31, 20, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.RunWeeklyDigest(context.Background()))

	assert.Equal(t, now, report.at)
	require.Len(t, messenger.sent, 1)
	assert.Equal(t, "224600", messenger.sent[0].To)
	assert.Contains(t, messenger.sent[0].Message, "Ali")
	assert.Equal(t, "Digest!A:G", sheet.sheetRange)
	assert.Len(t, sheet.rows, 1)
}

func TestRunWeeklyDigest_SinkFailureDoesNotStopOthers(t *testing.T) {
	messenger := &fakeMessenger{err: errors.New("meta down")}
	sheet := &fakeSheet{}

	s, err := NewScheduler(testConfig(), &fakeReporting{digest: digest()}, messenger, sheet, nil)
	require.NoError(t, err)

	err = s.RunWeeklyDigest(context.Background())
	assert.ErrorContains(t, err, "meta down")
	assert.Len(t, sheet.rows, 1)
}

func TestRunWeeklyDigest_NoSinks(t *testing.T) {
	s, err := NewScheduler(testConfig(), &fakeReporting{digest: digest()}, nil, nil, nil)
	require.NoError(t, err)
	assert.NoError(t, s.RunWeeklyDigest(context.Background()))
}

func TestRunWeeklyDigest_GenerateError(t *testing.T) {
	messenger := &fakeMessenger{}
	s, err := NewScheduler(testConfig(), &fakeReporting{err: errors.New("db")}, messenger, nil, nil)
	require.NoError(t, err)

	assert.Error(t, s.RunWeeklyDigest(context.Background()))
	assert.Empty(t, messenger.sent)
}

func TestStart_InvalidSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Reporting.CronSchedule = "every friday"
	s, err := NewScheduler(cfg, &fakeReporting{}, nil, nil, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s, err := NewScheduler(testConfig(), &fakeReporting{}, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)
	s.Stop()
}

func TestNewScheduler_InvalidTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Reporting.Timezone = "Mars/Olympus"
	_, err := NewScheduler(cfg, &fakeReporting{}, nil, nil, nil)
	assert.Error(t, err)
}
