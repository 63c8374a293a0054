package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/query"
)

// DigestPeriod is the span covered by a weekly digest.
const DigestPeriod = 7 * 24 * time.Hour

// LogDigester groups worksheet logs per worker.
type LogDigester interface {
	DigestByWorker(ctx context.Context, start, end time.Time) ([]models.WorkerDigest, error)
}

// Service builds the periodic worksheet summaries sent to managers.
type Service struct {
	logs     LogDigester
	location *time.Location
	logger   *zap.Logger
}

// NewService wires a new reporting service instance. Calendar days are
// taken in location.
func NewService(logs LogDigester, location *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &Service{logs: logs, location: location, logger: logger}
}

// GenerateWeeklyDigest summarizes the seven calendar days ending with the
// day of now, per worker and overall.
func (s *Service) GenerateWeeklyDigest(ctx context.Context, now time.Time) (models.WeeklyDigest, error) {
	local := now.In(s.location)
	end := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	start := end.Add(-DigestPeriod)

	workers, err := s.logs.DigestByWorker(ctx, start, end)
	if err != nil {
		return models.WeeklyDigest{}, fmt.Errorf("load worker digest: %w", err)
	}

	digest := models.WeeklyDigest{Start: start, End: end, Workers: workers}
	for _, w := range workers {
		digest.Totals.PaymentsSum += w.PaymentsSum
		digest.Totals.DaysCount += w.DaysCount
		digest.Totals.OTVSum += w.OTVSum
	}

	s.logger.Debug("weekly digest generated",
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("workers", len(workers)))
	return digest, nil
}

// FormatDigest renders the digest as a plain text message.
func FormatDigest(d models.WeeklyDigest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weekly worksheet (%s - %s)\n", d.Start.Format(query.DateLayout), lastDay(d).Format(query.DateLayout))

	if len(d.Workers) == 0 {
		b.WriteString("No logs recorded this week.")
		return b.String()
	}

	for _, w := range d.Workers {
		fmt.Fprintf(&b, "- %s: %d days, %d absent, OTV %.2f h, paid %.2f\n",
			workerLabel(w), w.DaysCount, w.AbsentCount, w.OTVSum, w.PaymentsSum)
	}
	fmt.Fprintf(&b, "Total: %d days, OTV %.2f h, paid %.2f", d.Totals.DaysCount, d.Totals.OTVSum, d.Totals.PaymentsSum)
	return b.String()
}

// DigestRows lays the digest out as spreadsheet rows, one per worker.
func DigestRows(d models.WeeklyDigest) [][]interface{} {
	rows := make([][]interface{}, 0, len(d.Workers))
	for _, w := range d.Workers {
		rows = append(rows, []interface{}{
			d.Start.Format(query.DateLayout),
			lastDay(d).Format(query.DateLayout),
			workerLabel(w),
			w.DaysCount,
			w.AbsentCount,
			w.OTVSum,
			w.PaymentsSum,
		})
	}
	return rows
}

func lastDay(d models.WeeklyDigest) time.Time {
	return d.End.AddDate(0, 0, -1)
}

func workerLabel(w models.WorkerDigest) string {
	if w.WorkerName != "" {
		return w.WorkerName
	}
	return "unknown worker " + w.Worker.Hex()
}
