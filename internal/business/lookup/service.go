package lookup

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/weiwei-tsao/tgchecker/pkg/model"
	"github.com/weiwei-tsao/tgchecker/pkg/tgchecker"
	"github.com/weiwei-tsao/tgchecker/pkg/util"
)

// ErrHistoryDisabled is returned by history queries when no store is configured.
var ErrHistoryDisabled = errors.New("check history is disabled")

// Checker is the part of tgchecker.Client the service needs.
type Checker interface {
	Check(ctx context.Context, numbers []string) (model.CheckResult, error)
	IsConfigured() bool
}

// HistoryStore persists check records and the latest status per number.
type HistoryStore interface {
	SaveCheck(ctx context.Context, rec model.CheckRecord) error
	UpsertLatest(ctx context.Context, statuses []model.NumberStatus) error
	Latest(ctx context.Context, n model.PhoneNumber) (model.NumberStatus, error)
	ListRecent(ctx context.Context, limit int) ([]model.CheckRecord, error)
}

// Service runs checks and annotates them for API and CLI callers.
type Service struct {
	checker Checker
	history HistoryStore
	now     func() time.Time
	newID   func() string
}

// NewService wires a checker with an optional history store (nil disables history).
func NewService(checker Checker, history HistoryStore) *Service {
	return &Service{
		checker: checker,
		history: history,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// Configured reports whether the underlying checker has an API key.
func (s *Service) Configured() bool { return s.checker.IsConfigured() }

// HistoryEnabled reports whether checks are recorded.
func (s *Service) HistoryEnabled() bool { return s.history != nil }

// Check runs one batch request. History failures are logged and never fail the check.
func (s *Service) Check(ctx context.Context, numbers []string) (model.CheckReport, error) {
	result, err := s.checker.Check(ctx, numbers)
	if err != nil {
		return model.CheckReport{}, err
	}
	batch, err := tgchecker.BuildBatch(numbers)
	if err != nil {
		return model.CheckReport{}, err
	}

	report := model.CheckReport{
		ID:        s.newID(),
		Result:    result,
		CheckedAt: s.now(),
	}
	seen := make(map[model.PhoneNumber]bool, len(batch))
	for _, n := range batch {
		if seen[n] {
			continue
		}
		seen[n] = true
		status, _ := result.Lookup(n)
		report.Numbers = append(report.Numbers, model.NumberStatus{
			Number:    n,
			Status:    status,
			Region:    util.RegionOf(n),
			CheckedAt: report.CheckedAt,
			CheckID:   report.ID,
		})
	}

	if s.history != nil {
		s.record(ctx, batch, report)
	}
	return report, nil
}

// CheckNumber checks one number and returns its annotated status.
func (s *Service) CheckNumber(ctx context.Context, number string) (model.NumberStatus, error) {
	report, err := s.Check(ctx, []string{number})
	if err != nil {
		return model.NumberStatus{}, err
	}
	ns := report.Numbers[0]
	if ns.Status == "" {
		return model.NumberStatus{}, &tgchecker.NotFoundError{Number: string(ns.Number)}
	}
	return ns, nil
}

// Latest returns the last stored status of number.
func (s *Service) Latest(ctx context.Context, number string) (model.NumberStatus, error) {
	if s.history == nil {
		return model.NumberStatus{}, ErrHistoryDisabled
	}
	n, err := tgchecker.Clean(number)
	if err != nil {
		return model.NumberStatus{}, err
	}
	return s.history.Latest(ctx, n)
}

// Recent lists the newest check records.
func (s *Service) Recent(ctx context.Context, limit int) ([]model.CheckRecord, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.ListRecent(ctx, limit)
}

func (s *Service) record(ctx context.Context, batch model.NumberBatch, report model.CheckReport) {
	rec := model.CheckRecord{
		ID:          report.ID,
		BatchHash:   util.HashBatch(batch),
		Numbers:     report.Numbers,
		Status:      report.Result.Status,
		ErrorsRaw:   report.Result.Errors.String(),
		ErrorCount:  report.Result.Errors.Count(),
		TimeTaken:   report.Result.TimeTaken,
		RequestedAt: report.CheckedAt,
	}
	if err := s.history.SaveCheck(ctx, rec); err != nil {
		log.Printf("save check %s: %v", rec.ID, err)
		return
	}

	var evaluated []model.NumberStatus
	for _, ns := range report.Numbers {
		if ns.Status != "" {
			evaluated = append(evaluated, ns)
		}
	}
	if len(evaluated) == 0 {
		return
	}
	if err := s.history.UpsertLatest(ctx, evaluated); err != nil {
		log.Printf("update latest statuses for check %s: %v", rec.ID, err)
	}
}
