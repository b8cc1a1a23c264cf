package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"financas/internal/core"
	"financas/internal/log"
)

// ReportService aggregates incomes and expenses. Every call scans the
// matching documents in full.
type ReportService struct {
	entries *EntryService
	logger  *log.Logger
}

func NewReportService(entries *EntryService, logger *log.Logger) *ReportService {
	if logger == nil {
		logger = log.Discard()
	}
	return &ReportService{entries: entries, logger: logger.WithComponent(log.ComponentReport)}
}

// fetchBoth lists both collections concurrently. A failure of either fails
// the call; the other fetch is left to finish on the caller's context.
func (s *ReportService) fetchBoth(ctx context.Context, lf core.ListFilter) (incomes, expenses []core.Document, err error) {
	var g errgroup.Group
	g.Go(func() error {
		var err error
		incomes, err = s.entries.List(ctx, core.Incomes, lf)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.entries.List(ctx, core.Expenses, lf)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return incomes, expenses, nil
}

// ComputeTotals sums every income and every expense on record.
func (s *ReportService) ComputeTotals(ctx context.Context) (core.Totals, error) {
	incomes, expenses, err := s.fetchBoth(ctx, core.ListFilter{})
	if err != nil {
		return core.Totals{}, err
	}

	totalIncome, err := core.SumAmounts(core.FieldsOf(incomes))
	if err != nil {
		return core.Totals{}, fmt.Errorf("sum incomes: %w", err)
	}
	totalExpense, err := core.SumAmounts(core.FieldsOf(expenses))
	if err != nil {
		return core.Totals{}, fmt.Errorf("sum expenses: %w", err)
	}

	log.FromContextOr(ctx, s.logger).WithComponent(log.ComponentReport).DebugContext(ctx, "Totals computed",
		log.FieldOperation, log.OpTotals,
		log.FieldCount, len(incomes)+len(expenses))
	return core.Totals{TotalIncome: totalIncome, TotalExpense: totalExpense}, nil
}

// GenerateMonthlyReport lists the entries dated from year-month-01 through
// year-month-31 and sums them. Entries are returned without their ids.
func (s *ReportService) GenerateMonthlyReport(ctx context.Context, year, month string) (core.MonthlyReport, error) {
	from, to, err := core.MonthRange(year, month)
	if err != nil {
		return core.MonthlyReport{}, err
	}

	incomes, expenses, err := s.fetchBoth(ctx, core.ListFilter{DateFrom: from, DateTo: to})
	if err != nil {
		return core.MonthlyReport{}, err
	}

	report := core.MonthlyReport{
		Incomes:  core.FieldsOf(incomes),
		Expenses: core.FieldsOf(expenses),
	}
	if report.TotalIncome, err = core.SumAmounts(report.Incomes); err != nil {
		return core.MonthlyReport{}, fmt.Errorf("sum incomes: %w", err)
	}
	if report.TotalExpenses, err = core.SumAmounts(report.Expenses); err != nil {
		return core.MonthlyReport{}, fmt.Errorf("sum expenses: %w", err)
	}

	log.FromContextOr(ctx, s.logger).WithComponent(log.ComponentReport).DebugContext(ctx, "Monthly report generated",
		log.FieldOperation, log.OpMonthly,
		log.FieldYear, year,
		log.FieldMonth, month,
		log.FieldCount, len(report.Incomes)+len(report.Expenses))
	return report, nil
}
