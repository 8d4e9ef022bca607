package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "fluxo/internal/errors"
	"fluxo/internal/models"
)

var reportTracer = otel.Tracer("services/report")

// incomeLineName labels the direct income line of the category report.
const incomeLineName = "Entradas Diretas"

// ReportOptions selects between the display modes of the reports.
type ReportOptions struct {
	// IncludePrincipalInSystemTotal adds the Principal balance to the PDF
	// system total alongside every other box.
	IncludePrincipalInSystemTotal bool
	// AbsoluteOutflows reports outflow totals as positive numbers.
	AbsoluteOutflows bool
	// TargetsGroup restricts percentage targets to one auxiliary group.
	// Empty uses every auxiliary record.
	TargetsGroup string
}

// reportService handles read-only reporting.
type reportService struct {
	db          *gorm.DB
	principalID string
	opts        ReportOptions
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB, principalID string, opts ReportOptions) ReportServicer {
	return &reportService{db: db, principalID: principalID, opts: opts}
}

type summaryRow struct {
	Inflows  decimal.Decimal
	Outflows decimal.Decimal
	Net      decimal.Decimal
}

// Summary totals every positive and negative movement.
func (s *reportService) Summary(ctx context.Context) (*Summary, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.Summary")
	defer span.End()

	var row summaryRow
	err := s.db.WithContext(ctx).Model(&models.Movement{}).Select(
		"COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0) AS inflows, " +
			"COALESCE(SUM(CASE WHEN amount < 0 THEN amount ELSE 0 END), 0) AS outflows, " +
			"COALESCE(SUM(amount), 0) AS net",
	).Scan(&row).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	outflows := row.Outflows.Round(2)
	if s.opts.AbsoluteOutflows {
		outflows = outflows.Abs()
	}
	return &Summary{
		TotalInflows:  row.Inflows.Round(2),
		TotalOutflows: outflows,
		NetBalance:    row.Net.Round(2),
	}, nil
}

type categoryRow struct {
	Category string
	Total    decimal.Decimal
}

// CategoryReport groups expenses by category and totals loans, opening
// balances and direct income. Percentage targets come from auxiliary records.
func (s *reportService) CategoryReport(ctx context.Context) (*CategoryReport, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.CategoryReport")
	defer span.End()

	db := s.db.WithContext(ctx)

	var expenses []categoryRow
	err := db.Model(&models.Movement{}).
		Select("category, SUM(amount) AS total").
		Where("amount < 0").
		Where("category NOT IN ?", []string{
			models.CategoryLoans,
			models.CategoryOpening,
			models.CategoryIncome,
			models.CategoryCarriedForward,
		}).
		Group("category").
		Order("total ASC").
		Scan(&expenses).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	report := &CategoryReport{
		Expenses:          make([]CategoryTotal, 0, len(expenses)),
		TotalExpenses:     decimal.Zero,
		Loans:             []CategoryTotal{},
		Opening:           []CategoryTotal{},
		Income:            []CategoryTotal{},
		PercentageTargets: map[string]decimal.Decimal{},
	}
	for _, row := range expenses {
		line := newCategoryTotal(row.Category, row.Total)
		report.Expenses = append(report.Expenses, line)
		report.TotalExpenses = report.TotalExpenses.Add(line.Absolute)
	}

	if report.Loans, report.TotalLoans, err = s.categoryLine(db, models.CategoryLoans, models.CategoryLoans); err != nil {
		return nil, err
	}
	if report.Opening, report.TotalOpening, err = s.categoryLine(db, models.CategoryOpening, models.CategoryOpening); err != nil {
		return nil, err
	}
	if report.Income, report.TotalIncome, err = s.categoryLine(db, models.CategoryIncome, incomeLineName); err != nil {
		return nil, err
	}

	var targets []models.Auxiliary
	q := db.Order("created_at ASC")
	if s.opts.TargetsGroup != "" {
		q = q.Where("group_name = ?", s.opts.TargetsGroup)
	}
	if err := q.Find(&targets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, t := range targets {
		report.PercentageTargets[t.Key] = t.Value
	}

	return report, nil
}

// categoryLine totals one category into a single labelled line. Categories
// without movements yield no line and a zero total.
func (s *reportService) categoryLine(db *gorm.DB, category, label string) ([]CategoryTotal, decimal.Decimal, error) {
	var count int64
	if err := db.Model(&models.Movement{}).Where("category = ?", category).Count(&count).Error; err != nil {
		return nil, decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return []CategoryTotal{}, decimal.Zero, nil
	}

	total, err := sumAmounts(db.Where("category = ?", category))
	if err != nil {
		return nil, decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return []CategoryTotal{newCategoryTotal(label, total)}, total, nil
}

func newCategoryTotal(name string, total decimal.Decimal) CategoryTotal {
	total = total.Round(2)
	return CategoryTotal{Name: name, Amount: total, Absolute: total.Abs()}
}

// PDFData gathers the PDF export: secondary box movements grouped by box,
// Principal movements grouped by category, and the system total.
func (s *reportService) PDFData(ctx context.Context) (*PDFReport, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.PDFData")
	defer span.End()

	var (
		boxes     []models.Box
		movements []models.Movement
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(gctx).Order("name ASC").Find(&boxes).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Preload("Box").
			Order("date ASC").
			Order("created_at ASC").
			Find(&movements).Error
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	report := &PDFReport{
		GeneratedAt:     time.Now(),
		SystemTotal:     decimal.Zero,
		AbsoluteAmounts: s.opts.AbsoluteOutflows,
	}

	for _, b := range boxes {
		if b.ID == s.principalID && !s.opts.IncludePrincipalInSystemTotal {
			continue
		}
		report.SystemTotal = report.SystemTotal.Add(b.Balance)
	}

	byBox := map[string]int{}
	byCategory := map[string]int{}
	for _, m := range movements {
		line := PDFLine{
			Date:        m.Date,
			Description: m.Description,
			Category:    m.Category,
			Kind:        m.Kind,
			Amount:      m.Amount,
		}

		if m.BoxID == s.principalID {
			idx, ok := byCategory[m.Category]
			if !ok {
				idx = len(report.PrincipalCategories)
				byCategory[m.Category] = idx
				report.PrincipalCategories = append(report.PrincipalCategories, PDFSection{Title: m.Category, Total: decimal.Zero})
			}
			section := &report.PrincipalCategories[idx]
			section.Lines = append(section.Lines, line)
			section.Total = section.Total.Add(m.Amount)
			continue
		}

		name := m.BoxID
		if m.Box != nil {
			name = m.Box.Name
		}
		idx, ok := byBox[m.BoxID]
		if !ok {
			idx = len(report.SecondaryBoxes)
			byBox[m.BoxID] = idx
			report.SecondaryBoxes = append(report.SecondaryBoxes, PDFSection{Title: name, Total: decimal.Zero})
		}
		section := &report.SecondaryBoxes[idx]
		section.Lines = append(section.Lines, line)
		section.Total = section.Total.Add(m.Amount)
	}

	return report, nil
}
