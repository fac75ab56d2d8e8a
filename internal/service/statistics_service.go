package service

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"time"

	"freightledger/internal/clock"
	"freightledger/internal/model"
	"freightledger/internal/repository"
	"freightledger/pkg/money"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const week = 7 * 24 * time.Hour

type StatisticsService interface {
	// GetStatistics aggregates the store as seen at at; a zero at means now.
	GetStatistics(ctx context.Context, at time.Time) (model.Statistics, error)
	GetChart(ctx context.Context, kind model.ChartKind, at time.Time) ([]model.ChartPoint, error)
	AllCharts(ctx context.Context, at time.Time) (model.ChartSet, error)
}

type statisticsService struct {
	repo  repository.OrderRepository
	clock clock.Clock
	loc   *time.Location
}

// NewStatisticsService computes every result from a fresh snapshot; nothing is cached.
// loc defines calendar days and months.
func NewStatisticsService(repo repository.OrderRepository, clk clock.Clock, loc *time.Location) StatisticsService {
	if loc == nil {
		loc = time.Local
	}
	return &statisticsService{repo: repo, clock: clk, loc: loc}
}

func (s *statisticsService) GetStatistics(ctx context.Context, at time.Time) (model.Statistics, error) {
	orders, err := s.repo.Snapshot(ctx)
	if err != nil {
		return model.Statistics{}, err
	}
	return Aggregate(orders, s.reference(at)), nil
}

func (s *statisticsService) GetChart(ctx context.Context, kind model.ChartKind, at time.Time) ([]model.ChartPoint, error) {
	if kind.Len() == 0 {
		return nil, fmt.Errorf("%w: unknown chart kind %q", model.ErrValidation, kind)
	}
	orders, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Collect(Series(kind, orders, s.reference(at))), nil
}

// AllCharts builds the three series concurrently over one snapshot.
func (s *statisticsService) AllCharts(ctx context.Context, at time.Time) (model.ChartSet, error) {
	orders, err := s.repo.Snapshot(ctx)
	if err != nil {
		return model.ChartSet{}, err
	}
	now := s.reference(at)

	var set model.ChartSet
	g, gctx := errgroup.WithContext(ctx)
	for kind, dst := range map[model.ChartKind]*[]model.ChartPoint{
		model.ChartDaily:   &set.Daily,
		model.ChartWeekly:  &set.Weekly,
		model.ChartMonthly: &set.Monthly,
	} {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			*dst = slices.Collect(Series(kind, orders, now))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.ChartSet{}, err
	}
	return set, nil
}

func (s *statisticsService) reference(at time.Time) time.Time {
	if at.IsZero() {
		at = s.clock.Now()
	}
	return at.In(s.loc)
}

// Aggregate computes the windowed profit sums and status counts. now carries
// the location that defines today, the month and the year.
func Aggregate(orders []model.Order, now time.Time) model.Statistics {
	today := midnight(now)
	weekStart := now.Add(-week)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())

	var daily, weekly, monthly, yearly []decimal.Decimal
	stats := model.Statistics{TotalOrders: len(orders), ReferenceTime: now}
	for i := range orders {
		o := &orders[i]
		if !o.CreatedAt.Before(today) {
			daily = append(daily, o.DailyProfit)
		}
		if !o.CreatedAt.Before(weekStart) {
			weekly = append(weekly, o.DailyProfit)
		}
		if !o.CreatedAt.Before(monthStart) {
			monthly = append(monthly, o.DailyProfit)
		}
		if !o.CreatedAt.Before(yearStart) {
			yearly = append(yearly, o.DailyProfit)
		}

		switch o.PaymentStatus {
		case model.PaymentStatusCollected:
			stats.CompletedOrders++
		case model.PaymentStatusPending:
			stats.PendingOrders++
		}
	}

	stats.DailyProfit = money.Sum(daily)
	stats.WeeklyProfit = money.Sum(weekly)
	stats.MonthlyProfit = money.Sum(monthly)
	stats.YearlyProfit = money.Sum(yearly)
	return stats
}

type bucket struct {
	label      string
	start, end time.Time // [start, end)
}

// Series yields the chart points of kind oldest first. The sequence is
// recomputed from orders on every iteration.
func Series(kind model.ChartKind, orders []model.Order, now time.Time) iter.Seq[model.ChartPoint] {
	return func(yield func(model.ChartPoint) bool) {
		for b := range buckets(kind, now) {
			var profits []decimal.Decimal
			for i := range orders {
				c := orders[i].CreatedAt
				if !c.Before(b.start) && c.Before(b.end) {
					profits = append(profits, orders[i].DailyProfit)
				}
			}
			point := model.ChartPoint{
				Label:  b.label,
				Start:  b.start,
				Profit: money.Sum(profits),
				Orders: len(profits),
			}
			if !yield(point) {
				return
			}
		}
	}
}

func buckets(kind model.ChartKind, now time.Time) iter.Seq[bucket] {
	return func(yield func(bucket) bool) {
		n := kind.Len()
		for i := n - 1; i >= 0; i-- {
			var b bucket
			switch kind {
			case model.ChartDaily:
				// calendar dates in now's location; AddDate keeps DST days whole
				day := midnight(now).AddDate(0, 0, -i)
				b = bucket{label: day.Format(time.DateOnly), start: day, end: day.AddDate(0, 0, 1)}
			case model.ChartWeekly:
				end := now.Add(-time.Duration(i) * week)
				b = bucket{label: fmt.Sprintf("week %d", n-i), start: end.Add(-week), end: end}
			case model.ChartMonthly:
				first := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())
				b = bucket{label: first.Format("2006-01"), start: first, end: first.AddDate(0, 1, 0)}
			}
			if !yield(b) {
				return
			}
		}
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
