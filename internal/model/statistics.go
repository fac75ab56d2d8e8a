package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Statistics is a point-in-time rollup derived from the live order collection
type Statistics struct {
	DailyProfit     decimal.Decimal `json:"daily_profit"`
	WeeklyProfit    decimal.Decimal `json:"weekly_profit"`
	MonthlyProfit   decimal.Decimal `json:"monthly_profit"`
	YearlyProfit    decimal.Decimal `json:"yearly_profit"`
	TotalOrders     int             `json:"total_orders"`
	CompletedOrders int             `json:"completed_orders"` // collected
	PendingOrders   int             `json:"pending_orders"`
	ReferenceTime   time.Time       `json:"reference_time"`
}

// ChartKind selects the bucketing of a chart series
type ChartKind string

const (
	ChartDaily   ChartKind = "daily"
	ChartWeekly  ChartKind = "weekly"
	ChartMonthly ChartKind = "monthly"
)

// Len is the fixed number of points of the series
func (k ChartKind) Len() int {
	switch k {
	case ChartDaily:
		return 7
	case ChartWeekly:
		return 8
	case ChartMonthly:
		return 12
	}
	return 0
}

func ParseChartKind(s string) (ChartKind, error) {
	k := ChartKind(s)
	if k.Len() == 0 {
		return "", fmt.Errorf("%w: unknown chart kind %q, expected daily, weekly or monthly", ErrValidation, s)
	}
	return k, nil
}

// ChartPoint is one bucket of a chart series; Start is the inclusive lower bound of the bucket
type ChartPoint struct {
	Label  string          `json:"label"`
	Start  time.Time       `json:"start"`
	Profit decimal.Decimal `json:"profit"`
	Orders int             `json:"orders"`
}

// ChartSet bundles the three series computed from a single snapshot
type ChartSet struct {
	Daily   []ChartPoint `json:"daily"`
	Weekly  []ChartPoint `json:"weekly"`
	Monthly []ChartPoint `json:"monthly"`
}
