// Package seed generates synthetic freight orders for demos and load tests.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"freightledger/internal/model"
	"freightledger/internal/repository"
	"freightledger/pkg/money"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	provinces = []string{"京", "沪", "粤", "苏", "浙", "鲁", "豫", "川", "湘", "鄂"}
	surnames  = []string{
		"张", "王", "李", "赵", "刘", "陈", "杨", "黄", "周", "吴",
		"徐", "孙", "马", "朱", "胡", "林", "郭", "何", "高", "罗",
	}
	givenNames = []string{
		"伟", "芳", "娜", "敏", "静", "丽", "强", "磊", "军", "洋", "勇",
		"艳", "杰", "娟", "涛", "明", "超", "秀英", "霞", "平", "刚", "桂英",
	}
)

// Generator produces plausible orders. Rand drives every random choice, so a
// seeded source yields a reproducible data set.
type Generator struct {
	Rand *rand.Rand
	Now  time.Time
	// AllowSameCity permits origin == destination.
	AllowSameCity bool
}

func NewGenerator(seed uint64, now time.Time, allowSameCity bool) *Generator {
	return &Generator{
		Rand:          rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		Now:           now,
		AllowSameCity: allowSameCity,
	}
}

// Order returns one order without an id.
func (g *Generator) Order() model.Order {
	weight := g.between(100, 5000)
	unitPrice := decimal.New(int64(g.between(100, 1100)), -2)
	driverWage := decimal.NewFromInt(int64(g.between(300, 1500)))
	loadingFee := decimal.NewFromInt(int64(g.between(100, 800)))
	expected := money.Add(money.Add(driverWage, loadingFee), decimal.NewFromInt(int64(g.between(200, 1000))))
	actual := money.Add(expected, decimal.NewFromInt(int64(g.between(-200, 300))))
	profit := money.Profit(decimal.NewFromInt(int64(weight)), unitPrice, actual)

	createdAt := g.instant(g.Now.AddDate(-1, 0, 0), g.Now)
	origin := pick(g, model.Cities)

	o := model.Order{
		Category:        pick(g, model.Categories),
		Weight:          weight,
		UnitPrice:       unitPrice,
		PlateNumber:     g.plate(),
		Driver:          pick(g, surnames) + pick(g, givenNames),
		Phone:           g.phone(),
		CustomerPhone:   g.phone(),
		Origin:          origin,
		Destination:     g.destination(origin),
		PaymentStatus:   model.PaymentStatusPending,
		PaymentMethod:   pick(g, model.PaymentMethods),
		DriverWage:      decimal.NewNullDecimal(driverWage),
		LoadingFee:      decimal.NewNullDecimal(loadingFee),
		ExpectedExpense: decimal.NewNullDecimal(expected),
		ActualExpense:   decimal.NewNullDecimal(actual),
		DailyProfit:     profit,
		CreatedAt:       createdAt,
		UpdatedAt:       g.instant(createdAt, g.Now),
	}

	// 70% of orders have been paid
	if g.Rand.Float64() < 0.7 {
		paid := g.instant(createdAt, g.Now)
		o.PaymentTime = &paid
		o.PaymentStatus = pick(g, []string{model.PaymentStatusVerified, model.PaymentStatusCollected})
	}
	return o
}

// Populate inserts n generated orders into repo.
func Populate(ctx context.Context, repo repository.OrderRepository, g *Generator, n int) error {
	for i := range n {
		o := g.Order()
		if err := repo.Create(ctx, &o); err != nil {
			return fmt.Errorf("seed order %d: %w", i+1, err)
		}
	}
	zap.L().Info("seeded orders", zap.Int("count", n), zap.Bool("allow_same_city", g.AllowSameCity))
	return nil
}

func (g *Generator) destination(origin string) string {
	if g.AllowSameCity {
		return pick(g, model.Cities)
	}
	others := make([]string, 0, len(model.Cities)-1)
	for _, c := range model.Cities {
		if c != origin {
			others = append(others, c)
		}
	}
	return pick(g, others)
}

func (g *Generator) plate() string {
	letter := rune('A' + g.Rand.IntN(26))
	return fmt.Sprintf("%s%c%d", pick(g, provinces), letter, g.between(10000, 99999))
}

func (g *Generator) phone() string {
	return fmt.Sprintf("1%d%d", g.between(3, 9), g.between(100000000, 999999999))
}

// between returns a uniform int in [lo, hi]
func (g *Generator) between(lo, hi int) int {
	return lo + g.Rand.IntN(hi-lo+1)
}

// instant returns a uniform time in [from, to]
func (g *Generator) instant(from, to time.Time) time.Time {
	span := to.Sub(from)
	if span <= 0 {
		return from
	}
	return from.Add(time.Duration(g.Rand.Int64N(int64(span) + 1)))
}

func pick[T any](g *Generator, items []T) T {
	return items[g.Rand.IntN(len(items))]
}
