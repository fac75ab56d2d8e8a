package seed

import (
	"context"
	"testing"
	"time"

	"freightledger/internal/model"
	"freightledger/internal/repository"
	"freightledger/pkg/money"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestGeneratorProducesValidOrders(t *testing.T) {
	g := NewGenerator(42, now, false)
	yearAgo := now.AddDate(-1, 0, 0)

	paid := 0
	for range 500 {
		o := g.Order()

		assert.True(t, model.IsCategory(o.Category))
		assert.True(t, model.IsCity(o.Origin))
		assert.True(t, model.IsCity(o.Destination))
		assert.NotEqual(t, o.Origin, o.Destination)
		assert.True(t, o.PaymentMethod.Valid())

		assert.GreaterOrEqual(t, o.Weight, 100)
		assert.LessOrEqual(t, o.Weight, 5000)
		assert.True(t, o.UnitPrice.GreaterThanOrEqual(decimal.NewFromInt(1)))
		assert.True(t, o.UnitPrice.LessThanOrEqual(decimal.NewFromInt(11)))

		assert.False(t, o.CreatedAt.Before(yearAgo))
		assert.False(t, o.CreatedAt.After(now))
		assert.False(t, o.UpdatedAt.Before(o.CreatedAt))

		expected := money.Profit(decimal.NewFromInt(int64(o.Weight)), o.UnitPrice, o.ActualExpense.Decimal)
		assert.True(t, expected.Equal(o.DailyProfit))

		gap := o.ExpectedExpense.Decimal.Sub(o.DriverWage.Decimal).Sub(o.LoadingFee.Decimal)
		assert.True(t, gap.GreaterThanOrEqual(decimal.NewFromInt(200)) && gap.LessThanOrEqual(decimal.NewFromInt(1000)))
		drift := o.ActualExpense.Decimal.Sub(o.ExpectedExpense.Decimal)
		assert.True(t, drift.GreaterThanOrEqual(decimal.NewFromInt(-200)) && drift.LessThanOrEqual(decimal.NewFromInt(300)))

		assert.Regexp(t, `^[京沪粤苏浙鲁豫川湘鄂][A-Z]\d{5}$`, o.PlateNumber)
		assert.Regexp(t, `^1[3-9]\d{9}$`, o.Phone)

		if o.PaymentTime != nil {
			paid++
			assert.Contains(t, []string{model.PaymentStatusVerified, model.PaymentStatusCollected}, o.PaymentStatus)
			assert.False(t, o.PaymentTime.Before(o.CreatedAt))
		} else {
			assert.Equal(t, model.PaymentStatusPending, o.PaymentStatus)
		}
	}
	assert.InDelta(t, 350, paid, 50)
}

func TestGeneratorAllowSameCity(t *testing.T) {
	g := NewGenerator(7, now, true)
	same := 0
	for range 2000 {
		o := g.Order()
		if o.Origin == o.Destination {
			same++
		}
	}
	assert.Positive(t, same)
}

func TestGeneratorIsReproducible(t *testing.T) {
	a := NewGenerator(99, now, false).Order()
	b := NewGenerator(99, now, false).Order()
	assert.Equal(t, a, b)
}

func TestPopulate(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	defer zap.ReplaceGlobals(zap.New(core))()

	repo := repository.NewMemoryOrderRepository()
	require.NoError(t, Populate(context.Background(), repo, NewGenerator(1, now, false), 25))

	snap, err := repo.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap, 25)

	seeded := logs.FilterMessage("seeded orders").All()
	require.Len(t, seeded, 1)
	assert.Equal(t, int64(25), seeded[0].ContextMap()["count"])
}
