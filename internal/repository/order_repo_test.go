package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"freightledger/internal/database"
	"freightledger/internal/model"
	"freightledger/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

type repoFactory func(t *testing.T) OrderRepository

func backends() map[string]repoFactory {
	return map[string]repoFactory{
		"memory": func(t *testing.T) OrderRepository {
			return NewMemoryOrderRepository()
		},
		"sqlite": func(t *testing.T) OrderRepository {
			dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
			db, err := database.NewConnection("sqlite", dsn)
			require.NoError(t, err)
			t.Cleanup(func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			})
			return NewOrderRepository(db)
		},
	}
}

func sampleOrder(offset time.Duration, driver, plate string) *model.Order {
	created := base.Add(offset)
	return &model.Order{
		Category:      "电子产品",
		Weight:        1200,
		UnitPrice:     decimal.RequireFromString("3.5"),
		PlateNumber:   plate,
		Driver:        driver,
		Origin:        "北京",
		Destination:   "上海",
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: model.PaymentMethodCash,
		DailyProfit:   decimal.NewFromInt(100),
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func firstPage(size int) pagination.Params {
	return pagination.Params{Page: 1, PageSize: size}
}

func TestOrderRepositoryCRUD(t *testing.T) {
	for name, newRepo := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)

			order := sampleOrder(0, "王伟", "京A12345")
			require.NoError(t, repo.Create(ctx, order))
			require.NotEmpty(t, order.ID)

			got, err := repo.FindByID(ctx, order.ID)
			require.NoError(t, err)
			assert.Equal(t, "王伟", got.Driver)
			assert.True(t, got.UnitPrice.Equal(decimal.RequireFromString("3.5")))
			assert.True(t, got.CreatedAt.Equal(base))
			assert.Nil(t, got.PaymentTime)
			assert.False(t, got.ActualExpense.Valid)

			paid := base.Add(time.Hour)
			updated, err := repo.Update(ctx, order.ID, func(o *model.Order) error {
				o.PaymentStatus = model.PaymentStatusCollected
				o.PaymentTime = &paid
				o.ActualExpense = decimal.NewNullDecimal(decimal.NewFromInt(4100))
				o.ID = "hijacked"
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, order.ID, updated.ID)

			got, err = repo.FindByID(ctx, order.ID)
			require.NoError(t, err)
			assert.Equal(t, model.PaymentStatusCollected, got.PaymentStatus)
			require.NotNil(t, got.PaymentTime)
			assert.True(t, got.PaymentTime.Equal(paid))
			assert.True(t, got.ActualExpense.Decimal.Equal(decimal.NewFromInt(4100)))

			require.NoError(t, repo.Delete(ctx, order.ID))
			assert.ErrorIs(t, repo.Delete(ctx, order.ID), model.ErrNotFound)

			_, err = repo.FindByID(ctx, order.ID)
			assert.ErrorIs(t, err, model.ErrNotFound)
		})
	}
}

func TestOrderRepositoryUpdateAbortLeavesOrderUnchanged(t *testing.T) {
	for name, newRepo := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)

			order := sampleOrder(0, "李娜", "沪B54321")
			require.NoError(t, repo.Create(ctx, order))

			boom := errors.New("boom")
			_, err := repo.Update(ctx, order.ID, func(o *model.Order) error {
				o.Driver = "changed"
				return boom
			})
			assert.ErrorIs(t, err, boom)

			got, err := repo.FindByID(ctx, order.ID)
			require.NoError(t, err)
			assert.Equal(t, "李娜", got.Driver)

			_, err = repo.Update(ctx, "missing", func(*model.Order) error { return nil })
			assert.ErrorIs(t, err, model.ErrNotFound)
		})
	}
}

func TestOrderRepositoryListFiltersAndOrdering(t *testing.T) {
	for name, newRepo := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)

			older := sampleOrder(-48*time.Hour, "张强", "粤C11111")
			older.Category = "图书文具"
			middle := sampleOrder(-24*time.Hour, "王伟", "京A12345")
			middle.PaymentStatus = model.PaymentStatusVerified
			newest := sampleOrder(0, "刘洋", "京A99999")
			newest.Destination = "广州"
			for _, o := range []*model.Order{older, middle, newest} {
				require.NoError(t, repo.Create(ctx, o))
			}

			start := base.Add(-30 * time.Hour)
			end := base.Add(-time.Hour)

			tests := []struct {
				name   string
				filter model.OrderFilter
				want   []string
			}{
				{name: "all newest first", filter: model.OrderFilter{}, want: []string{newest.ID, middle.ID, older.ID}},
				{name: "category", filter: model.OrderFilter{Category: "图书文具"}, want: []string{older.ID}},
				{name: "status", filter: model.OrderFilter{PaymentStatus: model.PaymentStatusVerified}, want: []string{middle.ID}},
				{name: "destination", filter: model.OrderFilter{Destination: "广州"}, want: []string{newest.ID}},
				{name: "search plate prefix", filter: model.OrderFilter{Search: "京a"}, want: []string{newest.ID, middle.ID}},
				{name: "search driver", filter: model.OrderFilter{Search: "张"}, want: []string{older.ID}},
				{name: "search wildcard is literal", filter: model.OrderFilter{Search: "%"}, want: []string{}},
				{name: "date range", filter: model.OrderFilter{StartDate: &start, EndDate: &end}, want: []string{middle.ID}},
				{name: "no match", filter: model.OrderFilter{Origin: "昆明"}, want: []string{}},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					items, total, err := repo.List(ctx, tt.filter, firstPage(10))
					require.NoError(t, err)
					assert.Equal(t, int64(len(tt.want)), total)
					ids := make([]string, 0, len(items))
					for _, o := range items {
						ids = append(ids, o.ID)
					}
					assert.Equal(t, tt.want, ids)
				})
			}
		})
	}
}

func TestOrderRepositoryListPaging(t *testing.T) {
	for name, newRepo := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)
			for i := range 25 {
				require.NoError(t, repo.Create(ctx, sampleOrder(time.Duration(i)*time.Minute, "司机", "京A00000")))
			}

			items, total, err := repo.List(ctx, model.OrderFilter{}, pagination.Params{Page: 3, PageSize: 10})
			require.NoError(t, err)
			assert.Equal(t, int64(25), total)
			require.Len(t, items, 5)
			assert.True(t, items[0].CreatedAt.Equal(base.Add(4*time.Minute)))

			items, total, err = repo.List(ctx, model.OrderFilter{}, pagination.Params{Page: 4, PageSize: 10})
			require.NoError(t, err)
			assert.Equal(t, int64(25), total)
			assert.Empty(t, items)
		})
	}
}

func TestOrderRepositorySnapshotIsDetached(t *testing.T) {
	for name, newRepo := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)
			require.NoError(t, repo.Create(ctx, sampleOrder(0, "王伟", "京A12345")))

			snap, err := repo.Snapshot(ctx)
			require.NoError(t, err)
			require.Len(t, snap, 1)
			snap[0].Driver = "mutated"

			again, err := repo.Snapshot(ctx)
			require.NoError(t, err)
			assert.Equal(t, "王伟", again[0].Driver)
		})
	}
}

func TestMemoryOrderRepositoryIDsNeverRewind(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrderRepository()

	first := sampleOrder(0, "a", "p")
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, "ORDER_000001", first.ID)
	require.NoError(t, repo.Delete(ctx, first.ID))

	second := sampleOrder(0, "b", "p")
	require.NoError(t, repo.Create(ctx, second))
	assert.Equal(t, "ORDER_000002", second.ID)
}

func TestMemoryOrderRepositoryHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewMemoryOrderRepository()
	assert.ErrorIs(t, repo.Create(ctx, sampleOrder(0, "a", "p")), context.Canceled)
	_, err := repo.Snapshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOrderRepositoryListHugePage(t *testing.T) {
	for name, newRepo := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)
			for i := range 5 {
				require.NoError(t, repo.Create(ctx, sampleOrder(time.Duration(i)*time.Minute, "司机", "京A00000")))
			}

			for _, page := range []pagination.Params{
				{Page: math.MaxInt64 / 50, PageSize: 100},
				{Page: math.MaxInt, PageSize: 1},
				{Page: 6, PageSize: 1},
			} {
				items, total, err := repo.List(ctx, model.OrderFilter{}, page)
				require.NoError(t, err)
				assert.Equal(t, int64(5), total)
				assert.NotNil(t, items)
				assert.Empty(t, items, "page=%d size=%d", page.Page, page.PageSize)
			}
		})
	}
}

func TestMemoryOrderRepositoryReleasesLocksAfterPanic(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrderRepository()
	existing := sampleOrder(0, "a", "p")
	require.NoError(t, repo.Create(ctx, existing))

	assert.Panics(t, func() {
		// a zero page size bypasses pagination.New and divides by zero mid-scan
		_, _, _ = repo.List(ctx, model.OrderFilter{}, pagination.Params{Page: 1, PageSize: 0})
	})
	assert.Panics(t, func() {
		_, _ = repo.Update(ctx, existing.ID, func(*model.Order) error { panic("boom") })
	})

	done := make(chan error, 1)
	go func() {
		done <- repo.Create(ctx, sampleOrder(time.Minute, "b", "p"))
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("create blocked after a panicking read")
	}
}

func TestOrderRepositoryConcurrentAccess(t *testing.T) {
	const writers = 40

	for name, newRepo := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)

			var (
				wg   sync.WaitGroup
				stop = make(chan struct{})
				mu   sync.Mutex
				ids  = make(map[string]struct{})
				errs = make(chan error, writers*2+4)
			)

			for i := range writers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					token := fmt.Sprintf("c-%d", i)
					order := sampleOrder(time.Duration(i)*time.Second, token, token)
					if err := repo.Create(ctx, order); err != nil {
						errs <- err
						return
					}
					mu.Lock()
					ids[order.ID] = struct{}{}
					mu.Unlock()

					renamed := fmt.Sprintf("u-%d", i)
					if _, err := repo.Update(ctx, order.ID, func(o *model.Order) error {
						o.Driver = renamed
						o.PlateNumber = renamed
						return nil
					}); err != nil {
						errs <- err
					}
				}()
			}

			var readers sync.WaitGroup
			for range 4 {
				readers.Add(1)
				go func() {
					defer readers.Done()
					var seen int
					for {
						select {
						case <-stop:
							return
						default:
						}
						snap, err := repo.Snapshot(ctx)
						if err != nil {
							errs <- err
							return
						}
						if len(snap) < seen {
							errs <- fmt.Errorf("snapshot shrank from %d to %d", seen, len(snap))
							return
						}
						seen = len(snap)
						for _, o := range snap {
							if o.Driver != o.PlateNumber {
								errs <- fmt.Errorf("half-applied update on %s: %s/%s", o.ID, o.Driver, o.PlateNumber)
								return
							}
						}
						if _, _, err := repo.List(ctx, model.OrderFilter{}, firstPage(10)); err != nil {
							errs <- err
							return
						}
					}
				}()
			}

			wg.Wait()
			close(stop)
			readers.Wait()
			close(errs)
			for err := range errs {
				t.Error(err)
			}

			assert.Len(t, ids, writers)
			_, total, err := repo.List(ctx, model.OrderFilter{}, firstPage(1))
			require.NoError(t, err)
			assert.Equal(t, int64(writers), total)

			renamed, _, err := repo.List(ctx, model.OrderFilter{Search: "u-"}, firstPage(writers))
			require.NoError(t, err)
			assert.Len(t, renamed, writers)
		})
	}
}
