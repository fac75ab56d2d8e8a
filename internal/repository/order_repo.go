package repository

import (
	"context"
	"errors"
	"strings"

	"freightledger/internal/model"
	"freightledger/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository owns the order collection. Implementations return copies;
// callers never hold a reference into the store.
type OrderRepository interface {
	// Create assigns the id and inserts the order.
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	// Update applies mutate to a copy of the stored order and persists it only
	// when mutate returns nil. The id cannot be changed.
	Update(ctx context.Context, id string, mutate func(*model.Order) error) (*model.Order, error)
	Delete(ctx context.Context, id string) error
	// List returns one page of the orders matching filter, newest first, and the
	// total number of matches.
	List(ctx context.Context, filter model.OrderFilter, page pagination.Params) ([]model.Order, int64, error)
	// Snapshot returns every stored order as of a single instant.
	Snapshot(ctx context.Context) ([]model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
	tx TransactionManager
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db, tx: NewTransactionManager(db)}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	order.ID = uuid.NewString()
	normalizeTimes(order)
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) Update(ctx context.Context, id string, mutate func(*model.Order) error) (*model.Order, error) {
	var updated *model.Order
	err := r.tx.RunInTx(ctx, func(txCtx context.Context) error {
		order := &model.Order{}
		err := GetDB(txCtx, r.db).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(order, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := mutate(order); err != nil {
			return err
		}
		order.ID = id
		normalizeTimes(order)
		if err := GetDB(txCtx, r.db).Save(order).Error; err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	res := GetDB(ctx, r.db).Delete(&model.Order{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter, page pagination.Params) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	query := applyFilter(GetDB(ctx, r.db).Model(&model.Order{}), filter).Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if page.PastEnd(total) {
		return []model.Order{}, total, nil
	}

	if err := query.
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.PageSize).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepository) Snapshot(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := GetDB(ctx, r.db).Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func applyFilter(db *gorm.DB, f model.OrderFilter) *gorm.DB {
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	if f.PaymentStatus != "" {
		db = db.Where("payment_status = ?", f.PaymentStatus)
	}
	if f.Origin != "" {
		db = db.Where("origin = ?", f.Origin)
	}
	if f.Destination != "" {
		db = db.Where("destination = ?", f.Destination)
	}
	if f.Search != "" {
		term := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		db = db.Where(
			`(LOWER(id) LIKE ? ESCAPE '\' OR LOWER(driver) LIKE ? ESCAPE '\' OR LOWER(plate_number) LIKE ? ESCAPE '\')`,
			term, term, term,
		)
	}
	if f.StartDate != nil {
		db = db.Where("created_at >= ?", f.StartDate.UTC())
	}
	if f.EndDate != nil {
		db = db.Where("created_at <= ?", f.EndDate.UTC())
	}
	return db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// sqlite compares timestamps as text, so every stored instant shares one offset.
func normalizeTimes(o *model.Order) {
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	if o.PaymentTime != nil {
		t := o.PaymentTime.UTC()
		o.PaymentTime = &t
	}
}
