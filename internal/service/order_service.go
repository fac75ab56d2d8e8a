package service

import (
	"context"
	"fmt"
	"time"

	"freightledger/internal/clock"
	"freightledger/internal/model"
	"freightledger/internal/repository"
	"freightledger/pkg/money"
	"freightledger/pkg/pagination"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// --- DTOs ---

type CreateOrderRequest struct {
	Category      string              `json:"category" validate:"required,category"`
	Weight        int                 `json:"weight" validate:"required,gt=0"`
	UnitPrice     *decimal.Decimal    `json:"unit_price" validate:"-"`
	PlateNumber   string              `json:"plate_number" validate:"required,max=20"`
	Driver        string              `json:"driver" validate:"required,max=100"`
	Phone         string              `json:"phone" validate:"omitempty,max=20"`
	CustomerPhone string              `json:"customer_phone" validate:"omitempty,max=20"`
	Origin        string              `json:"origin" validate:"required,city"`
	Destination   string              `json:"destination" validate:"required,city"`
	PaymentStatus string              `json:"payment_status" validate:"required,payment_status"`
	PaymentMethod model.PaymentMethod `json:"payment_method" validate:"omitempty,payment_method"`
	PaymentTime   *time.Time          `json:"payment_time"`

	DriverWage      decimal.NullDecimal `json:"driver_wage" validate:"-"`
	LoadingFee      decimal.NullDecimal `json:"loading_fee" validate:"-"`
	ExpectedExpense decimal.NullDecimal `json:"expected_expense" validate:"-"`
	ActualExpense   decimal.NullDecimal `json:"actual_expense" validate:"-"`
	DailyProfit     *decimal.Decimal    `json:"daily_profit" validate:"-"`

	Remarks string `json:"remarks" validate:"max=500"`
}

// UpdateOrderRequest is a partial update: nil fields are left untouched.
type UpdateOrderRequest struct {
	Category      *string              `json:"category" validate:"omitnil,category"`
	Weight        *int                 `json:"weight" validate:"omitnil,gt=0"`
	UnitPrice     *decimal.Decimal     `json:"unit_price" validate:"-"`
	PlateNumber   *string              `json:"plate_number" validate:"omitnil,required,max=20"`
	Driver        *string              `json:"driver" validate:"omitnil,required,max=100"`
	Phone         *string              `json:"phone" validate:"omitnil,max=20"`
	CustomerPhone *string              `json:"customer_phone" validate:"omitnil,max=20"`
	Origin        *string              `json:"origin" validate:"omitnil,city"`
	Destination   *string              `json:"destination" validate:"omitnil,city"`
	PaymentStatus *string              `json:"payment_status" validate:"omitnil,payment_status"`
	PaymentMethod *model.PaymentMethod `json:"payment_method" validate:"omitnil,payment_method"`
	PaymentTime   *time.Time           `json:"payment_time"`

	DriverWage      *decimal.Decimal `json:"driver_wage" validate:"-"`
	LoadingFee      *decimal.Decimal `json:"loading_fee" validate:"-"`
	ExpectedExpense *decimal.Decimal `json:"expected_expense" validate:"-"`
	ActualExpense   *decimal.Decimal `json:"actual_expense" validate:"-"`
	DailyProfit     *decimal.Decimal `json:"daily_profit" validate:"-"`

	Remarks *string `json:"remarks" validate:"omitnil,max=500"`
}

// ListOrdersRequest carries the list filters as they arrive on the query string.
// Dates are RFC3339 or YYYY-MM-DD; a bare end date covers the whole day.
type ListOrdersRequest struct {
	Category      string `form:"category"`
	PaymentStatus string `form:"payment_status"`
	Origin        string `form:"origin"`
	Destination   string `form:"destination"`
	Search        string `form:"search"`
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
}

type OrderResponse struct {
	model.Order
	Warnings []string `json:"warnings,omitempty"`
}

// Order change events pushed to realtime subscribers
const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
	EventOrderDeleted = "order.deleted"
)

// EventPublisher receives order change notifications after a mutation commits.
type EventPublisher interface {
	Publish(event string, data any)
}

type OrderEvent struct {
	ID string `json:"id"`
}

// --- Interface ---

type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (OrderResponse, error)
	GetOrder(ctx context.Context, id string) (OrderResponse, error)
	UpdateOrder(ctx context.Context, id string, req UpdateOrderRequest) (OrderResponse, error)
	DeleteOrder(ctx context.Context, id string) error
	ListOrders(ctx context.Context, req ListOrdersRequest, page pagination.Params) (pagination.Page[OrderResponse], error)
}

type orderService struct {
	repo      repository.OrderRepository
	clock     clock.Clock
	loc       *time.Location
	publisher EventPublisher
	validate  *validator.Validate
}

func NewOrderService(
	repo repository.OrderRepository,
	clk clock.Clock,
	loc *time.Location,
	publisher EventPublisher,
) OrderService {
	if loc == nil {
		loc = time.Local
	}
	return &orderService{
		repo:      repo,
		clock:     clk,
		loc:       loc,
		publisher: publisher,
		validate:  newValidator(),
	}
}

// --- Implementation ---

func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (OrderResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return OrderResponse{}, validationError(err)
	}
	if req.UnitPrice == nil {
		return OrderResponse{}, fmt.Errorf("%w: unit_price is required", model.ErrValidation)
	}
	if req.DailyProfit == nil {
		return OrderResponse{}, fmt.Errorf("%w: daily_profit is required", model.ErrValidation)
	}
	if err := checkAmounts(map[string]decimal.NullDecimal{
		"unit_price":       decimal.NewNullDecimal(*req.UnitPrice),
		"driver_wage":      req.DriverWage,
		"loading_fee":      req.LoadingFee,
		"expected_expense": req.ExpectedExpense,
		"actual_expense":   req.ActualExpense,
	}); err != nil {
		return OrderResponse{}, err
	}
	if req.PaymentStatus == model.PaymentStatusPending && req.PaymentTime != nil {
		return OrderResponse{}, fmt.Errorf("%w: payment_time must be empty while payment is pending", model.ErrValidation)
	}

	now := s.clock.Now()
	order := &model.Order{
		Category:        req.Category,
		Weight:          req.Weight,
		UnitPrice:       *req.UnitPrice,
		PlateNumber:     req.PlateNumber,
		Driver:          req.Driver,
		Phone:           req.Phone,
		CustomerPhone:   req.CustomerPhone,
		Origin:          req.Origin,
		Destination:     req.Destination,
		PaymentStatus:   req.PaymentStatus,
		PaymentMethod:   req.PaymentMethod,
		PaymentTime:     req.PaymentTime,
		DriverWage:      req.DriverWage,
		LoadingFee:      req.LoadingFee,
		ExpectedExpense: req.ExpectedExpense,
		ActualExpense:   req.ActualExpense,
		DailyProfit:     *req.DailyProfit,
		Remarks:         req.Remarks,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return OrderResponse{}, err
	}

	zap.L().Info("order created", zap.String("id", order.ID))
	s.publish(EventOrderCreated, order.ID)
	return s.toResponse(*order), nil
}

func (s *orderService) GetOrder(ctx context.Context, id string) (OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return OrderResponse{}, err
	}
	return OrderResponse{Order: *order, Warnings: Warnings(order)}, nil
}

func (s *orderService) UpdateOrder(ctx context.Context, id string, req UpdateOrderRequest) (OrderResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return OrderResponse{}, validationError(err)
	}
	amounts := map[string]decimal.NullDecimal{}
	for field, v := range map[string]*decimal.Decimal{
		"unit_price":       req.UnitPrice,
		"driver_wage":      req.DriverWage,
		"loading_fee":      req.LoadingFee,
		"expected_expense": req.ExpectedExpense,
		"actual_expense":   req.ActualExpense,
	} {
		if v != nil {
			amounts[field] = decimal.NewNullDecimal(*v)
		}
	}
	if err := checkAmounts(amounts); err != nil {
		return OrderResponse{}, err
	}

	updated, err := s.repo.Update(ctx, id, func(o *model.Order) error {
		req.applyTo(o)
		if o.PaymentStatus == model.PaymentStatusPending && o.PaymentTime != nil {
			if req.PaymentTime != nil {
				return fmt.Errorf("%w: payment_time must be empty while payment is pending", model.ErrValidation)
			}
			o.PaymentTime = nil
		}

		now := s.clock.Now()
		if now.Before(o.CreatedAt) {
			now = o.CreatedAt
		}
		o.UpdatedAt = now
		return nil
	})
	if err != nil {
		return OrderResponse{}, err
	}

	zap.L().Info("order updated", zap.String("id", id))
	s.publish(EventOrderUpdated, id)
	return s.toResponse(*updated), nil
}

func (s *orderService) DeleteOrder(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	zap.L().Info("order deleted", zap.String("id", id))
	s.publish(EventOrderDeleted, id)
	return nil
}

func (s *orderService) ListOrders(ctx context.Context, req ListOrdersRequest, page pagination.Params) (pagination.Page[OrderResponse], error) {
	filter, err := req.toFilter(s.loc)
	if err != nil {
		return pagination.Page[OrderResponse]{}, err
	}

	orders, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return pagination.Page[OrderResponse]{}, err
	}

	return pagination.Map(pagination.NewPage(orders, total, page), func(o model.Order) OrderResponse {
		return OrderResponse{Order: o, Warnings: Warnings(&o)}
	}), nil
}

// Warnings reports a caller-supplied daily profit that disagrees with
// weight*unit_price-actual_expense. The stored profit is never rewritten.
func Warnings(o *model.Order) []string {
	if !o.ActualExpense.Valid {
		return nil
	}
	expected := money.Profit(decimal.NewFromInt(int64(o.Weight)), o.UnitPrice, o.ActualExpense.Decimal)
	if expected.Equal(money.Round(o.DailyProfit)) {
		return nil
	}
	return []string{fmt.Sprintf(
		"daily_profit differs from weight*unit_price-actual_expense (expected %s)",
		money.FormatCurrency(expected),
	)}
}

func (s *orderService) toResponse(o model.Order) OrderResponse {
	warnings := Warnings(&o)
	if len(warnings) > 0 {
		zap.L().Warn("order profit inconsistent",
			zap.String("id", o.ID),
			zap.String("daily_profit", o.DailyProfit.String()),
			zap.Strings("warnings", warnings),
		)
	}
	return OrderResponse{Order: o, Warnings: warnings}
}

func (s *orderService) publish(event, id string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(event, OrderEvent{ID: id})
}

func (r UpdateOrderRequest) applyTo(o *model.Order) {
	setIf(&o.Category, r.Category)
	setIf(&o.Weight, r.Weight)
	setIf(&o.UnitPrice, r.UnitPrice)
	setIf(&o.PlateNumber, r.PlateNumber)
	setIf(&o.Driver, r.Driver)
	setIf(&o.Phone, r.Phone)
	setIf(&o.CustomerPhone, r.CustomerPhone)
	setIf(&o.Origin, r.Origin)
	setIf(&o.Destination, r.Destination)
	setIf(&o.PaymentStatus, r.PaymentStatus)
	setIf(&o.PaymentMethod, r.PaymentMethod)
	setIf(&o.DailyProfit, r.DailyProfit)
	setIf(&o.Remarks, r.Remarks)
	if r.PaymentTime != nil {
		t := *r.PaymentTime
		o.PaymentTime = &t
	}
	setNullIf(&o.DriverWage, r.DriverWage)
	setNullIf(&o.LoadingFee, r.LoadingFee)
	setNullIf(&o.ExpectedExpense, r.ExpectedExpense)
	setNullIf(&o.ActualExpense, r.ActualExpense)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setNullIf(dst *decimal.NullDecimal, v *decimal.Decimal) {
	if v != nil {
		*dst = decimal.NewNullDecimal(*v)
	}
}

func checkAmounts(amounts map[string]decimal.NullDecimal) error {
	for field, v := range amounts {
		if v.Valid && v.Decimal.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", model.ErrValidation, field)
		}
	}
	return nil
}

func (r ListOrdersRequest) toFilter(loc *time.Location) (model.OrderFilter, error) {
	filter := model.OrderFilter{
		Category:      r.Category,
		PaymentStatus: r.PaymentStatus,
		Origin:        r.Origin,
		Destination:   r.Destination,
		Search:        r.Search,
	}
	if r.StartDate != "" {
		t, err := parseFilterDate(r.StartDate, loc, false)
		if err != nil {
			return model.OrderFilter{}, fmt.Errorf("%w: start_date: %v", model.ErrValidation, err)
		}
		filter.StartDate = &t
	}
	if r.EndDate != "" {
		t, err := parseFilterDate(r.EndDate, loc, true)
		if err != nil {
			return model.OrderFilter{}, fmt.Errorf("%w: end_date: %v", model.ErrValidation, err)
		}
		filter.EndDate = &t
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return model.OrderFilter{}, fmt.Errorf("%w: end_date is before start_date", model.ErrValidation)
	}
	return filter, nil
}

func parseFilterDate(s string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	day, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC3339 or YYYY-MM-DD, got %q", s)
	}
	if endOfDay {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return day, nil
}
