package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a single freight transaction. Weight is measured in jin.
// DailyProfit is supplied by the caller and is never re-derived by the store.
type Order struct {
	ID            string          `gorm:"type:varchar(40);primaryKey" json:"id"`
	Category      string          `gorm:"type:varchar(50);not null;index" json:"category"`
	Weight        int             `gorm:"type:int;not null" json:"weight"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	PlateNumber   string          `gorm:"type:varchar(20);not null" json:"plate_number"`
	Driver        string          `gorm:"type:varchar(100);not null" json:"driver"`
	Phone         string          `gorm:"type:varchar(20)" json:"phone"`
	CustomerPhone string          `gorm:"type:varchar(20)" json:"customer_phone"`
	Origin        string          `gorm:"type:varchar(50);not null;index" json:"origin"`
	Destination   string          `gorm:"type:varchar(50);not null;index" json:"destination"`

	PaymentStatus string        `gorm:"type:varchar(20);not null;index" json:"payment_status"` // pending, verified, collected
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentTime   *time.Time    `json:"payment_time"` // nil while pending

	DriverWage      decimal.NullDecimal `gorm:"type:decimal(18,4)" json:"driver_wage"`
	LoadingFee      decimal.NullDecimal `gorm:"type:decimal(18,4)" json:"loading_fee"`
	ExpectedExpense decimal.NullDecimal `gorm:"type:decimal(18,4)" json:"expected_expense"`
	ActualExpense   decimal.NullDecimal `gorm:"type:decimal(18,4)" json:"actual_expense"`
	DailyProfit     decimal.Decimal     `gorm:"type:decimal(18,4);not null" json:"daily_profit"`

	Remarks string `gorm:"type:text" json:"remarks"`

	// Timestamps come from the service clock, not from gorm.
	CreatedAt time.Time `gorm:"not null;index;autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false" json:"updated_at"`
}

func (Order) TableName() string {
	return "freight_orders"
}

// Clone returns a copy that shares no pointers with o.
func (o Order) Clone() Order {
	if o.PaymentTime != nil {
		t := *o.PaymentTime
		o.PaymentTime = &t
	}
	return o
}

// OrderFilter is a conjunction of optional predicates; zero fields match everything.
type OrderFilter struct {
	Category      string
	PaymentStatus string
	Origin        string
	Destination   string
	Search        string     // case-insensitive substring of id, driver or plate number
	StartDate     *time.Time // inclusive lower bound on CreatedAt
	EndDate       *time.Time // inclusive upper bound on CreatedAt
}

func (f OrderFilter) Matches(o *Order) bool {
	if f.Category != "" && o.Category != f.Category {
		return false
	}
	if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
		return false
	}
	if f.Origin != "" && o.Origin != f.Origin {
		return false
	}
	if f.Destination != "" && o.Destination != f.Destination {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(o.ID), term) &&
			!strings.Contains(strings.ToLower(o.Driver), term) &&
			!strings.Contains(strings.ToLower(o.PlateNumber), term) {
			return false
		}
	}
	if f.StartDate != nil && o.CreatedAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && o.CreatedAt.After(*f.EndDate) {
		return false
	}
	return true
}
