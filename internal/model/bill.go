package model

import (
	"math"
	"time"
)

// FixedBill is a recurring obligation due on a day of the month.
type FixedBill struct {
	ID        int64
	UserID    int64
	Name      string
	Amount    float64
	DueDay    int
	Category  Category
	Active    bool
	CreatedAt time.Time
}

// BillPatch lists the fields an update may replace. Nil fields keep their value.
type BillPatch struct {
	Name     *string
	Amount   *float64
	DueDay   *int
	Category *Category
	Active   *bool
}

// Finite reports whether v is a real number, neither NaN nor an infinity.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidAmount reports whether v is a finite, strictly positive amount.
func ValidAmount(v float64) bool {
	return Finite(v) && v > 0
}

// ValidDueDay reports whether d is a usable day of month.
func ValidDueDay(d int) bool {
	return d >= 1 && d <= 31
}

// Validate checks the invariants of a new bill.
func (b FixedBill) Validate() error {
	if b.Name == "" {
		return ErrInvalidName
	}
	if !ValidAmount(b.Amount) {
		return ErrInvalidAmount
	}
	if !ValidDueDay(b.DueDay) {
		return ErrInvalidDueDay
	}
	if !b.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

// Validate checks the provided fields of a patch.
func (p BillPatch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return ErrInvalidName
	}
	if p.Amount != nil && !ValidAmount(*p.Amount) {
		return ErrInvalidAmount
	}
	if p.DueDay != nil && !ValidDueDay(*p.DueDay) {
		return ErrInvalidDueDay
	}
	if p.Category != nil && !p.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

// Apply copies the provided fields onto b.
func (p BillPatch) Apply(b *FixedBill) {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.DueDay != nil {
		b.DueDay = *p.DueDay
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Active != nil {
		b.Active = *p.Active
	}
}
