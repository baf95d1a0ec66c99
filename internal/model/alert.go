package model

import (
	"fmt"
	"time"
)

// Stored alert type discriminators.
const (
	AlertTypeLimit      = "limit"
	AlertTypeLowBalance = "low_balance"
)

// Rule is the closed set of alert conditions. Only types in this package
// implement it, so a type switch over LimitRule and LowBalanceRule is exhaustive.
type Rule interface {
	Kind() string
	Limit() float64
	isRule()
}

// LimitRule fires when month-to-date spending in Category reaches Threshold.
// A nil Category never fires.
type LimitRule struct {
	Category  *Category
	Threshold float64
}

// LowBalanceRule fires when the user balance drops to Threshold or below.
type LowBalanceRule struct {
	Threshold float64
}

// Kind returns the stored discriminator.
func (LimitRule) Kind() string { return AlertTypeLimit }

// Limit returns the threshold.
func (r LimitRule) Limit() float64 { return r.Threshold }

func (LimitRule) isRule() {}

// Kind returns the stored discriminator.
func (LowBalanceRule) Kind() string { return AlertTypeLowBalance }

// Limit returns the threshold.
func (r LowBalanceRule) Limit() float64 { return r.Threshold }

func (LowBalanceRule) isRule() {}

// DecodeRule builds a Rule from its stored columns.
func DecodeRule(kind string, category *Category, threshold float64) (Rule, error) {
	switch kind {
	case AlertTypeLimit:
		return LimitRule{Category: category, Threshold: threshold}, nil
	case AlertTypeLowBalance:
		return LowBalanceRule{Threshold: threshold}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidAlertType, kind)
}

// RuleCategory returns the category scope of r, or nil.
func RuleCategory(r Rule) *Category {
	if lr, ok := r.(LimitRule); ok {
		return lr.Category
	}
	return nil
}

// WithThreshold returns a copy of r with a new threshold.
func WithThreshold(r Rule, threshold float64) Rule {
	switch r := r.(type) {
	case LimitRule:
		r.Threshold = threshold
		return r
	case LowBalanceRule:
		r.Threshold = threshold
		return r
	}
	return r
}

// Alert is a user-defined threshold on spending or balance.
type Alert struct {
	ID        int64
	UserID    int64
	Rule      Rule
	Active    bool
	CreatedAt time.Time
}

// AlertPatch lists the fields an update may replace.
type AlertPatch struct {
	Threshold *float64
	Active    *bool
}

// Trigger describes one alert breach, independent of delivery.
type Trigger struct {
	AlertID   int64     `json:"alert_id"`
	Type      string    `json:"type"`
	Category  *Category `json:"category,omitempty"`
	Current   float64   `json:"current"`
	Threshold float64   `json:"threshold"`
	Delivered bool      `json:"delivered"`
}
