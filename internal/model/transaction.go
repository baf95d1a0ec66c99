package model

import (
	"fmt"
	"strings"
	"time"
)

// Category is the closed set of spending categories.
type Category string

const (
	CategoryFood          Category = "FOOD"
	CategoryTransport     Category = "TRANSPORT"
	CategoryHousing       Category = "HOUSING"
	CategoryEntertainment Category = "ENTERTAINMENT"
	CategoryHealth        Category = "HEALTH"
	CategoryEducation     Category = "EDUCATION"
	CategoryOther         Category = "OTHER"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryHousing,
	CategoryEntertainment,
	CategoryHealth,
	CategoryEducation,
	CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryFood:          "Food",
	CategoryTransport:     "Transport",
	CategoryHousing:       "Housing",
	CategoryEntertainment: "Entertainment",
	CategoryHealth:        "Health",
	CategoryEducation:     "Education",
	CategoryOther:         "Other",
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the human-readable category name.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// ParseCategory resolves a category from its name or label, case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, c.Label()) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// TxType carries the direction of a transaction; amounts are always positive.
type TxType string

const (
	TxIncome  TxType = "INCOME"
	TxExpense TxType = "EXPENSE"
)

// Valid reports whether t is INCOME or EXPENSE.
func (t TxType) Valid() bool {
	return t == TxIncome || t == TxExpense
}

// ParseTxType resolves a transaction type, accepting "income"/"expense" in any case.
func ParseTxType(s string) (TxType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(TxIncome):
		return TxIncome, nil
	case string(TxExpense):
		return TxExpense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTxType, s)
}

// Transaction is an immutable ledger record.
type Transaction struct {
	ID          int64
	UserID      int64
	Amount      float64
	Type        TxType
	Category    Category
	Description string
	Date        time.Time
	Recurring   bool
}

// Signed returns the amount with the direction applied.
func (t Transaction) Signed() float64 {
	if t.Type == TxExpense {
		return -t.Amount
	}
	return t.Amount
}

// TxFilter narrows a transaction listing. Zero fields are ignored.
type TxFilter struct {
	Since    time.Time
	Until    time.Time
	Category Category
	Type     TxType
	Limit    int
}
