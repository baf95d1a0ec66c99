package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/theirongolddev/finbot/internal/model"
)

const billColumns = `id, user_id, name, amount, due_day, category, active, created_at`

func scanBill(row interface{ Scan(...any) error }) (*model.FixedBill, error) {
	var b model.FixedBill
	var cat, created string
	if err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Amount, &b.DueDay, &cat,
		&b.Active, &created); err != nil {
		return nil, err
	}
	b.Category = model.Category(cat)
	b.CreatedAt = parseTime(created)
	return &b, nil
}

// InsertBill stores a new bill and sets its ID.
func (t *Tx) InsertBill(b *model.FixedBill) error {
	res, err := t.exec(`INSERT INTO fixed_bills (user_id, name, amount, due_day, category, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.Name, b.Amount, b.DueDay, string(b.Category), boolInt(b.Active), formatTime(b.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting bill: %w", err)
	}
	b.ID, err = res.LastInsertId()
	return err
}

// GetBill loads a bill owned by userID, active or not.
func (t *Tx) GetBill(id, userID int64) (*model.FixedBill, error) {
	b, err := scanBill(t.queryRow(`SELECT `+billColumns+` FROM fixed_bills
		WHERE id = ? AND user_id = ?`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return b, err
}

// ListBills returns the user's bills ordered by due day.
func (t *Tx) ListBills(userID int64, activeOnly bool) ([]model.FixedBill, error) {
	q := `SELECT ` + billColumns + ` FROM fixed_bills WHERE user_id = ?`
	if activeOnly {
		q += ` AND active = 1`
	}
	q += ` ORDER BY due_day, id`

	rows, err := t.query(q, userID)
	if err != nil {
		return nil, fmt.Errorf("querying bills: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var bills []model.FixedBill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, *b)
	}
	return bills, rows.Err()
}

// SaveBill writes every mutable column of b.
func (t *Tx) SaveBill(b *model.FixedBill) error {
	res, err := t.exec(`UPDATE fixed_bills SET name = ?, amount = ?, due_day = ?, category = ?, active = ?
		WHERE id = ? AND user_id = ?`,
		b.Name, b.Amount, b.DueDay, string(b.Category), boolInt(b.Active), b.ID, b.UserID)
	if err != nil {
		return err
	}
	ok, err := affected(res)
	if err == nil && !ok {
		err = model.ErrNotFound
	}
	return err
}

// SetBillActive flips the active flag. It reports false when the bill is missing
// or belongs to another user.
func (t *Tx) SetBillActive(id, userID int64, active bool) (bool, error) {
	res, err := t.exec(`UPDATE fixed_bills SET active = ? WHERE id = ? AND user_id = ?`,
		boolInt(active), id, userID)
	if err != nil {
		return false, err
	}
	return affected(res)
}
