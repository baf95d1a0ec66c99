package store

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/finbot/internal/model"
)

// InsertTransaction appends a ledger row and sets tx.ID.
func (t *Tx) InsertTransaction(tx *model.Transaction) error {
	res, err := t.exec(`INSERT INTO transactions
		(user_id, amount, type, category, description, date, is_recurring)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.Amount, string(tx.Type), string(tx.Category), tx.Description,
		formatTime(tx.Date), boolInt(tx.Recurring))
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	tx.ID, err = res.LastInsertId()
	return err
}

// ListTransactions returns the user's transactions matching f, newest first.
func (t *Tx) ListTransactions(userID int64, f model.TxFilter) ([]model.Transaction, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}
	if !f.Since.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, formatTime(f.Since))
	}
	if !f.Until.IsZero() {
		where = append(where, "date < ?")
		args = append(args, formatTime(f.Until))
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(f.Category))
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}

	q := `SELECT id, user_id, amount, type, category, description, date, is_recurring
		FROM transactions WHERE ` + strings.Join(where, " AND ") + ` ORDER BY date DESC, id DESC`
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := t.query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Transaction
	for rows.Next() {
		var tx model.Transaction
		var typ, cat, date string
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &typ, &cat, &tx.Description,
			&date, &tx.Recurring); err != nil {
			return nil, err
		}
		tx.Type = model.TxType(typ)
		tx.Category = model.Category(cat)
		tx.Date = parseTime(date)
		out = append(out, tx)
	}
	return out, rows.Err()
}
