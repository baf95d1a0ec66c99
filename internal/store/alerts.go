package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/theirongolddev/finbot/internal/model"
)

const alertColumns = `id, user_id, type, category, threshold, active, created_at`

func scanAlert(row interface{ Scan(...any) error }) (*model.Alert, error) {
	var a model.Alert
	var kind, created string
	var cat sql.NullString
	var threshold float64
	if err := row.Scan(&a.ID, &a.UserID, &kind, &cat, &threshold, &a.Active, &created); err != nil {
		return nil, err
	}
	var category *model.Category
	if cat.Valid && cat.String != "" {
		c := model.Category(cat.String)
		category = &c
	}
	rule, err := model.DecodeRule(kind, category, threshold)
	if err != nil {
		return nil, fmt.Errorf("alert %d: %w", a.ID, err)
	}
	a.Rule = rule
	a.CreatedAt = parseTime(created)
	return &a, nil
}

func nullCategory(r model.Rule) sql.NullString {
	if c := model.RuleCategory(r); c != nil {
		return sql.NullString{String: string(*c), Valid: true}
	}
	return sql.NullString{}
}

// InsertAlert stores a new alert and sets its ID.
func (t *Tx) InsertAlert(a *model.Alert) error {
	res, err := t.exec(`INSERT INTO alerts (user_id, type, category, threshold, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Rule.Kind(), nullCategory(a.Rule), a.Rule.Limit(), boolInt(a.Active), formatTime(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting alert: %w", err)
	}
	a.ID, err = res.LastInsertId()
	return err
}

// GetAlert loads an alert owned by userID, active or not.
func (t *Tx) GetAlert(id, userID int64) (*model.Alert, error) {
	a, err := scanAlert(t.queryRow(`SELECT `+alertColumns+` FROM alerts WHERE id = ? AND user_id = ?`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return a, err
}

// ListAlerts returns the user's alerts in creation order.
func (t *Tx) ListAlerts(userID int64, activeOnly bool) ([]model.Alert, error) {
	q := `SELECT ` + alertColumns + ` FROM alerts WHERE user_id = ?`
	if activeOnly {
		q += ` AND active = 1`
	}
	q += ` ORDER BY id`

	rows, err := t.query(q, userID)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var alerts []model.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

// SaveAlert writes the threshold and active flag of a.
func (t *Tx) SaveAlert(a *model.Alert) error {
	res, err := t.exec(`UPDATE alerts SET threshold = ?, active = ? WHERE id = ? AND user_id = ?`,
		a.Rule.Limit(), boolInt(a.Active), a.ID, a.UserID)
	if err != nil {
		return err
	}
	ok, err := affected(res)
	if err == nil && !ok {
		err = model.ErrNotFound
	}
	return err
}

// SetAlertActive flips the active flag. It reports false when nothing matched.
func (t *Tx) SetAlertActive(id, userID int64, active bool) (bool, error) {
	res, err := t.exec(`UPDATE alerts SET active = ? WHERE id = ? AND user_id = ?`, boolInt(active), id, userID)
	if err != nil {
		return false, err
	}
	return affected(res)
}
