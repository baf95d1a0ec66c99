package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/finbot/internal/model"
)

const userColumns = `id, telegram_id, username, first_name, last_name, balance, active, created_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var created string
	if err := row.Scan(&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName,
		&u.Balance, &u.Active, &created); err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(created)
	return &u, nil
}

// UserByTelegramID looks up a user by chat identity.
func (t *Tx) UserByTelegramID(telegramID int64) (*model.User, error) {
	u, err := scanUser(t.queryRow(`SELECT `+userColumns+` FROM users WHERE telegram_id = ?`, telegramID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return u, err
}

// UserByID looks up a user by primary key.
func (t *Tx) UserByID(id int64) (*model.User, error) {
	u, err := scanUser(t.queryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return u, err
}

// GetOrCreateUser returns the user for telegramID, creating it from p when absent.
// The boolean reports whether a row was created.
func (t *Tx) GetOrCreateUser(telegramID int64, p model.Profile, now time.Time) (*model.User, bool, error) {
	u, err := t.UserByTelegramID(telegramID)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, false, err
	}

	res, err := t.exec(`INSERT INTO users (telegram_id, username, first_name, last_name, balance, active, created_at)
		VALUES (?, ?, ?, ?, 0, 1, ?)`,
		telegramID, p.Username, p.FirstName, p.LastName, formatTime(now))
	if err != nil {
		return nil, false, fmt.Errorf("inserting user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, err
	}
	u, err = t.UserByID(id)
	return u, true, err
}

// UpdateProfile replaces the display fields of a user and reactivates it.
func (t *Tx) UpdateProfile(telegramID int64, p model.Profile) (*model.User, error) {
	res, err := t.exec(`UPDATE users SET username = ?, first_name = ?, last_name = ?, active = 1
		WHERE telegram_id = ?`, p.Username, p.FirstName, p.LastName, telegramID)
	if err != nil {
		return nil, err
	}
	if ok, err := affected(res); err != nil || !ok {
		if err == nil {
			err = model.ErrNotFound
		}
		return nil, err
	}
	return t.UserByTelegramID(telegramID)
}

// DeactivateUser clears the active flag. It reports false when no such user exists.
func (t *Tx) DeactivateUser(telegramID int64) (bool, error) {
	res, err := t.exec(`UPDATE users SET active = 0 WHERE telegram_id = ?`, telegramID)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// SetBalance overwrites the advisory balance.
func (t *Tx) SetBalance(userID int64, balance float64) error {
	res, err := t.exec(`UPDATE users SET balance = ? WHERE id = ?`, balance, userID)
	if err != nil {
		return err
	}
	if ok, err := affected(res); err != nil || !ok {
		if err == nil {
			err = model.ErrNotFound
		}
		return err
	}
	return nil
}

// AdjustBalance adds delta to the advisory balance and returns the new value.
func (t *Tx) AdjustBalance(userID int64, delta float64) (float64, error) {
	var balance float64
	err := t.queryRow(`UPDATE users SET balance = balance + ? WHERE id = ? RETURNING balance`,
		delta, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.ErrNotFound
	}
	return balance, err
}

// ListActiveUsers returns every active user ordered by id.
func (t *Tx) ListActiveUsers() ([]model.User, error) {
	rows, err := t.query(`SELECT ` + userColumns + ` FROM users WHERE active = 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
