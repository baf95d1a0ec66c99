package store

import (
	"database/sql"
	"errors"

	"github.com/theirongolddev/finbot/internal/model"
)

// Preferences returns the stored preferences of a user, or def (with UserID set)
// when the user never saved any.
func (t *Tx) Preferences(userID int64, def model.Preferences) (model.Preferences, error) {
	p := model.Preferences{UserID: userID}
	err := t.queryRow(`SELECT currency, notifications_enabled FROM user_preferences WHERE user_id = ?`, userID).
		Scan(&p.Currency, &p.NotificationsEnabled)
	if errors.Is(err, sql.ErrNoRows) {
		def.UserID = userID
		return def, nil
	}
	return p, err
}

// UpsertPreferences creates or replaces the preferences row.
func (t *Tx) UpsertPreferences(p model.Preferences) error {
	_, err := t.exec(`INSERT INTO user_preferences (user_id, currency, notifications_enabled)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			currency = excluded.currency,
			notifications_enabled = excluded.notifications_enabled`,
		p.UserID, p.Currency, boolInt(p.NotificationsEnabled))
	return err
}
