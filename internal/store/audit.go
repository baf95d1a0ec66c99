package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/theirongolddev/finbot/internal/model"
)

// Audit appends an audit row in the current transaction.
func (t *Tx) Audit(userID int64, action, entity string, entityID int64, details map[string]any, at time.Time) error {
	if details == nil {
		details = map[string]any{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encoding audit details: %w", err)
	}
	_, err = t.exec(`INSERT INTO audit_logs (user_id, action, entity, entity_id, details, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`, userID, action, entity, entityID, string(raw), formatTime(at))
	if err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	return nil
}

// RecentAudit returns up to limit entries for the user, newest first.
func (t *Tx) RecentAudit(userID int64, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := t.query(`SELECT id, user_id, action, entity, entity_id, details, timestamp
		FROM audit_logs WHERE user_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		var raw, ts string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Entity, &e.EntityID, &raw, &ts); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &e.Details); err != nil {
			e.Details = map[string]any{"raw": raw}
		}
		e.Timestamp = parseTime(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}
