// Package model defines the finance entities shared across the store, trackers and scheduler.
package model

import (
	"strings"
	"time"
)

// User is the aggregate root that owns transactions, bills, goals and alerts.
// Balance is an advisory running figure; reports are derived from transactions.
type User struct {
	ID         int64
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
	Balance    float64
	Active     bool
	CreatedAt  time.Time
}

// Profile carries the display fields supplied by the chat identity.
type Profile struct {
	Username  string
	FirstName string
	LastName  string
}

// DisplayName returns the friendliest non-empty name for greetings.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	if last := strings.TrimSpace(u.LastName); last != "" {
		return last
	}
	return "there"
}

// Preferences holds per-user presentation and delivery settings.
type Preferences struct {
	UserID               int64
	Currency             string
	NotificationsEnabled bool
}

// AuditEntry records one mutation applied on behalf of a user.
type AuditEntry struct {
	ID        int64
	UserID    int64
	Action    string
	Entity    string
	EntityID  int64
	Details   map[string]any
	Timestamp time.Time
}
