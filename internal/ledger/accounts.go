package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/theirongolddev/finbot/internal/model"
	"github.com/theirongolddev/finbot/internal/store"
)

// Register returns the user for telegramID, creating it when absent. Only a
// creation is audited.
func (l *Ledger) Register(ctx context.Context, telegramID int64, p model.Profile) (*model.User, bool, error) {
	var (
		u       *model.User
		created bool
	)
	now := l.now()
	err := l.store.WithTx(ctx, func(t *store.Tx) error {
		var err error
		u, created, err = t.GetOrCreateUser(telegramID, p, now)
		if err != nil || !created {
			return err
		}
		return t.Audit(u.ID, "create", "user", u.ID, map[string]any{"telegram_id": telegramID}, now)
	})
	return u, created, err
}

// User looks up a user by chat identity.
func (l *Ledger) User(ctx context.Context, telegramID int64) (*model.User, error) {
	var u *model.User
	err := l.store.WithTx(ctx, func(t *store.Tx) error {
		var err error
		u, err = t.UserByTelegramID(telegramID)
		return err
	})
	return u, err
}

// UpdateProfile replaces the display fields and reactivates the user.
func (l *Ledger) UpdateProfile(ctx context.Context, telegramID int64, p model.Profile) (*model.User, error) {
	var u *model.User
	now := l.now()
	err := l.store.WithTx(ctx, func(t *store.Tx) error {
		var err error
		if u, err = t.UpdateProfile(telegramID, p); err != nil {
			return err
		}
		return t.Audit(u.ID, "update", "user", u.ID, map[string]any{
			"username":   p.Username,
			"first_name": p.FirstName,
			"last_name":  p.LastName,
		}, now)
	})
	return u, err
}

// Deactivate stops scheduled jobs for the user. It reports false for an
// unknown user.
func (l *Ledger) Deactivate(ctx context.Context, telegramID int64) (bool, error) {
	var ok bool
	now := l.now()
	err := l.store.WithTx(ctx, func(t *store.Tx) error {
		u, err := t.UserByTelegramID(telegramID)
		if err != nil {
			return err
		}
		if ok, err = t.DeactivateUser(telegramID); err != nil || !ok {
			return err
		}
		return t.Audit(u.ID, "deactivate", "user", u.ID, nil, now)
	})
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	return ok, err
}

// SetBalance overwrites the advisory balance.
func (l *Ledger) SetBalance(ctx context.Context, userID int64, balance float64) error {
	if !model.Finite(balance) {
		return model.ErrInvalidAmount
	}
	now := l.now()
	return l.store.WithTx(ctx, func(t *store.Tx) error {
		if err := t.SetBalance(userID, balance); err != nil {
			return err
		}
		return t.Audit(userID, "set_balance", "user", userID, map[string]any{"balance": balance}, now)
	})
}

// Preferences returns the user's settings, falling back to def.
func (l *Ledger) Preferences(ctx context.Context, userID int64, def model.Preferences) (model.Preferences, error) {
	var p model.Preferences
	err := l.store.WithTx(ctx, func(t *store.Tx) error {
		var err error
		p, err = t.Preferences(userID, def)
		return err
	})
	return p, err
}

// SavePreferences stores the user's settings. An empty currency is rejected.
func (l *Ledger) SavePreferences(ctx context.Context, p model.Preferences) error {
	p.Currency = strings.TrimSpace(p.Currency)
	if p.Currency == "" {
		return model.ErrInvalidName
	}
	now := l.now()
	return l.store.WithTx(ctx, func(t *store.Tx) error {
		if _, err := t.UserByID(p.UserID); err != nil {
			return err
		}
		if err := t.UpsertPreferences(p); err != nil {
			return err
		}
		return t.Audit(p.UserID, "update", "preferences", p.UserID, map[string]any{
			"currency":              p.Currency,
			"notifications_enabled": p.NotificationsEnabled,
		}, now)
	})
}
