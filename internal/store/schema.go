package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    telegram_id          INTEGER NOT NULL UNIQUE,
    username             TEXT NOT NULL DEFAULT '',
    first_name           TEXT NOT NULL DEFAULT '',
    last_name            TEXT NOT NULL DEFAULT '',
    balance              REAL NOT NULL DEFAULT 0,
    active               INTEGER NOT NULL DEFAULT 1,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id              INTEGER NOT NULL REFERENCES users(id),
    amount               REAL NOT NULL CHECK (amount > 0),
    type                 TEXT NOT NULL CHECK (type IN ('INCOME', 'EXPENSE')),
    category             TEXT NOT NULL,
    description          TEXT NOT NULL DEFAULT '',
    date                 TEXT NOT NULL,
    is_recurring         INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS fixed_bills (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id              INTEGER NOT NULL REFERENCES users(id),
    name                 TEXT NOT NULL,
    amount               REAL NOT NULL CHECK (amount > 0),
    due_day              INTEGER NOT NULL CHECK (due_day >= 1 AND due_day <= 31),
    category             TEXT NOT NULL,
    active               INTEGER NOT NULL DEFAULT 1,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS goals (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id              INTEGER NOT NULL REFERENCES users(id),
    name                 TEXT NOT NULL,
    target_amount        REAL NOT NULL CHECK (target_amount >= 0),
    current_amount       REAL NOT NULL DEFAULT 0,
    deadline             TEXT NOT NULL,
    is_completed         INTEGER NOT NULL DEFAULT 0,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS alerts (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id              INTEGER NOT NULL REFERENCES users(id),
    type                 TEXT NOT NULL CHECK (type IN ('limit', 'low_balance')),
    category             TEXT,
    threshold            REAL NOT NULL,
    active               INTEGER NOT NULL DEFAULT 1,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS user_preferences (
    user_id               INTEGER PRIMARY KEY REFERENCES users(id),
    currency              TEXT NOT NULL,
    notifications_enabled INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS audit_logs (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id              INTEGER NOT NULL,
    action               TEXT NOT NULL,
    entity               TEXT NOT NULL,
    entity_id            INTEGER NOT NULL,
    details              TEXT NOT NULL DEFAULT '{}',
    timestamp            TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date);
CREATE INDEX IF NOT EXISTS idx_transactions_user_category ON transactions(user_id, category, type);
CREATE INDEX IF NOT EXISTS idx_fixed_bills_user ON fixed_bills(user_id, active);
CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id);
CREATE INDEX IF NOT EXISTS idx_alerts_user ON alerts(user_id, active);
CREATE INDEX IF NOT EXISTS idx_audit_user ON audit_logs(user_id, timestamp);
`
