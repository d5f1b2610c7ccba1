package user

import (
	"database/sql"
	"fmt"
)

// スキーマ定義。
// nicknameのユニークインデックスは部分インデックスとし、OAuth2経由で作成された
// ニックネーム未設定（空文字列）のユーザーを重複判定から除外する。
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    password TEXT NOT NULL DEFAULT '',
    nickname TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL DEFAULT 'USER',
    status TEXT NOT NULL DEFAULT 'REGISTERED',
    provider TEXT NOT NULL DEFAULT '',
    provider_user_id TEXT NOT NULL DEFAULT '',
    last_login_at DATETIME,
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email
    ON users(email);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_nickname
    ON users(nickname) WHERE nickname <> '';

CREATE TABLE IF NOT EXISTS audit_events (
    id TEXT PRIMARY KEY,
    aggregate_id TEXT NOT NULL,
    aggregate_type TEXT NOT NULL,
    event_type TEXT NOT NULL,
    data BLOB NOT NULL,
    version INTEGER NOT NULL,
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    UNIQUE(aggregate_id, version)
);

CREATE INDEX IF NOT EXISTS idx_audit_events_aggregate
    ON audit_events(aggregate_id);
`

// initSchema はSQLiteデータベースにスキーマを適用する。
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}
