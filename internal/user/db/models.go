package db

import (
	"database/sql"
	"time"
)

// ユーザーのアカウント状態。
// PARTIALLY_CREATED はOAuth2認証で作成され、プロフィール未完成の状態。
// REGISTERED は本登録が完了した状態。
const (
	// StatusPartiallyCreated は部分作成状態を表す。
	StatusPartiallyCreated = "PARTIALLY_CREATED"
	// StatusRegistered は本登録完了状態を表す。
	StatusRegistered = "REGISTERED"
)

// RoleUser は一般ユーザーのロール。
const RoleUser = "USER"

// User はusersテーブルの1レコードを表す。
type User struct {
	// ID はユーザーの一意識別子（UUID）。
	ID string
	// Email はメールアドレス。ユニーク制約を持つ。
	Email string
	// Password はbcryptでハッシュ化されたパスワード。
	// OAuth2経由の部分作成ユーザーでは空文字列。
	Password string
	// Nickname はニックネーム。空文字列でない場合はユニーク制約を持つ。
	Nickname string
	// Role はユーザーのロール。
	Role string
	// Status はアカウント状態（StatusPartiallyCreated / StatusRegistered）。
	Status string
	// Provider はOAuth2プロバイダ名。パスワード登録ユーザーでは空文字列。
	Provider string
	// ProviderUserID はプロバイダ側のユーザー識別子。
	ProviderUserID string
	// LastLoginAt は最終ログイン日時。一度もログインしていない場合はNULL。
	LastLoginAt sql.NullTime
	// CreatedAt はレコード作成日時。
	CreatedAt time.Time
	// UpdatedAt はレコード更新日時。
	UpdatedAt time.Time
}

// AuditEvent はaudit_eventsテーブルの1レコードを表す。
type AuditEvent struct {
	// ID はイベントの一意識別子（UUID）。
	ID string
	// AggregateID は対象ユーザーのID。
	AggregateID string
	// AggregateType は対象エンティティの種類。
	AggregateType string
	// EventType はイベントの種類。
	EventType string
	// Data はイベント固有のデータ（JSON形式）。
	Data []byte
	// Version はAggregate内でのイベントの順序番号。
	Version int64
	// CreatedAt はイベント作成日時。
	CreatedAt time.Time
}
