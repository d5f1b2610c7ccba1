package event

import (
	"encoding/json"
	"time"
)

// AggregateType はイベントの対象となるエンティティの種類を表す。
type AggregateType string

const (
	// AggregateTypeUser はユーザーエンティティを表す。
	AggregateTypeUser AggregateType = "User"
)

// Type はイベントの種類を表す。
type Type string

const (
	// TypeUserSignedUp はユーザーが会員登録したことを表す。
	TypeUserSignedUp Type = "UserSignedUp"
	// TypeUserLoggedIn はユーザーがログインしたことを表す。
	TypeUserLoggedIn Type = "UserLoggedIn"
	// TypeFederatedUserProvisioned はOAuth2認証により部分作成状態の
	// ユーザーが新規作成されたことを表す。
	TypeFederatedUserProvisioned Type = "FederatedUserProvisioned"
	// TypePasswordUpdated はユーザーがパスワードを更新したことを表す。
	TypePasswordUpdated Type = "PasswordUpdated"
	// TypeProfileCompleted は部分作成状態のユーザーがプロフィールを
	// 完成させ、本登録へ移行したことを表す。
	TypeProfileCompleted Type = "ProfileCompleted"
)

// Event は監査ログにおける不変のイベントレコードを表す。
// アカウントに対する状態変更はこの構造体として永続化される。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// AggregateID は対象エンティティの識別子。
	AggregateID string `json:"aggregate_id"`
	// AggregateType は対象エンティティの種類。
	AggregateType AggregateType `json:"aggregate_type"`
	// EventType はイベントの種類。
	EventType Type `json:"event_type"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// Version はAggregate内でのイベントの順序番号。
	Version int64 `json:"version"`
	// CreatedAt はイベントが作成された日時。
	CreatedAt time.Time `json:"created_at"`
}

// UserSignedUpData はUserSignedUpイベントのデータ。
type UserSignedUpData struct {
	// Email は登録されたメールアドレス。
	Email string `json:"email"`
	// Nickname は登録されたニックネーム。
	Nickname string `json:"nickname"`
}

// UserLoggedInData はUserLoggedInイベントのデータ。
type UserLoggedInData struct {
	// Method はログイン方式（"password" または "oauth2"）。
	Method string `json:"method"`
	// Provider はOAuth2ログインの場合のプロバイダ名。パスワードログインでは空。
	Provider string `json:"provider,omitempty"`
}

// FederatedUserProvisionedData はFederatedUserProvisionedイベントのデータ。
type FederatedUserProvisionedData struct {
	// Provider は認証に使用したOAuth2プロバイダ名。
	Provider string `json:"provider"`
	// Email はプロバイダから取得したメールアドレス。
	Email string `json:"email"`
}

// PasswordUpdatedData はPasswordUpdatedイベントのデータ。
type PasswordUpdatedData struct{}

// ProfileCompletedData はProfileCompletedイベントのデータ。
type ProfileCompletedData struct {
	// Nickname は設定されたニックネーム。
	Nickname string `json:"nickname"`
}
