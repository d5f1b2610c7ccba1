package db

import (
	"context"
)

const createUser = `
INSERT INTO users (id, email, password, nickname, role, status, provider, provider_user_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

// CreateUserParams はCreateUserのパラメータ。
type CreateUserParams struct {
	ID             string
	Email          string
	Password       string
	Nickname       string
	Role           string
	Status         string
	Provider       string
	ProviderUserID string
}

// CreateUser は新しいユーザーレコードを挿入する。
// メールアドレスまたはニックネームが重複している場合はUNIQUE制約違反を返す。
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.ExecContext(ctx, createUser,
		arg.ID,
		arg.Email,
		arg.Password,
		arg.Nickname,
		arg.Role,
		arg.Status,
		arg.Provider,
		arg.ProviderUserID,
	)
	return err
}

const getUserByID = `
SELECT id, email, password, nickname, role, status, provider, provider_user_id, last_login_at, created_at, updated_at
FROM users WHERE id = ?
`

// GetUserByID はIDでユーザーを取得する。
// 存在しない場合はsql.ErrNoRowsを返す。
func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Password,
		&u.Nickname,
		&u.Role,
		&u.Status,
		&u.Provider,
		&u.ProviderUserID,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

const getUserByEmail = `
SELECT id, email, password, nickname, role, status, provider, provider_user_id, last_login_at, created_at, updated_at
FROM users WHERE email = ?
`

// GetUserByEmail はメールアドレスでユーザーを取得する。
// 存在しない場合はsql.ErrNoRowsを返す。
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Password,
		&u.Nickname,
		&u.Role,
		&u.Status,
		&u.Provider,
		&u.ProviderUserID,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

const existsByEmail = `
SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)
`

// ExistsByEmail は指定されたメールアドレスのユーザーが存在するかを返す。
func (q *Queries) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	row := q.db.QueryRowContext(ctx, existsByEmail, email)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const existsByNickname = `
SELECT EXISTS(SELECT 1 FROM users WHERE nickname = ?)
`

// ExistsByNickname は指定されたニックネームのユーザーが存在するかを返す。
func (q *Queries) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	row := q.db.QueryRowContext(ctx, existsByNickname, nickname)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const updatePassword = `
UPDATE users SET password = ?, updated_at = datetime('now') WHERE id = ?
`

// UpdatePasswordParams はUpdatePasswordのパラメータ。
type UpdatePasswordParams struct {
	ID       string
	Password string
}

// UpdatePassword はユーザーのパスワードハッシュを更新する。
func (q *Queries) UpdatePassword(ctx context.Context, arg UpdatePasswordParams) error {
	_, err := q.db.ExecContext(ctx, updatePassword, arg.Password, arg.ID)
	return err
}

const updateLastLoginAt = `
UPDATE users SET last_login_at = datetime('now') WHERE id = ?
`

// UpdateLastLoginAt はユーザーの最終ログイン日時を現在時刻に更新する。
func (q *Queries) UpdateLastLoginAt(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, updateLastLoginAt, id)
	return err
}

const completeProfile = `
UPDATE users
SET nickname = ?, password = ?, status = ?, updated_at = datetime('now')
WHERE id = ?
`

// CompleteProfileParams はCompleteProfileのパラメータ。
type CompleteProfileParams struct {
	ID       string
	Nickname string
	Password string
	Status   string
}

// CompleteProfile は部分作成ユーザーのプロフィールを設定し、状態を更新する。
// ニックネームが重複している場合はUNIQUE制約違反を返す。
func (q *Queries) CompleteProfile(ctx context.Context, arg CompleteProfileParams) error {
	_, err := q.db.ExecContext(ctx, completeProfile, arg.Nickname, arg.Password, arg.Status, arg.ID)
	return err
}
