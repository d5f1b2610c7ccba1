// Package db はユーザーサービスのSQLiteクエリ層を提供する。
package db

import (
	"context"
	"database/sql"
	"strings"
)

// DBTX はクエリ実行に必要なデータベース操作のインターフェース。
// *sql.DBと*sql.Txの両方が満たす。
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// New は新しいクエリ実行オブジェクトを生成する。
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries はユーザーサービスのクエリ実行オブジェクト。
type Queries struct {
	db DBTX
}

// WithTx はトランザクション上で動作するクエリ実行オブジェクトを返す。
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// IsUniqueViolation はエラーがUNIQUE制約違反かどうかを判定する。
// メールアドレス・ニックネームの重複検出と、同時登録の競合解決に使用する。
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
