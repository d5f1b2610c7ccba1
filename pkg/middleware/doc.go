// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// 認証フィルタ、認可ポリシー、CORS設定、パニックリカバリを含む。
// ミドルウェアの適用順序には不変条件がある:
// CORS（プリフライト短絡）→ Auth（Principal設定）→ Enforce（認可判定）。
// 認証は認可より先にコンテキストへPrincipalを設定しなければならない。
package middleware
