// Package user はユーザーアカウントサービスの内部実装を提供する。
//
// 会員登録・ログイン・OAuth2認証（Google/GitHub）・JWT発行を担当する。
// 認証はステートレスであり、サーバー側にセッションを保持しない。
// 各リクエストはJWTの署名検証のみで認証され、DB参照を伴わない。
package user
