// Package token はJWTアクセストークンの発行と検証を提供する。
//
// ユーザーサービスがログイン成功時・OAuth2認証完了時にトークンを発行し、
// 認証ミドルウェアが各リクエストで検証する。検証はDBアクセスを伴わず、
// 署名とクレームのみで完結する（ステートレス認証）。
package token
