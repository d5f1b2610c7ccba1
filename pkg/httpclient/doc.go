// Package httpclient は外部サービスとのHTTP通信を行うクライアントを提供する。
//
// OAuth2プロバイダとの通信（認可コードの交換、ユーザー情報の取得）に使用する。
// トークンエンドポイントはフォームエンコード、それ以外はJSONで通信する。
package httpclient
