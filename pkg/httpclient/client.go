package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client は外部サービス通信用のHTTPクライアント。
// タイムアウト設定を持ち、JSONおよびフォーム形式のリクエストを送信する。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は接続先サービスのベースURL。
	// 空文字列の場合、各メソッドのpathに絶対URLを渡す。
	baseURL string
}

// New は新しいHTTPクライアントを生成する。
// baseURLには接続先のベースURL（例: "https://oauth2.googleapis.com"）を指定する。
func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
	}
}

// PostJSON は指定パスにJSONボディでPOSTリクエストを送信する。
// レスポンスボディをresultにデシリアライズする。
func (c *Client) PostJSON(ctx context.Context, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}
	return c.do(ctx, http.MethodPost, path, "application/json", "", bodyReader, result)
}

// PostForm は指定パスにフォームエンコードされたボディでPOSTリクエストを送信する。
// OAuth2のトークンエンドポイントはフォーム形式を要求するため、JSONとは別に用意する。
// レスポンスボディをresultにデシリアライズする。
func (c *Client) PostForm(ctx context.Context, path string, values url.Values, result any) error {
	body := strings.NewReader(values.Encode())
	return c.do(ctx, http.MethodPost, path, "application/x-www-form-urlencoded", "", body, result)
}

// GetJSON は指定パスにGETリクエストを送信する。
// レスポンスボディをresultにデシリアライズする。
func (c *Client) GetJSON(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, "", "", nil, result)
}

// GetJSONWithBearer はベアラートークンを付与してGETリクエストを送信する。
// OAuth2プロバイダのユーザー情報エンドポイント呼び出しに使用する。
func (c *Client) GetJSONWithBearer(ctx context.Context, path, bearer string, result any) error {
	return c.do(ctx, http.MethodGet, path, "", bearer, nil, result)
}

// do はHTTPリクエストを実行する共通処理。
// レスポンスはJSONとしてresultにデシリアライズする。
func (c *Client) do(ctx context.Context, method, path, contentType, bearer string, body io.Reader, result any) error {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	// GitHubのユーザー情報エンドポイントはAcceptヘッダーでJSONを要求する必要がある
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTPエラー: status=%d, body=%s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
		}
	}
	return nil
}
