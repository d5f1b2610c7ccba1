package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nao1215/userhub/internal/user/db"
	"github.com/nao1215/userhub/pkg/event"
)

// oauthProvider はOAuth2プロバイダの接続設定。
type oauthProvider struct {
	// name はプロバイダ名（"google"、"github"など）。
	name string
	// clientID はOAuth2クライアントID。
	clientID string
	// clientSecret はOAuth2クライアントシークレット。
	clientSecret string
	// authorizeURL は認可エンドポイントのURL。
	authorizeURL string
	// tokenURL はトークンエンドポイントのURL。
	tokenURL string
	// userinfoURL はユーザー情報エンドポイントのURL。
	userinfoURL string
	// scope は要求するスコープ。
	scope string
	// redirectURL は認可後のコールバックURL。
	redirectURL string
}

// configured はプロバイダのクライアント認証情報が設定されているかを返す。
func (p oauthProvider) configured() bool {
	return p.clientID != "" && p.clientSecret != ""
}

// newProviders は環境変数からOAuth2プロバイダ設定を構築する。
// クライアントIDが未設定のプロバイダも登録され、利用時に503を返す。
func newProviders() map[string]oauthProvider {
	callbackBase := getEnvOr("OAUTH2_CALLBACK_BASE_URL", "http://localhost:8080")
	return map[string]oauthProvider{
		"google": {
			name:         "google",
			clientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			clientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			authorizeURL: getEnvOr("GOOGLE_AUTHORIZE_URL", "https://accounts.google.com/o/oauth2/v2/auth"),
			tokenURL:     getEnvOr("GOOGLE_TOKEN_URL", "https://oauth2.googleapis.com/token"),
			userinfoURL:  getEnvOr("GOOGLE_USERINFO_URL", "https://openidconnect.googleapis.com/v1/userinfo"),
			scope:        "openid email",
			redirectURL:  callbackBase + "/oauth2/callback/google",
		},
		"github": {
			name:         "github",
			clientID:     os.Getenv("GITHUB_CLIENT_ID"),
			clientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
			authorizeURL: getEnvOr("GITHUB_AUTHORIZE_URL", "https://github.com/login/oauth/authorize"),
			tokenURL:     getEnvOr("GITHUB_TOKEN_URL", "https://github.com/login/oauth/access_token"),
			userinfoURL:  getEnvOr("GITHUB_USERINFO_URL", "https://api.github.com/user"),
			scope:        "user:email",
			redirectURL:  callbackBase + "/oauth2/callback/github",
		},
	}
}

// handleOAuth2Authorize はプロバイダの認可エンドポイントへリダイレクトするハンドラを返す。
func (s *Server) handleOAuth2Authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		provider, ok := s.providers[c.Param("provider")]
		if !ok {
			respondError(c, ErrUnknownProvider)
			return
		}
		if !provider.configured() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "OAuth2プロバイダが設定されていません"})
			return
		}

		query := url.Values{}
		query.Set("client_id", provider.clientID)
		query.Set("redirect_uri", provider.redirectURL)
		query.Set("response_type", "code")
		query.Set("scope", provider.scope)
		query.Set("state", uuid.New().String())

		c.Redirect(http.StatusTemporaryRedirect, provider.authorizeURL+"?"+query.Encode())
	}
}

// tokenResponse はOAuth2トークンエンドポイントのレスポンス。
type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// providerUserInfo はOAuth2プロバイダのユーザー情報エンドポイントのレスポンス。
// OIDC準拠のプロバイダは識別子をsubで、GitHubは数値のidで返す。
type providerUserInfo struct {
	Sub   string      `json:"sub"`
	ID    json.Number `json:"id"`
	Email string      `json:"email"`
}

// providerID はプロバイダ内のユーザー識別子を返す。
func (u providerUserInfo) providerID() string {
	if u.Sub != "" {
		return u.Sub
	}
	return u.ID.String()
}

// handleOAuth2Callback はプロバイダからの認可コードを受け取り、ログインを完了するハンドラを返す。
// 初回ログイン時は部分作成状態のユーザーを作成し、202とともにプロフィール完成を促す。
// 既存ユーザーの場合はアクセストークンを発行して返す。
func (s *Server) handleOAuth2Callback() gin.HandlerFunc {
	return func(c *gin.Context) {
		provider, ok := s.providers[c.Param("provider")]
		if !ok {
			respondError(c, ErrUnknownProvider)
			return
		}
		if !provider.configured() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "OAuth2プロバイダが設定されていません"})
			return
		}

		code := c.Query("code")
		if code == "" {
			respondError(c, ErrRequiredValue)
			return
		}

		ctx := c.Request.Context()
		info, err := s.fetchProviderUser(ctx, provider, code)
		if err != nil {
			respondError(c, err)
			return
		}
		if info.Email == "" {
			respondError(c, fmt.Errorf("プロバイダ%sからメールアドレスを取得できませんでした", provider.name))
			return
		}

		u, created, err := s.findOrCreateFederatedUser(ctx, provider, info)
		if err != nil {
			respondError(c, err)
			return
		}

		accessToken, err := s.issueToken(u)
		if err != nil {
			respondError(c, err)
			return
		}

		if created {
			s.recordAudit(ctx, u.ID, event.TypeFederatedUserProvisioned, event.FederatedUserProvisionedData{
				Provider: provider.name,
				Email:    u.Email,
			})
		}
		if err := s.queries.UpdateLastLoginAt(ctx, u.ID); err != nil {
			log.Printf("最終ログイン日時の更新に失敗: user_id=%s, error=%v", u.ID, err)
		}
		s.recordAudit(ctx, u.ID, event.TypeUserLoggedIn, event.UserLoggedInData{
			Method:   "oauth2",
			Provider: provider.name,
		})

		if s.successRedirectURL != "" {
			query := url.Values{}
			query.Set("access_token", accessToken)
			query.Set("status", u.Status)
			c.Redirect(http.StatusFound, s.successRedirectURL+"?"+query.Encode())
			return
		}

		if u.Status == db.StatusPartiallyCreated {
			c.JSON(http.StatusAccepted, gin.H{
				"message":      msgUserPartiallyCreated,
				"user_id":      u.ID,
				"access_token": accessToken,
				"status":       u.Status,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id":      u.ID,
			"access_token": accessToken,
			"status":       u.Status,
		})
	}
}

// fetchProviderUser は認可コードをアクセストークンへ交換し、プロバイダからユーザー情報を取得する。
func (s *Server) fetchProviderUser(ctx context.Context, provider oauthProvider, code string) (providerUserInfo, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", provider.clientID)
	form.Set("client_secret", provider.clientSecret)
	form.Set("redirect_uri", provider.redirectURL)

	var token tokenResponse
	if err := s.oauthClient.PostForm(ctx, provider.tokenURL, form, &token); err != nil {
		return providerUserInfo{}, fmt.Errorf("認可コードの交換に失敗: %w", err)
	}
	if token.AccessToken == "" {
		return providerUserInfo{}, fmt.Errorf("プロバイダ%sからアクセストークンを取得できませんでした", provider.name)
	}

	var info providerUserInfo
	if err := s.oauthClient.GetJSONWithBearer(ctx, provider.userinfoURL, token.AccessToken, &info); err != nil {
		return providerUserInfo{}, fmt.Errorf("ユーザー情報の取得に失敗: %w", err)
	}
	return info, nil
}

// findOrCreateFederatedUser はプロバイダのメールアドレスでユーザーを検索し、
// 存在しない場合は部分作成状態で新規作成する。2つ目の戻り値は新規作成されたかを表す。
// 同一メールアドレスで同時にコールバックが到達した場合、作成の競合に敗れた側は
// 既存レコードを取得し直すため、ユーザーが重複して作成されることはない。
func (s *Server) findOrCreateFederatedUser(ctx context.Context, provider oauthProvider, info providerUserInfo) (db.User, bool, error) {
	u, err := s.queries.GetUserByEmail(ctx, info.Email)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return db.User{}, false, err
	}

	id := uuid.New().String()
	if err := s.queries.CreateUser(ctx, db.CreateUserParams{
		ID:             id,
		Email:          info.Email,
		Role:           db.RoleUser,
		Status:         db.StatusPartiallyCreated,
		Provider:       provider.name,
		ProviderUserID: info.providerID(),
	}); err != nil {
		if db.IsUniqueViolation(err) {
			existing, err := s.queries.GetUserByEmail(ctx, info.Email)
			if err != nil {
				return db.User{}, false, err
			}
			return existing, false, nil
		}
		return db.User{}, false, err
	}

	created, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		return db.User{}, false, err
	}
	return created, true, nil
}
