package user

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/nao1215/userhub/internal/user/db"
	"github.com/nao1215/userhub/pkg/event"
	"github.com/nao1215/userhub/pkg/httpclient"
	"github.com/nao1215/userhub/pkg/middleware"
	"github.com/nao1215/userhub/pkg/token"
)

// Server はユーザーアカウントサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はクエリ実行オブジェクト。
	queries *db.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// tokens はアクセストークンの発行・検証を行うRotator。
	tokens *token.Rotator
	// providers はOAuth2プロバイダの設定。キーはプロバイダ名。
	providers map[string]oauthProvider
	// oauthClient はOAuth2プロバイダとの通信に使用するHTTPクライアント。
	oauthClient *httpclient.Client
	// successRedirectURL はOAuth2認証完了後のリダイレクト先。
	// 空文字列の場合はリダイレクトせずJSONでトークンを返す。
	successRedirectURL string
}

// NewServer は新しいユーザーサービスサーバーを生成する。
// SQLiteデータベースの初期化とスキーマ作成を行う。
func NewServer(port string) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", getEnvOr("USERHUB_DB", "/data/userhub.db?_journal_mode=WAL&_busy_timeout=5000"))
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-key"
	}

	validity, err := time.ParseDuration(getEnvOr("JWT_VALIDITY", "24h"))
	if err != nil {
		return nil, fmt.Errorf("JWT_VALIDITYの解析に失敗: %w", err)
	}

	tokens := token.NewRotator(token.New(jwtSecret, validity))

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{getEnvOr("FRONTEND_URL", "*")}))
	router.Use(middleware.Auth(tokens))
	router.Use(middleware.Enforce(defaultPolicy()))

	s := &Server{
		router:             router,
		port:               port,
		queries:            db.New(sqlDB),
		db:                 sqlDB,
		tokens:             tokens,
		providers:          newProviders(),
		oauthClient:        httpclient.New(""),
		successRedirectURL: os.Getenv("OAUTH2_SUCCESS_REDIRECT_URL"),
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// defaultPolicy はデフォルトの認可ルールを返す。
// 会員登録・ログイン・OAuth2・存在チェックのみ公開し、
// それ以外のパスはすべて認証必須とする。
func defaultPolicy() *middleware.Policy {
	return middleware.NewPolicy([]middleware.Rule{
		{Method: "*", Path: "/health", Requirement: middleware.RequirementOpen},
		{Method: "*", Path: "/oauth2/**", Requirement: middleware.RequirementOpen},
		{Method: http.MethodPost, Path: "/user-service/users", Requirement: middleware.RequirementOpen},
		{Method: http.MethodPost, Path: "/user-service/login", Requirement: middleware.RequirementOpen},
		{Method: http.MethodGet, Path: "/user-service/users/email/exists", Requirement: middleware.RequirementOpen},
		{Method: http.MethodGet, Path: "/user-service/users/nickname/exists", Requirement: middleware.RequirementOpen},
		{Method: "*", Path: "/**", Requirement: middleware.RequirementAuthenticated},
	})
}

// setupRoutes はAPIルーティングを設定する。
// 認証・認可はルーターに適用済みのミドルウェアが処理するため、
// 各ハンドラは認可済みのリクエストのみを受け取る。
func (s *Server) setupRoutes() {
	// OAuth2認証エンドポイント（公開）
	oauth2 := s.router.Group("/oauth2")
	{
		oauth2.GET("/authorize/:provider", s.handleOAuth2Authorize())
		oauth2.GET("/callback/:provider", s.handleOAuth2Callback())
	}

	api := s.router.Group("/user-service")
	{
		// 会員登録・ログイン（公開）
		api.POST("/users", s.handleSignUp())
		api.POST("/login", s.handleLogin())

		// 存在チェック（公開）
		api.GET("/users/email/exists", s.handleEmailExists())
		api.GET("/users/nickname/exists", s.handleNicknameExists())

		// 認証必須のエンドポイント
		api.GET("/users/me", s.handleGetCurrentUser())
		api.PATCH("/users/password", s.handleUpdatePassword())
		api.PATCH("/users/complete", s.handleCompleteProfile())
		api.GET("/users/audit", s.handleListAudit())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "userhub"})
	})
}

// signUpRequest は会員登録リクエストのボディ。
type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// handleSignUp は会員登録を行うハンドラを返す。
// メールアドレス・パスワード・ニックネームを検証し、パスワードはbcryptで
// ハッシュ化して保存する。重複時は409を返す。
func (s *Server) handleSignUp() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signUpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, ErrRequiredValue)
			return
		}

		if err := validateEmail(req.Email); err != nil {
			respondError(c, err)
			return
		}
		if err := validatePassword(req.Password); err != nil {
			respondError(c, err)
			return
		}
		if err := validateNickname(req.Nickname); err != nil {
			respondError(c, err)
			return
		}

		ctx := c.Request.Context()
		if exists, err := s.queries.ExistsByEmail(ctx, req.Email); err != nil {
			respondError(c, err)
			return
		} else if exists {
			respondError(c, ErrDuplicatedEmail)
			return
		}
		if exists, err := s.queries.ExistsByNickname(ctx, req.Nickname); err != nil {
			respondError(c, err)
			return
		} else if exists {
			respondError(c, ErrDuplicatedNickname)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, err)
			return
		}

		id := uuid.New().String()
		if err := s.queries.CreateUser(ctx, db.CreateUserParams{
			ID:       id,
			Email:    req.Email,
			Password: string(hash),
			Nickname: req.Nickname,
			Role:     db.RoleUser,
			Status:   db.StatusRegistered,
		}); err != nil {
			// 事前チェックの後に他のリクエストが同じ値で登録した場合の競合
			if db.IsUniqueViolation(err) {
				if strings.Contains(err.Error(), "nickname") {
					respondError(c, ErrDuplicatedNickname)
					return
				}
				respondError(c, ErrDuplicatedEmail)
				return
			}
			respondError(c, err)
			return
		}

		created, err := s.queries.GetUserByID(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}

		s.recordAudit(ctx, created.ID, event.TypeUserSignedUp, event.UserSignedUpData{
			Email:    created.Email,
			Nickname: created.Nickname,
		})

		c.JSON(http.StatusCreated, gin.H{
			"user_id":    created.ID,
			"created_at": created.CreatedAt,
		})
	}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin はメールアドレスとパスワードによるログインを行うハンドラを返す。
// 認証に成功した場合、アクセストークンを発行して返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, ErrRequiredValue)
			return
		}
		if req.Email == "" || req.Password == "" {
			respondError(c, ErrRequiredValue)
			return
		}

		ctx := c.Request.Context()
		u, err := s.queries.GetUserByEmail(ctx, req.Email)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondError(c, ErrNotFoundUser)
				return
			}
			respondError(c, err)
			return
		}

		// OAuth2経由の部分作成ユーザーはパスワードを持たないため、
		// プロフィール完成までパスワードログインできない
		if u.Status == db.StatusPartiallyCreated {
			c.JSON(http.StatusAccepted, gin.H{
				"message": msgUserPartiallyCreated,
				"user_id": u.ID,
			})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
			respondError(c, ErrInvalidCredentials)
			return
		}

		accessToken, err := s.issueToken(u)
		if err != nil {
			respondError(c, err)
			return
		}

		if err := s.queries.UpdateLastLoginAt(ctx, u.ID); err != nil {
			log.Printf("最終ログイン日時の更新に失敗: user_id=%s, error=%v", u.ID, err)
		}
		s.recordAudit(ctx, u.ID, event.TypeUserLoggedIn, event.UserLoggedInData{Method: "password"})

		c.JSON(http.StatusOK, gin.H{
			"user_id":      u.ID,
			"access_token": accessToken,
		})
	}
}

// handleEmailExists はメールアドレスの存在チェックを行うハンドラを返す。
func (s *Server) handleEmailExists() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Query("email")
		if email == "" {
			respondError(c, ErrRequiredValue)
			return
		}

		exists, err := s.queries.ExistsByEmail(c.Request.Context(), email)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"exists": exists})
	}
}

// handleNicknameExists はニックネームの存在チェックを行うハンドラを返す。
func (s *Server) handleNicknameExists() gin.HandlerFunc {
	return func(c *gin.Context) {
		nickname := c.Query("nickname")
		if nickname == "" {
			respondError(c, ErrRequiredValue)
			return
		}

		exists, err := s.queries.ExistsByNickname(c.Request.Context(), nickname)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"exists": exists})
	}
}

// handleGetCurrentUser は認証済みユーザー自身の情報を返すハンドラを返す。
func (s *Server) handleGetCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.CurrentPrincipal(c)
		if !ok {
			respondError(c, ErrUserHaveToSignIn)
			return
		}

		u, err := s.queries.GetUserByID(c.Request.Context(), p.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondError(c, ErrNotFoundUser)
				return
			}
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":       u.ID,
			"email":    u.Email,
			"nickname": u.Nickname,
			"role":     u.Role,
			"status":   u.Status,
			"provider": u.Provider,
		})
	}
}

// updatePasswordRequest はパスワード更新リクエストのボディ。
type updatePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// handleUpdatePassword は認証済みユーザーのパスワードを更新するハンドラを返す。
func (s *Server) handleUpdatePassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.CurrentPrincipal(c)
		if !ok {
			respondError(c, ErrUserHaveToSignIn)
			return
		}

		var req updatePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, ErrRequiredValue)
			return
		}
		if err := validatePassword(req.NewPassword); err != nil {
			respondError(c, err)
			return
		}

		ctx := c.Request.Context()
		u, err := s.queries.GetUserByID(ctx, p.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondError(c, ErrNotFoundUser)
				return
			}
			respondError(c, err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, err)
			return
		}

		if err := s.queries.UpdatePassword(ctx, db.UpdatePasswordParams{
			ID:       u.ID,
			Password: string(hash),
		}); err != nil {
			respondError(c, err)
			return
		}

		s.recordAudit(ctx, u.ID, event.TypePasswordUpdated, event.PasswordUpdatedData{})

		updated, err := s.queries.GetUserByID(ctx, u.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id":    updated.ID,
			"updated_at": updated.UpdatedAt,
		})
	}
}

// completeProfileRequest はプロフィール完成リクエストのボディ。
type completeProfileRequest struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

// handleCompleteProfile は部分作成状態のユーザーを本登録へ移行するハンドラを返す。
// アカウント状態は PARTIALLY_CREATED → REGISTERED へ遷移する。
func (s *Server) handleCompleteProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.CurrentPrincipal(c)
		if !ok {
			respondError(c, ErrUserHaveToSignIn)
			return
		}

		var req completeProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, ErrRequiredValue)
			return
		}
		if err := validateNickname(req.Nickname); err != nil {
			respondError(c, err)
			return
		}
		if err := validatePassword(req.Password); err != nil {
			respondError(c, err)
			return
		}

		ctx := c.Request.Context()
		u, err := s.queries.GetUserByID(ctx, p.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondError(c, ErrNotFoundUser)
				return
			}
			respondError(c, err)
			return
		}
		if u.Status != db.StatusPartiallyCreated {
			respondError(c, ErrAlreadyRegistered)
			return
		}

		if exists, err := s.queries.ExistsByNickname(ctx, req.Nickname); err != nil {
			respondError(c, err)
			return
		} else if exists {
			respondError(c, ErrDuplicatedNickname)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, err)
			return
		}

		if err := s.queries.CompleteProfile(ctx, db.CompleteProfileParams{
			ID:       u.ID,
			Nickname: req.Nickname,
			Password: string(hash),
			Status:   db.StatusRegistered,
		}); err != nil {
			if db.IsUniqueViolation(err) {
				respondError(c, ErrDuplicatedNickname)
				return
			}
			respondError(c, err)
			return
		}

		s.recordAudit(ctx, u.ID, event.TypeProfileCompleted, event.ProfileCompletedData{
			Nickname: req.Nickname,
		})

		c.JSON(http.StatusOK, gin.H{
			"user_id": u.ID,
			"status":  db.StatusRegistered,
		})
	}
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
