package token

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// issuer はトークンのiss（発行者）クレームに設定する値。
const issuer = "userhub"

var (
	// ErrMissingToken はトークンが提示されなかったことを表す。
	ErrMissingToken = errors.New("トークンが存在しません")
	// ErrInvalidToken は署名検証または形式チェックに失敗したことを表す。
	ErrInvalidToken = errors.New("トークンが無効です")
	// ErrExpiredToken はトークンの有効期限が切れていることを表す。
	ErrExpiredToken = errors.New("トークンの有効期限が切れています")
)

// Principal はリクエストに紐づく認証済みユーザーの識別情報。
// 1リクエストの処理期間のみ有効で、永続化されない。
type Principal struct {
	// UserID はユーザーの一意識別子。
	UserID string
	// Email はユーザーのメールアドレス。
	Email string
	// Role はユーザーのロール（例: "USER"）。
	Role string
}

// Claims はJWTトークンのクレーム（ペイロード）を表す。
type Claims struct {
	jwt.RegisteredClaims
	// UserID は認証済みユーザーの一意識別子。
	UserID string `json:"user_id"`
	// Email はユーザーのメールアドレス。
	Email string `json:"email"`
	// Role はユーザーのロール。
	Role string `json:"role"`
}

// Codec はアクセストークンの発行・検証を行う。
// 署名鍵と有効期間は生成時に固定され、以降変更されない。
// すべてのメソッドは並行呼び出しに対して安全。
type Codec struct {
	// secret はHS256署名用の秘密鍵。
	secret []byte
	// validity はトークンの有効期間。
	validity time.Duration
	// now は現在時刻の取得関数。テストで差し替える。
	now func() time.Time
}

// New は新しいトークンCodecを生成する。
// secretは外部設定から注入すること。ソースコードに埋め込んではならない。
func New(secret string, validity time.Duration) *Codec {
	return &Codec{
		secret:   []byte(secret),
		validity: validity,
		now:      time.Now,
	}
}

// Issue はユーザー情報から署名付きアクセストークンを発行する。
// iat=現在時刻、exp=現在時刻+有効期間を設定する。
func (c *Codec) Issue(userID, email, role string) (string, error) {
	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(c.validity)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
		UserID: userID,
		Email:  email,
		Role:   role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、含まれるPrincipalを返す。
// 失敗は ErrMissingToken / ErrExpiredToken / ErrInvalidToken のいずれかを返す。
// 時刻比較は呼び出しごとに単一のnowを使用する。
func (c *Codec) Verify(raw string) (Principal, error) {
	if raw == "" {
		return Principal{}, ErrMissingToken
	}

	now := c.now()
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, ErrExpiredToken
		}
		return Principal{}, ErrInvalidToken
	}
	if !parsed.Valid {
		return Principal{}, ErrInvalidToken
	}

	return Principal{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

// Rotator は署名鍵ローテーションのためにCodecをアトミックに差し替える。
// 差し替えは全体が一括で行われ、検証途中で新旧の鍵が混在することはない。
type Rotator struct {
	codec atomic.Pointer[Codec]
}

// NewRotator は指定されたCodecを初期値とするRotatorを生成する。
func NewRotator(c *Codec) *Rotator {
	r := &Rotator{}
	r.codec.Store(c)
	return r
}

// Current は現在有効なCodecを返す。
func (r *Rotator) Current() *Codec {
	return r.codec.Load()
}

// Rotate はCodecを新しいものに差し替える。
// 以降の発行・検証はすべて新しいCodecで行われる。
func (r *Rotator) Rotate(c *Codec) {
	r.codec.Store(c)
}
