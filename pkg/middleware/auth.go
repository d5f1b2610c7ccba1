package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/userhub/pkg/token"
)

// contextKeyPrincipal はGinコンテキストにPrincipalを格納するためのキー。
const contextKeyPrincipal = "principal"

// headerKeyUserID はユーザーIDを伝播するためのHTTPヘッダーキー。
const headerKeyUserID = "X-User-ID"

// Auth はリクエスト認証フィルタを返す。
//
// Authorizationヘッダーからベアラートークンを抽出して検証し、成功した場合のみ
// リクエストスコープのコンテキストにPrincipalを設定する。トークンが存在しない、
// または無効・期限切れの場合でもリクエストは中断しない。未認証のまま後続へ進め、
// 拒否するかどうかの判断はEnforce（認可ポリシー）に委ねる。
// これにより、不正なトークンを持っていても公開パスには到達できる。
func Auth(tokens *token.Rotator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := extractBearer(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		principal, err := tokens.Current().Verify(raw)
		if err != nil {
			// 検証失敗は匿名リクエストとして扱う。ここでは拒否しない。
			c.Next()
			return
		}

		c.Set(contextKeyPrincipal, principal)
		c.Header(headerKeyUserID, principal.UserID)
		c.Next()
	}
}

// extractBearer はAuthorizationヘッダー値からベアラートークンを取り出す。
// ヘッダーが空、またはBearer形式でない場合はfalseを返す。
func extractBearer(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return "", false
	}
	return raw, true
}

// CurrentPrincipal はGinコンテキストから認証済みPrincipalを取得する。
// Authミドルウェアが事前に適用されている必要がある。
// 未認証リクエストの場合はfalseを返す。
func CurrentPrincipal(c *gin.Context) (token.Principal, bool) {
	v, ok := c.Get(contextKeyPrincipal)
	if !ok {
		return token.Principal{}, false
	}
	p, ok := v.(token.Principal)
	return p, ok
}
