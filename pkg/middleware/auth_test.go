package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/userhub/pkg/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testSecret はテスト用のJWT署名秘密鍵。
const testSecret = "test-secret-key-for-unit-tests"

// newTestRotator はテスト用のトークンRotatorを生成する。
func newTestRotator() *token.Rotator {
	return token.NewRotator(token.New(testSecret, time.Hour))
}

// TestAuth は認証フィルタを検証する。
func TestAuth(t *testing.T) {
	t.Parallel()

	// whoami はPrincipalの有無と内容を返すテスト用ハンドラ。
	whoami := func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"authenticated": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"authenticated": true, "user_id": p.UserID, "email": p.Email})
	}

	t.Run("有効なトークンでPrincipalがコンテキストに設定されること", func(t *testing.T) {
		t.Parallel()

		tokens := newTestRotator()
		raw, err := tokens.Current().Issue("user-123", "test@example.com", "USER")
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		router := gin.New()
		router.Use(Auth(tokens))
		router.GET("/whoami", whoami)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if got := w.Header().Get("X-User-ID"); got != "user-123" {
			t.Errorf("X-User-ID = %q, want %q", got, "user-123")
		}
		body := w.Body.String()
		if want := `"user_id":"user-123"`; !strings.Contains(body, want) {
			t.Errorf("レスポンスボディ = %s, want %s を含む", body, want)
		}
	})

	t.Run("トークンなしでもリクエストが中断されないこと", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Auth(newTestRotator()))
		router.GET("/whoami", whoami)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if want := `"authenticated":false`; !strings.Contains(w.Body.String(), want) {
			t.Errorf("レスポンスボディ = %s, want %s を含む", w.Body.String(), want)
		}
	})

	t.Run("無効なトークンでは未認証のまま後続処理へ進むこと", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Auth(newTestRotator()))
		router.GET("/whoami", whoami)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if want := `"authenticated":false`; !strings.Contains(w.Body.String(), want) {
			t.Errorf("レスポンスボディ = %s, want %s を含む", w.Body.String(), want)
		}
	})

	t.Run("期限切れトークンでは未認証のまま後続処理へ進むこと", func(t *testing.T) {
		t.Parallel()

		// 有効期間が負のCodecで即座に期限切れのトークンを作る
		expired := token.New(testSecret, -time.Minute)
		raw, err := expired.Issue("user-exp", "exp@example.com", "USER")
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		router := gin.New()
		router.Use(Auth(newTestRotator()))
		router.GET("/whoami", whoami)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if want := `"authenticated":false`; !strings.Contains(w.Body.String(), want) {
			t.Errorf("レスポンスボディ = %s, want %s を含む", w.Body.String(), want)
		}
	})

	t.Run("Bearer形式でないAuthorizationヘッダーは無視されること", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Auth(newTestRotator()))
		router.GET("/whoami", whoami)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if want := `"authenticated":false`; !strings.Contains(w.Body.String(), want) {
			t.Errorf("レスポンスボディ = %s, want %s を含む", w.Body.String(), want)
		}
	})

	t.Run("ローテーション後は旧鍵のトークンが未認証扱いになること", func(t *testing.T) {
		t.Parallel()

		tokens := newTestRotator()
		raw, err := tokens.Current().Issue("user-rot", "rot@example.com", "USER")
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		router := gin.New()
		router.Use(Auth(tokens))
		router.GET("/whoami", whoami)

		tokens.Rotate(token.New("rotated-secret", time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if want := `"authenticated":false`; !strings.Contains(w.Body.String(), want) {
			t.Errorf("レスポンスボディ = %s, want %s を含む", w.Body.String(), want)
		}
	})
}

// TestExtractBearer はベアラートークンの抽出処理を検証する。
func TestExtractBearer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{name: "正常なBearerヘッダー", header: "Bearer abc.def.ghi", want: "abc.def.ghi", wantOK: true},
		{name: "空のヘッダー", header: "", want: "", wantOK: false},
		{name: "Bearerプレフィックスのみ", header: "Bearer ", want: "", wantOK: false},
		{name: "Basic認証ヘッダー", header: "Basic dXNlcg==", want: "", wantOK: false},
		{name: "プレフィックスなしのトークン", header: "abc.def.ghi", want: "", wantOK: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := extractBearer(tt.header)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("extractBearer(%q) = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

