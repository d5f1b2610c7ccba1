package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Requirement はパスに対するアクセス要件を表す。
type Requirement int

const (
	// RequirementOpen は認証なしでアクセス可能であることを表す。
	RequirementOpen Requirement = iota
	// RequirementAuthenticated は有効なPrincipalを要求することを表す。
	RequirementAuthenticated
)

// Rule は1件の認可ルール。パスパターンとメソッドの組に対して要件を定める。
type Rule struct {
	// Method は対象のHTTPメソッド。"*"は全メソッドに一致する。
	Method string
	// Path は対象のパスパターン。"*"は1セグメント、"**"は残り全体に一致する。
	Path string
	// Requirement はアクセス要件。
	Requirement Requirement
}

// Policy は宣言的な認可ルールの集合。
// ルールは宣言順に評価され、最初に一致したルールが適用される。
// どのルールにも一致しないパスは認証必須として扱う（明示的なデフォルト）。
type Policy struct {
	rules []Rule
}

// NewPolicy は指定されたルールから認可ポリシーを生成する。
func NewPolicy(rules []Rule) *Policy {
	return &Policy{rules: rules}
}

// Decide はリクエストのメソッド・パス・認証状態からアクセス可否を判定する。
// 純粋な判定関数であり、副作用を持たない。
func (p *Policy) Decide(method, path string, authenticated bool) bool {
	for _, r := range p.rules {
		if r.Method != "*" && r.Method != method {
			continue
		}
		if !matchPath(r.Path, path) {
			continue
		}
		if r.Requirement == RequirementOpen {
			return true
		}
		return authenticated
	}
	// 一致するルールがないパスは認証必須
	return authenticated
}

// Enforce は認可ポリシーを適用するミドルウェアを返す。
// Authミドルウェアより後に適用すること。認証必須のパスにPrincipalなしで
// アクセスした場合、内部情報を含まない固定メッセージとともに401を返す。
func Enforce(policy *Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, authenticated := CurrentPrincipal(c)
		if !policy.Decide(c.Request.Method, c.Request.URL.Path, authenticated) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "認証が必要です",
			})
			return
		}
		c.Next()
	}
}

// matchPath はパスパターンとリクエストパスをセグメント単位で照合する。
// "*"は任意の1セグメント、"**"はそれ以降のすべてのセグメント（空を含む）に一致する。
func matchPath(pattern, path string) bool {
	patSegs := splitPath(pattern)
	pathSegs := splitPath(path)

	for i, seg := range patSegs {
		if seg == "**" {
			return true
		}
		if i >= len(pathSegs) {
			return false
		}
		if seg != "*" && seg != pathSegs[i] {
			return false
		}
	}
	return len(patSegs) == len(pathSegs)
}

// splitPath はパスを空セグメントを除いて分割する。
func splitPath(p string) []string {
	raw := strings.Split(strings.Trim(p, "/"), "/")
	segs := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}
