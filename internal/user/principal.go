package user

import (
	"github.com/nao1215/userhub/internal/user/db"
	"github.com/nao1215/userhub/pkg/token"
)

// toPrincipal は永続化されたユーザーレコードを認証Principalへ変換する。
// Principalはリクエスト処理中のみ有効で、レコードの識別情報のみを持つ。
func toPrincipal(u db.User) token.Principal {
	return token.Principal{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
	}
}

// issueToken はユーザーレコードからアクセストークンを発行する。
func (s *Server) issueToken(u db.User) (string, error) {
	p := toPrincipal(u)
	return s.tokens.Current().Issue(p.UserID, p.Email, p.Role)
}
