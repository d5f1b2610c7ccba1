// ユーザーアカウントサービスのエントリポイント。
// 会員登録・ログイン・OAuth2認証・JWT発行を担当する。
// 認証はステートレスで、サーバー側にセッションを持たない。
package main

import (
	"log"
	"os"

	"github.com/nao1215/userhub/internal/user"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server, err := user.NewServer(port)
	if err != nil {
		log.Fatalf("ユーザーサービスの初期化に失敗: %v", err)
	}

	log.Printf("ユーザーサービスを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("ユーザーサービスの起動に失敗: %v", err)
	}
}
