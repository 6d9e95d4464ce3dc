// Todoサービスのエントリポイント。
// ユーザー登録・ログイン・セッション認証と、ログインユーザー自身の
// Todoに対するCRUD操作を提供する。
package main

import (
	"log"
	"os"

	"github.com/CocaColaCat/to-with-auth/internal/todo"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server, err := todo.NewServer(port)
	if err != nil {
		log.Fatalf("Todoサーバーの初期化に失敗: %v", err)
	}

	log.Printf("Todoサービスを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("Todoサービスの起動に失敗: %v", err)
	}
}
