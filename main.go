// Command journal は個人向けジャーナル（日記ブログ）Webアプリケーション。
//
// サブコマンド:
//
//	serve        Webサーバーを起動する（デフォルト）
//	worker       期限切れセッションのクリーンアップを定期実行する
//	migrate      データベースマイグレーションを適用する
//	healthcheck  /health に問い合わせる（コンテナのヘルスチェック用）
//	help         サブコマンドの一覧を表示する
package main

import (
	"fmt"
	"os"

	"github.com/vasantisuthar/journal/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "journal: %v\n", err)
		os.Exit(1)
	}
}
