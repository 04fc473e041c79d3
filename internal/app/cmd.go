package app

import (
	"fmt"
	"io"
	"strings"
)

// Command はjournalバイナリのサブコマンド。
type Command string

const (
	// CommandServe はWebページを配信するサーバーを起動する。引数なしの場合もこれになる。
	CommandServe Command = "serve"
	// CommandWorker は期限切れセッションを定期削除するワーカーを起動する。
	CommandWorker Command = "worker"
	// CommandMigrate は埋め込みスキーマをDBに適用して終了する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中のサーバーの/healthに問い合わせる。
	// シェルのないdistrolessイメージでDockerのHEALTHCHECKに使う。
	CommandHealthcheck Command = "healthcheck"
	// CommandHelp はサブコマンドの一覧を表示する。
	CommandHelp Command = "help"
)

// commands は表示順を兼ねたサブコマンドの一覧。
var commands = []struct {
	cmd     Command
	summary string
}{
	{CommandServe, "start the journal web server (default)"},
	{CommandWorker, "delete expired sessions on SESSION_CLEANUP_INTERVAL"},
	{CommandMigrate, "apply database migrations and exit"},
	{CommandHealthcheck, "check /health on SERVER_PORT (container health check)"},
	{CommandHelp, "show this help"},
}

// ParseCommand はコマンドライン引数の先頭からサブコマンドを決める。
// 引数がなければCommandServe、-h/--helpはCommandHelpとし、それ以外の未知の名前はエラーにする。
// 2つ目以降の引数は無視する。
func ParseCommand(args []string) (Command, error) {
	if len(args) == 0 {
		return CommandServe, nil
	}

	name := args[0]
	if name == "-h" || name == "--help" {
		return CommandHelp, nil
	}
	for _, c := range commands {
		if string(c.cmd) == name {
			return c.cmd, nil
		}
	}
	return "", fmt.Errorf("unknown command %q (run \"journal help\" for usage)", name)
}

// writeUsage はサブコマンドの一覧をwに書き出す。
func writeUsage(w io.Writer) {
	var b strings.Builder
	b.WriteString("Usage: journal [command]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "  %-12s %s\n", c.cmd, c.summary)
	}
	io.WriteString(w, b.String())
}
