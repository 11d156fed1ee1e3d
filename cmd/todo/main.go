package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/yao-todolist/todo-api/internal/cli"
	"github.com/yao-todolist/todo-api/internal/client"
	"github.com/yao-todolist/todo-api/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	apiURL := flag.String("api", envOr("TODO_API_URL", client.DefaultBaseURL), "API base URL")
	sessionPath := flag.String("session", envOr("TODO_SESSION", defaultSessionPath()), "session file")
	flag.Parse()

	storage, err := session.OpenSQLite(ctx, *sessionPath)
	if err != nil {
		return err
	}
	defer storage.Close()

	store, err := session.New(ctx, storage)
	if err != nil {
		return err
	}

	app := cli.NewApp(client.New(*apiURL, storage), store, storage, os.Stdin, os.Stdout)
	return app.Run(ctx, flag.Args())
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "todo-session.db"
	}
	return filepath.Join(dir, "todo", "session.db")
}
