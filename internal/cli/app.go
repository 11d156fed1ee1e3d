// Package cli implements the todo command-line client. Session state lives
// in a session.Store so a login survives between invocations.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/yao-todolist/todo-api/internal/client"
	"github.com/yao-todolist/todo-api/internal/session"
)

// ErrNotLoggedIn is returned by commands that need a session.
var ErrNotLoggedIn = errors.New("not logged in, run: todo login")

const usage = `usage: todo [flags] <command> [args]

commands:
  register -name N -email E [-password P]
  login    -name N -email E [-password P]
  logout
  status
  add      [-key K] <text>
  list
`

type App struct {
	api     *client.Client
	store   *session.Store
	storage session.Storage
	in      *bufio.Reader
	out     io.Writer
}

// NewApp wires an App over an API client and a loaded session store that
// share storage.
func NewApp(api *client.Client, store *session.Store, storage session.Storage, in io.Reader, out io.Writer) *App {
	return &App{
		api:     api,
		store:   store,
		storage: storage,
		in:      bufio.NewReader(in),
		out:     out,
	}
}

// Run executes one command. args excludes the program name and global flags.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return errors.New("missing command")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout(ctx)
	case "status":
		return a.status()
	case "add":
		return a.add(ctx, rest)
	case "list":
		return a.list(ctx)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	}
	fmt.Fprint(a.out, usage)
	return fmt.Errorf("unknown command %q", cmd)
}

type credentialFlags struct {
	name, email, password string
}

func (a *App) parseCredentials(cmd string, args []string) (credentialFlags, error) {
	var c credentialFlags
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(a.out)
	fs.StringVar(&c.name, "name", "", "account name")
	fs.StringVar(&c.email, "email", "", "account email")
	fs.StringVar(&c.password, "password", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return c, err
	}
	if c.name == "" || c.email == "" {
		return c, errors.New("-name and -email are required")
	}
	if c.password == "" {
		p, err := a.readPassword()
		if err != nil {
			return c, err
		}
		c.password = p
	}
	return c, nil
}

// readPassword reads without echo from a terminal, or a plain line otherwise.
func (a *App) readPassword() (string, error) {
	fmt.Fprint(a.out, "Password: ")
	if f, ok := a.outFile(); ok && term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(f)
		return string(b), err
	}
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *App) outFile() (*os.File, bool) {
	f, ok := a.out.(*os.File)
	return f, ok
}

func (a *App) register(ctx context.Context, args []string) error {
	c, err := a.parseCredentials("register", args)
	if err != nil {
		return err
	}
	id, err := a.api.Register(ctx, c.name, c.email, c.password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "registered %s (id %d)\n", c.name, id)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	c, err := a.parseCredentials("login", args)
	if err != nil {
		return err
	}
	res, err := a.api.Login(ctx, c.name, c.email, c.password)
	if err != nil {
		return err
	}

	if err := a.store.Login(ctx, res.UserName, strconv.FormatInt(res.UserID, 10)); err != nil {
		return err
	}
	if err := a.storage.SetItem(ctx, client.TokenKey, res.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	fmt.Fprintf(a.out, "logged in as %s\n", res.UserName)
	return nil
}

func (a *App) logout(ctx context.Context) error {
	err := a.store.Logout(ctx)
	if rerr := a.storage.RemoveItem(ctx, client.TokenKey); rerr != nil {
		err = errors.Join(err, fmt.Errorf("remove token: %w", rerr))
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "logged out")
	return nil
}

func (a *App) status() error {
	st := a.store.State()
	if !st.IsLoggedIn {
		fmt.Fprintln(a.out, "not logged in")
		return nil
	}
	fmt.Fprintf(a.out, "logged in as %s (id %s)\n", st.UserName, st.UserID)
	return nil
}

func (a *App) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(a.out)
	key := fs.String("key", "", "Idempotency-Key for safe retries")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text := strings.Join(fs.Args(), " ")
	if text == "" {
		return errors.New("task text is required")
	}

	st := a.store.State()
	if !st.IsLoggedIn {
		return ErrNotLoggedIn
	}

	id, err := a.api.CreateTask(ctx, text, st.UserID, *key)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "added task %d\n", id)
	return nil
}

func (a *App) list(ctx context.Context) error {
	st := a.store.State()
	if !st.IsLoggedIn {
		return ErrNotLoggedIn
	}

	tasks, err := a.api.ListTasks(ctx, st.UserID)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "no tasks")
		return nil
	}
	for _, t := range tasks {
		mark := " "
		if t.Status {
			mark = "x"
		}
		fmt.Fprintf(a.out, "[%s] %d  %s\n", mark, t.CreateID, t.Text)
	}
	return nil
}
