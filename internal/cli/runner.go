package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"todolist/internal/client"
	"todolist/internal/core/domain"
	"todolist/internal/core/model/request"
)

const ServerEnvVar = "TODO_SERVER"

// Options wire the runner to its environment.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Now    func() time.Time
	// RunTUI replaces the interactive program, mainly in tests.
	RunTUI func(ctx context.Context, board *client.Board) error
}

func (o *Options) defaults() {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.RunTUI == nil {
		o.RunTUI = runTUI
	}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	opt.defaults()

	global := flag.NewFlagSet("todo", flag.ContinueOnError)
	global.SetOutput(opt.Stderr)
	server := global.String("server", envOr(ServerEnvVar, client.DefaultBaseURL), "to-do API base URL")
	global.Usage = func() { PrintHelp(opt.Stderr) }

	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	args = global.Args()
	if len(args) == 0 {
		PrintHelp(opt.Stderr)
		return 2
	}

	r := &runner{
		opt:   opt,
		board: client.NewBoard(client.New(*server)),
	}

	cmd, rest := args[0], args[1:]

	switch cmd {
	case "help":
		PrintHelp(opt.Stdout)
		return 0
	case "list", "ls":
		return r.list(ctx, rest)
	case "add":
		return r.add(ctx, rest)
	case "edit":
		return r.edit(ctx, rest)
	case "done":
		return r.done(ctx, rest)
	case "rm":
		return r.remove(ctx, rest)
	case "tui":
		return r.tui(ctx)
	}

	fail(opt.Stderr, "unknown subcommand: "+cmd)
	PrintHelp(opt.Stderr)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `todo - client for the to-do API

Usage:
  todo [--server URL] <subcommand> [flags] [args]

Subcommands:
  list [--sort default|priority|dueDate]          Show to-dos grouped by due day
  add [--due D] [--category C] [--priority P] <title...>
  edit <id> [--title T] [--due D] [--category C] [--priority P]
  done <id>                                        Toggle done
  rm <id>                                          Delete
  tui                                              Interactive board

The server defaults to $TODO_SERVER or http://localhost:8080.
`)
}

type runner struct {
	opt   Options
	board *client.Board
}

func (r *runner) list(ctx context.Context, args []string) int {
	fs := r.flagSet("list")
	sortFlag := fs.String("sort", string(domain.SortDefault), "default, priority or dueDate")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	mode, err := domain.ParseSortMode(*sortFlag)
	if err != nil {
		fail(r.opt.Stderr, err.Error())
		return 2
	}

	if err := r.board.Refresh(ctx); err != nil {
		return r.failed("list", err)
	}

	r.board.SetSort(mode)

	fmt.Fprintln(r.opt.Stdout, RenderBoard(r.board.View(r.opt.Now()), mode, -1))
	return 0
}

func (r *runner) add(ctx context.Context, args []string) int {
	fs := r.flagSet("add")
	due := fs.String("due", "", "due date, YYYY-MM-DD")
	category := fs.String("category", "", "category")
	priority := fs.String("priority", string(domain.DefaultPriority), "high, medium or low")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	title := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if title == "" {
		fail(r.opt.Stderr, "usage: todo add [flags] <title...>")
		return 2
	}

	created, err := r.board.Add(ctx, request.CreateTodoRequest{
		Title:    title,
		DueDate:  *due,
		Category: *category,
		Priority: *priority,
	})
	if err != nil {
		return r.failed("add", err)
	}

	ok(r.opt.Stdout, fmt.Sprintf("added #%d %s", created.ID, created.Title))
	return 0
}

func (r *runner) edit(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fail(r.opt.Stderr, "usage: todo edit <id> [flags]")
		return 2
	}

	id, code := r.parseID("edit", args[0])
	if code != 0 {
		return code
	}

	fs := r.flagSet("edit")
	title := fs.String("title", "", "new title")
	due := fs.String("due", "", "new due date, empty to clear")
	category := fs.String("category", "", "new category")
	priority := fs.String("priority", "", "new priority")

	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	var patch request.PatchTodoRequest

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			patch.Title = title
		case "due":
			patch.DueDate = due
		case "category":
			patch.Category = category
		case "priority":
			patch.Priority = priority
		}
	})

	if patch == (request.PatchTodoRequest{}) {
		fail(r.opt.Stderr, "edit: nothing to change")
		return 2
	}

	updated, err := r.board.Edit(ctx, id, patch)
	if err != nil {
		return r.failed("edit", err)
	}

	ok(r.opt.Stdout, fmt.Sprintf("updated #%d %s", updated.ID, updated.Title))
	return 0
}

func (r *runner) done(ctx context.Context, args []string) int {
	if len(args) != 1 {
		fail(r.opt.Stderr, "usage: todo done <id>")
		return 2
	}

	id, code := r.parseID("done", args[0])
	if code != 0 {
		return code
	}

	if err := r.board.Refresh(ctx); err != nil {
		return r.failed("done", err)
	}

	toggled, err := r.board.ToggleDone(ctx, id)
	if err != nil {
		return r.failed("done", err)
	}

	state := "not done"
	if toggled.IsDone {
		state = "done"
	}

	ok(r.opt.Stdout, fmt.Sprintf("#%d marked %s", toggled.ID, state))
	return 0
}

func (r *runner) remove(ctx context.Context, args []string) int {
	if len(args) != 1 {
		fail(r.opt.Stderr, "usage: todo rm <id>")
		return 2
	}

	id, code := r.parseID("rm", args[0])
	if code != 0 {
		return code
	}

	if err := r.board.Delete(ctx, id); err != nil {
		return r.failed("rm", err)
	}

	ok(r.opt.Stdout, fmt.Sprintf("deleted #%d", id))
	return 0
}

func (r *runner) tui(ctx context.Context) int {
	if err := r.board.Refresh(ctx); err != nil {
		return r.failed("tui", err)
	}

	if err := r.opt.RunTUI(ctx, r.board); err != nil {
		return r.failed("tui", err)
	}

	return 0
}

func (r *runner) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.opt.Stderr)
	return fs
}

func (r *runner) parseID(cmd, raw string) (int, int) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		fail(r.opt.Stderr, cmd+": not a number: "+raw)
		return 0, 2
	}
	return id, 0
}

func (r *runner) failed(cmd string, err error) int {
	fail(r.opt.Stderr, cmd+": "+err.Error())
	return 1
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
