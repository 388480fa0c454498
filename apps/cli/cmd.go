package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/hydrofarm/core"
	"github.com/trezcool/hydrofarm/core/admin"
	"github.com/trezcool/hydrofarm/core/auth"
	"github.com/trezcool/hydrofarm/core/dashboard"
	"github.com/trezcool/hydrofarm/core/learning"
	"github.com/trezcool/hydrofarm/core/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

// redirectError is returned when the guard (or the backend) sends the user elsewhere.
type redirectError struct {
	path string
}

func (e *redirectError) Error() string {
	return "redirected to " + e.path
}

type commandLine struct {
	out io.Writer
	in  *bufio.Reader

	sess     *session.Context
	guard    *session.Guard
	authSvc  *auth.Service
	dashSvc  *dashboard.Service
	learnSvc *learning.Service
	adminSvc *admin.Service

	translator ut.Translator
	logger     core.Logger
	loc        *time.Location
	now        func() time.Time
}

func newCommandLine(
	backend core.Backend,
	sess *session.Context,
	validate *validator.Validate,
	translator ut.Translator,
	logger core.Logger,
	loc *time.Location,
) *commandLine {
	return &commandLine{
		out:        os.Stdout,
		in:         bufio.NewReader(os.Stdin),
		sess:       sess,
		guard:      session.NewGuard(sess),
		authSvc:    auth.NewService(backend, sess, validate, logger),
		dashSvc:    dashboard.NewService(backend),
		learnSvc:   learning.NewService(backend),
		adminSvc:   admin.NewService(backend, validate),
		translator: translator,
		logger:     logger,
		loc:        loc,
		now:        time.Now,
	}
}

func (cli *commandLine) printUsage() {
	cli.println("Usage:")
	cli.println("  login -code CODE                      - log in to a class (student or guest code)")
	cli.println("  admin-login -email EMAIL              - log in as administrator; the password is prompted")
	cli.println("  logout                                - end the session")
	cli.println("  whoami                                - show the current session")
	cli.println("  dashboard -class ID                   - show beds, to-dos and badges")
	cli.println("  todo -class ID -id TODO               - toggle a to-do")
	cli.println("  graphs -class ID [-range 24h|7d]      - show the sensor history")
	cli.println("  quiz -class ID                        - answer today's quizzes")
	cli.println("  classes list|create|update|delete     - manage classes (admin)")
	cli.println("  beds list|create|update|delete        - manage hydroponic beds (admin)")
}

func (cli *commandLine) println(a ...interface{}) {
	_, _ = fmt.Fprintln(cli.out, a...)
}

func (cli *commandLine) printf(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(cli.out, format, a...)
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parse maps -h to errHelp.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	return nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()
	cmd, rest := args[1], args[2:]

	var err error
	switch cmd {
	case "login":
		err = cli.login(ctx, rest)
	case "admin-login":
		err = cli.adminLogin(ctx, rest)
	case "logout":
		err = cli.logout(ctx)
	case "whoami":
		err = cli.whoami()
	case "dashboard":
		err = cli.dashboard(ctx, rest)
	case "todo":
		err = cli.toggleTodo(ctx, rest)
	case "graphs":
		err = cli.graphs(ctx, rest)
	case "quiz":
		err = cli.quiz(ctx, rest)
	case "classes":
		err = cli.classes(ctx, rest)
	case "beds":
		err = cli.beds(ctx, rest)
	default:
		cli.printUsage()
		return errHelp
	}
	if err != nil && err != errHelp {
		cli.report(err)
	}
	return err
}

// report prints err the way the pages display it: inline field errors, or a single message.
func (cli *commandLine) report(err error) {
	if flds := core.FieldErrors(err, cli.translator); len(flds) > 0 {
		keys := make([]string, 0, len(flds))
		for k := range flds {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			cli.printf("  %s: %s\n", k, flds[k])
		}
		return
	}
	switch {
	case core.IsTimeout(err):
		cli.println("The request timed out. Check your connection and try again.")
	case core.IsNetworkError(err):
		cli.println("Could not reach the server.")
	}
}

// follow turns a guard decision into a redirect error.
func (cli *commandLine) follow(d session.Decision) error {
	if d.Allowed() {
		return nil
	}
	return cli.redirectTo(d.Path)
}

func (cli *commandLine) redirectTo(path string) error {
	if path == "" {
		path = session.LoginPath
	}
	cli.printf("-> %s\n", path)
	return &redirectError{path: path}
}

func requireFlag(fs *flag.FlagSet, ok bool) error {
	if !ok {
		fs.Usage()
		return errHelp
	}
	return nil
}

func yes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
