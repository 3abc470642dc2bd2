// Package admin implements the operator command line: creating users,
// setting their features and applying schema migrations.
package admin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/fintab/internal/common"
	"github.com/dmitrijs2005/fintab/internal/server/features"
	"github.com/dmitrijs2005/fintab/internal/server/migrator"
	"github.com/dmitrijs2005/fintab/internal/server/services"
)

const usage = `usage: fintab-admin <command> [args]

commands:
  create-user                      create an activated user (prompts for the fields)
  features <username> [name...]    replace the features of a user
  migrations                       list pending migrations
  migrate                          apply pending migrations
`

var ErrUsage = errors.New("invalid command line")

type App struct {
	users    *services.UserService
	migrator migrator.Migrator
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(us *services.UserService, m migrator.Migrator, in io.Reader, out io.Writer) *App {
	return &App{users: us, migrator: m, reader: bufio.NewReader(in), out: out}
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}

	switch args[0] {
	case "create-user":
		return a.createUser(ctx)
	case "features":
		if len(args) < 2 {
			fmt.Fprint(a.out, usage)
			return ErrUsage
		}
		return a.setFeatures(ctx, args[1], args[2:])
	case "migrations":
		return a.listMigrations(ctx)
	case "migrate":
		return a.runMigrations(ctx)
	default:
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}
}

// createUser registers a user and grants the activated feature set right
// away, skipping the email round trip.
func (a *App) createUser(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	u, err := a.users.Create(ctx, services.CreateUserInput{Username: username, Email: email, Password: password})
	if err != nil {
		return describe(err)
	}
	u, err = a.users.SetFeatures(ctx, u.Username, features.Names(features.ActivatedUserFeatures...))
	if err != nil {
		return describe(err)
	}

	fmt.Fprintf(a.out, "created %s (%s) with features %s\n", u.Username, u.ID, strings.Join(u.Features, ","))
	return nil
}

func (a *App) setFeatures(ctx context.Context, username string, names []string) error {
	u, err := a.users.SetFeatures(ctx, username, names)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(a.out, "%s now has features [%s]\n", u.Username, strings.Join(u.Features, ","))
	return nil
}

func (a *App) listMigrations(ctx context.Context) error {
	pending, err := a.migrator.ListPending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(a.out, "no pending migrations")
		return nil
	}
	for _, m := range pending {
		fmt.Fprintf(a.out, "%d\t%s\n", m.Timestamp, m.Name)
	}
	return nil
}

func (a *App) runMigrations(ctx context.Context) error {
	applied, err := a.migrator.RunPending(ctx)
	if err != nil {
		return err
	}
	for _, m := range applied {
		fmt.Fprintf(a.out, "applied %s\n", m.Name)
	}
	fmt.Fprintf(a.out, "%d migration(s) applied\n", len(applied))
	return nil
}

// describe turns a service error into the message an operator should see.
func describe(err error) error {
	e := common.AsError(err)
	if e.Kind == common.KindInternal {
		return err
	}
	return fmt.Errorf("%s: %s. %s", e.Kind.Name(), e.Message, e.Action)
}
