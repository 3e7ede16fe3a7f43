package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strconv"
	"testing"
	"time"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/catalog"
	"github.com/trezcool/safari/core/user"
	emailsvc "github.com/trezcool/safari/services/email"
	inmemdb "github.com/trezcool/safari/storage/database/inmem"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()

	// set up DB & repos
	repos := inmemdb.NewRepositories(inmemdb.Open())
	usrRepo = repos.Users

	// set up services
	conf := core.NewTestConfig()
	validate, translator := catalog.NewValidator()
	svcs := catalog.NewServices(conf, repos, emailsvc.NewConsoleServiceMock(conf), validate, translator, core.NopLogger())

	// start CLI
	return &commandLine{
		usrRepo: usrRepo,
		svcs:    svcs,
		logger:  core.NopLogger(),
	}
}

func createUser(t *testing.T, uname, email, pwd string) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{Name: uname, Username: uname, Email: email, Roles: []string{user.RoleStaff}, CreatedAt: now, UpdatedAt: now}
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	t.Helper()
	switch {
	case err == nil:
		if tt.wantErr != nil || tt.wantErrStr != "" {
			t.Errorf("cli.run() error = nil, wantErr %v %s", tt.wantErr, tt.wantErrStr)
		}
	case tt.wantErr != nil:
		if err != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
		}
	default:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		if dir != "migrations" {
			return fmt.Errorf("unexpected migrations dir %q", dir)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "hero_slides_video", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	existing := createUser(t, "amani", "amani@test.cd", "old-pass")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no email", args: []string{"adduser", "-username", "neema"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-username", "neema", "-email", "neema@test.cd"}, wantErr: errHelp},
		{name: "create", args: []string{"adduser", "-username", "Neema", "-email", "Neema@test.cd", "-name", "Neema K"}, extra: extra{pwd: "s3cret-pass"}},
		{name: "update existing as admin", args: []string{"adduser", "-username", existing.Username, "-email", existing.Email, "-admin"}, extra: extra{pwd: "n3w-pass"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	ctx := context.Background()
	created, err := usrRepo.GetUser(ctx, user.GetFilter{Username: "neema"})
	if err != nil {
		t.Fatalf("GetUser() failed, %v", err)
	}
	if created.Email != "neema@test.cd" || created.Name != "Neema K" || !created.Active() {
		t.Errorf("created user = %+v", created)
	}
	if err = created.CheckPassword("s3cret-pass"); err != nil {
		t.Errorf("created user password not set: %v", err)
	}

	updated, err := usrRepo.GetUser(ctx, user.GetFilter{ID: existing.ID})
	if err != nil {
		t.Fatalf("GetUser() failed, %v", err)
	}
	if !updated.IsOwner() {
		t.Errorf("updated user roles = %v; want all roles", updated.Roles)
	}
	if bytes.Equal(updated.PasswordHash, existing.PasswordHash) {
		t.Error("failed to update password")
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := createUser(t, "awe", "awe@test.cd", "mdr")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", "AWE@test.cd"}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			checkErr(t, tt, err)
			if err != nil {
				return
			}
			refreshedUsr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
			if err != nil {
				t.Fatalf("GetUser() failed, %v", err)
			}
			if err = refreshedUsr.CheckPassword(tt.extra.(extra).pwd); err != nil {
				t.Error("failed to update new password")
			}
		})
	}
}

func Test_commandLine_seed(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	tests := []cliTest{
		{name: "missing file", args: []string{"seed", "-file", "/nonexistent/catalog.yaml"}, wantErrStr: "reading catalog.yaml: open catalog.yaml: no such file or directory"},
		{name: "embedded catalog", args: []string{"seed"}},
		{name: "embedded catalog again", args: []string{"seed"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	pages, err := cli.svcs.Pages.List(ctx, core.ListQuery{Page: 1, PerPage: 100})
	if err != nil {
		t.Fatalf("Pages.List() failed, %v", err)
	}
	if pages.Pagination.Total == 0 {
		t.Error("seed created no pages")
	}
	total := pages.Pagination.Total

	// a second run finds every slug and creates nothing
	if err = cli.seed(""); err != nil {
		t.Fatalf("seed() failed, %v", err)
	}
	pages, err = cli.svcs.Pages.List(ctx, core.ListQuery{Page: 1, PerPage: 100})
	if err != nil {
		t.Fatalf("Pages.List() failed, %v", err)
	}
	if pages.Pagination.Total != total {
		t.Errorf("second seed run: %d pages, want %d", pages.Pagination.Total, total)
	}
}
