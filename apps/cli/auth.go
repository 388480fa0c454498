package main

import (
	"context"
	"syscall"

	"github.com/trezcool/hydrofarm/core/session"
)

func (cli *commandLine) login(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("login")
	code := fs.String("code", "", "The class code handed out by your school.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireFlag(fs, *code != ""); err != nil {
		return err
	}

	resp, err := cli.authSvc.LoginWithCode(ctx, *code)
	if err != nil {
		cli.printf("Login failed: %v\n", err)
		return err
	}
	cli.printf("Welcome, class %s (%s)!\n", resp.Class.Name, session.ParseRole(resp.Role))
	cli.printf("-> %s\n", session.DashboardPath(resp.Class.ID))
	return nil
}

func (cli *commandLine) adminLogin(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("admin-login")
	email := fs.String("email", "", "The administrator email. The password will be prompted next.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireFlag(fs, *email != ""); err != nil {
		return err
	}

	cli.printf("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	cli.println()
	if err != nil {
		return err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return errHelp
	}

	resp, err := cli.authSvc.LoginAsAdmin(ctx, *email, string(pwd))
	if err != nil {
		cli.printf("Login failed: %v\n", err)
		return err
	}
	cli.printf("Welcome, %s (%s)!\n", resp.Admin.Name, resp.Admin.SchoolName)
	cli.printf("-> %s\n", session.AdminPath)
	return nil
}

// logout always ends the local session; a backend failure is only reported.
func (cli *commandLine) logout(ctx context.Context) error {
	if err := cli.authSvc.Logout(ctx); err != nil {
		cli.printf("warning: %v\n", err)
	}
	cli.println("Logged out.")
	return nil
}

func (cli *commandLine) whoami() error {
	cur, err := cli.sess.Current()
	if err == session.ErrNoSession {
		cli.println("Not logged in.")
		return nil
	}
	if err != nil {
		return err
	}

	switch cur.Role {
	case session.RoleAdmin:
		cli.printf("%s, administrator of %s\n", cur.Identity.Name, cur.Identity.SchoolName)
	case session.RoleGuest:
		cli.printf("Class %s #%d (guest, read-only)\n", cur.Identity.Name, cur.Identity.ID)
	default:
		cli.printf("Class %s #%d (student)\n", cur.Identity.Name, cur.Identity.ID)
	}
	return nil
}
