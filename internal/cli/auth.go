package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kopislukatan/storyapp/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a name, email and password and creates a new account.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.authService.Register(ctx, name, email, string(password)); err != nil {
		a.report(ctx, err)
		return err
	}

	fmt.Fprintln(a.out, "Success! You can log in now.")
	return nil
}

// Login prompts for credentials and authenticates against the server.
// Logging in requires connectivity; there is no offline credential check.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	user, err := a.authService.Login(ctx, email, string(password))
	if err != nil {
		a.report(ctx, err)
		return err
	}

	a.user = user
	a.monitor.Set(true)
	fmt.Fprintf(a.out, "Selamat datang, %s!\n", user.Name)
	return nil
}

// Logout clears the saved session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		a.report(ctx, err)
		return err
	}
	a.user = nil
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// report prints an error in user terms: rejections verbatim, connectivity
// problems as the offline hint, everything else via the log.
func (a *App) report(ctx context.Context, err error) {
	switch {
	case errors.Is(err, common.ErrUnavailable):
		fmt.Fprintln(a.out, common.MsgOffline)
	case errors.Is(err, common.ErrUnauthorized):
		fmt.Fprintln(a.out, common.MsgLoginRequired)
	case errors.Is(err, common.ErrRejected):
		fmt.Fprintln(a.out, err.Error())
	default:
		a.log.Error(ctx, "command failed", "error", err)
		fmt.Fprintln(os.Stderr, err.Error())
	}
}
