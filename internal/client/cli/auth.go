package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskhub/internal/client/client"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for an email and password and creates the account. The
// server mails a confirmation token to complete it with "confirm".
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	if _, err := a.api.Register(ctx, userName, password); err != nil {
		return a.report("Registration failed", err)
	}

	fmt.Fprintln(a.out, "Registered. Check your mail for the confirmation token, then run: confirm <token>")
	return nil
}

func (a *App) Confirm(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: confirm <token>")
		return nil
	}
	if err := a.api.Confirm(ctx, args[0]); err != nil {
		return a.report("Confirmation failed", err)
	}
	fmt.Fprintln(a.out, "Account confirmed, you can log in now.")
	return nil
}

// Reset requests a password reset token by mail and then asks for it
// together with the new password.
func (a *App) Reset(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.api.RequestPasswordReset(ctx, userName); err != nil {
		return a.report("Reset request failed", err)
	}

	token, err := getSimpleText(a.reader, "Enter the token from the reset mail (empty to cancel)", a.out)
	if err != nil || token == "" {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	if err := a.api.ResetPassword(ctx, token, password); err != nil {
		return a.report("Password reset failed", err)
	}
	fmt.Fprintln(a.out, "Password changed. All sessions were closed, please log in again.")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.api.Login(ctx, userName, password); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			fmt.Fprintln(a.out, "Login unsuccessful: wrong email or password")
			return err
		}
		return a.report("Login unsuccessful", err)
	}

	a.userName = userName
	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	a.userName = ""
	a.setMode("")
	if err != nil && !errors.Is(err, client.ErrNotLoggedIn) {
		return a.report("Logout", err)
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// report prints a failed command and hands the error back to the REPL.
func (a *App) report(what string, err error) error {
	fmt.Fprintf(a.out, "%s: %v\n", what, err)
	return err
}
