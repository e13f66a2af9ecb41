package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophdash/internal/common"
)

// Indirections over the input helpers so tests can script prompts.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

var errPasswordMismatch = errors.New("passwords do not match")

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.state.Login(ctx, a.sessions, email, string(password)); err != nil {
		return err
	}

	user := a.state.Snapshot().User
	success(a.out, "Signed in as %s (%s)", user.Name, user.Role)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.state.Logout(ctx, a.sessions); err != nil {
		a.logger.Warn(ctx, "logout reported an error", "error", err)
	}
	success(a.out, "Signed out")
	return nil
}

func (a *App) Status(ctx context.Context) error {
	snap := a.state.Snapshot()

	field(a.out, "Session", a.sessions.State())
	field(a.out, "Authenticated", snap.IsAuthenticated)
	if snap.User != nil {
		field(a.out, "User", fmt.Sprintf("%s <%s>", snap.User.Name, snap.User.Email))
	}
	if snap.AccessToken != "" {
		field(a.out, "Access token", mask(snap.AccessToken))
	}
	if snap.Error != "" {
		field(a.out, "Last error", fmt.Sprintf("%s (%s)", snap.Error, snap.ErrorCode))
	}
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	field(a.out, "ID", user.ID)
	field(a.out, "Name", user.Name)
	field(a.out, "Email", user.Email)
	field(a.out, "Role", user.Role)
	if user.Avatar != "" {
		field(a.out, "Avatar", user.Avatar)
	}
	return nil
}

func (a *App) Passwd(ctx context.Context) error {
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	current, err := getPassword(a.reader, "Current password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	next, err := getPassword(a.reader, "New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)

	confirm, err := getPassword(a.reader, "Repeat new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(next, confirm) {
		return errPasswordMismatch
	}

	if err := a.sessions.ChangePassword(ctx, user.ID, string(current), string(next)); err != nil {
		return err
	}
	success(a.out, "Password changed")
	return nil
}

// mask keeps the first and last four characters of a token.
func mask(token string) string {
	if len(token) <= 12 {
		return "****"
	}
	return token[:4] + "…" + token[len(token)-4:]
}
