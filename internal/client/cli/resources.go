package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/gophdash/internal/client/client"
)

var errUsageGet = fmt.Errorf("usage: get <%s>", strings.Join(client.Resources, "|"))

func (a *App) Get(ctx context.Context, args []string) error {
	if len(args) != 1 || !slices.Contains(client.Resources, args[0]) {
		return errUsageGet
	}
	if !a.isLoggedIn() {
		return errNotSignedIn
	}

	raw, err := a.api.Resource(ctx, args[0])
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return fmt.Errorf("malformed %s response: %w", args[0], err)
	}
	fmt.Fprintln(a.out, pretty.String())
	return nil
}

func (a *App) Ping(ctx context.Context) error {
	if err := a.api.Ping(ctx); err != nil {
		return err
	}
	success(a.out, "API is reachable")
	return nil
}

func (a *App) Health(ctx context.Context, args []string) error {
	service := ""
	if len(args) > 0 {
		service = args[0]
	}

	st, err := a.health.Check(ctx, service)
	if errors.Is(err, client.ErrNotFound) {
		return fmt.Errorf("unknown service %q", service)
	}
	if err != nil {
		return err
	}

	name := service
	if name == "" {
		name = "server"
	}
	field(a.out, name, st)
	return nil
}

func (a *App) Sweep(ctx context.Context) error {
	n, err := a.sessions.SweepExpired(ctx)
	if err != nil {
		return err
	}
	success(a.out, "Removed %d expired token records", n)
	return nil
}
