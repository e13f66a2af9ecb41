package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/gophdash/internal/models"
)

var errUsageSettings = errors.New("usage: settings [set <key> <value> | reset]")

// Profile prompts for each editable field. An empty answer keeps the value.
func (a *App) Profile(ctx context.Context) error {
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	var update models.ProfileUpdate
	changed := false

	prompts := []struct {
		label   string
		current string
		dst     **string
	}{
		{"Name", user.Name, &update.Name},
		{"Email", user.Email, &update.Email},
		{"Avatar URL", user.Avatar, &update.Avatar},
	}
	for _, p := range prompts {
		v, ok, err := GetDefault(a.reader, p.label, p.current, a.out)
		if err != nil {
			return err
		}
		if ok {
			*p.dst = &v
			changed = true
		}
	}

	if !changed {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	updated, err := a.sessions.UpdateProfile(ctx, user.ID, update)
	if err != nil {
		return err
	}
	success(a.out, "Profile updated for %s", updated.Email)
	return nil
}

func (a *App) Settings(ctx context.Context, args []string) error {
	switch {
	case len(args) == 0:
		s := a.settings.Load(ctx)
		field(a.out, "theme", s.Theme)
		field(a.out, "period", s.DefaultPeriod)
		field(a.out, "language", s.Language)
		field(a.out, "notify.email", s.Notifications.Email)
		field(a.out, "notify.push", s.Notifications.Push)
		field(a.out, "notify.reports", s.Notifications.Reports)
		return nil

	case len(args) == 1 && args[0] == "reset":
		if err := a.settings.Reset(ctx); err != nil {
			return err
		}
		success(a.out, "Settings reset to defaults")
		return nil

	case len(args) == 3 && args[0] == "set":
		s := a.settings.Load(ctx)
		if err := applySetting(&s, args[1], args[2]); err != nil {
			return err
		}
		if err := a.settings.Save(ctx, s); err != nil {
			return err
		}
		success(a.out, "%s = %s", args[1], args[2])
		return nil
	}
	return errUsageSettings
}

func applySetting(s *models.AppSettings, key, value string) error {
	switch key {
	case "theme":
		s.Theme = value
	case "period":
		s.DefaultPeriod = value
	case "language":
		s.Language = value
	case "notify.email", "notify.push", "notify.reports":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects true or false", key)
		}
		switch key {
		case "notify.email":
			s.Notifications.Email = b
		case "notify.push":
			s.Notifications.Push = b
		default:
			s.Notifications.Reports = b
		}
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}
