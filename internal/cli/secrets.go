package cli

import (
	"context"
	"strings"
)

func (a *App) Add(ctx context.Context) error {
	platform, err := a.text("Enter platform name")
	if err != nil {
		return err
	}
	user, err := a.text("Enter username")
	if err != nil {
		return err
	}
	email, err := a.text("Enter email")
	if err != nil {
		return err
	}
	pw, err := a.newPassword("Enter password", true)
	if err != nil {
		return err
	}

	id, err := a.session.AddSecret(ctx, platform, user, email, pw)
	if err != nil {
		return err
	}
	a.printf("Password saved (id %d).\n", id)
	return nil
}

func (a *App) Get(ctx context.Context) error {
	platform, err := a.text("Enter platform name")
	if err != nil {
		return err
	}
	views, err := a.session.GetSecrets(ctx, platform)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		a.println("No saved credentials for this platform!")
		return nil
	}
	for _, v := range views {
		a.printf("[%d] Platform: %s\n    Username: %s\n    Email: %s\n    Password: %s\n",
			v.ID, v.Platform, v.PlatformUsername, v.Email, v.Password)
	}
	return nil
}

func (a *App) Platforms(ctx context.Context) error {
	ps, err := a.session.ListPlatforms(ctx)
	if err != nil {
		return err
	}
	if len(ps) == 0 {
		a.println("No saved platforms found!")
		return nil
	}
	for i, p := range ps {
		a.printf("%d. %s\n", i+1, p)
	}
	return nil
}

func (a *App) Edit(ctx context.Context) error {
	id, err := GetInt(a.reader, "Enter entry id", a.out)
	if err != nil {
		return err
	}
	user, err := a.text("Enter new username")
	if err != nil {
		return err
	}
	pw, err := a.newPassword("Enter new password", true)
	if err != nil {
		return err
	}
	if err := a.session.EditSecret(ctx, id, user, pw); err != nil {
		return err
	}
	a.println("Password updated successfully!")
	return nil
}

func (a *App) Delete(ctx context.Context) error {
	id, err := GetInt(a.reader, "Enter entry id", a.out)
	if err != nil {
		return err
	}
	if err := a.session.DeleteSecret(ctx, id); err != nil {
		return err
	}
	a.println("Password deleted!")
	return nil
}

func (a *App) Health(ctx context.Context) error {
	items, err := a.session.HealthReport(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		a.println("No saved passwords.")
		return nil
	}
	width := len("platform")
	for _, it := range items {
		width = max(width, len(it.Platform))
	}
	a.printf("%-4s  %-*s  %s\n", "id", width, "platform", "strength")
	a.printf("%s\n", strings.Repeat("-", width+20))
	for _, it := range items {
		a.printf("%-4d  %-*s  %s\n", it.ID, width, it.Platform, it.Rating)
	}
	return nil
}
