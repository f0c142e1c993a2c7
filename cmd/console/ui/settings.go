package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
)

// runSettingsScreen is the account settings menu: password change, email
// verification with an emailed token, and account deletion
func (c *Console) runSettingsScreen(ctx context.Context) (string, error) {
	fmt.Println(titleStyle.Render("Settings"))

	var choice string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Account settings").
				Options(
					huh.NewOption("Change password", "change-password"),
					huh.NewOption("Verify email with token", "verify-email"),
					huh.NewOption("Delete account", "delete-account"),
					huh.NewOption("Back to dashboard", "back"),
				).
				Value(&choice),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		return "", err
	}

	switch choice {
	case "change-password":
		return c.runChangePassword(ctx)
	case "verify-email":
		return c.runVerifyEmail(ctx)
	case "delete-account":
		return c.runDeleteAccount(ctx)
	default:
		return c.Routes.DashboardPath, nil
	}
}

func (c *Console) runChangePassword(ctx context.Context) (string, error) {
	var (
		current     string
		newPassword string
		confirm     string
	)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Current password").
				EchoMode(huh.EchoModePassword).
				Value(&current).
				Validate(requiredField("current password")),

			huh.NewInput().
				Title("New password").
				Description("At least 8 characters").
				EchoMode(huh.EchoModePassword).
				Value(&newPassword).
				Validate(requiredField("new password")),

			huh.NewInput().
				Title("Confirm new password").
				EchoMode(huh.EchoModePassword).
				Value(&confirm).
				Validate(requiredField("password confirmation")),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		return "", err
	}

	if err := c.Session.ChangePassword(ctx, current, newPassword, confirm); err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
	} else {
		fmt.Println(successStyle.Render("Password changed."))
	}
	return c.Routes.DashboardPath + "/settings", nil
}

func (c *Console) runVerifyEmail(ctx context.Context) (string, error) {
	var token string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Verification token").
				Description("Paste the token from the verification email").
				Value(&token).
				Validate(requiredField("token")),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		return "", err
	}

	if err := c.Session.VerifyEmail(ctx, token); err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
	} else {
		fmt.Println(successStyle.Render("Email verified."))
	}
	return c.Routes.DashboardPath + "/settings", nil
}

func (c *Console) runDeleteAccount(ctx context.Context) (string, error) {
	var (
		confirmed bool
		password  string
	)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Delete your account?").
				Description("This permanently removes your account and all data.").
				Affirmative("Delete my account").
				Negative("Keep it").
				Value(&confirmed),
		),
	).WithTheme(huh.ThemeCatppuccin())
	if err := form.Run(); err != nil {
		return "", err
	}
	if !confirmed {
		return c.Routes.DashboardPath + "/settings", nil
	}

	passwordForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Confirm with your password").
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(requiredField("password")),
		),
	).WithTheme(huh.ThemeCatppuccin())
	if err := passwordForm.Run(); err != nil {
		return "", err
	}

	result, err := c.Session.DeleteAccount(ctx, password)
	if err != nil {
		// The session stays intact on failure; show the error and stay put
		fmt.Println(errorStyle.Render(err.Error()))
		return c.Routes.DashboardPath + "/settings", nil
	}

	fmt.Println(subtleStyle.Render("Your account has been deleted."))
	return result.NavigateTo, nil
}
