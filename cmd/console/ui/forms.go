package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// runAuthMenu is the unauthenticated landing screen
func (c *Console) runAuthMenu(ctx context.Context, returnTo string) (string, error) {
	fmt.Println(titleStyle.Render("Sign in"))

	var choice string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Welcome back").
				Options(
					huh.NewOption("Sign in", "login"),
					huh.NewOption("Create an account", "register"),
					huh.NewOption("Forgot password", "forgot"),
					huh.NewOption("Quit", "quit"),
				).
				Value(&choice),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		return "", err
	}

	switch choice {
	case "login":
		return c.runLoginScreen(ctx, returnTo)
	case "register":
		return "/register", nil
	case "forgot":
		return "/forgot-password", nil
	default:
		return c.Routes.HomePath, nil
	}
}

// runLoginScreen collects credentials and signs in. A failed attempt
// shows the stored error and loops back to the form; the error is cleared
// when the user retries.
func (c *Console) runLoginScreen(ctx context.Context, returnTo string) (string, error) {
	for {
		if msg := c.Session.Err(); msg != "" {
			fmt.Println(errorStyle.Render(msg))
			c.Session.ClearError()
		}

		var (
			email    string
			password string
		)
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Email").
					Placeholder("you@example.com").
					Value(&email).
					Validate(requiredField("email")),

				huh.NewInput().
					Title("Password").
					EchoMode(huh.EchoModePassword).
					Value(&password).
					Validate(requiredField("password")),
			),
		).WithTheme(huh.ThemeCatppuccin())

		if err := form.Run(); err != nil {
			return "", err
		}

		result, err := c.Session.Login(ctx, email, password)
		if err != nil {
			// Error is stored on the session; next loop iteration shows it
			continue
		}

		if returnTo != "" {
			return returnTo, nil
		}
		return result.NavigateTo, nil
	}
}

// runRegisterScreen creates an account and signs the new user in
func (c *Console) runRegisterScreen(ctx context.Context) (string, error) {
	fmt.Println(titleStyle.Render("Create an account"))

	for {
		if msg := c.Session.Err(); msg != "" {
			fmt.Println(errorStyle.Render(msg))
			c.Session.ClearError()
		}

		var (
			email           string
			password        string
			passwordConfirm string
			create          bool
		)
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Email").
					Placeholder("you@example.com").
					Value(&email).
					Validate(requiredField("email")),

				huh.NewInput().
					Title("Password").
					Description("At least 8 characters").
					EchoMode(huh.EchoModePassword).
					Value(&password).
					Validate(requiredField("password")),

				huh.NewInput().
					Title("Confirm password").
					EchoMode(huh.EchoModePassword).
					Value(&passwordConfirm).
					Validate(requiredField("password confirmation")),

				huh.NewConfirm().
					Title("Ready?").
					Affirmative("Create account").
					Negative("Back").
					Value(&create),
			),
		).WithTheme(huh.ThemeCatppuccin())

		if err := form.Run(); err != nil {
			return "", err
		}
		if !create {
			return c.Routes.LoginPath, nil
		}

		result, err := c.Session.Register(ctx, email, password, passwordConfirm)
		if err != nil {
			continue
		}

		fmt.Println(successStyle.Render("Account created. Check your inbox to verify your email."))
		return result.NavigateTo, nil
	}
}

// runForgotPasswordScreen sends a reset email and optionally completes
// the reset with the emailed token in the same sitting
func (c *Console) runForgotPasswordScreen(ctx context.Context) (string, error) {
	fmt.Println(titleStyle.Render("Reset your password"))

	var email string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Description("We'll send a reset link to this address").
				Value(&email).
				Validate(requiredField("email")),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		return "", err
	}

	if err := c.Session.ForgotPassword(ctx, email); err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return c.Routes.LoginPath, nil
	}
	fmt.Println(successStyle.Render("If that address exists, a reset email is on its way."))

	var haveToken bool
	confirm := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enter the token from the email now?").
				Value(&haveToken),
		),
	).WithTheme(huh.ThemeCatppuccin())
	if err := confirm.Run(); err != nil {
		return "", err
	}
	if !haveToken {
		return c.Routes.LoginPath, nil
	}

	var (
		token           string
		password        string
		passwordConfirm string
	)
	resetForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Reset token").
				Value(&token).
				Validate(requiredField("token")),

			huh.NewInput().
				Title("New password").
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(requiredField("password")),

			huh.NewInput().
				Title("Confirm new password").
				EchoMode(huh.EchoModePassword).
				Value(&passwordConfirm).
				Validate(requiredField("password confirmation")),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := resetForm.Run(); err != nil {
		return "", err
	}

	result, err := c.Session.ResetPassword(ctx, token, password, passwordConfirm)
	if err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return "/forgot-password", nil
	}

	fmt.Println(successStyle.Render("Password updated. Sign in with your new password."))
	return result.NavigateTo, nil
}

func requiredField(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
