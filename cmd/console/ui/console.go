// Package ui implements the terminal frontend: auth forms, the dashboard
// shell, and the billing and settings screens. Screens never navigate on
// their own; each returns the path to visit next and the console loop
// routes it through the same guard the edge gateway uses.
package ui

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/launchkit/saas-console/internal/api"
	"github.com/launchkit/saas-console/internal/banner"
	"github.com/launchkit/saas-console/internal/billing"
	"github.com/launchkit/saas-console/internal/config"
	"github.com/launchkit/saas-console/internal/guard"
	"github.com/launchkit/saas-console/internal/logging"
	"github.com/launchkit/saas-console/internal/session"
)

// Console owns one app session worth of state: a single instance of each
// store, constructed once and passed to every screen.
type Console struct {
	Client  *api.Client
	Session *session.Store
	Billing *billing.Store
	Banner  *banner.Banner
	Guard   *guard.Guard
	Routes  config.RoutesConfig
	Prices  config.BillingConfig
	Logger  *logging.Logger
}

// Run drives the navigation loop until the user lands on the home path
// (which exits) or a screen fails unrecoverably.
func (c *Console) Run(ctx context.Context) error {
	next := c.Routes.DashboardPath

	for {
		path, returnTo := splitTarget(next)

		// Cheap pre-render check, same decision the edge applies
		decision := c.Guard.Decide(path, c.Client.HasSessionCookie())
		if !decision.Allow {
			next = decision.Location
			continue
		}

		var err error
		switch {
		case path == c.Routes.HomePath:
			fmt.Println(subtleStyle.Render("Signed off. See you next time."))
			return nil
		case path == c.Routes.LoginPath:
			next, err = c.runAuthMenu(ctx, returnTo)
		case path == "/register":
			next, err = c.runRegisterScreen(ctx)
		case path == "/forgot-password":
			next, err = c.runForgotPasswordScreen(ctx)
		case path == c.Routes.DashboardPath+"/billing":
			next, err = c.runBillingScreen(ctx, strings.Contains(next, "success"))
		case path == c.Routes.DashboardPath+"/settings":
			next, err = c.runSettingsScreen(ctx)
		case strings.HasPrefix(path, c.Routes.DashboardPath):
			next, err = c.runDashboard(ctx)
		default:
			next = c.Routes.DashboardPath
		}
		if err != nil {
			return err
		}
	}
}

// splitTarget separates a navigation target into its path and the
// post-login return path carried in the redirect query parameter
func splitTarget(target string) (path, returnTo string) {
	u, err := url.Parse(target)
	if err != nil {
		return target, ""
	}
	return u.Path, u.Query().Get("redirect")
}
