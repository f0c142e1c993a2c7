package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/launchkit/saas-console/internal/billing"
)

// runBillingScreen shows the subscription card and the actions valid for
// the current state. checkoutSucceeded is set when the user arrives back
// from a hosted checkout redirect.
func (c *Console) runBillingScreen(ctx context.Context, checkoutSucceeded bool) (string, error) {
	// Always re-fetch on entry; a checkout or portal visit may have
	// changed the subscription server-side
	c.Billing.FetchStatus(ctx)

	fmt.Println(titleStyle.Render("Billing"))
	if checkoutSucceeded {
		fmt.Println(successStyle.Render("Payment successful! Your subscription is now active."))
	}

	st := c.Billing.Status()
	fmt.Println(cardStyle.Render(billingCard(st)))

	choice, err := c.pickBillingAction(st)
	if err != nil {
		return "", err
	}

	switch choice {
	case "subscribe-monthly":
		return c.startCheckout(ctx, c.Prices.PriceMonthly)
	case "subscribe-annual":
		return c.startCheckout(ctx, c.Prices.PriceAnnual)
	case "portal":
		redirect, err := c.Billing.OpenBillingPortal(ctx)
		if err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			return c.Routes.DashboardPath + "/billing", nil
		}
		fmt.Println("Manage your subscription here:")
		fmt.Println(subtleStyle.Render(redirect.URL))
		return c.Routes.DashboardPath + "/billing", nil
	case "cancel":
		return c.cancelSubscription(ctx)
	case "reactivate":
		if err := c.Billing.ReactivateSubscription(ctx); err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
		} else {
			fmt.Println(successStyle.Render("Subscription reactivated."))
		}
		return c.Routes.DashboardPath + "/billing", nil
	default:
		return c.Routes.DashboardPath, nil
	}
}

func (c *Console) pickBillingAction(st *billing.Status) (string, error) {
	var options []huh.Option[string]
	switch {
	case st == nil || !st.HasActiveSubscription:
		options = append(options,
			huh.NewOption("Subscribe monthly", "subscribe-monthly"),
			huh.NewOption("Subscribe annual", "subscribe-annual"),
		)
	case st.CancelAtPeriodEnd:
		options = append(options,
			huh.NewOption("Reactivate subscription", "reactivate"),
			huh.NewOption("Manage billing", "portal"),
		)
	default:
		options = append(options,
			huh.NewOption("Manage billing", "portal"),
			huh.NewOption("Cancel subscription", "cancel"),
		)
	}
	options = append(options, huh.NewOption("Back to dashboard", "back"))

	var choice string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What would you like to do?").
				Options(options...).
				Value(&choice),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		return "", err
	}
	return choice, nil
}

func (c *Console) startCheckout(ctx context.Context, priceID string) (string, error) {
	redirect, err := c.Billing.CreateCheckoutSession(ctx, priceID)
	if err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return c.Routes.DashboardPath + "/billing", nil
	}

	fmt.Println("Complete your purchase here:")
	fmt.Println(subtleStyle.Render(redirect.URL))

	var done bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Did you complete the payment?").
				Affirmative("Yes, all done").
				Negative("Not yet").
				Value(&done),
		),
	).WithTheme(huh.ThemeCatppuccin())
	if err := form.Run(); err != nil {
		return "", err
	}

	if done {
		return c.Routes.DashboardPath + "/billing?success=true", nil
	}
	return c.Routes.DashboardPath + "/billing", nil
}

func (c *Console) cancelSubscription(ctx context.Context) (string, error) {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Cancel your subscription?").
				Description("You keep access until the end of the current billing period.").
				Affirmative("Cancel subscription").
				Negative("Keep it").
				Value(&confirmed),
		),
	).WithTheme(huh.ThemeCatppuccin())
	if err := form.Run(); err != nil {
		return "", err
	}
	if !confirmed {
		return c.Routes.DashboardPath + "/billing", nil
	}

	if err := c.Billing.CancelSubscription(ctx); err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
	} else {
		fmt.Println(successStyle.Render("Cancellation scheduled for the end of the billing period."))
	}
	return c.Routes.DashboardPath + "/billing", nil
}

func billingCard(st *billing.Status) string {
	if st == nil || !st.HasActiveSubscription {
		return "No active subscription\nPick a plan below to get started"
	}

	plan := st.PlanName
	if plan == "" {
		plan = "Pro"
	}

	var lines []string
	switch {
	case st.CancelAtPeriodEnd:
		lines = append(lines, fmt.Sprintf("%s · Cancels at period end", plan))
		if st.CurrentPeriodEnd != nil {
			lines = append(lines, "Access until "+st.CurrentPeriodEnd.Format("Jan 2, 2006"))
		}
	case st.Status == billing.StatusTrialing:
		lines = append(lines, fmt.Sprintf("%s · Trial Period", plan))
		if st.TrialEnd != nil {
			lines = append(lines, "Trial ends "+st.TrialEnd.Format("Jan 2, 2006"))
		}
	default:
		lines = append(lines, fmt.Sprintf("%s · Active", plan))
		if st.CurrentPeriodEnd != nil {
			lines = append(lines, "Renews "+st.CurrentPeriodEnd.Format("Jan 2, 2006"))
		}
	}
	return strings.Join(lines, "\n")
}
