package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/launchkit/saas-console/internal/banner"
	"github.com/launchkit/saas-console/internal/billing"
)

type dashboardPhase int

const (
	// phaseChecking gates rendering until the authoritative session
	// check settles; protected content never renders before it
	phaseChecking dashboardPhase = iota
	phaseReady
)

type sessionCheckedMsg struct{}
type statusFetchedMsg struct{}
type resendDoneMsg struct{ err error }
type logoutDoneMsg struct{ navigateTo string }

type dashboardModel struct {
	console *Console
	ctx     context.Context

	spinner    spinner.Model
	phase      dashboardPhase
	toast      string
	toastIsErr bool
	navigateTo string
}

func newDashboardModel(ctx context.Context, c *Console) dashboardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = subtleStyle
	return dashboardModel{console: c, ctx: ctx, spinner: sp}
}

func (m dashboardModel) Init() tea.Cmd {
	// Identity and subscription state load independently on mount
	return tea.Batch(m.spinner.Tick, m.checkSession(), m.fetchStatus())
}

func (m dashboardModel) checkSession() tea.Cmd {
	return func() tea.Msg {
		m.console.Session.Bootstrap(m.ctx)
		return sessionCheckedMsg{}
	}
}

func (m dashboardModel) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		m.console.Billing.FetchStatus(m.ctx)
		return statusFetchedMsg{}
	}
}

func (m dashboardModel) resendVerification() tea.Cmd {
	return func() tea.Msg {
		return resendDoneMsg{err: m.console.Banner.Resend(m.ctx)}
	}
}

func (m dashboardModel) logout() tea.Cmd {
	return func() tea.Msg {
		result := m.console.Session.Logout(m.ctx)
		return logoutDoneMsg{navigateTo: result.NavigateTo}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionCheckedMsg:
		if m.console.Session.User() == nil {
			// Authoritative fallback: the cookie fooled the edge
			// guard, the refresh did not
			m.navigateTo = m.console.Routes.LoginPath
			return m, tea.Quit
		}
		m.phase = phaseReady
		return m, nil

	case statusFetchedMsg:
		return m, nil

	case resendDoneMsg:
		if msg.err != nil {
			m.toast, m.toastIsErr = msg.err.Error(), true
		} else {
			m.toast, m.toastIsErr = banner.ResendSuccessMessage, false
		}
		return m, nil

	case logoutDoneMsg:
		m.navigateTo = msg.navigateTo
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.navigateTo = m.console.Routes.HomePath
		return m, tea.Quit
	}
	if m.phase != phaseReady {
		return m, nil
	}

	switch msg.String() {
	case "q":
		m.navigateTo = m.console.Routes.HomePath
		return m, tea.Quit
	case "b":
		m.navigateTo = m.console.Routes.DashboardPath + "/billing"
		return m, tea.Quit
	case "s":
		m.navigateTo = m.console.Routes.DashboardPath + "/settings"
		return m, tea.Quit
	case "l":
		return m, m.logout()
	case "r":
		if m.console.Banner.Visible() && !m.console.Banner.Sending() {
			return m, m.resendVerification()
		}
	case "x":
		if m.console.Banner.Visible() {
			m.console.Banner.Dismiss()
		}
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.phase == phaseChecking {
		return fmt.Sprintf("\n  %s Checking session...\n", m.spinner.View())
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Dashboard") + "\n")

	if m.console.Banner.Visible() {
		line := warnStyle.Render(m.console.Banner.Message())
		if m.console.Banner.Sending() {
			line += subtleStyle.Render("  sending...")
		} else {
			line += subtleStyle.Render("  [r] resend  [x] dismiss")
		}
		b.WriteString(line + "\n\n")
	}

	if u := m.console.Session.User(); u != nil {
		card := fmt.Sprintf("Signed in as %s\nMember since %s", u.Email, u.CreatedAt.Format("Jan 2, 2006"))
		if u.EmailVerified {
			card += "\n" + successStyle.Render("Email verified")
		}
		b.WriteString(cardStyle.Render(card) + "\n")
	}

	b.WriteString(cardStyle.Render(m.subscriptionSummary()) + "\n")

	if m.toast != "" {
		style := successStyle
		if m.toastIsErr {
			style = errorStyle
		}
		b.WriteString(style.Render(m.toast) + "\n")
	}

	b.WriteString(subtleStyle.Render("b billing • s settings • l sign out • q quit") + "\n")
	return b.String()
}

func (m dashboardModel) subscriptionSummary() string {
	if m.console.Billing.Loading() {
		return "Loading subscription..."
	}
	st := m.console.Billing.Status()
	if st == nil || !st.HasActiveSubscription {
		return "No active subscription\nPress b to choose a plan"
	}

	plan := st.PlanName
	if plan == "" {
		plan = "Pro"
	}

	var state string
	switch {
	case st.CancelAtPeriodEnd:
		state = "Cancels at period end"
	case st.Status == billing.StatusTrialing:
		state = "Trial Period"
	default:
		state = "Active"
	}

	summary := fmt.Sprintf("%s · %s", plan, state)
	if st.CurrentPeriodEnd != nil {
		verb := "Renews"
		if st.CancelAtPeriodEnd {
			verb = "Access until"
		}
		summary += fmt.Sprintf("\n%s %s", verb, st.CurrentPeriodEnd.Format("Jan 2, 2006"))
	}
	return summary
}

func (c *Console) runDashboard(ctx context.Context) (string, error) {
	program := tea.NewProgram(newDashboardModel(ctx, c))
	out, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("dashboard: %w", err)
	}

	final := out.(dashboardModel)
	if final.navigateTo == "" {
		return c.Routes.HomePath, nil
	}
	return final.navigateTo, nil
}
