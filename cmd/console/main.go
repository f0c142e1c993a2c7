package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/launchkit/saas-console/cmd/console/ui"
	"github.com/launchkit/saas-console/internal/api"
	"github.com/launchkit/saas-console/internal/banner"
	"github.com/launchkit/saas-console/internal/billing"
	"github.com/launchkit/saas-console/internal/config"
	"github.com/launchkit/saas-console/internal/guard"
	"github.com/launchkit/saas-console/internal/logging"
	"github.com/launchkit/saas-console/internal/session"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "console",
		Short: "Terminal console for your account and subscription",
		Long:  "Interactive terminal client: sign in, manage your subscription, and change account settings against the REST backend.",
		RunE:  runConsole,
	}
	rootCmd.Flags().String("log-file", "", "Write logs to this file instead of discarding them")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		RunE:  runConfig,
	}

	rootCmd.AddCommand(configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runConsole(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Log lines would tear the screens the console draws, so logs go to a
	// file when asked for and nowhere otherwise
	logDest := io.Discard
	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logDest = f
	}
	logger := logging.NewLoggerTo(logDest, cfg.Edge.IsDevelopment())

	client, err := api.NewClient(cfg.Client, logger)
	if err != nil {
		return fmt.Errorf("create api client: %w", err)
	}

	sessionStore := session.NewStore(client, cfg.Routes, logger)
	billingStore := billing.NewStore(client, logger)

	console := &ui.Console{
		Client:  client,
		Session: sessionStore,
		Billing: billingStore,
		Banner:  banner.New(sessionStore),
		Guard:   guard.New(cfg.Routes, cfg.Client.SessionCookieName),
		Routes:  cfg.Routes,
		Prices:  cfg.Billing,
		Logger:  logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return console.Run(ctx)
}

func runConfig(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Printf("api_base_url         %s\n", cfg.Client.APIBaseURL)
	fmt.Printf("request_timeout      %s\n", cfg.Client.RequestTimeout)
	fmt.Printf("session_cookie       %s\n", cfg.Client.SessionCookieName)
	fmt.Printf("csrf_cookie          %s\n", cfg.Client.CSRFCookieName)
	fmt.Printf("csrf_header          %s\n", cfg.Client.CSRFHeader)
	fmt.Printf("protected_prefixes   %v\n", cfg.Routes.ProtectedPrefixes)
	fmt.Printf("auth_prefixes        %v\n", cfg.Routes.AuthPrefixes)
	fmt.Printf("login_path           %s\n", cfg.Routes.LoginPath)
	fmt.Printf("dashboard_path       %s\n", cfg.Routes.DashboardPath)
	fmt.Printf("price_monthly        %s\n", redactIfEmpty(cfg.Billing.PriceMonthly))
	fmt.Printf("price_annual         %s\n", redactIfEmpty(cfg.Billing.PriceAnnual))

	return nil
}

func redactIfEmpty(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}
