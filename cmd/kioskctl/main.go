package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/kiosk-backend/internal/app"
	"github.com/yungbote/kiosk-backend/internal/kiosk/kioskclient"
	"github.com/yungbote/kiosk-backend/internal/platform/envutil"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

var (
	apiURL   string
	password string
	logMode  string
)

var rootCmd = &cobra.Command{
	Use:           "kioskctl",
	Short:         "Operate a kiosk API: run a headless display, seed content, audit storage",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	_ = app.LoadEnvFile()
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envutil.String("KIOSK_API_URL", "http://localhost:8080"), "kiosk API base url")
	rootCmd.PersistentFlags().StringVar(&password, "password", envutil.String("KIOSK_ADMIN_PASSWORD", ""), "admin password for commands that need a token")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", envutil.String("LOG_MODE", "development"), "development or production")
	rootCmd.AddCommand(playCmd, seedCmd, orphansCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "kioskctl: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() (*logger.Logger, error) {
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

func newClient(log *logger.Logger) (*kioskclient.Client, error) {
	cfg := kioskclient.ConfigFromEnv()
	cfg.BaseURL = apiURL
	return kioskclient.New(log, cfg)
}

// adminClient returns a client holding a token, from KIOSK_API_TOKEN or by
// logging in with --password.
func adminClient(ctx context.Context, log *logger.Logger) (*kioskclient.Client, error) {
	c, err := newClient(log)
	if err != nil {
		return nil, err
	}
	if envutil.String("KIOSK_API_TOKEN", "") != "" {
		return c, nil
	}
	if password == "" {
		return nil, fmt.Errorf("admin access needs KIOSK_API_TOKEN or --password")
	}
	token, err := c.Login(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return c.WithToken(token), nil
}
