package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mailbatch/mailbatch/internal/campaign"
	"github.com/mailbatch/mailbatch/internal/config"
	"github.com/mailbatch/mailbatch/internal/email"
	"github.com/mailbatch/mailbatch/internal/logger"
)

var (
	cfgFile string
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:          "mailbatch",
	Short:        "Send a newsletter to a CSV recipient list over SMTP",
	SilenceUsage: true,
	RunE:         runSend,
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default: config.yaml in . or ./config)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "process the whole batch without sending anything")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer log.Close()

	log.Info().Str("version", "0.1.0").Msg("starting mailbatch")

	recipients, err := campaign.LoadRecipients(cfg.Paths.Recipients)
	if err != nil {
		log.Error().Err(err).Msg("failed to load recipients")
		return err
	}
	log.Info().Int("count", len(recipients)).Str("path", cfg.Paths.Recipients).Msg("recipients loaded")

	tpl, err := campaign.LoadTemplate(cfg.Paths.Template)
	if err != nil {
		log.Error().Err(err).Msg("failed to load template")
		return err
	}
	log.Info().Str("path", cfg.Paths.Template).Msg("template loaded")

	transport, err := newTransport(cmd.Context(), cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize email provider")
		return err
	}

	runner, err := campaign.NewRunner(cfg, transport, tpl, dryRun, log)
	if err != nil {
		return err
	}

	if err := runner.Run(cmd.Context(), recipients); err != nil {
		log.Error().Err(err).Msg("newsletter run aborted")
		return err
	}
	return nil
}

// newTransport selects the delivery provider configured in email.provider.
func newTransport(ctx context.Context, cfg *config.Config, log *logger.Logger) (email.Transport, error) {
	switch cfg.Email.Provider {
	case "gmail":
		return email.NewGmailSender(ctx, cfg.Gmail, cfg.Email)
	default:
		return email.NewSMTPSender(cfg, log), nil
	}
}
