// Command send-email sends one transactional email through the configured
// provider. It is an operator tool for checking provider credentials.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/emailclient"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flagSet := pflag.NewFlagSet("send-email", pflag.ContinueOnError)
	configPath := flagSet.StringP("config", "c", "config/config.yaml", "path to the YAML config file")
	to := flagSet.String("to", "", "recipient address (required)")
	subject := flagSet.String("subject", "", "message subject")
	body := flagSet.String("body", "", "plain-text message body")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	recipient, err := domain.ParseSubscriberEmail(*to)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	sender, err := cfg.EmailClient.Sender()
	if err != nil {
		return fmt.Errorf("sender_email: %w", err)
	}

	client := emailclient.NewClient(cfg.EmailClient.APIKey, sender, cfg.EmailClient.BaseURL, cfg.EmailClient.Timeout())
	if err := client.Send(context.Background(), recipient, *subject, *body); err != nil {
		return err
	}
	fmt.Printf("sent from %s to %s\n", client.Sender(), recipient)
	return nil
}
