package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"smart-chatbot/internal/config"
	"smart-chatbot/internal/devserver"
	"smart-chatbot/internal/domain"
	"smart-chatbot/internal/logger"
	"smart-chatbot/internal/phrasebook"
	"smart-chatbot/internal/repository"
	"smart-chatbot/internal/usecase"
)

const rootLongDesc = `Smart chatbot answers messages from a phrase table, a few canned
rules and Wikipedia summaries.

Run it using:
  smart-chatbot lambda           Serve API Gateway events (default inside Lambda)
  smart-chatbot serve            Run a local HTTP server
  smart-chatbot ask <message>    Answer one message
  smart-chatbot phrases list     Print the effective phrase table
  smart-chatbot phrases seed     Store the embedded phrases in DynamoDB`

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "smart-chatbot",
		Short:         "Smart chatbot",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			slog.SetDefault(logger.New(
				logger.WithDebug(cfg.Debug),
				logger.WithJSON(cfg.InLambda()),
				logger.WithPretty(!cfg.InLambda()),
			))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.InLambda() {
				return runLambda(cmd.Context(), a)
			}
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		newLambdaCmd(a),
		newServeCmd(a),
		newAskCmd(a),
		newPhrasesCmd(a),
	)
	return cmd
}

func newLambdaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Serve API Gateway proxy events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLambda(cmd.Context(), a)
		},
	}
}

func runLambda(ctx context.Context, a *app) error {
	h, err := a.handler(ctx)
	if err != nil {
		return err
	}
	lambda.Start(h.Handle)
	return nil
}

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat page on a local HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			h, err := a.handler(ctx)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.ListenAddr
			}
			srv, err := devserver.New(h, devserver.WithAddr(addr), devserver.WithDebug(a.cfg.Debug))
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (defaults to LISTEN_ADDR)")
	return cmd
}

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Answer one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.chatService(cmd.Context())
			if err != nil {
				return err
			}
			out, err := svc.Ask(cmd.Context(), usecase.AskInput{Message: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = color.New(color.FgCyan, color.Bold).Fprintln(w, out.Reply)
			_, _ = color.New(color.Faint).Fprintf(w, "source: %s\n", out.Source)
			return nil
		},
	}
}

func newPhrasesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phrases",
		Short: "Inspect or seed the phrase table",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the effective phrase table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := a.phraseTable(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			question := color.New(color.FgYellow)
			for _, e := range table.Entries() {
				_, _ = question.Fprintf(w, "%s\n", e.Question)
				_, _ = fmt.Fprintf(w, "  %s\n", e.Answer)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Store the embedded phrases in PHRASE_TABLE, keeping existing entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.PhraseTable == "" {
				return errors.New("PHRASE_TABLE must be set to seed phrases")
			}
			store, err := a.phraseStore(cmd.Context())
			if err != nil {
				return err
			}
			created, skipped, err := seedPhrases(cmd.Context(), store)
			if err != nil {
				return err
			}
			_, _ = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(),
				"seeded %d phrases into %s (%d already present)\n", created, a.cfg.PhraseTable, skipped)
			return nil
		},
	})

	return cmd
}

type phraseWriter interface {
	PutPhrase(ctx context.Context, p domain.Phrase) (bool, error)
}

func seedPhrases(ctx context.Context, store phraseWriter) (created, skipped int, err error) {
	entries, err := phrasebook.Defaults()
	if err != nil {
		return 0, 0, err
	}
	for _, e := range entries {
		ok, err := store.PutPhrase(ctx, repository.NewPhrase(e.Question, e.Answer))
		if err != nil {
			return created, skipped, err
		}
		if ok {
			created++
		} else {
			skipped++
		}
	}
	return created, skipped, nil
}
