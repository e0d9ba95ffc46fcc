package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/mmynk/mandato360/internal/chat"
	"github.com/mmynk/mandato360/internal/config"
	"github.com/mmynk/mandato360/internal/storage/memory"
)

func newChatCmd(opts *options) *cobra.Command {
	var (
		model   string
		timeout time.Duration
		raw     bool
	)

	cmd := &cobra.Command{
		Use:   "chat <pergunta>",
		Short: "Ask Consill IA a single question",
		Long: `Sends one question to Consill IA and prints the answer as Markdown.

The API key is read from GEMINI_API_KEY (or API_KEY), also from a .env file
in the working directory. Without a key the assistant answers in offline mode.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(".env"); err != nil {
				return err
			}
			cfg, err := config.ParseEnv()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("model") {
				cfg.ChatModel = model
			}
			if cmd.Flags().Changed("timeout") {
				cfg.ChatTimeout = timeout
			}

			f, err := opts.loadFixtures()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var completer chat.Completer
			if key := cfg.ChatAPIKey(); key != "" {
				gemini, err := chat.NewGeminiCompleter(ctx, key, cfg.ChatModel)
				if err != nil {
					return err
				}
				completer = gemini
			}

			assistant := chat.NewAssistant(memory.New(f.Seed()), completer, chat.Options{
				SystemInstruction: f.Chat.SystemInstruction,
				WelcomeMessage:    f.Chat.WelcomeMessage,
				Timeout:           cfg.ChatTimeout,
			})
			conv, err := assistant.NewConversation(ctx)
			if err != nil {
				return err
			}
			conv, err = assistant.Send(ctx, conv.ID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			reply := conv.Messages[len(conv.Messages)-1].Content

			out := cmd.OutOrStdout()
			if raw {
				fmt.Fprintln(out, reply)
				return nil
			}
			renderer, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(80),
			)
			if err != nil {
				fmt.Fprintln(out, reply)
				return nil
			}
			rendered, err := renderer.Render(reply)
			if err != nil {
				fmt.Fprintln(out, reply)
				return nil
			}
			fmt.Fprint(out, rendered)
			return nil
		},
	}
	cmd.Flags().StringVar(&model, "model", chat.DefaultModel, "Gemini model")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "completion timeout")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the Markdown without rendering")
	return cmd
}
