package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/habiliai/agenteat/chat"
	"github.com/habiliai/agenteat/internal/mylog"
	"github.com/jcooky/go-din"
	"github.com/spf13/cobra"
)

type sendFunc func(ctx context.Context, message string) (string, error)

func newChatCmd() *cobra.Command {
	params := &struct {
		CrewID string
	}{}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			c := din.NewContainer(ctx, din.EnvProd)
			defer c.Close()

			logger := din.MustGetT[*mylog.Logger](c)
			registry := din.MustGetT[*chat.Registry](c)

			chatID := uuid.NewString()
			if _, err := registry.Initialize(ctx, params.CrewID, chatID); err != nil {
				return err
			}
			logger.Info("Starting Agent Eat CLI chatbot...", "chat_id", chatID)

			return runChatLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), func(ctx context.Context, message string) (string, error) {
				res, err := registry.Chat(ctx, params.CrewID, chatID, message)
				if err != nil {
					logger.Error("Error processing input", mylog.Err(err))
					return "", err
				}
				return res.Content, nil
			})
		},
	}

	cmd.Flags().StringVar(&params.CrewID, "crew", "", "Crew to chat with")

	return cmd
}

func isExitCommand(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit", "bye":
		return true
	}
	return false
}

// runChatLoop reads one message per line until an exit word, EOF or ctx
// cancellation. A failed turn is reported and the loop continues.
func runChatLoop(ctx context.Context, in io.Reader, out io.Writer, send sendFunc) error {
	fmt.Fprintln(out, "Starting Agent Eat CLI chatbot...")
	fmt.Fprintln(out, "Type 'exit', 'quit', or 'bye' to exit.")
	fmt.Fprintln(out, strings.Repeat("-", 50))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if isExitCommand(line) {
			fmt.Fprintln(out, "Chatbot: Goodbye! It was nice talking to you.")
			return nil
		}
		if line == "" {
			continue
		}

		content, err := send(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(out, "Error: %v\n", err)
			fmt.Fprintln(out, "Please try again with a different input.")
			continue
		}
		fmt.Fprintf(out, "Assistant: %s\n", content)
	}
}
