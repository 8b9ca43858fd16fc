package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/player-scout/internal/app"
)

const exitCommand = "/exit"

type runWithApp func(run func(cmd *cobra.Command, args []string, a *app.App) error) func(*cobra.Command, []string) error

func newChatCmd(withApp runWithApp) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive scouting conversation",
		Long:  "Reads one message per line from stdin. Send a player name, pick by number, confirm with yes. " + exitCommand + " or EOF quits.",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go a.RunSweeper(ctx)

			return runChat(ctx, cmd, a, userID)
		}),
	}
	cmd.Flags().StringVar(&userID, "user", "local", "user id the conversation is keyed by")
	return cmd
}

func runChat(ctx context.Context, cmd *cobra.Command, a *app.App, userID string) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	welcome := a.Chat.HandleMessage(ctx, userID, "/start")
	fmt.Fprintln(out, welcome.Text)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == exitCommand {
			return nil
		}
		if line == "" {
			continue
		}

		reply := a.Chat.HandleMessage(ctx, userID, line)
		fmt.Fprintln(out, reply.Text)
	}
}
