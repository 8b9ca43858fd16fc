package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/player-scout/internal/app"
	"github.com/riskibarqy/player-scout/internal/usecase"
)

func newSearchCmd(withApp runWithApp) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "search NAME",
		Short:   "List ranked candidates for a player name without starting a conversation",
		Example: `  scout search "Kevin De Bruyne"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			res, err := a.Resolver.Resolve(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, res)
			}

			out := cmd.OutOrStdout()
			switch {
			case res.NoData():
				fmt.Fprintln(out, "No data available: none of the player sources answered.")
			case len(res.Candidates) == 0:
				fmt.Fprintf(out, "No player found matching %q.\n", res.Query)
			default:
				fmt.Fprintln(out, usecase.RenderCandidateList(res.Candidates))
			}
			for _, tag := range res.SourcesFailed {
				fmt.Fprintf(out, "(%s source unavailable)\n", tag)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the resolution as JSON")
	return cmd
}
