package main

import (
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/player-scout/internal/app"
	"github.com/riskibarqy/player-scout/internal/domain/player"
	"github.com/riskibarqy/player-scout/internal/usecase"
)

func newProfileCmd(withApp runWithApp) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "profile SOURCE:ID [SOURCE:ID...]",
		Short:   "Aggregate a player profile from known source identities",
		Example: "  scout profile STRUCTURED:154 SCRAPED:28003",
		Args:    cobra.MinimumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			identities := make([]player.Identity, 0, len(args))
			for _, raw := range args {
				ident, err := player.ParseIdentity(raw)
				if err != nil {
					return fmt.Errorf("%w: %v", usecase.ErrInvalidIdentity, err)
				}
				identities = append(identities, ident)
			}

			profile, err := a.Chat.AggregateProfile(cmd.Context(), identities)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, profile)
			}
			fmt.Fprintln(cmd.OutOrStdout(), usecase.RenderProfile(profile))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the profile as JSON")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	raw, err := sonic.ConfigDefault.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(raw))
	return nil
}
