package cli

import (
	"context"
	"fmt"

	"github.com/soyeahso/botline/internal/directline"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage conversation tokens",
	}

	cmd.AddCommand(newTokenGenerateCmd())
	cmd.AddCommand(newTokenRefreshCmd())
	return cmd
}

func newTokenGenerateCmd() *cobra.Command {
	var eTag string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a token scoped to a new conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, cleanup, err := buildClient(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			params := &directline.TokenParameters{
				User: &directline.ChannelAccount{ID: cfg.User.ID, Name: cfg.User.Name},
				ETag: eTag,
			}
			conv, err := client.GenerateToken(context.Background(), params)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "token: %s\nexpires_in: %d\n", conv.Token, conv.ExpiresIn)
			return nil
		},
	}

	cmd.Flags().StringVar(&eTag, "etag", "", "entity tag to bind the token to")
	return cmd
}

func newTokenRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the current conversation token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, cleanup, err := buildClient(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			conv, err := client.RefreshToken(context.Background())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "token: %s\nexpires_in: %d\n", conv.Token, conv.ExpiresIn)
			return nil
		},
	}
}
