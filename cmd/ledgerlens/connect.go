package main

import (
	"fmt"
	"log/slog"

	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/spf13/cobra"
)

func connectCmd() *cobra.Command {
	var (
		platformName string
		tenantID     string
		accessToken  string
	)

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Store a platform connection and mark it active",
		Long: `Stores an organization connection for one platform. Token acquisition
happens out of band (OAuth consent in the platform's developer console);
this command only records the resulting credential and tenant.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			platform, err := model.ParsePlatform(platformName)
			if err != nil {
				return err
			}
			if tenantID == "" || accessToken == "" {
				return fmt.Errorf("--tenant-id and --access-token are required")
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			conn := &model.Connection{
				Platform:    platform,
				TenantID:    tenantID,
				AccessToken: accessToken,
				Active:      true,
			}
			if err := store.SaveConnection(cmd.Context(), conn); err != nil {
				return fmt.Errorf("failed to save connection: %w", err)
			}

			slog.Info("Connection saved", "platform", platform, "tenant_id", tenantID)
			return nil
		},
	}

	cmd.Flags().StringVar(&platformName, "platform", "", "platform (quickbooks or xero)")
	cmd.Flags().StringVar(&tenantID, "tenant-id", "", "realm or tenant identifier")
	cmd.Flags().StringVar(&accessToken, "access-token", "", "API access token")
	_ = cmd.MarkFlagRequired("platform")

	return cmd
}
