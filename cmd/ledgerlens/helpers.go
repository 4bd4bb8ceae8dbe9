package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ledgerlens/ledgerlens/internal/common"
	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/quickbooks"
	"github.com/ledgerlens/ledgerlens/internal/service"
	"github.com/ledgerlens/ledgerlens/internal/storage"
	"github.com/ledgerlens/ledgerlens/internal/xero"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"
)

// databasePath resolves the configured database path with a home-relative
// default.
func databasePath() (string, error) {
	if path := viper.GetString("database.path"); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "ledgerlens", "ledgerlens.db"), nil
}

func openStore() (*storage.SQLiteStore, error) {
	path, err := databasePath()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewSQLiteStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

// platformSources builds the platform clients for the active connection.
// Only the client for the connection's platform is constructed; the other
// stays nil and the server reports it as unconfigured.
func platformSources(ctx context.Context, store service.ConnectionStore) (service.ReportSource, service.BillSource, error) {
	conn, err := store.ActiveConnection(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: run 'ledgerlens connect' first", common.ErrNoActiveConnection)
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: conn.AccessToken})

	switch conn.Platform {
	case model.PlatformQuickBooks:
		client, err := quickbooks.NewClient(quickbooks.Config{
			BaseURL:     viper.GetString("quickbooks.base_url"),
			RealmID:     conn.TenantID,
			TokenSource: tokenSource,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	case model.PlatformXero:
		client, err := xero.NewClient(xero.Config{
			BaseURL:     viper.GetString("xero.base_url"),
			TenantID:    conn.TenantID,
			TokenSource: tokenSource,
		})
		if err != nil {
			return nil, nil, err
		}
		return nil, client, nil
	default:
		return nil, nil, fmt.Errorf("unknown platform in active connection: %q", conn.Platform)
	}
}
