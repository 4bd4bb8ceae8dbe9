package model

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies which upstream accounting platform a connection or
// extraction request targets.
type Platform string

// Supported platforms.
const (
	PlatformQuickBooks Platform = "quickbooks"
	PlatformXero       Platform = "xero"
)

// ParsePlatform normalizes a user-supplied platform name.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quickbooks", "qbo":
		return PlatformQuickBooks, nil
	case "xero":
		return PlatformXero, nil
	default:
		return "", fmt.Errorf("unknown platform: %q", s)
	}
}

// Connection is a stored link to one organization on one platform. Token
// acquisition and refresh happen elsewhere; this record only carries what the
// fetch layer needs to address the right tenant.
type Connection struct {
	CreatedAt   time.Time
	Platform    Platform
	TenantID    string
	AccessToken string
	ID          int64
	Active      bool
}
