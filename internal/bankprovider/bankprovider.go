// Package bankprovider exposes the bank data integration surface. No real
// provider is wired yet; the client reports its connection state so the API
// can answer truthfully.
package bankprovider

import (
	"context"

	"github.com/aramkechichian/fintech-credits/internal/models"
)

// Status values reported by the provider client.
const (
	// StatusNotConnected means no provider integration is configured.
	StatusNotConnected = "not_connected"
	// StatusConnected means a provider integration is active.
	StatusConnected = "connected"
)

// Info describes the current provider integration.
type Info struct {
	Status   string `json:"status"`
	Provider string `json:"provider,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Client answers bank provider queries.
type Client struct {
	providerName string
}

// NewClient constructs a Client. An empty provider name yields a
// not-connected client.
func NewClient(providerName string) *Client {
	return &Client{providerName: providerName}
}

// Info reports the provider connection state.
func (c *Client) Info(_ context.Context) Info {
	if c == nil || c.providerName == "" {
		return Info{
			Status:  StatusNotConnected,
			Message: "bank provider integration is not configured",
		}
	}
	return Info{Status: StatusConnected, Provider: c.providerName}
}

// BankInformation fetches account data for an applicant. Without a provider
// it returns a payload carrying only the connection state.
func (c *Client) BankInformation(ctx context.Context, country models.Country, document string) models.BankInformation {
	info := c.Info(ctx)
	data := map[string]any{"status": info.Status}
	if info.Provider != "" {
		data["provider"] = info.Provider
	}
	return models.BankInformation{ProviderData: data}
}
