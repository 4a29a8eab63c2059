// Package protocol defines the provider plugin protocol version and compatibility checking.
package protocol

import (
	"context"
	"encoding/json"
	"net/rpc"
	"time"

	"github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/atrium/internal/weather"
)

// WeatherProvider is the interface that provider plugins must implement for go-plugin RPC.
type WeatherProvider interface {
	// Derive produces weather parameters from provider-specific inputs.
	Derive(ctx context.Context, opts DeriveOptions) (weather.Params, error)

	// GetMetadata returns provider metadata.
	GetMetadata() ProviderInfo
}

// DeriveOptions holds options for provider derivation (matches provider.DeriveOptions).
type DeriveOptions struct {
	Verbose      bool           `json:"verbose"`
	Now          time.Time      `json:"now,omitempty"`
	ProviderArgs map[string]any `json:"provider_args,omitempty"`
}

// WeatherProviderRPC implements the go-plugin Plugin interface for weather providers.
type WeatherProviderRPC struct {
	plugin.Plugin
	Impl WeatherProvider
}

// Server returns an RPC server for this provider.
func (p *WeatherProviderRPC) Server(*plugin.MuxBroker) (interface{}, error) {
	return &WeatherProviderRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this provider.
func (p *WeatherProviderRPC) Client(b *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &WeatherProviderRPCClient{client: c}, nil
}

// WeatherProviderRPCServer is the RPC server implementation for weather providers.
type WeatherProviderRPCServer struct {
	Impl WeatherProvider
}

// Derive implements the RPC method for weather derivation.
func (s *WeatherProviderRPCServer) Derive(opts DeriveOptions, resp *[]byte) error {
	params, err := s.Impl.Derive(context.Background(), opts)
	if err != nil {
		return err
	}

	// Convert to JSON-compatible format.
	data, err := json.Marshal(params)
	if err != nil {
		return err
	}

	*resp = data
	return nil
}

// GetMetadata implements the RPC method for fetching provider metadata.
func (s *WeatherProviderRPCServer) GetMetadata(_ interface{}, resp *ProviderInfo) error {
	*resp = s.Impl.GetMetadata()
	return nil
}

// WeatherProviderRPCClient is the RPC client implementation for weather providers.
type WeatherProviderRPCClient struct {
	client *rpc.Client
}

// Derive calls the remote Derive method.
func (c *WeatherProviderRPCClient) Derive(ctx context.Context, opts DeriveOptions) (weather.Params, error) {
	var respBytes []byte
	err := c.client.Call("Plugin.Derive", opts, &respBytes)
	if err != nil {
		return weather.Params{}, err
	}

	var params weather.Params
	if err := json.Unmarshal(respBytes, &params); err != nil {
		return weather.Params{}, err
	}

	if params.Timestamp.IsZero() {
		params.Timestamp = time.Now()
	}
	params.Normalize()

	return params, nil
}

// GetMetadata calls the remote GetMetadata method.
func (c *WeatherProviderRPCClient) GetMetadata() (ProviderInfo, error) {
	var info ProviderInfo
	err := c.client.Call("Plugin.GetMetadata", new(interface{}), &info)
	return info, err
}

// SeedHint calls the remote SeedHint method.
// Returns 0 if the provider does not supply one.
func (c *WeatherProviderRPCClient) SeedHint(ctx context.Context) int64 {
	var hint int64
	err := c.client.Call("Plugin.SeedHint", new(interface{}), &hint)
	if err != nil {
		return 0
	}
	return hint
}

// GetFlagHelp calls the remote GetFlagHelp method.
// Returns an empty slice if the provider does not supply flag help.
func (c *WeatherProviderRPCClient) GetFlagHelp() ([]FlagHelp, error) {
	var flags []FlagHelp
	err := c.client.Call("Plugin.GetFlagHelp", new(interface{}), &flags)
	if err != nil {
		return []FlagHelp{}, nil
	}
	return flags, nil
}

// RPCError represents an error returned from an RPC call.
type RPCError struct {
	Message string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return e.Message
}

// ConvertDeriveOptions converts provider-level options to the RPC wire format.
func ConvertDeriveOptions(verbose bool, now time.Time, args map[string]any) DeriveOptions {
	return DeriveOptions{
		Verbose:      verbose,
		Now:          now,
		ProviderArgs: args,
	}
}
