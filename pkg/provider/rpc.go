// Package provider provides the public API for atrium weather providers.
package provider

import (
	"context"
	"encoding/json"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// WeatherProviderRPC implements the go-plugin Plugin interface for weather providers.
type WeatherProviderRPC struct {
	plugin.Plugin
	Impl WeatherProvider
}

// Server returns an RPC server for this provider.
func (p *WeatherProviderRPC) Server(*plugin.MuxBroker) (any, error) {
	return &WeatherProviderRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this provider.
func (p *WeatherProviderRPC) Client(b *plugin.MuxBroker, c *rpc.Client) (any, error) {
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
func (s *WeatherProviderRPCServer) GetMetadata(_ any, resp *ProviderInfo) error {
	*resp = s.Impl.GetMetadata()
	return nil
}

// SeedHint implements the RPC method for fetching the layout seed hint.
func (s *WeatherProviderRPCServer) SeedHint(_ any, resp *int64) error {
	*resp = s.Impl.SeedHint()
	return nil
}

// GetFlagHelp implements the RPC method for fetching flag help.
func (s *WeatherProviderRPCServer) GetFlagHelp(_ any, resp *[]FlagHelp) error {
	*resp = s.Impl.GetFlagHelp()
	return nil
}

// WeatherProviderRPCClient is the RPC client implementation for weather providers.
type WeatherProviderRPCClient struct {
	client *rpc.Client
}

// Derive calls the remote Derive method.
func (c *WeatherProviderRPCClient) Derive(_ context.Context, opts DeriveOptions) (WeatherData, error) {
	var respBytes []byte
	err := c.client.Call("Plugin.Derive", opts, &respBytes)
	if err != nil {
		return WeatherData{}, err
	}

	var data WeatherData
	if err := json.Unmarshal(respBytes, &data); err != nil {
		return WeatherData{}, err
	}

	return data, nil
}

// GetMetadata calls the remote GetMetadata method.
func (c *WeatherProviderRPCClient) GetMetadata() (ProviderInfo, error) {
	var info ProviderInfo
	err := c.client.Call("Plugin.GetMetadata", new(any), &info)
	return info, err
}

// SeedHint calls the remote SeedHint method.
func (c *WeatherProviderRPCClient) SeedHint() int64 {
	var hint int64
	err := c.client.Call("Plugin.SeedHint", new(any), &hint)
	if err != nil {
		return 0
	}
	return hint
}

// GetFlagHelp calls the remote GetFlagHelp method.
func (c *WeatherProviderRPCClient) GetFlagHelp() []FlagHelp {
	var help []FlagHelp
	err := c.client.Call("Plugin.GetFlagHelp", new(any), &help)
	if err != nil {
		return []FlagHelp{}
	}
	return help
}

// RPCError represents an error returned from an RPC call.
type RPCError struct {
	Message string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return e.Message
}
