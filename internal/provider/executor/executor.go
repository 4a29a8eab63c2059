// Package executor provides a unified interface for executing provider plugins
// regardless of their underlying protocol (go-plugin RPC or JSON-stdio).
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os/exec"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/atrium/internal/provider/protocol"
	"github.com/jmylchreest/atrium/internal/weather"
)

// PluginExecutor provides a unified interface for executing provider plugins.
type PluginExecutor struct {
	path         string
	protocolType protocol.PluginType
	info         protocol.ProviderInfo
	client       *plugin.Client
	rpcClient    *protocol.WeatherProviderRPCClient
	runner       ProcessRunner
	seedHint     int64
	verbose      bool
}

// New creates a new PluginExecutor by detecting the provider's protocol.
func New(providerPath string) (*PluginExecutor, error) {
	return NewWithVerbose(providerPath, false)
}

// NewWithVerbose creates a new PluginExecutor with verbose logging control.
func NewWithVerbose(providerPath string, verbose bool) (*PluginExecutor, error) {
	return NewWithVerboseAndRunner(providerPath, verbose, NewRealProcessRunner())
}

// NewWithVerboseAndRunner creates a new PluginExecutor with an injected process runner.
func NewWithVerboseAndRunner(providerPath string, verbose bool, runner ProcessRunner) (*PluginExecutor, error) {
	// Detect protocol.
	result, err := protocol.DetectProtocol(providerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to detect provider protocol: %w", err)
	}

	executor := &PluginExecutor{
		path:         providerPath,
		protocolType: result.Type,
		info:         result.ProviderInfo,
		runner:       runner,
		verbose:      verbose,
	}

	// If it's a go-plugin, the RPC client is initialized lazily on first use
	// to avoid keeping connections open unnecessarily.

	return executor, nil
}

// Info returns the provider metadata gathered during protocol detection.
func (e *PluginExecutor) Info() protocol.ProviderInfo {
	return e.info
}

// Derive runs the provider and returns weather parameters.
func (e *PluginExecutor) Derive(ctx context.Context, opts protocol.DeriveOptions) (weather.Params, error) {
	switch e.protocolType {
	case protocol.PluginTypeGoPlugin:
		return e.deriveGoPlugin(ctx, opts)
	case protocol.PluginTypeJSON:
		return e.deriveJSON(ctx, opts)
	default:
		return weather.Params{}, fmt.Errorf("unsupported protocol type: %s", e.protocolType)
	}
}

// SeedHint returns the layout seed hint reported by the provider.
// For JSON-stdio providers the hint comes from the last Derive output.
// Returns 0 if the provider supplies none.
func (e *PluginExecutor) SeedHint(ctx context.Context) int64 {
	if e.protocolType == protocol.PluginTypeGoPlugin {
		client, err := e.getRPCClient(ctx)
		if err != nil {
			return 0
		}
		return client.SeedHint(ctx)
	}
	return e.seedHint
}

// GetFlagHelp retrieves help information for the provider's flags.
func (e *PluginExecutor) GetFlagHelp(ctx context.Context) ([]protocol.FlagHelp, error) {
	switch e.protocolType {
	case protocol.PluginTypeGoPlugin:
		client, err := e.getRPCClient(ctx)
		if err != nil {
			return nil, err
		}
		return client.GetFlagHelp()
	case protocol.PluginTypeJSON:
		// JSON stdio providers do not advertise flags.
		return []protocol.FlagHelp{}, nil
	default:
		return nil, fmt.Errorf("unsupported protocol type: %s", e.protocolType)
	}
}

// Close cleans up any resources held by the executor.
func (e *PluginExecutor) Close() {
	if e.client != nil {
		e.client.Kill()
		e.client = nil
		e.rpcClient = nil
	}
}

// --- Go-Plugin RPC implementations ---

func (e *PluginExecutor) getRPCClient(ctx context.Context) (*protocol.WeatherProviderRPCClient, error) {
	if e.rpcClient != nil {
		return e.rpcClient, nil
	}

	// Configure logger based on verbose flag.
	var logger hclog.Logger
	if e.verbose {
		logger = hclog.New(&hclog.LoggerOptions{
			Name:   "provider",
			Output: log.Writer(),
			Level:  hclog.Debug,
		})
	} else {
		logger = hclog.New(&hclog.LoggerOptions{
			Name:   "provider",
			Output: io.Discard,
			Level:  hclog.Off,
		})
	}

	// Initialize go-plugin client.
	e.client = plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig: protocol.Handshake,
		Plugins: map[string]plugin.Plugin{
			"provider": &protocol.WeatherProviderRPC{},
		},
		Cmd:              exec.Command(e.path),
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
		Logger:           logger,
	})

	// Connect via RPC.
	rpcClient, err := e.client.Client()
	if err != nil {
		e.client.Kill()
		return nil, fmt.Errorf("failed to get RPC client: %w", err)
	}

	// Request the provider.
	raw, err := rpcClient.Dispense("provider")
	if err != nil {
		e.client.Kill()
		return nil, fmt.Errorf("failed to dispense provider: %w", err)
	}

	client := raw.(*protocol.WeatherProviderRPCClient)
	e.rpcClient = client

	return client, nil
}

func (e *PluginExecutor) deriveGoPlugin(ctx context.Context, opts protocol.DeriveOptions) (weather.Params, error) {
	client, err := e.getRPCClient(ctx)
	if err != nil {
		return weather.Params{}, err
	}

	return client.Derive(ctx, opts)
}

// --- JSON-stdio implementation ---

func (e *PluginExecutor) deriveJSON(ctx context.Context, opts protocol.DeriveOptions) (weather.Params, error) {
	// Convert to JSON.
	optsJSON, err := json.Marshal(opts)
	if err != nil {
		return weather.Params{}, fmt.Errorf("failed to marshal options: %w", err)
	}

	// Execute provider.
	stdout, stderr, err := e.runner.Run(ctx, e.path, nil, bytes.NewReader(optsJSON))
	if err != nil {
		return weather.Params{}, fmt.Errorf("provider execution failed: %w\nStderr: %s", err, stderr)
	}

	// Parse output - try a bare parameter object first.
	var params weather.Params
	if err := json.Unmarshal(stdout, &params); err == nil && params.WeatherType != "" {
		return finishParams(params), nil
	}

	// Try enveloped format carrying an optional seed hint.
	var envelope struct {
		Weather  *weather.Params `json:"weather"`
		SeedHint int64           `json:"seed_hint"`
	}
	if err := json.Unmarshal(stdout, &envelope); err == nil && envelope.Weather != nil {
		e.seedHint = envelope.SeedHint
		return finishParams(*envelope.Weather), nil
	}

	return weather.Params{}, fmt.Errorf("failed to parse provider output\nOutput: %s", stdout)
}

func finishParams(params weather.Params) weather.Params {
	if params.Timestamp.IsZero() {
		params.Timestamp = time.Now()
	}
	params.Normalize()
	return params
}
