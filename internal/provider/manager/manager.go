// Package manager provides weather provider management with configuration
// support.
package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/atrium/internal/provider"
	"github.com/jmylchreest/atrium/internal/provider/executor"
	"github.com/jmylchreest/atrium/internal/provider/file"
	"github.com/jmylchreest/atrium/internal/provider/googlegenai"
	"github.com/jmylchreest/atrium/internal/provider/protocol"
	"github.com/jmylchreest/atrium/internal/provider/remote"
	"github.com/jmylchreest/atrium/internal/provider/rules"
	"github.com/jmylchreest/atrium/internal/weather"
)

const (
	versionUnknown = "unknown"
)

// Config holds provider configuration.
type Config struct {
	// DisabledProviders is a list of provider names to disable.
	// The special value "all" disables every provider.
	DisabledProviders []string

	// EnabledProviders is a list of provider names to explicitly enable.
	// If set, only these providers are enabled (whitelist mode).
	EnabledProviders []string
}

// Builder provides a fluent interface for constructing a Manager with
// configuration.
type Builder struct {
	config   Config
	registry *provider.Registry
	useEnv   bool
}

// NewBuilder creates a new Manager builder with default settings.
func NewBuilder() *Builder {
	return &Builder{
		config:   Config{},
		registry: provider.NewRegistry(),
		useEnv:   false,
	}
}

// WithConfig sets the configuration for the manager.
func (b *Builder) WithConfig(config Config) *Builder {
	b.config = config
	return b
}

// WithEnvConfig loads configuration from environment variables.
// Reads ATRIUM_DISABLED_PROVIDERS and ATRIUM_ENABLED_PROVIDERS.
func (b *Builder) WithEnvConfig() *Builder {
	b.useEnv = true
	return b
}

// WithCustomRegistry allows providing a custom provider registry (useful for
// testing).
func (b *Builder) WithCustomRegistry(registry *provider.Registry) *Builder {
	b.registry = registry
	return b
}

// Build constructs the Manager with the configured settings.
func (b *Builder) Build() *Manager {
	// Start with base config.
	config := b.config

	// Apply env config if requested (overrides the file lists).
	if b.useEnv {
		if disabled := os.Getenv("ATRIUM_DISABLED_PROVIDERS"); disabled != "" {
			config.DisabledProviders = parseProviderList(disabled)
		}
		if enabled := os.Getenv("ATRIUM_ENABLED_PROVIDERS"); enabled != "" {
			config.EnabledProviders = parseProviderList(enabled)
		}
	}

	m := &Manager{
		config:   config,
		registry: b.registry,
	}

	// Register built-in providers.
	m.registerBuiltinProviders()

	return m
}

// NewFromEnv creates a Manager configured from the environment. Shorthand
// for NewBuilder().WithEnvConfig().Build().
func NewFromEnv() *Manager {
	return NewBuilder().WithEnvConfig().Build()
}

// Manager manages provider enable/disable state and owns the provider
// registry.
type Manager struct {
	config   Config
	registry *provider.Registry
}

// registerBuiltinProviders registers all built-in providers.
func (m *Manager) registerBuiltinProviders() {
	m.registry.Register(rules.New())
	m.registry.Register(file.New())
	m.registry.Register(remote.New())
	m.registry.Register(googlegenai.New())
}

// Registry returns the provider registry.
func (m *Manager) Registry() *provider.Registry {
	return m.registry
}

// GetProvider retrieves a provider by name.
func (m *Manager) GetProvider(name string) (provider.Provider, bool) {
	return m.registry.Get(name)
}

// IsEnabled checks if a provider is enabled. Built-in providers are enabled
// by default; a derivation always runs exactly one explicitly selected
// provider, so the lists exist to fence off expensive or unwanted sources,
// not to opt providers in.
func (m *Manager) IsEnabled(p provider.Provider) bool {
	return m.isEnabled(p.Name())
}

// isEnabled determines if a provider is enabled based on configuration.
func (m *Manager) isEnabled(name string) bool {
	// Check if "all" is explicitly disabled (takes precedence over everything).
	if slices.Contains(m.config.DisabledProviders, "all") {
		return false
	}

	// Check if explicitly disabled.
	if slices.Contains(m.config.DisabledProviders, name) {
		return false
	}

	// Check if "all" is enabled (enables all providers).
	if slices.Contains(m.config.EnabledProviders, "all") {
		return true
	}

	// If whitelist mode (EnabledProviders set), only listed providers are
	// enabled.
	if len(m.config.EnabledProviders) > 0 {
		return slices.Contains(m.config.EnabledProviders, name)
	}

	return true
}

// FilterProviders returns only enabled providers.
func (m *Manager) FilterProviders() map[string]provider.Provider {
	enabled := make(map[string]provider.Provider)
	for name, p := range m.registry.All() {
		if m.IsEnabled(p) {
			enabled[name] = p
		}
	}
	return enabled
}

// ListProviders returns names of enabled providers.
func (m *Manager) ListProviders() []string {
	names := []string{}
	for name, p := range m.registry.All() {
		if m.IsEnabled(p) {
			names = append(names, name)
		}
	}
	return names
}

// AllProviders returns all registered providers (including disabled).
func (m *Manager) AllProviders() map[string]provider.Provider {
	return m.registry.All()
}

// UpdateConfig updates the manager's configuration without recreating
// provider instances. This preserves flag bindings and other provider state.
func (m *Manager) UpdateConfig(config Config) {
	m.config = config
}

// GetConfig returns the current configuration.
func (m *Manager) GetConfig() Config {
	return m.config
}

// SetDisabled adds a provider to the disabled list.
func (m *Manager) SetDisabled(name string) {
	for i, enabled := range m.config.EnabledProviders {
		if enabled == name {
			m.config.EnabledProviders = append(m.config.EnabledProviders[:i], m.config.EnabledProviders[i+1:]...)
			break
		}
	}

	if slices.Contains(m.config.DisabledProviders, name) {
		return
	}
	m.config.DisabledProviders = append(m.config.DisabledProviders, name)
}

// SetEnabled adds a provider to the enabled list (whitelist mode).
func (m *Manager) SetEnabled(name string) {
	for i, disabled := range m.config.DisabledProviders {
		if disabled == name {
			m.config.DisabledProviders = append(m.config.DisabledProviders[:i], m.config.DisabledProviders[i+1:]...)
			break
		}
	}

	if slices.Contains(m.config.EnabledProviders, name) {
		return
	}
	m.config.EnabledProviders = append(m.config.EnabledProviders, name)
}

// RegisterExternalProvider registers an external provider executable with
// the manager.
func (m *Manager) RegisterExternalProvider(name, path, description string) error {
	// Validate provider path - must be absolute and should exist.
	if !filepath.IsAbs(path) {
		return fmt.Errorf("provider path must be absolute: %s", path)
	}

	// Check if the provider file exists and is executable.
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("provider not found or not accessible: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("provider path is a directory, not a file: %s", path)
	}

	// Query provider info to check protocol version.
	providerInfo, err := queryProviderInfo(path)
	if err != nil {
		return fmt.Errorf("failed to query provider info: %w", err)
	}

	// Check protocol version compatibility.
	if providerInfo.ProtocolVersion != "" {
		compatible, err := protocol.IsCompatible(providerInfo.ProtocolVersion)
		if err != nil || !compatible {
			errMsg := "unknown error"
			if err != nil {
				errMsg = err.Error()
			}
			return fmt.Errorf(
				"provider '%s' protocol version %s is incompatible with atrium %s: %s",
				name,
				providerInfo.ProtocolVersion,
				protocol.ProtocolVersion,
				errMsg,
			)
		}
	}
	// Note: If protocol_version is missing, we allow the provider (backward
	// compatibility) but this should be warned about in verbose mode.

	m.registry.Register(NewExternalProvider(name, description, path))
	return nil
}

// queryProviderInfo queries a provider executable for its metadata.
func queryProviderInfo(providerPath string) (protocol.ProviderInfo, error) {
	cmd := exec.Command(providerPath, "--plugin-info")
	output, err := cmd.Output()
	if err != nil {
		return protocol.ProviderInfo{}, fmt.Errorf("failed to execute provider: %w", err)
	}

	var info protocol.ProviderInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return protocol.ProviderInfo{}, fmt.Errorf("failed to parse provider info: %w", err)
	}

	return info, nil
}

// parseProviderList parses a comma-separated list of provider names.
func parseProviderList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ExternalProvider wraps an external executable as a weather provider.
type ExternalProvider struct {
	name        string
	description string
	path        string
	args        map[string]any
	verbose     bool

	seedHint int64
}

// NewExternalProvider creates a new external provider wrapper.
func NewExternalProvider(name, description, path string) *ExternalProvider {
	return &ExternalProvider{
		name:        name,
		description: description,
		path:        path,
	}
}

// Name returns the provider's name.
func (p *ExternalProvider) Name() string {
	return p.name
}

// Description returns the provider's description.
func (p *ExternalProvider) Description() string {
	return p.description
}

// Path returns the provider executable's path.
func (p *ExternalProvider) Path() string {
	return p.path
}

// Version returns the provider's version.
// For external providers, this queries the provider executable.
func (p *ExternalProvider) Version() string {
	info, err := queryProviderInfo(p.path)
	if err != nil {
		return versionUnknown
	}
	if info.Version == "" {
		return versionUnknown
	}
	return info.Version
}

// SetArgs sets custom arguments for this provider.
func (p *ExternalProvider) SetArgs(args map[string]any) {
	p.args = args
}

// GetArgs returns custom arguments for this provider.
func (p *ExternalProvider) GetArgs() map[string]any {
	return p.args
}

// SetVerbose sets the verbose flag for this provider.
func (p *ExternalProvider) SetVerbose(verbose bool) {
	p.verbose = verbose
}

// Derive executes the external provider and returns weather parameters.
// Uses the hybrid executor which automatically detects and uses the
// appropriate protocol (go-plugin RPC or JSON-stdio).
func (p *ExternalProvider) Derive(ctx context.Context, opts provider.DeriveOptions) (weather.Params, error) {
	verbose := opts.Verbose || p.verbose

	// Create executor (detects protocol automatically).
	exec, err := executor.NewWithVerbose(p.path, verbose)
	if err != nil {
		return weather.Params{}, fmt.Errorf("failed to create provider executor: %w", err)
	}
	defer exec.Close()

	// Merge provider args from opts with the provider's own args.
	mergedArgs := make(map[string]any)
	maps.Copy(mergedArgs, p.args)
	maps.Copy(mergedArgs, opts.ProviderArgs)

	// Convert to protocol format.
	protocolOpts := protocol.ConvertDeriveOptions(verbose, opts.Now, mergedArgs)

	// Debug: show what's being sent to the provider.
	if verbose {
		optsJSON, _ := json.Marshal(protocolOpts)
		fmt.Fprintf(os.Stderr, "   Sending to provider: %s\n", string(optsJSON))
	}

	params, err := exec.Derive(ctx, protocolOpts)
	if err != nil {
		return weather.Params{}, fmt.Errorf("provider execution failed: %w", err)
	}

	p.seedHint = exec.SeedHint(ctx)
	return params, nil
}

// SeedHint returns the layout seed suggested by the last derivation, or 0.
// Implements the provider.SeedHinter interface.
func (p *ExternalProvider) SeedHint() int64 {
	return p.seedHint
}

// RegisterFlags is a no-op for external providers (they don't have flags).
func (p *ExternalProvider) RegisterFlags(_ *cobra.Command) {
	// External providers receive arguments through --provider-args.
}

// Validate checks if the provider is valid.
func (p *ExternalProvider) Validate() error {
	// Basic check - the provider might still fail at runtime.
	return nil
}
