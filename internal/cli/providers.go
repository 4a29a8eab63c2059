package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/atrium/internal/provider/manager"
)

const (
	// ProviderLockFile is the name of the provider lock file.
	ProviderLockFile = ".atrium-providers.json"

	// providerNameAll is the pseudo-name addressing every provider at once.
	providerNameAll = "all"
)

// ProviderLock represents the provider lock file structure.
type ProviderLock struct {
	// Version of the lock file format.
	Version string `json:"version,omitempty"`

	// EnabledProviders is a list of explicitly enabled providers.
	EnabledProviders []string `json:"enabled_providers,omitempty"`

	// DisabledProviders is a list of explicitly disabled providers.
	DisabledProviders []string `json:"disabled_providers,omitempty"`

	// ExternalProviders maps provider names to their metadata.
	ExternalProviders map[string]*ExternalProviderMeta `json:"external_providers,omitempty"`
}

// ExternalProviderMeta contains metadata about an external provider executable.
type ExternalProviderMeta struct {
	// Name is the provider's actual name (from --plugin-info).
	Name string `json:"name"`

	// Path is the absolute path to the provider executable.
	Path string `json:"path"`

	// Version is the provider version if available.
	Version string `json:"version,omitempty"`

	// Description is the provider description if available.
	Description string `json:"description,omitempty"`

	// Source records where the provider came from (local path, URL, git).
	Source string `json:"source,omitempty"`

	// InstalledAt is the timestamp when the provider was installed.
	InstalledAt string `json:"installed_at,omitempty"`
}

var (
	// Providers command flags.
	providerLockPath   string
	providerForce      bool
	providerClearOnly  bool
	providerNoCopy     bool
	providerSourceType string
	providerShowPath   bool
)

// providersCmd represents the providers command.
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Manage weather providers",
	Long: `Manage Atrium weather providers including listing, enabling, disabling, and
managing external provider executables.

Providers can be controlled via:
  1. Provider lock file (.atrium-providers.json)
  2. Environment variables (ATRIUM_ENABLED_PROVIDERS, ATRIUM_DISABLED_PROVIDERS)
  3. Default provider settings

Priority order: lock file > environment variables > provider defaults

When ATRIUM_ENABLED_PROVIDERS is set, only those providers are enabled
(whitelist mode). When ATRIUM_DISABLED_PROVIDERS is set, those providers are
disabled (blacklist mode).

Commands that modify the lock file:
  - add: Adds external provider and updates lock file
  - remove: Removes external provider and updates lock file
  - enable: Updates lock file to enable provider
  - disable: Updates lock file to disable provider
  - clear: Updates lock file to clear provider configuration`,
}

// providerListCmd lists all available providers.
var providerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available providers",
	Long: `List all available weather providers including their enabled/disabled state.

Shows both built-in and external providers with their version and description.`,
	RunE: runProviderList,
}

// providerInfoCmd shows details for a single provider.
var providerInfoCmd = &cobra.Command{
	Use:   "info <provider-name>",
	Short: "Show detailed provider information",
	Long: `Show detailed information about a provider.

For external providers this includes the executable path, protocol version
and the flags reported by the provider.

Examples:
  atrium providers info rules
  atrium providers info market-mood`,
	Args: cobra.ExactArgs(1),
	RunE: runProviderInfo,
}

// providerEnableCmd enables a provider.
var providerEnableCmd = &cobra.Command{
	Use:   "enable <provider-name>",
	Short: "Enable a provider",
	Long: `Enable a provider by adding it to the provider lock file.

Examples:
  atrium providers enable rules
  atrium providers enable googlegenai
  atrium providers enable all
  atrium providers enable remote --clear  # Remove from disabled list only`,
	Args: cobra.ExactArgs(1),
	RunE: runProviderEnable,
}

// providerDisableCmd disables a provider.
var providerDisableCmd = &cobra.Command{
	Use:   "disable <provider-name>",
	Short: "Disable a provider",
	Long: `Disable a provider by adding it to the disabled list in the provider lock file.

Examples:
  atrium providers disable googlegenai
  atrium providers disable all
  atrium providers disable remote --clear  # Remove from enabled list only`,
	Args: cobra.ExactArgs(1),
	RunE: runProviderDisable,
}

// providerClearCmd clears provider configuration.
var providerClearCmd = &cobra.Command{
	Use:   "clear [provider-name]",
	Short: "Clear provider configuration",
	Long: `Clear provider enabled/disabled status, returning it to default behaviour.

If a provider name is provided, clears that provider's configuration.
If no provider name is provided, clears all provider configuration.

Examples:
  atrium providers clear googlegenai  # Clear googlegenai config
  atrium providers clear              # Clear all provider config`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProviderClear,
}

// providerAddCmd adds an external provider.
var providerAddCmd = &cobra.Command{
	Use:   "add <source>",
	Short: "Add an external provider",
	Long: `Add an external weather provider from a local file, HTTP URL, or Git repository.

The provider executable will be copied to the provider directory and
registered in the provider lock file. The provider name is automatically
detected from the provider's --plugin-info output.

WARNING: Only install providers from trusted sources. Providers execute with
your user permissions and can access your system. Review provider source code
before installation to ensure it is safe.

The command will:
  1. Verify source and destination are not the same file
  2. Query provider metadata (name, version, protocol)
  3. Check protocol compatibility
  4. Check for version conflicts (upgrades proceed automatically)
  5. Copy the executable to ~/.local/share/atrium/providers/ (unless --no-copy is used)
  6. Register the provider in the lock file

Provider upgrades (newer versions) proceed automatically.
Use --force to downgrade, reinstall the same version, or overwrite.
Use --no-copy to reference the provider at its current location without
copying (useful for system-installed packages that manage their own updates).

Examples:
  atrium providers add ./contrib/providers/market-mood/market-mood
  atrium providers add https://example.com/providers/lunar.tar.gz
  atrium providers add https://github.com/user/provider.git
  atrium providers add https://github.com/user/provider.git:dist/provider
  atrium providers add ./my-provider --force
  atrium providers add /usr/bin/atrium-provider-lunar --no-copy`,
	Args: cobra.ExactArgs(1),
	RunE: runProviderAdd,
}

// providerRemoveCmd removes an external provider.
var providerRemoveCmd = &cobra.Command{
	Use:     "remove <provider-name>",
	Aliases: []string{"delete"},
	Short:   "Remove an external provider",
	Long: `Remove an external provider from the provider directory and the lock file.

Built-in providers cannot be removed.

Examples:
  atrium providers remove market-mood
  atrium providers remove lunar --force`,
	Args: cobra.ExactArgs(1),
	RunE: runProviderRemove,
}

// providerUpdateCmd updates external providers from lock file sources.
var providerUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update external providers from lock file sources",
	Long: `Update external providers by re-downloading/copying from their source locations.

This reads the provider lock file and updates all external providers based on
their source field. Useful for keeping providers in sync across machines or
after pulling changes to the lock file.

Examples:
  atrium providers update
  atrium providers update --lock-file /path/to/.atrium-providers.json`,
	RunE: runProviderUpdate,
}

func init() {
	// Add providers command flags.
	providersCmd.PersistentFlags().StringVar(&providerLockPath, "lock-file", "", "path to provider lock file (default: .atrium-providers.json in current or home directory)")

	providerListCmd.Flags().BoolVar(&providerShowPath, "show-path", false, "show the executable path for each external provider")
	providerAddCmd.Flags().BoolVarP(&providerForce, "force", "f", false, "force overwrite if provider already exists")
	providerAddCmd.Flags().StringVar(&providerSourceType, "source-type", "", "force source type (local, http, git) - auto-detected if not specified")
	providerAddCmd.Flags().BoolVar(&providerNoCopy, "no-copy", false, "register provider at its current location without copying (useful for system packages)")
	providerRemoveCmd.Flags().BoolVarP(&providerForce, "force", "f", false, "force removal without confirmation")
	providerEnableCmd.Flags().BoolVarP(&providerClearOnly, "clear", "c", false, "Only remove from disabled list (don't add to enabled)")
	providerDisableCmd.Flags().BoolVarP(&providerClearOnly, "clear", "c", false, "Only remove from enabled list (don't add to disabled)")

	// Add subcommands.
	providersCmd.AddCommand(providerListCmd)
	providersCmd.AddCommand(providerInfoCmd)
	providersCmd.AddCommand(providerEnableCmd)
	providersCmd.AddCommand(providerDisableCmd)
	providersCmd.AddCommand(providerClearCmd)
	providersCmd.AddCommand(providerAddCmd)
	providersCmd.AddCommand(providerRemoveCmd)
	providersCmd.AddCommand(providerUpdateCmd)
	providersCmd.AddCommand(providerDoctorCmd)
}

// runProviderList lists all available providers.
func runProviderList(cmd *cobra.Command, _ []string) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}

	// Load provider lock and create manager.
	lock, lockPath, err := loadProviderLock()
	if err != nil && verbose {
		fmt.Fprintf(os.Stderr, "Note: %v\n", err)
	}

	mgr := createManagerFromLock(lock)

	if verbose && lockPath != "" {
		fmt.Fprintf(os.Stderr, "Using lock file: %s\n\n", lockPath)
	}

	rows := collectProviders(mgr, lock)
	displayProviderTable(rows, providerShowPath)

	return nil
}

// runProviderAdd adds an external provider with safety checks.
func runProviderAdd(cmd *cobra.Command, args []string) error {
	source := args[0]
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}

	// Load or create provider lock.
	lock, lockPath := loadOrCreateProviderLock()

	if verbose {
		fmt.Fprintf(os.Stderr, "Using lock file: %s\n", lockPath)
	}

	// Initialize external providers map if needed.
	if lock.ExternalProviders == nil {
		lock.ExternalProviders = make(map[string]*ExternalProviderMeta)
	}

	// Get provider directory.
	providerDir, err := getProviderDir()
	if err != nil {
		return fmt.Errorf("failed to get provider directory: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Provider directory: %s\n", providerDir)
	}

	// Ensure provider directory exists.
	if err := os.MkdirAll(providerDir, 0o755); err != nil { // #nosec G301 - Provider directory needs standard permissions
		return fmt.Errorf("failed to create provider directory: %w", err)
	}

	// Stage 1: Resolve source path and check if it's already in the provider directory
	sourcePath, isAlreadyInstalled, err := resolveProviderSource(source, providerDir, providerSourceType, verbose)
	if err != nil {
		return err
	}

	if isAlreadyInstalled && verbose {
		fmt.Fprintf(os.Stderr, "Note: Provider source is already in the provider directory\n")
	}

	// Stage 2: Query provider metadata before copying, to avoid executing
	// untrusted code from the final location
	info, err := queryProviderMetadata(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to query provider metadata: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Provider name: %s\n", info.Name)
		fmt.Fprintf(os.Stderr, "Provider version: %s\n", info.Version)
		fmt.Fprintf(os.Stderr, "Protocol version: %s\n", info.ProtocolVersion)
	}

	// Stage 3: Check protocol compatibility
	if err := checkProtocolCompatibility(info.ProtocolVersion, verbose); err != nil {
		return err
	}

	// Stage 4: Check for conflicts and version comparisons
	action, existingMeta, err := determineProviderAction(lock, info.Name, info.Version, providerForce)
	if err != nil {
		return err
	}

	// Stage 5: Install provider to final location (if not already there)
	var finalPath string
	if providerNoCopy {
		// Use the source path directly without copying
		finalPath = sourcePath
		if verbose {
			fmt.Fprintf(os.Stderr, "Using provider at: %s (no-copy mode)\n", finalPath)
		}

		// If we're overwriting a provider that was copied into the provider
		// directory, clean the old file up
		if existingMeta != nil && existingMeta.Path != "" && filepath.Dir(existingMeta.Path) == providerDir {
			if err := os.Remove(existingMeta.Path); err != nil && !os.IsNotExist(err) {
				if verbose {
					fmt.Fprintf(os.Stderr, "Warning: failed to remove old provider file: %v\n", err)
				}
			} else if verbose {
				fmt.Fprintf(os.Stderr, "Removed old provider file: %s\n", existingMeta.Path)
			}
		}
	} else {
		finalPath = filepath.Join(providerDir, filepath.Base(sourcePath))
		if !isAlreadyInstalled {
			if err := installProvider(sourcePath, finalPath, verbose); err != nil {
				return fmt.Errorf("failed to install provider: %w", err)
			}
		}
	}

	// Stage 6: Update lock file
	lock.ExternalProviders[info.Name] = &ExternalProviderMeta{
		Name:        info.Name,
		Path:        finalPath,
		Version:     info.Version,
		Description: info.Description,
		Source:      source,
		InstalledAt: time.Now().UTC().Format(time.RFC3339),
	}

	if err := saveProviderLock(lockPath, lock); err != nil {
		return fmt.Errorf("failed to save provider lock: %w", err)
	}

	// Stage 7: Display success message
	printProviderAddSuccess(info, action, existingMeta, finalPath)
	return nil
}

// runProviderRemove removes an external provider.
func runProviderRemove(cmd *cobra.Command, args []string) error {
	providerName := args[0]
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}

	// Load provider lock.
	lock, lockPath, err := loadProviderLock()
	if err != nil {
		return fmt.Errorf("failed to load provider lock: %w", err)
	}

	if lock == nil || lock.ExternalProviders == nil {
		return fmt.Errorf("no external providers found")
	}

	meta, exists := lock.ExternalProviders[providerName]
	if !exists {
		return fmt.Errorf("provider '%s' not found", providerName)
	}

	// Confirm removal if not forced.
	if !providerForce {
		fmt.Printf("Are you sure you want to remove provider '%s'? (y/N): ", providerName)
		var response string
		if _, err := fmt.Scanln(&response); err != nil {
			return fmt.Errorf("failed to read user input: %w", err)
		}
		if !strings.EqualFold(response, "y") {
			fmt.Println("Removal cancelled")
			return nil
		}
	}

	// Delete the executable only if it's in the provider directory.
	// Providers added with --no-copy are not deleted from disk.
	providerDir, err := getProviderDir()
	if err != nil {
		return fmt.Errorf("failed to get provider directory: %w", err)
	}

	if filepath.Dir(meta.Path) == providerDir {
		if err := os.Remove(meta.Path); err != nil && !os.IsNotExist(err) {
			if verbose {
				fmt.Fprintf(os.Stderr, "Warning: failed to delete provider file: %v\n", err)
			}
		} else if verbose {
			fmt.Fprintf(os.Stderr, "Deleted provider file: %s\n", meta.Path)
		}
	} else if verbose {
		fmt.Fprintf(os.Stderr, "Provider file not deleted (outside provider directory): %s\n", meta.Path)
	}

	// Remove from lock file and from the enable/disable lists.
	delete(lock.ExternalProviders, providerName)
	lock.EnabledProviders = removeFromList(lock.EnabledProviders, providerName)
	lock.DisabledProviders = removeFromList(lock.DisabledProviders, providerName)

	if err := saveProviderLock(lockPath, lock); err != nil {
		return fmt.Errorf("failed to save provider lock: %w", err)
	}

	fmt.Printf("Provider '%s' removed successfully\n", providerName)
	return nil
}

// runProviderUpdate updates external providers from lock file sources.
func runProviderUpdate(cmd *cobra.Command, _ []string) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}

	// Load provider lock.
	lock, lockPath, err := loadProviderLock()
	if err != nil {
		return fmt.Errorf("failed to load provider lock: %w", err)
	}

	if lock == nil || len(lock.ExternalProviders) == 0 {
		fmt.Println("No external providers found in lock file")
		return nil
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Using lock file: %s\n", lockPath)
	}

	providerDir, err := getProviderDir()
	if err != nil {
		return fmt.Errorf("failed to get provider directory: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Provider directory: %s\n\n", providerDir)
	}

	if err := os.MkdirAll(providerDir, 0o755); err != nil { // #nosec G301 - Provider directory needs standard permissions
		return fmt.Errorf("failed to create provider directory: %w", err)
	}

	// Update each external provider.
	successCount := 0
	failCount := 0

	names := make([]string, 0, len(lock.ExternalProviders))
	for name := range lock.ExternalProviders {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		meta := lock.ExternalProviders[name]
		if meta.Source == "" {
			fmt.Printf("Skipping provider '%s' (no source recorded)\n", name)
			continue
		}
		fmt.Printf("Updating provider '%s' from %s...\n", name, meta.Source)

		providerPath, err := installProviderFromSource(meta.Source, name, providerDir, "", verbose)
		if err != nil {
			fmt.Printf("   %v\n", err)
			failCount++
			continue
		}

		// Query the executable for updated metadata. Keep the existing name
		// if the query fails.
		updated := *meta
		updated.Path = providerPath
		if info, err := queryProviderMetadata(providerPath); err == nil {
			if info.Name != "" {
				updated.Name = info.Name
			}
			updated.Version = info.Version
			updated.Description = info.Description
		}
		updated.InstalledAt = time.Now().UTC().Format(time.RFC3339)
		lock.ExternalProviders[name] = &updated

		fmt.Printf("   Updated: %s\n", providerPath)
		successCount++
	}

	// Save updated lock file.
	if successCount > 0 {
		if err := saveProviderLock(lockPath, lock); err != nil {
			return fmt.Errorf("failed to save provider lock: %w", err)
		}
	}

	fmt.Printf("\nUpdate complete: %d succeeded, %d failed\n", successCount, failCount)

	if failCount > 0 {
		return fmt.Errorf("some providers failed to update")
	}

	return nil
}

// loadProviderLock loads the provider lock file.
func loadProviderLock() (*ProviderLock, string, error) {
	lockPath := providerLockPath

	if lockPath == "" {
		// Try current directory first.
		lockPath = ProviderLockFile
		if _, err := os.Stat(lockPath); os.IsNotExist(err) {
			// Try home directory.
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, "", fmt.Errorf("no provider lock file found")
			}

			homeLockPath := filepath.Join(home, ProviderLockFile)
			if _, err := os.Stat(homeLockPath); err != nil {
				return nil, "", fmt.Errorf("no provider lock file found")
			}
			lockPath = homeLockPath
		}
	}

	data, err := os.ReadFile(lockPath) // #nosec G304 - Lock file path controlled by application
	if err != nil {
		return nil, "", fmt.Errorf("failed to read provider lock file: %w", err)
	}

	var lock ProviderLock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, "", fmt.Errorf("failed to parse provider lock file: %w", err)
	}

	return &lock, lockPath, nil
}

// loadOrCreateProviderLock loads or creates a provider lock file.
// Always succeeds by creating a new lock if one doesn't exist.
func loadOrCreateProviderLock() (lock *ProviderLock, lockPath string) {
	lock, lockPath, err := loadProviderLock()
	if err == nil {
		return lock, lockPath
	}

	lockPath = providerLockPath
	if lockPath == "" {
		lockPath = ProviderLockFile
	}

	lock = &ProviderLock{
		EnabledProviders:  []string{},
		DisabledProviders: []string{},
		ExternalProviders: make(map[string]*ExternalProviderMeta),
	}

	return lock, lockPath
}

// saveProviderLock saves the provider lock file.
func saveProviderLock(path string, lock *ProviderLock) error {
	data, err := json.MarshalIndent(lock, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal provider lock: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to update lock file: %w", err)
	}

	return nil
}

// createManagerFromLock creates a provider manager from a lock file.
func createManagerFromLock(lock *ProviderLock) *manager.Manager {
	if lock == nil {
		return manager.NewFromEnv()
	}

	mgr := manager.NewBuilder().WithConfig(manager.Config{
		EnabledProviders:  lock.EnabledProviders,
		DisabledProviders: lock.DisabledProviders,
	}).Build()

	// Register external providers using their actual names.
	for _, meta := range lock.ExternalProviders {
		name := meta.Name
		if name == "" {
			// Fallback: query the executable if the name is missing.
			if info, err := queryProviderMetadata(meta.Path); err == nil {
				name = info.Name
			}
		}

		desc := meta.Description
		if desc == "" {
			desc = fmt.Sprintf("External provider (source: %s)", meta.Source)
		}

		if err := mgr.RegisterExternalProvider(name, meta.Path, desc); err != nil {
			// Silently ignore registration errors.
			continue
		}
	}

	return mgr
}

// applyProviderLock loads the provider lock file and applies its configuration
// to the shared provider manager, registering any external providers. Commands
// that derive weather call this before resolving a provider so lock file
// settings override the environment without recreating the manager (which
// would lose flag bindings).
func applyProviderLock(verbose bool) *ProviderLock {
	lock, _, err := loadProviderLock()
	if err != nil || lock == nil {
		return nil
	}

	providerManager.UpdateConfig(manager.Config{
		EnabledProviders:  lock.EnabledProviders,
		DisabledProviders: lock.DisabledProviders,
	})

	for _, meta := range lock.ExternalProviders {
		if err := registerExternalProvider(meta); err != nil && verbose {
			fmt.Fprintf(os.Stderr, "⚠ Failed to register external provider '%s': %v\n", meta.Name, err)
		}
	}

	return lock
}

// registerExternalProvider registers a single external provider into the
// shared manager.
func registerExternalProvider(meta *ExternalProviderMeta) error {
	name := meta.Name
	if name == "" {
		info, err := queryProviderMetadata(meta.Path)
		if err != nil || info.Name == "" {
			return fmt.Errorf("unable to determine provider name")
		}
		name = info.Name
	}

	desc := meta.Description
	if desc == "" {
		desc = fmt.Sprintf("External provider (source: %s)", meta.Source)
	}

	path := meta.Path
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to resolve absolute path: %w", err)
		}
		path = absPath
	}

	return providerManager.RegisterExternalProvider(name, path, desc)
}

// configureExternalProviders applies per-provider arguments and verbosity to
// external providers registered in the shared manager.
func configureExternalProviders(providerArgs map[string]string, verbose bool) {
	for _, p := range providerManager.AllProviders() {
		ext, ok := p.(*manager.ExternalProvider)
		if !ok {
			continue
		}

		ext.SetVerbose(verbose)

		argsJSON, ok := providerArgs[ext.Name()]
		if !ok {
			continue
		}

		var args map[string]any
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			if verbose {
				fmt.Fprintf(os.Stderr, "⚠ Failed to parse args for provider '%s': %v\n", ext.Name(), err)
			}
			continue
		}
		ext.SetArgs(args)
	}
}
