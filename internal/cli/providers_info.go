package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/atrium/internal/provider/executor"
	"github.com/jmylchreest/atrium/internal/provider/manager"
)

// runProviderInfo shows detailed information for one provider.
func runProviderInfo(cmd *cobra.Command, args []string) error {
	providerName := args[0]
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}

	lock, lockPath, err := loadProviderLock()
	if err != nil && verbose {
		fmt.Fprintf(os.Stderr, "Note: %v\n", err)
	}
	if verbose && lockPath != "" {
		fmt.Fprintf(os.Stderr, "Using lock file: %s\n\n", lockPath)
	}

	mgr := createManagerFromLock(lock)

	p, ok := mgr.GetProvider(providerName)
	if !ok {
		return fmt.Errorf("unknown provider: %s (available: %s)", providerName, strings.Join(providerNames(mgr), ", "))
	}

	status := "disabled"
	if mgr.IsEnabled(p) {
		status = "enabled"
	}

	fmt.Printf("Name:        %s\n", p.Name())
	fmt.Printf("Description: %s\n", p.Description())
	fmt.Printf("Status:      %s\n", status)

	ext, isExternal := p.(*manager.ExternalProvider)
	if !isExternal {
		fmt.Printf("Type:        builtin\n")
		if v, ok := p.(versioner); ok {
			fmt.Printf("Version:     %s\n", v.Version())
		}
		fmt.Printf("\nRun 'atrium weather --help' for this provider's flags.\n")
		return nil
	}

	fmt.Printf("Type:        external\n")
	fmt.Printf("Path:        %s\n", ext.Path())
	if v := ext.Version(); v != "" {
		fmt.Printf("Version:     %s\n", v)
	}
	if lock != nil {
		if meta, ok := lock.ExternalProviders[providerName]; ok {
			if meta.Source != "" {
				fmt.Printf("Source:      %s\n", meta.Source)
			}
			if meta.InstalledAt != "" {
				fmt.Printf("Installed:   %s\n", meta.InstalledAt)
			}
		}
	}

	info, err := queryProviderMetadata(ext.Path())
	if err != nil {
		fmt.Printf("\n⚠ Provider did not respond to --plugin-info: %v\n", err)
		return nil
	}
	if info.ProtocolVersion != "" {
		fmt.Printf("Protocol:    %s (%s)\n", info.ProtocolVersion, info.PluginProtocol)
	}

	printExternalFlagHelp(cmd, ext.Path())
	return nil
}

// printExternalFlagHelp queries an external provider for its flag help and
// renders it as a table. Failures are non-fatal since older providers may
// not implement the flag help call.
func printExternalFlagHelp(cmd *cobra.Command, path string) {
	exec, err := executor.New(path)
	if err != nil {
		return
	}
	defer exec.Close()

	flags, err := exec.GetFlagHelp(cmd.Context())
	if err != nil || len(flags) == 0 {
		return
	}

	fmt.Printf("\nProvider arguments (pass via --provider-args %s='{...}'):\n\n", exec.Info().Name)

	tbl := NewTable("NAME", "TYPE", "DEFAULT", "DESCRIPTION")
	tbl.SetColumnMaxWidth(3, descriptionWidth(false))
	for _, f := range flags {
		name := f.Name
		if f.Required {
			name += " (required)"
		}
		tbl.AddRow(name, f.Type, f.Default, f.Description)
	}
	fmt.Print(tbl.Render())
}

// providerNames lists all registered provider names in sorted order.
func providerNames(mgr *manager.Manager) []string {
	names := make([]string, 0, len(mgr.AllProviders()))
	for name := range mgr.AllProviders() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
