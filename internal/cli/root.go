// Package cli provides the command-line interface for Atrium.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/atrium/internal/provider/manager"
	"github.com/jmylchreest/atrium/internal/version"
)

var (
	// Global flags
	globalTheme  string
	globalConfig string

	// Shared provider manager instance used by all commands
	providerManager *manager.Manager

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "atrium",
		Short: "A market-weather driven gallery scene engine",
		Long: `Atrium builds a procedural island gallery scene and drives its weather,
water and special effects from live market statistics.

Weather parameters come from pluggable providers (the built-in rule table,
a saved file, a remote endpoint, or a generative model) and feed the scene
orchestrator, the snapshot renderer and the HTTP/websocket server.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Initialise the shared provider manager using the builder pattern.
	// Start with environment config, updated from the lock file at runtime if present.
	providerManager = manager.NewBuilder().
		WithEnvConfig().
		Build()

	// Register provider flags with all commands that derive weather
	registerProviderFlags()

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVarP(&globalTheme, "theme", "t", "dark", "scene theme (light, dark)")
	rootCmd.PersistentFlags().StringVar(&globalConfig, "config", "", "config file (default: ~/.config/atrium/config.toml)")

	// Set version template
	rootCmd.SetVersionTemplate(version.String() + "\n")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(weatherCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(providersCmd)
}

// registerProviderFlags registers provider-specific flags with every command
// that can run a derivation.
func registerProviderFlags() {
	for _, p := range providerManager.AllProviders() {
		p.RegisterFlags(weatherCmd)
		p.RegisterFlags(renderCmd)
		p.RegisterFlags(serveCmd)
	}
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including build date, commit hash, and Go version.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
	},
}
