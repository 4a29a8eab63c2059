package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/atrium/internal/provider"
	"github.com/jmylchreest/atrium/internal/weather"
)

var (
	weatherProvider     string
	weatherPreset       string
	weatherAt           string
	weatherPretty       bool
	weatherPreview      bool
	weatherOutput       string
	weatherProviderArgs map[string]string
)

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Derive weather parameters and print them as JSON",
	Long: `Derive a full set of scene weather parameters and print them as JSON.

Parameters come from a weather provider (the built-in market rule table by
default) or from a named preset that bypasses providers entirely. The JSON
shape matches the HTTP API, so output can be replayed later with the file
provider.

Providers:
  rules       - Derive from market statistics using the rule table (default)
  file        - Load previously saved parameters from a JSON file
  remote      - Fetch parameters from a remote weather endpoint
  googlegenai - Ask a generative model to interpret market statistics

External providers installed with 'atrium providers add' appear in
'atrium providers list' and are selected by name like built-ins.

Examples:
  # Market-driven weather from the default rule table
  atrium weather --rules.url https://api.example.com/stats

  # Pretty-print a named preset
  atrium weather --preset stormy --pretty

  # Derive at a fixed reference time and save for replay
  atrium weather --at 2026-01-01T21:00:00Z -o weather.json

  # Replay saved parameters through the file provider
  atrium weather -p file --file.path weather.json

  # Pass arguments to an external provider
  atrium weather -p market-feed --provider-args market-feed='{"region":"eu"}'`,
	RunE: runWeather,
}

func init() {
	weatherCmd.Flags().StringVarP(&weatherProvider, "provider", "p", "rules", "Weather provider to derive with")
	weatherCmd.Flags().StringVar(&weatherPreset, "preset", "", "Use a named preset instead of a provider ("+strings.Join(weather.PresetNames(), ", ")+")")
	weatherCmd.Flags().StringVar(&weatherAt, "at", "", "Reference time in RFC3339 format (default: now)")
	weatherCmd.Flags().BoolVar(&weatherPretty, "pretty", false, "Indent JSON output")
	weatherCmd.Flags().BoolVar(&weatherPreview, "preview", false, "Show a colour swatch preview on stderr")
	weatherCmd.Flags().StringVarP(&weatherOutput, "output", "o", "", "Write JSON to a file instead of stdout")
	weatherCmd.Flags().StringToStringVar(&weatherProviderArgs, "provider-args", nil, "Provider-specific arguments (key=value format, repeatable for multiple providers)")
}

// runWeather executes the weather command.
func runWeather(cmd *cobra.Command, args []string) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}

	params, err := deriveWeatherParams(cmd.Context(), deriveSelection{
		provider:     weatherProvider,
		preset:       weatherPreset,
		at:           weatherAt,
		providerArgs: weatherProviderArgs,
	}, verbose)
	if err != nil {
		return err
	}

	data, err := marshalWeatherParams(params, weatherPretty)
	if err != nil {
		return fmt.Errorf("failed to marshal weather parameters: %w", err)
	}

	if weatherOutput != "" {
		if err := writeFile(weatherOutput, append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write %s: %w", weatherOutput, err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Saved weather to: %s\n", weatherOutput)
		}
	} else {
		fmt.Println(string(data))
	}

	if weatherPreview {
		fmt.Fprintln(os.Stderr)
		fmt.Fprint(os.Stderr, weatherPreviewString(params))
		fmt.Fprintln(os.Stderr)
	}

	return nil
}

// deriveSelection names the weather source chosen on a command line.
// Each deriving command registers its own flags and fills one of these.
type deriveSelection struct {
	provider     string
	preset       string
	at           string
	providerArgs map[string]string
}

// deriveWeatherParams resolves the selected preset or provider and derives
// a parameter set. Shared by the weather and render commands.
func deriveWeatherParams(ctx context.Context, sel deriveSelection, verbose bool) (weather.Params, error) {
	now, err := parseReferenceTime(sel.at)
	if err != nil {
		return weather.Params{}, err
	}

	// Presets bypass providers entirely.
	if sel.preset != "" {
		params, err := weather.Preset(sel.preset, now)
		if err != nil {
			return weather.Params{}, fmt.Errorf("unknown preset: %s (available: %s)", sel.preset, strings.Join(weather.PresetNames(), ", "))
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Preset: %s\n", sel.preset)
		}
		return params, nil
	}

	p, err := resolveProvider(sel.provider, sel.providerArgs, verbose)
	if err != nil {
		return weather.Params{}, err
	}

	opts := provider.DeriveOptions{
		Verbose:      verbose,
		Now:          now,
		ProviderArgs: providerArgsFor(sel.providerArgs, sel.provider, verbose),
	}

	params, err := p.Derive(ctx, opts)
	if err != nil {
		return weather.Params{}, fmt.Errorf("failed to derive weather: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "  └─ Derived %s/%s weather\n", params.WeatherType, params.Mood)
	}

	return params, nil
}

// resolveProvider applies the provider lock, looks the named provider up
// in the shared manager and validates it. A provider named on the CLI runs
// regardless of the enabled list.
func resolveProvider(name string, providerArgs map[string]string, verbose bool) (provider.Provider, error) {
	// Reload provider manager config from lock file if available (overrides env).
	applyProviderLock(verbose)
	configureExternalProviders(providerArgs, verbose)

	p, ok := providerManager.GetProvider(name)
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s (available: %s)", name, strings.Join(providerNames(providerManager), ", "))
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("provider validation failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Provider: %s\n", p.Name())
		fmt.Fprintf(os.Stderr, "  └─ %s\n", p.Description())
	}

	return p, nil
}

// providerArgsFor parses the JSON argument blob for one provider.
func providerArgsFor(providerArgs map[string]string, name string, verbose bool) map[string]any {
	argsJSON, ok := providerArgs[name]
	if !ok {
		return nil
	}

	var pargs map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &pargs); err != nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "  └─ Failed to parse provider args: %v\n", err)
		}
		return nil
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "  └─ Provider args: %v\n", pargs)
	}
	return pargs
}

// parseReferenceTime parses the --at flag, defaulting to the wall clock.
func parseReferenceTime(at string) (time.Time, error) {
	if at == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at time %q (expected RFC3339, e.g. 2026-01-01T21:00:00Z): %w", at, err)
	}
	return t, nil
}

// marshalWeatherParams encodes parameters as JSON, optionally indented.
func marshalWeatherParams(params weather.Params, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(params, "", "  ")
	}
	return json.Marshal(params)
}
