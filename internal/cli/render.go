package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/atrium/internal/engine"
	"github.com/jmylchreest/atrium/internal/provider"
	"github.com/jmylchreest/atrium/internal/render"
	"github.com/jmylchreest/atrium/internal/theme"
)

var (
	renderProviderName string
	renderPreset       string
	renderAt           string
	renderProviderArgs map[string]string

	renderWidth       int
	renderHeight      int
	renderSupersample int
	renderFPS         int
	renderFrames      int
	renderSubscribers int
	renderSeed        int64
	renderOutput      string
	renderSaveState   string
	renderDryRun      bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a scene snapshot to a PNG image",
	Long: `Build the gallery scene, apply derived weather and render a snapshot
to a PNG image with the software rasterizer.

Weather comes from a provider or preset exactly as in 'atrium weather'.
The scene layout is deterministic for a fixed seed, so renders can be
reproduced by passing --seed (providers may suggest one otherwise).

Examples:
  # Render market-driven weather at 1080p
  atrium render --rules.url https://api.example.com/stats --width 1920 --height 1080

  # Render a stormy preset with a fixed layout
  atrium render --preset stormy --seed 42 -o storm.png

  # Advance 300 frames of animation before the snapshot
  atrium render --preset sunny --frames 300

  # Save the placed-model state alongside the image
  atrium render --preset foggy --save-state scene-state.json.xz`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderProviderName, "provider", "p", "rules", "Weather provider to derive with")
	renderCmd.Flags().StringVar(&renderPreset, "preset", "", "Use a named preset instead of a provider")
	renderCmd.Flags().StringVar(&renderAt, "at", "", "Reference time in RFC3339 format (default: now)")
	renderCmd.Flags().StringToStringVar(&renderProviderArgs, "provider-args", nil, "Provider-specific arguments (key=value format, repeatable for multiple providers)")

	renderCmd.Flags().IntVar(&renderWidth, "width", 1280, "Output image width in pixels")
	renderCmd.Flags().IntVar(&renderHeight, "height", 720, "Output image height in pixels")
	renderCmd.Flags().IntVar(&renderSupersample, "supersample", 2, "Supersampling factor (1-4)")
	renderCmd.Flags().IntVar(&renderFPS, "fps", 30, "Simulated frame rate for animation stepping")
	renderCmd.Flags().IntVar(&renderFrames, "frames", 1, "Animation frames to advance before the snapshot")
	renderCmd.Flags().IntVar(&renderSubscribers, "subscribers", 0, "Subscriber count shaping gallery contents")
	renderCmd.Flags().Int64Var(&renderSeed, "seed", 0, "Layout seed (0 accepts the provider's hint)")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "atrium.png", "Output PNG path")
	renderCmd.Flags().StringVar(&renderSaveState, "save-state", "", "Write placed-model state JSON to this path (.xz suffix compresses)")
	renderCmd.Flags().BoolVar(&renderDryRun, "dry-run", false, "Preview without writing files")
}

// runRender executes the render command.
func runRender(cmd *cobra.Command, args []string) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}

	// Validate the theme before building anything.
	if _, err := theme.ByName(globalTheme); err != nil {
		return err
	}

	params, err := deriveWeatherParams(cmd.Context(), deriveSelection{
		provider:     renderProviderName,
		preset:       renderPreset,
		at:           renderAt,
		providerArgs: renderProviderArgs,
	}, verbose)
	if err != nil {
		return err
	}

	seed := renderSeed
	if seed == 0 && renderPreset == "" {
		if p, ok := providerManager.GetProvider(renderProviderName); ok {
			if hinter, ok := p.(provider.SeedHinter); ok {
				seed = hinter.SeedHint()
			}
		}
	}

	mgr, err := engine.NewSceneManager(engine.Config{
		Theme:           globalTheme,
		SubscriberCount: renderSubscribers,
		Seed:            seed,
		FPS:             renderFPS,
	})
	if err != nil {
		return fmt.Errorf("failed to build scene: %w", err)
	}
	defer mgr.Dispose()

	mgr.ApplyWeather(params)

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Scene: %s theme, seed %d\n", globalTheme, seed)
		fmt.Fprintf(os.Stderr, "  └─ %s weather, %s mood, island %s\n", params.WeatherType, params.Mood, params.IslandState)
	}

	// Advance the animation before the snapshot.
	dt := 1.0 / float32(renderFPS)
	for i := 0; i < renderFrames; i++ {
		mgr.Step(dt)
	}

	r := render.New(render.Options{
		Width:       renderWidth,
		Height:      renderHeight,
		Supersample: renderSupersample,
	})
	defer r.Dispose()
	mgr.Snapshot(r)

	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}

	if renderDryRun {
		fmt.Printf("  Would write: %s (%d bytes)\n", renderOutput, buf.Len())
	} else {
		if err := writeFile(renderOutput, buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write %s: %w", renderOutput, err)
		}
		fmt.Printf("  ├─ %s (%d bytes)\n", renderOutput, buf.Len())
	}

	if renderSaveState != "" {
		if err := saveSceneState(mgr, renderSaveState, renderDryRun); err != nil {
			return err
		}
	}

	if !renderDryRun {
		fmt.Println()
		fmt.Printf("✓ Done! Rendered %dx%d %s scene\n", renderWidth, renderHeight, params.WeatherType)
	}

	return nil
}

// saveSceneState writes the placed-model state as JSON, xz-compressed when
// the path carries a .xz suffix.
func saveSceneState(mgr *engine.SceneManager, path string, dryRun bool) error {
	data, err := json.MarshalIndent(mgr.GetSceneState(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scene state: %w", err)
	}
	data = append(data, '\n')

	if strings.HasSuffix(path, ".xz") {
		var buf bytes.Buffer
		zw, err := xz.NewWriter(&buf)
		if err != nil {
			return fmt.Errorf("failed to create xz writer: %w", err)
		}
		if _, err := zw.Write(data); err != nil {
			return fmt.Errorf("failed to compress scene state: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("failed to finish xz stream: %w", err)
		}
		data = buf.Bytes()
	}

	if dryRun {
		fmt.Printf("  Would write: %s (%d bytes)\n", path, len(data))
		return nil
	}

	if err := writeFile(path, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("  ├─ %s (%d bytes)\n", path, len(data))
	return nil
}
