package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/weft-ui/weft/internal/cli/config"
	"github.com/weft-ui/weft/internal/cli/ui"
	"github.com/weft-ui/weft/internal/compiler"
)

// NewCompileCommand compiles a widget source file and prints the result.
func NewCompileCommand() *cobra.Command {
	var platform string
	var image string
	var jsonOut bool
	var save bool

	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a widget source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if image == "" {
				image = cfg.Image
			}

			code, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			c := compiler.New()
			if _, ok := c.Images().Get(image); !ok {
				msg := fmt.Sprintf("unknown image %q", image)
				if hint := ui.DidYouMean(image, c.Images().Names()); hint != "" {
					msg += "; " + hint
				}
				return fmt.Errorf("%s", msg)
			}
			result := c.Compile(
				compiler.WidgetSource{Code: string(code), Name: name},
				compiler.TargetOptions{Platform: compiler.Platform(platform), Image: image},
			)

			if jsonOut {
				out, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			} else if result.OK() {
				color.Green("✓ compiled %s (%s, %.1fms)", name, result.Hash[:12], result.CompilationTimeMs)
			} else {
				for _, e := range result.Errors {
					color.Red("✗ %s", e)
				}
			}

			if result.OK() && save {
				store, err := compiler.NewArtifactStore(cfg.CacheDir)
				if err != nil {
					return err
				}
				if err := store.Save(result); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved to %s\n", filepath.Join(cfg.CacheDir, result.Hash+".mjs"))
			}

			if !result.OK() {
				return fmt.Errorf("compilation failed with %d error(s)", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "browser", "render target: browser or terminal")
	cmd.Flags().StringVar(&image, "image", "", "package-set image (defaults to config)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "persist the artifact to the cache dir")
	return cmd
}
