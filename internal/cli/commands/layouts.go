package commands

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/weft-ui/weft/internal/cli/ui"
	"github.com/weft-ui/weft/internal/layout"
)

// NewLayoutsCommand lists layout presets and previews them as terminal frames.
func NewLayoutsCommand() *cobra.Command {
	var width int
	var height int

	cmd := &cobra.Command{
		Use:   "layouts [preset]",
		Short: "List layout presets or preview one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				names := layout.PresetNames()
				sort.Strings(names)
				for _, name := range names {
					p, _ := layout.GetPreset(name)
					fmt.Fprintf(cmd.OutOrStdout(), "%s (v%s, %dx%d): %v\n",
						color.CyanString(name), p.Version, p.Rows, p.Cols, p.SlotNames())
				}
				return nil
			}

			name := args[0]
			preset, ok := layout.GetPreset(name)
			if !ok {
				msg := fmt.Sprintf("unknown preset %q", name)
				if hint := ui.DidYouMean(name, layout.PresetNames()); hint != "" {
					msg += "; " + hint
				}
				return fmt.Errorf("%s", msg)
			}

			mgr := layout.NewTerminalLayoutManager(preset, layout.TerminalOptions{
				Width:  width,
				Height: height,
			})
			fmt.Fprintln(cmd.OutOrStdout(), layout.RenderString(mgr.Render()))
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 80, "preview width in cells")
	cmd.Flags().IntVar(&height, "height", 24, "preview height in cells")
	return cmd
}
