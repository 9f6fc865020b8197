package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"brickpress/pkg/domain"
	"brickpress/pkg/prompt"
)

// NewGalleryCommand creates the gallery command.
func NewGalleryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:           "gallery",
		Short:         "List your recent creations",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			api, _, err := rootOpts.client()
			if err != nil {
				return f.Fail(WrapExitError(ExitCommandError, "load session", err))
			}
			gens, err := api.Generations(cmd.Context(), limit)
			if err != nil {
				return f.Fail(err)
			}
			return f.Success(gens, func(w io.Writer) {
				if len(gens) == 0 {
					fmt.Fprintln(w, "No creations yet. Sign in and run `brickpress generate`.")
					return
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tTHEME\tCREATED\tIMAGE")
				for _, g := range gens {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", g.ID, g.Name, themeLabel(g.Theme), g.CreatedAt.Local().Format("2006-01-02 15:04"), g.ImageURL)
				}
				_ = tw.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of creations")
	return cmd
}

// themeLabel renders a stored theme value for display.
func themeLabel(raw string) string {
	if t, ok := domain.ParseTheme(raw); ok {
		return prompt.DisplayName(t)
	}
	return raw
}
