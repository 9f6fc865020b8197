package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewThemesCommand creates the themes command.
func NewThemesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "themes",
		Short:         "List the universes a poster can be set in",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			api, _, err := rootOpts.client()
			if err != nil {
				return f.Fail(WrapExitError(ExitCommandError, "load session", err))
			}
			themes, err := api.Themes(cmd.Context())
			if err != nil {
				return f.Fail(err)
			}
			return f.Success(themes, func(w io.Writer) {
				for _, t := range themes {
					fmt.Fprintf(w, "%s  %-20s %s\n", t.Emoji, t.ID, t.Name)
				}
				fmt.Fprintln(w, "🎲  --lucky              I'm Feeling Lucky")
			})
		},
	}
}
