package cli

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"brickpress/pkg/client"
)

const defaultServer = "http://localhost:3000"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Server    string
	Format    string // "json" | "text"
	Verbose   bool
	ConfigDir string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the brickpress CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "brickpress",
		Short: "Turn photos of brick models into posters",
		Long:  "BrickPress turns a photo of your brick model into an AI-generated poster, keeps a gallery of your creations and takes mock print orders.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	server := os.Getenv("BRICKPRESS_URL")
	if server == "" {
		server = defaultServer
	}
	cmd.PersistentFlags().StringVar(&opts.Server, "server", server, "web API base URL (env BRICKPRESS_URL)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.ConfigDir, "config-dir", "", "directory holding the saved session (default: user config dir)")

	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewGalleryCommand(opts))
	cmd.AddCommand(NewThemesCommand(opts))
	cmd.AddCommand(NewSignupCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewOrderCommand(opts))
	cmd.AddCommand(NewOrdersCommand(opts))

	return cmd
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// client returns an API client carrying the saved session token, if any.
func (o *RootOptions) client() (*client.Client, *SavedSession, error) {
	sess, err := LoadSession(o.ConfigDir)
	if err != nil {
		return nil, nil, err
	}
	token := strings.TrimSpace(os.Getenv("BRICKPRESS_TOKEN"))
	if token == "" && sess != nil {
		token = sess.Token
	}
	return client.New(o.Server, token), sess, nil
}
