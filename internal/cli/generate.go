package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"brickpress/pkg/ai"
	"brickpress/pkg/client"
	"brickpress/pkg/domain"
	"brickpress/pkg/prompt"
	"brickpress/pkg/wizard"
)

type generateOptions struct {
	name        string
	description string
	theme       string
	lucky       bool
	out         string
}

// GenerateResult is the JSON payload of a successful generate.
type GenerateResult struct {
	Path     string `json:"path"`
	MIMEType string `json:"mimeType"`
	Bytes    int    `json:"bytes"`
	Theme    string `json:"theme"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate <photo>",
		Short: "Turn a photo of a model into a poster",
		Long: `Upload a photo of a brick model and generate a 3:4 poster.

Pick a universe with --theme, or let the model decide with --lucky.
The poster is written to --out (default: <name>.<ext> in the current directory).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, rootOpts, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "model name, used as the poster title (required)")
	cmd.Flags().StringVarP(&opts.description, "description", "d", "", "short description of the model")
	cmd.Flags().StringVarP(&opts.theme, "theme", "t", "", "universe: "+themeIDs())
	cmd.Flags().BoolVar(&opts.lucky, "lucky", false, "I'm Feeling Lucky: let the model decide the style")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file")
	cmd.MarkFlagsMutuallyExclusive("theme", "lucky")
	return cmd
}

func runGenerate(cmd *cobra.Command, rootOpts *RootOptions, opts *generateOptions, photoPath string) error {
	f := rootOpts.formatter(cmd)
	api, sess, err := rootOpts.client()
	if err != nil {
		return f.Fail(WrapExitError(ExitCommandError, "load session", err))
	}

	data, err := os.ReadFile(photoPath)
	if err != nil {
		return f.Fail(WrapExitError(ExitCommandError, "read photo", err))
	}

	w := wizard.New()
	w.SetAuthenticated(sess != nil || os.Getenv("BRICKPRESS_TOKEN") != "")
	w.SelectPhoto(&wizard.Photo{
		Filename: filepath.Base(photoPath),
		MIMEType: http.DetectContentType(data),
		Data:     data,
	})
	w.SetDetails(opts.name, opts.description)
	if err := w.Next(); err != nil {
		if errors.Is(err, wizard.ErrAuthRequired) {
			return f.Fail(NewExitError(ExitCommandError, "sign in first: run `brickpress login` or `brickpress signup`"))
		}
		return f.Fail(WrapExitError(ExitCommandError, "invalid input", err))
	}

	switch {
	case opts.lucky:
		w.FeelingLucky()
	case opts.theme != "":
		theme, ok := domain.ParseTheme(opts.theme)
		if !ok {
			return f.Fail(NewExitError(ExitCommandError, fmt.Sprintf("unknown theme %q (choose one of %s)", opts.theme, themeIDs())))
		}
		w.SelectTheme(theme)
	}

	var userID string
	if sess != nil {
		userID = sess.User.ID
	}
	gen := wizard.GeneratorFunc(func(ctx context.Context, sub wizard.Submission) (string, error) {
		return api.Generate(ctx, client.GenerateRequest{
			Image:             sub.Photo.Data,
			ImageMIMEType:     sub.Photo.MIMEType,
			Filename:          sub.Photo.Filename,
			Name:              sub.Name,
			Description:       sub.Description,
			Theme:             sub.Theme,
			ModelType:         sub.ModelType,
			UseOriginalPrompt: sub.UseOriginalPrompt,
			UserID:            userID,
		})
	})
	f.VerboseLog("Generating poster for %q...", opts.name)
	if err := w.Generate(cmd.Context(), gen); err != nil {
		if errors.Is(err, wizard.ErrThemeRequired) {
			return f.Fail(NewExitError(ExitCommandError, "pass --theme or --lucky"))
		}
		return f.Fail(err)
	}

	img, err := ai.ParseDataURI(w.State().Result)
	if err != nil {
		return f.Fail(WrapExitError(ExitFailure, "server returned an unreadable image", err))
	}
	out := opts.out
	if out == "" {
		out = slug(opts.name) + extensionFor(img.MIMEType)
	}
	if err := os.WriteFile(out, img.Data, 0o644); err != nil {
		return f.Fail(WrapExitError(ExitCommandError, "write poster", err))
	}

	themeLabel := domain.ThemeLabelRandom
	if t := w.State().Theme; t != "" {
		themeLabel = prompt.DisplayName(t)
	}
	res := GenerateResult{Path: out, MIMEType: img.MIMEType, Bytes: len(img.Data), Theme: themeLabel}
	return f.Success(res, func(wr io.Writer) {
		fmt.Fprintf(wr, "Poster saved to %s (%s, %d bytes)\n", res.Path, res.Theme, res.Bytes)
	})
}

func themeIDs() string {
	ids := make([]string, 0, len(domain.AllThemes))
	for _, t := range domain.AllThemes {
		ids = append(ids, string(t))
	}
	return strings.Join(ids, ", ")
}

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "poster"
	}
	return s
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
