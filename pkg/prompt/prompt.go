// Package prompt builds the image model instructions for a poster request.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"brickpress/pkg/domain"
)

// ErrThemeRequired is returned when neither a known theme nor the original
// prompt was requested.
var ErrThemeRequired = errors.New("theme selection required")

// Build returns the prompt for one generation. When useOriginal is set the
// theme is ignored and the model picks the scene from the description.
func Build(theme domain.Theme, modelType domain.ModelType, useOriginal bool, name, description string) (string, error) {
	if useOriginal {
		return poster(name, description, ""), nil
	}
	styles, ok := artDirection[theme]
	if !ok {
		return "", ErrThemeRequired
	}
	style, ok := styles[modelType]
	if !ok {
		style = styles[domain.ModelUnknown]
	}
	return poster(name, description, style+"\n\n"+catalogStyle), nil
}

func poster(name, description, themeDetails string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a professional, glossy LEGO marketing poster for a set named \"%s\" the final image should be the full poster and not a picture of the poster.\n\n", name)
	fmt.Fprintf(&b, "User's Description: \"%s\"\n", description)
	if themeDetails != "" {
		b.WriteString("\nTheme Specifications:\n")
		b.WriteString(themeDetails)
		b.WriteString("\n")
	}
	b.WriteString("\nInstructions:\n")
	b.WriteString("- The output must be a high-quality IMAGE of a single page poster with 3:4 aspect ratio (portrait orientation).\n")
	b.WriteString("- It should feature the Lego creation depicted in the uploaded image, but professionally rendered.\n")
	b.WriteString("- Include dynamic lighting and a suitable background (e.g. space, city, nature) based on the description")
	if themeDetails != "" {
		b.WriteString(" and theme specifications")
	}
	b.WriteString(".\n")
	fmt.Fprintf(&b, "- If possible, include the text \"%s\" stylized as a logo.\n", name)
	if themeDetails == "" {
		b.WriteString("- Style: Commercial Product Photography, Vibrant, High Resolution.\n")
	}
	b.WriteString("- Use the user description to create a story for the image. Make it interesting and engaging.\n")
	b.WriteString("- The final image must be exactly 3:4 aspect ratio (width:height) as a single page poster.")
	return b.String()
}
