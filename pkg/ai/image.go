package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrNoImage means the model answered without any inline image part.
var ErrNoImage = errors.New("no image data in response")

// ErrInvalidDataURI is returned by ParseDataURI for malformed input.
var ErrInvalidDataURI = errors.New("invalid data uri")

// ImageInput is the user photo sent alongside the prompt.
type ImageInput struct {
	MIMEType string
	Data     []byte
}

// Image is a generated picture.
type Image struct {
	MIMEType string
	Data     []byte
}

// DataURI renders the image as data:<mime>;base64,<payload>.
func (i Image) DataURI() string {
	mime := i.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// ImageGenerator renders a poster from a prompt and a reference photo.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, input ImageInput) (Image, error)
}

// ParseDataURI decodes a base64 data URI. Non-base64 URIs are rejected.
func ParseDataURI(uri string) (Image, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return Image{}, ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, ErrInvalidDataURI
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Image{}, ErrInvalidDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(data) == 0 {
		return Image{}, ErrInvalidDataURI
	}
	if mime == "" {
		mime = "image/png"
	}
	return Image{MIMEType: mime, Data: data}, nil
}
