// Package wizard holds the three-step capture, theme and result flow that
// front ends drive. It owns no I/O; generation goes through a Generator.
package wizard

import (
	"context"
	"errors"
	"strings"
	"sync"

	"brickpress/pkg/domain"
)

// Step is a wizard position.
type Step int

const (
	StepCapture Step = 1
	StepTheme   Step = 2
	StepResult  Step = 3
)

func (s Step) String() string {
	switch s {
	case StepCapture:
		return "capture"
	case StepTheme:
		return "theme"
	case StepResult:
		return "result"
	}
	return "unknown"
}

var (
	// ErrAuthRequired signals that the caller must sign in before continuing.
	ErrAuthRequired  = errors.New("sign in to continue")
	ErrImageRequired = errors.New("select a photo of your model first")
	ErrNameRequired  = errors.New("give your model a name")
	ErrThemeRequired = errors.New("select a universe or use I'm Feeling Lucky")
	ErrBusy          = errors.New("generation already in progress")
	ErrWrongStep     = errors.New("not available at this step")
)

// Photo is the selected source image.
type Photo struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Submission is what the wizard sends to a Generator.
type Submission struct {
	Photo             Photo
	Name              string
	Description       string
	Theme             domain.Theme
	ModelType         domain.ModelType
	UseOriginalPrompt bool
}

// Generator produces a poster data URI for a submission.
type Generator interface {
	Generate(ctx context.Context, sub Submission) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, sub Submission) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, sub Submission) (string, error) {
	return f(ctx, sub)
}

// State is a snapshot of the wizard.
type State struct {
	Step          Step
	Photo         *Photo
	Name          string
	Description   string
	Theme         domain.Theme
	Random        bool
	Result        string
	Error         string
	Generating    bool
	Authenticated bool
}

// Wizard is safe for concurrent use.
type Wizard struct {
	mu sync.Mutex
	st State
}

// New returns a wizard at the capture step.
func New() *Wizard {
	return &Wizard{st: State{Step: StepCapture}}
}

// State returns a copy of the current state.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := w.st
	if st.Photo != nil {
		p := *st.Photo
		st.Photo = &p
	}
	return st
}

// SetAuthenticated records whether a session is present.
func (w *Wizard) SetAuthenticated(ok bool) {
	w.mu.Lock()
	w.st.Authenticated = ok
	w.mu.Unlock()
}

// SelectPhoto sets or clears (nil) the source image.
func (w *Wizard) SelectPhoto(p *Photo) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p == nil {
		w.st.Photo = nil
		return
	}
	cp := *p
	w.st.Photo = &cp
}

// SetDetails sets the model name and description.
func (w *Wizard) SetDetails(name, description string) {
	w.mu.Lock()
	w.st.Name = name
	w.st.Description = description
	w.mu.Unlock()
}

// Next moves from capture to theme selection.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.st.Step != StepCapture {
		return ErrWrongStep
	}
	if !w.st.Authenticated {
		return ErrAuthRequired
	}
	if w.st.Photo == nil || len(w.st.Photo.Data) == 0 {
		return ErrImageRequired
	}
	if strings.TrimSpace(w.st.Name) == "" {
		return ErrNameRequired
	}
	w.st.Step = StepTheme
	w.st.Error = ""
	return nil
}

// Back returns from theme selection to capture, keeping inputs.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.st.Step != StepTheme || w.st.Generating {
		return ErrWrongStep
	}
	w.st.Step = StepCapture
	return nil
}

// SelectTheme picks a theme and clears the random flag.
func (w *Wizard) SelectTheme(t domain.Theme) {
	w.mu.Lock()
	w.st.Theme = t
	w.st.Random = false
	w.mu.Unlock()
}

// FeelingLucky clears the theme and lets the model decide.
func (w *Wizard) FeelingLucky() {
	w.mu.Lock()
	w.st.Theme = ""
	w.st.Random = true
	w.mu.Unlock()
}

// Generate submits the current inputs. On failure the wizard stays at the
// theme step with Error set; on success it moves to the result step.
func (w *Wizard) Generate(ctx context.Context, g Generator) error {
	w.mu.Lock()
	if w.st.Step != StepTheme {
		w.mu.Unlock()
		return ErrWrongStep
	}
	if w.st.Generating {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.st.Photo == nil {
		w.mu.Unlock()
		return ErrImageRequired
	}
	if w.st.Theme == "" && !w.st.Random {
		w.mu.Unlock()
		return ErrThemeRequired
	}
	sub := Submission{
		Photo:             *w.st.Photo,
		Name:              w.st.Name,
		Description:       w.st.Description,
		Theme:             w.st.Theme,
		ModelType:         domain.ModelUnknown,
		UseOriginalPrompt: w.st.Random,
	}
	w.st.Generating = true
	w.st.Error = ""
	w.mu.Unlock()

	result, err := g.Generate(ctx, sub)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.st.Generating = false
	if err != nil {
		w.st.Error = err.Error()
		return err
	}
	w.st.Result = result
	w.st.Step = StepResult
	return nil
}

// CreateAnother resets everything except the session flag. It is only valid
// from the result step, so an in-flight generation can never land on a
// freshly reset wizard.
func (w *Wizard) CreateAnother() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.st.Step != StepResult || w.st.Generating {
		return ErrWrongStep
	}
	w.st = State{Step: StepCapture, Authenticated: w.st.Authenticated}
	return nil
}
