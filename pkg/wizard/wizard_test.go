package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brickpress/pkg/domain"
)

func readyWizard(t *testing.T) *Wizard {
	t.Helper()
	w := New()
	w.SetAuthenticated(true)
	w.SelectPhoto(&Photo{Filename: "ship.jpg", MIMEType: "image/jpeg", Data: []byte("jpeg")})
	w.SetDetails("Star Voyager", "a red spaceship")
	require.NoError(t, w.Next())
	return w
}

func TestNextGuards(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(w *Wizard)
		wantErr error
	}{
		{"anonymous", func(w *Wizard) {}, ErrAuthRequired},
		{"no photo", func(w *Wizard) { w.SetAuthenticated(true); w.SetDetails("A", "") }, ErrImageRequired},
		{"no name", func(w *Wizard) {
			w.SetAuthenticated(true)
			w.SelectPhoto(&Photo{Data: []byte("x")})
			w.SetDetails("   ", "")
		}, ErrNameRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New()
			tt.setup(w)
			assert.ErrorIs(t, w.Next(), tt.wantErr)
			assert.Equal(t, StepCapture, w.State().Step)
		})
	}
}

func TestThemeSelectionIsExclusive(t *testing.T) {
	w := readyWizard(t)
	w.FeelingLucky()
	st := w.State()
	assert.True(t, st.Random)
	assert.Empty(t, st.Theme)

	w.SelectTheme(domain.ThemeNinjaWarriors)
	st = w.State()
	assert.False(t, st.Random)
	assert.Equal(t, domain.ThemeNinjaWarriors, st.Theme)
}

func TestGenerateRequiresThemeOrRandom(t *testing.T) {
	w := readyWizard(t)
	calls := 0
	err := w.Generate(context.Background(), GeneratorFunc(func(context.Context, Submission) (string, error) {
		calls++
		return "", nil
	}))
	assert.ErrorIs(t, err, ErrThemeRequired)
	assert.Zero(t, calls)
}

func TestGenerateSuccessMovesToResult(t *testing.T) {
	w := readyWizard(t)
	w.SelectTheme(domain.ThemeGalacticConquest)
	var got Submission
	err := w.Generate(context.Background(), GeneratorFunc(func(_ context.Context, sub Submission) (string, error) {
		got = sub
		return "data:image/png;base64,AAAA", nil
	}))
	require.NoError(t, err)

	st := w.State()
	assert.Equal(t, StepResult, st.Step)
	assert.Equal(t, "data:image/png;base64,AAAA", st.Result)
	assert.False(t, st.Generating)
	assert.Equal(t, "Star Voyager", got.Name)
	assert.Equal(t, domain.ThemeGalacticConquest, got.Theme)
	assert.Equal(t, domain.ModelUnknown, got.ModelType)
	assert.False(t, got.UseOriginalPrompt)
}

func TestGenerateFailureStaysOnThemeStep(t *testing.T) {
	w := readyWizard(t)
	w.FeelingLucky()
	err := w.Generate(context.Background(), GeneratorFunc(func(_ context.Context, sub Submission) (string, error) {
		assert.True(t, sub.UseOriginalPrompt)
		return "", errors.New("Image generation failed")
	}))
	require.Error(t, err)

	st := w.State()
	assert.Equal(t, StepTheme, st.Step)
	assert.Equal(t, "Image generation failed", st.Error)
	assert.False(t, st.Generating)
	assert.Empty(t, st.Result)
}

func TestGenerateRejectsConcurrentCall(t *testing.T) {
	w := readyWizard(t)
	w.SelectTheme(domain.ThemeFantasyRealm)
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- w.Generate(context.Background(), GeneratorFunc(func(context.Context, Submission) (string, error) {
			close(started)
			<-release
			return "data:image/png;base64,AA==", nil
		}))
	}()
	<-started

	assert.True(t, w.State().Generating)
	err := w.Generate(context.Background(), GeneratorFunc(func(context.Context, Submission) (string, error) {
		t.Fatal("second generator must not run")
		return "", nil
	}))
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, w.Back(), ErrWrongStep)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StepResult, w.State().Step)
}

func TestBackKeepsInputs(t *testing.T) {
	w := readyWizard(t)
	require.NoError(t, w.Back())
	st := w.State()
	assert.Equal(t, StepCapture, st.Step)
	assert.Equal(t, "Star Voyager", st.Name)
	assert.NotNil(t, st.Photo)
}

func TestCreateAnotherFullyResets(t *testing.T) {
	w := readyWizard(t)
	for i := 0; i < 2; i++ {
		if i > 0 {
			w.SelectPhoto(&Photo{Filename: "ship.jpg", MIMEType: "image/jpeg", Data: []byte("jpeg")})
			w.SetDetails("Star Voyager", "a red spaceship")
			require.NoError(t, w.Next())
		}
		w.SelectTheme(domain.ThemeDeepSea)
		require.NoError(t, w.Generate(context.Background(), GeneratorFunc(func(context.Context, Submission) (string, error) {
			return "data:image/png;base64,AA==", nil
		})))

		require.NoError(t, w.CreateAnother())
		assert.Equal(t, State{Step: StepCapture, Authenticated: true}, w.State())
		assert.ErrorIs(t, w.CreateAnother(), ErrWrongStep)
		assert.Equal(t, State{Step: StepCapture, Authenticated: true}, w.State())
	}
}

func TestCreateAnotherWhileGeneratingIsRejected(t *testing.T) {
	w := readyWizard(t)
	w.SelectTheme(domain.ThemeGalacticConquest)
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- w.Generate(context.Background(), GeneratorFunc(func(context.Context, Submission) (string, error) {
			close(started)
			<-release
			return "data:image/png;base64,AA==", nil
		}))
	}()
	<-started

	assert.ErrorIs(t, w.CreateAnother(), ErrWrongStep)
	close(release)
	require.NoError(t, <-done)

	st := w.State()
	assert.Equal(t, StepResult, st.Step)
	assert.Equal(t, "Star Voyager", st.Name)
	assert.NotNil(t, st.Photo)
	require.NoError(t, w.CreateAnother())
	assert.Equal(t, StepCapture, w.State().Step)
}

func TestStateReturnsCopy(t *testing.T) {
	w := readyWizard(t)
	st := w.State()
	st.Photo.Filename = "changed"
	assert.Equal(t, "ship.jpg", w.State().Photo.Filename)
}
