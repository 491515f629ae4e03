// Package picker is a terminal file chooser for the input video.
package picker

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
)

// VideoExtensions are the files offered by default
var VideoExtensions = []string{".mp4", ".mov", ".mkv", ".avi", ".webm", ".m4v", ".flv", ".wmv", ".mpg", ".mpeg"}

type clearErrorMsg struct{}

func clearErrorAfter(t time.Duration) tea.Cmd {
	return tea.Tick(t, func(_ time.Time) tea.Msg {
		return clearErrorMsg{}
	})
}

type model struct {
	filepicker filepicker.Model
	allFiles   bool
	selected   string
	canceled   bool
	err        error
}

func newModel(startDir string) model {
	fp := filepicker.New()
	fp.AllowedTypes = VideoExtensions
	fp.CurrentDirectory = startDir
	fp.ShowHidden = false
	fp.AutoHeight = true

	return model{filepicker: fp}
}

func (m model) Init() tea.Cmd {
	return m.filepicker.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.canceled = true
			return m, tea.Quit
		case "a":
			// the filepicker only disables entries, so no reload is needed
			m.allFiles = !m.allFiles
			if m.allFiles {
				m.filepicker.AllowedTypes = nil
			} else {
				m.filepicker.AllowedTypes = VideoExtensions
			}
			return m, nil
		}
	case clearErrorMsg:
		m.err = nil
	}

	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)

	if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
		m.selected = path
		return m, tea.Quit
	}
	if didSelect, path := m.filepicker.DidSelectDisabledFile(msg); didSelect {
		m.err = errors.New(path + " is not a video file (press a to show all files)")
		return m, tea.Batch(cmd, clearErrorAfter(2*time.Second))
	}

	return m, cmd
}

func (m model) View() string {
	if m.canceled || m.selected != "" {
		return ""
	}
	var s strings.Builder
	s.WriteString("\n  ")
	if m.err != nil {
		s.WriteString(m.filepicker.Styles.DisabledFile.Render(m.err.Error()))
	} else if m.allFiles {
		s.WriteString("Pick an input file (all files, a: videos only, q: cancel):")
	} else {
		s.WriteString("Pick an input video (a: all files, q: cancel):")
	}
	s.WriteString("\n\n" + m.filepicker.View() + "\n")
	return s.String()
}

// SelectInputFile lets the user browse from startDir and returns the chosen
// path, or "" if they cancelled. An empty startDir starts in the home directory.
func SelectInputFile(ctx context.Context, startDir string, opts ...tea.ProgramOption) (string, error) {
	if startDir == "" {
		if hd, err := os.UserHomeDir(); err == nil {
			startDir = hd
		} else {
			startDir = "."
		}
	}

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(newModel(startDir), opts...).Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", nil
		}
		return "", errors.Wrap(err, "file picker failed")
	}

	fm, ok := final.(model)
	if !ok {
		return "", errors.New("unexpected final model type")
	}
	if fm.canceled {
		return "", nil
	}
	return fm.selected, nil
}
