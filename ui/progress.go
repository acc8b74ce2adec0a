// Package ui draws the terminal progress display and the run summary.
package ui

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrInterrupted is returned by Run when the user quits before the work
// finishes.
var ErrInterrupted = errors.New("interrupted")

const barWidth = 40

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	restStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

type progressMsg struct{ done, total int }

type doneMsg struct{ err error }

type model struct {
	title       string
	done, total int
	start       time.Time
	err         error
	finished    bool
	interrupted bool
}

func newModel(title string) model {
	return model{title: title, start: time.Now()}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.done, m.total = msg.done, msg.total
	case doneMsg:
		m.err = msg.err
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.interrupted = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) fraction() float64 {
	if m.total <= 0 {
		return 0
	}
	return min(1, float64(m.done)/float64(m.total))
}

func (m model) View() string {
	filled := int(m.fraction() * barWidth)
	bar := barStyle.Render(strings.Repeat("█", filled)) +
		restStyle.Render(strings.Repeat("░", barWidth-filled))

	var s strings.Builder
	s.WriteString(titleStyle.Render(m.title) + "\n")
	fmt.Fprintf(&s, "%s %3.0f%%  %d/%d lines  %s\n", bar, m.fraction()*100, m.done, m.total,
		time.Since(m.start).Truncate(100*time.Millisecond))
	if m.err != nil {
		s.WriteString(errStyle.Render(m.err.Error()) + "\n")
	}
	return s.String()
}

// Run shows a progress bar titled title while work runs. work receives a
// report function to call with lines done and total; it must not block.
// Run returns work's error, or ErrInterrupted if the user quit first.
func Run(title string, work func(report func(done, total int)) error, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(newModel(title), opts...)

	go func() {
		err := work(func(done, total int) {
			p.Send(progressMsg{done, total})
		})
		p.Send(doneMsg{err})
	}()

	final, err := p.Run()
	if err != nil {
		return err
	}
	m := final.(model)
	if m.interrupted && !m.finished {
		return ErrInterrupted
	}
	return m.err
}

// LogProgress returns a report function that logs at every quarter of
// the total, for output that is not a terminal.
func LogProgress(name string) func(done, total int) {
	next := 25
	return func(done, total int) {
		if total <= 0 {
			return
		}
		pct := done * 100 / total
		for pct >= next && next <= 100 {
			log.Printf("[INFO] %s: %d%% (%d/%d lines)", name, next, done, total)
			next += 25
		}
	}
}

// Summary renders label/value rows in a bordered box.
func Summary(title string, rows [][2]string) string {
	labelWidth := 0
	for _, r := range rows {
		labelWidth = max(labelWidth, lipgloss.Width(r[0]))
	}
	label := lipgloss.NewStyle().Width(labelWidth + 2).Foreground(lipgloss.Color("8"))

	lines := []string{titleStyle.Render(title)}
	for _, r := range rows {
		lines = append(lines, label.Render(r[0])+r[1])
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// PrintSummary writes Summary to w followed by a newline.
func PrintSummary(w io.Writer, title string, rows [][2]string) {
	fmt.Fprintln(w, Summary(title, rows))
}
