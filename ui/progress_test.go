package ui

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestModelProgress(t *testing.T) {
	var m tea.Model = newModel("Martin 1")
	m, cmd := m.Update(progressMsg{64, 256})
	if cmd != nil {
		t.Error("progress update returned a command")
	}
	view := m.View()
	for _, want := range []string{"Martin 1", " 25%", "64/256 lines"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}

	m, cmd = m.Update(doneMsg{errors.New("boom")})
	if cmd == nil {
		t.Fatal("done did not quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("done command is not tea.Quit")
	}
	if !strings.Contains(m.View(), "boom") {
		t.Error("error not shown")
	}
}

func TestModelInterrupt(t *testing.T) {
	var m tea.Model = newModel("x")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || !m.(model).interrupted {
		t.Error("ctrl+c did not interrupt")
	}
}

func TestFraction(t *testing.T) {
	tests := []struct {
		done, total int
		want        float64
	}{
		{0, 0, 0},
		{120, 240, 0.5},
		{300, 256, 1},
	}
	for _, tt := range tests {
		m := model{done: tt.done, total: tt.total}
		if got := m.fraction(); got != tt.want {
			t.Errorf("fraction(%d/%d) = %v, want %v", tt.done, tt.total, got, tt.want)
		}
	}
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	wantErr := errors.New("encoder failed")
	err := Run("test", func(report func(done, total int)) error {
		for i := 1; i <= 4; i++ {
			report(i, 4)
		}
		return wantErr
	}, tea.WithInput(nil), tea.WithOutput(&out), tea.WithoutSignalHandler())
	if !errors.Is(err, wantErr) {
		t.Errorf("Run() = %v, want %v", err, wantErr)
	}

	err = Run("test", func(func(done, total int)) error { return nil },
		tea.WithInput(nil), tea.WithOutput(&out), tea.WithoutSignalHandler())
	if err != nil {
		t.Errorf("Run() = %v", err)
	}
}

func TestLogProgress(t *testing.T) {
	var buf bytes.Buffer
	out, flags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(out)
		log.SetFlags(flags)
	})

	report := LogProgress("r36")
	for done := 2; done <= 240; done += 2 {
		report(done, 240)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"[INFO] r36: 25% (60/240 lines)",
		"[INFO] r36: 50% (120/240 lines)",
		"[INFO] r36: 75% (180/240 lines)",
		"[INFO] r36: 100% (240/240 lines)",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Errorf("log =\n%s\nwant\n%s", buf.String(), strings.Join(want, "\n"))
	}
}

func TestSummary(t *testing.T) {
	s := Summary("Done", [][2]string{{"Mode", "Robot 36"}, {"Output", "cat.wav"}})
	for _, want := range []string{"Done", "Mode", "Robot 36", "cat.wav", "╭"} {
		if !strings.Contains(s, want) {
			t.Errorf("Summary missing %q:\n%s", want, s)
		}
	}
}
