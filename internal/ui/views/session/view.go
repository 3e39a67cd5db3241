package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	sessiondto "ascend/internal/modules/session/dto"
	"ascend/internal/ui/theme"
)

// Model renders the engaged session. It holds no ports; the app model
// feeds it the latest tick output.
type Model struct {
	focusDuration time.Duration
	current       sessiondto.SessionOutput
	active        bool
	width         int
	height        int
}

func New(focusDuration time.Duration) Model {
	return Model{focusDuration: focusDuration}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) Set(out sessiondto.SessionOutput) {
	m.current = out
	m.active = out.SessionID != ""
}

func (m *Model) Clear() {
	m.current = sessiondto.SessionOutput{}
	m.active = false
}

func (m Model) Active() bool { return m.active }

func (m Model) Current() sessiondto.SessionOutput { return m.current }

func (m Model) View() string {
	if !m.active {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Muted.Render("No session. Press f on a mission or w on a routine."))
	}
	var body string
	if m.current.Kind == "workout" {
		body = m.renderWorkout()
	} else {
		body = m.renderFocus()
	}
	return theme.Pane.Width(m.width - 4).Height(m.height - 4).Render(body)
}

func (m Model) renderFocus() string {
	s := m.current
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(s.TargetTitle) + "\n\n")
	sb.WriteString(theme.Clock.Render(Clock(s.FocusRemaining)) + "  " + focusState(s.FocusState) + "\n")
	ratio := 0.0
	if m.focusDuration > 0 {
		ratio = 1 - float64(s.FocusRemaining)/float64(m.focusDuration)
	}
	sb.WriteString(theme.Bar(ratio, max(10, m.width-12)) + "\n\n")
	sb.WriteString(theme.Muted.Render("elapsed "+Clock(s.Elapsed)) + "\n\n")
	sb.WriteString(theme.Muted.Render("p: pause/resume  r: reset  c: complete  a: abandon"))
	return sb.String()
}

func (m Model) renderWorkout() string {
	s := m.current
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(s.TargetTitle) + "  " + theme.Muted.Render("elapsed "+Clock(s.Elapsed)) + "\n")
	if s.Resting {
		sb.WriteString(theme.Warn.Render("rest "+Clock(s.RestRemaining)) + "\n")
	} else {
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	for _, ex := range s.Exercises {
		done := 0
		cells := make([]string, 0, len(ex.Sets))
		for _, set := range ex.Sets {
			if set.Reps > 0 {
				done++
				cells = append(cells, theme.Good.Render(fmt.Sprintf("%s×%d", FormatWeight(set.Weight), set.Reps)))
			} else {
				cells = append(cells, theme.Muted.Render("—"))
			}
		}
		sb.WriteString(fmt.Sprintf("%-20s %d/%d  %s\n", ex.Name, done, ex.TargetSets, strings.Join(cells, "  ")))
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("  id %s", ex.ID)) + "\n")
	}
	sb.WriteString(fmt.Sprintf("\nvolume %s\n\n", FormatWeight(s.Volume)))
	if s.Finalizing {
		sb.WriteString(theme.Warn.Render("finishing… retry with :workout:finish") + "\n")
	}
	sb.WriteString(theme.Muted.Render(":set <exercise> <set> <weight> <reps>  :workout:finish  a: abandon"))
	return sb.String()
}

func focusState(state string) string {
	switch state {
	case "running":
		return theme.Good.Render("running")
	case "paused":
		return theme.Warn.Render("paused")
	case "expired":
		return theme.Hot.Render("time!")
	}
	return theme.Muted.Render(state)
}

// Clock formats d as mm:ss, or h:mm:ss past the hour.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func FormatWeight(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
