package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"ascend/internal/ui/theme"
)

var difficulties = []string{"easy", "normal", "hard"}

// FeedbackSubmitMsg carries the answer to the post-focus prompt.
type FeedbackSubmitMsg struct {
	Difficulty  string
	EnergyAfter int
}

// FeedbackDismissMsg is emitted when the prompt is closed without an answer.
type FeedbackDismissMsg struct{}

// Feedback is the modal shown when a focus session ends. It starts at
// normal difficulty and energy 5.
type Feedback struct {
	title      string
	difficulty int
	energy     int
	visible    bool
}

func NewFeedback() Feedback {
	return Feedback{difficulty: 1, energy: 5}
}

func (f Feedback) Visible() bool { return f.visible }

func (f *Feedback) Open(title string) {
	f.title = title
	f.difficulty = 1
	f.energy = 5
	f.visible = true
}

func (f *Feedback) Close() { f.visible = false }

func (f Feedback) Update(msg tea.Msg) (Feedback, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !f.visible || !ok {
		return f, nil
	}
	switch key.String() {
	case "left", "h":
		if f.difficulty > 0 {
			f.difficulty--
		}
	case "right", "l":
		if f.difficulty < len(difficulties)-1 {
			f.difficulty++
		}
	case "up", "k", "+":
		if f.energy < 10 {
			f.energy++
		}
	case "down", "j", "-":
		if f.energy > 1 {
			f.energy--
		}
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		f.energy = int(key.String()[0] - '0')
	case "0":
		f.energy = 10
	case "enter":
		f.visible = false
		out := FeedbackSubmitMsg{Difficulty: difficulties[f.difficulty], EnergyAfter: f.energy}
		return f, func() tea.Msg { return out }
	case "esc":
		f.visible = false
		return f, func() tea.Msg { return FeedbackDismissMsg{} }
	}
	return f, nil
}

func (f Feedback) View() string {
	if !f.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Focus complete") + "\n")
	sb.WriteString(theme.Muted.Render(f.title) + "\n\n")
	sb.WriteString("Difficulty  ")
	for i, d := range difficulties {
		if i == f.difficulty {
			sb.WriteString(theme.Hot.Render("[" + d + "]"))
		} else {
			sb.WriteString(theme.Muted.Render(" " + d + " "))
		}
		sb.WriteString(" ")
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Energy      %s %2d/10\n\n", theme.Bar(float64(f.energy)/10, 10), f.energy))
	sb.WriteString(theme.Muted.Render("←/→ difficulty  ↑/↓ or 1-0 energy  enter save  esc skip"))
	return theme.Modal.Render(sb.String())
}
