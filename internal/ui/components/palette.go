package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ascend/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// PaletteHints must stay in sync with the switch in app/model.go executePalette.
var PaletteHints = []string{
	"mission:add <category> <priority> <title>",
	"mission:done",
	"focus",
	"focus:pause",
	"focus:resume",
	"focus:reset",
	"focus:done",
	"workout",
	"set <exercise> <set> <weight> <reps>",
	"workout:finish",
	"abandon",
	"suggest [category...]",
	"accept <n>",
	"quiz <concept>",
}

// Palette is a command-palette overlay backed by bubbles/textinput.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "type a command…"
	ti.CharLimit = 256
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

// Open shows the palette, clears the input, and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			p.visible = false
			p.input.Blur()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "tab":
			if hints := matchHints(p.input.Value(), 1); len(hints) == 1 {
				p.input.SetValue(hintCommand(hints[0]) + " ")
				p.input.CursorEnd()
			}
			return p, nil
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.visible = false
			p.input.Blur()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	matching := matchHints(p.input.Value(), 6)

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if len(matching) > 0 {
		sb.WriteString("\n")
		for _, h := range matching {
			sb.WriteString(hintStyle.Render("  "+h) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}

// matchHints returns up to limit hints whose command starts with the first
// word of input.
func matchHints(input string, limit int) []string {
	word := strings.ToLower(strings.TrimSpace(input))
	if i := strings.IndexByte(word, ' '); i >= 0 {
		word = word[:i]
	}
	var out []string
	for _, h := range PaletteHints {
		if strings.HasPrefix(hintCommand(h), word) {
			out = append(out, h)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

func hintCommand(hint string) string {
	cmd, _, _ := strings.Cut(hint, " ")
	return cmd
}
