package missions

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	missiondto "ascend/internal/modules/mission/dto"
	"ascend/internal/ui/theme"
)

type MissionPort interface {
	List(ctx context.Context, status, category string) ([]missiondto.MissionOutput, error)
}

// LoadedMsg carries a fresh mission list.
type LoadedMsg struct {
	Missions []missiondto.MissionOutput
	Err      error
}

type missionItem struct {
	mission missiondto.MissionOutput
}

func (i missionItem) Title() string {
	marker := "  "
	switch i.mission.Status {
	case "in_progress":
		marker = "▶ "
	case "done":
		marker = "✓ "
	}
	return marker + i.mission.Title
}

func (i missionItem) Description() string {
	return fmt.Sprintf("%s · %s · impact %d", i.mission.Category, i.mission.Priority, i.mission.Impact)
}

func (i missionItem) FilterValue() string { return i.mission.Title }

type Model struct {
	port    MissionPort
	list    list.Model
	spinner spinner.Model
	loading bool
	err     error
	width   int
	height  int
}

func New(port MissionPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Missions"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, list: l, spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Reload fetches open missions; done ones are shown on the ledger instead.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		planned, err := m.port.List(ctx, "planned", "")
		if err != nil {
			return LoadedMsg{Err: err}
		}
		active, err := m.port.List(ctx, "in_progress", "")
		if err != nil {
			return LoadedMsg{Err: err}
		}
		return LoadedMsg{Missions: append(active, planned...)}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width*5/10, m.height)

	case LoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		items := make([]list.Item, len(msg.Missions))
		for i, mission := range msg.Missions {
			items[i] = missionItem{mission: mission}
		}
		cmds = append(cmds, m.list.SetItems(items))

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.spinner.View()+" Loading missions…")
	}
	listW := m.width * 5 / 10
	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	detailPane := theme.Pane.Width(m.width - listW - 4).Height(m.height - 4).Render(m.renderDetail())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Selected returns the highlighted mission.
func (m Model) Selected() (missiondto.MissionOutput, bool) {
	if item, ok := m.list.SelectedItem().(missionItem); ok {
		return item.mission, true
	}
	return missiondto.MissionOutput{}, false
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) renderDetail() string {
	if m.err != nil {
		return theme.Bad.Render(m.err.Error())
	}
	mission, ok := m.Selected()
	if !ok {
		return theme.Muted.Render("No open missions. Add one with :mission:add")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(mission.Title) + "\n\n")
	sb.WriteString(theme.Muted.Render("category: ") + mission.Category + "\n")
	sb.WriteString(theme.Muted.Render("priority: ") + mission.Priority + "\n")
	sb.WriteString(theme.Muted.Render("impact:   ") + fmt.Sprint(mission.Impact) + "\n")
	sb.WriteString(theme.Muted.Render("status:   ") + mission.Status + "\n")
	sb.WriteString(theme.Muted.Render("planned:  ") + mission.PlannedDate.Format("Mon 2 Jan") + "\n")
	sb.WriteString("\n" + theme.Muted.Render("f: focus  x: mark done"))
	return sb.String()
}
