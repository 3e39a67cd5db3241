package routines

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	routinedto "ascend/internal/modules/routine/dto"
	"ascend/internal/ui/theme"
)

type RoutinePort interface {
	List(ctx context.Context) ([]routinedto.RoutineOutput, error)
}

type LoadedMsg struct {
	Routines []routinedto.RoutineOutput
	Err      error
}

type routineItem struct {
	routine routinedto.RoutineOutput
}

func (i routineItem) Title() string { return i.routine.Name }

func (i routineItem) Description() string {
	sets := 0
	for _, ex := range i.routine.Exercises {
		sets += ex.TargetSets
	}
	return fmt.Sprintf("%d exercises · %d sets", len(i.routine.Exercises), sets)
}

func (i routineItem) FilterValue() string { return i.routine.Name }

type Model struct {
	port   RoutinePort
	list   list.Model
	err    error
	width  int
	height int
}

func New(port RoutinePort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)
	l := list.New(nil, delegate, 0, 0)
	l.Title = "Routines"
	l.Styles.Title = theme.Title
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	return Model{port: port, list: l}
}

func (m Model) Init() tea.Cmd { return m.Reload() }

func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		routines, err := m.port.List(context.Background())
		return LoadedMsg{Routines: routines, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width*4/10, m.height)
	case LoadedMsg:
		m.err = msg.Err
		if msg.Err == nil {
			items := make([]list.Item, len(msg.Routines))
			for i, r := range msg.Routines {
				items[i] = routineItem{routine: r}
			}
			cmds = append(cmds, m.list.SetItems(items))
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	listW := m.width * 4 / 10
	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	detailPane := theme.Pane.Width(m.width - listW - 4).Height(m.height - 4).Render(m.renderDetail())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

func (m Model) Selected() (routinedto.RoutineOutput, bool) {
	if item, ok := m.list.SelectedItem().(routineItem); ok {
		return item.routine, true
	}
	return routinedto.RoutineOutput{}, false
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) renderDetail() string {
	if m.err != nil {
		return theme.Bad.Render(m.err.Error())
	}
	routine, ok := m.Selected()
	if !ok {
		return theme.Muted.Render("No routines. Import one with `ascend routine add --file`.")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(routine.Name) + "\n\n")
	for _, ex := range routine.Exercises {
		sb.WriteString(fmt.Sprintf("%-22s %s\n", ex.Name, theme.Muted.Render(fmt.Sprintf("%d × %d-%d  %s", ex.TargetSets, ex.RepMin, ex.RepMax, ex.MuscleGroup))))
	}
	sb.WriteString("\n" + theme.Muted.Render("w: start workout"))
	return sb.String()
}
