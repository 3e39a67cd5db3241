package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	missiondto "ascend/internal/modules/mission/dto"
	progressiondto "ascend/internal/modules/progression/dto"
	routinedto "ascend/internal/modules/routine/dto"
	sessiondto "ascend/internal/modules/session/dto"
	suggestdto "ascend/internal/modules/suggest/dto"
	apperrors "ascend/internal/platform/errors"
	"ascend/internal/ui/components"
	"ascend/internal/ui/theme"
	missionsview "ascend/internal/ui/views/missions"
	routinesview "ascend/internal/ui/views/routines"
	sessionview "ascend/internal/ui/views/session"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type MissionPort interface {
	Create(ctx context.Context, title, category, priority string, plannedDate time.Time) (missiondto.MissionOutput, error)
	List(ctx context.Context, status, category string) ([]missiondto.MissionOutput, error)
	Done(ctx context.Context, missionID string) (missiondto.CompleteOutput, error)
}

type RoutinePort interface {
	List(ctx context.Context) ([]routinedto.RoutineOutput, error)
}

type SessionPort interface {
	Reconcile(ctx context.Context) (sessiondto.ReconcileOutput, error)
	Focus(ctx context.Context, missionID string) (sessiondto.SessionOutput, error)
	StartWorkout(ctx context.Context, routineID string) (sessiondto.SessionOutput, error)
	LogSetPair(ctx context.Context, exerciseID string, setIndex int, weight float64, reps int) (sessiondto.SessionOutput, error)
	FinishWorkout(ctx context.Context) (sessiondto.WorkoutLogOutput, error)
	Abandon(ctx context.Context) error
	Status(ctx context.Context) (sessiondto.SessionOutput, error)
	Tick(ctx context.Context) (sessiondto.SessionOutput, bool)
	PauseFocus(ctx context.Context) (sessiondto.SessionOutput, error)
	ResumeFocus(ctx context.Context) (sessiondto.SessionOutput, error)
	ResetFocus(ctx context.Context) (sessiondto.SessionOutput, error)
	CompleteFocus(ctx context.Context) (sessiondto.SessionOutput, error)
	SubmitFeedback(ctx context.Context, difficulty string, energy int) (sessiondto.FeedbackOutput, error)
	DismissFeedback(ctx context.Context) error
}

type LedgerPort interface {
	Ledger(ctx context.Context) (progressiondto.LedgerOutput, error)
}

type SuggestPort interface {
	Suggest(ctx context.Context, categories []string, count int) (suggestdto.SuggestOutput, error)
	Accept(ctx context.Context, candidate suggestdto.CandidateOutput) (missiondto.MissionOutput, error)
	Quiz(ctx context.Context, concept string) (suggestdto.QuizOutput, error)
}

type Ports struct {
	Missions MissionPort
	Routines RoutinePort
	Session  SessionPort
	Ledger   LedgerPort
	Suggest  SuggestPort
}

// ─── tabs ────────────────────────────────────────────────────────────────────

type tabID int

const (
	tabMissions tabID = iota
	tabRoutines
	tabSession
	tabCount
)

var tabLabels = [tabCount]string{"Missions", "Routines", "Session"}

// ─── messages ────────────────────────────────────────────────────────────────

// LedgerChangedMsg is sent from outside the program when the change feed
// reports a ledger update.
type LedgerChangedMsg struct{}

type tickMsg time.Time

type tickedMsg struct {
	out     sessiondto.SessionOutput
	changed bool
}

type sessionMsg struct {
	out  sessiondto.SessionOutput
	err  error
	note string
}

type sessionEndedMsg struct {
	note string
	err  error
}

type ledgerMsg struct {
	ledger progressiondto.LedgerOutput
	err    error
}

type suggestionsMsg struct {
	out suggestdto.SuggestOutput
	err error
}

type quizMsg struct {
	out suggestdto.QuizOutput
	err error
}

type noticeMsg struct {
	text string
	err  error
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Tab      key.Binding
	Help     key.Binding
	Palette  key.Binding
	Quit     key.Binding
	Focus    key.Binding
	Done     key.Binding
	Workout  key.Binding
	Pause    key.Binding
	Reset    key.Binding
	Complete key.Binding
	Abandon  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette:  key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Focus:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "focus on mission")),
		Done:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "mark mission done")),
		Workout:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "start workout")),
		Pause:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause/resume focus")),
		Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset focus")),
		Complete: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete focus")),
		Abandon:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "abandon session")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Focus, k.Done, k.Workout},
		{k.Pause, k.Reset, k.Complete, k.Abandon},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns the tick source for the
// session engine, tab routing, the feedback modal and the command palette.
type Model struct {
	ports    Ports
	tickUnit time.Duration

	missionsView missionsview.Model
	routinesView routinesview.Model
	sessionView  sessionview.Model

	activeTab   tabID
	keys        keyMap
	help        help.Model
	showHelp    bool
	palette     components.Palette
	feedback    components.Feedback
	ledger      progressiondto.LedgerOutput
	suggestions []suggestdto.CandidateOutput
	notice      string
	status      string
	width       int
	height      int
}

func NewModel(ports Ports, focusDuration, tickUnit time.Duration) Model {
	if tickUnit <= 0 {
		tickUnit = time.Second
	}
	return Model{
		ports:        ports,
		tickUnit:     tickUnit,
		missionsView: missionsview.New(ports.Missions),
		routinesView: routinesview.New(ports.Routines),
		sessionView:  sessionview.New(focusDuration),
		activeTab:    tabMissions,
		keys:         defaultKeys(),
		help:         help.New(),
		palette:      components.NewPalette(),
		feedback:     components.NewFeedback(),
		status:       "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.missionsView.Init(),
		m.routinesView.Init(),
		m.loadLedgerCmd(),
		m.recoverCmd(),
		m.scheduleTick(),
	)
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.feedback.Visible() {
		if _, ok := msg.(tea.KeyMsg); ok {
			var cmd tea.Cmd
			m.feedback, cmd = m.feedback.Update(msg)
			return m, cmd
		}
	}
	if m.palette.Visible() {
		if _, ok := msg.(tea.KeyMsg); ok {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()

	case tickMsg:
		cmds = append(cmds, m.scheduleTick())
		if m.sessionView.Active() {
			cmds = append(cmds, m.tickCmd())
		}

	case tickedMsg:
		if msg.out.SessionID == "" {
			m.sessionView.Clear()
			break
		}
		m.sessionView.Set(msg.out)
		if msg.out.FeedbackOpen && !m.feedback.Visible() {
			m.feedback.Open(msg.out.TargetTitle)
			m.status = "focus finished"
		}

	case sessionMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			break
		}
		m.sessionView.Set(msg.out)
		m.activeTab = tabSession
		if msg.note != "" {
			m.status = msg.note
		}
		if msg.out.FeedbackOpen && !m.feedback.Visible() {
			m.feedback.Open(msg.out.TargetTitle)
		}

	case sessionEndedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			break
		}
		m.sessionView.Clear()
		m.feedback.Close()
		m.status = msg.note
		cmds = append(cmds, m.missionsView.Reload(), m.loadLedgerCmd())

	case ledgerMsg:
		if msg.err != nil {
			m.status = "ledger: " + msg.err.Error()
		} else {
			m.ledger = msg.ledger
		}

	case LedgerChangedMsg:
		cmds = append(cmds, m.loadLedgerCmd(), m.missionsView.Reload())

	case suggestionsMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			break
		}
		m.suggestions = msg.out.Candidates
		if len(m.suggestions) == 0 {
			m.notice = ""
			m.status = "no suggestions right now"
			break
		}
		var sb strings.Builder
		sb.WriteString(theme.Title.Render("Suggestions") + theme.Muted.Render(" via "+msg.out.Source) + "\n")
		for i, c := range m.suggestions {
			sb.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, c.Title, theme.Muted.Render("("+c.Category+", "+c.Priority+")")))
		}
		sb.WriteString(theme.Muted.Render(":accept <n> to add, esc to close"))
		m.notice = sb.String()

	case quizMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			break
		}
		var sb strings.Builder
		sb.WriteString(theme.Title.Render("Quiz: "+msg.out.Concept) + "\n" + msg.out.Prompt + "\n")
		for i, option := range msg.out.Options {
			line := fmt.Sprintf("  %c) %s", 'a'+i, option)
			if i == msg.out.CorrectIndex {
				line = theme.Good.Render(line + "  ✓")
			}
			sb.WriteString(line + "\n")
		}
		if msg.out.Explanation != "" {
			sb.WriteString(theme.Muted.Render(msg.out.Explanation))
		}
		m.notice = sb.String()

	case noticeMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = msg.text
		}
		cmds = append(cmds, m.missionsView.Reload(), m.loadLedgerCmd())

	case components.FeedbackSubmitMsg:
		cmds = append(cmds, m.submitFeedbackCmd(msg.Difficulty, msg.EnergyAfter))

	case components.FeedbackDismissMsg:
		cmds = append(cmds, m.dismissFeedbackCmd())

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.subViewFiltering() {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, m.quitCmd()
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		case "?":
			m.showHelp = !m.showHelp
		case ":":
			return m, m.palette.Open()
		case "esc":
			m.notice = ""
		case "f":
			if mission, ok := m.missionsView.Selected(); ok && m.activeTab == tabMissions {
				cmds = append(cmds, m.sessionCmd("focus started", func(ctx context.Context) (sessiondto.SessionOutput, error) {
					return m.ports.Session.Focus(ctx, mission.ID)
				}))
			}
		case "x":
			if mission, ok := m.missionsView.Selected(); ok && m.activeTab == tabMissions {
				cmds = append(cmds, m.markDoneCmd(mission.ID))
			}
		case "w":
			if routine, ok := m.routinesView.Selected(); ok && m.activeTab == tabRoutines {
				cmds = append(cmds, m.sessionCmd("workout started", func(ctx context.Context) (sessiondto.SessionOutput, error) {
					return m.ports.Session.StartWorkout(ctx, routine.ID)
				}))
			}
		case "p":
			if m.activeTab == tabSession {
				cmds = append(cmds, m.togglePauseCmd())
			}
		case "r":
			if m.activeTab == tabSession {
				cmds = append(cmds, m.sessionCmd("focus reset", m.ports.Session.ResetFocus))
			}
		case "c":
			if m.activeTab == tabSession {
				cmds = append(cmds, m.sessionCmd("", m.ports.Session.CompleteFocus))
			}
		case "a":
			if m.activeTab == tabSession {
				cmds = append(cmds, m.abandonCmd())
			}
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabMissions:
		m.missionsView, tabCmd = m.missionsView.Update(msg)
	case tabRoutines:
		m.routinesView, tabCmd = m.routinesView.Update(msg)
	}
	cmds = append(cmds, tabCmd)
	// Lists not on screen still need their data.
	switch msg.(type) {
	case missionsview.LoadedMsg:
		if m.activeTab != tabMissions {
			m.missionsView, tabCmd = m.missionsView.Update(msg)
			cmds = append(cmds, tabCmd)
		}
	case routinesview.LoadedMsg:
		if m.activeTab != tabRoutines {
			m.routinesView, tabCmd = m.routinesView.Update(msg)
			cmds = append(cmds, tabCmd)
		}
	}
	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	noticeH := 0
	notice := ""
	if m.notice != "" {
		notice = theme.Pane.Width(m.width - 4).Render(m.notice)
		noticeH = lipgloss.Height(notice)
	}
	contentH := m.height - lipgloss.Height(header) - lipgloss.Height(statusBar) - noticeH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.feedback.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.feedback.View())
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}
	parts := []string{header, content}
	if notice != "" {
		parts = append(parts, notice)
	}
	parts = append(parts, statusBar)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabMissions:
		return m.missionsView.View()
	case tabRoutines:
		return m.routinesView.View()
	case tabSession:
		return m.sessionView.View()
	}
	return ""
}

func (m Model) renderHeader() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	left := "ascend  " + strings.Join(parts, theme.Muted.Render(" │ "))
	right := renderLedger(m.ledger)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(left+strings.Repeat(" ", gap)+right) + "\n"
}

func renderLedger(l progressiondto.LedgerOutput) string {
	if l.Rank == "" {
		return ""
	}
	out := theme.Title.Render(l.Rank) + theme.Muted.Render(fmt.Sprintf("  %d xp", l.Experience))
	if l.NextRank != "" && l.NextRankAt > 0 {
		out += " " + theme.Bar(float64(l.Experience)/float64(l.NextRankAt), 12) + theme.Muted.Render(" "+l.NextRank)
	}
	return out
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.sessionView.Active() {
		current := m.sessionView.Current()
		left = theme.Hot.Render("● "+current.TargetTitle) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  ::command  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(left+strings.Repeat(" ", gap)+right)
}

// ─── palette execution ───────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	switch parts[0] {
	case "mission:add":
		if len(parts) < 4 {
			m.status = "usage: mission:add <category> <priority> <title>"
			return m, nil
		}
		title := strings.Join(parts[3:], " ")
		return m, m.noticeCmd(func(ctx context.Context) (string, error) {
			out, err := m.ports.Missions.Create(ctx, title, parts[1], parts[2], time.Time{})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("added %q (impact %d)", out.Title, out.Impact), nil
		})

	case "mission:done":
		mission, ok := m.missionsView.Selected()
		if !ok {
			m.status = "no mission selected"
			return m, nil
		}
		return m, m.markDoneCmd(mission.ID)

	case "focus":
		mission, ok := m.missionsView.Selected()
		if !ok {
			m.status = "no mission selected"
			return m, nil
		}
		return m, m.sessionCmd("focus started", func(ctx context.Context) (sessiondto.SessionOutput, error) {
			return m.ports.Session.Focus(ctx, mission.ID)
		})
	case "focus:pause":
		return m, m.sessionCmd("paused", m.ports.Session.PauseFocus)
	case "focus:resume":
		return m, m.sessionCmd("running", m.ports.Session.ResumeFocus)
	case "focus:reset":
		return m, m.sessionCmd("focus reset", m.ports.Session.ResetFocus)
	case "focus:done":
		return m, m.sessionCmd("", m.ports.Session.CompleteFocus)

	case "workout":
		routine, ok := m.routinesView.Selected()
		if !ok {
			m.status = "no routine selected"
			return m, nil
		}
		return m, m.sessionCmd("workout started", func(ctx context.Context) (sessiondto.SessionOutput, error) {
			return m.ports.Session.StartWorkout(ctx, routine.ID)
		})

	case "set":
		if len(parts) != 5 {
			m.status = "usage: set <exercise> <set> <weight> <reps>"
			return m, nil
		}
		setNo, err1 := strconv.Atoi(parts[2])
		weight, err2 := strconv.ParseFloat(parts[3], 64)
		reps, err3 := strconv.Atoi(parts[4])
		if err := errors.Join(err1, err2, err3); err != nil {
			m.status = "set: " + err.Error()
			return m, nil
		}
		return m, m.sessionCmd("", func(ctx context.Context) (sessiondto.SessionOutput, error) {
			return m.ports.Session.LogSetPair(ctx, parts[1], setNo-1, weight, reps)
		})

	case "workout:finish":
		return m, m.finishWorkoutCmd()

	case "abandon":
		return m, m.abandonCmd()

	case "suggest":
		categories := parts[1:]
		return m, func() tea.Msg {
			out, err := m.ports.Suggest.Suggest(context.Background(), categories, 0)
			return suggestionsMsg{out: out, err: err}
		}

	case "accept":
		if len(parts) != 2 {
			m.status = "usage: accept <n>"
			return m, nil
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 1 || n > len(m.suggestions) {
			m.status = "no such suggestion"
			return m, nil
		}
		candidate := m.suggestions[n-1]
		m.suggestions = append(m.suggestions[:n-1:n-1], m.suggestions[n:]...)
		return m, m.noticeCmd(func(ctx context.Context) (string, error) {
			out, err := m.ports.Suggest.Accept(ctx, candidate)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("added %q", out.Title), nil
		})

	case "quiz":
		concept := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))
		return m, func() tea.Msg {
			out, err := m.ports.Suggest.Quiz(context.Background(), concept)
			return quizMsg{out: out, err: err}
		}

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m Model) subViewFiltering() bool {
	switch m.activeTab {
	case tabMissions:
		return m.missionsView.Filtering()
	case tabRoutines:
		return m.routinesView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.missionsView, _ = m.missionsView.Update(sz)
	m.routinesView, _ = m.routinesView.Update(sz)
	m.sessionView.SetSize(sz.Width, sz.Height)
}

// ─── async commands ──────────────────────────────────────────────────────────

func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.tickUnit, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) tickCmd() tea.Cmd {
	return func() tea.Msg {
		out, changed := m.ports.Session.Tick(context.Background())
		return tickedMsg{out: out, changed: changed}
	}
}

func (m Model) recoverCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		rec, err := m.ports.Session.Reconcile(ctx)
		if err != nil {
			return sessionMsg{err: fmt.Errorf("recover session: %w", err)}
		}
		switch rec.Outcome {
		case sessiondto.ReconcileResumed, sessiondto.ReconcileAttached:
			out, err := m.ports.Session.Status(ctx)
			return sessionMsg{out: out, err: err, note: "session resumed"}
		case sessiondto.ReconcileDiscarded:
			return noticeMsg{text: "stale focus session discarded"}
		case sessiondto.ReconcileForeign:
			return noticeMsg{text: "a session is running in another process"}
		}
		return noticeMsg{text: "ready"}
	}
}

func (m Model) loadLedgerCmd() tea.Cmd {
	return func() tea.Msg {
		ledger, err := m.ports.Ledger.Ledger(context.Background())
		return ledgerMsg{ledger: ledger, err: err}
	}
}

func (m Model) sessionCmd(note string, call func(context.Context) (sessiondto.SessionOutput, error)) tea.Cmd {
	return func() tea.Msg {
		out, err := call(context.Background())
		return sessionMsg{out: out, err: err, note: note}
	}
}

func (m Model) togglePauseCmd() tea.Cmd {
	if m.sessionView.Current().FocusState == "running" {
		return m.sessionCmd("paused", m.ports.Session.PauseFocus)
	}
	return m.sessionCmd("running", m.ports.Session.ResumeFocus)
}

func (m Model) noticeCmd(call func(context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		text, err := call(context.Background())
		return noticeMsg{text: text, err: err}
	}
}

func (m Model) markDoneCmd(missionID string) tea.Cmd {
	return m.noticeCmd(func(ctx context.Context) (string, error) {
		out, err := m.ports.Missions.Done(ctx, missionID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%q done · %d xp", out.Mission.Title, out.Ledger.Experience), nil
	})
}

func (m Model) finishWorkoutCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.ports.Session.FinishWorkout(context.Background())
		if err != nil {
			return sessionEndedMsg{err: fmt.Errorf("finish workout: %w", err)}
		}
		return sessionEndedMsg{note: fmt.Sprintf("workout logged · volume %s · %d min", sessionview.FormatWeight(out.TotalVolume), out.DurationMinutes)}
	}
}

func (m Model) submitFeedbackCmd(difficulty string, energy int) tea.Cmd {
	return func() tea.Msg {
		out, err := m.ports.Session.SubmitFeedback(context.Background(), difficulty, energy)
		if err != nil {
			return sessionEndedMsg{err: fmt.Errorf("save feedback: %w", err)}
		}
		return sessionEndedMsg{note: fmt.Sprintf("%q done · %d xp", out.Mission.Title, out.Ledger.Experience)}
	}
}

func (m Model) dismissFeedbackCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.ports.Session.DismissFeedback(context.Background()); err != nil {
			return sessionEndedMsg{err: err}
		}
		return sessionEndedMsg{note: "feedback skipped; mission back to planned"}
	}
}

func (m Model) abandonCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.ports.Session.Abandon(context.Background()); err != nil {
			return sessionEndedMsg{err: err}
		}
		return sessionEndedMsg{note: "session abandoned"}
	}
}

// quitCmd abandons a focus session before quitting; workouts stay resumable.
func (m Model) quitCmd() tea.Cmd {
	if !m.focusEngaged() {
		return tea.Quit
	}
	return tea.Sequence(m.releaseFocusCmd(), tea.Quit)
}

func (m Model) focusEngaged() bool {
	return m.sessionView.Active() && m.sessionView.Current().Kind == "mission"
}

func (m Model) releaseFocusCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.ports.Session.Abandon(context.Background()); err != nil && !errors.Is(err, apperrors.ErrNoActiveSession) {
			return noticeMsg{err: err}
		}
		return nil
	}
}
