package app

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	missiondto "ascend/internal/modules/mission/dto"
	progressiondto "ascend/internal/modules/progression/dto"
	routinedto "ascend/internal/modules/routine/dto"
	sessiondto "ascend/internal/modules/session/dto"
	suggestdto "ascend/internal/modules/suggest/dto"
	"ascend/internal/ui/components"
)

type fakeSession struct {
	SessionPort
	logged    []string
	abandoned int
	feedback  []string
}

func (f *fakeSession) LogSetPair(_ context.Context, exerciseID string, setIndex int, weight float64, reps int) (sessiondto.SessionOutput, error) {
	f.logged = append(f.logged, fmt.Sprintf("%s,%d,%g,%d", exerciseID, setIndex, weight, reps))
	return sessiondto.SessionOutput{SessionID: "s-1", Kind: "workout"}, nil
}

func (f *fakeSession) Abandon(context.Context) error {
	f.abandoned++
	return nil
}

func (f *fakeSession) SubmitFeedback(_ context.Context, difficulty string, energy int) (sessiondto.FeedbackOutput, error) {
	f.feedback = append(f.feedback, fmt.Sprintf("%s/%d", difficulty, energy))
	return sessiondto.FeedbackOutput{
		Mission: missiondto.MissionOutput{Title: "Write report"},
		Ledger:  progressiondto.LedgerOutput{Experience: 50},
	}, nil
}

type fakeSuggest struct {
	SuggestPort
	accepted []suggestdto.CandidateOutput
}

func (f *fakeSuggest) Accept(_ context.Context, c suggestdto.CandidateOutput) (missiondto.MissionOutput, error) {
	f.accepted = append(f.accepted, c)
	return missiondto.MissionOutput{Title: c.Title}, nil
}

type emptyMissions struct{ MissionPort }

func (emptyMissions) List(context.Context, string, string) ([]missiondto.MissionOutput, error) {
	return nil, nil
}

type emptyRoutines struct{}

func (emptyRoutines) List(context.Context) ([]routinedto.RoutineOutput, error) { return nil, nil }

func newTestModel(session *fakeSession, suggest *fakeSuggest) Model {
	m := NewModel(Ports{Missions: emptyMissions{}, Routines: emptyRoutines{}, Session: session, Suggest: suggest}, 25*time.Minute, time.Second)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model)
}

func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, inner := range batch {
			if inner == nil {
				continue
			}
			if out := inner(); out != nil {
				return out
			}
		}
		return nil
	}
	return msg
}

func TestSetCommandUsesOneBasedSetNumbers(t *testing.T) {
	session := &fakeSession{}
	m := newTestModel(session, &fakeSuggest{})

	updated, cmd := m.executePalette("set bench 2 62.5 8")
	msg := run(t, cmd)
	if got := session.logged; len(got) != 1 || got[0] != "bench,1,62.5,8" {
		t.Fatalf("unexpected log calls %v", got)
	}
	next, _ := updated.(Model).Update(msg)
	if next.(Model).activeTab != tabSession {
		t.Fatalf("expected session tab after logging a set")
	}

	updated, cmd = m.executePalette("set bench two 60 8")
	if cmd != nil || !strings.HasPrefix(updated.(Model).status, "set:") {
		t.Fatalf("expected parse error, got status %q", updated.(Model).status)
	}
}

func TestFeedbackModalOpensOnExpiryAndSubmits(t *testing.T) {
	session := &fakeSession{}
	m := newTestModel(session, &fakeSuggest{})

	updated, _ := m.Update(tickedMsg{out: sessiondto.SessionOutput{SessionID: "s-1", Kind: "mission", TargetTitle: "Write report", FeedbackOpen: true}, changed: true})
	m = updated.(Model)
	if !m.feedback.Visible() {
		t.Fatalf("feedback modal should open when the focus timer expires")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	updated, _ = updated.(Model).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'7'}})
	updated, cmd := updated.(Model).Update(tea.KeyMsg{Type: tea.KeyEnter})
	submit, ok := run(t, cmd).(components.FeedbackSubmitMsg)
	if !ok || submit.Difficulty != "hard" || submit.EnergyAfter != 7 {
		t.Fatalf("unexpected submit %+v", submit)
	}

	updated, cmd = updated.(Model).Update(submit)
	ended := run(t, cmd)
	updated, _ = updated.(Model).Update(ended)
	m = updated.(Model)
	if len(session.feedback) != 1 || session.feedback[0] != "hard/7" {
		t.Fatalf("unexpected feedback calls %v", session.feedback)
	}
	if m.sessionView.Active() || !strings.Contains(m.status, "50 xp") {
		t.Fatalf("session should be cleared with the award shown, status %q", m.status)
	}
}

func TestAcceptTakesSuggestionByNumber(t *testing.T) {
	suggest := &fakeSuggest{}
	m := newTestModel(&fakeSession{}, suggest)
	updated, _ := m.Update(suggestionsMsg{out: suggestdto.SuggestOutput{Source: "plugin", Candidates: []suggestdto.CandidateOutput{
		{Title: "Run 5k", Category: "sport", Priority: "high"},
		{Title: "Read a chapter", Category: "study", Priority: "medium"},
	}}})
	m = updated.(Model)
	if !strings.Contains(m.notice, "2. Read a chapter") {
		t.Fatalf("notice should list suggestions:\n%s", m.notice)
	}

	updated, cmd := m.executePalette("accept 2")
	run(t, cmd)
	if len(suggest.accepted) != 1 || suggest.accepted[0].Title != "Read a chapter" {
		t.Fatalf("unexpected accepted %v", suggest.accepted)
	}
	if left := updated.(Model).suggestions; len(left) != 1 || left[0].Title != "Run 5k" {
		t.Fatalf("accepted suggestion should be removed, left %v", left)
	}

	updated, cmd = updated.(Model).executePalette("accept 5")
	if cmd != nil || updated.(Model).status != "no such suggestion" {
		t.Fatalf("expected out of range error")
	}
}

func TestQuitAbandonsFocusSession(t *testing.T) {
	session := &fakeSession{}
	m := newTestModel(session, &fakeSuggest{})
	if msg := m.quitCmd()(); msg != tea.Quit() {
		t.Fatalf("idle model should quit directly")
	}

	m.sessionView.Set(sessiondto.SessionOutput{SessionID: "s-1", Kind: "mission"})
	if !m.focusEngaged() {
		t.Fatalf("focus session should be engaged")
	}
	if msg := m.releaseFocusCmd()(); msg != nil {
		t.Fatalf("unexpected message %v", msg)
	}
	if session.abandoned != 1 {
		t.Fatalf("focus session should be abandoned on quit")
	}

	m.sessionView.Set(sessiondto.SessionOutput{SessionID: "s-2", Kind: "workout"})
	if m.focusEngaged() {
		t.Fatalf("workout sessions stay resumable")
	}
}
