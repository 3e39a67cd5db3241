package bootstrap

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	changefeeddomain "ascend/internal/modules/changefeed/domain"
	changefeeddto "ascend/internal/modules/changefeed/dto"
	uiapp "ascend/internal/ui/app"
)

// RunTUI runs the terminal UI next to the change feed and the optional
// metrics endpoint. Quitting the UI stops the others.
func RunTUI(ctx context.Context, app *App) error {
	model := uiapp.NewModel(uiapp.Ports{
		Missions: app.MissionCLI,
		Routines: app.RoutineCLI,
		Session:  app.SessionCLI,
		Ledger:   app.ProgressionCLI,
		Suggest:  app.SuggestCLI,
	}, app.Config.FocusDuration, app.Config.TickUnit)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx))

	app.Changes.Subscribe([]string{changefeeddomain.RecordLedger, changefeeddomain.RecordMission}, func(changefeeddto.ChangeOutput) {
		program.Send(uiapp.LedgerChangedMsg{})
	})

	g.Go(func() error { return app.Changes.Run(gctx) })
	g.Go(func() error { return app.ServeMetrics(gctx) })
	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) && gctx.Err() != nil {
			return nil
		}
		return err
	})
	return g.Wait()
}
