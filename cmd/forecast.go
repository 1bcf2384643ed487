package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lamarqs/aria/internal/formatter"
	"github.com/lamarqs/aria/internal/repositories"
	"github.com/lamarqs/aria/internal/shared"
	"github.com/lamarqs/aria/internal/tasks"
	"github.com/lamarqs/aria/internal/ui"
	"github.com/urfave/cli/v3"
)

// Forecast analyzes listening history into a mood forecast, optionally
// interactively, and optionally persists or lists past runs.
func (r *Runner) Forecast(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if cmd.Bool("history") {
		return r.forecastHistory(db)
	}

	source := tasks.HistorySource(cmd.String("source"))
	if source != tasks.SourceRecent && source != tasks.SourceTop {
		return fmt.Errorf("%w: source must be recent or top, got %q", shared.ErrInvalidArgument, source)
	}
	limit := int(cmd.Int("limit"))

	client, _ := r.userClient(db)
	engine := tasks.NewForecastEngine(client)

	if cmd.Bool("tui") {
		model := ui.NewModel(ctx, engine, source, limit)
		_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String())
		}
	}()

	result, err := engine.Run(ctx, progress, source, limit)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	if cmd.Bool("markdown") {
		r.writePlain("%s", formatter.ForecastToMarkdown(result.Forecast))
	} else {
		r.writePlain("%s", formatter.ForecastToText(result.Forecast))
	}

	if cmd.Bool("save") {
		run, err := repositories.NewForecastRepository(db).Create(string(source), result.Forecast)
		if err != nil {
			return fmt.Errorf("failed to save forecast: %w", err)
		}
		r.writePlain("\n✓ Forecast saved (%s)\n", run.ID)
	}
	return nil
}

// forecastHistory lists persisted forecast runs.
func (r *Runner) forecastHistory(db *sql.DB) error {
	runs, err := repositories.NewForecastRepository(db).List(10)
	if err != nil {
		return fmt.Errorf("failed to list forecasts: %w", err)
	}
	if len(runs) == 0 {
		r.writePlain("No saved forecasts. Run `aria forecast --save`.\n")
		return nil
	}

	for _, run := range runs {
		r.writePlain("%s  %-7s %-7s %3d tracks  %.0f BPM  %s\n",
			run.CreatedAt.Local().Format(time.DateTime),
			run.Source, run.Dominant, run.Total, run.AvgTempo, run.ID)
	}
	return nil
}
