package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lamarqs/aria/internal/mood"
	"github.com/lamarqs/aria/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ForecastView ViewState = iota
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.ForecastEngine
	source       tasks.HistorySource
	limit        int
	width        int
	height       int
	spin         spinner.Model
	trackList    list.Model
	run          int
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.ForecastResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates the initial TUI model.
func NewModel(ctx context.Context, engine *tasks.ForecastEngine, source tasks.HistorySource, limit int) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.ok

	return Model{
		ctx:          ctx,
		view:         ForecastView,
		engine:       engine,
		source:       source,
		limit:        limit,
		spin:         spin,
		progressChan: make(chan tasks.ProgressUpdate, 16),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init starts the forecast pipeline and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.runForecast(), m.nextProgress())
}

// runForecast executes the pipeline and delivers the completion message.
// The progress channel is closed on completion so its reader never blocks
// on a run that has already finished.
func (m Model) runForecast() tea.Cmd {
	engine, source, limit, progress := m.engine, m.source, m.limit, m.progressChan
	ctx, run := m.ctx, m.run
	return func() tea.Msg {
		result, err := engine.Run(ctx, progress, source, limit)
		close(progress)
		return forecastCompleteMsg(run, result, err)
	}
}

// nextProgress waits for one progress update from the pipeline.
func (m Model) nextProgress() tea.Cmd {
	progress, run := m.progressChan, m.run
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return nil
		}
		return progressUpdateMsg(run, update)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.trackList.Items() != nil {
			m.trackList.SetSize(msg.Width, msg.Height-10)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case Msg:
		return m.handleAppMsg(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.restart):
		return m.restart(m.source)

	case key.Matches(msg, m.keys.source):
		if m.source == tasks.SourceRecent {
			return m.restart(tasks.SourceTop)
		}
		return m.restart(tasks.SourceRecent)
	}

	if m.view == ResultView {
		var cmd tea.Cmd
		m.trackList, cmd = m.trackList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// restart reruns the pipeline, optionally against a different source.
// The run counter advances so messages from the abandoned run are dropped.
func (m Model) restart(source tasks.HistorySource) (tea.Model, tea.Cmd) {
	m.run++
	m.source = source
	m.view = ForecastView
	m.result = nil
	m.err = nil
	m.progress = tasks.ProgressUpdate{}
	m.progressChan = make(chan tasks.ProgressUpdate, 16)
	return m, tea.Batch(m.spin.Tick, m.runForecast(), m.nextProgress())
}

func (m Model) handleAppMsg(msg Msg) (tea.Model, tea.Cmd) {
	if msg.run != m.run {
		return m, nil
	}
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.nextProgress()

	case MsgForecastComplete:
		data := msg.data.(struct {
			result *tasks.ForecastResult
			err    error
		})
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		if m.result != nil {
			m.trackList = m.newTrackList()
		}
		return m, nil
	}
	return m, nil
}

// newTrackList builds the result view's track list with per-track moods.
func (m Model) newTrackList() list.Model {
	byID := make(map[string]mood.Mood, len(m.result.Features))
	for _, f := range m.result.Features {
		byID[f.ID] = mood.Classify(f)
	}

	items := make([]list.Item, 0, len(m.result.Tracks))
	for _, track := range m.result.Tracks {
		if tm, ok := byID[track.ID]; ok {
			items = append(items, trackItem{track: track, mood: tm})
		}
	}

	height := m.height - 10
	if height < 5 {
		height = 5
	}
	trackList := list.New(items, list.NewDefaultDelegate(), m.width, height)
	trackList.Title = "Analyzed tracks"
	trackList.SetShowHelp(false)
	return trackList
}

func (m Model) View() string {
	switch m.view {
	case ForecastView:
		return m.forecastView()
	case ResultView:
		return m.resultView()
	default:
		return ""
	}
}

func (m Model) forecastView() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Mood Forecast"))
	b.WriteString("\n\n")

	message := m.progress.Message
	if message == "" {
		message = "Starting..."
	}
	b.WriteString(fmt.Sprintf("%s %s\n", m.spin.View(), message))
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m Model) resultView() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Mood Forecast"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Forecast failed: %v", m.err)))
		b.WriteString("\n\n" + m.help.View(m.keys))
		return b.String()
	}

	forecast := m.result.Forecast
	b.WriteString(fmt.Sprintf("Source: %s\n", m.source))
	b.WriteString(fmt.Sprintf("Dominant mood: %s\n", paintMood(forecast.Dominant)))
	b.WriteString(fmt.Sprintf("Average tempo: %.0f BPM\n\n", forecast.AvgTempo))

	for _, share := range forecast.Shares {
		b.WriteString(fmt.Sprintf("  %-20s %3d  %5.1f%%\n",
			paintMood(share.Mood), share.Count, share.Percent))
	}

	b.WriteString("\n" + m.trackList.View())
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}
