package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lamarqs/aria/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
// run identifies the pipeline run that produced the message, so updates from
// an abandoned run can be discarded after a restart.
type Msg struct {
	kind MsgKind
	run  int
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgForecastComplete
)

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(run int, update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, run: run, data: update}
}

// forecastCompleteMsg is the constructor for [MsgForecastComplete]
func forecastCompleteMsg(run int, result *tasks.ForecastResult, err error) Msg {
	return Msg{
		kind: MsgForecastComplete,
		run:  run,
		data: struct {
			result *tasks.ForecastResult
			err    error
		}{result, err},
	}
}
