// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a two-view mood forecast workflow:
//  1. [ForecastView] : Watch the pipeline fetch history and classify moods
//  2. [ResultView] : Browse the forecast breakdown and the tracks behind it
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the ForecastEngine, providing non-blocking status reporting during analysis.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
