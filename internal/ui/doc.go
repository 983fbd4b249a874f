// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI mirrors the chat flow locally for the `search` command:
//  1. [ResultsView] : Browse the candidates a search returned
//  2. [FetchView] : Wait while the selected track's audio is fetched
//  3. [DoneView] : Display the delivery outcome
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// The fetch runs inside a tea.Cmd so the interface stays responsive while the engine works.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
