// Package ui implements an interactive timeline editor using bubbletea's Elm architecture.
//
// The TUI provides a small multi-view workflow:
//  1. [TimelineView] : Browse the running order, reorder (J/K) and remove (x) items
//  2. [SearchInputView] / [SearchResultsView] : Resolve a query and add the chosen song after the last song
//  3. [SnippetInputView] : Insert a spoken snippet after the selected item
//  4. [ConfirmView] / [GenerateView] / [ResultView] : Submit the timeline for rendering and show the download link
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Every edit goes through the timeline controller inside a command, so the list always reflects persisted state.
// Render progress flows through a channel from the generator, providing non-blocking status reporting.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
