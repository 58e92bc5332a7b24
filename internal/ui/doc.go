// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for bulk-adding pasted tracks:
//  1. [PasteView] : Paste track names, one per line
//  2. [HintView] : Optionally narrow matches to one artist
//  3. [PickView] : Choose an existing playlist or the draft entry
//  4. [NameView] : Name the playlist when the draft entry is chosen
//  5. [ConfirmView] : Confirm the submission and toggle the duplicate filter
//  6. [SubmitView] : Monitor real-time progress updates
//  7. [ResultView] : Display the outcome and restart or quit
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the reconcile engine, providing non-blocking status reporting during submissions.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
