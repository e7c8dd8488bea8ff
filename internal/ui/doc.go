// Package ui is the Bubble Tea front end: a paged record table, an update
// view for one record and a create dialog.
//
// # Views
//
// The router decides which view is mounted:
//
//   - "/" renders the list: the current page of records in a table, a
//     loading line while a page is in flight, an error banner when the last
//     load or write failed and the page strip below.
//   - "/update/:id" renders the update form for one record. Saving writes
//     the draft and returns to "/".
//
// On the list, g or a digit opens a page prompt in the command bar; digits
// accumulate until enter jumps to that page.
//
// Pressing L on the list opens an overlay with the newest entries of the
// log file, so request failures can be read without leaving the terminal.
//
// Switching views unmounts the previous one, which cancels its in-flight
// load and drops its state.
//
// # Event Flow
//
// Keys are handled on the Bubble Tea event loop. A load starts there
// (loader Begin) and its I/O half runs as a tea.Cmd; the result lands in the
// stores, and every message ends with the model re-reading store snapshots.
// Writes go through the mutation façade in the same way.
//
// # Files
//
//   - app.go: Model, key routing, route mounting and Run
//   - commands.go: messages and the commands that perform I/O
//   - list.go: table, page strip and titled box rendering
//   - form.go: the record form, update view and create dialog
//   - header.go: status header and command bar
//   - pageprompt.go: the go-to-page input
//   - keys.go, help.go: key bindings and the help overlay
//   - logs.go: the log overlay
//   - theme.go, style_helpers.go: lipgloss themes and helpers
package ui
