// Package loader binds the fetch controller to the two views.
//
// ListLoader loads pages of the collection into a state.CollectionStore and
// drives page transitions through the paging engine. RecordLoader loads one
// record by id into a state.DetailStore and applies field edits to it.
//
// Every operation that starts a request returns a Pending. Starting is done
// by the caller's event loop (Begin and the Loading transition happen before
// the method returns); running the Pending performs the request and settles
// it, and belongs on an I/O goroutine. A nil Pending means nothing was
// started, for example Next on the last page.
//
//	p := lists.Next()
//	if p != nil {
//		go p() // or return it from a tea.Cmd
//	}
package loader

import "github.com/five82/tabula/internal/fetch"

// Pending performs a started load and reports how it settled.
type Pending func() fetch.Outcome
