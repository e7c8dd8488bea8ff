// Package state holds the view state of the list and update views.
//
// # Overview
//
// Two stores exist, one per view:
//
//   - CollectionStore: the current page of records, the page index, the
//     server-derived page count and the load status.
//   - DetailStore: the record being edited as a local draft, plus load and
//     submit status.
//
// Both are created when their view mounts and dropped when it unmounts.
// Loaders and the mutation façade write to them; views only read.
//
// # Snapshots
//
// Snapshot returns a copy. Item slices are cloned so a view can hold on to a
// snapshot while the store moves on; errors are shared as is:
//
//	snap := store.Snapshot()
//	snap.Items[0].Title = "x" // does not touch the store
//
// # Subscriptions
//
// Subscribe registers a callback that receives a snapshot after every
// change. Callbacks run on the writer's goroutine after the store lock is
// released, one at a time and in change order; a snapshot older than one
// already delivered is dropped. Loaders Hold the store while they settle a
// response, so callbacks never run under a fetch controller's lock and may
// start the next load themselves:
//
//	unsubscribe := list.Store().Subscribe(func(c state.Collection) {
//		if c.Status == fetch.StatusLoaded && c.Page.Index == 1 {
//			pending = list.Next()
//		}
//	})
//	defer unsubscribe()
//
// The Bubble Tea UI does not subscribe. It re-reads both snapshots after
// every message it handles.
//
// # Invariants
//
// Collection.Items always belongs to Collection.Page. A page that fails to
// load leaves both untouched and only sets Status and Err, so the page index
// stays inside [1, TotalPages] in the Loaded and Error states. A failed
// mutation likewise keeps the items and only records the error.
package state
