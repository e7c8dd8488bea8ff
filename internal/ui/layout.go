package ui

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutBodyWidth is the minimum width to show the body column.
	LayoutBodyWidth = 90
)

// Table sizing.
const (
	// IDColumnWidth fits ids up to seven digits plus padding.
	IDColumnWidth = 8

	// PageStripWidth is the number of page buttons shown at once.
	PageStripWidth = 9
)
