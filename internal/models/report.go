// Package models defines the core data structures for indexed ArchiMate
// model documents. It includes the per-document element/view index and the
// records describing where each node lives in the folder hierarchy.
package models

import "fmt"

// MergeCounts accumulates how many nodes a merge run copied into the target.
type MergeCounts struct {
	Views     int
	Elements  int
	Relations int
}

// Add folds the counts of a single view merge into a running total.
func (c *MergeCounts) Add(other MergeCounts) {
	c.Views += other.Views
	c.Elements += other.Elements
	c.Relations += other.Relations
}

// Summary renders the counts for the end-of-run report.
func (c MergeCounts) Summary() string {
	return fmt.Sprintf("- %d view%s\n- %d element%s\n- %d relation%s",
		c.Views, plural(c.Views),
		c.Elements, plural(c.Elements),
		c.Relations, plural(c.Relations))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
