// Package models defines the core data structures for indexed ArchiMate
// model documents. It includes the per-document element/view index and the
// records describing where each node lives in the folder hierarchy.
package models

import (
	"strings"

	"github.com/beevik/etree"
)

// FolderInfo is one level of a node's containing folder chain. Folder ids
// are not guaranteed stable across model copies, so path matching is done
// by name unless configured otherwise.
type FolderInfo struct {
	ID   string
	Name string
}

// FolderPath is the ordered chain of folders from the document root down to
// a node's immediate parent.
type FolderPath []FolderInfo

// String renders the chain for display, e.g. "Views > Application".
func (p FolderPath) String() string {
	names := make([]string, len(p))
	for i, f := range p {
		names[i] = f.Name
	}
	return strings.Join(names, " > ")
}

// ElementInfo is an indexed snapshot of a single typed node. Serialized
// holds the exact XML rendering of the node's subtree at index time and is
// used as the clone template when the node is copied into another model.
type ElementInfo struct {
	ID         string
	Name       string
	Serialized string
	FolderPath FolderPath
}

// Model couples a parsed document with its element and view indexes. Each
// model owns its tree; nodes are never shared between two Model instances,
// only their serialized forms are copied across.
type Model struct {
	Doc      *etree.Document
	Elements map[string]ElementInfo
	Views    map[string]ElementInfo
}

// MissingView describes a view present in the source model but absent from
// the target, as presented to the selection UI.
type MissingView struct {
	ID         string
	Name       string
	FolderPath FolderPath
}
