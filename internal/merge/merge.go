package merge

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/beevik/etree"

	"github.com/archimerge/core/internal/models"
	"github.com/archimerge/core/internal/parser"
)

// MergeView copies one view and everything it references from the source
// model into the target. Referenced elements and relationships already
// present in the target are never re-inserted; freshly copied nodes land
// under their original folder path and the target index is updated as each
// node goes in, so later lookups in the same run see them. A view already
// present in the target is a no-op.
//
// The target tree is mutated by insertion only; pre-existing nodes are never
// touched.
func MergeView(source, target *models.Model, viewID string, policy Policy) (models.MergeCounts, error) {
	info, ok := source.Views[viewID]
	if !ok {
		return models.MergeCounts{}, fmt.Errorf("%w: %s", ErrUnknownView, viewID)
	}
	if _, exists := target.Views[viewID]; exists {
		slog.Debug("view already present in target, skipping", "id", viewID, "name", info.Name)
		return models.MergeCounts{}, nil
	}

	// Re-parse the stored form so the cloned nodes belong to the target
	// document rather than the source tree.
	viewNode, err := parseClone(info.Serialized)
	if err != nil {
		return models.MergeCounts{}, fmt.Errorf("re-parse view %s: %w", viewID, err)
	}

	referencedElements, referencedRelations := parser.ExtractReferences(viewNode)
	newElements := missingFrom(referencedElements, target.Elements)
	newRelations := missingFrom(referencedRelations, target.Elements)

	var counts models.MergeCounts
	for _, id := range newElements {
		slog.Debug("copying element", "id", id)
		inserted, err := insertElement(source, target, id, policy)
		if err != nil {
			return counts, err
		}
		if inserted {
			counts.Elements++
		}
	}
	for _, id := range newRelations {
		slog.Debug("copying relation", "id", id)
		inserted, err := insertElement(source, target, id, policy)
		if err != nil {
			return counts, err
		}
		if inserted {
			counts.Relations++
		}
	}

	folder, err := FindOrCreateFolderPath(target, info.FolderPath, policy)
	if err != nil {
		return counts, err
	}
	folder.AddChild(viewNode)
	target.Views[viewID] = info
	counts.Views = 1

	return counts, nil
}

// insertElement clones one indexed source node into the target under its
// recorded folder path. Ids referenced by a view but absent from the source
// index are skipped; the reference is kept as-is in the copied view.
func insertElement(source, target *models.Model, id string, policy Policy) (bool, error) {
	info, ok := source.Elements[id]
	if !ok {
		slog.Debug("referenced id not found in source, skipping", "id", id)
		return false, nil
	}

	folder, err := FindOrCreateFolderPath(target, info.FolderPath, policy)
	if err != nil {
		return false, err
	}

	node, err := parseClone(info.Serialized)
	if err != nil {
		return false, fmt.Errorf("re-parse node %s: %w", id, err)
	}

	folder.AddChild(node)
	target.Elements[id] = info
	return true, nil
}

// parseClone rebuilds a node from its serialized form as a detached element.
func parseClone(serialized string) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(serialized); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, parser.ErrMalformedDocument
	}
	return root, nil
}

// missingFrom returns the ids of the set absent from the presence index,
// sorted for deterministic insertion and logging order.
func missingFrom(refs map[string]struct{}, present map[string]models.ElementInfo) []string {
	var missing []string
	for id := range refs {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	return missing
}

// Serialize renders the whole document with a UTF-8 XML declaration. The
// live tree is copied, not modified.
func Serialize(doc *etree.Document) (string, error) {
	root := doc.Root()
	if root == nil {
		return "", parser.ErrMalformedDocument
	}

	out := etree.NewDocument()
	out.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	out.SetRoot(root.Copy())
	return out.WriteToString()
}
