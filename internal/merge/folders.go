package merge

import (
	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/archimerge/core/internal/models"
	"github.com/archimerge/core/internal/parser"
)

// FindOrCreateFolderPath walks the target tree along the given folder chain,
// creating missing levels as it goes, and returns the final folder node.
// Created folders reuse the source's folder id verbatim so the two models
// stay correlatable. Resolution is idempotent: the same path against the
// same tree state always yields the same node.
func FindOrCreateFolderPath(target *models.Model, path models.FolderPath, policy Policy) (*etree.Element, error) {
	if len(path) == 0 {
		return CategoryFolder(target, policy.FallbackFolder, policy)
	}

	root := target.Doc.Root()
	if root == nil {
		return nil, parser.ErrMalformedDocument
	}

	current := root
	for _, segment := range path {
		next := findFolder(current, segment, policy)
		if next == nil {
			next = current.CreateElement("folder")
			next.CreateAttr("name", segment.Name)
			next.CreateAttr("id", segment.ID)
		}
		current = next
	}

	return current, nil
}

func findFolder(parent *etree.Element, segment models.FolderInfo, policy Policy) *etree.Element {
	for _, child := range parent.SelectElements("folder") {
		if policy.MatchFoldersByID {
			if child.SelectAttrValue("id", "") == segment.ID {
				return child
			}
			continue
		}
		if child.SelectAttrValue("name", "") == segment.Name {
			return child
		}
	}
	return nil
}

// CategoryFolder returns the top-level folder whose type attribute equals
// the given category tag, creating it with a fresh id when absent. No source
// folder correlates with a created category folder, so its id is generated
// rather than copied.
func CategoryFolder(target *models.Model, tag string, policy Policy) (*etree.Element, error) {
	root := target.Doc.Root()
	if root == nil {
		return nil, parser.ErrMalformedDocument
	}

	for _, child := range root.SelectElements("folder") {
		if child.SelectAttrValue("type", "") == tag {
			return child, nil
		}
	}

	folder := root.CreateElement("folder")
	folder.CreateAttr("name", policy.label(tag))
	folder.CreateAttr("id", "id-"+uuid.NewString())
	folder.CreateAttr("type", tag)
	return folder, nil
}
