// Package parser loads ArchiMate model documents and builds the queryable
// element/view index used by the diff and merge engines. It handles document
// parsing, folder-tree traversal, and node classification.
package parser

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/beevik/etree"

	"github.com/archimerge/core/internal/models"
)

// ErrMalformedDocument is returned when a document has no root container.
var ErrMalformedDocument = errors.New("malformed model document: missing root container")

// diagramTypeSuffix marks the xsi:type discriminator of diagram nodes.
// Every other typed node is indexed as an ordinary element.
const diagramTypeSuffix = "ArchimateDiagramModel"

// LoadModel parses a model document and indexes every typed node it
// contains. The returned Model owns its tree; the index maps node ids to
// snapshots taken at load time.
func LoadModel(text string) (*models.Model, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(text); err != nil {
		return nil, fmt.Errorf("parse model document: %w", err)
	}

	model := &models.Model{
		Doc:      doc,
		Elements: make(map[string]models.ElementInfo),
		Views:    make(map[string]models.ElementInfo),
	}

	if err := indexDocument(model); err != nil {
		return nil, err
	}

	return model, nil
}

func indexDocument(model *models.Model) error {
	root := model.Doc.Root()
	if root == nil {
		return ErrMalformedDocument
	}

	for _, folder := range root.SelectElements("folder") {
		path := models.FolderPath{folderInfo(folder)}
		if err := walkFolder(folder, path, model); err != nil {
			return err
		}
	}

	return nil
}

// walkFolder indexes one folder depth-first. The path slice is cloned at
// every descent and for every recorded entry, so sibling branches never
// observe each other's segments.
func walkFolder(folder *etree.Element, path models.FolderPath, model *models.Model) error {
	for _, child := range folder.ChildElements() {
		switch child.Tag {
		case "element":
			xsiType := child.SelectAttrValue("xsi:type", "")
			if xsiType == "" {
				continue
			}
			id := child.SelectAttrValue("id", "")
			if id == "" {
				continue
			}

			serialized, err := serializeElement(child)
			if err != nil {
				return fmt.Errorf("serialize node %s: %w", id, err)
			}

			info := models.ElementInfo{
				ID:         id,
				Name:       child.SelectAttrValue("name", ""),
				Serialized: serialized,
				FolderPath: slices.Clone(path),
			}

			if strings.HasSuffix(xsiType, diagramTypeSuffix) {
				model.Views[id] = info
			} else {
				model.Elements[id] = info
			}
		case "folder":
			sub := append(slices.Clone(path), folderInfo(child))
			if err := walkFolder(child, sub, model); err != nil {
				return err
			}
		}
	}

	return nil
}

func folderInfo(folder *etree.Element) models.FolderInfo {
	return models.FolderInfo{
		ID:   folder.SelectAttrValue("id", ""),
		Name: folder.SelectAttrValue("name", ""),
	}
}

// serializeElement renders a node's subtree with default formatting. The
// result is the clone template used when the node is copied into another
// document.
func serializeElement(el *etree.Element) (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	return doc.WriteToString()
}
