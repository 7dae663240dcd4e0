// Package parser loads ArchiMate model documents and builds the queryable
// element/view index used by the diff and merge engines. It handles document
// parsing, folder-tree traversal, and node classification.
package parser

import "github.com/beevik/etree"

// ExtractReferences walks a view's subtree and collects the ids of every
// element and relationship the view depicts. A node may carry an
// archimateElement reference, an archimateRelationship reference, both, or
// neither.
func ExtractReferences(el *etree.Element) (elements, relations map[string]struct{}) {
	elements = make(map[string]struct{})
	relations = make(map[string]struct{})
	collectReferences(el, elements, relations)
	return elements, relations
}

func collectReferences(el *etree.Element, elements, relations map[string]struct{}) {
	if ref := el.SelectAttrValue("archimateElement", ""); ref != "" {
		elements[ref] = struct{}{}
	}
	if ref := el.SelectAttrValue("archimateRelationship", ""); ref != "" {
		relations[ref] = struct{}{}
	}
	for _, child := range el.ChildElements() {
		collectReferences(child, elements, relations)
	}
}
