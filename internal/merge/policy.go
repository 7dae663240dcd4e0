// Package merge computes which views exist only in the source model and
// splices selected views, together with every element and relationship they
// reference, into the target model tree and index.
package merge

// categoryLabels maps a folder's type attribute to the human-readable name
// given to a category folder created from scratch.
var categoryLabels = map[string]string{
	"business":                 "Business",
	"application":              "Application",
	"technology":               "Technology & Physical",
	"strategy":                 "Strategy",
	"motivation":               "Motivation",
	"implementation_migration": "Implementation & Migration",
	"relations":                "Relations",
	"diagrams":                 "Views",
}

// Policy controls how folder paths are matched and where nodes without a
// recorded folder path land.
type Policy struct {
	// MatchFoldersByID keys path segments by folder id instead of name.
	// Only safe when both models are known to share folder ids.
	MatchFoldersByID bool
	// FallbackFolder is the category tag used when a node's folder path
	// is empty.
	FallbackFolder string
	// Labels overrides entries of the category label table.
	Labels map[string]string
}

// DefaultPolicy matches folders by name and files path-less nodes under the
// diagrams category.
func DefaultPolicy() Policy {
	return Policy{FallbackFolder: "diagrams"}
}

func (p Policy) label(tag string) string {
	if name, ok := p.Labels[tag]; ok {
		return name
	}
	if name, ok := categoryLabels[tag]; ok {
		return name
	}
	return "Other"
}
