package merge

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archimerge/core/internal/models"
	"github.com/archimerge/core/internal/parser"
)

const sourceModel = `<?xml version="1.0" encoding="UTF-8"?>
<archimate:model xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:archimate="http://www.archimatetool.com/archimate" name="Source" id="model-src">
  <folder name="Business" id="folder-business" type="business">
    <element xsi:type="archimate:BusinessActor" id="elem-A" name="Customer"/>
    <element xsi:type="archimate:BusinessActor" id="elem-B" name="Clerk"/>
  </folder>
  <folder name="Relations" id="folder-relations" type="relations">
    <element xsi:type="archimate:AssignmentRelationship" id="rel-1" source="elem-A" target="elem-B"/>
  </folder>
  <folder name="Views" id="folder-views" type="diagrams">
    <element xsi:type="archimate:ArchimateDiagramModel" id="view-1" name="Default View">
      <children xsi:type="archimate:DiagramObject" id="obj-1" archimateElement="elem-A"/>
    </element>
    <element xsi:type="archimate:ArchimateDiagramModel" id="view-2" name="Full View">
      <children xsi:type="archimate:DiagramObject" id="obj-2" archimateElement="elem-A"/>
      <children xsi:type="archimate:DiagramObject" id="obj-3" archimateElement="elem-B"/>
      <sourceConnection xsi:type="archimate:Connection" id="conn-1" archimateRelationship="rel-1"/>
    </element>
  </folder>
</archimate:model>`

const emptyTarget = `<?xml version="1.0" encoding="UTF-8"?>
<archimate:model xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:archimate="http://www.archimatetool.com/archimate" name="Target" id="model-dst">
  <folder name="Views" id="folder-other" type="diagrams"/>
</archimate:model>`

func loadModel(t *testing.T, text string) *models.Model {
	t.Helper()
	model, err := parser.LoadModel(text)
	require.NoError(t, err)
	return model
}

func TestMissingViews(t *testing.T) {
	t.Run("returns views absent from target sorted by id", func(t *testing.T) {
		source := loadModel(t, sourceModel)
		target := loadModel(t, emptyTarget)

		missing := MissingViews(source, target)

		require.Len(t, missing, 2)
		assert.Equal(t, "view-1", missing[0].ID)
		assert.Equal(t, "Default View", missing[0].Name)
		assert.Equal(t, "Views", missing[0].FolderPath.String())
		assert.Equal(t, "view-2", missing[1].ID)
	})

	t.Run("order is stable across repeated calls", func(t *testing.T) {
		source := loadModel(t, sourceModel)
		target := loadModel(t, emptyTarget)

		first := MissingViews(source, target)
		second := MissingViews(source, target)

		assert.Equal(t, first, second)
	})

	t.Run("views already in target are excluded", func(t *testing.T) {
		source := loadModel(t, sourceModel)
		target := loadModel(t, sourceModel)

		assert.Empty(t, MissingViews(source, target))
	})
}

func TestFindOrCreateFolderPath(t *testing.T) {
	path := []models.FolderInfo{
		{ID: "folder-1", Name: "Level 1"},
		{ID: "folder-2", Name: "Level 2"},
	}

	t.Run("creates missing levels reusing source folder ids", func(t *testing.T) {
		target := loadModel(t, emptyTarget)

		folder, err := FindOrCreateFolderPath(target, path, DefaultPolicy())
		require.NoError(t, err)

		assert.Equal(t, "Level 2", folder.SelectAttrValue("name", ""))
		assert.Equal(t, "folder-2", folder.SelectAttrValue("id", ""))
		assert.Equal(t, "Level 1", folder.Parent().SelectAttrValue("name", ""))
	})

	t.Run("repeated resolution returns the identical node", func(t *testing.T) {
		target := loadModel(t, emptyTarget)

		first, err := FindOrCreateFolderPath(target, path, DefaultPolicy())
		require.NoError(t, err)
		second, err := FindOrCreateFolderPath(target, path, DefaultPolicy())
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Len(t, target.Doc.Root().SelectElements("folder"), 2)
	})

	t.Run("descends into existing folders matched by name", func(t *testing.T) {
		target := loadModel(t, emptyTarget)

		folder, err := FindOrCreateFolderPath(target, []models.FolderInfo{
			{ID: "folder-src", Name: "Views"},
		}, DefaultPolicy())
		require.NoError(t, err)

		// The pre-existing Views folder wins even though its id differs.
		assert.Equal(t, "folder-other", folder.SelectAttrValue("id", ""))
	})

	t.Run("id policy matches by folder id instead of name", func(t *testing.T) {
		target := loadModel(t, emptyTarget)
		policy := DefaultPolicy()
		policy.MatchFoldersByID = true

		folder, err := FindOrCreateFolderPath(target, []models.FolderInfo{
			{ID: "folder-src", Name: "Views"},
		}, policy)
		require.NoError(t, err)

		// Name collides but ids differ, so a sibling folder is created.
		assert.Equal(t, "folder-src", folder.SelectAttrValue("id", ""))
	})

	t.Run("empty path falls back to the category folder", func(t *testing.T) {
		target := loadModel(t, emptyTarget)

		folder, err := FindOrCreateFolderPath(target, nil, DefaultPolicy())
		require.NoError(t, err)

		assert.Equal(t, "diagrams", folder.SelectAttrValue("type", ""))
	})
}

func TestCategoryFolder(t *testing.T) {
	t.Run("finds an existing folder by type attribute", func(t *testing.T) {
		target := loadModel(t, emptyTarget)

		folder, err := CategoryFolder(target, "diagrams", DefaultPolicy())
		require.NoError(t, err)

		assert.Equal(t, "folder-other", folder.SelectAttrValue("id", ""))
	})

	t.Run("creates an absent folder with a generated id and label", func(t *testing.T) {
		target := loadModel(t, emptyTarget)

		folder, err := CategoryFolder(target, "business", DefaultPolicy())
		require.NoError(t, err)

		assert.Equal(t, "Business", folder.SelectAttrValue("name", ""))
		assert.Equal(t, "business", folder.SelectAttrValue("type", ""))
		assert.True(t, len(folder.SelectAttrValue("id", "")) > len("id-"))
	})

	t.Run("label table covers the known categories", func(t *testing.T) {
		cases := map[string]string{
			"technology":               "Technology & Physical",
			"implementation_migration": "Implementation & Migration",
			"diagrams":                 "Views",
			"something_else":           "Other",
		}

		for tag, label := range cases {
			target := loadModel(t, `<?xml version="1.0" encoding="UTF-8"?>
<archimate:model xmlns:archimate="http://www.archimatetool.com/archimate" id="model-1"/>`)

			folder, err := CategoryFolder(target, tag, DefaultPolicy())
			require.NoError(t, err)
			assert.Equal(t, label, folder.SelectAttrValue("name", ""), tag)
		}
	})

	t.Run("policy labels override the built-in table", func(t *testing.T) {
		target := loadModel(t, emptyTarget)
		policy := DefaultPolicy()
		policy.Labels = map[string]string{"business": "Geschäft"}

		folder, err := CategoryFolder(target, "business", policy)
		require.NoError(t, err)

		assert.Equal(t, "Geschäft", folder.SelectAttrValue("name", ""))
	})
}

func TestMergeView(t *testing.T) {
	t.Run("copies the view and its referenced element", func(t *testing.T) {
		source := loadModel(t, sourceModel)
		target := loadModel(t, emptyTarget)

		counts, err := MergeView(source, target, "view-1", DefaultPolicy())
		require.NoError(t, err)

		assert.Equal(t, models.MergeCounts{Views: 1, Elements: 1, Relations: 0}, counts)
		assert.Contains(t, target.Elements, "elem-A")
		assert.Contains(t, target.Views, "view-1")
	})

	t.Run("copies relationships referenced by connections", func(t *testing.T) {
		source := loadModel(t, sourceModel)
		target := loadModel(t, emptyTarget)

		counts, err := MergeView(source, target, "view-2", DefaultPolicy())
		require.NoError(t, err)

		assert.Equal(t, models.MergeCounts{Views: 1, Elements: 2, Relations: 1}, counts)
		assert.Contains(t, target.Elements, "rel-1")
	})

	t.Run("transitive completeness: every referenced id ends up present", func(t *testing.T) {
		source := loadModel(t, sourceModel)
		target := loadModel(t, emptyTarget)

		_, err := MergeView(source, target, "view-2", DefaultPolicy())
		require.NoError(t, err)

		view := target.Views["view-2"]
		clone, err := parseClone(view.Serialized)
		require.NoError(t, err)
		elements, relations := parser.ExtractReferences(clone)
		for id := range elements {
			assert.Contains(t, target.Elements, id)
		}
		for id := range relations {
			assert.Contains(t, target.Elements, id)
		}
	})

	t.Run("never re-inserts nodes already present in target", func(t *testing.T) {
		source := loadModel(t, sourceModel)
		target := loadModel(t, emptyTarget)

		first, err := MergeView(source, target, "view-1", DefaultPolicy())
		require.NoError(t, err)
		assert.Equal(t, 1, first.Elements)

		// view-2 shares elem-A with view-1; only elem-B and rel-1 are new.
		second, err := MergeView(source, target, "view-2", DefaultPolicy())
		require.NoError(t, err)
		assert.Equal(t, models.MergeCounts{Views: 1, Elements: 1, Relations: 1}, second)

		business := findTopFolder(t, target, "Business")
		assert.Len(t, business.SelectElements("element"), 2)
	})

	t.Run("preserves the source folder path in the target tree", func(t *testing.T) {
		source := loadModel(t, sourceModel)
		target := loadModel(t, emptyTarget)

		_, err := MergeView(source, target, "view-1", DefaultPolicy())
		require.NoError(t, err)

		business := findTopFolder(t, target, "Business")
		copied := business.SelectElements("element")
		require.Len(t, copied, 1)
		assert.Equal(t, "elem-A", copied[0].SelectAttrValue("id", ""))

		views := findTopFolder(t, target, "Views")
		viewNodes := views.SelectElements("element")
		require.Len(t, viewNodes, 1)
		assert.Equal(t, "view-1", viewNodes[0].SelectAttrValue("id", ""))
	})

	t.Run("re-merging an already merged view is a no-op", func(t *testing.T) {
		source := loadModel(t, sourceModel)
		target := loadModel(t, emptyTarget)

		_, err := MergeView(source, target, "view-1", DefaultPolicy())
		require.NoError(t, err)

		counts, err := MergeView(source, target, "view-1", DefaultPolicy())
		require.NoError(t, err)
		assert.Equal(t, models.MergeCounts{}, counts)

		views := findTopFolder(t, target, "Views")
		assert.Len(t, views.SelectElements("element"), 1)
	})

	t.Run("unknown view id is rejected", func(t *testing.T) {
		source := loadModel(t, sourceModel)
		target := loadModel(t, emptyTarget)

		_, err := MergeView(source, target, "no-such-view", DefaultPolicy())
		assert.ErrorIs(t, err, ErrUnknownView)
	})

	t.Run("references missing from the source index are skipped", func(t *testing.T) {
		source := loadModel(t, `<?xml version="1.0" encoding="UTF-8"?>
<archimate:model xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:archimate="http://www.archimatetool.com/archimate" id="model-src">
  <folder name="Views" id="folder-views" type="diagrams">
    <element xsi:type="archimate:ArchimateDiagramModel" id="view-1" name="Dangling">
      <children xsi:type="archimate:DiagramObject" id="obj-1" archimateElement="elem-gone"/>
    </element>
  </folder>
</archimate:model>`)
		target := loadModel(t, emptyTarget)

		counts, err := MergeView(source, target, "view-1", DefaultPolicy())
		require.NoError(t, err)

		assert.Equal(t, models.MergeCounts{Views: 1, Elements: 0, Relations: 0}, counts)
		assert.NotContains(t, target.Elements, "elem-gone")
	})

	t.Run("merged tree reloads with a consistent index", func(t *testing.T) {
		source := loadModel(t, sourceModel)
		target := loadModel(t, emptyTarget)

		_, err := MergeView(source, target, "view-2", DefaultPolicy())
		require.NoError(t, err)

		serialized, err := Serialize(target.Doc)
		require.NoError(t, err)

		reloaded, err := parser.LoadModel(serialized)
		require.NoError(t, err)
		assert.Contains(t, reloaded.Views, "view-2")
		assert.Contains(t, reloaded.Elements, "elem-A")
		assert.Contains(t, reloaded.Elements, "elem-B")
		assert.Contains(t, reloaded.Elements, "rel-1")
		assert.Equal(t, "Business", reloaded.Elements["elem-A"].FolderPath.String())
	})
}

func TestSerialize(t *testing.T) {
	t.Run("declares UTF-8 encoding", func(t *testing.T) {
		target := loadModel(t, emptyTarget)

		out, err := Serialize(target.Doc)
		require.NoError(t, err)

		assert.Contains(t, out, `encoding="UTF-8"`)
		assert.Contains(t, out, "<archimate:model")
	})

	t.Run("serializing does not mutate the live tree", func(t *testing.T) {
		target := loadModel(t, emptyTarget)
		before := len(target.Doc.Root().ChildElements())

		_, err := Serialize(target.Doc)
		require.NoError(t, err)

		assert.Len(t, target.Doc.Root().ChildElements(), before)
	})
}

func findTopFolder(t *testing.T, model *models.Model, name string) *etree.Element {
	t.Helper()
	for _, folder := range model.Doc.Root().SelectElements("folder") {
		if folder.SelectAttrValue("name", "") == name {
			return folder
		}
	}
	t.Fatalf("top-level folder %q not found", name)
	return nil
}
