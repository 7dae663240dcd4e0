package merge

import (
	"sort"

	"github.com/archimerge/core/internal/models"
)

// MissingViews returns the views present in the source model but absent from
// the target, sorted by id. The sort keeps the numbered selection stable
// across repeated runs on unchanged inputs.
func MissingViews(source, target *models.Model) []models.MissingView {
	var missing []models.MissingView
	for id, info := range source.Views {
		if _, ok := target.Views[id]; ok {
			continue
		}
		missing = append(missing, models.MissingView{
			ID:         info.ID,
			Name:       info.Name,
			FolderPath: info.FolderPath,
		})
	}

	sort.Slice(missing, func(i, j int) bool { return missing[i].ID < missing[j].ID })
	return missing
}
