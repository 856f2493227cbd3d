package sheetserver

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tflegends/legends/internal/game"
)

// errStale is mapped to 409 by the handler.
var errStale = errors.New("battle revision is stale")

// patchBattle merges a partial battle row under the optimistic revision
// check. The raw row carries the revision the client computed against;
// the stored row must still be at that revision, and the merge advances
// it by one. Read, check and write run in one transaction so two
// concurrent patches with the same revision cannot both win.
func (s *Server) patchBattle(id string, row, updates map[string]interface{}) error {
	expected, hasRevision := revisionOf(row)
	return s.db.Transaction(func(tx *gorm.DB) error {
		var stored game.Battle
		if err := tx.First(&stored, "id = ?", id).Error; err != nil {
			return err
		}
		if hasRevision && stored.Revision != expected {
			return errStale
		}
		updates["revision"] = stored.Revision + 1
		return tx.Model(&game.Battle{}).Where("id = ?", id).Updates(updates).Error
	})
}

// revisionOf extracts the client-submitted revision. JSON numbers
// decode as float64.
func revisionOf(row map[string]interface{}) (int, bool) {
	switch v := row["revision"].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}
