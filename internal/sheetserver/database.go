package sheetserver

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tflegends/legends/internal/game"
	"github.com/tflegends/legends/internal/logging"
)

// OpenAndMigrate opens the sqlite database backing the record store and
// keeps its schema current. The cards table is seeded from the config
// catalog on first run only; afterwards the database is authoritative.
func OpenAndMigrate(dataSourceName string, seedCards []game.Card) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&game.User{}, &game.Card{}, &game.Battle{}); err != nil {
		return nil, err
	}
	seedCardTable(db, seedCards)
	return db, nil
}

func seedCardTable(db *gorm.DB, seedCards []game.Card) {
	if len(seedCards) == 0 {
		return
	}
	var count int64
	db.Model(&game.Card{}).Count(&count)
	if count > 0 {
		return
	}
	if err := db.Create(&seedCards).Error; err != nil {
		logging.Error("failed to seed card table", err, nil)
		return
	}
	logging.Info("card table seeded", logging.Fields{"cards": len(seedCards)})
}
