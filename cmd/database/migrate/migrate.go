package migration

import (
	"mein-essen/entities"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// uuid_generate_v4() backs the primary key defaults
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";").Error; err != nil {
		log.Warnf("could not create uuid-ossp extension: %v", err)
	}

	if err := db.AutoMigrate(&entities.Receipt{}); err != nil {
		log.Errorf("Error migrating receipt database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.ReceiptItem{}); err != nil {
		log.Errorf("Error migrating receipt item database: %v", err)
		return err
	}

	log.Info("Database migration complete")
	return nil
}
