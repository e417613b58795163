package database

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"linkvault/models"
)

// RunMigrations prepares the analytics database.
func RunMigrations(db *gorm.DB) error {
	logrus.Info("running analytics migrations...")

	if err := db.AutoMigrate(&models.ClickEvent{}); err != nil {
		logrus.Errorf("error running migrations: %v", err)
		return err
	}

	logrus.Info("migrations completed successfully")
	return nil
}
