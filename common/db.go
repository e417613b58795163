package common

import (
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ConnectAnalyticsDb opens the optional click analytics database.
// An empty path disables analytics and returns nil.
func ConnectAnalyticsDb(path string) *gorm.DB {
	if path == "" {
		logrus.Info("ANALYTICS_DB not set - click analytics disabled")
		return nil
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		logrus.Errorf("error opening analytics sqlite db: %v", err)
		return nil
	}

	logrus.Infof("opened analytics sqlite db at: %s", path)
	return db
}
