package database

import (
	"errors"
	"time"

	"github.com/visionmakers/backend/internal/consultation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationNormalizeLegacyStatuses = "2026-07-14_normalize_legacy_consultation_statuses"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationNormalizeLegacyStatuses, apply: normalizeLegacyStatuses},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// Early intake rows used the statuses "new" and "contacted" before the
// review workflow settled on its current vocabulary.
func normalizeLegacyStatuses(db *gorm.DB) error {
	if err := db.Model(&consultation.Consultation{}).
		Where("status = ?", "new").
		Update("status", consultation.StatusPending).Error; err != nil {
		return err
	}
	return db.Model(&consultation.Consultation{}).
		Where("status = ?", "contacted").
		Update("status", consultation.StatusReviewing).Error
}
