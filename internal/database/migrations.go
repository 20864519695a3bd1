package database

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/yukikurage/splitmate-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the lookup indexes AutoMigrate does not derive from tags
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Membership lookups by user (quota counts, current events)
		{"event_members", "idx_event_members_user_id", "user_id"},

		// Email invitations listed for the invited category
		{"user_invites", "idx_user_invites_event_id", "event_id"},

		// Category listings are ordered by creation time
		{"events", "idx_events_created_at", "created_at"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			slog.Debug("Index already exists, skipping", "index", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("Created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}

// SeedPlans creates the default MEMBER and FOUNDER plans when missing
func SeedPlans(db *gorm.DB) error {
	for _, plan := range []models.Plan{models.DefaultMemberPlan(), models.DefaultFounderPlan()} {
		var existing models.Plan
		err := db.Where("name = ?", plan.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up plan %s: %w", plan.Name, err)
		}

		if err := db.Create(&plan).Error; err != nil {
			return fmt.Errorf("failed to seed plan %s: %w", plan.Name, err)
		}
		slog.Info("Seeded plan", "plan", plan.Name)
	}
	return nil
}
