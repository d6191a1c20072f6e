package seed

import (
	_ "embed"
	"fmt"

	"drawerbox/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed fixtures/builtin_drawers.yml
var builtinDrawersYAML []byte

// BuiltInDrawer is a permanent system drawer.
type BuiltInDrawer struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// BuiltInDrawers returns the permanent system drawers from the embedded
// fixture.
func BuiltInDrawers() ([]BuiltInDrawer, error) {
	var fixture struct {
		Drawers []BuiltInDrawer `yaml:"drawers"`
	}
	if err := yaml.Unmarshal(builtinDrawersYAML, &fixture); err != nil {
		return nil, fmt.Errorf("parse builtin drawers fixture: %w", err)
	}
	return fixture.Drawers, nil
}

// Drawers seeds the permanent built-in drawers. Existing drawers are updated
// in place, so the call is idempotent.
func Drawers(db *gorm.DB) error {
	builtin, err := BuiltInDrawers()
	if err != nil {
		return err
	}

	for _, item := range builtin {
		drawer := models.Drawer{
			Name:        item.Name,
			Description: item.Description,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "updated_at"}),
		}).Create(&drawer).Error; err != nil {
			return fmt.Errorf("seed built-in drawer %s: %w", item.Name, err)
		}
	}

	return nil
}
