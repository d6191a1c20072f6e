package database

import "drawerbox/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Drawer{},
		&models.DrawerMembership{},
		&models.Post{},
		&models.PostSlug{},
		&models.PostImage{},
		&models.Comment{},
		&models.Reaction{},
	}
}
