package database

import "bitacora/internal/models"

// PersistentModels returns the schema-managed GORM models in dependency
// order: referenced tables first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.PostAuthor{},
		&models.Reaction{},
		&models.Comment{},
	}
}
