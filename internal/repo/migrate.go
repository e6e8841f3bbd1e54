package repo

import (
	"gorm.io/gorm"

	"go-gin-blog/internal/feature/post"
	"go-gin-blog/internal/feature/user"
)

// Migrate creates or updates the tables backing the gorm repositories.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&user.UserModel{}, &post.PostModel{})
}
