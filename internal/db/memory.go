package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"karaoke/internal/config"
)

// OpenMemory opens a migrated in-memory SQLite database. Each name gets its
// own database; the pool is pinned to one connection so the schema survives
// for the lifetime of the handle.
func OpenMemory(name string) (*gorm.DB, error) {
	name = strings.NewReplacer("/", "_", " ", "_").Replace(name)
	db, err := Open(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, false); err != nil {
		return nil, err
	}
	return db, nil
}
