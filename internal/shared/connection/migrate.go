package connection

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies the embedded SQL files in name order. Every statement is
// written to be idempotent, so running it on each start is safe.
func Migrate(db *gorm.DB) error {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := migrationFiles.ReadFile(name)
		if err != nil {
			return err
		}
		if err := db.Exec(string(body)).Error; err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		zap.L().Info("migration applied", zap.String("file", name))
	}
	return nil
}
