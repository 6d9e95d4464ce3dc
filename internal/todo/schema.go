package todo

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/CocaColaCat/to-with-auth/pkg/migration"
)

// migrationsFS は埋め込まれたマイグレーションファイル群。
//
//go:embed migrations/*.up.sql
var migrationsFS embed.FS

// initSchema はSQLiteデータベースにマイグレーションを適用する。
func initSchema(db *sql.DB) error {
	if err := migration.Run(db, migrationsFS, "migrations"); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}
