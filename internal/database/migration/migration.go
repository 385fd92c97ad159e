package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_books",
		SQL: `CREATE TABLE IF NOT EXISTS books (
  book_id              BIGSERIAL        PRIMARY KEY,
  title                TEXT             NOT NULL,
  author               TEXT,
  description          TEXT             NOT NULL,
  subject              TEXT             NOT NULL,
  category             TEXT,
  level                TEXT             NOT NULL,
  format               TEXT             NOT NULL,
  cloudinary_public_id TEXT,
  language             TEXT,
  filename             TEXT             NOT NULL,
  file_path            TEXT             NOT NULL,
  file_size            DOUBLE PRECISION NOT NULL CHECK (file_size >= 0),
  book_year            TEXT,
  upload_date          TIMESTAMPTZ      NOT NULL DEFAULT now(),
  is_paper             BOOLEAN          NOT NULL DEFAULT false,
  examination_season   TEXT,
  view_count           BIGINT           CHECK (view_count >= 0),
  download_count       BIGINT           CHECK (download_count >= 0)
);`,
	},
	{
		Name: "create_index_books_level_subject",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_books_level_subject ON books (level, subject, is_paper);`,
	},
	{
		Name: "create_index_books_upload_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_books_upload_date ON books (upload_date);`,
	},
}

// EnsureMigrated checks if the 'books' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.books') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
