package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"relief-portal-go/pkg/logger"

	"gorm.io/gorm"
)

const migrationsDirName = "migrations"

// schemaMigration records one applied migration file.
type schemaMigration struct {
	Filename  string    `gorm:"column:filename;primaryKey"`
	AppliedAt time.Time `gorm:"column:applied_at;not null"`
}

func (schemaMigration) TableName() string {
	return "schema_migrations"
}

// Migrate applies the relief schema from the nearest migrations directory.
func Migrate(db *gorm.DB, log logger.Logger) error {
	path, err := findMigrationsDir(migrationsDirName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("db: migrations directory not found")
			return nil
		}
		return err
	}
	return MigrateDir(db, path, log)
}

// MigrateDir applies every .sql file in path not yet recorded, in file name
// order. Each file and its record commit together, so a failed file leaves
// no trace and is retried on the next run.
func MigrateDir(db *gorm.DB, path string, log logger.Logger) error {
	if err := db.AutoMigrate(&schemaMigration{}); err != nil {
		return fmt.Errorf("schema_migrations: %w", err)
	}

	files, err := migrationFiles(path)
	if err != nil {
		return err
	}

	var applied []schemaMigration
	if err := db.Find(&applied).Error; err != nil {
		return fmt.Errorf("list applied migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, m := range applied {
		done[m.Filename] = true
	}

	pending := 0
	for _, name := range files {
		if done[name] {
			continue
		}
		if err := applyMigration(db, path, name); err != nil {
			return err
		}
		pending++
		log.Info("db: applied migration", "file", name)
	}
	log.Debug("db: migrations up to date", "applied", pending, "total", len(files))
	return nil
}

func applyMigration(db *gorm.DB, dir, name string) error {
	contents, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	sql := strings.TrimSpace(string(contents))

	return db.Transaction(func(tx *gorm.DB) error {
		if sql != "" {
			if err := tx.Exec(sql).Error; err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
		}
		record := schemaMigration{Filename: name, AppliedAt: time.Now().UTC()}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		return nil
	})
}

// migrationFiles lists the .sql files directly under dir, sorted.
func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func findMigrationsDir(dirName string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, dirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
