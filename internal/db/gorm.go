package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/habiliai/agenteat/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const MemoryPath = ":memory:"

// OpenSqlite opens a sqlite database in WAL mode, creating its directory.
// MemoryPath opens a private in-memory database.
func OpenSqlite(path string) (*gorm.DB, error) {
	dsn := "file::memory:?cache=private&_foreign_keys=on"
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.Wrapf(err, "failed to create sqlite directory for %s", path)
		}
		dsn = fmt.Sprintf("file:%s?cache=shared&mode=rwc&_journal_mode=WAL&_foreign_keys=on", path)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite database at %s", path)
	}
	if path == MemoryPath {
		// each pooled connection would otherwise see its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get db")
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrapf(err, "failed to get db")
	}
	if err := sqlDB.Close(); err != nil {
		return errors.Wrapf(err, "failed to close db")
	}

	return nil
}
