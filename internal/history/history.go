// Package history records executed commands in a SQLite database and answers
// the prefix queries used for inline suggestions.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrEmptyCommand is returned when adding a blank command.
var ErrEmptyCommand = errors.New("history: empty command")

type Entry struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"index"`

	Command   string
	Directory string
	ExitCode  sql.NullInt32
}

// TableName keeps the table name stable across renames of Entry.
func (Entry) TableName() string {
	return "history_entries"
}

const (
	historySchemaVersion = 1
)

// StoreConfig holds the settings of a Store.
type StoreConfig struct {
	// Path is the database file. Its directory also holds the schema
	// version marker.
	Path string

	Logger *zap.Logger
}

// Store is the command history.
type Store struct {
	db     *gorm.DB
	path   string
	logger *zap.Logger
}

// Open opens or creates the history database at cfg.Path.
func Open(cfg StoreConfig) (*Store, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	dbFileExists := true
	if _, err := os.Stat(cfg.Path); errors.Is(err, os.ErrNotExist) {
		dbFileExists = false
	} else if err != nil {
		return nil, fmt.Errorf("error checking history db: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("error creating history directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening history db: %w", err)
	}

	s := &Store{db: db, path: cfg.Path, logger: log}
	if s.needsMigration(dbFileExists) {
		log.Debug("migrating history schema", zap.String("path", cfg.Path))
		if err := db.AutoMigrate(&Entry{}); err != nil {
			return nil, fmt.Errorf("error auto-migrating history schema: %w", err)
		}
		if err := s.writeSchemaVersion(historySchemaVersion); err != nil {
			return nil, fmt.Errorf("error writing history schema version: %w", err)
		}
	}

	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) needsMigration(dbFileExists bool) bool {
	if !dbFileExists {
		return true
	}

	versionMatches, err := s.schemaVersionMatches()
	if err != nil || !versionMatches {
		return true
	}

	// A version marker without the table means the table was dropped.
	return !s.db.Migrator().HasTable(&Entry{})
}

func (s *Store) writeSchemaVersion(version int) error {
	return os.WriteFile(s.schemaVersionPath(), []byte(strconv.Itoa(version)), 0644)
}

func (s *Store) schemaVersionMatches() (bool, error) {
	data, err := os.ReadFile(s.schemaVersionPath())
	if err != nil {
		return false, err
	}
	version, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false, err
	}
	if version != historySchemaVersion {
		return false, fmt.Errorf("history schema version mismatch: got %d, want %d", version, historySchemaVersion)
	}
	return true, nil
}

func (s *Store) schemaVersionPath() string {
	return filepath.Join(filepath.Dir(s.path), "history_schema_version")
}

// Add records a command run in directory. A nil exitCode leaves it unknown.
func (s *Store) Add(ctx context.Context, command, directory string, exitCode *int) (*Entry, error) {
	if strings.TrimSpace(command) == "" {
		return nil, ErrEmptyCommand
	}
	entry := Entry{
		Command:   command,
		Directory: directory,
	}
	if exitCode != nil {
		entry.ExitCode = sql.NullInt32{Int32: int32(*exitCode), Valid: true}
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to add history entry: %w", err)
	}
	return &entry, nil
}

// Recent returns up to limit entries, oldest first. An empty directory
// matches every directory.
func (s *Store) Recent(ctx context.Context, directory string, limit int) ([]Entry, error) {
	var entries []Entry
	db := s.db.WithContext(ctx)
	if directory != "" {
		db = db.Where("directory = ?", directory)
	}
	if err := db.Order("created_at desc").Order("id desc").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}

	slices.Reverse(entries)
	return entries, nil
}

// LatestWithPrefix returns the most recent command that starts with prefix
// and is longer than it. The comparison is case-sensitive.
func (s *Store) LatestWithPrefix(ctx context.Context, prefix string) (string, bool, error) {
	var entries []Entry
	err := s.db.WithContext(ctx).
		Where("substr(command, 1, ?) = ? AND command <> ?", utf8.RuneCountInString(prefix), prefix, prefix).
		Order("created_at desc").
		Order("id desc").
		Limit(1).
		Find(&entries).Error
	if err != nil {
		return "", false, err
	}
	if len(entries) == 0 {
		return "", false, nil
	}
	return entries[0].Command, true, nil
}

// Delete removes one entry.
func (s *Store) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&Entry{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no history entry found with id %d", id)
	}
	return nil
}

// Reset deletes every entry.
func (s *Store) Reset(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec("DELETE FROM history_entries").Error
}
