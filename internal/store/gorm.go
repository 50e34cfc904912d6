package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one row of the key/value table.
type Entry struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     []byte `gorm:"type:mediumblob"`
	UpdatedAt time.Time
}

// TableName pins the table name.
func (Entry) TableName() string { return "kv_entries" }

// SQL stores values in a relational table through gorm.
type SQL struct {
	db        *gorm.DB
	keyPrefix string
}

// NewSQL wraps an open gorm connection and migrates the table.
func NewSQL(db *gorm.DB, keyPrefix string) (*SQL, error) {
	if db == nil {
		panic("database connection cannot be nil")
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("gorm: migrate kv_entries: %w", err)
	}
	return &SQL{db: db, keyPrefix: keyPrefix}, nil
}

// OpenMySQL connects to a MySQL server with dsn.
func OpenMySQL(ctx context.Context, dsn, keyPrefix string) (*SQL, error) {
	if dsn == "" {
		return nil, fmt.Errorf("mysql store requires a dsn")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("gorm: open mysql: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm: %w", err)
	}
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("gorm: ping mysql: %w", err)
	}
	logrus.Debug("mysql store connected")
	return NewSQL(db, keyPrefix)
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var e Entry
	err := s.db.WithContext(ctx).Where("`key` = ?", s.keyPrefix+key).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("gorm: get %s: %w", key, err)
	}
	return e.Value, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	e := Entry{Key: s.keyPrefix + key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("gorm: set %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
