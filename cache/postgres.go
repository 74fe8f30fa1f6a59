package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const entryTable = "phylab_cache_entries"

// Entry 单表键值：已有 postgres 的部署用它代替 badger。
type Entry struct {
	Key       string `gorm:"primaryKey;size:200"`
	Value     []byte
	UpdatedAt time.Time
}

func (Entry) TableName() string { return entryTable }

type PostgresStore struct {
	db *gorm.DB
}

// ConnectPostgres 连接参数沿用 DB_HOST/DB_USER/... 环境变量
func ConnectPostgres() (*PostgresStore, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	log.Println("cache: postgres connected")
	return &PostgresStore{db: db}, nil
}

func NewPostgresStore(db *gorm.DB) *PostgresStore { return &PostgresStore{db: db} }

func (s *PostgresStore) Get(ctx context.Context, key string, out any) bool {
	var e Entry
	err := s.db.WithContext(ctx).First(&e, "key = ?", key).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("cache get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(e.Value, out); err != nil {
		log.Printf("cache get %s: corrupt value: %v", key, err)
		return false
	}
	return true
}

func (s *PostgresStore) Put(ctx context.Context, key string, val any) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	e := Entry{Key: key, Value: raw, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Save(&e).Error
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&Entry{Key: key}).Error
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
