package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seu-repo/imob-crm/internal/observability/telemetry"
	"github.com/seu-repo/imob-crm/internal/ports"
)

// SnapshotRecord is one row per storage key.
type SnapshotRecord struct {
	Key       string `gorm:"primaryKey;size:64"`
	Data      []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (SnapshotRecord) TableName() string {
	return "crm_snapshots"
}

type SnapshotStore struct {
	db     *gorm.DB
	driver string
	log    *zap.Logger
}

func NewSnapshotStore(db *gorm.DB, log *zap.Logger) *SnapshotStore {
	return &SnapshotStore{db: db, driver: db.Dialector.Name(), log: log}
}

func (s *SnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	defer s.observe("load", time.Now())

	var rec SnapshotRecord
	err := s.db.WithContext(ctx).First(&rec, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot %s: %w", key, err)
	}
	return rec.Data, nil
}

// Save upserts every snapshot inside one transaction.
func (s *SnapshotStore) Save(ctx context.Context, snapshots ...ports.Snapshot) error {
	defer s.observe("save", time.Now())

	now := time.Now().UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, snap := range snapshots {
			rec := SnapshotRecord{Key: snap.Key, Data: snap.Data, UpdatedAt: now}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
			}).Create(&rec).Error
			if err != nil {
				return fmt.Errorf("failed to save snapshot %s: %w", snap.Key, err)
			}
		}
		return nil
	})
}

func (s *SnapshotStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SnapshotStore) Close() error {
	return Close(s.db)
}

func (s *SnapshotStore) observe(op string, start time.Time) {
	telemetry.StorageLatency.WithLabelValues(s.driver, op).Observe(time.Since(start).Seconds())
}
