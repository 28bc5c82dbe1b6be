package checkout

import (
	"context"
	"time"

	"github.com/flowlet/billingkit/db"
	"github.com/flowlet/billingkit/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormStore struct {
	logger logger.Logger
	db     *gorm.DB
}

// NewStore creates a checkout store backed by the given database
func NewStore(log logger.Logger, database db.Database) (Store, error) {
	if database == nil {
		return nil, ErrNilDatabase
	}
	gdb, err := database.DB()
	if err != nil {
		return nil, err
	}
	return &gormStore{logger: log, db: gdb}, nil
}

func (s *gormStore) AutoMigrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&Record{})
}

func (s *gormStore) CreatePending(ctx context.Context, rec *Record) error {
	rec.Status = StatusPending
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return ErrStore("creating pending record", err)
	}
	return nil
}

func (s *gormStore) MarkCompleted(ctx context.Context, rec *Record) error {
	rec.Status = StatusCompleted
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"customer_email", "amount_total", "currency", "status", "completed_at", "updated_at",
		}),
	}).Create(rec).Error
	if err != nil {
		return ErrStore("marking record completed", err)
	}
	return nil
}

func (s *gormStore) BySessionID(ctx context.Context, sessionID string) (*Record, error) {
	var rec Record
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *gormStore) ExpirePending(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&Record{}).
		Where("status = ? AND created_at < ?", StatusPending, before).
		Update("status", StatusExpired)
	if res.Error != nil {
		return 0, ErrStore("expiring pending records", res.Error)
	}
	if res.RowsAffected > 0 {
		s.logger.Info("expired stale pending checkouts",
			zap.Int64("rows", res.RowsAffected),
			zap.Time("before", before),
		)
	}
	return res.RowsAffected, nil
}
