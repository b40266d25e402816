package session

import (
	"context"
	"time"

	"github.com/habiliai/agenteat/errors"
	"github.com/habiliai/agenteat/internal/db"
	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	// GormStore persists threads in sqlite, one row per thread.
	GormStore struct {
		db *gorm.DB
	}

	ThreadRecord struct {
		ID         string `gorm:"primaryKey"`
		CrewID     string `gorm:"index"`
		OrderState string
		Messages   datatypes.JSONSlice[Message]
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}
)

var (
	_ Store = (*GormStore)(nil)
)

func (ThreadRecord) TableName() string {
	return "chat_threads"
}

func NewGormStore(path string) (*GormStore, error) {
	gdb, err := db.OpenSqlite(path)
	if err != nil {
		return nil, err
	}
	if err := gdb.AutoMigrate(&ThreadRecord{}); err != nil {
		return nil, errors.Wrapf(err, "failed to migrate threads table")
	}

	return &GormStore{db: gdb}, nil
}

func (s *GormStore) Get(ctx context.Context, id string) (*Thread, error) {
	_, tx := db.OpenSession(ctx, s.db)

	var record ThreadRecord
	if r := tx.Limit(1).Find(&record, "id = ?", id); r.Error != nil {
		return nil, errors.Wrapf(r.Error, "failed to find thread")
	} else if r.RowsAffected == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "thread %s", id)
	}

	return record.toThread(), nil
}

func (s *GormStore) Put(ctx context.Context, thread *Thread) error {
	if err := thread.Validate(); err != nil {
		return err
	}

	_, tx := db.OpenSession(ctx, s.db)
	record := ThreadRecord{
		ID:         thread.ID,
		CrewID:     thread.CrewID,
		OrderState: thread.OrderState,
		Messages:   datatypes.NewJSONSlice(thread.Messages),
		CreatedAt:  thread.CreatedAt,
		UpdatedAt:  thread.UpdatedAt,
	}
	if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error; err != nil {
		return errors.Wrapf(err, "failed to save thread")
	}

	return nil
}

func (s *GormStore) List(ctx context.Context) ([]Thread, error) {
	_, tx := db.OpenSession(ctx, s.db)

	var records []ThreadRecord
	if err := tx.Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to find threads")
	}

	return lo.Map(records, func(r ThreadRecord, _ int) Thread {
		return *r.toThread()
	}), nil
}

func (s *GormStore) Close() error {
	return db.CloseDB(s.db)
}

func (r *ThreadRecord) toThread() *Thread {
	msgs := []Message(r.Messages)
	if msgs == nil {
		msgs = []Message{}
	}
	return &Thread{
		ID:         r.ID,
		CrewID:     r.CrewID,
		Messages:   msgs,
		OrderState: r.OrderState,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
