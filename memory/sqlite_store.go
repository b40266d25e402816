//go:build !without_sqlite

package memory

import (
	"context"
	"fmt"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/habiliai/agenteat/errors"
	"github.com/habiliai/agenteat/internal/db"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// SqliteStore keeps memory text in a gorm table and embeddings in a
// sqlite-vec virtual table keyed by the memory key.
type SqliteStore struct {
	db     *gorm.DB
	vecDim int
}

type SqliteMemoryRecord struct {
	Key       string `gorm:"primaryKey"`
	CreatedAt time.Time
	Scope     string `gorm:"index"`
	Source    string `gorm:"index"`
	Value     string
}

func (SqliteMemoryRecord) TableName() string {
	return "memories"
}

// SqliteVectorMeta records the embedding dimension the vector table was
// created with.
type SqliteVectorMeta struct {
	Collection string `gorm:"primaryKey"`
	Dimension  int
}

func (SqliteVectorMeta) TableName() string {
	return "memory_vector_meta"
}

var _ Store = (*SqliteStore)(nil)

func NewSqliteStore(dbPath string, dimension int) (*SqliteStore, error) {
	sqlite_vec.Auto()

	gdb, err := db.OpenSqlite(dbPath)
	if err != nil {
		return nil, err
	}

	store := &SqliteStore{
		db:     gdb,
		vecDim: dimension,
	}

	if err := store.migrate(dbPath); err != nil {
		_ = db.CloseDB(gdb)
		return nil, err
	}

	return store, nil
}

func (s *SqliteStore) migrate(dbPath string) error {
	if err := s.db.AutoMigrate(&SqliteMemoryRecord{}, &SqliteVectorMeta{}); err != nil {
		return errors.Wrapf(err, "failed to migrate memories table")
	}

	meta := SqliteVectorMeta{Collection: CollectionName, Dimension: s.vecDim}
	if err := s.db.Where(SqliteVectorMeta{Collection: CollectionName}).FirstOrCreate(&meta).Error; err != nil {
		return errors.Wrapf(err, "failed to load vector metadata")
	}
	if meta.Dimension != s.vecDim {
		return errors.Wrapf(
			errors.ErrInvalidConfig,
			"memory database %s holds %d-dimensional embeddings but the embedder produces %d, remove it or set MEMORY_DB_PATH",
			dbPath, meta.Dimension, s.vecDim,
		)
	}

	return s.createVectorTable()
}

func (s *SqliteStore) createVectorTable() error {
	var sqliteVersion, vecVersion string
	if err := s.db.Raw("SELECT sqlite_version(), vec_version()").Row().Scan(&sqliteVersion, &vecVersion); err != nil {
		return errors.Wrapf(err, "sqlite-vec extension not properly loaded")
	}

	createTableSQL := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS %s_vectors USING vec0(
			memory_key TEXT PRIMARY KEY,
			embedding float[%d]
		);
	`, CollectionName, s.vecDim)

	if err := s.db.Exec(createTableSQL).Error; err != nil {
		return errors.Wrapf(err, "failed to create vector table")
	}

	return nil
}

func (s *SqliteStore) Set(ctx context.Context, memory *Memory) error {
	if len(memory.Embedding) != s.vecDim {
		return errors.Wrapf(errors.ErrInvalidParams, "embedding dimension %d, expected %d", len(memory.Embedding), s.vecDim)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := SqliteMemoryRecord{
			Key:       memory.Key,
			CreatedAt: memory.CreatedAt,
			Scope:     memory.Scope,
			Source:    string(memory.Source),
			Value:     memory.Value,
		}
		if err := tx.Create(&record).Error; err != nil {
			return errors.Wrapf(err, "failed to save memory record")
		}

		serialized, err := sqlite_vec.SerializeFloat32(memory.Embedding)
		if err != nil {
			return errors.Wrapf(err, "failed to serialize embedding")
		}

		insertSQL := fmt.Sprintf("INSERT INTO %s_vectors (memory_key, embedding) VALUES (?, ?)", CollectionName)
		if err := tx.Exec(insertSQL, memory.Key, serialized).Error; err != nil {
			return errors.Wrapf(err, "failed to insert memory vector")
		}

		return nil
	})
}

func (s *SqliteStore) Get(ctx context.Context, key string) (*Memory, error) {
	var record SqliteMemoryRecord
	if err := s.db.WithContext(ctx).First(&record, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(errors.ErrNotFound, "memory with key '%s'", key)
		}
		return nil, errors.Wrapf(err, "failed to get memory")
	}

	return record.toMemory(), nil
}

func (s *SqliteStore) filtered(ctx context.Context, filter Filter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&SqliteMemoryRecord{})
	if filter.Scope != "" {
		q = q.Where("scope = ?", filter.Scope)
	}
	if len(filter.Sources) > 0 {
		q = q.Where("source IN ?", lo.Map(filter.Sources, func(s Source, _ int) string { return string(s) }))
	}
	return q
}

func (s *SqliteStore) Search(ctx context.Context, queryEmbedding []float32, filter Filter, limit uint) ([]ScoredMemory, error) {
	if len(queryEmbedding) != s.vecDim {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "query embedding dimension %d, expected %d", len(queryEmbedding), s.vecDim)
	}

	var allowedKeys []string
	if err := s.filtered(ctx, filter).Pluck("key", &allowedKeys).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to get memory keys")
	}
	if len(allowedKeys) == 0 {
		return []ScoredMemory{}, nil
	}
	if limit == 0 || limit > uint(len(allowedKeys)) {
		limit = uint(len(allowedKeys))
	}

	serializedQuery, err := sqlite_vec.SerializeFloat32(queryEmbedding)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to serialize query embedding")
	}

	// vec0 KNN queries reject a key filter without k, so distances are
	// computed over the filtered rows.
	searchSQL := fmt.Sprintf(`
		SELECT memory_key, vec_distance_l2(embedding, ?) AS distance
		FROM %s_vectors
		WHERE memory_key IN ?
		ORDER BY distance
		LIMIT ?
	`, CollectionName)

	rows, err := s.db.WithContext(ctx).Raw(searchSQL, serializedQuery, allowedKeys, limit).Rows()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to execute search query")
	}
	defer rows.Close()

	var (
		keys      []string
		distances = make(map[string]float64)
	)
	for rows.Next() {
		var (
			key      string
			distance float64
		)
		if err := rows.Scan(&key, &distance); err != nil {
			return nil, errors.Wrapf(err, "failed to scan search result")
		}
		keys = append(keys, key)
		distances[key] = distance
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to iterate search results")
	}
	_ = rows.Close()
	if len(keys) == 0 {
		return []ScoredMemory{}, nil
	}

	var records []SqliteMemoryRecord
	if err := s.db.WithContext(ctx).Where("key IN ?", keys).Find(&records).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to load memory records")
	}
	byKey := lo.KeyBy(records, func(r SqliteMemoryRecord) string { return r.Key })

	results := make([]ScoredMemory, 0, len(keys))
	for _, key := range keys {
		record, ok := byKey[key]
		if !ok {
			continue
		}
		// L2 distance between unit vectors lies in [0,2]
		results = append(results, ScoredMemory{
			Memory: record.toMemory(),
			Score:  1 - distances[key]/2,
		})
	}

	return results, nil
}

func (s *SqliteStore) List(ctx context.Context, filter Filter) ([]*Memory, error) {
	var records []SqliteMemoryRecord
	if err := s.filtered(ctx, filter).Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to list memories")
	}

	return lo.Map(records, func(r SqliteMemoryRecord, _ int) *Memory {
		return r.toMemory()
	}), nil
}

func (s *SqliteStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(fmt.Sprintf("DELETE FROM %s_vectors WHERE memory_key = ?", CollectionName), key).Error; err != nil {
			return errors.Wrapf(err, "failed to delete memory vector")
		}
		return errors.Wrapf(tx.Delete(&SqliteMemoryRecord{}, "key = ?", key).Error, "failed to delete memory")
	})
}

func (s *SqliteStore) Close() error {
	return db.CloseDB(s.db)
}

func (r SqliteMemoryRecord) toMemory() *Memory {
	return &Memory{
		Key:       r.Key,
		Scope:     r.Scope,
		Source:    Source(r.Source),
		Value:     r.Value,
		CreatedAt: r.CreatedAt,
	}
}
