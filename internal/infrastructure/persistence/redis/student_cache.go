package redis

import (
	"context"
	"errors"
	"time"

	"github.com/asidocente/school-records/internal/application"
	"github.com/asidocente/school-records/internal/application/query"
)

// StudentCache caches GetStudent read models.
type StudentCache struct {
	cache *Cache
	ttl   time.Duration
}

var _ application.StudentCache = (*StudentCache)(nil)

// NewStudentCache creates a new StudentCache. A non-positive ttl means
// TTLStudentCache.
func NewStudentCache(cache *Cache, ttl time.Duration) *StudentCache {
	if ttl <= 0 {
		ttl = TTLStudentCache
	}
	return &StudentCache{cache: cache, ttl: ttl}
}

// GetStudent returns the cached DTO, or nil on a miss.
func (s *StudentCache) GetStudent(ctx context.Context, id int64) (*query.StudentDTO, error) {
	var dto query.StudentDTO
	err := s.cache.Get(ctx, StudentKey(id), &dto)
	if errors.Is(err, ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// SetStudent caches dto for the configured ttl.
func (s *StudentCache) SetStudent(ctx context.Context, dto query.StudentDTO) error {
	return s.cache.Set(ctx, StudentKey(dto.ID), dto, s.ttl)
}

// InvalidateStudent drops the cached DTO.
func (s *StudentCache) InvalidateStudent(ctx context.Context, id int64) error {
	return s.cache.Delete(ctx, StudentKey(id))
}
