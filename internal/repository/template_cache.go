package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nxzen/ticketdesk/internal/domain"
)

const templateCachePrefix = "tpl:dept:"

// TemplateCache layers a redis read-through cache over a TemplateRepository
// for the department-scoped dropdown reads. Templates are static reference
// data, so a short TTL plus write invalidation is sufficient. A missing or
// unreachable redis degrades to plain DB reads.
type TemplateCache struct {
	inner  TemplateRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewTemplateCache wraps the repository with caching.
func NewTemplateCache(inner TemplateRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *TemplateCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TemplateCache{inner: inner, client: client, ttl: ttl, logger: logger}
}

// ActiveByDepartment returns active templates for a department, cached.
func (c *TemplateCache) ActiveByDepartment(ctx context.Context, departmentID string) ([]domain.OnboardingTemplate, error) {
	key := templateCachePrefix + departmentID

	if c.client != nil {
		raw, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			var cached []domain.OnboardingTemplate
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			c.logger.Warn("template cache read failed", zap.Error(err))
		}
	}

	templates, err := c.inner.List(ctx, TemplateFilter{DepartmentID: &departmentID, ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	if c.client != nil {
		if raw, err := json.Marshal(templates); err == nil {
			if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				c.logger.Warn("template cache write failed", zap.Error(err))
			}
		}
	}
	return templates, nil
}

// Invalidate drops the cached entry for a department after writes.
func (c *TemplateCache) Invalidate(ctx context.Context, departmentID string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, templateCachePrefix+departmentID).Err(); err != nil {
		c.logger.Warn("template cache invalidate failed", zap.Error(err))
	}
}
