package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/util"
	"interview_prep_backend/pkg/logger"
	"interview_prep_backend/pkg/monitoring"
	"interview_prep_backend/pkg/tracing"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const progressCachePrefix = "guided:progress:"

// ProgressRepository stores one ProgressRecord per user and plan. It does no
// ownership checks; callers pass the authenticated user id.
type ProgressRepository struct {
	DB       *gorm.DB
	Redis    *redis.Client
	validate *validator.Validate
	ttl      atomic.Int64
}

func NewProgressRepository(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) *ProgressRepository {
	r := &ProgressRepository{
		DB:       db,
		Redis:    rdb,
		validate: validator.New(),
	}
	r.SetCacheTTL(cacheTTL)
	return r
}

func (r *ProgressRepository) SetCacheTTL(ttl time.Duration) {
	r.ttl.Store(int64(ttl))
}

func progressCacheKey(userID uint, planID string) string {
	return fmt.Sprintf("%s%d:%s", progressCachePrefix, userID, planID)
}

// Load returns the stored record, or nil when there is none. A record that
// fails validation is logged and reported as nil as well. Only database
// failures produce an error, wrapping util.ErrStoreUnavailable.
func (r *ProgressRepository) Load(ctx context.Context, userID uint, planID string) (*model.ProgressRecord, error) {
	ctx, span := tracing.Tracer.Start(ctx, "progress.load")
	defer span.End()

	key := progressCacheKey(userID, planID)
	if data, ok := r.cacheGet(ctx, key); ok {
		if rec, err := r.decode(data, planID); err == nil {
			return rec, nil
		}
		r.cacheDel(ctx, key)
	}

	var row model.PlanProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND plan_id = ?", userID, planID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load progress: %v", util.ErrStoreUnavailable, err)
	}

	rec, err := r.decode(row.Data, planID)
	if err != nil {
		logger.Log.Warn("malformed progress record, treating as empty",
			zap.Uint("userID", userID),
			zap.String("planID", planID),
			zap.Error(err),
		)
		monitoring.ProgressFallbacks.WithLabelValues("malformed").Inc()
		return nil, nil
	}

	r.cacheSet(ctx, key, row.Data)
	return rec, nil
}

// Save upserts the record. Concurrent saves for the same user and plan are
// last-write-wins.
func (r *ProgressRepository) Save(ctx context.Context, userID uint, planID string, rec *model.ProgressRecord) error {
	ctx, span := tracing.Tracer.Start(ctx, "progress.save")
	defer span.End()

	rec.PlanID = planID
	if rec.LastUpdated.IsZero() {
		rec.LastUpdated = time.Now().UTC()
	}
	if err := r.validate.Struct(rec); err != nil {
		return fmt.Errorf("invalid progress record: %w", err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	row := model.PlanProgress{
		UserID: userID,
		PlanID: planID,
		Data:   string(data),
	}
	err = r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "plan_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("%w: save progress: %v", util.ErrStoreUnavailable, err)
	}

	r.cacheSet(ctx, progressCacheKey(userID, planID), row.Data)
	return nil
}

// DeleteByPlan drops every learner's progress on a plan inside tx. The
// returned evict clears the cached copies and must only run once tx has
// committed.
func (r *ProgressRepository) DeleteByPlan(ctx context.Context, tx *gorm.DB, planID string) (evict func(), err error) {
	var userIDs []uint
	err = tx.WithContext(ctx).Model(&model.PlanProgress{}).
		Where("plan_id = ?", planID).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list progress: %v", util.ErrStoreUnavailable, err)
	}

	err = tx.WithContext(ctx).Unscoped().
		Where("plan_id = ?", planID).
		Delete(&model.PlanProgress{}).Error
	if err != nil {
		return nil, fmt.Errorf("%w: delete progress: %v", util.ErrStoreUnavailable, err)
	}

	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, progressCacheKey(id, planID))
	}
	return func() { r.cacheDel(ctx, keys...) }, nil
}

// ListByUser returns every readable record of the user, most recent first.
func (r *ProgressRepository) ListByUser(ctx context.Context, userID uint) ([]*model.ProgressRecord, error) {
	var rows []model.PlanProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list progress: %v", util.ErrStoreUnavailable, err)
	}

	out := make([]*model.ProgressRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := r.decode(row.Data, row.PlanID)
		if err != nil {
			logger.Log.Warn("skipping malformed progress record",
				zap.Uint("userID", userID),
				zap.String("planID", row.PlanID),
				zap.Error(err),
			)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *ProgressRepository) decode(data, planID string) (*model.ProgressRecord, error) {
	var rec model.ProgressRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, err
	}
	if err := r.validate.Struct(&rec); err != nil {
		return nil, err
	}
	if rec.PlanID != planID {
		return nil, fmt.Errorf("record belongs to plan %q", rec.PlanID)
	}
	return &rec, nil
}

func (r *ProgressRepository) cacheGet(ctx context.Context, key string) (string, bool) {
	if r.Redis == nil {
		return "", false
	}
	val, err := r.Redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		logger.Log.Warn("progress cache read failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return val, true
}

func (r *ProgressRepository) cacheSet(ctx context.Context, key, data string) {
	if r.Redis == nil {
		return
	}
	if err := r.Redis.Set(ctx, key, data, time.Duration(r.ttl.Load())).Err(); err != nil {
		logger.Log.Warn("progress cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *ProgressRepository) cacheDel(ctx context.Context, keys ...string) {
	if r.Redis == nil || len(keys) == 0 {
		return
	}
	if err := r.Redis.Del(ctx, keys...).Err(); err != nil {
		logger.Log.Warn("progress cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
