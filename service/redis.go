package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/TIANLI0/MaskCoverage/config"
	"github.com/TIANLI0/MaskCoverage/model"
	"github.com/TIANLI0/MaskCoverage/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CoverageCache 覆盖率结果缓存，未命中时返回 nil, nil
type CoverageCache interface {
	GetCoverage(ctx context.Context, key string) (*model.Coverage, error)
	SetCoverage(ctx context.Context, key string, result *model.Coverage) error
}

// CacheKey 缓存键区分调色板通道顺序
func CacheKey(md5 string, order ChannelOrder) string {
	return order.String() + ":" + md5
}

type RedisService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisService(cfg *config.RedisConfig) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisService{
		client: client,
		ttl:    cfg.TTL,
	}
}

func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// GetCoverage 从缓存获取覆盖率结果
func (s *RedisService) GetCoverage(ctx context.Context, key string) (*model.Coverage, error) {
	data, err := s.client.Get(ctx, "coverage:"+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // 缓存未命中
		}
		return nil, err
	}

	var result model.Coverage
	if err := json.Unmarshal(data, &result); err != nil {
		utils.Logger.Error("failed to unmarshal coverage result",
			zap.String("key", key), zap.Error(err))
		return nil, err
	}

	return &result, nil
}

// SetCoverage 设置覆盖率结果到缓存
func (s *RedisService) SetCoverage(ctx context.Context, key string, result *model.Coverage) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, "coverage:"+key, data, s.ttl).Err()
}

func (s *RedisService) Close() error {
	return s.client.Close()
}
