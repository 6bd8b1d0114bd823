// Package infrastructure 按配置装配理论价服务的外部依赖：输入库、输入缓存、事件发布
package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/theoprice/internal/theoprice/domain"
	"github.com/wyfcoding/theoprice/internal/theoprice/infrastructure/messaging"
	"github.com/wyfcoding/theoprice/internal/theoprice/infrastructure/persistence/mysql"
	redisrepo "github.com/wyfcoding/theoprice/internal/theoprice/infrastructure/persistence/redis"
	"github.com/wyfcoding/theoprice/pkg/cache"
	"github.com/wyfcoding/theoprice/pkg/config"
	"github.com/wyfcoding/theoprice/pkg/db"
	"github.com/wyfcoding/theoprice/pkg/logger"
	"github.com/wyfcoding/theoprice/pkg/mq"
)

// Stack 已连接的外部依赖，未配置 DSN 时全部为空，只提供计算接口
type Stack struct {
	DB        *db.DB
	Inputs    domain.InputRepository // 未配置输入库时为 nil
	Publisher domain.EventPublisher  // 未配置 Kafka 时为 nil
	Redis     redis.UniversalClient  // 未配置 Redis 时为 nil

	closers []func() error
}

// Build 依次连接数据库、缓存与 Kafka，任一步失败都会释放已建立的连接
func Build(ctx context.Context, cfg *config.Config) (_ *Stack, err error) {
	s := &Stack{}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	if cfg.Database.DSN == "" {
		logger.Info(ctx, "database DSN not configured, reconciliation disabled")
		return s, nil
	}

	// 1. 输入库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		return nil, err
	}
	s.DB = database
	s.closers = append(s.closers, database.Close)
	inputs := mysql.NewInputRepository(database.DB, uint(cfg.Database.MaxRetries))

	// 2. 输入缓存：有 Redis 用 Redis，否则用进程内缓存
	ttl := time.Duration(cfg.Reconcile.CacheTTL) * time.Second
	var jsonCache redisrepo.JSONCache
	if cfg.Redis.Host != "" {
		rc, err := cache.New(cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ConnTimeout:  cfg.Redis.ConnTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, rc.Close)
		s.Redis = rc.Client()
		jsonCache = rc
	} else {
		lc, err := cache.NewLocal(ctx, ttl)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, lc.Close)
		jsonCache = lc
		logger.Info(ctx, "Redis not configured, using in-process input cache")
	}
	s.Inputs = redisrepo.NewCachedInputRepository(inputs, jsonCache, ttl)

	// 3. 事件发布
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka producer: %w", err)
		}
		s.closers = append(s.closers, producer.Close)
		s.Publisher = messaging.NewKafkaEventPublisher(producer, cfg.Reconcile.BreakTopic)
	} else {
		logger.Info(ctx, "Kafka not configured, reconciliation events are not published")
	}
	return s, nil
}

// Close 逆序关闭连接
func (s *Stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			logger.Warn(context.Background(), "failed to close resource", "error", err)
		}
	}
	s.closers = nil
}
