package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"profile-agent-go/internal/config"
	"profile-agent-go/internal/constants"
	"profile-agent-go/internal/tracing"
	"profile-agent-go/internal/types"
)

// ErrNotFound is returned when a key is not found in Redis.
// It wraps the underlying redis.Nil error for abstraction.
var ErrNotFound = redis.Nil

// 为Redis操作定义专用tracer
var redisTracer = otel.Tracer("profile-agent-go/storage/redis")

// Redis wraps the Redis client
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter creates a new Redis client connection
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		// 连接池设置
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		// 超时设置
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	}

	client := redis.NewClient(opt)

	// 添加OpenTelemetry钩子, 记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	// Ping to check connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{
		Client: client,
		config: cfg,
	}, nil
}

// Close closes the Redis client connection
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping checks the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// GetResultExpireDuration 返回配置的分析结果缓存过期时间
func (r *Redis) GetResultExpireDuration() time.Duration {
	days := r.config.ResultExpireDays
	if days <= 0 {
		return constants.AnalysisResultTTL
	}
	return time.Duration(days) * 24 * time.Hour
}

// profileKey 按文件MD5生成分析结果缓存键
func profileKey(fileMD5 string) string {
	return fmt.Sprintf(constants.KeyAnalysisResult, fileMD5)
}

// SaveProfile 按文件MD5缓存分析结果
func (r *Redis) SaveProfile(ctx context.Context, fileMD5 string, profile *types.CandidateProfile) error {
	ctx, span := redisTracer.Start(ctx, "Redis.SaveProfile",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("net.peer.name", r.config.Address),
		attribute.String("db.operation", "SET"),
		attribute.String("db.redis.key", tracing.SafeRedisKey(profileKey(fileMD5))),
	)

	if r.Client == nil {
		err := fmt.Errorf("redis client is not initialized")
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return err
	}

	data, err := json.Marshal(profile)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("序列化分析结果失败: %w", err)
	}

	if err := r.Client.Set(ctx, profileKey(fileMD5), data, r.GetResultExpireDuration()).Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("缓存分析结果失败: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetProfile 按文件MD5读取缓存的分析结果。
// 缓存未命中时返回 ErrNotFound。
func (r *Redis) GetProfile(ctx context.Context, fileMD5 string) (*types.CandidateProfile, error) {
	ctx, span := redisTracer.Start(ctx, "Redis.GetProfile",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("net.peer.name", r.config.Address),
		attribute.String("db.operation", "GET"),
		attribute.String("db.redis.key", tracing.SafeRedisKey(profileKey(fileMD5))),
	)

	if r.Client == nil {
		err := fmt.Errorf("redis client is not initialized")
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return nil, err
	}

	data, err := r.Client.Get(ctx, profileKey(fileMD5)).Bytes()
	if err != nil {
		// key不存在不算错误
		if err == redis.Nil {
			span.SetStatus(codes.Ok, "key not found")
			span.SetAttributes(attribute.Bool("db.redis.key_exists", false))
			return nil, ErrNotFound
		}
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return nil, err
	}

	var profile types.CandidateProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return nil, fmt.Errorf("反序列化分析结果失败: %w", err)
	}

	span.SetAttributes(attribute.Bool("db.redis.key_exists", true))
	span.SetStatus(codes.Ok, "")
	return &profile, nil
}
