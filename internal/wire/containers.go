// Package wire 提供依赖注入配置
package wire

import (
	"e-anim-ai-api/internal/application/generation"
	"e-anim-ai-api/internal/application/quota"
	"e-anim-ai-api/internal/infrastructure/messaging"
	"e-anim-ai-api/internal/infrastructure/persistence/postgres"
	"e-anim-ai-api/internal/infrastructure/persistence/redis"
	"e-anim-ai-api/internal/interfaces/http/router"
)

// App API 网关依赖容器
type App struct {
	Router   *router.Router
	Recorder *quota.LLMUsageRecorder
}

// Worker 任务执行侧依赖容器
type Worker struct {
	Processor   *generation.Processor
	Recorder    *quota.LLMUsageRecorder
	RedisClient *redis.Client
}

// DataLayer 数据层依赖容器
type DataLayer struct {
	// PostgreSQL
	PgClient     *postgres.Client
	TxManager    *postgres.TxManager
	ProjectRepo  *postgres.ProjectRepository
	ScriptRepo   *postgres.ScriptRepository
	JobRepo      *postgres.JobRepository
	SnippetRepo  *postgres.SnippetRepository
	LLMUsageRepo *postgres.LLMUsageEventRepository

	// Redis
	RedisClient *redis.Client
	Cache       *redis.Cache
	RateLimiter *redis.RateLimiter

	// Messaging
	Producer *messaging.Producer
}

// PostgresOnlyDataLayer 仅包含 PostgreSQL 的数据层（用于 bootstrap）
type PostgresOnlyDataLayer struct {
	PgClient     *postgres.Client
	TxManager    *postgres.TxManager
	ProjectRepo  *postgres.ProjectRepository
	ScriptRepo   *postgres.ScriptRepository
	JobRepo      *postgres.JobRepository
	SnippetRepo  *postgres.SnippetRepository
	LLMUsageRepo *postgres.LLMUsageEventRepository
}
