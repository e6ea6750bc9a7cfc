// Package wire 提供依赖注入配置
package wire

import (
	"context"

	einoembedding "github.com/cloudwego/eino/components/embedding"

	"e-anim-ai-api/internal/application/generation"
	"e-anim-ai-api/internal/application/quota"
	"e-anim-ai-api/internal/application/retrieval"
	"e-anim-ai-api/internal/config"
	"e-anim-ai-api/internal/domain/repository"
	infraembedding "e-anim-ai-api/internal/infrastructure/embedding"
	"e-anim-ai-api/internal/infrastructure/messaging"
	"e-anim-ai-api/internal/infrastructure/persistence/milvus"
	"e-anim-ai-api/internal/infrastructure/persistence/postgres"
	"e-anim-ai-api/internal/infrastructure/persistence/redis"
	"e-anim-ai-api/internal/infrastructure/scriptstore"
	"e-anim-ai-api/internal/interfaces/http/handler"
	"e-anim-ai-api/pkg/logger"
)

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(redisClient.Redis(), maxLen)
}

// ProvideScriptStore 提供脚本文件存储
func ProvideScriptStore(cfg *config.Config) *scriptstore.Store {
	return scriptstore.NewStore(&cfg.Workspace)
}

// ProvideMilvusClientOptional 提供可选的 Milvus 客户端
// 检索功能关闭或 Milvus 不可达时返回 nil，不阻塞启动
func ProvideMilvusClientOptional(ctx context.Context, cfg *config.Config) (*milvus.Client, func(), error) {
	if !cfg.Features.Retrieval.Enabled {
		return nil, func() {}, nil
	}
	client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		logger.Warn(ctx, "milvus not available, vector features disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideMilvusRepositoryOptional 提供可选的向量仓储
func ProvideMilvusRepositoryOptional(client *milvus.Client) *milvus.Repository {
	if client == nil {
		return nil
	}
	return milvus.NewRepository(client)
}

// ProvideRetrievalEngine 提供片段检索引擎
func ProvideRetrievalEngine(ctx context.Context, cfg *config.Config, vectorRepo *milvus.Repository, snippetRepo repository.SnippetRepository) *retrieval.Engine {
	embedder := provideEmbedderOptional(ctx, cfg)
	if embedder == nil || vectorRepo == nil {
		return nil
	}
	return retrieval.NewEngine(embedder, vectorRepo, snippetRepo, cfg.Features.Retrieval.TopK, cfg.Features.Retrieval.MaxContextRunes)
}

// ProvideRetrievalIndexer 提供片段索引器
func ProvideRetrievalIndexer(ctx context.Context, cfg *config.Config, vectorRepo *milvus.Repository, snippetRepo repository.SnippetRepository) *retrieval.Indexer {
	embedder := provideEmbedderOptional(ctx, cfg)
	if embedder == nil || vectorRepo == nil {
		return nil
	}
	return retrieval.NewIndexer(embedder, vectorRepo, snippetRepo, 0)
}

// provideEmbedderOptional Embedder 不可用时禁用向量检索/索引
func provideEmbedderOptional(ctx context.Context, cfg *config.Config) einoembedding.Embedder {
	if !cfg.Features.Retrieval.Enabled {
		return nil
	}
	embedder, err := infraembedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		logger.Warn(ctx, "embedding not available, vector features disabled", "error", err.Error())
		return nil
	}
	return embedder
}

// ProvideGenerationService 提供生成任务受理服务
func ProvideGenerationService(
	cfg *config.Config,
	projectRepo repository.ProjectRepository,
	scriptRepo repository.ScriptRepository,
	jobRepo repository.JobRepository,
	txMgr repository.Transactor,
	producer *messaging.Producer,
	cache *redis.Client,
	store *scriptstore.Store,
	budget *quota.TokenBudgetChecker,
) *generation.Service {
	return generation.NewService(projectRepo, scriptRepo, jobRepo, txMgr, producer, cache, store, budget, cfg.LLM.MaxTokensPerDay)
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(cfg *config.Config, pg *postgres.Client, rdb *redis.Client) *handler.HealthHandler {
	return handler.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rdb)
}
