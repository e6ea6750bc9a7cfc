// Package main 异步任务执行器入口（script-worker）
// 消费脚本生成与片段索引两条流，调用 LLM 并落盘脚本文件
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"e-anim-ai-api/internal/config"
	"e-anim-ai-api/internal/domain/entity"
	"e-anim-ai-api/internal/infrastructure/messaging"
	einoobs "e-anim-ai-api/internal/observability/eino"
	"e-anim-ai-api/internal/wire"
	"e-anim-ai-api/pkg/logger"
	"e-anim-ai-api/pkg/tracer"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "script-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	worker, cleanup, err := wire.InitializeWorker(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize worker", err)
	}
	defer cleanup()

	// Eino 全局 callbacks：指标、追踪与 token 用量流水
	einoobs.Init(worker.Recorder)

	backoff := messaging.BackoffConfig{
		Initial:    cfg.Messaging.RedisStream.RetryBackoff.Initial,
		Max:        cfg.Messaging.RedisStream.RetryBackoff.Max,
		Multiplier: cfg.Messaging.RedisStream.RetryBackoff.Multiplier,
	}

	// 脚本生成流
	scriptConsumer := messaging.NewConsumer(worker.RedisClient.Redis(), messaging.ConsumerConfig{
		Stream:       messaging.StreamScriptGen,
		Group:        messaging.ConsumerGroupScriptWorker,
		ConsumerName: hostnameConsumerName(),
		BlockTimeout: cfg.Messaging.RedisStream.BlockTimeout,
		RetryLimit:   cfg.Messaging.RedisStream.RetryLimit,
		Backoff:      backoff,
	})
	scriptConsumer.RegisterHandler(string(entity.JobTypeScriptGen), worker.Processor.HandleScriptJob)
	scriptConsumer.RegisterHandler(string(entity.JobTypeScriptRefine), worker.Processor.HandleScriptJob)

	// 片段索引流
	snippetConsumer := messaging.NewConsumer(worker.RedisClient.Redis(), messaging.ConsumerConfig{
		Stream:       messaging.StreamSnippetIndex,
		Group:        messaging.ConsumerGroupSnippetWorker,
		ConsumerName: hostnameConsumerName(),
		BlockTimeout: cfg.Messaging.RedisStream.BlockTimeout,
		RetryLimit:   cfg.Messaging.RedisStream.RetryLimit,
		Backoff:      backoff,
	})
	snippetConsumer.RegisterHandler(string(entity.JobTypeSnippetIndex), worker.Processor.HandleSnippetIndex)

	if err := scriptConsumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start script consumer", err)
	}
	if err := snippetConsumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start snippet consumer", err)
	}

	// 死信监控
	go scriptConsumer.MonitorDLQ(ctx, 10)
	go snippetConsumer.MonitorDLQ(ctx, 10)

	log := logger.FromContext(ctx)
	log.Info("script-worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("script-worker shutting down")
	scriptConsumer.Stop()
	snippetConsumer.Stop()
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
