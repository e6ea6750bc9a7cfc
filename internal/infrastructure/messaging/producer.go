// Package messaging 提供消息队列实现
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishScriptJob 发布脚本生成任务
func (p *Producer) PublishScriptJob(ctx context.Context, job *ScriptJobMessage) (string, error) {
	msg, err := NewMessage(job.JobID, job.JobType, job.ProjectID, job)
	if err != nil {
		return "", err
	}

	msg.SetMetadata("priority", fmt.Sprintf("%d", job.Priority))
	if job.IdempotencyKey != "" {
		msg.SetMetadata("idempotency_key", job.IdempotencyKey)
	}

	return p.Publish(ctx, StreamScriptGen, msg)
}

// PublishSnippetIndex 发布片段索引任务
func (p *Producer) PublishSnippetIndex(ctx context.Context, task *SnippetIndexMessage) (string, error) {
	msg, err := NewMessage(task.JobID, "snippet_index", "", task)
	if err != nil {
		return "", err
	}

	return p.Publish(ctx, StreamSnippetIndex, msg)
}

// ScriptJobMessage 脚本生成任务消息
type ScriptJobMessage struct {
	JobID          string                 `json:"job_id"`
	ProjectID      string                 `json:"project_id"`
	ScriptID       string                 `json:"script_id,omitempty"`
	JobType        string                 `json:"job_type"`
	Priority       int                    `json:"priority"`
	IdempotencyKey string                 `json:"idempotency_key,omitempty"`
	Params         map[string]interface{} `json:"params"`
}

// SnippetIndexMessage 片段索引任务消息
type SnippetIndexMessage struct {
	JobID      string   `json:"job_id"`
	SnippetIDs []string `json:"snippet_ids,omitempty"`
	BatchSize  int      `json:"batch_size,omitempty"`
}
