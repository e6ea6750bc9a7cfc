// Package generation 负责生成任务的受理与执行编排
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"e-anim-ai-api/internal/application/quota"
	"e-anim-ai-api/internal/domain/entity"
	"e-anim-ai-api/internal/domain/repository"
	"e-anim-ai-api/internal/infrastructure/messaging"
	"e-anim-ai-api/internal/infrastructure/persistence/redis"
	"e-anim-ai-api/internal/infrastructure/scriptstore"
	apperrors "e-anim-ai-api/pkg/errors"
	"e-anim-ai-api/pkg/logger"
)

// idempotencyLockTTL 幂等锁有效期，覆盖任务正常生命周期
const idempotencyLockTTL = 24 * time.Hour

// ScriptGenParams 脚本生成任务参数，随任务落库并透传给 worker
type ScriptGenParams struct {
	Brief          string   `json:"brief,omitempty"`
	BriefPath      string   `json:"brief_path,omitempty"`
	Provider       string   `json:"provider,omitempty"`
	Model          string   `json:"model,omitempty"`
	Temperature    *float32 `json:"temperature,omitempty"`
	MaxTokens      *int     `json:"max_tokens,omitempty"`
	Audience       string   `json:"audience,omitempty"`
	Language       string   `json:"language,omitempty"`
	TargetDuration int      `json:"target_duration,omitempty"`

	// Instructions 仅 script_refine 使用
	Instructions string `json:"instructions,omitempty"`
	// BaseScriptID 仅 script_refine 使用；为空表示基于当前版本
	BaseScriptID string `json:"base_script_id,omitempty"`
}

// Service 生成任务受理服务：校验、幂等、预算预检、落库并投递消息。
type Service struct {
	projectRepo repository.ProjectRepository
	scriptRepo  repository.ScriptRepository
	jobRepo     repository.JobRepository
	txMgr       repository.Transactor
	producer    *messaging.Producer
	cache       *redis.Client
	store       *scriptstore.Store
	budget      *quota.TokenBudgetChecker

	maxTokensPerDay int64
}

func NewService(
	projectRepo repository.ProjectRepository,
	scriptRepo repository.ScriptRepository,
	jobRepo repository.JobRepository,
	txMgr repository.Transactor,
	producer *messaging.Producer,
	cache *redis.Client,
	store *scriptstore.Store,
	budget *quota.TokenBudgetChecker,
	maxTokensPerDay int64,
) *Service {
	return &Service{
		projectRepo:     projectRepo,
		scriptRepo:      scriptRepo,
		jobRepo:         jobRepo,
		txMgr:           txMgr,
		producer:        producer,
		cache:           cache,
		store:           store,
		budget:          budget,
		maxTokensPerDay: maxTokensPerDay,
	}
}

// EnqueueScriptGen 受理脚本生成任务。
// idempotencyKey 非空时重复提交返回已存在的任务。
func (s *Service) EnqueueScriptGen(ctx context.Context, projectID string, params *ScriptGenParams, idempotencyKey string) (*entity.GenerationJob, error) {
	return s.enqueueScriptJob(ctx, projectID, entity.JobTypeScriptGen, params, idempotencyKey)
}

// EnqueueScriptRefine 受理脚本修订任务，要求项目已有可修订的脚本版本。
func (s *Service) EnqueueScriptRefine(ctx context.Context, projectID string, params *ScriptGenParams, idempotencyKey string) (*entity.GenerationJob, error) {
	if params == nil || strings.TrimSpace(params.Instructions) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "instructions are required")
	}

	baseID := strings.TrimSpace(params.BaseScriptID)
	if baseID == "" {
		current, err := s.scriptRepo.GetCurrent(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, apperrors.New(apperrors.CodeScriptNotFound, "project has no current script to refine")
		}
		params.BaseScriptID = current.ID
	} else {
		base, err := s.scriptRepo.GetByID(ctx, baseID)
		if err != nil {
			return nil, err
		}
		if base == nil || base.ProjectID != projectID {
			return nil, apperrors.New(apperrors.CodeScriptNotFound, "base script not found")
		}
	}

	return s.enqueueScriptJob(ctx, projectID, entity.JobTypeScriptRefine, params, idempotencyKey)
}

func (s *Service) enqueueScriptJob(ctx context.Context, projectID string, jobType entity.JobType, params *ScriptGenParams, idempotencyKey string) (*entity.GenerationJob, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "project id is required")
	}
	if params == nil {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "params are required")
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperrors.New(apperrors.CodeProjectNotFound, "project not found")
	}
	if !project.IsEditable() {
		return nil, apperrors.New(apperrors.CodeConflict,
			fmt.Sprintf("project %s is not editable in status %s", projectID, project.Status))
	}

	// 描述文本随请求提交时先落盘，项目记录描述文件路径
	if brief := strings.TrimSpace(params.Brief); brief != "" {
		path, err := s.store.SaveBrief(ctx, projectID, brief)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeStorageError, "failed to save brief")
		}
		params.BriefPath = path
		params.Brief = ""
		if project.BriefPath != path {
			project.BriefPath = path
			if err := s.projectRepo.Update(ctx, project); err != nil {
				return nil, err
			}
		}
	} else if strings.TrimSpace(params.BriefPath) == "" {
		params.BriefPath = strings.TrimSpace(project.BriefPath)
	}
	if strings.TrimSpace(params.BriefPath) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "brief or brief_path is required")
	}

	// 预算预检：预算耗尽时直接拒绝受理
	if s.budget != nil {
		used, max, err := s.budget.CheckDailyTokens(ctx, s.maxTokensPerDay)
		var exceeded quota.TokenBudgetExceededError
		if errors.As(err, &exceeded) {
			return nil, apperrors.New(apperrors.CodeBudgetExceeded,
				fmt.Sprintf("daily token budget exceeded: used=%d max=%d", used, max))
		}
		if err != nil {
			logger.FromContext(ctx).Warn("budget precheck degraded", "error", err)
		}
	}

	// 幂等受理：DB 唯一键兜底，Redis SetNX 拦截并发重复提交
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey != "" {
		existing, err := s.jobRepo.GetByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
		if s.cache != nil {
			ok, err := s.cache.SetNX(ctx, "idem:job:"+idempotencyKey, projectID, idempotencyLockTTL)
			if err == nil && !ok {
				existing, err := s.jobRepo.GetByIdempotencyKey(ctx, idempotencyKey)
				if err != nil {
					return nil, err
				}
				if existing != nil {
					return existing, nil
				}
				return nil, apperrors.New(apperrors.CodeConflict, "duplicate submission in progress")
			}
		}
	}

	inputParams, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job params: %w", err)
	}

	job := entity.NewGenerationJob(projectID, jobType, inputParams)
	job.IdempotencyKey = idempotencyKey
	job.ScriptID = params.BaseScriptID

	if err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.jobRepo.Create(txCtx, job)
	}); err != nil {
		return nil, err
	}

	msgParams := map[string]interface{}{}
	_ = json.Unmarshal(inputParams, &msgParams)
	if _, err := s.producer.PublishScriptJob(ctx, &messaging.ScriptJobMessage{
		JobID:          job.ID,
		ProjectID:      projectID,
		ScriptID:       params.BaseScriptID,
		JobType:        string(jobType),
		Priority:       job.Priority,
		IdempotencyKey: idempotencyKey,
		Params:         msgParams,
	}); err != nil {
		// 投递失败时标记任务失败，避免悬挂的 pending 任务
		job.Fail(fmt.Sprintf("failed to publish job: %v", err))
		_ = s.jobRepo.Update(ctx, job)
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "failed to publish job")
	}

	return job, nil
}

// EnqueueSnippetIndex 受理片段索引任务。
// snippetIDs 为空表示补齐全部未索引片段。
func (s *Service) EnqueueSnippetIndex(ctx context.Context, snippetIDs []string, batchSize int) (*entity.GenerationJob, error) {
	params, err := json.Marshal(map[string]interface{}{
		"snippet_ids": snippetIDs,
		"batch_size":  batchSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job params: %w", err)
	}

	job := entity.NewGenerationJob("", entity.JobTypeSnippetIndex, params)
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	if _, err := s.producer.PublishSnippetIndex(ctx, &messaging.SnippetIndexMessage{
		JobID:      job.ID,
		SnippetIDs: snippetIDs,
		BatchSize:  batchSize,
	}); err != nil {
		job.Fail(fmt.Sprintf("failed to publish job: %v", err))
		_ = s.jobRepo.Update(ctx, job)
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "failed to publish job")
	}
	return job, nil
}

// CancelJob 取消任务；已结束的任务返回冲突错误。
func (s *Service) CancelJob(ctx context.Context, jobID string) (*entity.GenerationJob, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apperrors.New(apperrors.CodeJobNotFound, "job not found")
	}
	if !job.Cancel() {
		return nil, apperrors.New(apperrors.CodeConflict,
			fmt.Sprintf("job %s cannot be cancelled in status %s", jobID, job.Status))
	}
	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}
