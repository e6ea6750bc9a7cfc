package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"e-anim-ai-api/internal/application/retrieval"
	"e-anim-ai-api/internal/application/script"
	"e-anim-ai-api/internal/config"
	"e-anim-ai-api/internal/domain/entity"
	"e-anim-ai-api/internal/domain/repository"
	llmctx "e-anim-ai-api/internal/domain/service"
	"e-anim-ai-api/internal/infrastructure/messaging"
	"e-anim-ai-api/internal/infrastructure/persistence/redis"
	"e-anim-ai-api/internal/infrastructure/scriptstore"
	wfmodel "e-anim-ai-api/internal/workflow/model"
	"e-anim-ai-api/internal/workflow/node"
	"e-anim-ai-api/pkg/logger"
)

// Processor 在 worker 侧执行生成任务：读描述、检索参考、调用 LLM、落盘并更新版本。
type Processor struct {
	cfg *config.Config

	projectRepo repository.ProjectRepository
	scriptRepo  repository.ScriptRepository
	jobRepo     repository.JobRepository
	txMgr       repository.Transactor

	generator *script.Generator
	engine    *retrieval.Engine
	indexer   *retrieval.Indexer
	store     *scriptstore.Store
	cache     *redis.Cache
}

func NewProcessor(
	cfg *config.Config,
	projectRepo repository.ProjectRepository,
	scriptRepo repository.ScriptRepository,
	jobRepo repository.JobRepository,
	txMgr repository.Transactor,
	generator *script.Generator,
	engine *retrieval.Engine,
	indexer *retrieval.Indexer,
	store *scriptstore.Store,
	cache *redis.Cache,
) *Processor {
	return &Processor{
		cfg:         cfg,
		projectRepo: projectRepo,
		scriptRepo:  scriptRepo,
		jobRepo:     jobRepo,
		txMgr:       txMgr,
		generator:   generator,
		engine:      engine,
		indexer:     indexer,
		store:       store,
		cache:       cache,
	}
}

// HandleScriptJob 处理 script_gen / script_refine 消息。
// 返回 error 会触发消费者的退避重试与死信逻辑。
func (p *Processor) HandleScriptJob(ctx context.Context, msg *messaging.Message) error {
	var payload messaging.ScriptJobMessage
	if err := msg.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal script job: %w", err)
	}

	job, err := p.jobRepo.GetByID(ctx, payload.JobID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job not found: %s", payload.JobID)
	}
	if job.Status == entity.JobStatusCancelled {
		logger.FromContext(ctx).Info("skip cancelled job", "job_id", job.ID)
		return nil
	}
	if job.Status == entity.JobStatusCompleted {
		// 重复投递的已完成任务直接 ACK
		return nil
	}

	if err := p.jobRepo.MarkRunning(ctx, job.ID); err != nil {
		return err
	}
	_ = p.jobRepo.UpdateProgress(ctx, job.ID, 5)

	var params ScriptGenParams
	if len(job.InputParams) > 0 {
		if err := json.Unmarshal(job.InputParams, &params); err != nil {
			p.failJob(ctx, job, fmt.Sprintf("invalid job params: %v", err))
			return nil // 参数坏了重试也无济于事，不触发重投
		}
	}

	out, genErr := p.generate(ctx, job, &params)
	if genErr != nil {
		p.failJob(ctx, job, genErr.Error())
		if node.IsContextLengthError(genErr) {
			// 上下文超长属于永久失败，重投只会原样复现
			return nil
		}
		if node.IsRateLimitError(genErr) {
			logger.FromContext(ctx).Warn("llm rate limited, job queued for retry", "job_id", job.ID)
		}
		return genErr
	}
	_ = p.jobRepo.UpdateProgress(ctx, job.ID, 80)

	result, err := p.persistScript(ctx, job, &params, out)
	if err != nil {
		p.failJob(ctx, job, err.Error())
		return err
	}

	job.SetLLMMetrics(out.Meta.Provider, out.Meta.Model, out.Meta.PromptTokens, out.Meta.CompletionTokens)
	job.Complete(result)
	if err := p.jobRepo.Update(ctx, job); err != nil {
		return err
	}

	if p.cache != nil {
		_ = p.cache.InvalidateProject(ctx, job.ProjectID)
	}
	return nil
}

func (p *Processor) generate(ctx context.Context, job *entity.GenerationJob, params *ScriptGenParams) (*wfmodel.ScriptGenerateOutput, error) {
	project, err := p.projectRepo.GetByID(ctx, job.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project not found: %s", job.ProjectID)
	}

	briefPath := strings.TrimSpace(params.BriefPath)
	if briefPath == "" {
		briefPath = strings.TrimSpace(project.BriefPath)
	}
	if briefPath == "" {
		return nil, fmt.Errorf("project %s has no brief", project.ID)
	}
	brief, err := p.store.LoadBrief(ctx, briefPath)
	if err != nil {
		return nil, err
	}

	retrievedContext := ""
	if p.engine != nil && p.engine.Enabled() {
		retrievedContext, err = p.engine.BuildContext(ctx, brief, nil)
		if err != nil {
			logger.FromContext(ctx).Warn("retrieval degraded", "error", err, "job_id", job.ID)
			retrievedContext = ""
		}
	}
	_ = p.jobRepo.UpdateProgress(ctx, job.ID, 20)

	provider, model, temperature, maxTokens := p.resolveLLMOptions(params, project)
	ctx = llmctx.WithProject(ctx, project.ID)

	audience, language, duration := resolveGenerationSettings(params, project)

	switch job.JobType {
	case entity.JobTypeScriptGen:
		in := &wfmodel.ScriptGenerateInput{
			ProjectTitle:     project.Title,
			Topic:            project.Topic,
			Brief:            brief,
			RetrievedContext: retrievedContext,
			Audience:         audience,
			Language:         language,
			TargetDuration:   duration,
			Provider:         provider,
			Model:            model,
			Temperature:      temperature,
			MaxTokens:        maxTokens,
		}
		in.ApplyDefaults()
		return p.generator.Generate(ctx, in)

	case entity.JobTypeScriptRefine:
		baseID := strings.TrimSpace(params.BaseScriptID)
		var base *entity.SceneScript
		if baseID != "" {
			base, err = p.scriptRepo.GetByID(ctx, baseID)
		} else {
			base, err = p.scriptRepo.GetCurrent(ctx, project.ID)
		}
		if err != nil {
			return nil, err
		}
		if base == nil {
			return nil, fmt.Errorf("base script not found for project %s", project.ID)
		}
		source := base.SourceCode
		if source == "" && base.FilePath != "" {
			source, err = p.store.LoadScript(ctx, base.FilePath)
			if err != nil {
				return nil, err
			}
		}
		return p.generator.Refine(ctx, &wfmodel.ScriptRefineInput{
			ProjectTitle:     project.Title,
			Brief:            brief,
			CurrentSource:    source,
			Instructions:     params.Instructions,
			RetrievedContext: retrievedContext,
			Provider:         provider,
			Model:            model,
			Temperature:      temperature,
			MaxTokens:        maxTokens,
		})

	default:
		return nil, fmt.Errorf("unsupported job type: %s", job.JobType)
	}
}

// persistScript 先写脚本文件，再在一个事务里落库新版本并切换 current。
// 文件写失败时不产生任何库记录；事务失败时残留的文件会被重试任务同版本覆盖。
func (p *Processor) persistScript(ctx context.Context, job *entity.GenerationJob, params *ScriptGenParams, out *wfmodel.ScriptGenerateOutput) (json.RawMessage, error) {
	// 版本号在事务外预取；同项目并发生成时由 (project_id, version) 唯一键兜底
	version, err := p.scriptRepo.NextVersion(ctx, job.ProjectID)
	if err != nil {
		return nil, err
	}

	sc := entity.NewSceneScript(job.ProjectID, version)
	sc.SetSource(out.Source, out.SceneClasses)
	sc.Instructions = strings.TrimSpace(params.Instructions)
	sc.GenerationMetadata = &entity.GenerationMetadata{
		Workflow:         string(job.JobType),
		Model:            out.Meta.Model,
		Provider:         out.Meta.Provider,
		PromptTokens:     out.Meta.PromptTokens,
		CompletionTokens: out.Meta.CompletionTokens,
		Temperature:      out.Meta.Temperature,
		GeneratedAt:      out.Meta.GeneratedAt.Format(time.RFC3339),
	}

	path, err := p.store.SaveScript(ctx, job.ProjectID, version, sc.SourceCode)
	if err != nil {
		return nil, err
	}
	sc.MarkReady(path)

	err = p.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := p.scriptRepo.Create(txCtx, sc); err != nil {
			return err
		}
		if err := p.scriptRepo.SetCurrent(txCtx, job.ProjectID, sc.ID); err != nil {
			return err
		}

		project, err := p.projectRepo.GetByID(txCtx, job.ProjectID)
		if err != nil {
			return err
		}
		if project != nil {
			project.IncrementScriptCount()
			if project.Status == entity.ProjectStatusDraft {
				project.Status = entity.ProjectStatusActive
			}
			if err := p.projectRepo.Update(txCtx, project); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, _ := json.Marshal(map[string]interface{}{
		"script_id":     sc.ID,
		"version":       sc.Version,
		"file_path":     path,
		"scene_classes": sc.SceneClasses,
		"line_count":    sc.LineCount,
	})
	return result, nil
}

// HandleSnippetIndex 处理 snippet_index 消息。
func (p *Processor) HandleSnippetIndex(ctx context.Context, msg *messaging.Message) error {
	var payload messaging.SnippetIndexMessage
	if err := msg.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal snippet index job: %w", err)
	}

	job, err := p.jobRepo.GetByID(ctx, payload.JobID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job not found: %s", payload.JobID)
	}
	if job.Status == entity.JobStatusCancelled || job.Status == entity.JobStatusCompleted {
		return nil
	}

	if err := p.jobRepo.MarkRunning(ctx, job.ID); err != nil {
		return err
	}

	if p.indexer == nil || !p.indexer.Enabled() {
		p.failJob(ctx, job, retrieval.ErrVectorDisabled.Error())
		return nil
	}

	var count int
	if len(payload.SnippetIDs) > 0 {
		count, err = p.indexer.IndexByIDs(ctx, payload.SnippetIDs)
	} else {
		count, err = p.indexer.IndexUnindexed(ctx, payload.BatchSize)
	}
	if err != nil {
		p.failJob(ctx, job, err.Error())
		return err
	}

	result, _ := json.Marshal(map[string]interface{}{"indexed": count})
	job.Complete(result)
	return p.jobRepo.Update(ctx, job)
}

func (p *Processor) failJob(ctx context.Context, job *entity.GenerationJob, errMsg string) {
	job.Fail(errMsg)
	if err := p.jobRepo.Update(ctx, job); err != nil {
		logger.FromContext(ctx).Error("failed to update failed job", "error", err, "job_id", job.ID)
	}
}

func (p *Processor) resolveLLMOptions(params *ScriptGenParams, project *entity.Project) (provider, model string, temperature *float32, maxTokens *int) {
	provider = strings.TrimSpace(params.Provider)
	if provider == "" {
		provider = strings.TrimSpace(p.cfg.LLM.DefaultProvider)
	}
	model = strings.TrimSpace(params.Model)
	providerCfg, ok := p.cfg.LLM.Providers[provider]
	if model == "" && ok {
		model = strings.TrimSpace(providerCfg.Model)
	}

	temperature = params.Temperature
	if temperature == nil && project != nil && project.Settings != nil && project.Settings.Temperature > 0 {
		t := float32(project.Settings.Temperature)
		temperature = &t
	}

	maxTokens = params.MaxTokens
	if maxTokens == nil && ok && providerCfg.MaxTokens > 0 {
		mt := providerCfg.MaxTokens
		maxTokens = &mt
	}
	return provider, model, temperature, maxTokens
}

func resolveGenerationSettings(params *ScriptGenParams, project *entity.Project) (audience, language string, duration int) {
	audience = strings.TrimSpace(params.Audience)
	language = strings.TrimSpace(params.Language)
	duration = params.TargetDuration

	if project != nil && project.Settings != nil {
		if audience == "" {
			audience = project.Settings.Audience
		}
		if language == "" {
			language = project.Settings.Language
		}
		if duration <= 0 {
			duration = project.Settings.TargetDuration
		}
	}
	// 兜底缺省值由 ScriptGenerateInput.ApplyDefaults 统一填充
	return audience, language, duration
}
