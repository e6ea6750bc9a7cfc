package script

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	workflowchain "e-anim-ai-api/internal/workflow/chain"
	wfmodel "e-anim-ai-api/internal/workflow/model"
	"e-anim-ai-api/internal/workflow/node"
	workflowport "e-anim-ai-api/internal/workflow/port"
	"e-anim-ai-api/pkg/metrics"
)

type Generator struct {
	genChain    *workflowchain.ScriptChain
	refineChain *workflowchain.RefineChain
}

func NewGenerator(factory workflowport.ChatModelFactory) *Generator {
	return &Generator{
		genChain:    workflowchain.NewScriptChain(factory),
		refineChain: workflowchain.NewRefineChain(factory),
	}
}

// Generate 生成全新的场景脚本：调用 LLM、提取代码、校验结构。
func (g *Generator) Generate(ctx context.Context, in *wfmodel.ScriptGenerateInput) (*wfmodel.ScriptGenerateOutput, error) {
	if g == nil || g.genChain == nil {
		return nil, fmt.Errorf("script workflow not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	started := time.Now()
	outMsg, err := g.genChain.Invoke(ctx, in)
	if err != nil {
		metrics.ScriptGenerationTotal.WithLabelValues("script_generate", "error").Inc()
		return nil, err
	}

	out, err := g.buildOutput(ctx, "script_generate", in.Provider, in.Model, in.Temperature, outMsg)
	if err != nil {
		metrics.ScriptGenerationTotal.WithLabelValues("script_generate", "invalid").Inc()
		return nil, err
	}

	metrics.ScriptGenerationTotal.WithLabelValues("script_generate", "ok").Inc()
	metrics.ScriptGenerationDuration.WithLabelValues("script_generate").Observe(time.Since(started).Seconds())
	return out, nil
}

// Refine 基于当前脚本与修改意见生成新版本。
func (g *Generator) Refine(ctx context.Context, in *wfmodel.ScriptRefineInput) (*wfmodel.ScriptGenerateOutput, error) {
	if g == nil || g.refineChain == nil {
		return nil, fmt.Errorf("script workflow not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	started := time.Now()
	outMsg, err := g.refineChain.Invoke(ctx, in)
	if err != nil {
		metrics.ScriptGenerationTotal.WithLabelValues("script_refine", "error").Inc()
		return nil, err
	}

	out, err := g.buildOutput(ctx, "script_refine", in.Provider, in.Model, in.Temperature, outMsg)
	if err != nil {
		metrics.ScriptGenerationTotal.WithLabelValues("script_refine", "invalid").Inc()
		return nil, err
	}

	metrics.ScriptGenerationTotal.WithLabelValues("script_refine", "ok").Inc()
	metrics.ScriptGenerationDuration.WithLabelValues("script_refine").Observe(time.Since(started).Seconds())
	return out, nil
}

// Stream 返回 Eino StreamReader；调用方负责 Close()。
// 注意：流式输出不经过代码提取与校验，仅供前端预览。
func (g *Generator) Stream(ctx context.Context, in *wfmodel.ScriptGenerateInput) (*schema.StreamReader[*schema.Message], error) {
	if g == nil || g.genChain == nil {
		return nil, fmt.Errorf("script workflow not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	return g.genChain.Stream(ctx, in)
}

func (g *Generator) buildOutput(_ context.Context, workflow, provider, modelName string, temperature *float32, outMsg *schema.Message) (*wfmodel.ScriptGenerateOutput, error) {
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}

	source := node.ExtractPythonSource(outMsg.Content)
	classes, err := ValidateSceneSource(workflow, source)
	if err != nil {
		return nil, err
	}

	meta := wfmodel.LLMUsageMeta{
		Provider:    strings.TrimSpace(provider),
		Model:       strings.TrimSpace(modelName),
		GeneratedAt: time.Now().UTC(),
	}
	if temperature != nil {
		meta.Temperature = float64(*temperature)
	}
	if outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
		meta.PromptTokens = outMsg.ResponseMeta.Usage.PromptTokens
		meta.CompletionTokens = outMsg.ResponseMeta.Usage.CompletionTokens
	}

	metrics.ScriptSourceLines.WithLabelValues(workflow).Observe(float64(strings.Count(source, "\n") + 1))
	metrics.ScriptSceneClasses.WithLabelValues(workflow).Observe(float64(len(classes)))

	return &wfmodel.ScriptGenerateOutput{
		Source:       source,
		SceneClasses: classes,
		Meta:         meta,
	}, nil
}
