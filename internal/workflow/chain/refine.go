package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	llmctx "e-anim-ai-api/internal/domain/service"
	wfmodel "e-anim-ai-api/internal/workflow/model"
	workflowport "e-anim-ai-api/internal/workflow/port"
	workflowprompt "e-anim-ai-api/internal/workflow/prompt"
)

type RefineChain struct {
	factory workflowport.ChatModelFactory
}

func NewRefineChain(factory workflowport.ChatModelFactory) *RefineChain {
	return &RefineChain{factory: factory}
}

func (c *RefineChain) Invoke(ctx context.Context, in *wfmodel.ScriptRefineInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Provider) == "" {
		return nil, fmt.Errorf("provider is required")
	}
	if strings.TrimSpace(in.CurrentSource) == "" {
		return nil, fmt.Errorf("current source is required")
	}
	if strings.TrimSpace(in.Instructions) == "" {
		return nil, fmt.Errorf("instructions are required")
	}

	ctx = llmctx.WithWorkflowProvider(ctx, "script_refine", strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatRefineMessages(ctx, in)
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs, buildScriptModelOptions(in.Temperature, in.MaxTokens, in.Model)...)
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}
	return outMsg, nil
}

func formatRefineMessages(ctx context.Context, in *wfmodel.ScriptRefineInput) ([]*schema.Message, error) {
	tpl, err := scriptPromptRegistry.ChatTemplate(workflowprompt.PromptScriptRefineV1)
	if err != nil {
		return nil, err
	}
	// current_source 不做 TrimSpace 之外的处理，缩进对 Python 语义敏感
	vars := map[string]any{
		"project_title":     strings.TrimSpace(in.ProjectTitle),
		"brief":             strings.TrimSpace(in.Brief),
		"current_source":    strings.TrimRight(in.CurrentSource, "\n"),
		"instructions":      strings.TrimSpace(in.Instructions),
		"retrieved_context": strings.TrimSpace(in.RetrievedContext),
	}
	return tpl.Format(ctx, vars)
}
