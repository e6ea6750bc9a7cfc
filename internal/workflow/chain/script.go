package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	llmctx "e-anim-ai-api/internal/domain/service"
	wfmodel "e-anim-ai-api/internal/workflow/model"
	workflowport "e-anim-ai-api/internal/workflow/port"
	workflowprompt "e-anim-ai-api/internal/workflow/prompt"
)

type ScriptChain struct {
	factory workflowport.ChatModelFactory
}

func NewScriptChain(factory workflowport.ChatModelFactory) *ScriptChain {
	return &ScriptChain{factory: factory}
}

func (c *ScriptChain) Invoke(ctx context.Context, in *wfmodel.ScriptGenerateInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if err := validateScriptInput(in); err != nil {
		return nil, err
	}

	ctx = llmctx.WithWorkflowProvider(ctx, "script_generate", strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatScriptMessages(ctx, in)
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

// Stream 返回 Eino StreamReader；调用方负责 Close()。
// 约定：流可能在最后返回一个 Content 为空但包含 Usage 的消息，用于 Token 统计。
func (c *ScriptChain) Stream(ctx context.Context, in *wfmodel.ScriptGenerateInput) (*schema.StreamReader[*schema.Message], error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if err := validateScriptInput(in); err != nil {
		return nil, err
	}

	ctx = llmctx.WithWorkflowProvider(ctx, "script_stream", strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatScriptMessages(ctx, in)
	if err != nil {
		return nil, err
	}
	return chatModel.Stream(ctx, msgs, buildScriptModelOptions(in.Temperature, in.MaxTokens, in.Model)...)
}

func validateScriptInput(in *wfmodel.ScriptGenerateInput) error {
	if in == nil {
		return fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Provider) == "" {
		return fmt.Errorf("provider is required")
	}
	if strings.TrimSpace(in.Brief) == "" {
		return fmt.Errorf("brief is required")
	}
	return nil
}

var scriptPromptRegistry = workflowprompt.NewRegistry()

func formatScriptMessages(ctx context.Context, in *wfmodel.ScriptGenerateInput) ([]*schema.Message, error) {
	tpl, err := scriptPromptRegistry.ChatTemplate(workflowprompt.PromptScriptGenV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"project_title":     strings.TrimSpace(in.ProjectTitle),
		"topic":             strings.TrimSpace(in.Topic),
		"audience":          strings.TrimSpace(in.Audience),
		"language":          strings.TrimSpace(in.Language),
		"target_duration":   in.TargetDuration,
		"brief":             strings.TrimSpace(in.Brief),
		"retrieved_context": strings.TrimSpace(in.RetrievedContext),
	}
	return tpl.Format(ctx, vars)
}

func buildScriptModelOptions(temperature *float32, maxTokens *int, modelName string) []model.Option {
	opts := make([]model.Option, 0, 4)
	if temperature != nil {
		opts = append(opts, model.WithTemperature(*temperature))
	}
	if maxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*maxTokens))
	}
	if strings.TrimSpace(modelName) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(modelName)))
	}
	return opts
}
