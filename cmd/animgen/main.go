// Package main 单次脚本生成 CLI（animgen）
// 读取一份动画描述文本，调用一次 LLM，将生成的 Manim 场景脚本写入目标文件。
// 不依赖数据库与消息队列，适合本地试跑与管线集成。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	appscript "e-anim-ai-api/internal/application/script"
	"e-anim-ai-api/internal/config"
	"e-anim-ai-api/internal/infrastructure/llm"
	einoobs "e-anim-ai-api/internal/observability/eino"
	wfmodel "e-anim-ai-api/internal/workflow/model"
	"e-anim-ai-api/pkg/logger"
)

func main() {
	var (
		inputPath  = flag.String("input", "", "path to the animation brief text file (required)")
		outputPath = flag.String("output", "scene.py", "path to write the generated Manim script")
		provider   = flag.String("provider", "", "LLM provider name (defaults to config)")
		modelName  = flag.String("model", "", "model name (defaults to provider config)")
		title      = flag.String("title", "", "animation title injected into the prompt")
		audience   = flag.String("audience", "", "target audience, e.g. \"high school students\"")
		language   = flag.String("language", "", "narration language for on-screen text")
		duration   = flag.Int("duration", 0, "target animation duration in seconds")
	)
	flag.Parse()

	if strings.TrimSpace(*inputPath) == "" {
		fmt.Fprintln(os.Stderr, "animgen: -input is required")
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "animgen: failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	ctx := context.Background()
	einoobs.Init(nil)

	fs := afero.NewOsFs()
	brief, err := afero.ReadFile(fs, *inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "animgen: failed to read brief: %v\n", err)
		os.Exit(1)
	}
	if strings.TrimSpace(string(brief)) == "" {
		fmt.Fprintln(os.Stderr, "animgen: brief file is empty")
		os.Exit(1)
	}

	providerName := strings.TrimSpace(*provider)
	if providerName == "" {
		providerName = cfg.LLM.DefaultProvider
	}
	if _, ok := cfg.LLM.Providers[providerName]; !ok {
		fmt.Fprintf(os.Stderr, "animgen: provider %q not found in config\n", providerName)
		os.Exit(1)
	}

	generator := appscript.NewGenerator(llm.NewEinoFactory(cfg))

	in := &wfmodel.ScriptGenerateInput{
		ProjectTitle:   strings.TrimSpace(*title),
		Brief:          string(brief),
		Audience:       strings.TrimSpace(*audience),
		Language:       strings.TrimSpace(*language),
		TargetDuration: *duration,
		Provider:       providerName,
		Model:          strings.TrimSpace(*modelName),
	}
	in.ApplyDefaults()

	fmt.Printf("Generating Manim script via %s...\n", providerName)
	out, err := generator.Generate(ctx, in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "animgen: generation failed: %v\n", err)
		os.Exit(1)
	}

	if dir := filepath.Dir(*outputPath); dir != "." && dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "animgen: failed to create output dir: %v\n", err)
			os.Exit(1)
		}
	}
	if err := afero.WriteFile(fs, *outputPath, []byte(out.Source), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "animgen: failed to write script: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s (%d scene classes: %s)\n",
		*outputPath,
		len(out.SceneClasses),
		strings.Join(out.SceneClasses, ", "),
	)
	if out.Meta.TotalTokens() > 0 {
		fmt.Printf("Tokens used: prompt=%d completion=%d\n", out.Meta.PromptTokens, out.Meta.CompletionTokens)
	}

	fmt.Println("Render it with: manim -pqh", *outputPath)
}
