// Package main 系统初始化入口：建表、工作区目录与向量集合
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"e-anim-ai-api/internal/config"
	"e-anim-ai-api/internal/domain/entity"
	"e-anim-ai-api/internal/infrastructure/persistence/milvus"
	"e-anim-ai-api/internal/infrastructure/scriptstore"
	"e-anim-ai-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化数据层（仅 PostgreSQL）
	dataLayer, cleanup, err := wire.InitializePostgresOnly(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	// 3. 建表
	fmt.Println("Running database migrations...")
	if err := dataLayer.PgClient.DB().WithContext(ctx).AutoMigrate(
		&entity.Project{},
		&entity.SceneScript{},
		&entity.GenerationJob{},
		&entity.Snippet{},
		&entity.LLMUsageEvent{},
	); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	fmt.Println("Database migrations completed.")

	// 4. 初始化工作区目录
	store := scriptstore.NewStore(&cfg.Workspace)
	if err := store.EnsureLayout(ctx); err != nil {
		log.Fatalf("failed to ensure workspace layout: %v", err)
	}
	fmt.Printf("Workspace ready at %s.\n", cfg.Workspace.Root)

	// 5. 初始化向量集合（检索功能开启时）
	if cfg.Features.Retrieval.Enabled {
		milvusClient, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
		if err != nil {
			// 向量库可选，缺失时只提示
			fmt.Printf("Milvus not available, skipping vector collection setup: %v\n", err)
		} else {
			defer func() { _ = milvusClient.Close() }()
			repo := milvus.NewRepository(milvusClient)
			if err := repo.EnsureSnippetsCollection(ctx); err != nil {
				log.Fatalf("failed to ensure snippets collection: %v", err)
			}
			fmt.Println("Vector collection ready.")
		}
	}

	// 6. 可选的示例片段（便于新环境验证检索链路）
	if os.Getenv("BOOTSTRAP_SEED_SNIPPETS") == "true" {
		fmt.Println("Seeding example snippets...")
		for _, s := range seedSnippets() {
			if err := dataLayer.SnippetRepo.Create(ctx, s); err != nil {
				log.Fatalf("failed to seed snippet %q: %v", s.Title, err)
			}
		}
		fmt.Println("Example snippets seeded (run the index job to vectorize them).")
	}

	fmt.Println("Bootstrap completed successfully.")
}

// seedSnippets 少量覆盖常见 Manim 模式的示例片段
func seedSnippets() []*entity.Snippet {
	type seed struct {
		title       string
		category    entity.SnippetCategory
		description string
		source      string
	}
	seeds := []seed{
		{
			title:       "Write and fade a title",
			category:    entity.SnippetCategoryText,
			description: "Shows a centered title with the Write animation, holds, then fades it out.",
			source: `from manim import *


class TitleCard(Scene):
    def construct(self):
        title = Text("Pythagorean Theorem", font_size=64)
        self.play(Write(title))
        self.wait(2)
        self.play(FadeOut(title))
`,
		},
		{
			title:       "Animate an equation transform",
			category:    entity.SnippetCategoryAlgebra,
			description: "Transforms one MathTex equation into another with TransformMatchingTex.",
			source: `from manim import *


class EquationTransform(Scene):
    def construct(self):
        lhs = MathTex("a^2 + b^2", "=", "c^2")
        rhs = MathTex("c", "=", r"\sqrt{a^2 + b^2}")
        self.play(Write(lhs))
        self.wait(1)
        self.play(TransformMatchingTex(lhs, rhs))
        self.wait(2)
`,
		},
		{
			title:       "Plot a function with axes",
			category:    entity.SnippetCategoryGraphing,
			description: "Draws labeled axes and animates the plot of a quadratic curve.",
			source: `from manim import *


class QuadraticPlot(Scene):
    def construct(self):
        axes = Axes(x_range=[-3, 3], y_range=[0, 9], axis_config={"include_tip": True})
        labels = axes.get_axis_labels(x_label="x", y_label="y")
        curve = axes.plot(lambda x: x ** 2, color=BLUE)
        self.play(Create(axes), Write(labels))
        self.play(Create(curve), run_time=2)
        self.wait(2)
`,
		},
	}

	snippets := make([]*entity.Snippet, 0, len(seeds))
	for _, s := range seeds {
		snippet := entity.NewSnippet(s.title, s.category, s.source)
		snippet.Description = s.description
		snippets = append(snippets, snippet)
	}
	return snippets
}
