package generation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/afero"

	"e-anim-ai-api/internal/config"
	"e-anim-ai-api/internal/domain/entity"
	"e-anim-ai-api/internal/domain/repository"
	"e-anim-ai-api/internal/infrastructure/scriptstore"
	wfmodel "e-anim-ai-api/internal/workflow/model"
)

type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeScriptRepo struct {
	nextVersion int
	created     []*entity.SceneScript
	currentID   string
}

func (f *fakeScriptRepo) Create(ctx context.Context, sc *entity.SceneScript) error {
	sc.ID = fmt.Sprintf("script-%d", len(f.created)+1)
	f.created = append(f.created, sc)
	return nil
}

func (f *fakeScriptRepo) GetByID(ctx context.Context, id string) (*entity.SceneScript, error) {
	return nil, nil
}

func (f *fakeScriptRepo) Update(ctx context.Context, sc *entity.SceneScript) error { return nil }
func (f *fakeScriptRepo) Delete(ctx context.Context, id string) error              { return nil }

func (f *fakeScriptRepo) ListByProject(ctx context.Context, projectID string, filter *repository.ScriptFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.SceneScript], error) {
	return nil, nil
}

func (f *fakeScriptRepo) GetCurrent(ctx context.Context, projectID string) (*entity.SceneScript, error) {
	return nil, nil
}

func (f *fakeScriptRepo) GetByVersion(ctx context.Context, projectID string, version int) (*entity.SceneScript, error) {
	return nil, nil
}

func (f *fakeScriptRepo) NextVersion(ctx context.Context, projectID string) (int, error) {
	return f.nextVersion, nil
}

func (f *fakeScriptRepo) SetCurrent(ctx context.Context, projectID, scriptID string) error {
	f.currentID = scriptID
	return nil
}

type fakeProjectRepo struct {
	project *entity.Project
}

func (f *fakeProjectRepo) Create(ctx context.Context, p *entity.Project) error { return nil }

func (f *fakeProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	return f.project, nil
}

func (f *fakeProjectRepo) Update(ctx context.Context, p *entity.Project) error {
	f.project = p
	return nil
}

func (f *fakeProjectRepo) Delete(ctx context.Context, id string) error { return nil }

func (f *fakeProjectRepo) List(ctx context.Context, filter *repository.ProjectFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	return nil, nil
}

func (f *fakeProjectRepo) UpdateStatus(ctx context.Context, id string, status entity.ProjectStatus) error {
	return nil
}

func newPersistFixture(fs afero.Fs) (*Processor, *fakeScriptRepo, *fakeProjectRepo, *scriptstore.Store) {
	store := scriptstore.NewStoreWithFs(fs, &config.WorkspaceConfig{
		Root:       "/workspace",
		ScriptsDir: "scripts",
		BriefsDir:  "briefs",
	})
	scriptRepo := &fakeScriptRepo{nextVersion: 1}
	projectRepo := &fakeProjectRepo{project: entity.NewProject("勾股定理", "geometry")}
	projectRepo.project.ID = "p1"

	p := NewProcessor(&config.Config{}, projectRepo, scriptRepo, nil, fakeTx{}, nil, nil, nil, store, nil)
	return p, scriptRepo, projectRepo, store
}

func genOutput() *wfmodel.ScriptGenerateOutput {
	return &wfmodel.ScriptGenerateOutput{
		Source:       "from manim import *\n\nclass Demo(Scene):\n    def construct(self):\n        pass",
		SceneClasses: []string{"Demo"},
		Meta:         wfmodel.LLMUsageMeta{Provider: "xai", Model: "grok-3", GeneratedAt: time.Now()},
	}
}

func TestPersistScript(t *testing.T) {
	p, scriptRepo, projectRepo, store := newPersistFixture(afero.NewMemMapFs())
	job := entity.NewGenerationJob("p1", entity.JobTypeScriptGen, nil)
	job.ID = "j1"

	result, err := p.persistScript(context.Background(), job, &ScriptGenParams{}, genOutput())
	if err != nil {
		t.Fatalf("persistScript error: %v", err)
	}
	if result == nil {
		t.Fatal("expected job result payload")
	}

	if len(scriptRepo.created) != 1 {
		t.Fatalf("expected 1 script row, got %d", len(scriptRepo.created))
	}
	sc := scriptRepo.created[0]
	if sc.Status != entity.ScriptStatusReady || sc.FilePath != "p1/scene_v1.py" {
		t.Fatalf("row: status=%s path=%s", sc.Status, sc.FilePath)
	}
	if scriptRepo.currentID != sc.ID {
		t.Fatalf("current id = %q, want %q", scriptRepo.currentID, sc.ID)
	}
	if projectRepo.project.ScriptCount != 1 || projectRepo.project.Status != entity.ProjectStatusActive {
		t.Fatalf("project: count=%d status=%s", projectRepo.project.ScriptCount, projectRepo.project.Status)
	}

	if _, err := store.LoadScript(context.Background(), sc.FilePath); err != nil {
		t.Fatalf("script file should exist: %v", err)
	}
}

func TestPersistScript_FileWriteFailureLeavesNoRow(t *testing.T) {
	// 只读文件系统模拟落盘失败
	p, scriptRepo, projectRepo, _ := newPersistFixture(afero.NewReadOnlyFs(afero.NewMemMapFs()))
	job := entity.NewGenerationJob("p1", entity.JobTypeScriptGen, nil)
	job.ID = "j1"

	if _, err := p.persistScript(context.Background(), job, &ScriptGenParams{}, genOutput()); err == nil {
		t.Fatal("expected error when script file cannot be written")
	}
	if len(scriptRepo.created) != 0 {
		t.Fatalf("no script row should be created, got %d", len(scriptRepo.created))
	}
	if projectRepo.project.ScriptCount != 0 {
		t.Fatalf("script count should stay 0, got %d", projectRepo.project.ScriptCount)
	}
}
