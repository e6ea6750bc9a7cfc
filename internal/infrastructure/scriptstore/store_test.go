package scriptstore

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"e-anim-ai-api/internal/config"
)

func newMemStore() *Store {
	return NewStoreWithFs(afero.NewMemMapFs(), &config.WorkspaceConfig{
		Root:       "workspace",
		ScriptsDir: "scripts",
		BriefsDir:  "briefs",
	})
}

func TestEnsureLayout(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStoreWithFs(fs, &config.WorkspaceConfig{
		Root:       "workspace",
		ScriptsDir: "scripts",
		BriefsDir:  "briefs",
	})

	if err := store.EnsureLayout(context.Background()); err != nil {
		t.Fatalf("EnsureLayout error: %v", err)
	}
	for _, dir := range []string{"workspace/briefs", "workspace/scripts"} {
		ok, err := afero.DirExists(fs, dir)
		if err != nil || !ok {
			t.Fatalf("dir %s should exist (ok=%v err=%v)", dir, ok, err)
		}
	}
}

func TestSaveAndLoadBrief(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	path, err := store.SaveBrief(ctx, "p1", "演示勾股定理的几何证明\n")
	if err != nil {
		t.Fatalf("SaveBrief error: %v", err)
	}
	if path != "p1.txt" {
		t.Fatalf("brief path = %q, want p1.txt", path)
	}

	got, err := store.LoadBrief(ctx, path)
	if err != nil {
		t.Fatalf("LoadBrief error: %v", err)
	}
	if got != "演示勾股定理的几何证明" {
		t.Fatalf("brief = %q", got)
	}
}

func TestLoadBrief_Missing(t *testing.T) {
	store := newMemStore()
	if _, err := store.LoadBrief(context.Background(), "missing.txt"); err == nil {
		t.Fatal("expected error for missing brief")
	}
}

func TestLoadBrief_Empty(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	path, err := store.SaveBrief(ctx, "p1", "   \n")
	if err != nil {
		t.Fatalf("SaveBrief error: %v", err)
	}
	if _, err := store.LoadBrief(ctx, path); err == nil {
		t.Fatal("expected error for empty brief")
	}
}

func TestLoadBrief_RejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/etc/secret.txt", []byte("root:x:0:0"), 0o644)
	_ = afero.WriteFile(fs, "/outside.txt", []byte("outside the workspace"), 0o644)

	store := NewStoreWithFs(fs, &config.WorkspaceConfig{
		Root:       "/workspace",
		ScriptsDir: "scripts",
		BriefsDir:  "briefs",
	})

	for _, path := range []string{
		"/etc/secret.txt",
		"../../outside.txt",
		"../scripts/x.py",
		"..",
		"",
	} {
		if _, err := store.LoadBrief(ctx, path); err == nil {
			t.Errorf("LoadBrief(%q) should be rejected", path)
		}
	}
}

func TestLoadScript_RejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/etc/secret.txt", []byte("root:x:0:0"), 0o644)

	store := NewStoreWithFs(fs, &config.WorkspaceConfig{
		Root:       "/workspace",
		ScriptsDir: "scripts",
		BriefsDir:  "briefs",
	})

	for _, path := range []string{"/etc/secret.txt", "../briefs/p1.txt", "p1/../../x.py"} {
		if _, err := store.LoadScript(ctx, path); err == nil {
			t.Errorf("LoadScript(%q) should be rejected", path)
		}
	}

	// 目录内的多级相对路径仍然可用
	if _, err := store.SaveScript(ctx, "p1", 1, "x = 1"); err != nil {
		t.Fatalf("SaveScript error: %v", err)
	}
	if _, err := store.LoadScript(ctx, "p1/scene_v1.py"); err != nil {
		t.Fatalf("LoadScript error: %v", err)
	}
}

func TestSaveAndLoadScript(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	source := "from manim import *\n\nclass Demo(Scene):\n    pass"
	path, err := store.SaveScript(ctx, "p1", 2, source)
	if err != nil {
		t.Fatalf("SaveScript error: %v", err)
	}
	if path != "p1/scene_v2.py" {
		t.Fatalf("script path = %q, want p1/scene_v2.py", path)
	}

	got, err := store.LoadScript(ctx, path)
	if err != nil {
		t.Fatalf("LoadScript error: %v", err)
	}
	// 落盘时补齐末尾换行
	if !strings.HasSuffix(got, "pass\n") {
		t.Fatalf("script should end with newline, got %q", got)
	}
}

func TestDeleteProjectScripts(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	if _, err := store.SaveScript(ctx, "p1", 1, "x = 1"); err != nil {
		t.Fatalf("SaveScript error: %v", err)
	}
	if _, err := store.SaveScript(ctx, "p1", 2, "x = 2"); err != nil {
		t.Fatalf("SaveScript error: %v", err)
	}

	if err := store.DeleteProjectScripts(ctx, "p1"); err != nil {
		t.Fatalf("DeleteProjectScripts error: %v", err)
	}
	if _, err := store.LoadScript(ctx, "p1/scene_v1.py"); err == nil {
		t.Fatal("scripts should be removed")
	}

	// 目录不存在时应当是 no-op
	if err := store.DeleteProjectScripts(ctx, "p2"); err != nil {
		t.Fatalf("DeleteProjectScripts on missing dir: %v", err)
	}
}
