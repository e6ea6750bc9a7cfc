// Package scriptstore 提供描述文件与生成脚本的落盘存储
package scriptstore

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"e-anim-ai-api/internal/config"
)

var tracer = otel.Tracer("scriptstore")

// Store 工作区文件存储
// 目录布局：<root>/briefs/<project>.txt 与 <root>/scripts/<project>/scene_v<N>.py
type Store struct {
	fs         afero.Fs
	root       string
	scriptsDir string
	briefsDir  string
}

// NewStore 创建文件存储
func NewStore(cfg *config.WorkspaceConfig) *Store {
	return NewStoreWithFs(afero.NewOsFs(), cfg)
}

// NewStoreWithFs 使用指定文件系统创建存储（测试用内存文件系统）
func NewStoreWithFs(fs afero.Fs, cfg *config.WorkspaceConfig) *Store {
	return &Store{
		fs:         fs,
		root:       cfg.Root,
		scriptsDir: cfg.ScriptsDir,
		briefsDir:  cfg.BriefsDir,
	}
}

// EnsureLayout 初始化工作区目录
func (s *Store) EnsureLayout(ctx context.Context) error {
	_, span := tracer.Start(ctx, "scriptstore.EnsureLayout")
	defer span.End()

	for _, dir := range []string{s.briefsPath(), s.scriptsPath()} {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to create workspace dir %s: %w", dir, err)
		}
	}
	return nil
}

// LoadBrief 读取动画描述文件
// path 为相对工作区 briefs 目录的文件名
func (s *Store) LoadBrief(ctx context.Context, path string) (string, error) {
	_, span := tracer.Start(ctx, "scriptstore.LoadBrief",
		trace.WithAttributes(attribute.String("file.path", path)))
	defer span.End()

	path, err := resolveWithin(s.briefsPath(), path)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to read brief %s: %w", path, err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("brief %s is empty", path)
	}

	span.SetAttributes(attribute.Int("file.size", len(data)))
	return content, nil
}

// SaveBrief 保存动画描述文件，返回相对 briefs 目录的文件名
func (s *Store) SaveBrief(ctx context.Context, projectID, content string) (string, error) {
	_, span := tracer.Start(ctx, "scriptstore.SaveBrief",
		trace.WithAttributes(attribute.String("project_id", projectID)))
	defer span.End()

	if err := s.fs.MkdirAll(s.briefsPath(), 0o755); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to create briefs dir: %w", err)
	}

	name := projectID + ".txt"
	path := filepath.Join(s.briefsPath(), name)
	if err := afero.WriteFile(s.fs, path, []byte(content), 0o644); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to write brief %s: %w", path, err)
	}

	// 存储相对路径，工作区根目录变更后仍可定位文件
	return name, nil
}

// SaveScript 保存生成的场景脚本，返回相对 scripts 目录的文件路径
func (s *Store) SaveScript(ctx context.Context, projectID string, version int, source string) (string, error) {
	_, span := tracer.Start(ctx, "scriptstore.SaveScript",
		trace.WithAttributes(
			attribute.String("project_id", projectID),
			attribute.Int("script.version", version),
		))
	defer span.End()

	dir := filepath.Join(s.scriptsPath(), projectID)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to create script dir %s: %w", dir, err)
	}

	// 生成的脚本统一以换行结尾
	if !strings.HasSuffix(source, "\n") {
		source += "\n"
	}

	name := filepath.Join(projectID, fmt.Sprintf("scene_v%d.py", version))
	path := filepath.Join(s.scriptsPath(), name)
	if err := afero.WriteFile(s.fs, path, []byte(source), 0o644); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to write script %s: %w", path, err)
	}

	span.SetAttributes(attribute.String("file.path", path))
	return name, nil
}

// LoadScript 读取已落盘的场景脚本
// path 为相对工作区 scripts 目录的文件路径
func (s *Store) LoadScript(ctx context.Context, path string) (string, error) {
	_, span := tracer.Start(ctx, "scriptstore.LoadScript",
		trace.WithAttributes(attribute.String("file.path", path)))
	defer span.End()

	path, err := resolveWithin(s.scriptsPath(), path)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to read script %s: %w", path, err)
	}
	return string(data), nil
}

// DeleteProjectScripts 删除项目的全部脚本文件
func (s *Store) DeleteProjectScripts(ctx context.Context, projectID string) error {
	_, span := tracer.Start(ctx, "scriptstore.DeleteProjectScripts",
		trace.WithAttributes(attribute.String("project_id", projectID)))
	defer span.End()

	dir := filepath.Join(s.scriptsPath(), projectID)
	exists, err := afero.DirExists(s.fs, dir)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !exists {
		return nil
	}

	if err := s.fs.RemoveAll(dir); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete scripts for project %s: %w", projectID, err)
	}
	return nil
}

// resolveWithin 将相对文件名解析到指定目录下。
// brief_path 来自客户端请求，绝对路径与越出目录的 .. 路径一律拒绝。
func resolveWithin(dir, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("file path is empty")
	}
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("absolute file path not allowed: %s", path)
	}
	full := filepath.Join(dir, path)
	if full == dir || !strings.HasPrefix(full, dir+string(filepath.Separator)) {
		return "", fmt.Errorf("file path escapes workspace: %s", path)
	}
	return full, nil
}

func (s *Store) briefsPath() string {
	return filepath.Join(s.root, s.briefsDir)
}

func (s *Store) scriptsPath() string {
	return filepath.Join(s.root, s.scriptsDir)
}
