// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"encoding/json"
	"time"

	"e-anim-ai-api/internal/domain/entity"
	"e-anim-ai-api/internal/domain/repository"
)

// JobResponse 任务响应
type JobResponse struct {
	ID           string          `json:"id"`
	ProjectID    string          `json:"project_id,omitempty"`
	ScriptID     string          `json:"script_id,omitempty"`
	JobType      string          `json:"job_type"`
	Status       string          `json:"status"`
	Progress     int             `json:"progress"`
	Priority     int             `json:"priority"`
	OutputResult json.RawMessage `json:"output_result,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	LLMProvider  string          `json:"llm_provider,omitempty"`
	LLMModel     string          `json:"llm_model,omitempty"`
	TokensUsed   int             `json:"tokens_used,omitempty"`
	DurationMs   int             `json:"duration_ms,omitempty"`
	RetryCount   int             `json:"retry_count"`
	CreatedAt    time.Time       `json:"created_at"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// JobListResponse 任务列表响应
type JobListResponse struct {
	Jobs []*JobResponse `json:"jobs"`
}

// JobStatsResponse 任务统计响应
type JobStatsResponse struct {
	TotalJobs       int64 `json:"total_jobs"`
	PendingJobs     int64 `json:"pending_jobs"`
	RunningJobs     int64 `json:"running_jobs"`
	CompletedJobs   int64 `json:"completed_jobs"`
	FailedJobs      int64 `json:"failed_jobs"`
	TotalTokensUsed int64 `json:"total_tokens_used"`
}

// ToJobResponse 将领域实体转换为响应 DTO
func ToJobResponse(j *entity.GenerationJob) *JobResponse {
	if j == nil {
		return nil
	}
	return &JobResponse{
		ID:           j.ID,
		ProjectID:    j.ProjectID,
		ScriptID:     j.ScriptID,
		JobType:      string(j.JobType),
		Status:       string(j.Status),
		Progress:     j.Progress,
		Priority:     j.Priority,
		OutputResult: j.OutputResult,
		ErrorMessage: j.ErrorMessage,
		LLMProvider:  j.LLMProvider,
		LLMModel:     j.LLMModel,
		TokensUsed:   j.TokensPrompt + j.TokensComplete,
		DurationMs:   j.DurationMs,
		RetryCount:   j.RetryCount,
		CreatedAt:    j.CreatedAt,
		StartedAt:    j.StartedAt,
		CompletedAt:  j.CompletedAt,
	}
}

// ToJobListResponse 将领域实体列表转换为响应 DTO
func ToJobListResponse(jobs []*entity.GenerationJob) *JobListResponse {
	resp := &JobListResponse{
		Jobs: make([]*JobResponse, 0, len(jobs)),
	}
	for _, j := range jobs {
		resp.Jobs = append(resp.Jobs, ToJobResponse(j))
	}
	return resp
}

// ToJobStatsResponse 将统计信息转换为响应 DTO
func ToJobStatsResponse(s *repository.JobStats) *JobStatsResponse {
	if s == nil {
		return nil
	}
	return &JobStatsResponse{
		TotalJobs:       s.TotalJobs,
		PendingJobs:     s.PendingJobs,
		RunningJobs:     s.RunningJobs,
		CompletedJobs:   s.CompletedJobs,
		FailedJobs:      s.FailedJobs,
		TotalTokensUsed: s.TotalTokensUsed,
	}
}
