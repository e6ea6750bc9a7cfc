package entity

import (
	"encoding/json"
	"testing"
)

func TestGenerationJobLifecycle(t *testing.T) {
	job := NewGenerationJob("p1", JobTypeScriptGen, json.RawMessage(`{"provider":"xai"}`))
	if job.Status != JobStatusPending {
		t.Fatalf("new job status = %s, want pending", job.Status)
	}

	job.Start()
	if job.Status != JobStatusRunning || job.StartedAt == nil {
		t.Fatalf("after Start: status=%s startedAt=%v", job.Status, job.StartedAt)
	}

	job.Complete(json.RawMessage(`{"script_id":"s1"}`))
	if job.Status != JobStatusCompleted {
		t.Fatalf("after Complete: status = %s", job.Status)
	}
	if job.Progress != 100 {
		t.Fatalf("after Complete: progress = %d, want 100", job.Progress)
	}
	if job.CompletedAt == nil {
		t.Fatal("after Complete: CompletedAt should be set")
	}
}

func TestGenerationJobFailAndRetry(t *testing.T) {
	job := NewGenerationJob("p1", JobTypeScriptGen, nil)
	job.Start()
	job.Fail("llm timeout")

	if job.Status != JobStatusFailed || job.ErrorMessage != "llm timeout" {
		t.Fatalf("after Fail: status=%s err=%q", job.Status, job.ErrorMessage)
	}
	if !job.CanRetry(3) {
		t.Fatal("failed job with 0 retries should be retryable")
	}

	job.Retry()
	if job.Status != JobStatusPending || job.RetryCount != 1 {
		t.Fatalf("after Retry: status=%s retries=%d", job.Status, job.RetryCount)
	}
	if job.StartedAt != nil || job.CompletedAt != nil || job.ErrorMessage != "" {
		t.Fatal("Retry should reset execution state")
	}

	job.RetryCount = 3
	job.Status = JobStatusFailed
	if job.CanRetry(3) {
		t.Fatal("job at retry limit should not be retryable")
	}
}

func TestGenerationJobCancel(t *testing.T) {
	job := NewGenerationJob("p1", JobTypeSnippetIndex, nil)
	if !job.Cancel() {
		t.Fatal("pending job should be cancellable")
	}
	if job.Status != JobStatusCancelled {
		t.Fatalf("status = %s, want cancelled", job.Status)
	}

	done := NewGenerationJob("p1", JobTypeScriptGen, nil)
	done.Start()
	done.Complete(nil)
	if done.Cancel() {
		t.Fatal("completed job must not be cancellable")
	}
}

func TestGenerationJobUpdateProgress(t *testing.T) {
	job := NewGenerationJob("p1", JobTypeScriptGen, nil)
	job.UpdateProgress(-5)
	if job.Progress != 0 {
		t.Fatalf("progress = %d, want 0", job.Progress)
	}
	job.UpdateProgress(150)
	if job.Progress != 100 {
		t.Fatalf("progress = %d, want 100", job.Progress)
	}
	job.UpdateProgress(42)
	if job.Progress != 42 {
		t.Fatalf("progress = %d, want 42", job.Progress)
	}
}
