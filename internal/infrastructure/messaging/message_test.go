package messaging

import (
	"testing"
	"time"
)

func TestNewMessageAndPayload(t *testing.T) {
	type payload struct {
		JobID  string `json:"job_id"`
		Params map[string]interface{}
	}

	msg, err := NewMessage("m1", "script_gen", "p1", payload{
		JobID:  "j1",
		Params: map[string]interface{}{"provider": "xai"},
	})
	if err != nil {
		t.Fatalf("NewMessage error: %v", err)
	}
	if msg.ID != "m1" || msg.Type != "script_gen" || msg.ProjectID != "p1" {
		t.Fatalf("unexpected message fields: %+v", msg)
	}
	if msg.CreatedAt.IsZero() {
		t.Fatal("CreatedAt should be set")
	}

	var got payload
	if err := msg.UnmarshalPayload(&got); err != nil {
		t.Fatalf("UnmarshalPayload error: %v", err)
	}
	if got.JobID != "j1" {
		t.Fatalf("payload job id = %q, want j1", got.JobID)
	}
}

func TestMessageMetadata(t *testing.T) {
	msg := &Message{}
	if msg.GetMetadata("retry") != "" {
		t.Fatal("missing metadata should return empty string")
	}
	msg.SetMetadata("retry", "2")
	if msg.GetMetadata("retry") != "2" {
		t.Fatalf("metadata retry = %q, want 2", msg.GetMetadata("retry"))
	}
}

func TestDLQStream(t *testing.T) {
	if got := StreamScriptGen.DLQStream(); got != "dlq:stream:script:gen" {
		t.Fatalf("DLQStream = %q", got)
	}
	if got := StreamSnippetIndex.DLQStream(); got != "dlq:stream:snippet:index" {
		t.Fatalf("DLQStream = %q", got)
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := BackoffConfig{Initial: time.Second, Max: 10 * time.Second, Multiplier: 2}

	cases := []struct {
		retries int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 10 * time.Second}, // 封顶
		{10, 10 * time.Second},
	}
	for _, tc := range cases {
		if got := cfg.CalculateBackoff(tc.retries); got != tc.want {
			t.Errorf("CalculateBackoff(%d) = %v, want %v", tc.retries, got, tc.want)
		}
	}
}
