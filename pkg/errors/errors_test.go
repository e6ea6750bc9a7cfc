package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNewMapsHTTPStatus(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidParam, http.StatusBadRequest},
		{CodeValidationFailed, http.StatusBadRequest},
		{CodeProjectNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeBudgetExceeded, http.StatusTooManyRequests},
		{CodeLLMProviderError, http.StatusServiceUnavailable},
		{CodeDatabaseError, http.StatusInternalServerError},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := New(tc.code, "x").HTTPStatus; got != tc.want {
			t.Errorf("New(%s).HTTPStatus = %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, CodeDatabaseError, "failed to load project")

	if !errors.Is(err, cause) {
		t.Fatal("wrapped error should match cause via errors.Is")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("Error() should include cause, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), string(CodeDatabaseError)) {
		t.Fatalf("Error() should include code, got %q", err.Error())
	}
}

func TestAsAppError(t *testing.T) {
	base := New(CodeScriptNotFound, "script not found")
	wrapped := fmt.Errorf("handler: %w", base)

	got := AsAppError(wrapped)
	if got == nil {
		t.Fatal("AsAppError should unwrap to AppError")
	}
	if got.Code != CodeScriptNotFound {
		t.Fatalf("code = %s, want %s", got.Code, CodeScriptNotFound)
	}

	if AsAppError(errors.New("plain")) != nil {
		t.Fatal("plain error should not convert to AppError")
	}
	if IsAppError(errors.New("plain")) {
		t.Fatal("IsAppError should be false for plain error")
	}
}

func TestWithDetail(t *testing.T) {
	err := New(CodeInvalidParam, "bad request").WithDetail("field title is required")
	if err.Detail != "field title is required" {
		t.Fatalf("detail = %q", err.Detail)
	}
}
