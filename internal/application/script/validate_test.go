package script

import (
	"reflect"
	"strings"
	"testing"

	apperrors "e-anim-ai-api/pkg/errors"
)

const validScene = `from manim import *


class AreaDemo(Scene):
    def construct(self):
        circle = Circle()
        self.play(Create(circle))
`

func TestValidateSceneSource_OK(t *testing.T) {
	classes, err := ValidateSceneSource("script_gen", validScene)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(classes, []string{"AreaDemo"}) {
		t.Fatalf("classes = %v, want [AreaDemo]", classes)
	}
}

func TestValidateSceneSource_Empty(t *testing.T) {
	_, err := ValidateSceneSource("script_gen", "   \n")
	assertValidationFailed(t, err, "empty")
}

func TestValidateSceneSource_MissingImport(t *testing.T) {
	src := "class AreaDemo(Scene):\n    def construct(self):\n        pass\n"
	_, err := ValidateSceneSource("script_gen", src)
	assertValidationFailed(t, err, "import manim")
}

func TestValidateSceneSource_NoSceneClass(t *testing.T) {
	src := "from manim import *\n\nclass Helper(object):\n    pass\n"
	_, err := ValidateSceneSource("script_gen", src)
	assertValidationFailed(t, err, "no Scene subclass")
}

func TestValidateSceneSource_NoConstruct(t *testing.T) {
	src := "from manim import *\n\nclass AreaDemo(Scene):\n    pass\n"
	_, err := ValidateSceneSource("script_gen", src)
	assertValidationFailed(t, err, "construct")
}

func assertValidationFailed(t *testing.T, err error, msgPart string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != apperrors.CodeValidationFailed {
		t.Fatalf("code = %s, want %s", appErr.Code, apperrors.CodeValidationFailed)
	}
	if !strings.Contains(err.Error(), msgPart) {
		t.Fatalf("error %q should mention %q", err.Error(), msgPart)
	}
}
