package entity

import (
	"reflect"
	"testing"
)

func TestNewSceneScript(t *testing.T) {
	s := NewSceneScript("p1", 3)
	if s.ProjectID != "p1" || s.Version != 3 {
		t.Fatalf("unexpected fields: %+v", s)
	}
	if s.Status != ScriptStatusDraft {
		t.Fatalf("status = %s, want draft", s.Status)
	}
	if s.Current {
		t.Fatal("new script must not be current")
	}
}

func TestSceneScriptSetSource(t *testing.T) {
	s := NewSceneScript("p1", 1)
	s.SetSource("from manim import *\n\nclass Demo(Scene):\n    pass", []string{"Demo"})

	if s.LineCount != 4 {
		t.Fatalf("line count = %d, want 4", s.LineCount)
	}
	if !reflect.DeepEqual(s.SceneClasses, []string{"Demo"}) {
		t.Fatalf("scene classes = %v", s.SceneClasses)
	}

	s.SetSource("", nil)
	if s.LineCount != 0 {
		t.Fatalf("empty source line count = %d, want 0", s.LineCount)
	}
}

func TestSceneScriptStatusTransitions(t *testing.T) {
	s := NewSceneScript("p1", 1)
	s.MarkReady("scripts/p1/scene_v1.py")
	if s.Status != ScriptStatusReady || s.FilePath != "scripts/p1/scene_v1.py" {
		t.Fatalf("after MarkReady: status=%s path=%s", s.Status, s.FilePath)
	}

	s.Current = true
	s.Supersede()
	if s.Status != ScriptStatusSuperseded || s.Current {
		t.Fatalf("after Supersede: status=%s current=%v", s.Status, s.Current)
	}
}
