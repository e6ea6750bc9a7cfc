package model

import "testing"

func TestApplyDefaults(t *testing.T) {
	in := &ScriptGenerateInput{Brief: "演示圆的面积"}
	in.ApplyDefaults()

	if in.Audience != DefaultAudience {
		t.Fatalf("audience = %q, want %q", in.Audience, DefaultAudience)
	}
	if in.Language != DefaultLanguage {
		t.Fatalf("language = %q, want %q", in.Language, DefaultLanguage)
	}
	if in.TargetDuration != DefaultTargetDuration {
		t.Fatalf("duration = %d, want %d", in.TargetDuration, DefaultTargetDuration)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	in := &ScriptGenerateInput{
		Audience:       "大学生",
		Language:       "zh",
		TargetDuration: 120,
	}
	in.ApplyDefaults()

	if in.Audience != "大学生" || in.Language != "zh" || in.TargetDuration != 120 {
		t.Fatalf("explicit values must be kept: %+v", in)
	}
}

func TestApplyDefaults_BlankTreatedAsMissing(t *testing.T) {
	in := &ScriptGenerateInput{Audience: "  ", Language: "\t"}
	in.ApplyDefaults()

	if in.Audience != DefaultAudience || in.Language != DefaultLanguage {
		t.Fatalf("blank fields should be defaulted: %+v", in)
	}
}
