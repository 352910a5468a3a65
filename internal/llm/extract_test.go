package llm

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/prepforge/mockexam-backend/internal/model"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"bare array", `[1, 2, 3]`, `[1, 2, 3]`},
		{"prose around object", `Sure! Here it is: {"a": 1} Hope that helps.`, `{"a": 1}`},
		{"fenced with language tag", "```json\n{\"a\": 1}\n```", "{\"a\": 1}\n"},
		{"fenced without tag", "```\n[true]\n```", "[true]\n"},
		{"nested braces", `{"a": {"b": [1, {"c": 2}]}}`, `{"a": {"b": [1, {"c": 2}]}}`},
		{"braces inside strings", `{"text": "use { and } freely"}`, `{"text": "use { and } freely"}`},
		{"escaped quotes", `{"text": "she said \"hi\" {"}`, `{"text": "she said \"hi\" {"}`},
		{"takes first value", `{"first": 1} {"second": 2}`, `{"first": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.in)
			if err != nil {
				t.Fatalf("ExtractJSON(%q): %v", tt.in, err)
			}
			if strings.TrimSpace(got) != strings.TrimSpace(tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if !json.Valid([]byte(got)) {
				t.Errorf("extracted span is not valid JSON: %q", got)
			}
		})
	}
}

func TestExtractJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"prose only", "I could not generate any questions."},
		{"closers only", "]]] }}}"},
		{"opens never closes", `here: {"a": 1`},
		{"open swallowed by string", `{"a": "unterminated`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExtractJSON(tt.in); err == nil {
				t.Errorf("expected error for %q", tt.in)
			}
		})
	}
}

func TestBuildSectionPrompt(t *testing.T) {
	spec := model.SectionSpec{Name: "Quantitative Aptitude", TimeLimitMinutes: 40, QuestionCount: 22}
	prompt := buildSectionPrompt(spec, "source text here")

	for _, want := range []string{spec.Name, "source text here", "Respond ONLY with a JSON object"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt should contain %q", want)
		}
	}
	if strings.Contains(prompt, `"passage":`) {
		t.Error("standalone prompt should not describe the passage shape")
	}

	spec.PassageBased = true
	prompt = buildSectionPrompt(spec, "src")
	if !strings.Contains(prompt, `"passage"`) {
		t.Error("passage-based prompt should describe the passage shape")
	}
}

func TestBuildAnalysisPromptEmbedsQuestions(t *testing.T) {
	questions := []model.FlatQuestion{
		{Question: model.Question{
			QuestionText:  "What is 2+2?",
			Options:       []string{"3", "4", "5", "6"},
			CorrectAnswer: "4",
			Type:          model.QuestionTypeMCQ,
		}},
	}
	prompt := buildAnalysisPrompt(questions)
	if !strings.Contains(prompt, "What is 2+2?") {
		t.Error("prompt should embed the question payload")
	}
	if !strings.Contains(prompt, "one entry per input question") {
		t.Error("prompt must pin the response length")
	}
}
