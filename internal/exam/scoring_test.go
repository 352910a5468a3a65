package exam

import (
	"testing"

	"github.com/prepforge/mockexam-backend/internal/model"
)

func mcq(text, correct string) model.SectionItem {
	return model.SectionItem{Question: &model.Question{
		QuestionText:  text,
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: correct,
		Type:          model.QuestionTypeMCQ,
	}}
}

func tita(text, correct string) model.SectionItem {
	return model.SectionItem{Question: &model.Question{
		QuestionText:  text,
		CorrectAnswer: correct,
		Type:          model.QuestionTypeTITA,
	}}
}

func oneSection(items ...model.SectionItem) []model.Section {
	return []model.Section{{Name: "S1", TimeLimitMinutes: 10, Items: items}}
}

func answered(value string) model.Answer {
	return model.Answer{Value: value, Status: model.AnswerStatusAnswered}
}

func TestScoreMCQCaseAndWhitespace(t *testing.T) {
	sections := oneSection(mcq("q1", "B"))
	answers := model.AnswerMap{0: {0: answered(" b ")}}

	fs := Score(sections, answers, model.TestTypeSectional)
	if fs.CorrectCount != 1 || fs.IncorrectCount != 0 {
		t.Fatalf("expected 1 correct, got %+v", fs)
	}
	if fs.TotalMarks != 3 {
		t.Errorf("expected 3 marks, got %d", fs.TotalMarks)
	}
}

func TestScoreTITA(t *testing.T) {
	tests := []struct {
		name    string
		correct string
		given   string
		want    bool
	}{
		{"integer vs decimal key", "12.0", "12", true},
		{"exact", "7", "7", true},
		{"trailing zeros", "12.5", "12.50", true},
		{"wrong number", "12", "13", false},
		{"non-numeric input", "12", "abc", false},
		{"non-numeric key", "n/a", "12", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := oneSection(tita("q", tt.correct))
			answers := model.AnswerMap{0: {0: answered(tt.given)}}
			fs := Score(sections, answers, model.TestTypeSectional)
			if got := fs.CorrectCount == 1; got != tt.want {
				t.Errorf("correct = %v, want %v (%+v)", got, tt.want, fs)
			}
		})
	}
}

func TestScorePenaltyPolicy(t *testing.T) {
	sections := oneSection(mcq("q1", "A"))
	answers := model.AnswerMap{0: {0: answered("B")}}

	// Full (combined multi-section) tests carry a -1 penalty per incorrect.
	fs := Score(sections, answers, model.TestTypeFull)
	if fs.TotalMarks != -1 {
		t.Errorf("full test: expected -1 marks, got %d", fs.TotalMarks)
	}

	// Sectional tests apply no negative marking.
	fs = Score(sections, answers, model.TestTypeSectional)
	if fs.TotalMarks != 0 {
		t.Errorf("sectional test: expected 0 marks, got %d", fs.TotalMarks)
	}
}

func TestScoreUnattemptedAndMalformed(t *testing.T) {
	sections := oneSection(mcq("q1", "A"), mcq("q2", "B"), tita("q3", "5"))
	answers := model.AnswerMap{0: {
		0: {Status: model.AnswerStatusNotAnswered},
		1: answered("   "), // Whitespace only counts as unattempted.
		// q3 has no entry at all.
	}}

	fs := Score(sections, answers, model.TestTypeFull)
	if fs.AttemptedCount != 0 || fs.TotalMarks != 0 {
		t.Errorf("expected untouched score, got %+v", fs)
	}
}

func TestScoreAttemptedEqualsCorrectPlusIncorrect(t *testing.T) {
	sections := oneSection(mcq("q1", "A"), mcq("q2", "B"), mcq("q3", "C"))
	answers := model.AnswerMap{0: {
		0: answered("A"),
		1: answered("D"),
		2: {Status: model.AnswerStatusNotAnswered},
	}}

	fs := Score(sections, answers, model.TestTypeFull)
	if fs.CorrectCount != 1 || fs.IncorrectCount != 1 {
		t.Fatalf("unexpected counts: %+v", fs)
	}
	if fs.AttemptedCount != fs.CorrectCount+fs.IncorrectCount {
		t.Errorf("attempted %d != correct %d + incorrect %d", fs.AttemptedCount, fs.CorrectCount, fs.IncorrectCount)
	}
	if fs.TotalMarks != 2 { // +3 -1
		t.Errorf("expected 2 marks, got %d", fs.TotalMarks)
	}
}

func TestScoreIdempotent(t *testing.T) {
	sections := oneSection(mcq("q1", "A"), tita("q2", "3.14"))
	answers := model.AnswerMap{0: {0: answered("a"), 1: answered("3.14")}}

	first := Score(sections, answers, model.TestTypeFull)
	second := Score(sections, answers, model.TestTypeFull)
	if first != second {
		t.Errorf("scoring not idempotent: %+v vs %+v", first, second)
	}
}

func TestScoreMarkedAnswersCount(t *testing.T) {
	// A marked question with a value is still an attempt.
	sections := oneSection(mcq("q1", "A"))
	answers := model.AnswerMap{0: {0: {Value: "A", Status: model.AnswerStatusMarked}}}

	fs := Score(sections, answers, model.TestTypeFull)
	if fs.CorrectCount != 1 {
		t.Errorf("marked answer should be scored, got %+v", fs)
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		score      int
		percentile float64
	}{
		{200, 99.9},
		{180, 99.9},
		{125, 99.0},
		{15, 45.0},
		{14, 25.0},
		{-5, 25.0},
	}
	for _, tt := range tests {
		if got := BandFor(tt.score); got.Percentile != tt.percentile {
			t.Errorf("BandFor(%d).Percentile = %v, want %v", tt.score, got.Percentile, tt.percentile)
		}
	}
}
