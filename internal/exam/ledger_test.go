package exam

import (
	"testing"

	"github.com/prepforge/mockexam-backend/internal/model"
)

func TestSeedAnswers(t *testing.T) {
	sections := []model.Section{
		{Name: "QA", Items: []model.SectionItem{mcq("q1", "A"), mcq("q2", "B")}},
		{Name: "VARC", Items: []model.SectionItem{
			{Group: &model.PassageGroup{Passage: "p", Questions: []model.Question{
				{QuestionText: "g1", CorrectAnswer: "A", Type: model.QuestionTypeMCQ},
				{QuestionText: "g2", CorrectAnswer: "B", Type: model.QuestionTypeMCQ},
				{QuestionText: "g3", CorrectAnswer: "C", Type: model.QuestionTypeMCQ},
			}}},
			tita("t1", "5"),
		}},
	}

	answers := SeedAnswers(sections)
	if len(answers[0]) != 2 {
		t.Errorf("section 0: expected 2 entries, got %d", len(answers[0]))
	}
	// Passage group questions flatten into the section's index space.
	if len(answers[1]) != 4 {
		t.Errorf("section 1: expected 4 entries, got %d", len(answers[1]))
	}
	for si, m := range answers {
		for qi, a := range m {
			if a.Status != model.AnswerStatusNotAnswered || a.Value != "" {
				t.Errorf("answer %d/%d not seeded empty: %+v", si, qi, a)
			}
		}
	}
}

func TestLedgerSetPromotesNotAnswered(t *testing.T) {
	answers := model.AnswerMap{0: {0: {Status: model.AnswerStatusNotAnswered}}}
	l := LedgerFor(answers)

	l.Set(0, 0, "B")
	got := l.Get(0, 0)
	if got.Status != model.AnswerStatusAnswered || got.Value != "B" {
		t.Errorf("expected ANSWERED/B, got %+v", got)
	}
}

func TestLedgerMarkIsStickyAcrossEdits(t *testing.T) {
	answers := model.AnswerMap{0: {0: {Status: model.AnswerStatusNotAnswered}}}
	l := LedgerFor(answers)

	l.Set(0, 0, "A")
	l.Mark(0, 0)
	l.Set(0, 0, "B")

	got := l.Get(0, 0)
	if got.Status != model.AnswerStatusMarked {
		t.Errorf("editing a marked question must not demote it, got %+v", got)
	}
	if got.Value != "B" {
		t.Errorf("value should follow the edit, got %q", got.Value)
	}
}

func TestLedgerMarkPreservesValue(t *testing.T) {
	answers := model.AnswerMap{0: {0: {Status: model.AnswerStatusNotAnswered}}}
	l := LedgerFor(answers)

	l.Set(0, 0, "C")
	l.Mark(0, 0)
	if got := l.Get(0, 0); got.Value != "C" || got.Status != model.AnswerStatusMarked {
		t.Errorf("expected MARKED/C, got %+v", got)
	}

	// Marking with no value keeps the value absent.
	l.Mark(0, 1)
	if got := l.Get(0, 1); got.Value != "" || got.Status != model.AnswerStatusMarked {
		t.Errorf("expected MARKED with empty value, got %+v", got)
	}
}

func TestLedgerClearResetsMarked(t *testing.T) {
	answers := model.AnswerMap{0: {0: {Status: model.AnswerStatusNotAnswered}}}
	l := LedgerFor(answers)

	l.Set(0, 0, "A")
	l.Mark(0, 0)
	l.Clear(0, 0)

	got := l.Get(0, 0)
	if got.Status != model.AnswerStatusNotAnswered || got.Value != "" {
		t.Errorf("clear must reset to absent/NOT_ANSWERED, got %+v", got)
	}
}

func TestLedgerSetEmptyValueDoesNotPromote(t *testing.T) {
	answers := model.AnswerMap{0: {0: {Status: model.AnswerStatusNotAnswered}}}
	l := LedgerFor(answers)

	l.Set(0, 0, "")
	if got := l.Get(0, 0); got.Status != model.AnswerStatusNotAnswered {
		t.Errorf("empty value must not promote, got %+v", got)
	}
}

func TestLedgerSetEmptyValueDemotesAnswered(t *testing.T) {
	answers := model.AnswerMap{0: {0: {Status: model.AnswerStatusNotAnswered}}}
	l := LedgerFor(answers)

	// Typing an answer and then deleting it must not leave the status
	// claiming ANSWERED over an empty value.
	l.Set(0, 0, "2.5")
	l.Set(0, 0, "")

	got := l.Get(0, 0)
	if got.Status != model.AnswerStatusNotAnswered || got.Value != "" {
		t.Errorf("expected NOT_ANSWERED with empty value, got %+v", got)
	}

	// MARKED stays sticky even when the value is erased.
	l.Set(0, 1, "7")
	l.Mark(0, 1)
	l.Set(0, 1, "")
	if got := l.Get(0, 1); got.Status != model.AnswerStatusMarked || got.Value != "" {
		t.Errorf("expected MARKED with empty value, got %+v", got)
	}
}

func TestLedgerPromote(t *testing.T) {
	answers := model.AnswerMap{0: {
		0: {Value: "A", Status: model.AnswerStatusNotAnswered},
		1: {Value: "B", Status: model.AnswerStatusMarked},
		2: {Status: model.AnswerStatusNotAnswered},
	}}
	l := LedgerFor(answers)

	l.Promote(0, 0)
	l.Promote(0, 1)
	l.Promote(0, 2)

	if got := l.Get(0, 0).Status; got != model.AnswerStatusAnswered {
		t.Errorf("q0: expected ANSWERED, got %v", got)
	}
	if got := l.Get(0, 1).Status; got != model.AnswerStatusMarked {
		t.Errorf("q1: promote must not demote MARKED, got %v", got)
	}
	if got := l.Get(0, 2).Status; got != model.AnswerStatusNotAnswered {
		t.Errorf("q2: empty value must stay NOT_ANSWERED, got %v", got)
	}
}
