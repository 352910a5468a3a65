package model

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestSectionItemUnmarshalFlatForms(t *testing.T) {
	// Flat AI output: a passage group is recognized by the presence of a
	// "passage" field, a standalone question by its absence.
	raw := `{
		"name": "VARC",
		"time_limit_minutes": 40,
		"items": [
			{"passage": "Some long passage.", "questions": [
				{"question_text": "g1", "options": ["A","B"], "correct_answer": "A", "type": "MCQ"},
				{"question_text": "g2", "options": ["A","B"], "correct_answer": "B", "type": "MCQ"}
			]},
			{"question_text": "s1", "options": [], "correct_answer": "42", "type": "TITA"}
		]
	}`

	var s Section
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(s.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(s.Items))
	}
	if s.Items[0].Group == nil || s.Items[0].Question != nil {
		t.Errorf("item 0 should be a passage group: %+v", s.Items[0])
	}
	if s.Items[1].Question == nil || s.Items[1].Group != nil {
		t.Errorf("item 1 should be a standalone question: %+v", s.Items[1])
	}
	if s.Items[1].Question.Type != QuestionTypeTITA {
		t.Errorf("unexpected type: %v", s.Items[1].Question.Type)
	}
}

func TestSectionItemRoundTrip(t *testing.T) {
	// Once resolved, items marshal in the explicit tagged form and decode
	// back to the same variant.
	item := SectionItem{Group: &PassageGroup{
		Passage: "p",
		Questions: []Question{
			{QuestionText: "q", CorrectAnswer: "A", Type: QuestionTypeMCQ},
		},
	}}

	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back SectionItem
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Group == nil || back.Question != nil {
		t.Fatalf("variant lost in round trip: %s", data)
	}
	if back.Group.Passage != "p" || len(back.Group.Questions) != 1 {
		t.Errorf("group content lost: %+v", back.Group)
	}
}

func TestSectionItemRejectsEmptyGroup(t *testing.T) {
	var it SectionItem
	if err := json.Unmarshal([]byte(`{"passage": "p", "questions": []}`), &it); err == nil {
		t.Error("expected error for passage group without questions")
	}
}

func TestFlattenOrderAndCount(t *testing.T) {
	s := Section{
		Name: "Mixed",
		Items: []SectionItem{
			{Question: &Question{QuestionText: "a"}},
			{Group: &PassageGroup{Passage: "P1", Questions: []Question{
				{QuestionText: "b"}, {QuestionText: "c"},
			}}},
			{Question: &Question{QuestionText: "d"}},
			{Group: &PassageGroup{Passage: "P2", Questions: []Question{
				{QuestionText: "e"},
			}}},
		},
	}

	flat := s.Flatten()
	if len(flat) != 5 {
		t.Fatalf("expected 5 flattened questions, got %d", len(flat))
	}
	if got := s.QuestionCount(); got != len(flat) {
		t.Errorf("QuestionCount() = %d, want %d", got, len(flat))
	}

	wantOrder := []string{"a", "b", "c", "d", "e"}
	wantPassage := []string{"", "P1", "P1", "", "P2"}
	for i, fq := range flat {
		if fq.Question.QuestionText != wantOrder[i] {
			t.Errorf("index %d: got %q, want %q", i, fq.Question.QuestionText, wantOrder[i])
		}
		if fq.Passage != wantPassage[i] {
			t.Errorf("index %d: passage %q, want %q", i, fq.Passage, wantPassage[i])
		}
	}
}

func TestSessionSummaryCountsQuestions(t *testing.T) {
	orig := uuid.New()
	ts := TestSession{
		Title: "t",
		Sections: []Section{
			{Items: []SectionItem{{Question: &Question{}}}},
			{Items: []SectionItem{{Group: &PassageGroup{Questions: []Question{{}, {}}}}}},
		},
		RetestOf: &orig,
	}
	sum := ts.Summary()
	if sum.SectionCount != 2 || sum.QuestionCount != 3 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if sum.RetestOf == nil || *sum.RetestOf != orig {
		t.Errorf("summary must carry the retest link, got %v", sum.RetestOf)
	}
}
