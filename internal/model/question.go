package model

import (
	"encoding/json"
	"fmt"
)

// QuestionType enumerates the supported question formats.
type QuestionType string

const (
	// QuestionTypeMCQ is a multiple-choice question with fixed options.
	QuestionTypeMCQ QuestionType = "MCQ"
	// QuestionTypeTITA is a "type in the answer" free-entry question.
	QuestionTypeTITA QuestionType = "TITA"
)

// Question represents a single generated exam question. Immutable once generated.
type Question struct {
	QuestionText  string       `json:"question_text"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correct_answer"`
	Type          QuestionType `json:"type"`
}

// PassageGroup bundles questions that share a reading passage.
// Grouping affects display only; scoring and indexing operate on the
// flattened question order.
type PassageGroup struct {
	Passage   string     `json:"passage"`
	Questions []Question `json:"questions"`
}

// SectionItem is the tagged variant of a section entry: either one
// standalone question or a passage group. The variant is resolved once at
// decode time and never re-sniffed afterwards.
type SectionItem struct {
	Question *Question     `json:"question,omitempty"`
	Group    *PassageGroup `json:"group,omitempty"`
}

// sectionItemWire mirrors the AI output shape where a passage group is
// distinguished only by the presence of a "passage" field.
type sectionItemWire struct {
	Passage   *string         `json:"passage"`
	Questions []Question      `json:"questions"`
	Text      string          `json:"question_text"`
	Options   []string        `json:"options"`
	Correct   string          `json:"correct_answer"`
	Type      QuestionType    `json:"type"`
	Question  json.RawMessage `json:"question"`
	Group     json.RawMessage `json:"group"`
}

// UnmarshalJSON accepts both the explicit tagged form ({"question": ...} /
// {"group": ...}) and the flat AI output form where a passage group is
// detected by the presence of a "passage" field.
func (it *SectionItem) UnmarshalJSON(data []byte) error {
	var w sectionItemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	switch {
	case len(w.Question) > 0:
		q := &Question{}
		if err := json.Unmarshal(w.Question, q); err != nil {
			return err
		}
		it.Question, it.Group = q, nil
	case len(w.Group) > 0:
		g := &PassageGroup{}
		if err := json.Unmarshal(w.Group, g); err != nil {
			return err
		}
		it.Question, it.Group = nil, g
	case w.Passage != nil:
		it.Question = nil
		it.Group = &PassageGroup{Passage: *w.Passage, Questions: w.Questions}
	default:
		it.Group = nil
		it.Question = &Question{
			QuestionText:  w.Text,
			Options:       w.Options,
			CorrectAnswer: w.Correct,
			Type:          w.Type,
		}
	}

	return it.validate()
}

func (it *SectionItem) validate() error {
	if it.Question == nil && it.Group == nil {
		return fmt.Errorf("section item is neither a question nor a passage group")
	}
	if it.Group != nil && len(it.Group.Questions) == 0 {
		return fmt.Errorf("passage group has no questions")
	}
	return nil
}

// Section is a timed, independently lockable subdivision of a test.
type Section struct {
	Name             string        `json:"name"`
	TimeLimitMinutes int           `json:"time_limit_minutes"`
	Items            []SectionItem `json:"items"`
}

// FlatQuestion is a question paired with its passage (empty for standalone
// questions) at a stable section-local index.
type FlatQuestion struct {
	Question Question `json:"question"`
	Passage  string   `json:"passage,omitempty"`
}

// Flatten expands a section's items into the ordered question list that
// defines each question's section-local index. Passage groups contribute
// their nested questions in document order.
func (s *Section) Flatten() []FlatQuestion {
	var flat []FlatQuestion
	for _, it := range s.Items {
		switch {
		case it.Question != nil:
			flat = append(flat, FlatQuestion{Question: *it.Question})
		case it.Group != nil:
			for _, q := range it.Group.Questions {
				flat = append(flat, FlatQuestion{Question: q, Passage: it.Group.Passage})
			}
		}
	}
	return flat
}

// QuestionCount returns the flattened question count without allocating.
func (s *Section) QuestionCount() int {
	n := 0
	for _, it := range s.Items {
		switch {
		case it.Question != nil:
			n++
		case it.Group != nil:
			n += len(it.Group.Questions)
		}
	}
	return n
}
