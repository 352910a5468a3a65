package exam

import "github.com/prepforge/mockexam-backend/internal/model"

// Ledger applies the answer-status transition rules over a session's answer
// map. It owns no navigation side effects; those belong to the Controller.
type Ledger struct {
	answers model.AnswerMap
}

// LedgerFor wraps the session's answer map. Mutations write through.
func LedgerFor(answers model.AnswerMap) Ledger {
	return Ledger{answers: answers}
}

// SeedAnswers builds the initial answer map: one NOT_ANSWERED entry per
// flattened question of every section.
func SeedAnswers(sections []model.Section) model.AnswerMap {
	answers := make(model.AnswerMap, len(sections))
	for si := range sections {
		n := sections[si].QuestionCount()
		m := make(map[int]model.Answer, n)
		for qi := 0; qi < n; qi++ {
			m[qi] = model.Answer{Status: model.AnswerStatusNotAnswered}
		}
		answers[si] = m
	}
	return answers
}

// Get returns the recorded answer, defaulting to NOT_ANSWERED.
func (l Ledger) Get(section, question int) model.Answer {
	if m, ok := l.answers[section]; ok {
		if a, ok := m[question]; ok {
			return a
		}
	}
	return model.Answer{Status: model.AnswerStatusNotAnswered}
}

// Set records a value. A non-empty value promotes NOT_ANSWERED to ANSWERED;
// erasing the value demotes ANSWERED back to NOT_ANSWERED so the status never
// claims an answer that is not there. A MARKED question stays MARKED across
// edits (marking is sticky until explicitly cleared). No format validation
// happens here: TITA free text is compared numerically at scoring time, not
// at entry time.
func (l Ledger) Set(section, question int, value string) {
	a := l.Get(section, question)
	a.Value = value
	switch {
	case value != "" && a.Status == model.AnswerStatusNotAnswered:
		a.Status = model.AnswerStatusAnswered
	case value == "" && a.Status == model.AnswerStatusAnswered:
		a.Status = model.AnswerStatusNotAnswered
	}
	l.put(section, question, a)
}

// Promote upgrades a non-empty answer to ANSWERED unless it is MARKED.
// Used by Save & Next, which must not demote a marked question.
func (l Ledger) Promote(section, question int) {
	a := l.Get(section, question)
	if a.Value != "" && a.Status == model.AnswerStatusNotAnswered {
		a.Status = model.AnswerStatusAnswered
		l.put(section, question, a)
	}
}

// Mark sets status to MARKED, preserving the existing value.
func (l Ledger) Mark(section, question int) {
	a := l.Get(section, question)
	a.Status = model.AnswerStatusMarked
	l.put(section, question, a)
}

// Clear resets the question to an absent value and NOT_ANSWERED, regardless
// of any prior MARKED state.
func (l Ledger) Clear(section, question int) {
	l.put(section, question, model.Answer{Status: model.AnswerStatusNotAnswered})
}

func (l Ledger) put(section, question int, a model.Answer) {
	m, ok := l.answers[section]
	if !ok {
		m = make(map[int]model.Answer)
		l.answers[section] = m
	}
	m[question] = a
}
