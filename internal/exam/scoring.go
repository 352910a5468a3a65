package exam

import (
	"strconv"
	"strings"

	"github.com/prepforge/mockexam-backend/internal/model"
)

const (
	marksPerCorrect = 3
	// Negative marking applies only to full (combined multi-section) tests.
	penaltyPerIncorrect = 1
)

// Score computes the final score over all sections' flattened questions and
// the final answer ledger. It never fails: missing or malformed answers count
// as unattempted, and TITA input that does not parse as a number counts as
// incorrect.
func Score(sections []model.Section, answers model.AnswerMap, typ model.TestType) model.FinalScore {
	var fs model.FinalScore
	ledger := LedgerFor(answers)

	for si := range sections {
		flat := sections[si].Flatten()
		for qi := range flat {
			value := strings.TrimSpace(ledger.Get(si, qi).Value)
			if value == "" {
				continue
			}
			if answerCorrect(flat[qi].Question, value) {
				fs.CorrectCount++
				fs.TotalMarks += marksPerCorrect
			} else {
				fs.IncorrectCount++
				if typ == model.TestTypeFull {
					fs.TotalMarks -= penaltyPerIncorrect
				}
			}
		}
	}

	fs.AttemptedCount = fs.CorrectCount + fs.IncorrectCount
	return fs
}

// answerCorrect compares a trimmed, non-empty given value with the key.
// MCQ comparison is case-insensitive; TITA compares parsed floats so that
// "12" matches a key of "12.0".
func answerCorrect(q model.Question, value string) bool {
	key := strings.TrimSpace(q.CorrectAnswer)
	if q.Type == model.QuestionTypeTITA {
		given, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return false
		}
		want, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return false
		}
		return given == want
	}
	return strings.EqualFold(value, key)
}
