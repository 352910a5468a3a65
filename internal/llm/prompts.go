package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/prepforge/mockexam-backend/internal/model"
)

// buildSectionPrompt asks the model for one exam section generated from the
// uploaded source material, with strict structural instructions so the
// answer carries exactly one JSON object.
func buildSectionPrompt(spec model.SectionSpec, sourceText string) string {
	var sb strings.Builder
	sb.WriteString("You are an exam setter for competitive aptitude tests. ")
	sb.WriteString("Generate one exam section from the SOURCE MATERIAL below.\n\n")
	sb.WriteString(fmt.Sprintf("SECTION NAME: %s\n", spec.Name))
	sb.WriteString(fmt.Sprintf("NUMBER OF QUESTIONS: %d\n\n", spec.QuestionCount))

	sb.WriteString("INSTRUCTIONS:\n")
	sb.WriteString("- Every question must be answerable from the source material alone.\n")
	sb.WriteString("- Use type \"MCQ\" for multiple-choice questions with exactly 4 options.\n")
	sb.WriteString("- Use type \"TITA\" for numeric type-in-the-answer questions; give them an empty options list and a numeric correct_answer.\n")
	if spec.PassageBased {
		sb.WriteString("- Group questions under shared reading passages: each item must be an object with \"passage\" and \"questions\".\n")
	} else {
		sb.WriteString("- Emit standalone questions only; do not group them under passages.\n")
	}
	sb.WriteString("- For MCQ, correct_answer must exactly equal one of the options.\n\n")

	sb.WriteString("Respond ONLY with a JSON object of this shape:\n")
	if spec.PassageBased {
		sb.WriteString(`{"name": "...", "items": [{"passage": "...", "questions": [{"question_text": "...", "options": ["...","...","...","..."], "correct_answer": "...", "type": "MCQ"}]}]}`)
	} else {
		sb.WriteString(`{"name": "...", "items": [{"question_text": "...", "options": ["...","...","...","..."], "correct_answer": "...", "type": "MCQ"}]}`)
	}
	sb.WriteString("\n\nSOURCE MATERIAL:\n")
	sb.WriteString(sourceText)
	sb.WriteString("\n")

	return sb.String()
}

// buildAnalysisPrompt asks for one explanation/difficulty entry per question,
// same length and order as the input array.
func buildAnalysisPrompt(questions []model.FlatQuestion) string {
	payload, _ := json.Marshal(questions)

	var sb strings.Builder
	sb.WriteString("You are an exam reviewer. For EACH question in the JSON array below, ")
	sb.WriteString("write a concise explanation of the correct answer and classify its difficulty.\n\n")
	sb.WriteString("INSTRUCTIONS:\n")
	sb.WriteString("- Respond ONLY with a JSON array.\n")
	sb.WriteString("- The array must have exactly one entry per input question, in the same order.\n")
	sb.WriteString("- Each entry: {\"explanation\": \"...\", \"difficulty\": \"easy|medium|hard\"}\n")
	sb.WriteString("- Use the passage (when present) as context for the explanation.\n\n")
	sb.WriteString("QUESTIONS:\n")
	sb.Write(payload)
	sb.WriteString("\n")

	return sb.String()
}
