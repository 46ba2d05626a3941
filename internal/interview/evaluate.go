package interview

import (
	"fmt"
	"strconv"
	"strings"

	_ "embed"
)

//go:embed question_prompt.md
var questionPromptTemplate string

//go:embed evaluation_prompt.md
var evaluationPromptTemplate string

// pointsPerQuestion is the rubric maximum for a single answer: five criteria
// scored 1 to 5 each.
const pointsPerQuestion = 25

func buildQuestionPrompt(jobDescription string) string {
	template := questionPromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Generate 2 to 3 interview questions as a numbered list for this job description:\n{{JOB_DESCRIPTION}}"
	}

	return strings.ReplaceAll(template, "{{JOB_DESCRIPTION}}", jobDescription)
}

// BuildEvaluationPrompt assembles the single evaluation prompt from the job
// description and every collected question/answer pair, in question order.
// The prompt embeds the fixed five-criterion rubric and an overall-score
// ceiling of 25 points per question. It is pure: the caller is responsible
// for sending the prompt to the generation backend. Partial evaluation is
// deliberately unsupported, per-question calls would lose the cross-question
// context the rubric depends on.
func BuildEvaluationPrompt(jobDescription string, pairs []QA) string {
	var combined strings.Builder
	for i, pair := range pairs {
		fmt.Fprintf(&combined, "\nQuestion %d: %s\nAnswer: %s\n", i+1, pair.Question, pair.Answer.Text)
	}

	template := evaluationPromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Score the answers out of {{MAX_SCORE}}.\nJob description:\n{{JOB_DESCRIPTION}}\nResponses:\n{{RESPONSES}}"
	}

	prompt := strings.ReplaceAll(template, "{{MAX_SCORE}}", strconv.Itoa(pointsPerQuestion*len(pairs)))
	prompt = strings.ReplaceAll(prompt, "{{JOB_DESCRIPTION}}", jobDescription)
	prompt = strings.ReplaceAll(prompt, "{{RESPONSES}}", combined.String())

	return prompt
}
