package domain

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// NotAttempted is shown in place of an empty student answer.
	NotAttempted = "Not Attempted"

	// SectionSize is the number of consecutive questions per scored section.
	SectionSize = 20
)

// QuestionResult is the outcome of a single question.
type QuestionResult struct {
	Question      int    `json:"question"`
	CorrectAnswer string `json:"correct_answer"`
	StudentAnswer string `json:"student_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

// EvaluationOutcome is the scored result of one OMR sheet.
type EvaluationOutcome struct {
	Score    int              `json:"score"`
	Total    int              `json:"total"`
	Sections map[string]int   `json:"per_subject_scores"`
	Answers  []QuestionResult `json:"answers"`
}

// StudentMeta identifies whose sheet is being evaluated.
type StudentMeta struct {
	StudentID string
	Name      string
}

// EvaluationResult is a persisted EvaluationOutcome. Results are append-only.
type EvaluationResult struct {
	ID        string
	CollegeID string
	BatchID   string
	StudentID string
	Name      string
	Outcome   EvaluationOutcome
	CreatedAt time.Time
}

// SheetExtractor reads the selected options off a scanned OMR sheet. The
// returned map is keyed by question number; values may hold several
// comma-separated options. Questions absent from the map are not attempted.
type SheetExtractor interface {
	Extract(ctx context.Context, sheet []byte) (map[int]string, error)
}

// Score compares a student's answers against the official key. Questions are
// visited in ascending numeric order. A question is correct only when the
// official option set is non-empty and equals the student's option set.
func Score(key AnswerKey, studentAnswers map[int]string) EvaluationOutcome {
	outcome := EvaluationOutcome{
		Total:    TotalQuestions,
		Sections: make(map[string]int, TotalQuestions/SectionSize),
		Answers:  make([]QuestionResult, 0, TotalQuestions),
	}
	for s := 1; s <= TotalQuestions/SectionSize; s++ {
		outcome.Sections[sectionName(s)] = 0
	}

	for q := 1; q <= TotalQuestions; q++ {
		correct := optionSet(key.Get(q))
		student := optionSet(studentAnswers[q])
		isCorrect := len(correct) > 0 && equalSets(correct, student)

		studentDisplay := NotAttempted
		if len(student) > 0 {
			studentDisplay = strings.Join(student, ",")
		}
		outcome.Answers = append(outcome.Answers, QuestionResult{
			Question:      q,
			CorrectAnswer: strings.Join(correct, ","),
			StudentAnswer: studentDisplay,
			IsCorrect:     isCorrect,
		})
		if isCorrect {
			outcome.Score++
			outcome.Sections[sectionName((q-1)/SectionSize+1)]++
		}
	}
	return outcome
}

// optionSet splits a comma-joined answer into sorted, de-duplicated, lowercase tokens.
func optionSet(answer string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range strings.Split(answer, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// equalSets compares two sorted, de-duplicated slices.
func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sectionName(n int) string {
	return "sub_" + strconv.Itoa(n)
}
