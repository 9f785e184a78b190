// Package grading implements the scoring algorithm shared by every quiz
// store backend. Keeping it in one place is what guarantees that a quiz
// grades identically no matter where it is persisted.
package grading

import (
	"lecture-quiz-service/internal/domain"
)

// Result is the outcome of grading one submission against one quiz.
type Result struct {
	Score         int
	MaxScore      int
	Percentage    int
	AnswerResults []domain.AnswerResult
}

// Grade scores the submitted answers against the quiz definition.
//
// MaxScore sums the point values of every question in the quiz. Answers whose
// question id is not part of the quiz are silently dropped: they appear
// neither in the result list nor in the score. Percentage is integer
// arithmetic (score*100/maxScore), 0 when the quiz is worth nothing.
func Grade(quiz domain.Quiz, answers []domain.AnswerInput) Result {
	maxScore := 0
	for _, q := range quiz.Questions {
		maxScore += q.Points
	}

	score := 0
	results := make([]domain.AnswerResult, 0, len(answers))
	for _, answer := range answers {
		question := quiz.Question(answer.QuestionID)
		if question == nil {
			continue
		}

		correct := Compare(question.CorrectAnswer, answer.Answer)
		points := 0
		if correct {
			points = question.Points
			score += points
		}

		results = append(results, domain.AnswerResult{
			QuestionID: answer.QuestionID,
			Answer:     answer.Answer,
			IsCorrect:  correct,
			Points:     points,
		})
	}

	percentage := 0
	if maxScore > 0 {
		percentage = score * 100 / maxScore
	}

	return Result{
		Score:         score,
		MaxScore:      maxScore,
		Percentage:    percentage,
		AnswerResults: results,
	}
}

// Compare reports whether a submitted answer matches the correct answer.
//
// The comparison is polymorphic over the answer shapes, in precedence order:
//
//  1. string vs string: exact equality.
//  2. list vs list: set equality, same cardinality and mutual containment,
//     order-independent.
//  3. list (correct) vs tuple (submitted): same length and every submitted
//     element contained in the correct list. The reverse containment is NOT
//     checked, unlike case 2. This asymmetry is intentional behavioral
//     parity with the system this service replaces; do not unify the two
//     cases without product sign-off.
//  4. anything else: generic deep equality.
//
// A nil value on either side is always incorrect.
func Compare(correct, submitted *domain.AnswerValue) bool {
	if correct.Kind() == domain.AnswerNull || submitted.Kind() == domain.AnswerNull {
		return false
	}

	if cs, ok := correct.AsString(); ok {
		if ss, ok := submitted.AsString(); ok {
			return cs == ss
		}
	}

	if correct.Kind() == domain.AnswerList {
		correctList, _ := correct.AsStrings()
		switch submitted.Kind() {
		case domain.AnswerList:
			submittedList, _ := submitted.AsStrings()
			if len(correctList) != len(submittedList) {
				return false
			}
			return containsAll(correctList, submittedList) && containsAll(submittedList, correctList)
		case domain.AnswerTuple:
			submittedTuple, _ := submitted.AsStrings()
			if len(correctList) != len(submittedTuple) {
				return false
			}
			return containsAll(correctList, submittedTuple)
		}
	}

	return correct.DeepEqual(submitted)
}

// containsAll reports whether every element of needles occurs in haystack.
func containsAll(haystack, needles []string) bool {
	for _, n := range needles {
		found := false
		for _, h := range haystack {
			if h == n {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
