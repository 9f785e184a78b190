package grading_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"lecture-quiz-service/internal/domain"
	"lecture-quiz-service/internal/grading"
)

func singleChoiceQuiz() domain.Quiz {
	return domain.Quiz{
		ID:      "quiz-1",
		EventID: "event-1",
		Title:   "Lecture 3 recap",
		Questions: []domain.Question{
			{
				ID:            "q1",
				Text:          "Pick the right letter",
				Type:          "single_choice",
				Options:       []string{"A", "B", "C"},
				Points:        10,
				CorrectAnswer: domain.StringAnswer("B"),
			},
		},
	}
}

func TestGradeSingleChoice(t *testing.T) {
	quiz := singleChoiceQuiz()

	res := grading.Grade(quiz, []domain.AnswerInput{
		{QuestionID: "q1", Answer: domain.StringAnswer("B")},
	})
	if res.Score != 10 || res.MaxScore != 10 || res.Percentage != 100 {
		t.Fatalf("expected 10/10/100, got %d/%d/%d", res.Score, res.MaxScore, res.Percentage)
	}
	if len(res.AnswerResults) != 1 || !res.AnswerResults[0].IsCorrect || res.AnswerResults[0].Points != 10 {
		t.Fatalf("unexpected answer result %+v", res.AnswerResults)
	}

	res = grading.Grade(quiz, []domain.AnswerInput{
		{QuestionID: "q1", Answer: domain.StringAnswer("A")},
	})
	if res.Score != 0 || res.Percentage != 0 {
		t.Fatalf("expected zero score, got %d/%d", res.Score, res.Percentage)
	}
	if res.AnswerResults[0].IsCorrect || res.AnswerResults[0].Points != 0 {
		t.Fatalf("unexpected answer result %+v", res.AnswerResults[0])
	}
}

func TestGradeMultiSelectOrderIndependent(t *testing.T) {
	quiz := domain.Quiz{
		ID: "quiz-2",
		Questions: []domain.Question{
			{
				ID:            "q1",
				Type:          "multiple_choice",
				Points:        5,
				CorrectAnswer: domain.ListAnswer("A", "C"),
			},
		},
	}

	res := grading.Grade(quiz, []domain.AnswerInput{
		{QuestionID: "q1", Answer: domain.ListAnswer("C", "A")},
	})
	if res.Score != 5 {
		t.Fatalf("reordered selection should be correct, got score %d", res.Score)
	}

	res = grading.Grade(quiz, []domain.AnswerInput{
		{QuestionID: "q1", Answer: domain.ListAnswer("A")},
	})
	if res.Score != 0 {
		t.Fatalf("cardinality mismatch should be incorrect, got score %d", res.Score)
	}
}

func TestGradeDropsUnknownQuestions(t *testing.T) {
	quiz := singleChoiceQuiz()

	res := grading.Grade(quiz, []domain.AnswerInput{
		{QuestionID: "ghost", Answer: domain.StringAnswer("B")},
		{QuestionID: "q1", Answer: domain.StringAnswer("B")},
	})
	if len(res.AnswerResults) != 1 {
		t.Fatalf("unknown question should be dropped, got %d results", len(res.AnswerResults))
	}
	if res.Score != 10 {
		t.Fatalf("expected score 10, got %d", res.Score)
	}
}

func TestGradeZeroMaxScore(t *testing.T) {
	quiz := domain.Quiz{
		Questions: []domain.Question{
			{ID: "q1", Points: 0, CorrectAnswer: domain.StringAnswer("A")},
		},
	}
	res := grading.Grade(quiz, []domain.AnswerInput{
		{QuestionID: "q1", Answer: domain.StringAnswer("A")},
	})
	if res.MaxScore != 0 || res.Percentage != 0 || res.Score != 0 {
		t.Fatalf("zero-point quiz must grade 0/0/0, got %d/%d/%d", res.Score, res.MaxScore, res.Percentage)
	}
	if !res.AnswerResults[0].IsCorrect {
		t.Fatalf("answer should still be marked correct")
	}
}

func TestGradeDeterministic(t *testing.T) {
	quiz := domain.Quiz{
		Questions: []domain.Question{
			{ID: "q1", Points: 3, CorrectAnswer: domain.ListAnswer("x", "y")},
			{ID: "q2", Points: 7, CorrectAnswer: domain.StringAnswer("z")},
		},
	}
	answers := []domain.AnswerInput{
		{QuestionID: "q1", Answer: domain.ListAnswer("y", "x")},
		{QuestionID: "q2", Answer: domain.StringAnswer("z")},
	}
	first := grading.Grade(quiz, answers)
	second := grading.Grade(quiz, answers)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("grading not deterministic: %+v vs %+v", first, second)
	}
	if first.Score != 10 || first.Percentage != 100 {
		t.Fatalf("expected full score, got %+v", first)
	}
}

func TestCompareNilAlwaysIncorrect(t *testing.T) {
	if grading.Compare(nil, domain.StringAnswer("A")) {
		t.Fatal("nil correct answer must be incorrect")
	}
	if grading.Compare(domain.StringAnswer("A"), nil) {
		t.Fatal("nil submitted answer must be incorrect")
	}
	if grading.Compare(nil, nil) {
		t.Fatal("nil vs nil must be incorrect")
	}
}

// Tuple submissions check one-way containment only: a tuple of the right
// length whose elements all occur in the correct list passes even when the
// correct list holds duplicates the tuple does not cover. Lists check both
// directions. Pinned on purpose.
func TestCompareTupleContainmentAsymmetry(t *testing.T) {
	correct := domain.ListAnswer("A", "A", "B")

	tuple := domain.TupleAnswer("A", "B", "B")
	if !grading.Compare(correct, tuple) {
		t.Fatal("tuple one-way containment should pass")
	}

	list := domain.ListAnswer("A", "B", "B")
	if !grading.Compare(correct, list) {
		// mutual containment ignores duplicates, so this passes too
		t.Fatal("list mutual containment should pass")
	}

	if grading.Compare(correct, domain.TupleAnswer("A", "B", "C")) {
		t.Fatal("tuple with a foreign element must fail")
	}
	if grading.Compare(correct, domain.TupleAnswer("A", "B")) {
		t.Fatal("tuple length mismatch must fail")
	}
}

func TestCompareOpaqueFallback(t *testing.T) {
	correct := domain.OpaqueAnswer(json.RawMessage(`{"lat":1,"lng":2}`))
	same := domain.OpaqueAnswer(json.RawMessage(`{"lng":2,"lat":1}`))
	other := domain.OpaqueAnswer(json.RawMessage(`{"lat":1,"lng":3}`))

	if !grading.Compare(correct, same) {
		t.Fatal("equivalent JSON objects should compare equal")
	}
	if grading.Compare(correct, other) {
		t.Fatal("different JSON objects must not compare equal")
	}
}
