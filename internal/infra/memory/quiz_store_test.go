package memory

import (
	"context"
	"errors"
	"testing"

	"lecture-quiz-service/internal/domain"
)

func sampleInput() domain.QuizInput {
	return domain.QuizInput{
		Title:    "Lecture recap",
		IsActive: true,
		Questions: []domain.QuestionInput{
			{
				Question:      "Pick B",
				Type:          "single_choice",
				Options:       []string{"A", "B"},
				Points:        10,
				CorrectAnswer: domain.StringAnswer("B"),
			},
		},
	}
}

func TestCreateAndGetQuiz(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()

	quiz, err := store.CreateQuiz(ctx, "event-1", sampleInput(), "teacher")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if quiz.ID == "" || quiz.EventID != "event-1" || quiz.CreatedBy != "teacher" {
		t.Fatalf("unexpected quiz %+v", quiz)
	}

	info, err := store.GetQuizInfo(ctx, "event-1")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if !info.HasQuiz || info.QuizID != quiz.ID || info.QuestionCount != 1 {
		t.Fatalf("unexpected info %+v", info)
	}

	def, err := store.GetQuizDefinition(ctx, "event-1")
	if err != nil {
		t.Fatalf("definition: %v", err)
	}
	if def.Title != "Lecture recap" || len(def.Questions) != 1 {
		t.Fatalf("unexpected definition %+v", def)
	}
}

func TestCreateQuizValidation(t *testing.T) {
	store := NewQuizStore()

	_, err := store.CreateQuiz(context.Background(), "event-1", domain.QuizInput{Title: "no questions"}, "u")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	_, err = store.CreateQuiz(context.Background(), "event-1", domain.QuizInput{
		Questions: sampleInput().Questions,
	}, "u")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing title, got %v", err)
	}
}

func TestCreateQuizReplacesExisting(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()

	first, err := store.CreateQuiz(ctx, "event-1", sampleInput(), "u")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.SubmitQuiz(ctx, "event-1", domain.AnswersInput{
		Answers: []domain.AnswerInput{{QuestionID: first.Questions[0].ID, Answer: domain.StringAnswer("B")}},
	}, "student"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	replacement := sampleInput()
	replacement.Title = "Replacement"
	second, err := store.CreateQuiz(ctx, "event-1", replacement, "u")
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("replacement must mint a new quiz id")
	}

	def, err := store.GetQuizDefinition(ctx, "event-1")
	if err != nil {
		t.Fatalf("definition: %v", err)
	}
	if def.Title != "Replacement" {
		t.Fatalf("old quiz still visible: %+v", def)
	}
	if len(store.submissions) != 0 {
		t.Fatalf("old submissions must be discarded, have %d", len(store.submissions))
	}
}

func TestSubmitQuiz(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()

	quiz, err := store.CreateQuiz(ctx, "event-1", sampleInput(), "u")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	result, err := store.SubmitQuiz(ctx, "event-1", domain.AnswersInput{
		QuizID:  quiz.ID,
		Answers: []domain.AnswerInput{{QuestionID: quiz.Questions[0].ID, Answer: domain.StringAnswer("B")}},
	}, "student")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 10 || result.MaxScore != 10 || result.Percentage != 100 || !result.Success {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(result.AnswerResults) != 1 || !result.AnswerResults[0].IsCorrect {
		t.Fatalf("unexpected answer results %+v", result.AnswerResults)
	}
}

func TestSubmitQuizErrors(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()

	_, err := store.SubmitQuiz(ctx, "event-none", domain.AnswersInput{
		Answers: []domain.AnswerInput{{QuestionID: "q", Answer: domain.StringAnswer("B")}},
	}, "u")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	quiz, err := store.CreateQuiz(ctx, "event-1", sampleInput(), "u")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = store.SubmitQuiz(ctx, "event-1", domain.AnswersInput{}, "u")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	_, err = store.SubmitQuiz(ctx, "event-1", domain.AnswersInput{
		QuizID:  "stale-id",
		Answers: []domain.AnswerInput{{QuestionID: quiz.Questions[0].ID, Answer: domain.StringAnswer("B")}},
	}, "u")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestInactiveQuizIsInvisible(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()

	input := sampleInput()
	input.IsActive = false
	if _, err := store.CreateQuiz(ctx, "event-1", input, "u"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.GetQuizInfo(ctx, "event-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("inactive quiz should be invisible, got %v", err)
	}
}
