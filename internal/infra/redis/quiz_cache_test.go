package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"lecture-quiz-service/internal/app"
	"lecture-quiz-service/internal/domain"
	"lecture-quiz-service/internal/infra/memory"
)

// countingStore counts definition reads hitting the underlying backend.
type countingStore struct {
	app.QuizStore
	definitionReads int
}

func (s *countingStore) GetQuizDefinition(ctx context.Context, eventID string) (*domain.Quiz, error) {
	s.definitionReads++
	return s.QuizStore.GetQuizDefinition(ctx, eventID)
}

func newCachedStore(t *testing.T) (*countingStore, *QuizCache, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	inner := &countingStore{QuizStore: memory.NewQuizStore()}
	return inner, NewQuizCache(client, inner, time.Minute), mr.Close
}

func quizInput(title string) domain.QuizInput {
	return domain.QuizInput{
		Title:    title,
		IsActive: true,
		Questions: []domain.QuestionInput{
			{Question: "Pick B", Type: "single_choice", Points: 10, CorrectAnswer: domain.StringAnswer("B")},
		},
	}
}

func TestDefinitionIsCached(t *testing.T) {
	ctx := context.Background()
	inner, cache, done := newCachedStore(t)
	defer done()

	if _, err := cache.CreateQuiz(ctx, "event-1", quizInput("Cached"), "u"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := cache.GetQuizDefinition(ctx, "event-1"); err != nil {
		t.Fatalf("first read: %v", err)
	}
	if inner.definitionReads != 1 {
		t.Fatalf("expected one backend read, got %d", inner.definitionReads)
	}

	quiz, err := cache.GetQuizDefinition(ctx, "event-1")
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if inner.definitionReads != 1 {
		t.Fatalf("expected cache hit, backend reads %d", inner.definitionReads)
	}
	if quiz.Title != "Cached" || len(quiz.Questions) != 1 {
		t.Fatalf("cache returned wrong quiz %+v", quiz)
	}
}

func TestCreateInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	_, cache, done := newCachedStore(t)
	defer done()

	if _, err := cache.CreateQuiz(ctx, "event-1", quizInput("First"), "u"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := cache.GetQuizDefinition(ctx, "event-1"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	if _, err := cache.CreateQuiz(ctx, "event-1", quizInput("Second"), "u"); err != nil {
		t.Fatalf("replace: %v", err)
	}

	quiz, err := cache.GetQuizDefinition(ctx, "event-1")
	if err != nil {
		t.Fatalf("read after replace: %v", err)
	}
	if quiz.Title != "Second" {
		t.Fatalf("stale definition served after replacement: %+v", quiz)
	}
}

func TestSubmitPassesThrough(t *testing.T) {
	ctx := context.Background()
	_, cache, done := newCachedStore(t)
	defer done()

	quiz, err := cache.CreateQuiz(ctx, "event-1", quizInput("Quiz"), "u")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	result, err := cache.SubmitQuiz(ctx, "event-1", domain.AnswersInput{
		Answers: []domain.AnswerInput{{QuestionID: quiz.Questions[0].ID, Answer: domain.StringAnswer("B")}},
	}, "student")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 10 || result.Percentage != 100 {
		t.Fatalf("unexpected result %+v", result)
	}
}
