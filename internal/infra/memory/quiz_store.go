package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lecture-quiz-service/internal/domain"
	"lecture-quiz-service/internal/grading"
)

// QuizStore is the ephemeral backend: an in-process, unsynchronized slice of
// quizzes with first-match-by-event-id lookup. Data lives for the process
// lifetime only and there is no concurrency guarantee; it exists as the safe
// default when no durable backend is configured, and for development.
type QuizStore struct {
	quizzes     []domain.Quiz
	submissions []storedSubmission
	clock       func() time.Time
}

type storedSubmission struct {
	id      string
	quizID  string
	eventID string
	userID  string
	result  domain.SubmissionResult
	at      time.Time
}

func NewQuizStore() *QuizStore {
	return &QuizStore{clock: time.Now}
}

func (s *QuizStore) GetQuizInfo(_ context.Context, eventID string) (domain.QuizInfo, error) {
	quiz := s.findActive(eventID)
	if quiz == nil {
		return domain.QuizInfo{}, domain.ErrNotFound
	}
	return domain.QuizInfo{
		HasQuiz:       true,
		QuizID:        quiz.ID,
		IsActive:      quiz.IsActive,
		Title:         quiz.Title,
		QuestionCount: len(quiz.Questions),
	}, nil
}

func (s *QuizStore) GetQuizDefinition(_ context.Context, eventID string) (*domain.Quiz, error) {
	quiz := s.findActive(eventID)
	if quiz == nil {
		return nil, domain.ErrNotFound
	}
	out := *quiz
	return &out, nil
}

// CreateQuiz replaces any existing quiz for the event, discarding its
// submissions, then stores the new quiz graph.
func (s *QuizStore) CreateQuiz(_ context.Context, eventID string, input domain.QuizInput, userID string) (*domain.Quiz, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	s.dropQuizForEvent(eventID)

	now := s.clock()
	quiz := domain.Quiz{
		ID:          uuid.NewString(),
		EventID:     eventID,
		Title:       input.Title,
		Description: input.Description,
		IsActive:    input.IsActive,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Questions:   make([]domain.Question, 0, len(input.Questions)),
	}
	for _, q := range input.Questions {
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:            uuid.NewString(),
			Text:          q.Question,
			Type:          q.Type,
			Options:       q.Options,
			Points:        q.Points,
			CorrectAnswer: q.CorrectAnswer,
		})
	}

	s.quizzes = append(s.quizzes, quiz)
	out := quiz
	return &out, nil
}

func (s *QuizStore) SubmitQuiz(_ context.Context, eventID string, input domain.AnswersInput, userID string) (*domain.SubmissionResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	quiz := s.findActive(eventID)
	if quiz == nil {
		return nil, fmt.Errorf("%w: event %s has no quiz", domain.ErrNotFound, eventID)
	}
	if input.QuizID != "" && input.QuizID != quiz.ID {
		return nil, fmt.Errorf("%w: quiz id %s does not match event quiz %s", domain.ErrConflict, input.QuizID, quiz.ID)
	}

	graded := grading.Grade(*quiz, input.Answers)
	result := domain.SubmissionResult{
		SubmissionID:  uuid.NewString(),
		Score:         graded.Score,
		MaxScore:      graded.MaxScore,
		Percentage:    graded.Percentage,
		Success:       true,
		AnswerResults: graded.AnswerResults,
	}

	s.submissions = append(s.submissions, storedSubmission{
		id:      result.SubmissionID,
		quizID:  quiz.ID,
		eventID: eventID,
		userID:  userID,
		result:  result,
		at:      s.clock(),
	})
	return &result, nil
}

func (s *QuizStore) findActive(eventID string) *domain.Quiz {
	for i := range s.quizzes {
		if s.quizzes[i].EventID == eventID && s.quizzes[i].IsActive {
			return &s.quizzes[i]
		}
	}
	return nil
}

func (s *QuizStore) dropQuizForEvent(eventID string) {
	kept := s.quizzes[:0]
	var droppedID string
	for _, quiz := range s.quizzes {
		if quiz.EventID == eventID {
			droppedID = quiz.ID
			continue
		}
		kept = append(kept, quiz)
	}
	s.quizzes = kept
	if droppedID == "" {
		return
	}
	keptSubs := s.submissions[:0]
	for _, sub := range s.submissions {
		if sub.quizID == droppedID {
			continue
		}
		keptSubs = append(keptSubs, sub)
	}
	s.submissions = keptSubs
}
