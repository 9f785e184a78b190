package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"lecture-quiz-service/internal/domain"
)

// QuizStore is the contract every persistence backend implements. All four
// operations resolve the event's *active* quiz and must grade through the
// shared grading engine so backends cannot diverge.
//
// Implementations return honest errors from the domain taxonomy; degrading
// read failures to empty results is the façade's job, not theirs.
type QuizStore interface {
	GetQuizInfo(ctx context.Context, eventID string) (domain.QuizInfo, error)
	GetQuizDefinition(ctx context.Context, eventID string) (*domain.Quiz, error)
	CreateQuiz(ctx context.Context, eventID string, input domain.QuizInput, userID string) (*domain.Quiz, error)
	SubmitQuiz(ctx context.Context, eventID string, input domain.AnswersInput, userID string) (*domain.SubmissionResult, error)
}

// StatsReader is an optional backend capability serving the submission stats
// surface. Only the transactional backend implements it.
type StatsReader interface {
	EventStats(ctx context.Context, eventID string) (domain.QuizStats, error)
}

// QuizService wraps exactly one backend and normalizes its failures: read
// operations degrade to empty results, write operations surface a descriptive
// error carrying the taxonomy sentinel. The backend is an owned dependency
// injected at construction; there is no process-global accessor.
type QuizService struct {
	store QuizStore
}

func NewQuizService(store QuizStore) *QuizService {
	return &QuizService{store: store}
}

// GetQuizInfo never fails visibly: any backend error is logged and collapsed
// into a "no quiz" answer.
func (s *QuizService) GetQuizInfo(ctx context.Context, eventID string) domain.QuizInfo {
	info, err := s.store.GetQuizInfo(ctx, eventID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Printf("quiz info lookup failed for event %s: %v", eventID, err)
		}
		return domain.QuizInfo{}
	}
	return info
}

// GetQuizDefinition returns the event's active quiz, or nil when there is
// none or the backend is unreachable. Collapsing backend errors into "no
// quiz" on the read path is deliberate policy: the quiz surface is an
// optional add-on to an event and must not break event playback.
func (s *QuizService) GetQuizDefinition(ctx context.Context, eventID string) *domain.Quiz {
	quiz, err := s.store.GetQuizDefinition(ctx, eventID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Printf("quiz definition lookup failed for event %s: %v", eventID, err)
		}
		return nil
	}
	return quiz
}

// CreateQuiz replaces the event's quiz with a new one. Validation and
// conflict errors pass through; anything else is wrapped with context.
func (s *QuizService) CreateQuiz(ctx context.Context, eventID string, input domain.QuizInput, userID string) (*domain.Quiz, error) {
	quiz, err := s.store.CreateQuiz(ctx, eventID, input, userID)
	if err != nil {
		return nil, fmt.Errorf("create quiz for event %s: %w", eventID, err)
	}
	return quiz, nil
}

// SubmitQuiz grades and persists one submission.
func (s *QuizService) SubmitQuiz(ctx context.Context, eventID string, input domain.AnswersInput, userID string) (*domain.SubmissionResult, error) {
	result, err := s.store.SubmitQuiz(ctx, eventID, input, userID)
	if err != nil {
		return nil, fmt.Errorf("submit quiz for event %s: %w", eventID, err)
	}
	return result, nil
}
