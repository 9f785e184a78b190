// Package postgres implements the transactional quiz store backend on the
// bun ORM. Every contract operation runs inside a single database
// transaction; replace-on-create relies on the unique event id constraint
// plus ON DELETE CASCADE ownership of questions and submissions.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"lecture-quiz-service/internal/domain"
	"lecture-quiz-service/internal/grading"
)

const uniqueViolation = "23505"

type QuizStore struct {
	db    *bun.DB
	clock func() time.Time
}

func NewQuizStore(db *bun.DB) *QuizStore {
	return &QuizStore{db: db, clock: time.Now}
}

func (s *QuizStore) GetQuizInfo(ctx context.Context, eventID string) (domain.QuizInfo, error) {
	var info domain.QuizInfo
	err := s.db.RunInTx(ctx, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx bun.Tx) error {
		row, err := activeQuiz(ctx, tx, eventID)
		if err != nil {
			return err
		}
		info = domain.QuizInfo{
			HasQuiz:       true,
			QuizID:        strconv.FormatInt(row.ID, 10),
			IsActive:      row.IsActive,
			Title:         row.Title,
			QuestionCount: len(row.Questions),
		}
		return nil
	})
	if err != nil {
		return domain.QuizInfo{}, classify(err, "quiz info for event "+eventID)
	}
	return info, nil
}

func (s *QuizStore) GetQuizDefinition(ctx context.Context, eventID string) (*domain.Quiz, error) {
	var quiz *domain.Quiz
	err := s.db.RunInTx(ctx, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx bun.Tx) error {
		row, err := activeQuiz(ctx, tx, eventID)
		if err != nil {
			return err
		}
		quiz, err = row.toDomain()
		return err
	})
	if err != nil {
		return nil, classify(err, "quiz definition for event "+eventID)
	}
	return quiz, nil
}

// CreateQuiz deletes any existing quiz for the event (cascading to its
// questions and submissions) and inserts the new quiz graph, all in one
// transaction. A concurrent create for the same event loses to the unique
// event id constraint and reports a conflict.
func (s *QuizStore) CreateQuiz(ctx context.Context, eventID string, input domain.QuizInput, userID string) (*domain.Quiz, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var quiz *domain.Quiz
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*quizRow)(nil)).
			Where("event_id = ?", eventID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete previous quiz: %w", err)
		}

		now := s.clock()
		row := &quizRow{
			EventID:     eventID,
			Title:       input.Title,
			Description: input.Description,
			IsActive:    input.IsActive,
			CreatedBy:   userID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := tx.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}

		questions, err := questionRowsFromInput(row.ID, input.Questions)
		if err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(&questions).Returning("id").Exec(ctx); err != nil {
			return fmt.Errorf("insert questions: %w", err)
		}

		row.Questions = questions
		quiz, err = row.toDomain()
		return err
	})
	if err != nil {
		if sqlState(err) == uniqueViolation {
			return nil, fmt.Errorf("%w: concurrent quiz creation for event %s", domain.ErrConflict, eventID)
		}
		return nil, classify(err, "create quiz for event "+eventID)
	}
	return quiz, nil
}

func (s *QuizStore) SubmitQuiz(ctx context.Context, eventID string, input domain.AnswersInput, userID string) (*domain.SubmissionResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var result *domain.SubmissionResult
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row, err := activeQuiz(ctx, tx, eventID)
		if err != nil {
			return err
		}
		quizID := strconv.FormatInt(row.ID, 10)
		if input.QuizID != "" && input.QuizID != quizID {
			return fmt.Errorf("%w: quiz id %s does not match event quiz %s", domain.ErrConflict, input.QuizID, quizID)
		}

		quiz, err := row.toDomain()
		if err != nil {
			return err
		}
		graded := grading.Grade(*quiz, input.Answers)

		answersJSON, err := json.Marshal(input.Answers)
		if err != nil {
			return fmt.Errorf("encode answers: %w", err)
		}
		sub := &submissionRow{
			QuizID:      row.ID,
			EventID:     eventID,
			UserID:      userID,
			Score:       graded.Score,
			MaxScore:    graded.MaxScore,
			Percentage:  graded.Percentage,
			Success:     true,
			AnswersJSON: string(answersJSON),
			SubmittedAt: s.clock(),
		}
		if _, err := tx.NewInsert().Model(sub).Returning("id").Exec(ctx); err != nil {
			return fmt.Errorf("insert submission: %w", err)
		}

		result = &domain.SubmissionResult{
			SubmissionID:  strconv.FormatInt(sub.ID, 10),
			Score:         graded.Score,
			MaxScore:      graded.MaxScore,
			Percentage:    graded.Percentage,
			Success:       true,
			AnswerResults: graded.AnswerResults,
		}
		return nil
	})
	if err != nil {
		return nil, classify(err, "submit quiz for event "+eventID)
	}
	return result, nil
}

func activeQuiz(ctx context.Context, tx bun.Tx, eventID string) (*quizRow, error) {
	row := new(quizRow)
	err := tx.NewSelect().
		Model(row).
		Relation("Questions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("position ASC")
		}).
		Where("q.event_id = ?", eventID).
		Where("q.is_active = ?", true).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: event %s has no quiz", domain.ErrNotFound, eventID)
		}
		return nil, err
	}
	return row, nil
}

// classify keeps taxonomy sentinels intact and folds everything else into
// the unavailable bucket; a database failure must not leak driver errors to
// the service layer.
func classify(err error, op string) error {
	if errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrInvalidInput) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrUnavailable, op, err)
}

func sqlState(err error) string {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C')
	}
	return ""
}
