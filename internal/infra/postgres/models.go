package postgres

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/uptrace/bun"

	"lecture-quiz-service/internal/domain"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quiz,alias:q"`

	ID          int64          `bun:"id,pk,autoincrement"`
	EventID     string         `bun:"event_id,notnull"`
	Title       string         `bun:"title,notnull"`
	Description string         `bun:"description,nullzero"`
	IsActive    bool           `bun:"is_active"`
	CreatedBy   string         `bun:"created_by,nullzero"`
	CreatedAt   time.Time      `bun:"created_at,nullzero"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero"`
	Questions   []*questionRow `bun:"rel:has-many,join:id=quiz_id"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:quiz_question,alias:qq"`

	ID                int64  `bun:"id,pk,autoincrement"`
	QuizID            int64  `bun:"quiz_id,notnull"`
	Position          int    `bun:"position"`
	QuestionText      string `bun:"question_text,nullzero"`
	QuestionType      string `bun:"question_type,nullzero"`
	OptionsJSON       string `bun:"options_json,nullzero"`
	CorrectAnswerJSON string `bun:"correct_answer_json,nullzero"`
	Points            int    `bun:"points"`
}

type submissionRow struct {
	bun.BaseModel `bun:"table:quiz_submission,alias:qs"`

	ID          int64     `bun:"id,pk,autoincrement"`
	QuizID      int64     `bun:"quiz_id,notnull"`
	EventID     string    `bun:"event_id,notnull"`
	UserID      string    `bun:"user_id,nullzero"`
	Score       int       `bun:"score"`
	MaxScore    int       `bun:"max_score"`
	Percentage  int       `bun:"percentage"`
	Success     bool      `bun:"success"`
	AnswersJSON string    `bun:"answers_json,nullzero"`
	SubmittedAt time.Time `bun:"submitted_at,nullzero"`
}

func (r *quizRow) toDomain() (*domain.Quiz, error) {
	quiz := &domain.Quiz{
		ID:          strconv.FormatInt(r.ID, 10),
		EventID:     r.EventID,
		Title:       r.Title,
		Description: r.Description,
		IsActive:    r.IsActive,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Questions:   make([]domain.Question, 0, len(r.Questions)),
	}
	for _, q := range r.Questions {
		question := domain.Question{
			ID:     strconv.FormatInt(q.ID, 10),
			Text:   q.QuestionText,
			Type:   q.QuestionType,
			Points: q.Points,
		}
		if q.OptionsJSON != "" {
			if err := json.Unmarshal([]byte(q.OptionsJSON), &question.Options); err != nil {
				return nil, fmt.Errorf("decode options for question %d: %w", q.ID, err)
			}
		}
		if q.CorrectAnswerJSON != "" {
			answer := new(domain.AnswerValue)
			if err := json.Unmarshal([]byte(q.CorrectAnswerJSON), answer); err != nil {
				return nil, fmt.Errorf("decode correct answer for question %d: %w", q.ID, err)
			}
			question.CorrectAnswer = answer
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz, nil
}

func questionRowsFromInput(quizID int64, inputs []domain.QuestionInput) ([]*questionRow, error) {
	rows := make([]*questionRow, 0, len(inputs))
	for i, in := range inputs {
		row := &questionRow{
			QuizID:       quizID,
			Position:     i,
			QuestionText: in.Question,
			QuestionType: in.Type,
			Points:       in.Points,
		}
		if in.Options != nil {
			data, err := json.Marshal(in.Options)
			if err != nil {
				return nil, fmt.Errorf("encode options for question %d: %w", i, err)
			}
			row.OptionsJSON = string(data)
		}
		if in.CorrectAnswer != nil {
			data, err := json.Marshal(in.CorrectAnswer)
			if err != nil {
				return nil, fmt.Errorf("encode correct answer for question %d: %w", i, err)
			}
			row.CorrectAnswerJSON = string(data)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
