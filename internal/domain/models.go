package domain

import (
	"fmt"
	"strings"
	"time"
)

// Question is one graded question inside a quiz. CorrectAnswer is persisted
// but must be stripped before a definition is handed to a quiz taker; see
// Quiz.Sanitized.
type Question struct {
	ID            string       `json:"id"`
	Text          string       `json:"question"`
	Type          string       `json:"type"`
	Options       []string     `json:"options,omitempty"`
	Points        int          `json:"points"`
	CorrectAnswer *AnswerValue `json:"correctAnswer,omitempty"`
}

// Quiz is a titled, ordered set of questions attached to exactly one event.
type Quiz struct {
	ID          string     `json:"id"`
	EventID     string     `json:"eventId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	IsActive    bool       `json:"isActive"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Questions   []Question `json:"questions"`
}

// Sanitized returns a copy of the quiz with correct answers removed, safe to
// serve to quiz takers.
func (q Quiz) Sanitized() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		question.CorrectAnswer = nil
		out.Questions[i] = question
	}
	return out
}

// Question returns the question with the given id, or nil.
func (q Quiz) Question(id string) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i]
		}
	}
	return nil
}

// QuizInfo is the lightweight existence summary for an event.
type QuizInfo struct {
	HasQuiz       bool   `json:"hasQuiz"`
	QuizID        string `json:"quizId,omitempty"`
	IsActive      bool   `json:"isActive"`
	Title         string `json:"title,omitempty"`
	QuestionCount int    `json:"questionCount"`
}

// QuestionInput is one question of a quiz being created.
type QuestionInput struct {
	Question      string       `json:"question"`
	Type          string       `json:"type"`
	Options       []string     `json:"options,omitempty"`
	Points        int          `json:"points"`
	CorrectAnswer *AnswerValue `json:"correctAnswer,omitempty"`
}

// QuizInput is the payload for creating (replacing) an event's quiz.
type QuizInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	IsActive    bool            `json:"isActive"`
	Questions   []QuestionInput `json:"questions"`
}

// Validate enforces the creation invariants: non-empty title, at least one
// question, non-negative points.
func (in QuizInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: quiz title is required", ErrInvalidInput)
	}
	if len(in.Questions) == 0 {
		return fmt.Errorf("%w: quiz must have at least one question", ErrInvalidInput)
	}
	for i, q := range in.Questions {
		if q.Points < 0 {
			return fmt.Errorf("%w: question %d has negative points", ErrInvalidInput, i)
		}
	}
	return nil
}

// AnswerInput is one submitted answer keyed by question id.
type AnswerInput struct {
	QuestionID string       `json:"questionId"`
	Answer     *AnswerValue `json:"answer"`
}

// AnswersInput is a full submission. QuizID is optional; when set it must
// match the event's active quiz.
type AnswersInput struct {
	QuizID  string        `json:"quizId,omitempty"`
	Answers []AnswerInput `json:"answers"`
}

// Validate rejects empty submissions.
func (in AnswersInput) Validate() error {
	if len(in.Answers) == 0 {
		return fmt.Errorf("%w: answers list is empty", ErrInvalidInput)
	}
	return nil
}

// AnswerResult is the graded outcome for one submitted answer. Computed at
// grading time; the relational backend serializes the submitted answers as
// JSON rather than storing results as rows.
type AnswerResult struct {
	QuestionID string       `json:"questionId"`
	Answer     *AnswerValue `json:"answer"`
	IsCorrect  bool         `json:"isCorrect"`
	Points     int          `json:"points"`
}

// SubmissionResult is the outcome of a graded submission.
type SubmissionResult struct {
	SubmissionID  string         `json:"submissionId"`
	Score         int            `json:"score"`
	MaxScore      int            `json:"maxScore"`
	Percentage    int            `json:"percentage"`
	Success       bool           `json:"success"`
	AnswerResults []AnswerResult `json:"answerResults,omitempty"`
}

// SubmissionSummary is one row of the stats surface.
type SubmissionSummary struct {
	UserID      string    `json:"userId"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"maxScore"`
	Percentage  int       `json:"percentage"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// QuizStats aggregates submissions for an event.
type QuizStats struct {
	EventID           string              `json:"eventId"`
	TotalSubmissions  int                 `json:"totalSubmissions"`
	AveragePercentage int                 `json:"averagePercentage"`
	Submissions       []SubmissionSummary `json:"submissions"`
}
