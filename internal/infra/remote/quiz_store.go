// Package remote implements the quiz store backend that delegates
// persistence to an external document API. The protocol is two endpoints,
// "api/query" and "api/mutation", each a single POST of {path, args}
// answering {value}. Grading still runs through the shared engine: submit
// fetches the definition, grades locally and persists the graded submission.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"lecture-quiz-service/internal/domain"
	"lecture-quiz-service/internal/grading"
)

const (
	connectTimeout = 10 * time.Second
	requestTimeout = 30 * time.Second

	pathGetQuiz    = "quiz:getQuiz"
	pathCreateQuiz = "quiz:createQuiz"
	pathSubmitQuiz = "quiz:submitQuiz"
)

type QuizStore struct {
	baseURL string
	client  *http.Client
}

// NewQuizStore builds a store against the given deployment URL. The URL is
// normalized to end with a slash so endpoint paths append cleanly.
func NewQuizStore(baseURL string) *QuizStore {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &QuizStore{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
			},
		},
	}
}

type envelope struct {
	Value json.RawMessage `json:"value"`
}

type quizDoc struct {
	ID          string        `json:"_id"`
	EventID     string        `json:"eventId"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	IsActive    bool          `json:"isActive"`
	CreatedBy   string        `json:"createdBy,omitempty"`
	Questions   []questionDoc `json:"questions"`
}

type questionDoc struct {
	ID            string              `json:"id"`
	Question      string              `json:"question"`
	Type          string              `json:"type"`
	Options       []string            `json:"options,omitempty"`
	Points        int                 `json:"points"`
	CorrectAnswer *domain.AnswerValue `json:"correctAnswer,omitempty"`
}

type submissionDoc struct {
	SubmissionID string `json:"submissionId"`
}

func (s *QuizStore) GetQuizInfo(ctx context.Context, eventID string) (domain.QuizInfo, error) {
	doc, err := s.fetchQuiz(ctx, eventID)
	if err != nil {
		return domain.QuizInfo{}, err
	}
	return domain.QuizInfo{
		HasQuiz:       true,
		QuizID:        doc.ID,
		IsActive:      doc.IsActive,
		Title:         doc.Title,
		QuestionCount: len(doc.Questions),
	}, nil
}

func (s *QuizStore) GetQuizDefinition(ctx context.Context, eventID string) (*domain.Quiz, error) {
	doc, err := s.fetchQuiz(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (s *QuizStore) CreateQuiz(ctx context.Context, eventID string, input domain.QuizInput, userID string) (*domain.Quiz, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	questions := make([]questionDoc, 0, len(input.Questions))
	for _, q := range input.Questions {
		questions = append(questions, questionDoc{
			ID:            uuid.NewString(),
			Question:      q.Question,
			Type:          q.Type,
			Options:       q.Options,
			Points:        q.Points,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	args := map[string]interface{}{
		"eventId":   eventID,
		"title":     input.Title,
		"questions": questions,
		"isActive":  input.IsActive,
		"createdBy": userID,
	}
	if input.Description != "" {
		args["description"] = input.Description
	}

	value, err := s.call(ctx, "api/mutation", pathCreateQuiz, args)
	if err != nil {
		return nil, err
	}
	var doc quizDoc
	if err := json.Unmarshal(value, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode created quiz: %v", domain.ErrUnavailable, err)
	}
	return doc.toDomain(), nil
}

func (s *QuizStore) SubmitQuiz(ctx context.Context, eventID string, input domain.AnswersInput, userID string) (*domain.SubmissionResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	doc, err := s.fetchQuiz(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if input.QuizID != "" && input.QuizID != doc.ID {
		return nil, fmt.Errorf("%w: quiz id %s does not match event quiz %s", domain.ErrConflict, input.QuizID, doc.ID)
	}

	graded := grading.Grade(*doc.toDomain(), input.Answers)

	value, err := s.call(ctx, "api/mutation", pathSubmitQuiz, map[string]interface{}{
		"eventId":       eventID,
		"quizId":        doc.ID,
		"userId":        userID,
		"answers":       input.Answers,
		"score":         graded.Score,
		"maxScore":      graded.MaxScore,
		"percentage":    graded.Percentage,
		"answerResults": graded.AnswerResults,
	})
	if err != nil {
		return nil, err
	}
	var sub submissionDoc
	if err := json.Unmarshal(value, &sub); err != nil {
		return nil, fmt.Errorf("%w: decode submission: %v", domain.ErrUnavailable, err)
	}

	return &domain.SubmissionResult{
		SubmissionID:  sub.SubmissionID,
		Score:         graded.Score,
		MaxScore:      graded.MaxScore,
		Percentage:    graded.Percentage,
		Success:       true,
		AnswerResults: graded.AnswerResults,
	}, nil
}

// fetchQuiz resolves the event's active quiz document, or ErrNotFound when
// the API answers a null value or an inactive quiz.
func (s *QuizStore) fetchQuiz(ctx context.Context, eventID string) (*quizDoc, error) {
	value, err := s.call(ctx, "api/query", pathGetQuiz, map[string]interface{}{"eventId": eventID})
	if err != nil {
		return nil, err
	}
	if len(value) == 0 || string(value) == "null" {
		return nil, fmt.Errorf("%w: event %s has no quiz", domain.ErrNotFound, eventID)
	}
	var doc quizDoc
	if err := json.Unmarshal(value, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode quiz: %v", domain.ErrUnavailable, err)
	}
	if !doc.IsActive {
		return nil, fmt.Errorf("%w: event %s has no active quiz", domain.ErrNotFound, eventID)
	}
	return &doc, nil
}

func (s *QuizStore) call(ctx context.Context, endpoint, path string, args interface{}) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"path": path,
		"args": args,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnavailable, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrUnavailable, path, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decode %s response: %v", domain.ErrUnavailable, path, err)
	}
	return env.Value, nil
}

func (d *quizDoc) toDomain() *domain.Quiz {
	quiz := &domain.Quiz{
		ID:          d.ID,
		EventID:     d.EventID,
		Title:       d.Title,
		Description: d.Description,
		IsActive:    d.IsActive,
		CreatedBy:   d.CreatedBy,
		Questions:   make([]domain.Question, 0, len(d.Questions)),
	}
	for _, q := range d.Questions {
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:            q.ID,
			Text:          q.Question,
			Type:          q.Type,
			Options:       q.Options,
			Points:        q.Points,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	return quiz
}
