package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"lecture-quiz-service/internal/domain"
)

// recentSubmissionLimit bounds the per-event submission list served to the
// stats dashboard.
const recentSubmissionLimit = 50

// StatsReader serves the read-only submission stats surface from the same
// Postgres schema the transactional store writes. It runs on its own pgx
// pool so dashboard traffic never competes with store transactions.
type StatsReader struct {
	pool *pgxpool.Pool
}

func NewStatsReader(pool *pgxpool.Pool) *StatsReader {
	return &StatsReader{pool: pool}
}

func (r *StatsReader) EventStats(ctx context.Context, eventID string) (domain.QuizStats, error) {
	stats := domain.QuizStats{EventID: eventID}

	var avg float64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(percentage), 0)
		 FROM quiz_submission WHERE event_id = $1`,
		eventID,
	).Scan(&stats.TotalSubmissions, &avg)
	if err != nil {
		return domain.QuizStats{}, fmt.Errorf("%w: submission aggregate: %v", domain.ErrUnavailable, err)
	}
	stats.AveragePercentage = int(avg)

	rows, err := r.pool.Query(ctx,
		`SELECT COALESCE(user_id, ''), score, max_score, percentage, submitted_at
		 FROM quiz_submission WHERE event_id = $1
		 ORDER BY submitted_at DESC LIMIT $2`,
		eventID, recentSubmissionLimit,
	)
	if err != nil {
		return domain.QuizStats{}, fmt.Errorf("%w: submission list: %v", domain.ErrUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var sub domain.SubmissionSummary
		if err := rows.Scan(&sub.UserID, &sub.Score, &sub.MaxScore, &sub.Percentage, &sub.SubmittedAt); err != nil {
			return domain.QuizStats{}, fmt.Errorf("%w: scan submission: %v", domain.ErrUnavailable, err)
		}
		stats.Submissions = append(stats.Submissions, sub)
	}
	if err := rows.Err(); err != nil {
		return domain.QuizStats{}, fmt.Errorf("%w: submission list: %v", domain.ErrUnavailable, err)
	}
	return stats, nil
}
