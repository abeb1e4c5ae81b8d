package scores

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/perkhub/perkhub/app/observability/metrics"
	"github.com/perkhub/perkhub/internal/api"
	"github.com/perkhub/perkhub/internal/api/user"
)

var _ Service = (*ServiceImpl)(nil)

// Service turns raw tracking data into reportable scores. The user lookup and
// the tracking join read from two independently provisioned stores, so a user
// deleted between the existence check and the join is a tolerated race.
type Service interface {
	// TotalScore sums a user's tracked points. A user with no events scores 0.
	// Returns api.ErrNotFound when the user does not exist.
	TotalScore(ctx context.Context, userID uuid.UUID) (*UserScore, error)

	// DailyScores buckets a user's events by UTC calendar date and produces
	// the cumulative series. Dates without events produce no entry.
	DailyScores(ctx context.Context, userID uuid.UUID) (*AggregatedScores, error)

	// Leaderboard recomputes every user's total and ranks them descending,
	// ties broken by the stable user-listing order. Returns api.ErrNotFound
	// when no users exist.
	Leaderboard(ctx context.Context) ([]UserScore, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	users  user.Repo
	repo   Repo
}

func NewService(repo Repo, users user.Repo, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		users:  users,
		repo:   repo,
	}
}

func (s *ServiceImpl) TotalScore(ctx context.Context, userID uuid.UUID) (*UserScore, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get total score: %w", err)
	}

	events, err := s.repo.GetUserEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get total score: %w", err)
	}

	total := 0
	for _, e := range events {
		total += e.Points
	}
	return &UserScore{User: *u, TotalScore: total}, nil
}

func (s *ServiceImpl) DailyScores(ctx context.Context, userID uuid.UUID) (*AggregatedScores, error) {
	start := time.Now()
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get daily scores: %w", err)
	}

	events, err := s.repo.GetUserEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily scores: %w", err)
	}

	metrics.Get().ScoreQueryDuration.Record(ctx, time.Since(start).Seconds())

	return &AggregatedScores{
		UserID:   u.ID,
		UserName: u.Username,
		Scores:   aggregateDaily(events),
	}, nil
}

func (s *ServiceImpl) Leaderboard(ctx context.Context) ([]UserScore, error) {
	users, err := s.users.GetUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get total scores: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: users not found", api.ErrNotFound)
	}

	// Full recompute on every call; cost is O(users x tracking-per-user).
	scores := make([]UserScore, 0, len(users))
	for i := range users {
		events, err := s.repo.GetUserEvents(ctx, users[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get total scores: %w", err)
		}
		total := 0
		for _, e := range events {
			total += e.Points
		}
		scores = append(scores, UserScore{User: users[i], TotalScore: total})
	}

	// Stable sort keeps the original user-listing order for equal totals.
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].TotalScore > scores[j].TotalScore
	})
	return scores, nil
}

// aggregateDaily buckets events by UTC calendar date and computes the running
// total. Events must already be sorted ascending by timestamp; the day total
// itself is order-independent since it is a sum.
func aggregateDaily(events []TrackedEvent) []DailyScore {
	var out []DailyScore
	cumulative := 0

	for i := 0; i < len(events); {
		date := events[i].AddedAt.UTC().Format("2006-01-02")
		dayScore := 0
		for i < len(events) && events[i].AddedAt.UTC().Format("2006-01-02") == date {
			dayScore += events[i].Points
			i++
		}
		cumulative += dayScore
		out = append(out, DailyScore{
			Date:            date,
			Score:           dayScore,
			CumulativeScore: cumulative,
		})
	}
	return out
}
