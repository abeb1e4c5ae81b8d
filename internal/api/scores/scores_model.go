package scores

import (
	"time"

	"github.com/google/uuid"

	"github.com/perkhub/perkhub/internal/api/user"
)

// TrackedEvent is one tracking row joined to its activity's point value,
// which is all the aggregation pipeline needs.
type TrackedEvent struct {
	ID      uuid.UUID
	AddedAt time.Time
	Points  int
}

// UserScore pairs a user with their summed points.
type UserScore struct {
	User       user.User `json:"user"`
	TotalScore int       `json:"total_score"`
}

// DailyScore is one entry of the cumulative daily series. Date is the UTC
// calendar date in ISO form.
type DailyScore struct {
	Date            string `json:"date"`
	Score           int    `json:"score"`
	CumulativeScore int    `json:"cumulative_score"`
}

// AggregatedScores is the per-user daily series response.
type AggregatedScores struct {
	UserID   uuid.UUID    `json:"user_id"`
	UserName string       `json:"user_name"`
	Scores   []DailyScore `json:"scores"`
}
