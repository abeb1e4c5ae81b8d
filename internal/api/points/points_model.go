package points

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/perkhub/perkhub/internal/api"
)

// EntityKind selects which points-store table an operation targets.
type EntityKind string

const (
	KindRewards    EntityKind = "rewards"
	KindActivities EntityKind = "activities"
	KindTracking   EntityKind = "tracking"
)

// ParseEntityKind resolves a URL path segment into an EntityKind.
// Singular forms are accepted, matching the route naming.
func ParseEntityKind(s string) (EntityKind, error) {
	switch s {
	case "rewards", "reward":
		return KindRewards, nil
	case "activities", "activity":
		return KindActivities, nil
	case "tracking":
		return KindTracking, nil
	}
	return "", fmt.Errorf("%w: invalid table type %q", api.ErrBadRequest, s)
}

// Reward is a redeemable item. It shares point semantics with Activity but
// has no relationship to tracking.
type Reward struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Points int       `json:"points"`
}

// Activity is a named, point-valued unit of trackable work.
type Activity struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Points int       `json:"points"`
}

// Tracking records that a user performed an activity at a point in time.
// Its id is only unique per user: (id, user_id) is the composite key.
type Tracking struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	ActivityID uuid.UUID `json:"activity_id"`
	AddedAt    time.Time `json:"added_at"`
}

// TrackingWithActivity joins a tracking row to its activity.
type TrackingWithActivity struct {
	Tracking
	Activity Activity `json:"activity"`
}

type RewardCreate struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

type ActivityCreate struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// TrackingCreate is the body for logging an activity. The timestamp is a
// required input; the server never guesses one.
type TrackingCreate struct {
	ActivityID uuid.UUID  `json:"activity_id"`
	AddedAt    *time.Time `json:"added_at"`
}

type RewardUpdate struct {
	Name   *string `json:"name,omitempty"`
	Points *int    `json:"points,omitempty"`
}

type ActivityUpdate struct {
	Name   *string `json:"name,omitempty"`
	Points *int    `json:"points,omitempty"`
}

// CreateInput is the tagged variant dispatched by Service.Add. Exactly one
// payload field matching Kind must be set.
type CreateInput struct {
	Kind     EntityKind
	Reward   *RewardCreate
	Activity *ActivityCreate
}

// UpdateInput is the tagged variant dispatched by Service.Update.
type UpdateInput struct {
	Kind     EntityKind
	Reward   *RewardUpdate
	Activity *ActivityUpdate
}

// ListResult carries the rows for whichever kind was listed.
type ListResult struct {
	Kind       EntityKind
	Rewards    []Reward
	Activities []Activity
	Tracking   []TrackingWithActivity
}
