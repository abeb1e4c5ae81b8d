package points

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/perkhub/perkhub/internal/api"
)

var _ Service = (*ServiceImpl)(nil)

// Service exposes the points-store operations. Add, Update, Delete and List
// share one entry point per verb, dispatched by an explicit switch on the
// entity kind.
type Service interface {
	Add(ctx context.Context, in CreateInput) (interface{}, error)
	AddTracking(ctx context.Context, userID uuid.UUID, in TrackingCreate) (*Tracking, error)
	List(ctx context.Context, kind EntityKind) (*ListResult, error)
	UserActivities(ctx context.Context, userID uuid.UUID) ([]Activity, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) (interface{}, error)
	Delete(ctx context.Context, kind EntityKind, id uuid.UUID) (*api.DeleteResponse, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repo
}

func NewService(repo Repo, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *ServiceImpl) Add(ctx context.Context, in CreateInput) (interface{}, error) {
	switch in.Kind {
	case KindRewards:
		if in.Reward == nil {
			return nil, fmt.Errorf("%w: missing reward payload", api.ErrBadRequest)
		}
		return s.repo.CreateReward(ctx, *in.Reward)
	case KindActivities:
		if in.Activity == nil {
			return nil, fmt.Errorf("%w: missing activity payload", api.ErrBadRequest)
		}
		return s.repo.CreateActivity(ctx, *in.Activity)
	default:
		// Tracking needs the authenticated user and goes through AddTracking.
		return nil, fmt.Errorf("%w: invalid data type %q", api.ErrBadRequest, in.Kind)
	}
}

func (s *ServiceImpl) AddTracking(ctx context.Context, userID uuid.UUID, in TrackingCreate) (*Tracking, error) {
	if in.ActivityID == uuid.Nil {
		return nil, fmt.Errorf("%w: activity_id is required", api.ErrBadRequest)
	}
	if in.AddedAt == nil || in.AddedAt.IsZero() {
		return nil, fmt.Errorf("%w: added_at is required", api.ErrBadRequest)
	}
	return s.repo.CreateTracking(ctx, userID, in.ActivityID, in.AddedAt.UTC())
}

func (s *ServiceImpl) List(ctx context.Context, kind EntityKind) (*ListResult, error) {
	res := &ListResult{Kind: kind}
	var err error
	switch kind {
	case KindRewards:
		res.Rewards, err = s.repo.ListRewards(ctx)
	case KindActivities:
		res.Activities, err = s.repo.ListActivities(ctx)
	case KindTracking:
		res.Tracking, err = s.repo.ListTracking(ctx)
	default:
		return nil, fmt.Errorf("%w: invalid table type %q", api.ErrBadRequest, kind)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ServiceImpl) UserActivities(ctx context.Context, userID uuid.UUID) ([]Activity, error) {
	return s.repo.GetUserActivities(ctx, userID)
}

func (s *ServiceImpl) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (interface{}, error) {
	switch in.Kind {
	case KindRewards:
		if in.Reward == nil {
			return nil, fmt.Errorf("%w: missing reward payload", api.ErrBadRequest)
		}
		return s.repo.UpdateReward(ctx, id, *in.Reward)
	case KindActivities:
		if in.Activity == nil {
			return nil, fmt.Errorf("%w: missing activity payload", api.ErrBadRequest)
		}
		return s.repo.UpdateActivity(ctx, id, *in.Activity)
	default:
		return nil, fmt.Errorf("%w: invalid data type %q", api.ErrBadRequest, in.Kind)
	}
}

func (s *ServiceImpl) Delete(ctx context.Context, kind EntityKind, id uuid.UUID) (*api.DeleteResponse, error) {
	var err error
	start := time.Now()
	switch kind {
	case KindRewards:
		err = s.repo.DeleteReward(ctx, id)
	case KindActivities:
		err = s.repo.DeleteActivity(ctx, id)
	case KindTracking:
		err = s.repo.DeleteTracking(ctx, id)
	default:
		return nil, fmt.Errorf("%w: invalid table type %q", api.ErrBadRequest, kind)
	}
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Entity deleted",
		slog.String("kind", string(kind)),
		slog.String("id", id.String()),
		slog.Duration("took", time.Since(start)))

	return &api.DeleteResponse{
		ID:      id.String(),
		Message: "Data deleted successfully",
		Status:  "success",
	}, nil
}
