package services

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sameicp/assignment-monitor/internal/db/model"
	"github.com/sameicp/assignment-monitor/internal/observability/tracing"
	"github.com/sameicp/assignment-monitor/internal/types"
)

type SupervisorPublic struct {
	ParticipantId string `json:"participant_id"`
	Name          string `json:"name"`
	AreaOfStudy   string `json:"area_of_study"`
}

// PickSupervisor selects a staked supervisor uniformly at random.
func (s *Services) PickSupervisor(ctx context.Context) (*SupervisorPublic, *types.Error) {
	pool, err := tracing.WrapWithSpan(ctx, "FindSupervisorPool", func() ([]model.SupervisorPoolDocument, error) {
		return s.DbClient.FindSupervisorPool(ctx)
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching supervisor pool")
		return nil, types.NewInternalServiceError(err)
	}
	if len(pool) == 0 {
		log.Ctx(ctx).Warn().Msg("supervisor pool is empty")
		return nil, types.NewErrorWithMsg(
			http.StatusConflict, types.NoSupervisorAvailable, "no staked supervisor is available",
		)
	}

	index := s.pickIndex(len(pool))
	if index < 0 || index >= len(pool) {
		log.Ctx(ctx).Error().Int("index", index).Int("poolSize", len(pool)).Msg("supervisor index out of range")
		return nil, types.NewErrorWithMsg(
			http.StatusInternalServerError, types.InternalServiceError, "supervisor index out of range",
		)
	}
	picked := pool[index]
	return &SupervisorPublic{
		ParticipantId: picked.ParticipantId,
		Name:          picked.Name,
		AreaOfStudy:   picked.AreaOfStudy,
	}, nil
}

// GetSupervisorList returns the supervisor pool in the order supervisors joined it.
func (s *Services) GetSupervisorList(ctx context.Context) ([]SupervisorPublic, *types.Error) {
	pool, err := tracing.WrapWithSpan(ctx, "FindSupervisorPool", func() ([]model.SupervisorPoolDocument, error) {
		return s.DbClient.FindSupervisorPool(ctx)
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching supervisor pool")
		return nil, types.NewInternalServiceError(err)
	}

	supervisors := make([]SupervisorPublic, 0, len(pool))
	for _, entry := range pool {
		supervisors = append(supervisors, SupervisorPublic{
			ParticipantId: entry.ParticipantId,
			Name:          entry.Name,
			AreaOfStudy:   entry.AreaOfStudy,
		})
	}
	return supervisors, nil
}
