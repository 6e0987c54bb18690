package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sameicp/assignment-monitor/internal/db"
	"github.com/sameicp/assignment-monitor/internal/db/model"
	"github.com/sameicp/assignment-monitor/internal/observability/metrics"
	"github.com/sameicp/assignment-monitor/internal/observability/tracing"
	"github.com/sameicp/assignment-monitor/internal/types"
	"github.com/sameicp/assignment-monitor/internal/utils"
)

type ParticipantPublic struct {
	ParticipantId string `json:"participant_id"`
	Name          string `json:"name"`
	AreaOfStudy   string `json:"area_of_study"`
	Role          string `json:"role"`
	HasStaked     bool   `json:"has_staked"`
}

func fromParticipantDocument(p model.ParticipantDocument) ParticipantPublic {
	return ParticipantPublic{
		ParticipantId: p.Id,
		Name:          p.Name,
		AreaOfStudy:   p.AreaOfStudy,
		Role:          p.Role.ToString(),
		HasStaked:     p.HasStaked,
	}
}

// RegisterParticipant creates a participant with no stake and a zero balance.
func (s *Services) RegisterParticipant(
	ctx context.Context, name, areaOfStudy string, role types.Role,
) (string, *types.Error) {
	name = strings.TrimSpace(name)
	areaOfStudy = strings.TrimSpace(areaOfStudy)
	if name == "" {
		return "", types.NewErrorWithMsg(http.StatusBadRequest, types.ValidationError, "name is required")
	}
	if areaOfStudy == "" {
		return "", types.NewErrorWithMsg(http.StatusBadRequest, types.ValidationError, "area of study is required")
	}
	if role != types.Student && role != types.Supervisor {
		return "", types.NewErrorWithMsg(http.StatusBadRequest, types.ValidationError, "invalid participant role")
	}

	participant := model.NewParticipantDocument(
		utils.NewEntityId(), name, areaOfStudy, role, time.Now().UnixNano(),
	)
	err := tracing.WrapWithSpanNoResult(ctx, "SaveParticipant", func() error {
		return s.DbClient.SaveParticipant(ctx, participant)
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("role", role.ToString()).Msg("error while saving participant")
		return "", types.NewInternalServiceError(err)
	}

	log.Ctx(ctx).Info().Str("participantId", participant.Id).Str("role", role.ToString()).
		Msg("participant registered")
	return participant.Id, nil
}

// Stake sets the participant's balance to amount. Supervisors join the pool
// on their first stake.
func (s *Services) Stake(ctx context.Context, participantId string, amount uint64) *types.Error {
	participant, err := tracing.WrapWithSpan(ctx, "FindParticipantById", func() (*model.ParticipantDocument, error) {
		return s.DbClient.FindParticipantById(ctx, participantId)
	})
	if err != nil {
		metrics.RecordEscrowEvent(metrics.StakeEvent, metrics.Error)
		return participantLookupError(ctx, participantId, err)
	}

	if amount < s.cfg.Escrow.MinStakeAmount {
		log.Ctx(ctx).Warn().Str("participantId", participantId).Uint64("amount", amount).
			Msg("stake below minimum")
		metrics.RecordEscrowEvent(metrics.StakeEvent, metrics.Error)
		return types.NewErrorWithMsg(
			http.StatusBadRequest, types.StakeTooLow,
			fmt.Sprintf("stake amount %d is below the minimum of %d", amount, s.cfg.Escrow.MinStakeAmount),
		)
	}

	err = tracing.WrapWithSpanNoResult(ctx, "SaveStake", func() error {
		return s.DbClient.SaveStake(ctx, participant.Id, amount)
	})
	if err != nil {
		metrics.RecordEscrowEvent(metrics.StakeEvent, metrics.Error)
		return participantLookupError(ctx, participantId, err)
	}

	metrics.RecordEscrowEvent(metrics.StakeEvent, metrics.Success)
	log.Ctx(ctx).Info().Str("participantId", participantId).Uint64("amount", amount).
		Str("role", participant.Role.ToString()).Msg("stake deposited")
	return nil
}

func (s *Services) GetBalance(ctx context.Context, participantId string) (uint64, *types.Error) {
	amount, err := tracing.WrapWithSpan(ctx, "FindBalance", func() (uint64, error) {
		return s.DbClient.FindBalance(ctx, participantId)
	})
	if err != nil {
		return 0, participantLookupError(ctx, participantId, err)
	}
	return amount, nil
}

func (s *Services) GetParticipants(ctx context.Context) ([]ParticipantPublic, *types.Error) {
	participants, err := tracing.WrapWithSpan(ctx, "FindParticipants", func() ([]model.ParticipantDocument, error) {
		return s.DbClient.FindParticipants(ctx)
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching participants")
		return nil, types.NewInternalServiceError(err)
	}

	result := make([]ParticipantPublic, 0, len(participants))
	for _, p := range participants {
		result = append(result, fromParticipantDocument(p))
	}
	return result, nil
}

// GetStudentName returns the name of any registered participant.
func (s *Services) GetStudentName(ctx context.Context, participantId string) (string, *types.Error) {
	participant, err := tracing.WrapWithSpan(ctx, "FindParticipantById", func() (*model.ParticipantDocument, error) {
		return s.DbClient.FindParticipantById(ctx, participantId)
	})
	if err != nil {
		return "", participantLookupError(ctx, participantId, err)
	}
	return participant.Name, nil
}

func participantLookupError(ctx context.Context, participantId string, err error) *types.Error {
	if db.IsNotFoundError(err) {
		log.Ctx(ctx).Warn().Str("participantId", participantId).Msg("participant not found")
		return types.NewErrorWithMsg(
			http.StatusNotFound, types.IdNotFound, fmt.Sprintf("participant %s not found", participantId),
		)
	}
	log.Ctx(ctx).Error().Err(err).Str("participantId", participantId).Msg("error while fetching participant")
	return types.NewInternalServiceError(err)
}
