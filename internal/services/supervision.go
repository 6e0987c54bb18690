package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sameicp/assignment-monitor/internal/db"
	"github.com/sameicp/assignment-monitor/internal/db/model"
	"github.com/sameicp/assignment-monitor/internal/observability/metrics"
	"github.com/sameicp/assignment-monitor/internal/observability/tracing"
	"github.com/sameicp/assignment-monitor/internal/types"
	"github.com/sameicp/assignment-monitor/internal/utils"
)

// activeProgressRecord resolves the progress record a supervisor currently watches.
func (s *Services) activeProgressRecord(ctx context.Context, supervisorId string) (*model.ProgressRecordDocument, *types.Error) {
	progressRecordId, err := tracing.WrapWithSpan(ctx, "FindActiveSupervision", func() (string, error) {
		return s.DbClient.FindActiveSupervision(ctx, supervisorId)
	})
	if err != nil {
		if db.IsNotFoundError(err) {
			log.Ctx(ctx).Warn().Str("supervisorId", supervisorId).Msg("no active supervision")
			return nil, types.NewErrorWithMsg(
				http.StatusNotFound, types.NoActiveSupervision,
				fmt.Sprintf("supervisor %s has no active supervision", supervisorId),
			)
		}
		log.Ctx(ctx).Error().Err(err).Str("supervisorId", supervisorId).Msg("error while fetching active supervision")
		return nil, types.NewInternalServiceError(err)
	}
	return s.findProgressRecord(ctx, progressRecordId)
}

func (s *Services) findProgressRecord(ctx context.Context, progressRecordId string) (*model.ProgressRecordDocument, *types.Error) {
	record, err := tracing.WrapWithSpan(ctx, "FindProgressRecordById", func() (*model.ProgressRecordDocument, error) {
		return s.DbClient.FindProgressRecordById(ctx, progressRecordId)
	})
	if err != nil {
		if db.IsNotFoundError(err) {
			log.Ctx(ctx).Warn().Str("progressRecordId", progressRecordId).Msg("progress record not found")
			return nil, types.NewErrorWithMsg(
				http.StatusNotFound, types.ProgressRecordNotFound,
				fmt.Sprintf("progress record %s not found", progressRecordId),
			)
		}
		log.Ctx(ctx).Error().Err(err).Str("progressRecordId", progressRecordId).Msg("error while fetching progress record")
		return nil, types.NewInternalServiceError(err)
	}
	return record, nil
}

// ViewSubmittedWork returns the work uploaded for the supervisor's active assignment.
func (s *Services) ViewSubmittedWork(ctx context.Context, supervisorId string) (string, *types.Error) {
	record, lookupErr := s.activeProgressRecord(ctx, supervisorId)
	if lookupErr != nil {
		return "", lookupErr
	}

	work, err := tracing.WrapWithSpan(ctx, "FindUploadedWork", func() (string, error) {
		return s.DbClient.FindUploadedWork(ctx, record.AssignmentId)
	})
	if err != nil {
		if db.IsNotFoundError(err) {
			return "", types.NewErrorWithMsg(
				http.StatusNotFound, types.WorkNotUploaded,
				fmt.Sprintf("no work uploaded for assignment %s", record.AssignmentId),
			)
		}
		log.Ctx(ctx).Error().Err(err).Str("assignmentId", record.AssignmentId).Msg("error while fetching uploaded work")
		return "", types.NewInternalServiceError(err)
	}
	return work, nil
}

// VerifyWorkDone marks the supervisor's active assignment as finished and
// cancels its forfeiture timer. It loses to a forfeiture that already happened.
func (s *Services) VerifyWorkDone(ctx context.Context, supervisorId string) *types.Error {
	record, lookupErr := s.activeProgressRecord(ctx, supervisorId)
	if lookupErr != nil {
		metrics.RecordEscrowEvent(metrics.VerifyEvent, metrics.Error)
		return lookupErr
	}
	if forfeitErr := s.forfeitIfOverdue(ctx, record.AssignmentId); forfeitErr != nil {
		metrics.RecordEscrowEvent(metrics.VerifyEvent, metrics.Error)
		return forfeitErr
	}

	err := tracing.WrapWithSpanNoResult(ctx, "TransitionProgressState", func() error {
		return s.DbClient.TransitionProgressState(ctx, record.Id, types.Verified, utils.QualifiedStatesToVerified())
	})
	if err != nil {
		if verifyErr := s.resolveLostVerification(ctx, record.Id, err); verifyErr != nil {
			metrics.RecordEscrowEvent(metrics.VerifyEvent, metrics.Error)
			return verifyErr
		}
	} else {
		log.Ctx(ctx).Info().Str("progressRecordId", record.Id).Str("supervisorId", supervisorId).
			Msg("work verified")
	}

	if disarmErr := s.disarm(ctx, record.AssignmentId); disarmErr != nil {
		metrics.RecordEscrowEvent(metrics.VerifyEvent, metrics.Error)
		return disarmErr
	}
	metrics.RecordEscrowEvent(metrics.VerifyEvent, metrics.Success)
	return nil
}

// resolveLostVerification explains a failed verified transition. A record
// already verified falls through to disarm; a forfeited one is final.
func (s *Services) resolveLostVerification(ctx context.Context, progressRecordId string, transitionErr error) *types.Error {
	if !db.IsNotFoundError(transitionErr) {
		log.Ctx(ctx).Error().Err(transitionErr).Str("progressRecordId", progressRecordId).
			Msg("error while transitioning progress record to verified")
		return types.NewInternalServiceError(transitionErr)
	}

	current, lookupErr := s.findProgressRecord(ctx, progressRecordId)
	if lookupErr != nil {
		return lookupErr
	}
	switch {
	case current.State == types.Forfeited:
		log.Ctx(ctx).Warn().Str("progressRecordId", progressRecordId).Msg("verification after forfeiture")
		return types.NewErrorWithMsg(
			http.StatusConflict, types.AssignmentForfeited,
			fmt.Sprintf("assignment %s was forfeited before verification", current.AssignmentId),
		)
	case utils.Contains(utils.OutdatedStatesForVerified, current.State):
		log.Ctx(ctx).Debug().Str("progressRecordId", progressRecordId).Msg("progress record already verified")
		return nil
	default:
		return types.NewInternalServiceError(
			errors.New("progress record in unexpected state " + current.State.ToString()),
		)
	}
}

// ClaimFunds releases a student's stake once the supervisor verified the work.
// A progress record can be claimed at most once.
func (s *Services) ClaimFunds(ctx context.Context, studentId, progressRecordId string) (uint64, *types.Error) {
	record, lookupErr := s.findProgressRecord(ctx, progressRecordId)
	if lookupErr != nil {
		metrics.RecordEscrowEvent(metrics.ClaimEvent, metrics.Error)
		return 0, lookupErr
	}

	notAuthorized := types.NewErrorWithMsg(
		http.StatusForbidden, types.NotAuthorized,
		fmt.Sprintf("student %s is not authorized to claim progress record %s", studentId, progressRecordId),
	)
	if record.StudentId != studentId || !record.IsFinished {
		log.Ctx(ctx).Warn().Str("studentId", studentId).Str("progressRecordId", progressRecordId).
			Bool("isFinished", record.IsFinished).Msg("claim rejected")
		metrics.RecordEscrowEvent(metrics.ClaimEvent, metrics.Error)
		return 0, notAuthorized
	}

	amount, err := tracing.WrapWithSpan(ctx, "ClaimStake", func() (uint64, error) {
		return s.DbClient.ClaimStake(ctx, progressRecordId, studentId)
	})
	if err != nil {
		metrics.RecordEscrowEvent(metrics.ClaimEvent, metrics.Error)
		if db.IsNotFoundError(err) {
			log.Ctx(ctx).Warn().Str("studentId", studentId).Str("progressRecordId", progressRecordId).
				Msg("progress record already claimed")
			return 0, notAuthorized
		}
		log.Ctx(ctx).Error().Err(err).Str("progressRecordId", progressRecordId).Msg("error while claiming stake")
		return 0, types.NewInternalServiceError(err)
	}

	metrics.RecordEscrowEvent(metrics.ClaimEvent, metrics.Success)
	log.Ctx(ctx).Info().Str("studentId", studentId).Str("progressRecordId", progressRecordId).
		Uint64("amount", amount).Msg("stake claimed")
	return amount, nil
}
