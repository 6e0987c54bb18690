package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sameicp/assignment-monitor/internal/db"
	"github.com/sameicp/assignment-monitor/internal/db/model"
	"github.com/sameicp/assignment-monitor/internal/observability/metrics"
	"github.com/sameicp/assignment-monitor/internal/observability/tracing"
	queueClient "github.com/sameicp/assignment-monitor/internal/queue/client"
	"github.com/sameicp/assignment-monitor/internal/scheduler"
	"github.com/sameicp/assignment-monitor/internal/types"
	"github.com/sameicp/assignment-monitor/internal/utils"
)

const (
	expiryDispatchTimeout = 30 * time.Second
	// In-process forfeiture attempts per fire, including the first one
	expiryMaxAttempts     = 4
	expiryInitialBackoff  = 100 * time.Millisecond
	expiryBackoffFactor   = 2
	expiryRescheduleDelay = time.Minute
)

// scheduleExpiry registers the fire callback of event. The callback blocks
// until release is called so the timer document is written first. Releasing
// with persisted=false cancels the callback.
func (s *Services) scheduleExpiry(
	event queueClient.ExpiredAssignmentEvent, delay time.Duration,
) (scheduler.Handle, func(persisted bool)) {
	persisted := make(chan struct{})
	metrics.IncArmedTimers()
	handle := s.scheduler.Schedule(delay, func() {
		<-persisted
		s.onTimerFired(event)
	})

	release := func(ok bool) {
		if !ok && s.scheduler.Cancel(handle) {
			metrics.DecArmedTimers()
		}
		close(persisted)
	}
	return handle, release
}

// arm schedules the forfeiture of participantId's stake after delay and
// persists the timer so it survives a restart.
func (s *Services) arm(
	ctx context.Context, assignmentId, progressRecordId, participantId string, delay time.Duration,
) error {
	event := queueClient.NewExpiredAssignmentEvent(assignmentId, progressRecordId, participantId)
	fireAt := time.Now().Add(delay).Unix()
	handle, release := s.scheduleExpiry(event, delay)

	timer := model.NewTimerDocument(assignmentId, string(handle), progressRecordId, participantId, fireAt)
	err := tracing.WrapWithSpanNoResult(ctx, "SaveTimer", func() error {
		return s.DbClient.SaveTimer(ctx, timer)
	})
	release(err == nil)
	if err != nil {
		return fmt.Errorf("failed to persist forfeiture timer: %w", err)
	}

	log.Ctx(ctx).Debug().Str("assignmentId", assignmentId).Str("handle", string(handle)).
		Int64("fireAt", fireAt).Msg("forfeiture timer armed")
	return nil
}

// disarm consumes the armed timer of an assignment. A timer that already fired
// or was consumed yields TIMER_NOT_FOUND.
func (s *Services) disarm(ctx context.Context, assignmentId string) *types.Error {
	timer, err := tracing.WrapWithSpan(ctx, "ConsumeTimer", func() (*model.TimerDocument, error) {
		return s.DbClient.ConsumeTimer(ctx, assignmentId)
	})
	if err != nil {
		if db.IsNotFoundError(err) {
			log.Ctx(ctx).Warn().Str("assignmentId", assignmentId).Msg("no armed timer to cancel")
			return types.NewErrorWithMsg(
				http.StatusNotFound, types.TimerNotFound,
				fmt.Sprintf("no armed timer for assignment %s", assignmentId),
			)
		}
		log.Ctx(ctx).Error().Err(err).Str("assignmentId", assignmentId).Msg("error while consuming timer")
		return types.NewInternalServiceError(err)
	}

	// The handle may belong to a previous process, canceling it is then a no-op
	if s.scheduler.Cancel(scheduler.Handle(timer.Handle)) {
		metrics.DecArmedTimers()
	}
	log.Ctx(ctx).Debug().Str("assignmentId", assignmentId).Str("handle", timer.Handle).Msg("forfeiture timer disarmed")
	return nil
}

// onTimerFired hands the expiry to the dispatcher, or forfeits in-process.
// An expiry that could not be delivered is scheduled again.
func (s *Services) onTimerFired(event queueClient.ExpiredAssignmentEvent) {
	metrics.DecArmedTimers()
	ctx, cancel := context.WithTimeout(context.Background(), expiryDispatchTimeout)
	defer cancel()
	logger := log.With().Str("assignmentId", event.AssignmentId).Logger()
	ctx = logger.WithContext(ctx)

	if s.dispatchExpiry != nil {
		err := s.dispatchExpiry(ctx, event)
		if err == nil {
			return
		}
		logger.Error().Err(err).Msg("failed to dispatch expired assignment event, processing in-process")
	}

	if err := s.processForfeitureWithRetries(ctx, event.AssignmentId); err != nil {
		logger.Error().Err(err).Dur("retryIn", expiryRescheduleDelay).
			Msg("failed to process forfeiture, rescheduling")
		metrics.IncArmedTimers()
		s.scheduler.Schedule(expiryRescheduleDelay, func() {
			s.onTimerFired(event)
		})
	}
}

func (s *Services) processForfeitureWithRetries(ctx context.Context, assignmentId string) *types.Error {
	backoff := expiryInitialBackoff
	var err *types.Error
	for attempt := 1; attempt <= expiryMaxAttempts; attempt++ {
		if err = s.ProcessForfeiture(ctx, assignmentId); err == nil {
			return nil
		}
		if attempt < expiryMaxAttempts {
			log.Ctx(ctx).Warn().Err(err).Int("attempt", attempt).Dur("backoff", backoff).
				Msg("forfeiture failed, retrying")
			utils.Sleep(backoff)
			backoff *= expiryBackoffFactor
		}
	}
	return err
}

// forfeitIfOverdue settles an armed timer whose due date already passed, so a
// late verification cannot overtake a forfeiture that is still in flight.
func (s *Services) forfeitIfOverdue(ctx context.Context, assignmentId string) *types.Error {
	timer, err := tracing.WrapWithSpan(ctx, "FindTimer", func() (*model.TimerDocument, error) {
		return s.DbClient.FindTimer(ctx, assignmentId)
	})
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil
		}
		log.Ctx(ctx).Error().Err(err).Str("assignmentId", assignmentId).Msg("error while fetching timer")
		return types.NewInternalServiceError(err)
	}
	if timer.State != types.TimerArmed || timer.FireAt > time.Now().Unix() {
		return nil
	}

	log.Ctx(ctx).Warn().Str("assignmentId", assignmentId).Int64("fireAt", timer.FireAt).
		Msg("due date passed before verification, forfeiting")
	return s.ProcessForfeiture(ctx, assignmentId)
}

// ProcessForfeiture zeroes the stake behind an expired assignment unless the
// work was verified first. Duplicate and outdated calls are ignored.
func (s *Services) ProcessForfeiture(ctx context.Context, assignmentId string) *types.Error {
	timer, err := tracing.WrapWithSpan(ctx, "FindTimer", func() (*model.TimerDocument, error) {
		return s.DbClient.FindTimer(ctx, assignmentId)
	})
	if err != nil {
		if db.IsNotFoundError(err) {
			log.Ctx(ctx).Warn().Str("assignmentId", assignmentId).Msg("no timer for expired assignment, ignoring")
			metrics.RecordEscrowEvent(metrics.ForfeitEvent, metrics.Ignored)
			return nil
		}
		log.Ctx(ctx).Error().Err(err).Str("assignmentId", assignmentId).Msg("error while fetching timer")
		metrics.RecordEscrowEvent(metrics.ForfeitEvent, metrics.Error)
		return types.NewInternalServiceError(err)
	}
	if timer.State != types.TimerArmed {
		log.Ctx(ctx).Debug().Str("assignmentId", assignmentId).Str("timerState", timer.State.ToString()).
			Msg("timer is no longer armed, ignoring outdated expiry")
		metrics.RecordEscrowEvent(metrics.ForfeitEvent, metrics.Ignored)
		return nil
	}

	err = tracing.WrapWithSpanNoResult(ctx, "ForfeitStake", func() error {
		return s.DbClient.ForfeitStake(ctx, timer, utils.QualifiedStatesToForfeited())
	})
	if err != nil {
		if db.IsNotFoundError(err) {
			// Verification won the race; its disarm consumes the timer
			log.Ctx(ctx).Info().Str("assignmentId", assignmentId).Str("progressRecordId", timer.ProgressRecordId).
				Msg("progress record no longer forfeitable, ignoring expiry")
			metrics.RecordEscrowEvent(metrics.ForfeitEvent, metrics.Ignored)
			return nil
		}
		log.Ctx(ctx).Error().Err(err).Str("assignmentId", assignmentId).Msg("error while forfeiting stake")
		metrics.RecordEscrowEvent(metrics.ForfeitEvent, metrics.Error)
		return types.NewInternalServiceError(err)
	}

	metrics.RecordEscrowEvent(metrics.ForfeitEvent, metrics.Success)
	log.Ctx(ctx).Info().Str("assignmentId", assignmentId).Str("participantId", timer.ParticipantId).
		Str("progressRecordId", timer.ProgressRecordId).Msg("stake forfeited after missed due date")
	return nil
}

// RestoreTimers re-arms every timer that was armed when the process stopped.
// Overdue timers fire immediately. It must run before requests are served.
func (s *Services) RestoreTimers(ctx context.Context) (int, error) {
	timers, err := s.DbClient.FindArmedTimers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load armed timers: %w", err)
	}

	for _, timer := range timers {
		delay := time.Until(time.Unix(timer.FireAt, 0))
		if delay < 0 {
			delay = 0
		}
		if err := s.arm(ctx, timer.AssignmentId, timer.ProgressRecordId, timer.ParticipantId, delay); err != nil {
			return 0, fmt.Errorf("failed to restore timer of assignment %s: %w", timer.AssignmentId, err)
		}
	}
	return len(timers), nil
}
