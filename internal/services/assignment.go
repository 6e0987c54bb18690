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
	"github.com/sameicp/assignment-monitor/internal/observability/tracing"
	queueClient "github.com/sameicp/assignment-monitor/internal/queue/client"
	"github.com/sameicp/assignment-monitor/internal/types"
	"github.com/sameicp/assignment-monitor/internal/utils"
)

// Roughly a century, keeps the timer delay within time.Duration.
const maxDueDateDays = 36500

type CreatedAssignmentPublic struct {
	ProgressRecordId string `json:"progress_record_id"`
	AssignmentId     string `json:"assignment_id"`
}

type ProgressRecordPublic struct {
	ProgressRecordId string `json:"progress_record_id"`
	StudentId        string `json:"student_id"`
	SupervisorId     string `json:"supervisor_id"`
	AssignmentId     string `json:"assignment_id"`
	IsFinished       bool   `json:"is_finished"`
	State            string `json:"state"`
}

func fromProgressRecordDocument(p model.ProgressRecordDocument) ProgressRecordPublic {
	return ProgressRecordPublic{
		ProgressRecordId: p.Id,
		StudentId:        p.StudentId,
		SupervisorId:     p.SupervisorId,
		AssignmentId:     p.AssignmentId,
		IsFinished:       p.IsFinished,
		State:            p.State.ToString(),
	}
}

// CreateAssignment matches a staked student's assignment with a supervisor and
// arms the due-date forfeiture timer.
func (s *Services) CreateAssignment(
	ctx context.Context, studentId, topic string, dueDateDays int64,
) (*CreatedAssignmentPublic, *types.Error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.ValidationError, "topic is required")
	}
	if dueDateDays <= 0 || dueDateDays > maxDueDateDays {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.ValidationError,
			fmt.Sprintf("due date days must be between 1 and %d", maxDueDateDays),
		)
	}

	student, err := tracing.WrapWithSpan(ctx, "FindParticipantById", func() (*model.ParticipantDocument, error) {
		return s.DbClient.FindParticipantById(ctx, studentId)
	})
	if err != nil {
		return nil, participantLookupError(ctx, studentId, err)
	}
	if student.Role != types.Student {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.ValidationError, fmt.Sprintf("participant %s is not a student", studentId),
		)
	}
	if !student.HasStaked {
		log.Ctx(ctx).Warn().Str("studentId", studentId).Msg("assignment requested without stake")
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.NotStaked, fmt.Sprintf("student %s has not staked", studentId),
		)
	}

	supervisor, pickErr := s.PickSupervisor(ctx)
	if pickErr != nil {
		return nil, pickErr
	}

	now := time.Now().UnixNano()
	assignmentId := utils.NewEntityId()
	progress := model.NewProgressRecordDocument(
		utils.NewProgressRecordId(), student.Id, supervisor.ParticipantId, assignmentId, now,
	)
	assignment := &model.AssignmentDocument{
		Id:               assignmentId,
		Topic:            topic,
		DueDateDays:      dueDateDays,
		ProgressRecordId: progress.Id,
		CreatedAt:        now,
	}
	delay := s.cfg.Escrow.DueDateDelay(dueDateDays)
	event := queueClient.NewExpiredAssignmentEvent(assignmentId, progress.Id, student.Id)
	handle, release := s.scheduleExpiry(event, delay)
	timer := model.NewTimerDocument(
		assignmentId, string(handle), progress.Id, student.Id, time.Now().Add(delay).Unix(),
	)
	err = tracing.WrapWithSpanNoResult(ctx, "SaveAssignment", func() error {
		return s.DbClient.SaveAssignment(ctx, assignment, progress, timer)
	})
	release(err == nil)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("studentId", studentId).Msg("error while saving assignment")
		return nil, types.NewInternalServiceError(err)
	}

	log.Ctx(ctx).Info().Str("assignmentId", assignmentId).Str("progressRecordId", progress.Id).
		Str("studentId", studentId).Str("supervisorId", supervisor.ParticipantId).
		Dur("dueIn", delay).Msg("assignment created")
	return &CreatedAssignmentPublic{
		ProgressRecordId: progress.Id,
		AssignmentId:     assignmentId,
	}, nil
}

// SubmitWork stores the student's work for an assignment, replacing any
// earlier upload. The deadline keeps running until a supervisor verifies.
func (s *Services) SubmitWork(ctx context.Context, assignmentId, work string) *types.Error {
	if len(work) > utils.MaxWorkTextLength {
		return types.NewErrorWithMsg(
			http.StatusBadRequest, types.ValidationError,
			fmt.Sprintf("work text exceeds %d bytes", utils.MaxWorkTextLength),
		)
	}

	assignment, err := tracing.WrapWithSpan(ctx, "FindAssignmentById", func() (*model.AssignmentDocument, error) {
		return s.DbClient.FindAssignmentById(ctx, assignmentId)
	})
	if err != nil {
		if db.IsNotFoundError(err) {
			log.Ctx(ctx).Warn().Str("assignmentId", assignmentId).Msg("assignment not found")
			return types.NewErrorWithMsg(
				http.StatusNotFound, types.AssignmentNotFound, fmt.Sprintf("assignment %s not found", assignmentId),
			)
		}
		log.Ctx(ctx).Error().Err(err).Str("assignmentId", assignmentId).Msg("error while fetching assignment")
		return types.NewInternalServiceError(err)
	}

	err = tracing.WrapWithSpanNoResult(ctx, "SaveUploadedWork", func() error {
		return s.DbClient.SaveUploadedWork(ctx, assignmentId, work)
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("assignmentId", assignmentId).Msg("error while saving uploaded work")
		return types.NewInternalServiceError(err)
	}

	err = s.DbClient.TransitionProgressState(
		ctx, assignment.ProgressRecordId, types.Submitted, utils.QualifiedStatesToSubmitted(),
	)
	if err != nil && !db.IsNotFoundError(err) {
		log.Ctx(ctx).Error().Err(err).Str("progressRecordId", assignment.ProgressRecordId).
			Msg("error while marking progress record as submitted")
		return types.NewInternalServiceError(err)
	}

	log.Ctx(ctx).Info().Str("assignmentId", assignmentId).Int("length", len(work)).Msg("work uploaded")
	return nil
}

func (s *Services) GetProgress(ctx context.Context) ([]ProgressRecordPublic, *types.Error) {
	records, err := tracing.WrapWithSpan(ctx, "FindProgressRecords", func() ([]model.ProgressRecordDocument, error) {
		return s.DbClient.FindProgressRecords(ctx)
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching progress records")
		return nil, types.NewInternalServiceError(err)
	}

	result := make([]ProgressRecordPublic, 0, len(records))
	for _, r := range records {
		result = append(result, fromProgressRecordDocument(r))
	}
	return result, nil
}
