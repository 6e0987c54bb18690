package db

import (
	"context"

	"github.com/sameicp/assignment-monitor/internal/db/model"
	"github.com/sameicp/assignment-monitor/internal/types"
)

// DBClient is the durable key-value store behind the escrow engine. Methods
// that touch more than one collection are atomic in every implementation.
type DBClient interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error

	SaveParticipant(ctx context.Context, participant *model.ParticipantDocument) error
	FindParticipantById(ctx context.Context, participantId string) (*model.ParticipantDocument, error)
	FindParticipants(ctx context.Context) ([]model.ParticipantDocument, error)

	// SaveStake replaces the participant's balance with amount, marks it as
	// staked and adds supervisors to the pool.
	SaveStake(ctx context.Context, participantId string, amount uint64) error
	FindBalance(ctx context.Context, participantId string) (uint64, error)
	FindSupervisorPool(ctx context.Context) ([]model.SupervisorPoolDocument, error)
	// ForfeitStake moves the progress record to forfeited, zeroes the balance
	// and marks the timer as fired. It returns a NotFoundError if the record
	// is no longer in a forfeitable state.
	ForfeitStake(ctx context.Context, timer *model.TimerDocument, eligiblePreviousState []types.ProgressState) error
	// ClaimStake moves the student's verified progress record to claimed and
	// releases the balance. It returns a NotFoundError if the record does not
	// belong to the student or is not verified.
	ClaimStake(ctx context.Context, progressRecordId, studentId string) (uint64, error)

	// SaveAssignment writes the assignment, its progress record, the supervisor
	// index and the armed due-date timer in one transaction.
	SaveAssignment(
		ctx context.Context, assignment *model.AssignmentDocument,
		progress *model.ProgressRecordDocument, timer *model.TimerDocument,
	) error
	FindAssignmentById(ctx context.Context, assignmentId string) (*model.AssignmentDocument, error)
	FindProgressRecordById(ctx context.Context, progressRecordId string) (*model.ProgressRecordDocument, error)
	FindProgressRecords(ctx context.Context) ([]model.ProgressRecordDocument, error)
	FindActiveSupervision(ctx context.Context, supervisorId string) (string, error)
	TransitionProgressState(
		ctx context.Context, progressRecordId string, newState types.ProgressState, eligiblePreviousState []types.ProgressState,
	) error
	SaveUploadedWork(ctx context.Context, assignmentId, work string) error
	FindUploadedWork(ctx context.Context, assignmentId string) (string, error)

	SaveTimer(ctx context.Context, timer *model.TimerDocument) error
	FindTimer(ctx context.Context, assignmentId string) (*model.TimerDocument, error)
	// ConsumeTimer cancels an armed timer and returns it. It returns a
	// NotFoundError if there is no armed timer for the assignment.
	ConsumeTimer(ctx context.Context, assignmentId string) (*model.TimerDocument, error)
	FindArmedTimers(ctx context.Context) ([]model.TimerDocument, error)

	SaveUnprocessableMessage(ctx context.Context, messageBody, receipt string) error
	FindUnprocessableMessages(ctx context.Context) ([]model.UnprocessableMessageDocument, error)
	DeleteUnprocessableMessage(ctx context.Context, id string) error
}
