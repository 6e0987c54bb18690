package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sameicp/assignment-monitor/internal/db/model"
	"github.com/sameicp/assignment-monitor/internal/types"
)

func (s *SQLiteDatabase) SaveAssignment(
	ctx context.Context, assignment *model.AssignmentDocument,
	progress *model.ProgressRecordDocument, timer *model.TimerDocument,
) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO assignments (id, topic, due_date_days, progress_record_id, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			assignment.Id, assignment.Topic, assignment.DueDateDays, assignment.ProgressRecordId, assignment.CreatedAt,
		)
		if err != nil {
			return toSQLiteDuplicateKeyError(err, assignment.Id, "Assignment already exists")
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO progress_records (id, student_id, supervisor_id, assignment_id, is_finished, state, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			progress.Id, progress.StudentId, progress.SupervisorId, progress.AssignmentId,
			boolToInt(progress.IsFinished), progress.State.ToString(), progress.CreatedAt,
		)
		if err != nil {
			return toSQLiteDuplicateKeyError(err, progress.Id, "Progress record already exists")
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO supervisor_assignments (supervisor_id, progress_record_id) VALUES (?, ?)
			ON CONFLICT (supervisor_id) DO UPDATE SET progress_record_id = excluded.progress_record_id`,
			progress.SupervisorId, progress.Id,
		)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO timers (`+timerColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
			timer.AssignmentId, timer.Handle, timer.ProgressRecordId, timer.ParticipantId,
			timer.FireAt, timer.State.ToString(),
		)
		if err != nil {
			return toSQLiteDuplicateKeyError(err, timer.AssignmentId, "Timer already exists")
		}
		return nil
	})
}

func (s *SQLiteDatabase) FindAssignmentById(ctx context.Context, assignmentId string) (*model.AssignmentDocument, error) {
	var assignment model.AssignmentDocument
	err := s.db.QueryRowContext(ctx,
		`SELECT id, topic, due_date_days, progress_record_id, created_at FROM assignments WHERE id = ?`,
		assignmentId,
	).Scan(&assignment.Id, &assignment.Topic, &assignment.DueDateDays, &assignment.ProgressRecordId, &assignment.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{
			Key:     assignmentId,
			Message: "Assignment not found",
		}
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return &assignment, nil
}

const progressRecordColumns = `id, student_id, supervisor_id, assignment_id, is_finished, state, created_at`

func scanProgressRecord(row rowScanner) (*model.ProgressRecordDocument, error) {
	var (
		progress model.ProgressRecordDocument
		state    string
	)
	err := row.Scan(
		&progress.Id, &progress.StudentId, &progress.SupervisorId, &progress.AssignmentId,
		&progress.IsFinished, &state, &progress.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	progress.State, err = types.FromStringToProgressState(state)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (s *SQLiteDatabase) FindProgressRecordById(ctx context.Context, progressRecordId string) (*model.ProgressRecordDocument, error) {
	progress, err := scanProgressRecord(s.db.QueryRowContext(ctx,
		`SELECT `+progressRecordColumns+` FROM progress_records WHERE id = ?`, progressRecordId,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{
			Key:     progressRecordId,
			Message: "Progress record not found",
		}
	}
	if err != nil {
		return nil, fmt.Errorf("get progress record: %w", err)
	}
	return progress, nil
}

func (s *SQLiteDatabase) FindProgressRecords(ctx context.Context) ([]model.ProgressRecordDocument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+progressRecordColumns+` FROM progress_records ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list progress records: %w", err)
	}
	defer rows.Close()

	records := []model.ProgressRecordDocument{}
	for rows.Next() {
		progress, err := scanProgressRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan progress record: %w", err)
		}
		records = append(records, *progress)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress records: %w", err)
	}
	return records, nil
}

func (s *SQLiteDatabase) FindActiveSupervision(ctx context.Context, supervisorId string) (string, error) {
	var progressRecordId string
	err := s.db.QueryRowContext(ctx,
		`SELECT progress_record_id FROM supervisor_assignments WHERE supervisor_id = ?`, supervisorId,
	).Scan(&progressRecordId)
	if errors.Is(err, sql.ErrNoRows) {
		return "", &NotFoundError{
			Key:     supervisorId,
			Message: "No active supervision for supervisor",
		}
	}
	if err != nil {
		return "", fmt.Errorf("get active supervision: %w", err)
	}
	return progressRecordId, nil
}

func (s *SQLiteDatabase) TransitionProgressState(
	ctx context.Context, progressRecordId string, newState types.ProgressState, eligiblePreviousState []types.ProgressState,
) error {
	return transitionSQLiteProgressState(ctx, s.db, progressRecordId, newState, eligiblePreviousState)
}

func transitionSQLiteProgressState(
	ctx context.Context, e execer,
	progressRecordId string, newState types.ProgressState, eligiblePreviousState []types.ProgressState,
) error {
	if len(eligiblePreviousState) == 0 {
		return &NotFoundError{
			Key:     progressRecordId,
			Message: "Progress record not found or not in eligible state to transition",
		}
	}
	inClause, stateArgs := statesInClause(eligiblePreviousState)
	args := append([]any{newState.ToString(), boolToInt(newState.IsFinished()), progressRecordId}, stateArgs...)
	return execExpectingRow(ctx, e,
		&NotFoundError{
			Key:     progressRecordId,
			Message: "Progress record not found or not in eligible state to transition",
		},
		`UPDATE progress_records SET state = ?, is_finished = ? WHERE id = ? AND state IN `+inClause,
		args...,
	)
}

func (s *SQLiteDatabase) SaveUploadedWork(ctx context.Context, assignmentId, work string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uploaded_work (assignment_id, work, uploaded_at) VALUES (?, ?, ?)
		ON CONFLICT (assignment_id) DO UPDATE SET work = excluded.work, uploaded_at = excluded.uploaded_at`,
		assignmentId, work, nowUnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save uploaded work: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) FindUploadedWork(ctx context.Context, assignmentId string) (string, error) {
	var work string
	err := s.db.QueryRowContext(ctx,
		`SELECT work FROM uploaded_work WHERE assignment_id = ?`, assignmentId,
	).Scan(&work)
	if errors.Is(err, sql.ErrNoRows) {
		return "", &NotFoundError{
			Key:     assignmentId,
			Message: "Work not uploaded",
		}
	}
	if err != nil {
		return "", fmt.Errorf("get uploaded work: %w", err)
	}
	return work, nil
}
