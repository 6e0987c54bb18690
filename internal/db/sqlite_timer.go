package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sameicp/assignment-monitor/internal/db/model"
	"github.com/sameicp/assignment-monitor/internal/types"
	"github.com/sameicp/assignment-monitor/internal/utils"
)

const timerColumns = `assignment_id, handle, progress_record_id, participant_id, fire_at, state`

func scanTimer(row rowScanner) (*model.TimerDocument, error) {
	var (
		timer model.TimerDocument
		state string
	)
	err := row.Scan(
		&timer.AssignmentId, &timer.Handle, &timer.ProgressRecordId, &timer.ParticipantId, &timer.FireAt, &state,
	)
	if err != nil {
		return nil, err
	}
	timer.State = types.TimerState(state)
	return &timer, nil
}

func (s *SQLiteDatabase) SaveTimer(ctx context.Context, timer *model.TimerDocument) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO timers (`+timerColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (assignment_id) DO UPDATE SET
			handle = excluded.handle,
			progress_record_id = excluded.progress_record_id,
			participant_id = excluded.participant_id,
			fire_at = excluded.fire_at,
			state = excluded.state`,
		timer.AssignmentId, timer.Handle, timer.ProgressRecordId, timer.ParticipantId,
		timer.FireAt, timer.State.ToString(),
	)
	if err != nil {
		return fmt.Errorf("save timer: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) FindTimer(ctx context.Context, assignmentId string) (*model.TimerDocument, error) {
	return findSQLiteTimer(ctx, s.db, assignmentId)
}

func findSQLiteTimer(ctx context.Context, e execer, assignmentId string) (*model.TimerDocument, error) {
	timer, err := scanTimer(e.QueryRowContext(ctx,
		`SELECT `+timerColumns+` FROM timers WHERE assignment_id = ?`, assignmentId,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{
			Key:     assignmentId,
			Message: "Timer not found",
		}
	}
	if err != nil {
		return nil, fmt.Errorf("get timer: %w", err)
	}
	return timer, nil
}

func (s *SQLiteDatabase) ConsumeTimer(ctx context.Context, assignmentId string) (*model.TimerDocument, error) {
	var timer *model.TimerDocument
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := execExpectingRow(ctx, tx,
			&NotFoundError{
				Key:     assignmentId,
				Message: "Timer not found or already consumed",
			},
			`UPDATE timers SET state = ? WHERE assignment_id = ? AND state = ?`,
			types.TimerCanceled.ToString(), assignmentId, types.TimerArmed.ToString(),
		)
		if err != nil {
			return err
		}
		timer, err = findSQLiteTimer(ctx, tx, assignmentId)
		return err
	})
	if err != nil {
		return nil, err
	}
	return timer, nil
}

func (s *SQLiteDatabase) FindArmedTimers(ctx context.Context) ([]model.TimerDocument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+timerColumns+` FROM timers WHERE state = ? ORDER BY fire_at`, types.TimerArmed.ToString(),
	)
	if err != nil {
		return nil, fmt.Errorf("list armed timers: %w", err)
	}
	defer rows.Close()

	timers := []model.TimerDocument{}
	for rows.Next() {
		timer, err := scanTimer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan timer: %w", err)
		}
		timers = append(timers, *timer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timers: %w", err)
	}
	return timers, nil
}

func (s *SQLiteDatabase) SaveUnprocessableMessage(ctx context.Context, messageBody, receipt string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO unprocessable_messages (id, message_body, receipt, created_at) VALUES (?, ?, ?, ?)`,
		utils.NewProgressRecordId(), messageBody, receipt, nowUnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save unprocessable message: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) FindUnprocessableMessages(ctx context.Context) ([]model.UnprocessableMessageDocument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, message_body, receipt, created_at FROM unprocessable_messages ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list unprocessable messages: %w", err)
	}
	defer rows.Close()

	messages := []model.UnprocessableMessageDocument{}
	for rows.Next() {
		var msg model.UnprocessableMessageDocument
		if err := rows.Scan(&msg.Id, &msg.MessageBody, &msg.Receipt, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan unprocessable message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unprocessable messages: %w", err)
	}
	return messages, nil
}

func (s *SQLiteDatabase) DeleteUnprocessableMessage(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM unprocessable_messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete unprocessable message: %w", err)
	}
	return nil
}
