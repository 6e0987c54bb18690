package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/sameicp/assignment-monitor/internal/db/model"
	"github.com/sameicp/assignment-monitor/internal/types"
	"github.com/sameicp/assignment-monitor/internal/utils"
)

func (s *SQLiteDatabase) SaveParticipant(ctx context.Context, participant *model.ParticipantDocument) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO participants (id, name, area_of_study, role, has_staked, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			participant.Id, participant.Name, participant.AreaOfStudy, participant.Role.ToString(),
			boolToInt(participant.HasStaked), participant.CreatedAt,
		)
		if err != nil {
			return toSQLiteDuplicateKeyError(err, participant.Id, "Participant already exists")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO balances (participant_id, amount) VALUES (?, 0)`, participant.Id,
		)
		if err != nil {
			return toSQLiteDuplicateKeyError(err, participant.Id, "Balance already exists")
		}
		return nil
	})
}

func (s *SQLiteDatabase) FindParticipantById(ctx context.Context, participantId string) (*model.ParticipantDocument, error) {
	return findSQLiteParticipant(ctx, s.db, participantId)
}

func (s *SQLiteDatabase) FindParticipants(ctx context.Context) ([]model.ParticipantDocument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, area_of_study, role, has_staked, created_at
		FROM participants ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	participants := []model.ParticipantDocument{}
	for rows.Next() {
		participant, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, *participant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return participants, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParticipant(row rowScanner) (*model.ParticipantDocument, error) {
	var (
		participant model.ParticipantDocument
		role        string
	)
	err := row.Scan(
		&participant.Id, &participant.Name, &participant.AreaOfStudy, &role,
		&participant.HasStaked, &participant.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	participant.Role, err = types.RoleFromString(role)
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func findSQLiteParticipant(ctx context.Context, e execer, participantId string) (*model.ParticipantDocument, error) {
	participant, err := scanParticipant(e.QueryRowContext(ctx,
		`SELECT id, name, area_of_study, role, has_staked, created_at
		FROM participants WHERE id = ?`, participantId,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{
			Key:     participantId,
			Message: "Participant not found",
		}
	}
	if err != nil {
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return participant, nil
}

func (s *SQLiteDatabase) SaveStake(ctx context.Context, participantId string, amount uint64) error {
	if amount > math.MaxInt64 {
		return fmt.Errorf("stake amount %d overflows storage", amount)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		participant, err := findSQLiteParticipant(ctx, tx, participantId)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE participants SET has_staked = 1 WHERE id = ?`, participantId,
		); err != nil {
			return err
		}

		// Replace, not add: the stake is the latest deposit
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO balances (participant_id, amount) VALUES (?, ?)
			ON CONFLICT (participant_id) DO UPDATE SET amount = excluded.amount`,
			participantId, int64(amount),
		); err != nil {
			return err
		}

		if participant.Role == types.Supervisor {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO supervisor_pool (participant_id, name, area_of_study, joined_at)
				VALUES (?, ?, ?, ?) ON CONFLICT (participant_id) DO NOTHING`,
				participant.Id, participant.Name, participant.AreaOfStudy, nowUnixNano(),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteDatabase) FindBalance(ctx context.Context, participantId string) (uint64, error) {
	return findSQLiteBalance(ctx, s.db, participantId)
}

func findSQLiteBalance(ctx context.Context, e execer, participantId string) (uint64, error) {
	var amount int64
	err := e.QueryRowContext(ctx,
		`SELECT amount FROM balances WHERE participant_id = ?`, participantId,
	).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &NotFoundError{
			Key:     participantId,
			Message: "Balance not found",
		}
	}
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return uint64(amount), nil
}

func (s *SQLiteDatabase) FindSupervisorPool(ctx context.Context) ([]model.SupervisorPoolDocument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT participant_id, name, area_of_study, joined_at
		FROM supervisor_pool ORDER BY joined_at, participant_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list supervisor pool: %w", err)
	}
	defer rows.Close()

	pool := []model.SupervisorPoolDocument{}
	for rows.Next() {
		var entry model.SupervisorPoolDocument
		if err := rows.Scan(&entry.ParticipantId, &entry.Name, &entry.AreaOfStudy, &entry.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan supervisor pool: %w", err)
		}
		pool = append(pool, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate supervisor pool: %w", err)
	}
	return pool, nil
}

func (s *SQLiteDatabase) ForfeitStake(
	ctx context.Context, timer *model.TimerDocument, eligiblePreviousState []types.ProgressState,
) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		err := transitionSQLiteProgressState(ctx, tx, timer.ProgressRecordId, types.Forfeited, eligiblePreviousState)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE balances SET amount = 0 WHERE participant_id = ?`, timer.ParticipantId,
		); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE timers SET state = ? WHERE assignment_id = ? AND state = ?`,
			types.TimerFired.ToString(), timer.AssignmentId, types.TimerArmed.ToString(),
		)
		return err
	})
}

func (s *SQLiteDatabase) ClaimStake(ctx context.Context, progressRecordId, studentId string) (uint64, error) {
	var released uint64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		inClause, stateArgs := statesInClause(utils.QualifiedStatesToClaimed())
		args := append([]any{types.Claimed.ToString(), boolToInt(types.Claimed.IsFinished()), progressRecordId, studentId}, stateArgs...)
		err := execExpectingRow(ctx, tx,
			&NotFoundError{
				Key:     progressRecordId,
				Message: "Progress record not found or not eligible for claim",
			},
			`UPDATE progress_records SET state = ?, is_finished = ?
			WHERE id = ? AND student_id = ? AND state IN `+inClause,
			args...,
		)
		if err != nil {
			return err
		}

		released, err = findSQLiteBalance(ctx, tx, studentId)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE balances SET amount = 0 WHERE participant_id = ?`, studentId,
		); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE participants SET has_staked = 0 WHERE id = ?`, studentId,
		)
		return err
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}
