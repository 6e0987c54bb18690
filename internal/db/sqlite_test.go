package db_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sameicp/assignment-monitor/internal/db"
	"github.com/sameicp/assignment-monitor/internal/db/model"
	"github.com/sameicp/assignment-monitor/internal/types"
	"github.com/sameicp/assignment-monitor/internal/utils"
)

func setupSQLite(t *testing.T) *db.SQLiteDatabase {
	t.Helper()
	database, err := db.NewSQLiteDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(context.Background()) })
	return database
}

func saveParticipant(t *testing.T, database db.DBClient, id string, role types.Role, createdAt int64) {
	t.Helper()
	err := database.SaveParticipant(context.Background(),
		model.NewParticipantDocument(id, "name-"+id, "physics", role, createdAt))
	require.NoError(t, err)
}

func saveAssignment(t *testing.T, database db.DBClient, assignmentId, progressId, studentId, supervisorId string) {
	t.Helper()
	err := database.SaveAssignment(context.Background(),
		&model.AssignmentDocument{
			Id: assignmentId, Topic: "topic", DueDateDays: 3, ProgressRecordId: progressId, CreatedAt: 1,
		},
		model.NewProgressRecordDocument(progressId, studentId, supervisorId, assignmentId, 1),
		model.NewTimerDocument(assignmentId, "h-"+assignmentId, progressId, studentId, 100),
	)
	require.NoError(t, err)
}

func TestSaveParticipantCreatesZeroBalance(t *testing.T) {
	ctx := context.Background()
	database := setupSQLite(t)
	saveParticipant(t, database, "s1", types.Student, 1)

	participant, err := database.FindParticipantById(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, types.Student, participant.Role)
	assert.False(t, participant.HasStaked)

	balance, err := database.FindBalance(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, balance)

	err = database.SaveParticipant(ctx, model.NewParticipantDocument("s1", "x", "y", types.Student, 2))
	assert.True(t, db.IsDuplicateKeyError(err))

	_, err = database.FindParticipantById(ctx, "missing")
	assert.True(t, db.IsNotFoundError(err))
}

func TestFindParticipantsInRegistrationOrder(t *testing.T) {
	database := setupSQLite(t)
	saveParticipant(t, database, "b", types.Supervisor, 2)
	saveParticipant(t, database, "a", types.Student, 1)

	participants, err := database.FindParticipants(context.Background())
	require.NoError(t, err)
	require.Len(t, participants, 2)
	assert.Equal(t, "a", participants[0].Id)
	assert.Equal(t, "b", participants[1].Id)
}

func TestSaveStakeReplacesBalance(t *testing.T) {
	ctx := context.Background()
	database := setupSQLite(t)
	saveParticipant(t, database, "s1", types.Student, 1)

	require.NoError(t, database.SaveStake(ctx, "s1", 1500))
	require.NoError(t, database.SaveStake(ctx, "s1", 1200))

	balance, err := database.FindBalance(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1200), balance)

	participant, err := database.FindParticipantById(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, participant.HasStaked)

	pool, err := database.FindSupervisorPool(ctx)
	require.NoError(t, err)
	assert.Empty(t, pool)

	err = database.SaveStake(ctx, "missing", 1500)
	assert.True(t, db.IsNotFoundError(err))
}

func TestSaveStakeAddsSupervisorOnce(t *testing.T) {
	ctx := context.Background()
	database := setupSQLite(t)
	saveParticipant(t, database, "v1", types.Supervisor, 1)
	saveParticipant(t, database, "v2", types.Supervisor, 2)

	require.NoError(t, database.SaveStake(ctx, "v1", 1000))
	require.NoError(t, database.SaveStake(ctx, "v2", 1000))
	require.NoError(t, database.SaveStake(ctx, "v1", 2000))

	pool, err := database.FindSupervisorPool(ctx)
	require.NoError(t, err)
	require.Len(t, pool, 2)
	assert.Equal(t, "v1", pool[0].ParticipantId)
	assert.Equal(t, "name-v1", pool[0].Name)
	assert.Equal(t, "v2", pool[1].ParticipantId)
}

func TestSaveAssignmentOverwritesActiveSupervision(t *testing.T) {
	ctx := context.Background()
	database := setupSQLite(t)
	first := utils.NewProgressRecordId()
	second := utils.NewProgressRecordId()

	saveAssignment(t, database, "a1", first, "s1", "v1")
	active, err := database.FindActiveSupervision(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, first, active)

	saveAssignment(t, database, "a2", second, "s2", "v1")
	active, err = database.FindActiveSupervision(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, second, active)

	records, err := database.FindProgressRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, first, records[0].Id)
	assert.Equal(t, types.Pending, records[0].State)
	assert.False(t, records[0].IsFinished)

	assignment, err := database.FindAssignmentById(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, second, assignment.ProgressRecordId)

	_, err = database.FindActiveSupervision(ctx, "v2")
	assert.True(t, db.IsNotFoundError(err))
}

func TestSaveAssignmentArmsTimer(t *testing.T) {
	ctx := context.Background()
	database := setupSQLite(t)
	saveAssignment(t, database, "a1", "p1", "s1", "v1")

	timer, err := database.FindTimer(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, types.TimerArmed, timer.State)
	assert.Equal(t, "p1", timer.ProgressRecordId)
	assert.Equal(t, "s1", timer.ParticipantId)
}

func TestSaveAssignmentRollsBackOnTimerConflict(t *testing.T) {
	ctx := context.Background()
	database := setupSQLite(t)
	require.NoError(t, database.SaveTimer(ctx, model.NewTimerDocument("a1", "h0", "p0", "s0", 100)))

	err := database.SaveAssignment(ctx,
		&model.AssignmentDocument{Id: "a1", Topic: "topic", DueDateDays: 3, ProgressRecordId: "p1", CreatedAt: 1},
		model.NewProgressRecordDocument("p1", "s1", "v1", "a1", 1),
		model.NewTimerDocument("a1", "h1", "p1", "s1", 100),
	)
	assert.True(t, db.IsDuplicateKeyError(err))

	_, err = database.FindAssignmentById(ctx, "a1")
	assert.True(t, db.IsNotFoundError(err))
	records, err := database.FindProgressRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
	_, err = database.FindActiveSupervision(ctx, "v1")
	assert.True(t, db.IsNotFoundError(err))
}

func TestTransitionProgressStateOnlyFromEligibleStates(t *testing.T) {
	ctx := context.Background()
	database := setupSQLite(t)
	saveAssignment(t, database, "a1", "p1", "s1", "v1")

	require.NoError(t, database.TransitionProgressState(ctx, "p1", types.Submitted, utils.QualifiedStatesToSubmitted()))
	require.NoError(t, database.TransitionProgressState(ctx, "p1", types.Verified, utils.QualifiedStatesToVerified()))

	record, err := database.FindProgressRecordById(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, types.Verified, record.State)
	assert.True(t, record.IsFinished)

	err = database.TransitionProgressState(ctx, "p1", types.Forfeited, utils.QualifiedStatesToForfeited())
	assert.True(t, db.IsNotFoundError(err))

	err = database.TransitionProgressState(ctx, "missing", types.Verified, utils.QualifiedStatesToVerified())
	assert.True(t, db.IsNotFoundError(err))
}

func TestUploadedWorkIsReplaced(t *testing.T) {
	ctx := context.Background()
	database := setupSQLite(t)

	_, err := database.FindUploadedWork(ctx, "a1")
	assert.True(t, db.IsNotFoundError(err))

	require.NoError(t, database.SaveUploadedWork(ctx, "a1", "draft"))
	require.NoError(t, database.SaveUploadedWork(ctx, "a1", "final"))
	work, err := database.FindUploadedWork(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "final", work)
}

func TestForfeitStake(t *testing.T) {
	ctx := context.Background()
	database := setupSQLite(t)
	saveParticipant(t, database, "s1", types.Student, 1)
	require.NoError(t, database.SaveStake(ctx, "s1", 1500))
	saveAssignment(t, database, "a1", "p1", "s1", "v1")
	timer := model.NewTimerDocument("a1", "h1", "p1", "s1", 100)
	require.NoError(t, database.SaveTimer(ctx, timer))

	require.NoError(t, database.ForfeitStake(ctx, timer, utils.QualifiedStatesToForfeited()))

	balance, err := database.FindBalance(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, balance)

	record, err := database.FindProgressRecordById(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, types.Forfeited, record.State)

	stored, err := database.FindTimer(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, types.TimerFired, stored.State)

	err = database.ForfeitStake(ctx, timer, utils.QualifiedStatesToForfeited())
	assert.True(t, db.IsNotFoundError(err))
}

func TestForfeitStakeLeavesVerifiedRecord(t *testing.T) {
	ctx := context.Background()
	database := setupSQLite(t)
	saveParticipant(t, database, "s1", types.Student, 1)
	require.NoError(t, database.SaveStake(ctx, "s1", 1500))
	saveAssignment(t, database, "a1", "p1", "s1", "v1")
	require.NoError(t, database.TransitionProgressState(ctx, "p1", types.Verified, utils.QualifiedStatesToVerified()))

	timer := model.NewTimerDocument("a1", "h1", "p1", "s1", 100)
	err := database.ForfeitStake(ctx, timer, utils.QualifiedStatesToForfeited())
	assert.True(t, db.IsNotFoundError(err))

	balance, err := database.FindBalance(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1500), balance)
}

func TestClaimStake(t *testing.T) {
	ctx := context.Background()
	database := setupSQLite(t)
	saveParticipant(t, database, "s1", types.Student, 1)
	require.NoError(t, database.SaveStake(ctx, "s1", 1500))
	saveAssignment(t, database, "a1", "p1", "s1", "v1")

	_, err := database.ClaimStake(ctx, "p1", "s1")
	assert.True(t, db.IsNotFoundError(err), "pending record cannot be claimed")

	require.NoError(t, database.TransitionProgressState(ctx, "p1", types.Verified, utils.QualifiedStatesToVerified()))

	_, err = database.ClaimStake(ctx, "p1", "someone-else")
	assert.True(t, db.IsNotFoundError(err))

	released, err := database.ClaimStake(ctx, "p1", "s1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1500), released)

	balance, err := database.FindBalance(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, balance)

	participant, err := database.FindParticipantById(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, participant.HasStaked)

	_, err = database.ClaimStake(ctx, "p1", "s1")
	assert.True(t, db.IsNotFoundError(err), "claim is single use")
}

func TestConsumeTimerOnlyOnce(t *testing.T) {
	ctx := context.Background()
	database := setupSQLite(t)
	require.NoError(t, database.SaveTimer(ctx, model.NewTimerDocument("a1", "h1", "p1", "s1", 100)))
	require.NoError(t, database.SaveTimer(ctx, model.NewTimerDocument("a2", "h2", "p2", "s2", 50)))

	armed, err := database.FindArmedTimers(ctx)
	require.NoError(t, err)
	require.Len(t, armed, 2)
	assert.Equal(t, "a2", armed[0].AssignmentId)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if timer, err := database.ConsumeTimer(ctx, "a1"); err == nil {
				assert.Equal(t, "h1", timer.Handle)
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)

	stored, err := database.FindTimer(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, types.TimerCanceled, stored.State)

	armed, err = database.FindArmedTimers(ctx)
	require.NoError(t, err)
	assert.Len(t, armed, 1)
}

func TestUnprocessableMessages(t *testing.T) {
	ctx := context.Background()
	database := setupSQLite(t)
	require.NoError(t, database.SaveUnprocessableMessage(ctx, `{"assignment_id":"a1"}`, "r1"))

	messages, err := database.FindUnprocessableMessages(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "r1", messages[0].Receipt)

	require.NoError(t, database.DeleteUnprocessableMessage(ctx, messages[0].Id))
	messages, err = database.FindUnprocessableMessages(ctx)
	require.NoError(t, err)
	assert.Empty(t, messages)
}
