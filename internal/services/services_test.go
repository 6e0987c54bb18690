package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sameicp/assignment-monitor/internal/config"
	"github.com/sameicp/assignment-monitor/internal/db"
	"github.com/sameicp/assignment-monitor/internal/db/model"
	queueClient "github.com/sameicp/assignment-monitor/internal/queue/client"
	"github.com/sameicp/assignment-monitor/internal/scheduler"
	"github.com/sameicp/assignment-monitor/internal/types"
	"github.com/sameicp/assignment-monitor/internal/utils"
)

// manualScheduler only runs callbacks when the test fires them.
type manualScheduler struct {
	mu      sync.Mutex
	next    int
	pending map[scheduler.Handle]scheduledCall
}

type scheduledCall struct {
	delay time.Duration
	fn    func()
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{pending: make(map[scheduler.Handle]scheduledCall)}
}

func (m *manualScheduler) Schedule(delay time.Duration, fn func()) scheduler.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	handle := scheduler.Handle(fmt.Sprintf("handle-%d", m.next))
	m.pending[handle] = scheduledCall{delay: delay, fn: fn}
	return handle
}

func (m *manualScheduler) Cancel(handle scheduler.Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pending[handle]; !ok {
		return false
	}
	delete(m.pending, handle)
	return true
}

// FireAll runs every pending callback on the calling goroutine.
func (m *manualScheduler) FireAll() int {
	m.mu.Lock()
	calls := make([]scheduledCall, 0, len(m.pending))
	for handle, call := range m.pending {
		calls = append(calls, call)
		delete(m.pending, handle)
	}
	m.mu.Unlock()

	for _, call := range calls {
		call.fn()
	}
	return len(calls)
}

func (m *manualScheduler) delays() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	delays := make([]time.Duration, 0, len(m.pending))
	for _, call := range m.pending {
		delays = append(delays, call.delay)
	}
	return delays
}

func testConfig() *config.Config {
	return &config.Config{Escrow: config.DefaultEscrowConfig()}
}

func setupServices(t *testing.T) (*Services, *manualScheduler) {
	t.Helper()
	database, err := db.NewSQLiteDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(context.Background()) })

	sched := newManualScheduler()
	s := NewWithDbClient(testConfig(), database, sched)
	s.pickIndex = func(n int) int { return 0 }
	return s, sched
}

func register(t *testing.T, s *Services, name string, role types.Role) string {
	t.Helper()
	id, err := s.RegisterParticipant(context.Background(), name, "mathematics", role)
	require.Nil(t, err)
	return id
}

func registerAndStake(t *testing.T, s *Services, name string, role types.Role, amount uint64) string {
	t.Helper()
	id := register(t, s, name, role)
	require.Nil(t, s.Stake(context.Background(), id, amount))
	return id
}

type scenario struct {
	studentId    string
	supervisorId string
	created      *CreatedAssignmentPublic
}

func setupScenario(t *testing.T, s *Services) scenario {
	t.Helper()
	ctx := context.Background()
	studentId := registerAndStake(t, s, "alice", types.Student, 1000)
	supervisorId := registerAndStake(t, s, "bob", types.Supervisor, 1000)

	created, err := s.CreateAssignment(ctx, studentId, "graph theory", 1)
	require.Nil(t, err)
	return scenario{studentId: studentId, supervisorId: supervisorId, created: created}
}

func requireErrorCode(t *testing.T, err *types.Error, code types.ErrorCode, status int) {
	t.Helper()
	require.NotNil(t, err)
	assert.Equal(t, code, err.ErrorCode)
	assert.Equal(t, status, err.StatusCode)
}

func balanceOf(t *testing.T, s *Services, participantId string) uint64 {
	t.Helper()
	amount, err := s.GetBalance(context.Background(), participantId)
	require.Nil(t, err)
	return amount
}

func TestRegisterParticipantValidation(t *testing.T) {
	s, _ := setupServices(t)
	ctx := context.Background()

	_, err := s.RegisterParticipant(ctx, "  ", "physics", types.Student)
	requireErrorCode(t, err, types.ValidationError, http.StatusBadRequest)

	_, err = s.RegisterParticipant(ctx, "alice", "", types.Student)
	requireErrorCode(t, err, types.ValidationError, http.StatusBadRequest)

	_, err = s.RegisterParticipant(ctx, "alice", "physics", types.Role("lecturer"))
	requireErrorCode(t, err, types.ValidationError, http.StatusBadRequest)

	id := register(t, s, "alice", types.Student)
	assert.Zero(t, balanceOf(t, s, id))
	name, err := s.GetStudentName(ctx, id)
	require.Nil(t, err)
	assert.Equal(t, "alice", name)

	participants, err := s.GetParticipants(ctx)
	require.Nil(t, err)
	require.Len(t, participants, 1)
	assert.False(t, participants[0].HasStaked)
	assert.Equal(t, "student", participants[0].Role)
}

func TestStakeErrors(t *testing.T) {
	s, _ := setupServices(t)
	ctx := context.Background()

	requireErrorCode(t, s.Stake(ctx, "unknown", 1000), types.IdNotFound, http.StatusNotFound)

	id := register(t, s, "alice", types.Student)
	requireErrorCode(t, s.Stake(ctx, id, 1), types.StakeTooLow, http.StatusBadRequest)
	assert.Zero(t, balanceOf(t, s, id))

	require.Nil(t, s.Stake(ctx, id, 1000))
	require.Nil(t, s.Stake(ctx, id, 1200))
	assert.Equal(t, uint64(1200), balanceOf(t, s, id), "stake replaces the balance")
}

func TestStakeAddsSupervisorToPoolOnce(t *testing.T) {
	s, _ := setupServices(t)
	ctx := context.Background()

	supervisorId := registerAndStake(t, s, "bob", types.Supervisor, 1000)
	require.Nil(t, s.Stake(ctx, supervisorId, 2000))
	registerAndStake(t, s, "alice", types.Student, 1000)

	supervisors, err := s.GetSupervisorList(ctx)
	require.Nil(t, err)
	require.Len(t, supervisors, 1)
	assert.Equal(t, supervisorId, supervisors[0].ParticipantId)
}

func TestPickSupervisor(t *testing.T) {
	s, _ := setupServices(t)
	ctx := context.Background()

	_, err := s.PickSupervisor(ctx)
	requireErrorCode(t, err, types.NoSupervisorAvailable, http.StatusConflict)

	registerAndStake(t, s, "bob", types.Supervisor, 1000)
	second := registerAndStake(t, s, "carol", types.Supervisor, 1000)

	var poolSize int
	s.pickIndex = func(n int) int {
		poolSize = n
		return 1
	}
	picked, err := s.PickSupervisor(ctx)
	require.Nil(t, err)
	assert.Equal(t, 2, poolSize)
	assert.Equal(t, second, picked.ParticipantId)
}

func TestCreateAssignmentErrors(t *testing.T) {
	s, _ := setupServices(t)
	ctx := context.Background()

	_, err := s.CreateAssignment(ctx, "unknown", "topic", 1)
	requireErrorCode(t, err, types.IdNotFound, http.StatusNotFound)

	studentId := register(t, s, "alice", types.Student)
	_, err = s.CreateAssignment(ctx, studentId, "topic", 1)
	requireErrorCode(t, err, types.NotStaked, http.StatusForbidden)

	require.Nil(t, s.Stake(ctx, studentId, 1000))
	_, err = s.CreateAssignment(ctx, studentId, "topic", 1)
	requireErrorCode(t, err, types.NoSupervisorAvailable, http.StatusConflict)

	supervisorId := registerAndStake(t, s, "bob", types.Supervisor, 1000)
	_, err = s.CreateAssignment(ctx, supervisorId, "topic", 1)
	requireErrorCode(t, err, types.ValidationError, http.StatusBadRequest)

	_, err = s.CreateAssignment(ctx, studentId, "", 1)
	requireErrorCode(t, err, types.ValidationError, http.StatusBadRequest)

	_, err = s.CreateAssignment(ctx, studentId, "topic", 0)
	requireErrorCode(t, err, types.ValidationError, http.StatusBadRequest)

	progress, err := s.GetProgress(ctx)
	require.Nil(t, err)
	assert.Empty(t, progress, "failed creations leave nothing behind")
}

func TestCreateAssignmentArmsTimer(t *testing.T) {
	s, sched := setupServices(t)
	sc := setupScenario(t, s)

	assert.Equal(t, []time.Duration{24 * time.Hour}, sched.delays())

	progress, err := s.GetProgress(context.Background())
	require.Nil(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, sc.created.ProgressRecordId, progress[0].ProgressRecordId)
	assert.Equal(t, sc.created.AssignmentId, progress[0].AssignmentId)
	assert.Equal(t, sc.studentId, progress[0].StudentId)
	assert.Equal(t, sc.supervisorId, progress[0].SupervisorId)
	assert.Equal(t, "pending", progress[0].State)
	assert.False(t, progress[0].IsFinished)
}

func TestHappyPathScenario(t *testing.T) {
	s, sched := setupServices(t)
	ctx := context.Background()
	sc := setupScenario(t, s)

	require.Nil(t, s.SubmitWork(ctx, sc.created.AssignmentId, "done"))
	work, err := s.ViewSubmittedWork(ctx, sc.supervisorId)
	require.Nil(t, err)
	assert.Equal(t, "done", work)

	require.Nil(t, s.VerifyWorkDone(ctx, sc.supervisorId))
	assert.Empty(t, sched.delays(), "verification cancels the timer")

	amount, err := s.ClaimFunds(ctx, sc.studentId, sc.created.ProgressRecordId)
	require.Nil(t, err)
	assert.Equal(t, uint64(1000), amount)
	assert.Zero(t, balanceOf(t, s, sc.studentId))

	_, err = s.ClaimFunds(ctx, sc.studentId, sc.created.ProgressRecordId)
	requireErrorCode(t, err, types.NotAuthorized, http.StatusForbidden)

	progress, err := s.GetProgress(ctx)
	require.Nil(t, err)
	assert.Equal(t, "claimed", progress[0].State)
	assert.True(t, progress[0].IsFinished)
}

func TestForfeitureScenario(t *testing.T) {
	s, sched := setupServices(t)
	ctx := context.Background()
	sc := setupScenario(t, s)
	require.Nil(t, s.SubmitWork(ctx, sc.created.AssignmentId, "late"))

	assert.Equal(t, 1, sched.FireAll())
	assert.Zero(t, balanceOf(t, s, sc.studentId))

	err := s.VerifyWorkDone(ctx, sc.supervisorId)
	requireErrorCode(t, err, types.AssignmentForfeited, http.StatusConflict)

	_, err = s.ClaimFunds(ctx, sc.studentId, sc.created.ProgressRecordId)
	requireErrorCode(t, err, types.NotAuthorized, http.StatusForbidden)

	progress, err := s.GetProgress(ctx)
	require.Nil(t, err)
	assert.Equal(t, "forfeited", progress[0].State)
	assert.False(t, progress[0].IsFinished)
}

func TestLateExpiryAfterVerificationIsIgnored(t *testing.T) {
	s, _ := setupServices(t)
	ctx := context.Background()
	sc := setupScenario(t, s)

	require.Nil(t, s.VerifyWorkDone(ctx, sc.supervisorId))
	// A duplicate expiry event, e.g. redelivered from the queue
	require.Nil(t, s.ProcessForfeiture(ctx, sc.created.AssignmentId))
	assert.Equal(t, uint64(1000), balanceOf(t, s, sc.studentId))

	require.Nil(t, s.ProcessForfeiture(ctx, "unknown-assignment"))
}

func TestVerifyTwiceReportsTimerNotFound(t *testing.T) {
	s, _ := setupServices(t)
	ctx := context.Background()
	sc := setupScenario(t, s)

	require.Nil(t, s.VerifyWorkDone(ctx, sc.supervisorId))
	err := s.VerifyWorkDone(ctx, sc.supervisorId)
	requireErrorCode(t, err, types.TimerNotFound, http.StatusNotFound)

	amount, err := s.ClaimFunds(ctx, sc.studentId, sc.created.ProgressRecordId)
	require.Nil(t, err)
	assert.Equal(t, uint64(1000), amount)
}

func TestClaimFundsGuards(t *testing.T) {
	s, _ := setupServices(t)
	ctx := context.Background()
	sc := setupScenario(t, s)
	otherStudent := registerAndStake(t, s, "mallory", types.Student, 1000)

	_, err := s.ClaimFunds(ctx, sc.studentId, "unknown")
	requireErrorCode(t, err, types.ProgressRecordNotFound, http.StatusNotFound)

	_, err = s.ClaimFunds(ctx, sc.studentId, sc.created.ProgressRecordId)
	requireErrorCode(t, err, types.NotAuthorized, http.StatusForbidden)

	require.Nil(t, s.VerifyWorkDone(ctx, sc.supervisorId))
	_, err = s.ClaimFunds(ctx, otherStudent, sc.created.ProgressRecordId)
	requireErrorCode(t, err, types.NotAuthorized, http.StatusForbidden)
	assert.Equal(t, uint64(1000), balanceOf(t, s, sc.studentId))
}

func TestConcurrentClaimsSucceedOnce(t *testing.T) {
	s, _ := setupServices(t)
	ctx := context.Background()
	sc := setupScenario(t, s)
	require.Nil(t, s.VerifyWorkDone(ctx, sc.supervisorId))

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total uint64
		wins  int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			amount, err := s.ClaimFunds(ctx, sc.studentId, sc.created.ProgressRecordId)
			if err == nil {
				mu.Lock()
				wins++
				total += amount
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, uint64(1000), total)
}

func TestVerifyAndForfeitureAreMutuallyExclusive(t *testing.T) {
	for i := 0; i < 20; i++ {
		s, _ := setupServices(t)
		ctx := context.Background()
		sc := setupScenario(t, s)

		var (
			wg        sync.WaitGroup
			verifyErr *types.Error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			verifyErr = s.VerifyWorkDone(ctx, sc.supervisorId)
		}()
		go func() {
			defer wg.Done()
			assert.Nil(t, s.ProcessForfeiture(ctx, sc.created.AssignmentId))
		}()
		wg.Wait()

		progress, err := s.GetProgress(ctx)
		require.Nil(t, err)
		balance := balanceOf(t, s, sc.studentId)
		if verifyErr == nil {
			assert.Equal(t, "verified", progress[0].State)
			assert.Equal(t, uint64(1000), balance)
		} else {
			assert.Equal(t, types.AssignmentForfeited, verifyErr.ErrorCode)
			assert.Equal(t, "forfeited", progress[0].State)
			assert.Zero(t, balance)
		}
	}
}

func TestSubmitWork(t *testing.T) {
	s, _ := setupServices(t)
	ctx := context.Background()

	err := s.SubmitWork(ctx, "unknown", "work")
	requireErrorCode(t, err, types.AssignmentNotFound, http.StatusNotFound)

	sc := setupScenario(t, s)
	_, err = s.ViewSubmittedWork(ctx, sc.supervisorId)
	requireErrorCode(t, err, types.WorkNotUploaded, http.StatusNotFound)

	require.Nil(t, s.SubmitWork(ctx, sc.created.AssignmentId, "draft"))
	require.Nil(t, s.SubmitWork(ctx, sc.created.AssignmentId, "final"))
	work, err := s.ViewSubmittedWork(ctx, sc.supervisorId)
	require.Nil(t, err)
	assert.Equal(t, "final", work)

	progress, err := s.GetProgress(ctx)
	require.Nil(t, err)
	assert.Equal(t, "submitted", progress[0].State)
}

func TestActiveSupervisionIsSingleSlot(t *testing.T) {
	s, _ := setupServices(t)
	ctx := context.Background()

	_, err := s.ViewSubmittedWork(ctx, "nobody")
	requireErrorCode(t, err, types.NoActiveSupervision, http.StatusNotFound)
	requireErrorCode(t, s.VerifyWorkDone(ctx, "nobody"), types.NoActiveSupervision, http.StatusNotFound)

	sc := setupScenario(t, s)
	second, err := s.CreateAssignment(ctx, sc.studentId, "linear algebra", 2)
	require.Nil(t, err)
	require.Nil(t, s.SubmitWork(ctx, sc.created.AssignmentId, "first"))
	require.Nil(t, s.SubmitWork(ctx, second.AssignmentId, "second"))

	work, err := s.ViewSubmittedWork(ctx, sc.supervisorId)
	require.Nil(t, err)
	assert.Equal(t, "second", work)
}

func TestExpiryDispatcher(t *testing.T) {
	s, sched := setupServices(t)
	ctx := context.Background()
	sc := setupScenario(t, s)

	var dispatched []queueClient.ExpiredAssignmentEvent
	s.SetExpiryDispatcher(func(ctx context.Context, event queueClient.ExpiredAssignmentEvent) error {
		dispatched = append(dispatched, event)
		return nil
	})
	sched.FireAll()

	require.Len(t, dispatched, 1)
	assert.Equal(t, queueClient.ExpiredAssignmentEventType, dispatched[0].EventType)
	assert.Equal(t, sc.created.AssignmentId, dispatched[0].AssignmentId)
	assert.Equal(t, sc.created.ProgressRecordId, dispatched[0].ProgressRecordId)
	assert.Equal(t, sc.studentId, dispatched[0].ParticipantId)
	assert.Equal(t, uint64(1000), balanceOf(t, s, sc.studentId), "the consumer forfeits, not the timer")

	require.Nil(t, s.ProcessForfeiture(ctx, dispatched[0].AssignmentId))
	assert.Zero(t, balanceOf(t, s, sc.studentId))
}

func TestExpiryDispatchFailureFallsBackToInProcess(t *testing.T) {
	s, sched := setupServices(t)
	sc := setupScenario(t, s)

	s.SetExpiryDispatcher(func(ctx context.Context, event queueClient.ExpiredAssignmentEvent) error {
		return errors.New("queue unavailable")
	})
	sched.FireAll()
	assert.Zero(t, balanceOf(t, s, sc.studentId))
}

func TestRestoreTimers(t *testing.T) {
	s, sched := setupServices(t)
	ctx := context.Background()
	sc := setupScenario(t, s)

	// A new process over the same store
	restartedScheduler := newManualScheduler()
	restarted := NewWithDbClient(testConfig(), s.DbClient, restartedScheduler)
	count, err := restarted.RestoreTimers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, restartedScheduler.delays(), 1)
	assert.InDelta(t, float64(24*time.Hour), float64(restartedScheduler.delays()[0]), float64(5*time.Second))

	assert.Equal(t, 1, restartedScheduler.FireAll())
	assert.Zero(t, balanceOf(t, restarted, sc.studentId))
	// Stale handles from the previous process fire into a consumed timer
	sched.FireAll()
	assert.Zero(t, balanceOf(t, s, sc.studentId))

	count, err = restarted.RestoreTimers(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

// faultyDbClient injects failures into an otherwise working store.
type faultyDbClient struct {
	db.DBClient
	saveAssignmentErr error
	// ForfeitStake fails this many times before reaching the store
	forfeitFailures    int
	forfeitCalls       int
	danglingProgressId string
}

func (f *faultyDbClient) SaveAssignment(
	ctx context.Context, assignment *model.AssignmentDocument,
	progress *model.ProgressRecordDocument, timer *model.TimerDocument,
) error {
	if f.saveAssignmentErr != nil {
		return f.saveAssignmentErr
	}
	return f.DBClient.SaveAssignment(ctx, assignment, progress, timer)
}

func (f *faultyDbClient) ForfeitStake(
	ctx context.Context, timer *model.TimerDocument, eligiblePreviousState []types.ProgressState,
) error {
	f.forfeitCalls++
	if f.forfeitFailures > 0 {
		f.forfeitFailures--
		return errors.New("database is locked")
	}
	return f.DBClient.ForfeitStake(ctx, timer, eligiblePreviousState)
}

func (f *faultyDbClient) FindActiveSupervision(ctx context.Context, supervisorId string) (string, error) {
	if f.danglingProgressId != "" {
		return f.danglingProgressId, nil
	}
	return f.DBClient.FindActiveSupervision(ctx, supervisorId)
}

func setupFaultyServices(t *testing.T) (*Services, *manualScheduler, *faultyDbClient) {
	t.Helper()
	s, sched := setupServices(t)
	faulty := &faultyDbClient{DBClient: s.DbClient}
	s.DbClient = faulty
	return s, sched, faulty
}

func recordSleeps(t *testing.T) *[]time.Duration {
	var sleeps []time.Duration
	utils.SetSleepFunc(func(d time.Duration) {
		sleeps = append(sleeps, d)
	})
	t.Cleanup(utils.ResetSleepFunc)
	return &sleeps
}

func TestFailedAssignmentSaveLeavesNoTimer(t *testing.T) {
	s, sched, faulty := setupFaultyServices(t)
	ctx := context.Background()
	studentId := registerAndStake(t, s, "alice", types.Student, 1000)
	supervisorId := registerAndStake(t, s, "bob", types.Supervisor, 1000)

	faulty.saveAssignmentErr = errors.New("connection reset")
	_, err := s.CreateAssignment(ctx, studentId, "graph theory", 1)
	requireErrorCode(t, err, types.InternalServiceError, http.StatusInternalServerError)

	assert.Empty(t, sched.delays(), "the callback is canceled when nothing was stored")
	progress, err := s.GetProgress(ctx)
	require.Nil(t, err)
	assert.Empty(t, progress)
	armed, dbErr := s.DbClient.FindArmedTimers(ctx)
	require.NoError(t, dbErr)
	assert.Empty(t, armed)
	requireErrorCode(t, s.VerifyWorkDone(ctx, supervisorId), types.NoActiveSupervision, http.StatusNotFound)
}

func TestInProcessExpiryForfeitsOnce(t *testing.T) {
	s, sched, faulty := setupFaultyServices(t)
	sc := setupScenario(t, s)

	assert.Equal(t, 1, sched.FireAll())
	assert.Equal(t, 1, faulty.forfeitCalls)
	assert.Zero(t, balanceOf(t, s, sc.studentId))
}

func TestExpiryRetriesTransientFailures(t *testing.T) {
	s, sched, faulty := setupFaultyServices(t)
	ctx := context.Background()
	sleeps := recordSleeps(t)
	sc := setupScenario(t, s)
	faulty.forfeitFailures = 2

	sched.FireAll()
	assert.Equal(t, 3, faulty.forfeitCalls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, *sleeps)
	assert.Zero(t, balanceOf(t, s, sc.studentId))

	requireErrorCode(t, s.VerifyWorkDone(ctx, sc.supervisorId), types.AssignmentForfeited, http.StatusConflict)
	_, err := s.ClaimFunds(ctx, sc.studentId, sc.created.ProgressRecordId)
	requireErrorCode(t, err, types.NotAuthorized, http.StatusForbidden)
}

func TestExpiryIsRescheduledAfterRetriesRunOut(t *testing.T) {
	s, sched, faulty := setupFaultyServices(t)
	ctx := context.Background()
	recordSleeps(t)
	sc := setupScenario(t, s)
	faulty.forfeitFailures = expiryMaxAttempts + 1

	sched.FireAll()
	assert.Equal(t, expiryMaxAttempts, faulty.forfeitCalls)
	assert.Equal(t, uint64(1000), balanceOf(t, s, sc.studentId))
	assert.Equal(t, []time.Duration{expiryRescheduleDelay}, sched.delays())

	sched.FireAll()
	assert.Zero(t, balanceOf(t, s, sc.studentId))
	assert.Empty(t, sched.delays())

	requireErrorCode(t, s.VerifyWorkDone(ctx, sc.supervisorId), types.AssignmentForfeited, http.StatusConflict)
	_, err := s.ClaimFunds(ctx, sc.studentId, sc.created.ProgressRecordId)
	requireErrorCode(t, err, types.NotAuthorized, http.StatusForbidden)
}

func TestVerifyAfterDueDateForfeits(t *testing.T) {
	s, _ := setupServices(t)
	ctx := context.Background()
	sc := setupScenario(t, s)

	// The due date passed but the callback has not run yet
	timer, err := s.DbClient.FindTimer(ctx, sc.created.AssignmentId)
	require.NoError(t, err)
	timer.FireAt = time.Now().Add(-time.Minute).Unix()
	require.NoError(t, s.DbClient.SaveTimer(ctx, timer))

	requireErrorCode(t, s.VerifyWorkDone(ctx, sc.supervisorId), types.AssignmentForfeited, http.StatusConflict)
	assert.Zero(t, balanceOf(t, s, sc.studentId))

	_, claimErr := s.ClaimFunds(ctx, sc.studentId, sc.created.ProgressRecordId)
	requireErrorCode(t, claimErr, types.NotAuthorized, http.StatusForbidden)
}

func TestDanglingSupervisionIndex(t *testing.T) {
	s, _, faulty := setupFaultyServices(t)
	ctx := context.Background()
	sc := setupScenario(t, s)
	faulty.danglingProgressId = utils.NewProgressRecordId()

	_, err := s.ViewSubmittedWork(ctx, sc.supervisorId)
	requireErrorCode(t, err, types.ProgressRecordNotFound, http.StatusNotFound)
	requireErrorCode(t, s.VerifyWorkDone(ctx, sc.supervisorId), types.ProgressRecordNotFound, http.StatusNotFound)

	faulty.danglingProgressId = ""
	require.Nil(t, s.VerifyWorkDone(ctx, sc.supervisorId), "the real record is untouched")
}
