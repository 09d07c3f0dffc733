package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/apperr"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/pkg/models"
)

// fakeTransport records sends and can be told to fail.
type fakeTransport struct {
	failSend   bool
	failRender bool
	sent       [][]string
}

func (f *fakeTransport) Render(_ context.Context, kind string, _ any) (*Message, error) {
	if f.failRender {
		return nil, errors.New("template service unavailable")
	}
	return &Message{Subject: "Re: " + kind, HTML: "<p>" + kind + "</p>"}, nil
}

func (f *fakeTransport) Send(_ context.Context, recipients []string, _, _ string) error {
	if f.failSend {
		return errors.New("smtp relay refused connection")
	}
	f.sent = append(f.sent, recipients)
	return nil
}

func testWorkflow() *models.Workflow {
	return &models.Workflow{
		ID:    "wf-1",
		JobID: "job-1",
		Phases: []models.Phase{
			{
				PhaseNumber: 0,
				PhaseName:   "Phase 0 (When Starts)",
				Type:        models.PhaseTypeCustom,
				Status:      models.PhaseStatusActive,
				Candidates:  []string{"c1", "c2"},
			},
			{
				PhaseNumber: 1,
				PhaseName:   "Phase 1",
				Type:        models.PhaseTypeInterviewVideo,
				Status:      models.PhaseStatusActive,
				Candidates:  []string{"c1"},
			},
		},
	}
}

var testRecruiters = []models.Recruiter{{ID: "rec-1", Name: "Recruiter One", Email: "rec1@example.com"}}

func newTestQueue() (*Queue, *fakeTransport) {
	transport := &fakeTransport{}
	return NewQueue(transport, zap.NewNop()), transport
}

func TestEnqueueForCreateOrder(t *testing.T) {
	q, _ := newTestQueue()
	q.EnqueueForCreate(testWorkflow(), testRecruiters)

	require.Equal(t, 2, q.Len())
	first := q.Next()
	require.NotNil(t, first)
	assert.Equal(t, models.NotificationCandidatePhase, first.Type)
	assert.Equal(t, []string{"c1", "c2"}, first.CandidateIDs)
}

func TestEnqueueForCreateRecruitersOnly(t *testing.T) {
	q, _ := newTestQueue()
	wf := testWorkflow()
	wf.Phases[0].Candidates = nil

	q.EnqueueForCreate(wf, testRecruiters)
	require.Equal(t, 1, q.Len())
	assert.Equal(t, models.NotificationRecruiterPhase, q.Next().Type)
}

func TestSingleFlight(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue()
	q.EnqueueForCreate(testWorkflow(), testRecruiters)

	first := q.Next()
	require.NotNil(t, first)

	// Next re-returns the active job until it is resolved
	again := q.Next()
	assert.Same(t, first, again)

	_, err := q.Confirm(ctx, first, []string{"c1@example.com"})
	require.NoError(t, err)

	second := q.Next()
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, models.NotificationRecruiterPhase, second.Type)
}

func TestConfirmZeroRecipientsKeepsJobActive(t *testing.T) {
	ctx := context.Background()
	q, transport := newTestQueue()
	q.EnqueueForCreate(testWorkflow(), nil)

	job := q.Next()
	require.NotNil(t, job)

	_, err := q.Confirm(ctx, job, nil)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Empty(t, transport.sent)

	// still the active job, retry succeeds
	assert.Same(t, job, q.Next())
	res, err := q.Confirm(ctx, job, []string{"c1@example.com", "c2@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sent)
	assert.Nil(t, q.Next())
}

func TestConfirmTransportFailureKeepsJobActive(t *testing.T) {
	ctx := context.Background()
	q, transport := newTestQueue()
	q.EnqueueForCreate(testWorkflow(), nil)

	job := q.Next()
	require.NotNil(t, job)

	transport.failSend = true
	_, err := q.Confirm(ctx, job, []string{"c1@example.com"})
	require.Error(t, err)
	var te *apperr.TransportError
	require.True(t, errors.As(err, &te))

	assert.Same(t, job, q.Next())

	transport.failSend = false
	_, err = q.Confirm(ctx, job, []string{"c1@example.com"})
	require.NoError(t, err)
}

func TestConfirmRenderFailure(t *testing.T) {
	ctx := context.Background()
	q, transport := newTestQueue()
	q.EnqueueForCreate(testWorkflow(), nil)

	job := q.Next()
	transport.failRender = true

	_, err := q.Confirm(ctx, job, []string{"c1@example.com"})
	require.Error(t, err)
	var te *apperr.TransportError
	assert.True(t, errors.As(err, &te))
	assert.Same(t, job, q.Next())
}

func TestConfirmRejectsStaleJob(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue()
	q.EnqueueForCreate(testWorkflow(), testRecruiters)

	active := q.Next()
	stale := &models.NotificationJob{ID: "not-the-active-one"}

	_, err := q.Confirm(ctx, stale, []string{"c1@example.com"})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Same(t, active, q.Next())
}

func TestCancelAdvancesQueue(t *testing.T) {
	q, transport := newTestQueue()
	q.EnqueueForCreate(testWorkflow(), testRecruiters)

	first := q.Next()
	require.NoError(t, q.Cancel(first))
	assert.Empty(t, transport.sent)

	second := q.Next()
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID, second.ID)
	require.NoError(t, q.Cancel(second))
	assert.Nil(t, q.Next())
	assert.Zero(t, q.Len())
}

func TestEnqueueForUpdateDefaultsToLastPhase(t *testing.T) {
	q, _ := newTestQueue()
	wf := testWorkflow()

	require.NoError(t, q.EnqueueForUpdate(wf, nil, -1))
	job := q.Next()
	require.NotNil(t, job)
	assert.Equal(t, 1, job.Phase.PhaseNumber)
	assert.Equal(t, []string{"c1"}, job.CandidateIDs)
}

func TestEnqueueForUpdateTargetsPhase(t *testing.T) {
	q, _ := newTestQueue()
	wf := testWorkflow()

	require.NoError(t, q.EnqueueForUpdate(wf, testRecruiters, 0))
	require.Equal(t, 2, q.Len())
	job := q.Next()
	assert.Equal(t, models.NotificationCandidatePhase, job.Type)
	assert.Equal(t, 0, job.Phase.PhaseNumber)
}

func TestEnqueueForUpdateRejectsOutOfRangeIndex(t *testing.T) {
	q, _ := newTestQueue()
	wf := testWorkflow()

	err := q.EnqueueForUpdate(wf, testRecruiters, 7)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Zero(t, q.Len())
}

func TestEnqueueJobCreation(t *testing.T) {
	q, _ := newTestQueue()
	wf := testWorkflow()

	q.EnqueueJobCreation(wf, nil)
	assert.Zero(t, q.Len())

	q.EnqueueJobCreation(wf, testRecruiters)
	require.Equal(t, 1, q.Len())
	assert.Equal(t, models.NotificationRecruiterJobCreate, q.Next().Type)
}

func TestPreviewDoesNotSend(t *testing.T) {
	ctx := context.Background()
	q, transport := newTestQueue()
	q.EnqueueForCreate(testWorkflow(), nil)

	job := q.Next()
	msg, err := q.Preview(ctx, job)
	require.NoError(t, err)
	assert.Contains(t, msg.Subject, string(models.NotificationCandidatePhase))
	assert.Empty(t, transport.sent)
	assert.Same(t, job, q.Next())
}

func TestActiveDoesNotPromote(t *testing.T) {
	q, _ := newTestQueue()
	q.EnqueueForCreate(testWorkflow(), nil)

	assert.Nil(t, q.Active())
	assert.Equal(t, 1, q.Len())

	job := q.Next()
	assert.Same(t, job, q.Active())
}

// gateTransport pauses inside Render or Send until the matching gate is
// closed, so cancellation ordering can be exercised deterministically.
type gateTransport struct {
	renderStarted chan struct{}
	renderGate    chan struct{}
	sendStarted   chan struct{}
	sendGate      chan struct{}

	mu    sync.Mutex
	sends int
}

func signal(ch chan struct{}) {
	if ch == nil {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (g *gateTransport) Render(_ context.Context, kind string, _ any) (*Message, error) {
	signal(g.renderStarted)
	if g.renderGate != nil {
		<-g.renderGate
	}
	return &Message{Subject: "Re: " + kind, HTML: "<p>" + kind + "</p>"}, nil
}

func (g *gateTransport) Send(_ context.Context, _ []string, _, _ string) error {
	signal(g.sendStarted)
	if g.sendGate != nil {
		<-g.sendGate
	}
	g.mu.Lock()
	g.sends++
	g.mu.Unlock()
	return nil
}

func TestCancelBeforeSendAbortsConfirm(t *testing.T) {
	transport := &gateTransport{
		renderStarted: make(chan struct{}, 1),
		renderGate:    make(chan struct{}),
	}
	q := NewQueue(transport, zap.NewNop())
	q.EnqueueForCreate(testWorkflow(), testRecruiters)

	first := q.Next()
	require.NotNil(t, first)

	confirmErr := make(chan error, 1)
	go func() {
		_, err := q.Confirm(context.Background(), first, []string{"c1@example.com"})
		confirmErr <- err
	}()

	// cancel while the confirm is still rendering, then promote the next job
	<-transport.renderStarted
	require.NoError(t, q.Cancel(first))
	second := q.Next()
	require.NotNil(t, second)
	require.NotEqual(t, first.ID, second.ID)

	close(transport.renderGate)
	err := <-confirmErr
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	// the cancelled job was never sent and the promoted job is untouched
	assert.Zero(t, transport.sends)
	assert.Same(t, second, q.Next())
	require.NoError(t, q.Cancel(second))
}

func TestCancelDuringSendRejected(t *testing.T) {
	transport := &gateTransport{
		sendStarted: make(chan struct{}, 1),
		sendGate:    make(chan struct{}),
	}
	q := NewQueue(transport, zap.NewNop())
	q.EnqueueForCreate(testWorkflow(), testRecruiters)

	first := q.Next()
	require.NotNil(t, first)

	confirmErr := make(chan error, 1)
	go func() {
		_, err := q.Confirm(context.Background(), first, []string{"c1@example.com"})
		confirmErr <- err
	}()

	<-transport.sendStarted
	err := q.Cancel(first)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	close(transport.sendGate)
	require.NoError(t, <-confirmErr)
	assert.Equal(t, 1, transport.sends)

	// only the confirmed job left the queue
	second := q.Next()
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCenterIsolatesWorkflows(t *testing.T) {
	center := NewCenter(&fakeTransport{}, zap.NewNop())

	wfA := testWorkflow()
	wfB := testWorkflow()
	wfB.ID = "wf-2"

	center.ForWorkflow(wfA.ID).EnqueueForCreate(wfA, nil)
	center.ForWorkflow(wfB.ID).EnqueueForCreate(wfB, nil)

	jobA := center.ForWorkflow(wfA.ID).Next()
	jobB := center.ForWorkflow(wfB.ID).Next()
	require.NotNil(t, jobA)
	require.NotNil(t, jobB)
	assert.Equal(t, wfA.ID, jobA.WorkflowID)
	assert.Equal(t, wfB.ID, jobB.WorkflowID)

	// one workflow's active job does not block the other
	require.NoError(t, center.ForWorkflow(wfB.ID).Cancel(jobB))
	assert.Same(t, jobA, center.ForWorkflow(wfA.ID).Next())

	center.Drop(wfA.ID)
	assert.Zero(t, center.ForWorkflow(wfA.ID).Len())
}
