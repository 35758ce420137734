package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-weave/internal/domain"
	"go-weave/internal/graphsync"
	"go-weave/internal/service"
	"go-weave/internal/stage"
	"go-weave/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestWorkflowService(t *testing.T) {
	ctx := context.Background()

	newService := func() (service.WorkflowService, *testutil.GraphStore) {
		graphs := testutil.NewGraphStore()
		repo := testutil.NewWorkflowRepository(graphs)
		return service.NewWorkflowService(repo, graphsync.NewSynchronizer(graphs)), graphs
	}

	t.Run("CreateRequiresName", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.CreateWorkflow(ctx, "alice", service.CreateWorkflowInput{Name: "   "})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("UpdateRejectsBlankName", func(t *testing.T) {
		svc, _ := newService()
		wf, err := svc.CreateWorkflow(ctx, "alice", service.CreateWorkflowInput{Name: "Research"})
		require.NoError(t, err)

		_, err = svc.UpdateWorkflow(ctx, wf.ID, "alice", domain.WorkflowPatch{Name: strPtr("")})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		updated, err := svc.UpdateWorkflow(ctx, wf.ID, "alice", domain.WorkflowPatch{Name: strPtr(" Deep research ")})
		require.NoError(t, err)
		assert.Equal(t, "Deep research", updated.Name)
	})

	t.Run("SaveGraphChecksOwnership", func(t *testing.T) {
		svc, graphs := newService()
		wf, err := svc.CreateWorkflow(ctx, "alice", service.CreateWorkflowInput{Name: "Mine"})
		require.NoError(t, err)

		nodes := []graphsync.NodeInput{{TempID: "a", Label: "Start", Type: domain.NodeStart}}
		_, err = svc.SaveGraph(ctx, wf.ID, "mallory", nodes, nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, graphs.Calls)

		res, err := svc.SaveGraph(ctx, wf.ID, "alice", nodes, nil)
		require.NoError(t, err)
		assert.Len(t, res.Nodes, 1)

		loaded, err := svc.GetWorkflow(ctx, wf.ID, "alice")
		require.NoError(t, err)
		assert.Len(t, loaded.Nodes, 1)
		assert.Empty(t, loaded.Edges)
	})

	t.Run("ListTemplatesOnly", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.CreateWorkflow(ctx, "alice", service.CreateWorkflowInput{Name: "Plain"})
		require.NoError(t, err)
		_, err = svc.CreateWorkflow(ctx, "alice", service.CreateWorkflowInput{Name: "Tmpl", IsTemplate: true})
		require.NoError(t, err)

		all, err := svc.ListWorkflows(ctx, "alice", false)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		templates, err := svc.ListWorkflows(ctx, "alice", true)
		require.NoError(t, err)
		require.Len(t, templates, 1)
		assert.Equal(t, "Tmpl", templates[0].Name)
	})
}

func TestExecutionService_Execute(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*testutil.WorkflowRepository, *domain.Workflow) {
		repo := testutil.NewWorkflowRepository(nil)
		wf := domain.NewWorkflow("alice", "Runnable")
		require.NoError(t, repo.Create(ctx, wf))
		return repo, wf
	}

	t.Run("DispatchesAndPublishes", func(t *testing.T) {
		repo, wf := setup(t)
		engine := new(MockEngine)
		bus := new(MockEventBus)

		want := &domain.DispatchResult{ExecutionID: "run-1", Status: "queued", WorkflowID: wf.ID.String()}
		engine.On("Dispatch", mock.Anything, domain.DispatchRequest{
			WorkflowID: wf.ID,
			InputData:  map[string]any{"q": "go"},
		}).Return(want, nil).Once()
		bus.On("PublishExecutionDispatched", mock.Anything, mock.MatchedBy(func(e domain.ExecutionDispatchedEvent) bool {
			return e.ExecutionID == "run-1" && e.WorkflowID == wf.ID && e.OwnerID == "alice"
		})).Return(nil).Once()

		svc := service.NewExecutionService(repo, testutil.NewExecutionRepository(), engine, bus)
		got, err := svc.Execute(ctx, wf.ID, "alice", map[string]any{"q": "go"}, nil)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		engine.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("PublishFailureDoesNotFailDispatch", func(t *testing.T) {
		repo, wf := setup(t)
		engine := new(MockEngine)
		bus := new(MockEventBus)
		engine.On("Dispatch", mock.Anything, mock.Anything).
			Return(&domain.DispatchResult{ExecutionID: "run-2", Status: "queued"}, nil)
		bus.On("PublishExecutionDispatched", mock.Anything, mock.Anything).Return(errors.New("redis down"))

		svc := service.NewExecutionService(repo, testutil.NewExecutionRepository(), engine, bus)
		got, err := svc.Execute(ctx, wf.ID, "alice", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "run-2", got.ExecutionID)
	})

	t.Run("ForeignWorkflowNeverReachesEngine", func(t *testing.T) {
		repo, wf := setup(t)
		engine := new(MockEngine)

		svc := service.NewExecutionService(repo, testutil.NewExecutionRepository(), engine, nil)
		_, err := svc.Execute(ctx, wf.ID, "mallory", nil, nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		engine.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	})

	t.Run("EngineErrorPassesThrough", func(t *testing.T) {
		repo, wf := setup(t)
		engine := new(MockEngine)
		engine.On("Dispatch", mock.Anything, mock.Anything).
			Return(nil, &domain.EngineError{StatusCode: 400, Message: "bad graph"})

		svc := service.NewExecutionService(repo, testutil.NewExecutionRepository(), engine, nil)
		_, err := svc.Execute(ctx, wf.ID, "alice", nil, nil)
		var engineErr *domain.EngineError
		require.ErrorAs(t, err, &engineErr)
		assert.Equal(t, "bad graph", engineErr.Message)
	})

	t.Run("NoEngine", func(t *testing.T) {
		repo, wf := setup(t)
		svc := service.NewExecutionService(repo, testutil.NewExecutionRepository(), nil, nil)
		_, err := svc.Execute(ctx, wf.ID, "alice", nil, nil)
		assert.ErrorIs(t, err, domain.ErrNotConfigured)
	})
}

func TestExecutionService_ProgressAndList(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewWorkflowRepository(nil)
	wf := domain.NewWorkflow("alice", "Tracked")
	require.NoError(t, repo.Create(ctx, wf))

	executions := testutil.NewExecutionRepository()
	run := domain.WorkflowExecution{ID: uuid.New(), WorkflowID: wf.ID, OwnerID: "alice", Status: domain.StatusRunning}
	executions.AddExecution(run)
	executions.AddNodeExecutions(
		domain.NodeExecution{ID: uuid.New(), ExecutionID: run.ID, Status: domain.StatusCompleted},
		domain.NodeExecution{ID: uuid.New(), ExecutionID: run.ID, Status: domain.StatusRunning},
	)

	svc := service.NewExecutionService(repo, executions, nil, nil)

	progress, err := svc.Progress(ctx, run.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, progress.CurrentStep)
	assert.Equal(t, 2, progress.TotalSteps)
	assert.Equal(t, 50, progress.ProgressPercent)

	_, err = svc.Progress(ctx, run.ID, "mallory")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := svc.ListExecutions(ctx, wf.ID, "alice")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListExecutions(ctx, wf.ID, "mallory")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUploadService(t *testing.T) {
	ctx := context.Background()

	t.Run("RegisterQueuesJob", func(t *testing.T) {
		repo := testutil.NewUploadJobRepository()
		queue := new(MockQueue)
		queue.On("Push", mock.Anything, mock.AnythingOfType("string")).Return(nil).Once()

		svc := service.NewUploadService(repo, queue)
		view, err := svc.Register(ctx, "alice", "report.pdf")
		require.NoError(t, err)
		queue.AssertCalled(t, "Push", mock.Anything, view.ID.String())

		assert.Equal(t, domain.JobUploading, view.Status)
		require.NotNil(t, view.Snapshot.Stage)
		assert.Equal(t, stage.Registered, *view.Snapshot.Stage)
		require.Len(t, view.History, 1)
	})

	t.Run("RegisterRequiresFileName", func(t *testing.T) {
		svc := service.NewUploadService(testutil.NewUploadJobRepository(), new(MockQueue))
		_, err := svc.Register(ctx, "alice", "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("QueueFailureMarksJobFailed", func(t *testing.T) {
		repo := testutil.NewUploadJobRepository()
		queue := new(MockQueue)
		queue.On("Push", mock.Anything, mock.Anything).Return(errors.New("redis down"))

		svc := service.NewUploadService(repo, queue)
		_, err := svc.Register(ctx, "alice", "report.pdf")
		require.Error(t, err)

		jobs, err := svc.List(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, domain.JobFailed, jobs[0].Status)
		require.NotNil(t, jobs[0].Snapshot.Stage)
		assert.Equal(t, stage.Failed, *jobs[0].Snapshot.Stage)
	})

	t.Run("RecordStageWalksThePipeline", func(t *testing.T) {
		repo := testutil.NewUploadJobRepository()
		queue := new(MockQueue)
		queue.On("Push", mock.Anything, mock.Anything).Return(nil)

		svc := service.NewUploadService(repo, queue)
		view, err := svc.Register(ctx, "alice", "slides.pdf")
		require.NoError(t, err)

		base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
		length := int64(4096)
		steps := []domain.StageChangedEvent{
			{JobID: view.ID, Stage: "uploaded", At: base},
			{JobID: view.ID, Stage: "processing", At: base.Add(time.Second)},
			{JobID: view.ID, Stage: "extracted", At: base.Add(2 * time.Second), ContentLength: &length,
				VisionSummary: strPtr("two charts"), VisionProvider: strPtr("local")},
			{JobID: view.ID, Stage: "indexed", At: base.Add(3 * time.Second)},
			{JobID: view.ID, Stage: "injected", At: base.Add(4 * time.Second), Result: strPtr("12 chunks")},
		}
		var last *service.UploadView
		for _, ev := range steps {
			last, err = svc.RecordStage(ctx, ev)
			require.NoError(t, err)
		}

		assert.Equal(t, domain.JobCompleted, last.Status)
		require.NotNil(t, last.Result)
		assert.Equal(t, "12 chunks", *last.Result)
		assert.Len(t, last.History, 6)
		require.NotNil(t, last.ContentLength)
		assert.Equal(t, length, *last.ContentLength)
		require.NotNil(t, last.ExtractedAt)
		require.NotNil(t, last.InjectedAt)
		require.NotNil(t, last.Summary)
		assert.Equal(t, "two charts", *last.Summary)

		got, err := svc.Get(ctx, view.ID, "alice")
		require.NoError(t, err)
		out, err := json.Marshal(got)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(out, &body))
		assert.Equal(t, "injected", body["stage"])
		assert.Equal(t, "completed", body["status"])
		assert.Equal(t, "two charts", body["vision_summary"])
		assert.NotContains(t, body, "metadata")
	})

	t.Run("RecordStageRejectsUnknownStage", func(t *testing.T) {
		svc := service.NewUploadService(testutil.NewUploadJobRepository(), new(MockQueue))
		_, err := svc.RecordStage(ctx, domain.StageChangedEvent{JobID: uuid.New(), Stage: "teleported"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("RecordStageUnknownJob", func(t *testing.T) {
		svc := service.NewUploadService(testutil.NewUploadJobRepository(), new(MockQueue))
		_, err := svc.RecordStage(ctx, domain.StageChangedEvent{JobID: uuid.New(), Stage: "uploaded"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ForeignJobHidden", func(t *testing.T) {
		queue := new(MockQueue)
		queue.On("Push", mock.Anything, mock.Anything).Return(nil)
		svc := service.NewUploadService(testutil.NewUploadJobRepository(), queue)
		view, err := svc.Register(ctx, "alice", "a.txt")
		require.NoError(t, err)

		_, err = svc.Get(ctx, view.ID, "mallory")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
