package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-weave/internal/core/ports"
	"go-weave/internal/core/postgres/repository"
	"go-weave/internal/domain"
	"go-weave/internal/graphsync"
	"go-weave/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func strPtr(s string) *string { return &s }

func TestRepositories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	workflows := repository.NewWorkflowRepository(db)
	graphs := repository.NewGraphStore(db)
	executions := repository.NewExecutionRepository(db)
	uploads := repository.NewUploadJobRepository(db)

	newWorkflow := func(t *testing.T, owner, name string) *domain.Workflow {
		t.Helper()
		wf := domain.NewWorkflow(owner, name)
		require.NoError(t, workflows.Create(ctx, wf))
		return wf
	}

	t.Run("WorkflowOwnerScoping", func(t *testing.T) {
		wf := newWorkflow(t, "alice", "Research")

		got, err := workflows.GetForOwner(ctx, wf.ID, "alice")
		require.NoError(t, err)
		assert.Equal(t, "Research", got.Name)

		_, err = workflows.GetForOwner(ctx, wf.ID, "mallory")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = workflows.Update(ctx, wf.ID, "mallory", domain.WorkflowPatch{Name: strPtr("pwned")})
		assert.ErrorIs(t, err, domain.ErrNotFound)

		assert.ErrorIs(t, workflows.Delete(ctx, wf.ID, "mallory"), domain.ErrNotFound)
	})

	t.Run("WorkflowPartialUpdate", func(t *testing.T) {
		wf := newWorkflow(t, "alice", "Draft")

		updated, err := workflows.Update(ctx, wf.ID, "alice", domain.WorkflowPatch{
			Description: strPtr("first pass"),
			Metadata:    datatypes.JSON(`{"tags":["x"]}`),
		})
		require.NoError(t, err)
		assert.Equal(t, "Draft", updated.Name)
		require.NotNil(t, updated.Description)
		assert.Equal(t, "first pass", *updated.Description)
		assert.JSONEq(t, `{"tags":["x"]}`, string(updated.Metadata))
	})

	t.Run("ListTemplates", func(t *testing.T) {
		owner := "lister-" + uuid.NewString()
		newWorkflow(t, owner, "Plain")
		tmpl := domain.NewWorkflow(owner, "Template")
		tmpl.IsTemplate = true
		require.NoError(t, workflows.Create(ctx, tmpl))

		all, err := workflows.List(ctx, owner, false)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		only, err := workflows.List(ctx, owner, true)
		require.NoError(t, err)
		require.Len(t, only, 1)
		assert.Equal(t, tmpl.ID, only[0].ID)
	})

	t.Run("GraphSyncRoundTrip", func(t *testing.T) {
		wf := newWorkflow(t, "alice", "Graph")
		syncer := graphsync.NewSynchronizer(graphs)

		first, err := syncer.Sync(ctx, wf.ID,
			[]graphsync.NodeInput{
				{TempID: "a", Label: "Start", Type: domain.NodeStart},
				{TempID: "b", Label: "End", Type: domain.NodeEnd},
			},
			[]graphsync.EdgeInput{{SourceTempID: "a", TargetTempID: "b"}},
		)
		require.NoError(t, err)

		// second save sends the durable ids back
		startID := first.TempIDs["a"].String()
		endID := first.TempIDs["b"].String()
		second, err := syncer.Sync(ctx, wf.ID,
			[]graphsync.NodeInput{
				{ID: startID, Label: "Start", Type: domain.NodeStart},
				{ID: endID, Label: "End", Type: domain.NodeEnd},
				{TempID: "c", Label: "Review", Type: domain.NodeAgent},
			},
			[]graphsync.EdgeInput{
				{SourceNodeID: startID, TargetTempID: "c"},
				{SourceNodeID: "Review", TargetNodeID: endID},
				{SourceNodeID: "ghost", TargetNodeID: endID},
			},
		)
		require.NoError(t, err)
		assert.Equal(t, 1, second.DroppedEdges)

		loaded, err := workflows.GetWithGraph(ctx, wf.ID, "alice")
		require.NoError(t, err)
		assert.Len(t, loaded.Nodes, 3)
		assert.Len(t, loaded.Edges, 2)

		ids := map[uuid.UUID]bool{}
		for _, n := range loaded.Nodes {
			ids[n.ID] = true
		}
		assert.True(t, ids[first.TempIDs["a"]])
		assert.True(t, ids[first.TempIDs["b"]])
	})

	t.Run("FailedSyncLeavesPreviousGraph", func(t *testing.T) {
		wf := newWorkflow(t, "alice", "Atomic")
		syncer := graphsync.NewSynchronizer(graphs)

		_, err := syncer.Sync(ctx, wf.ID,
			[]graphsync.NodeInput{{TempID: "a", Label: "Only", Type: domain.NodeStart}}, nil)
		require.NoError(t, err)

		// an edge to a node that does not exist violates the foreign key
		err = graphs.Transaction(ctx, func(tx ports.GraphStore) error {
			if err := tx.DeleteEdges(ctx, wf.ID); err != nil {
				return err
			}
			if err := tx.DeleteNodes(ctx, wf.ID); err != nil {
				return err
			}
			_, err := tx.InsertEdges(ctx, []domain.WorkflowEdge{{
				WorkflowID:   wf.ID,
				SourceNodeID: uuid.New(),
				TargetNodeID: uuid.New(),
			}})
			return err
		})
		assert.ErrorIs(t, err, domain.ErrConflict)

		loaded, err := workflows.GetWithGraph(ctx, wf.ID, "alice")
		require.NoError(t, err)
		require.Len(t, loaded.Nodes, 1)
		assert.Equal(t, "Only", loaded.Nodes[0].Label)
	})

	t.Run("NodeExecutionsOrderedByStart", func(t *testing.T) {
		wf := newWorkflow(t, "alice", "Run")
		run := domain.WorkflowExecution{
			ID:         uuid.New(),
			WorkflowID: wf.ID,
			OwnerID:    "alice",
			Status:     domain.StatusRunning,
		}
		require.NoError(t, db.Create(&run).Error)

		base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
		at := func(d time.Duration) *time.Time { ts := base.Add(d); return &ts }
		rows := []domain.NodeExecution{
			{ID: uuid.New(), ExecutionID: run.ID, NodeID: uuid.New(), Status: domain.StatusPending},
			{ID: uuid.New(), ExecutionID: run.ID, NodeID: uuid.New(), Status: domain.StatusRunning, StartedAt: at(2 * time.Second)},
			{ID: uuid.New(), ExecutionID: run.ID, NodeID: uuid.New(), Status: domain.StatusCompleted, StartedAt: at(0)},
		}
		require.NoError(t, db.Create(&rows).Error)

		got, err := executions.ListNodeExecutions(ctx, run.ID)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, rows[2].ID, got[0].ID)
		assert.Equal(t, rows[1].ID, got[1].ID)
		assert.Nil(t, got[2].StartedAt)

		_, err = executions.GetForOwner(ctx, run.ID, "mallory")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		list, err := executions.ListForWorkflow(ctx, wf.ID, "alice")
		require.NoError(t, err)
		assert.Len(t, list, 1)

		// deleting the workflow takes its runs along
		require.NoError(t, workflows.Delete(ctx, wf.ID, "alice"))
		_, err = executions.GetForOwner(ctx, run.ID, "alice")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("UploadJobModify", func(t *testing.T) {
		job := domain.NewUploadJob("alice", "notes.pdf")
		require.NoError(t, uploads.Create(ctx, job))

		updated, err := uploads.Modify(ctx, job.ID, func(j *domain.UploadJob) error {
			j.Status = domain.JobProcessing
			j.Metadata = datatypes.JSON(`{"job_stage":"extracting"}`)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, domain.JobProcessing, updated.Status)

		got, err := uploads.GetForOwner(ctx, job.ID, "alice")
		require.NoError(t, err)
		assert.Equal(t, domain.JobProcessing, got.Status)
		assert.JSONEq(t, `{"job_stage":"extracting"}`, string(got.Metadata))

		// a failing callback writes nothing
		boom := errors.New("boom")
		_, err = uploads.Modify(ctx, job.ID, func(j *domain.UploadJob) error {
			j.Status = domain.JobFailed
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err = uploads.GetForOwner(ctx, job.ID, "alice")
		require.NoError(t, err)
		assert.Equal(t, domain.JobProcessing, got.Status)

		_, err = uploads.Modify(ctx, uuid.New(), func(*domain.UploadJob) error { return nil })
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
