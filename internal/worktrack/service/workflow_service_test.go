package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/worktrack/internal/worktrack/entity"
	"github.com/bitfantasy/worktrack/internal/worktrack/repository"
	"github.com/bitfantasy/worktrack/internal/worktrack/testutil"
	"gorm.io/gorm"
)

func newTestWorkflowService(t *testing.T) (*WorkflowService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return NewWorkflowService(repos.Work, repos.Workflow, repos.Step, nil), db
}

// TestRemoveDraftStep verifies that removing a step from the draft working
// set renumbers the remaining steps to consecutive zero-based orders while
// preserving their relative order
func TestRemoveDraftStep(t *testing.T) {
	steps := []DraftStep{
		{Title: "Dig", Duration: 4, Order: 0},
		{Title: "Pour", Duration: 8, Order: 1},
		{Title: "Cure", Duration: 12, Order: 2},
	}

	remaining, err := RemoveDraftStep(steps, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(remaining))
	}
	if remaining[0].Title != "Dig" || remaining[0].Order != 0 {
		t.Errorf("expected Dig at order 0, got %s at %d", remaining[0].Title, remaining[0].Order)
	}
	if remaining[1].Title != "Cure" || remaining[1].Order != 1 {
		t.Errorf("expected Cure at order 1, got %s at %d", remaining[1].Title, remaining[1].Order)
	}

	// Source slice must not be mutated
	if steps[2].Order != 2 {
		t.Errorf("source slice was mutated: order %d", steps[2].Order)
	}
}

func TestRemoveDraftStepOutOfRange(t *testing.T) {
	steps := []DraftStep{{Title: "Only", Duration: 1}}
	if _, err := RemoveDraftStep(steps, 1); err == nil {
		t.Fatal("expected error for index past end")
	}
	if _, err := RemoveDraftStep(steps, -1); err == nil {
		t.Fatal("expected error for negative index")
	}
}

// TestEstimateDurationDays verifies the ceiling division of total step hours
func TestEstimateDurationDays(t *testing.T) {
	cases := []struct {
		name  string
		hours []int
		want  int
	}{
		{"under one day", []int{4, 20}, 1},
		{"exactly one day", []int{24}, 1},
		{"just over one day", []int{24, 1}, 2},
		{"multiple days", []int{10, 30, 20}, 3},
		{"empty", nil, 0},
	}

	for _, c := range cases {
		steps := make([]DraftStep, 0, len(c.hours))
		for _, h := range c.hours {
			steps = append(steps, DraftStep{Duration: h})
		}
		if got := EstimateDurationDays(steps); got != c.want {
			t.Errorf("%s: got %d days, want %d", c.name, got, c.want)
		}
	}
}

// TestActivateWorkflow verifies that activation creates one active workflow
// with all draft steps persisted in order and moves the work to in_progress
func TestActivateWorkflow(t *testing.T) {
	svc, db := newTestWorkflowService(t)
	ctx := context.Background()

	work := testutil.SeedWork(t, db, "Road Repair", entity.WorkStatusPending)

	drafts := []DraftStep{
		{Title: "Survey", Duration: 4, Order: 0},
		{Title: "Excavate", Duration: 20, Order: 1},
	}
	workflow, err := svc.Activate(ctx, work.ID, drafts)
	if err != nil {
		t.Fatalf("activate failed: %v", err)
	}

	if workflow.Status != entity.WorkflowStatusActive {
		t.Errorf("expected active workflow, got %s", workflow.Status)
	}
	if workflow.Title != entity.WorkflowTitlePrefix+"Road Repair" {
		t.Errorf("unexpected workflow title: %s", workflow.Title)
	}
	// 4h + 20h = 24h → 1 day
	if workflow.Duration != 1 {
		t.Errorf("expected duration 1 day, got %d", workflow.Duration)
	}

	var steps []entity.WorkflowStep
	db.Where("workflow_id = ?", workflow.ID).Order("step_order ASC").Find(&steps)
	if len(steps) != 2 {
		t.Fatalf("expected 2 persisted steps, got %d", len(steps))
	}
	for i, step := range steps {
		if step.StepOrder != i {
			t.Errorf("step %d has order %d", i, step.StepOrder)
		}
		if step.Status != entity.StepStatusPending {
			t.Errorf("step %d status %s, want pending", i, step.Status)
		}
		if step.CompletedAt != nil {
			t.Errorf("step %d has completed_at set", i)
		}
	}

	var reloaded entity.Work
	db.Where("id = ?", work.ID).First(&reloaded)
	if reloaded.Status != entity.WorkStatusInProgress {
		t.Errorf("expected work in_progress, got %s", reloaded.Status)
	}
}

func TestActivateEmptyDraftRejected(t *testing.T) {
	svc, db := newTestWorkflowService(t)
	work := testutil.SeedWork(t, db, "Empty Draft", entity.WorkStatusPending)

	if _, err := svc.Activate(context.Background(), work.ID, nil); err == nil {
		t.Fatal("expected error for empty draft working set")
	}

	var count int64
	db.Model(&entity.Workflow{}).Where("work_id = ?", work.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected no workflows, got %d", count)
	}
}

func TestActivateCompletedWorkRejected(t *testing.T) {
	svc, db := newTestWorkflowService(t)
	work := testutil.SeedWork(t, db, "Done Work", entity.WorkStatusCompleted)

	drafts := []DraftStep{{Title: "Late step", Duration: 2}}
	if _, err := svc.Activate(context.Background(), work.ID, drafts); err == nil {
		t.Fatal("expected error when activating workflow for completed work")
	}
}

// TestAddStepOrderGuard verifies that appended steps must continue the
// existing zero-based sequence
func TestAddStepOrderGuard(t *testing.T) {
	svc, db := newTestWorkflowService(t)
	ctx := context.Background()

	work := testutil.SeedWork(t, db, "Append Target", entity.WorkStatusInProgress)
	workflow := testutil.SeedWorkflow(t, db, work.ID, "Workflow for: Append Target", entity.WorkflowStatusActive)
	testutil.SeedStep(t, db, workflow.ID, 0, entity.StepStatusPending)

	// Gap in sequence is rejected
	if _, err := svc.AddStep(ctx, workflow.ID, &AddStepRequest{Title: "Gap", Duration: 2, Order: 2}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for non-contiguous order, got %v", err)
	}

	// Tail append succeeds
	step, err := svc.AddStep(ctx, workflow.ID, &AddStepRequest{Title: "Tail", Duration: 2, Order: 1})
	if err != nil {
		t.Fatalf("tail append failed: %v", err)
	}
	if step.StepOrder != 1 {
		t.Errorf("expected order 1, got %d", step.StepOrder)
	}
	if step.Status != entity.StepStatusPending {
		t.Errorf("expected pending, got %s", step.Status)
	}
}

// TestUpdateStepCompletedAt verifies the completed_at lifecycle: set once on
// entering completed, untouched on a repeat save, cleared on leaving
func TestUpdateStepCompletedAt(t *testing.T) {
	svc, db := newTestWorkflowService(t)
	ctx := context.Background()

	work := testutil.SeedWork(t, db, "Timestamp Work", entity.WorkStatusInProgress)
	workflow := testutil.SeedWorkflow(t, db, work.ID, "Workflow for: Timestamp Work", entity.WorkflowStatusActive)
	seeded := testutil.SeedStep(t, db, workflow.ID, 0, entity.StepStatusInProgress)

	// Enter completed: timestamp is set
	step, err := svc.UpdateStep(ctx, seeded.ID, &UpdateStepRequest{
		Status:           entity.StepStatusCompleted,
		CompletionPhotos: []string{"http://minio/workflow-photos/a.jpg"},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if step.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}
	firstCompletedAt := *step.CompletedAt

	// Saving again while completed leaves the timestamp alone
	step, err = svc.UpdateStep(ctx, seeded.ID, &UpdateStepRequest{
		Status:           entity.StepStatusCompleted,
		CompletionPhotos: []string{"http://minio/workflow-photos/a.jpg", "http://minio/workflow-photos/b.jpg"},
	})
	if err != nil {
		t.Fatalf("repeat save failed: %v", err)
	}
	if step.CompletedAt == nil || !step.CompletedAt.Equal(firstCompletedAt) {
		t.Errorf("completed_at changed on repeat save: %v vs %v", step.CompletedAt, firstCompletedAt)
	}
	if len(step.CompletionPhotos) != 2 {
		t.Errorf("expected 2 photos, got %d", len(step.CompletionPhotos))
	}

	// Leaving completed clears the timestamp
	step, err = svc.UpdateStep(ctx, seeded.ID, &UpdateStepRequest{Status: entity.StepStatusInProgress})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if step.CompletedAt != nil {
		t.Error("expected completed_at to be cleared after leaving completed")
	}
	if len(step.CompletionPhotos) != 0 {
		t.Errorf("expected photo list replaced wholesale, got %d entries", len(step.CompletionPhotos))
	}
}

func TestUpdateStepInvalidStatus(t *testing.T) {
	svc, db := newTestWorkflowService(t)
	work := testutil.SeedWork(t, db, "Bad Status", entity.WorkStatusInProgress)
	workflow := testutil.SeedWorkflow(t, db, work.ID, "Workflow for: Bad Status", entity.WorkflowStatusActive)
	seeded := testutil.SeedStep(t, db, workflow.ID, 0, entity.StepStatusPending)

	if _, err := svc.UpdateStep(context.Background(), seeded.ID, &UpdateStepRequest{Status: "blocked"}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unknown step status, got %v", err)
	}
}

// TestWorkflowCompletionSyncsWork verifies that completing a workflow
// completes the owning work through the foreign key, and that an already
// completed work is left untouched
func TestWorkflowCompletionSyncsWork(t *testing.T) {
	svc, db := newTestWorkflowService(t)
	ctx := context.Background()

	work := testutil.SeedWork(t, db, "Sync Target", entity.WorkStatusInProgress)
	workflow := testutil.SeedWorkflow(t, db, work.ID, "Workflow for: Sync Target", entity.WorkflowStatusActive)
	testutil.SeedStep(t, db, workflow.ID, 0, entity.StepStatusCompleted)

	updated, err := svc.ChangeStatus(ctx, workflow.ID, entity.WorkflowStatusCompleted)
	if err != nil {
		t.Fatalf("change status failed: %v", err)
	}
	if updated.Status != entity.WorkflowStatusCompleted {
		t.Errorf("expected completed workflow, got %s", updated.Status)
	}

	var reloaded entity.Work
	db.Where("id = ?", work.ID).First(&reloaded)
	if reloaded.Status != entity.WorkStatusCompleted {
		t.Errorf("expected owning work completed, got %s", reloaded.Status)
	}
}

func TestChangeStatusEmptyWorkflowCannotActivate(t *testing.T) {
	svc, db := newTestWorkflowService(t)
	work := testutil.SeedWork(t, db, "No Steps", entity.WorkStatusPending)
	workflow := testutil.SeedWorkflow(t, db, work.ID, "Workflow for: No Steps", entity.WorkflowStatusDraft)

	if _, err := svc.ChangeStatus(context.Background(), workflow.ID, entity.WorkflowStatusActive); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid activating a workflow with no steps, got %v", err)
	}
}
