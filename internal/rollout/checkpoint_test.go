package rollout

import (
	"errors"
	"testing"
	"time"

	"github.com/ativarub/rollout/internal/models"
	"gorm.io/gorm"
)

func TestDerivePlanStatus(t *testing.T) {
	tests := []struct {
		name string
		in   []models.Status
		want models.Status
	}{
		{"no checkpoints", nil, models.StatusPending},
		{"all pending", []models.Status{models.StatusPending, models.StatusPending}, models.StatusPending},
		{"one completed", []models.Status{models.StatusPending, models.StatusCompleted}, models.StatusCompleted},
		{"all completed", []models.Status{models.StatusCompleted}, models.StatusCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DerivePlanStatus(tt.in); got != tt.want {
				t.Errorf("DerivePlanStatus = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPlanStatus_OneCompletedCheckpoint(t *testing.T) {
	gdb := openTestDB(t)
	f := newFixture(t, gdb)

	res := f.checkpoint(t, gdb, "visit", f.storeA.ID, models.StatusPending)
	if len(res.Changes) != 0 {
		t.Errorf("pending checkpoint should not change plan: %+v", res.Changes)
	}
	if got := planStatus(t, gdb, f.plan.ID); got != models.StatusPending {
		t.Fatalf("plan status = %s, want Pending", got)
	}

	res = f.checkpoint(t, gdb, "visit", f.storeB.ID, models.StatusCompleted)
	if len(res.Changes) != 1 {
		t.Fatalf("changes = %+v, want one", res.Changes)
	}
	c := res.Changes[0]
	if c.PlanID != f.plan.ID || c.From != models.StatusPending || c.To != models.StatusCompleted || c.Title != "Rollout Q1" {
		t.Errorf("change = %+v", c)
	}
	if got := planStatus(t, gdb, f.plan.ID); got != models.StatusCompleted {
		t.Errorf("plan status = %s, want Completed", got)
	}
}

func TestPlanStatus_UpdateAndDelete(t *testing.T) {
	gdb := openTestDB(t)
	f := newFixture(t, gdb)
	res := f.checkpoint(t, gdb, "visit", f.storeA.ID, models.StatusCompleted)
	id := res.Checkpoint.ID

	up, err := UpdateCheckpoint(gdb, id, CheckpointUpdate{Status: ptr("Pending")})
	if err != nil {
		t.Fatalf("UpdateCheckpoint: %v", err)
	}
	if len(up.Changes) != 1 || up.Changes[0].To != models.StatusPending {
		t.Errorf("changes = %+v", up.Changes)
	}
	if got := planStatus(t, gdb, f.plan.ID); got != models.StatusPending {
		t.Fatalf("plan status = %s, want Pending", got)
	}

	if _, err := UpdateCheckpoint(gdb, id, CheckpointUpdate{Status: ptr("completed")}); err != nil {
		t.Fatal(err)
	}
	changes, err := DeleteCheckpoint(gdb, id)
	if err != nil {
		t.Fatalf("DeleteCheckpoint: %v", err)
	}
	if len(changes) != 1 || changes[0].To != models.StatusPending {
		t.Errorf("delete changes = %+v", changes)
	}
	if got := planStatus(t, gdb, f.plan.ID); got != models.StatusPending {
		t.Errorf("plan status = %s, want Pending", got)
	}
	_, err = DeleteCheckpoint(gdb, id)
	assertKind(t, err, ErrNotFound)
}

func TestPlanStatus_MoveBetweenPlans(t *testing.T) {
	gdb := openTestDB(t)
	f := newFixture(t, gdb)
	second, err := CreatePlan(gdb, PlanCreate{
		Title: "Rollout Q2", StartDate: day(2024, 4, 1),
		WorkGroupID: f.group.ID, ActivityID: f.activity.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	res := f.checkpoint(t, gdb, "visit", f.storeA.ID, models.StatusCompleted)

	up, err := UpdateCheckpoint(gdb, res.Checkpoint.ID, CheckpointUpdate{PlanID: &second.ID})
	if err != nil {
		t.Fatalf("UpdateCheckpoint: %v", err)
	}
	if len(up.Changes) != 2 {
		t.Errorf("changes = %+v, want old and new plan", up.Changes)
	}
	if got := planStatus(t, gdb, f.plan.ID); got != models.StatusPending {
		t.Errorf("old plan = %s, want Pending", got)
	}
	if got := planStatus(t, gdb, second.ID); got != models.StatusCompleted {
		t.Errorf("new plan = %s, want Completed", got)
	}

	// Detaching from the plan resets it.
	if _, err := UpdateCheckpoint(gdb, res.Checkpoint.ID, CheckpointUpdate{ClearPlan: true}); err != nil {
		t.Fatal(err)
	}
	if got := planStatus(t, gdb, second.ID); got != models.StatusPending {
		t.Errorf("detached plan = %s, want Pending", got)
	}
}

func TestCreateCheckpoint_InheritsActivityFromPlan(t *testing.T) {
	gdb := openTestDB(t)
	f := newFixture(t, gdb)

	res := f.checkpoint(t, gdb, "visit", f.storeA.ID, models.StatusPending)
	cp := res.Checkpoint
	if cp.ActivityID != f.activity.ID {
		t.Errorf("ActivityID = %d, want %d", cp.ActivityID, f.activity.ID)
	}
	if cp.Activity == nil || cp.Store == nil || cp.Plan == nil {
		t.Errorf("refs not loaded: %+v", cp)
	}
	if cp.Elapsed() != nil {
		t.Error("open checkpoint should have nil elapsed")
	}
}

func TestCreateCheckpoint_Validation(t *testing.T) {
	gdb := openTestDB(t)
	f := newFixture(t, gdb)
	other, _ := CreateActivity(gdb, ActivityCreate{Title: "Signage"})
	start := day(2024, 1, 2)

	tests := []struct {
		name string
		in   CheckpointCreate
		kind error
	}{
		{"missing name", CheckpointCreate{StoreID: f.storeA.ID, ActivityID: f.activity.ID, StartedAt: start}, ErrValidation},
		{"missing store", CheckpointCreate{Name: "v", ActivityID: f.activity.ID, StartedAt: start}, ErrValidation},
		{"missing start", CheckpointCreate{Name: "v", StoreID: f.storeA.ID, ActivityID: f.activity.ID}, ErrValidation},
		{"missing activity", CheckpointCreate{Name: "v", StoreID: f.storeA.ID, StartedAt: start}, ErrValidation},
		{"bad status", CheckpointCreate{Name: "v", StoreID: f.storeA.ID, ActivityID: f.activity.ID, StartedAt: start, Status: "WIP"}, ErrValidation},
		{"end before start", CheckpointCreate{Name: "v", StoreID: f.storeA.ID, ActivityID: f.activity.ID, StartedAt: start, EndedAt: ptr(start.Add(-time.Hour))}, ErrValidation},
		{"activity mismatch", CheckpointCreate{Name: "v", StoreID: f.storeA.ID, ActivityID: other.ID, PlanID: &f.plan.ID, StartedAt: start}, ErrValidation},
		{"unknown store", CheckpointCreate{Name: "v", StoreID: 999, ActivityID: f.activity.ID, StartedAt: start}, ErrNotFound},
		{"unknown plan", CheckpointCreate{Name: "v", StoreID: f.storeA.ID, PlanID: ptr(uint(999)), StartedAt: start}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateCheckpoint(gdb, tt.in)
			assertKind(t, err, tt.kind)
		})
	}
	if n := count(t, gdb, &models.Checkpoint{}); n != 0 {
		t.Errorf("checkpoints = %d, want 0", n)
	}
}

func TestCreateCheckpoint_UniqueKey(t *testing.T) {
	gdb := openTestDB(t)
	f := newFixture(t, gdb)
	f.checkpoint(t, gdb, "visit", f.storeA.ID, models.StatusPending)

	_, err := CreateCheckpoint(gdb, CheckpointCreate{
		Name: "visit", StoreID: f.storeA.ID, ActivityID: f.activity.ID, StartedAt: day(2024, 1, 3),
	})
	assertKind(t, err, ErrConflict)

	// Same name at another store is fine.
	f.checkpoint(t, gdb, "visit", f.storeB.ID, models.StatusPending)
}

func TestCreateCheckpoints_Batch(t *testing.T) {
	gdb := openTestDB(t)
	f := newFixture(t, gdb)
	end := day(2024, 1, 2).Add(3 * time.Hour)

	res, err := CreateCheckpoints(gdb, CheckpointCreate{
		Name:      "fixture installed",
		PlanID:    &f.plan.ID,
		Status:    "Completed",
		StartedAt: day(2024, 1, 2),
		EndedAt:   &end,
		Note:      "  ",
	}, []uint{f.storeA.ID, f.storeB.ID, f.storeA.ID})
	if err != nil {
		t.Fatalf("CreateCheckpoints: %v", err)
	}
	if len(res.Checkpoints) != 2 {
		t.Fatalf("created %d checkpoints, want 2", len(res.Checkpoints))
	}
	if res.Checkpoints[0].Note != nil {
		t.Error("blank note should be stored as NULL")
	}
	if d := res.Checkpoints[0].Elapsed(); d == nil || *d != 3*time.Hour {
		t.Errorf("Elapsed = %v, want 3h", d)
	}
	if len(res.Changes) != 1 {
		t.Errorf("changes = %+v, want plan completed once", res.Changes)
	}

	_, err = CreateCheckpoints(gdb, CheckpointCreate{Name: "x", PlanID: &f.plan.ID, StartedAt: day(2024, 1, 2)}, nil)
	assertKind(t, err, ErrValidation)
}

func TestCreateCheckpoints_RollsBackOnFailure(t *testing.T) {
	gdb := openTestDB(t)
	f := newFixture(t, gdb)

	_, err := CreateCheckpoints(gdb, CheckpointCreate{
		Name: "visit", PlanID: &f.plan.ID, Status: "Completed", StartedAt: day(2024, 1, 2),
	}, []uint{f.storeA.ID, 999})
	assertKind(t, err, ErrNotFound)

	if n := count(t, gdb, &models.Checkpoint{}); n != 0 {
		t.Errorf("checkpoints = %d, want 0 after rollback", n)
	}
	if got := planStatus(t, gdb, f.plan.ID); got != models.StatusPending {
		t.Errorf("plan status = %s, want Pending after rollback", got)
	}
}

// failPlanWrites makes every UPDATE on the plans table fail.
func failPlanWrites(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	err := gdb.Callback().Update().Before("gorm:update").Register("test:fail_plan_writes", func(tx *gorm.DB) {
		if tx.Statement.Table == "plans" {
			tx.AddError(errors.New("boom"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}

func assertPersistence(t *testing.T, err error) {
	t.Helper()
	assertKind(t, err, ErrPersistence)
	if msg := Message(err); msg != "internal error" {
		t.Errorf("Message = %q, want internal error", msg)
	}
}

func TestCreateCheckpoint_PlanWriteFailureRollsBack(t *testing.T) {
	gdb := openTestDB(t)
	f := newFixture(t, gdb)
	failPlanWrites(t, gdb)

	_, err := CreateCheckpoint(gdb, CheckpointCreate{
		Name: "visit", StoreID: f.storeA.ID, PlanID: &f.plan.ID, Status: "Completed", StartedAt: day(2024, 1, 2),
	})
	assertPersistence(t, err)

	if n := count(t, gdb, &models.Checkpoint{}); n != 0 {
		t.Errorf("checkpoints = %d, want 0 after rollback", n)
	}
	if got := planStatus(t, gdb, f.plan.ID); got != models.StatusPending {
		t.Errorf("plan status = %s, want Pending", got)
	}
}

func TestCreateCheckpoints_PlanWriteFailureRollsBack(t *testing.T) {
	gdb := openTestDB(t)
	f := newFixture(t, gdb)
	failPlanWrites(t, gdb)

	_, err := CreateCheckpoints(gdb, CheckpointCreate{
		Name: "visit", PlanID: &f.plan.ID, Status: "Completed", StartedAt: day(2024, 1, 2),
	}, []uint{f.storeA.ID, f.storeB.ID})
	assertPersistence(t, err)

	if n := count(t, gdb, &models.Checkpoint{}); n != 0 {
		t.Errorf("checkpoints = %d, want 0 after rollback", n)
	}
}

func TestUpdateCheckpoint_PlanWriteFailureRollsBack(t *testing.T) {
	gdb := openTestDB(t)
	f := newFixture(t, gdb)
	res := f.checkpoint(t, gdb, "visit", f.storeA.ID, models.StatusCompleted)
	failPlanWrites(t, gdb)

	_, err := UpdateCheckpoint(gdb, res.Checkpoint.ID, CheckpointUpdate{Status: ptr("Pending"), Note: ptr("reopened")})
	assertPersistence(t, err)

	cp, err := GetCheckpoint(gdb, res.Checkpoint.ID)
	if err != nil {
		t.Fatal(err)
	}
	if cp.Status != models.StatusCompleted {
		t.Errorf("checkpoint status = %s, want Completed", cp.Status)
	}
	if got := planStatus(t, gdb, f.plan.ID); got != models.StatusCompleted {
		t.Errorf("plan status = %s, want Completed", got)
	}
}

func TestDeleteCheckpoint_PlanWriteFailureRollsBack(t *testing.T) {
	gdb := openTestDB(t)
	f := newFixture(t, gdb)
	res := f.checkpoint(t, gdb, "visit", f.storeA.ID, models.StatusCompleted)
	failPlanWrites(t, gdb)

	_, err := DeleteCheckpoint(gdb, res.Checkpoint.ID)
	assertPersistence(t, err)

	if n := count(t, gdb, &models.Checkpoint{}); n != 1 {
		t.Errorf("checkpoints = %d, want 1 after rollback", n)
	}
	if got := planStatus(t, gdb, f.plan.ID); got != models.StatusCompleted {
		t.Errorf("plan status = %s, want Completed", got)
	}
}

func TestUpdateCheckpoint_RequiredFields(t *testing.T) {
	gdb := openTestDB(t)
	f := newFixture(t, gdb)
	id := f.checkpoint(t, gdb, "visit", f.storeA.ID, models.StatusPending).Checkpoint.ID

	var zero uint
	for name, in := range map[string]CheckpointUpdate{
		"store":      {StoreID: &zero},
		"activity":   {ActivityID: &zero},
		"started_at": {StartedAt: &time.Time{}},
	} {
		_, err := UpdateCheckpoint(gdb, id, in)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%s: err = %v, want validation", name, err)
		}
	}
}

func TestUpdateCheckpoint_Fields(t *testing.T) {
	gdb := openTestDB(t)
	f := newFixture(t, gdb)
	res := f.checkpoint(t, gdb, "visit", f.storeA.ID, models.StatusPending)
	id := res.Checkpoint.ID
	end := day(2024, 1, 2).Add(90 * time.Minute)

	up, err := UpdateCheckpoint(gdb, id, CheckpointUpdate{EndedAt: &end, Note: ptr("done early")})
	if err != nil {
		t.Fatal(err)
	}
	cp := up.Checkpoint
	if cp.Name != "visit" || cp.StoreID != f.storeA.ID {
		t.Errorf("unsupplied fields changed: %+v", cp)
	}
	if d := cp.Elapsed(); d == nil || *d != 90*time.Minute {
		t.Errorf("Elapsed = %v", d)
	}
	if cp.Note == nil || *cp.Note != "done early" {
		t.Errorf("Note = %v", cp.Note)
	}

	up, err = UpdateCheckpoint(gdb, id, CheckpointUpdate{ClearEndedAt: true, Note: ptr("")})
	if err != nil {
		t.Fatal(err)
	}
	if up.Checkpoint.EndedAt != nil || up.Checkpoint.Note != nil {
		t.Errorf("clear failed: %+v", up.Checkpoint)
	}

	_, err = UpdateCheckpoint(gdb, id, CheckpointUpdate{StartedAt: ptr(day(2024, 2, 1)), EndedAt: ptr(day(2024, 1, 1))})
	assertKind(t, err, ErrValidation)

	// Moving onto an existing key conflicts.
	f.checkpoint(t, gdb, "audit", f.storeA.ID, models.StatusPending)
	_, err = UpdateCheckpoint(gdb, id, CheckpointUpdate{Name: ptr("audit")})
	assertKind(t, err, ErrConflict)

	_, err = UpdateCheckpoint(gdb, 999, CheckpointUpdate{Name: ptr("x")})
	assertKind(t, err, ErrNotFound)
}

func TestListCheckpoints_Filters(t *testing.T) {
	gdb := openTestDB(t)
	f := newFixture(t, gdb)
	f.checkpoint(t, gdb, "visit", f.storeA.ID, models.StatusPending)
	f.checkpoint(t, gdb, "visit", f.storeB.ID, models.StatusCompleted)

	tests := []struct {
		name   string
		filter CheckpointFilters
		want   int
	}{
		{"all", CheckpointFilters{}, 2},
		{"by store", CheckpointFilters{StoreID: f.storeA.ID}, 1},
		{"by plan", CheckpointFilters{PlanID: f.plan.ID}, 2},
		{"by status", CheckpointFilters{Status: models.StatusCompleted}, 1},
		{"by activity", CheckpointFilters{ActivityID: f.activity.ID}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ListCheckpoints(gdb, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestReconcilePlans(t *testing.T) {
	gdb := openTestDB(t)
	f := newFixture(t, gdb)
	f.checkpoint(t, gdb, "visit", f.storeA.ID, models.StatusCompleted)

	// Simulate drift written outside the package.
	gdb.Model(&models.Plan{}).Where("id = ?", f.plan.ID).Update("status", models.StatusPending)
	empty, _ := CreatePlan(gdb, PlanCreate{Title: "Empty", StartDate: day(2024, 6, 1), WorkGroupID: f.group.ID, ActivityID: f.activity.ID})
	gdb.Model(&models.Plan{}).Where("id = ?", empty.ID).Update("status", models.StatusCompleted)

	changes, err := ReconcilePlans(gdb)
	if err != nil {
		t.Fatalf("ReconcilePlans: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("changes = %+v, want 2", changes)
	}
	if got := planStatus(t, gdb, f.plan.ID); got != models.StatusCompleted {
		t.Errorf("plan = %s, want Completed", got)
	}
	if got := planStatus(t, gdb, empty.ID); got != models.StatusPending {
		t.Errorf("empty plan = %s, want Pending", got)
	}

	again, _ := ReconcilePlans(gdb)
	if len(again) != 0 {
		t.Errorf("second reconcile changed %d plans", len(again))
	}
}
