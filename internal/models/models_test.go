package models

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

// assertFieldType checks that a struct field has the expected Go type.
func assertFieldType(t *testing.T, typ reflect.Type, fieldName, expectedType string) {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	got := f.Type.String()
	if got != expectedType {
		t.Errorf("%s.%s type = %q, want %q", typ.Name(), fieldName, got, expectedType)
	}
}

func TestDivision_Fields(t *testing.T) {
	typ := reflect.TypeOf(Division{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "Name", "not null")
	assertGormTag(t, typ, "Name", "uniqueIndex")
	assertGormTag(t, typ, "Stores", "foreignKey:DivisionID")
	assertGormTag(t, typ, "Stores", "OnDelete:RESTRICT")

	assertFieldType(t, typ, "Contact", "*string")
	assertFieldType(t, typ, "Stores", "[]models.Store")
}

func TestStore_Fields(t *testing.T) {
	typ := reflect.TypeOf(Store{})

	assertGormTag(t, typ, "Name", "not null")
	assertGormTag(t, typ, "SKUCount", "column:sku_count")
	assertGormTag(t, typ, "DivisionID", "not null")
	assertGormTag(t, typ, "Checkpoints", "OnDelete:CASCADE")

	assertFieldType(t, typ, "DivisionID", "uint")
	assertFieldType(t, typ, "WorkGroupID", "*uint")
	assertFieldType(t, typ, "Division", "*models.Division")
	assertFieldType(t, typ, "WorkGroup", "*models.WorkGroup")
}

func TestWorkGroup_Relations(t *testing.T) {
	typ := reflect.TypeOf(WorkGroup{})

	assertGormTag(t, typ, "Responsible", "foreignKey:ResponsibleID")
	assertGormTag(t, typ, "Stores", "OnDelete:SET NULL")
	assertGormTag(t, typ, "Plans", "OnDelete:CASCADE")

	assertFieldType(t, typ, "ResponsibleID", "*uint")
	assertFieldType(t, typ, "Plans", "[]models.Plan")

	rtyp := reflect.TypeOf(Responsible{})
	assertGormTag(t, rtyp, "Name", "not null")
	assertGormTag(t, rtyp, "WorkGroups", "OnDelete:SET NULL")
}

func TestPlan_Fields(t *testing.T) {
	typ := reflect.TypeOf(Plan{})

	assertGormTag(t, typ, "Title", "not null")
	assertGormTag(t, typ, "StartDate", "not null")
	assertGormTag(t, typ, "Status", "default:Pending")
	assertGormTag(t, typ, "WorkGroupID", "not null")
	assertGormTag(t, typ, "ActivityID", "not null")
	assertGormTag(t, typ, "Checkpoints", "foreignKey:PlanID")
	assertGormTag(t, typ, "Checkpoints", "OnDelete:CASCADE")

	assertFieldType(t, typ, "StartDate", "time.Time")
	assertFieldType(t, typ, "EndDate", "*time.Time")
	assertFieldType(t, typ, "Status", "models.Status")
}

func TestCheckpoint_Fields(t *testing.T) {
	typ := reflect.TypeOf(Checkpoint{})

	// Composite uniqueness on (name, activity, store).
	for _, f := range []string{"Name", "ActivityID", "StoreID"} {
		assertGormTag(t, typ, f, "uniqueIndex:uq_checkpoint_name_activity_store")
	}
	assertGormTag(t, typ, "StartedAt", "not null")
	assertGormTag(t, typ, "Note", "type:text")

	assertFieldType(t, typ, "PlanID", "*uint")
	assertFieldType(t, typ, "StartedAt", "time.Time")
	assertFieldType(t, typ, "EndedAt", "*time.Time")
	assertFieldType(t, typ, "Status", "models.Status")
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"Pending", StatusPending, false},
		{"completed", StatusCompleted, false},
		{"  COMPLETED ", StatusCompleted, false},
		{"Pendente", StatusPending, false},
		{"Concluído", StatusCompleted, false},
		{"in_progress", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatus_Valid(t *testing.T) {
	if !StatusPending.Valid() || !StatusCompleted.Valid() {
		t.Error("enum members should be valid")
	}
	if Status("Done").Valid() {
		t.Error("Status(\"Done\") should not be valid")
	}
}

func TestCheckpoint_Elapsed(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	c := Checkpoint{StartedAt: start}
	if c.Elapsed() != nil {
		t.Error("open checkpoint should have nil elapsed time")
	}

	end := start.Add(90 * time.Minute)
	c.EndedAt = &end
	got := c.Elapsed()
	if got == nil || *got != 90*time.Minute {
		t.Errorf("Elapsed() = %v, want 1h30m", got)
	}
}

func TestPlan_PlannedDuration(t *testing.T) {
	p := Plan{StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	if p.PlannedDuration() != nil {
		t.Error("plan without end date should have nil duration")
	}
	end := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
	p.EndDate = &end
	if d := p.PlannedDuration(); d == nil || *d != 240*time.Hour {
		t.Errorf("PlannedDuration() = %v, want 240h", d)
	}
}
