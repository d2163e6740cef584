package db

import (
	"reflect"
	"testing"
)

func TestUpdateBuilder_SingleColumn(t *testing.T) {
	sql, args := NewUpdate("logins").Set("refresh_token", "tok").Where("id", "abc")

	want := "UPDATE logins SET refresh_token = $1 WHERE id = $2"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []interface{}{"tok", "abc"}) {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestUpdateBuilder_MixedAssignments(t *testing.T) {
	b := NewUpdate("studies").
		Set("study_status", "assigned").
		Set("assigned_to", "u1").
		SetRaw("updated_at", "NOW()")
	sql, args := b.Where("study_id", "s1")

	want := "UPDATE studies SET study_status = $1, assigned_to = $2, updated_at = NOW() WHERE study_id = $3"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
	if len(args) != 3 {
		t.Errorf("expected 3 args, got %d", len(args))
	}
	if args[2] != "s1" {
		t.Errorf("expected id as last arg, got %v", args[2])
	}
}

func TestUpdateBuilder_Empty(t *testing.T) {
	b := NewUpdate("devices")
	if !b.Empty() {
		t.Error("expected new builder to be empty")
	}
	b.SetRaw("updated_at", "NOW()")
	if b.Empty() {
		t.Error("expected builder with raw assignment to be non-empty")
	}
}

func TestUpdateBuilder_ValueNeverInterpolated(t *testing.T) {
	hostile := "'; DROP TABLE logins; --"
	sql, args := NewUpdate("logins").Set("username", hostile).Where("id", "x")

	if args[0] != hostile {
		t.Errorf("hostile value must be carried as an argument, got %v", args[0])
	}
	if sql != "UPDATE logins SET username = $1 WHERE id = $2" {
		t.Errorf("hostile value leaked into SQL text: %q", sql)
	}
}
