package fabric

import (
	"encoding/json"
	"testing"

	"equion/internal/models"
)

func TestSubsetEventShape(t *testing.T) {
	raw := SubsetEvent("set_1", models.Subset{ID: "sbs_1", Name: "General"}, false)

	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if got["event"] != "v1/subset" {
		t.Fatalf("event = %v, want v1/subset", got["event"])
	}
	if got["set"] != "set_1" {
		t.Fatalf("set = %v, want set_1", got["set"])
	}
	if got["deleted"] != false {
		t.Fatalf("deleted = %v, want false", got["deleted"])
	}
	subset, ok := got["subset"].(map[string]any)
	if !ok || subset["id"] != "sbs_1" || subset["name"] != "General" {
		t.Fatalf("subset = %v, want {id:sbs_1, name:General}", got["subset"])
	}
}

func TestTypingEventCarriesSubsetAndUIDNotSet(t *testing.T) {
	raw := TypingEvent("sbs_1", "usr_1")

	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if got["event"] != "v1/typing" {
		t.Fatalf("event = %v, want v1/typing", got["event"])
	}
	if got["subset"] != "sbs_1" {
		t.Fatalf("subset = %v, want sbs_1", got["subset"])
	}
	if got["uid"] != "usr_1" {
		t.Fatalf("uid = %v, want usr_1", got["uid"])
	}
	if _, present := got["set"]; present {
		t.Fatalf("expected no set field on a typing event, got %v", got["set"])
	}
}

func TestPongFrameHasNoBody(t *testing.T) {
	raw := PongFrame()

	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if got["event"] != "v1/pong" {
		t.Fatalf("event = %v, want v1/pong", got["event"])
	}
	if len(got) != 1 {
		t.Fatalf("expected only the event field, got %v", got)
	}
}
