package testutil

import (
	"testing"
	"time"
)

func TestHooksRecorderKeepsWriteSignals(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveWrite("Geo.Country.CreateCountry", "success", 10*time.Millisecond)
	h.IncConflict("Geo.Continent.CreateContinent")
	h.IncRetry("Geo.City.UpdateCity")

	if len(h.Writes) != 1 || h.Writes[0].Op != "Geo.Country.CreateCountry" || h.Writes[0].Status != "success" {
		t.Fatalf("writes: %+v", h.Writes)
	}
	if len(h.Conflicts) != 1 || h.Conflicts[0] != "Geo.Continent.CreateContinent" {
		t.Fatalf("conflicts: %+v", h.Conflicts)
	}
	if len(h.Retries) != 1 || h.Retries[0] != "Geo.City.UpdateCity" {
		t.Fatalf("retries: %+v", h.Retries)
	}
}

func TestHooksRecorderFiltersByOp(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveWrite("Geo.City.CreateCity", "success", time.Millisecond)
	h.ObserveWrite("Geo.City.DeleteCity", "not_found", time.Millisecond)
	h.ObserveWrite("Geo.City.CreateCity", "retryable", time.Millisecond)
	h.ObserveRollup("Geo.City.UpdateCity", 2)
	h.ObserveRollup("Geo.City.CreateCity", 1)

	got := h.Statuses("Geo.City.CreateCity")
	if len(got) != 2 || got[0] != "success" || got[1] != "retryable" {
		t.Fatalf("statuses: want=[success retryable] got=%v", got)
	}
	if rolled := h.RolledUp("Geo.City.UpdateCity"); len(rolled) != 1 || rolled[0] != 2 {
		t.Fatalf("rollups: want=[2] got=%v", rolled)
	}
}
