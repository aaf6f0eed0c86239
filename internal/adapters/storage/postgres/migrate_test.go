package postgres

import (
	"strings"
	"testing"
)

func TestLoadMigrations_EmbeddedAndOrdered(t *testing.T) {
	migs, err := LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	if len(migs) == 0 {
		t.Fatalf("expected at least one embedded migration")
	}
	for i := 1; i < len(migs); i++ {
		if migs[i-1].Version >= migs[i].Version {
			t.Fatalf("migrations not strictly ordered: %d then %d", migs[i-1].Version, migs[i].Version)
		}
	}

	init := migs[0]
	for _, table := range []string{"users", "owners", "vets", "pets", "appointments", "appointment_events"} {
		if !strings.Contains(init.SQL, "CREATE TABLE IF NOT EXISTS "+table+" ") {
			t.Fatalf("expected table %s in %s", table, init.Name)
		}
	}
}

func TestValidID(t *testing.T) {
	if validID("not-a-uuid") {
		t.Fatalf("expected invalid id")
	}
	if !validID("3f2504e0-4f89-11d3-9a0c-0305e82c3301") {
		t.Fatalf("expected valid id")
	}
}
