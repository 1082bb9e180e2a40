package storage

import (
	"testing"
)

func TestRecordRoundTrip(t *testing.T) {
	group := testGroup()

	record := toRecord(group)
	if record.Code != group.Code || len(record.Participants) != 2 || len(record.Assignments) != 2 {
		t.Fatalf("unexpected record: %+v", record)
	}
	for i, p := range record.Participants {
		if p.Position != i {
			t.Errorf("participant %d has position %d", i, p.Position)
		}
		if p.GroupID != group.ID {
			t.Errorf("participant %d has group id %q", i, p.GroupID)
		}
	}
	for i, a := range record.Assignments {
		if a.Position != i {
			t.Errorf("assignment %d has position %d", i, a.Position)
		}
	}

	back := fromRecord(record)
	if back.ID != group.ID || back.Code != group.Code || back.Name != group.Name {
		t.Errorf("group fields lost in round trip: %+v", back)
	}
	if len(back.Participants) != len(group.Participants) {
		t.Fatalf("expected %d participants, got %d", len(group.Participants), len(back.Participants))
	}
	for i := range group.Participants {
		if back.Participants[i] != group.Participants[i] {
			t.Errorf("participant %d changed: %+v != %+v", i, back.Participants[i], group.Participants[i])
		}
	}
	for i := range group.Assignments {
		if back.Assignments[i] != group.Assignments[i] {
			t.Errorf("assignment %d changed: %+v != %+v", i, back.Assignments[i], group.Assignments[i])
		}
	}
}
