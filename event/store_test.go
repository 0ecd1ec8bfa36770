package event

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInsertFillsDefaults(t *testing.T) {
	store := testStore(t)
	e := &Event{AppID: 1, EntityType: "user", EntityID: "u1",
		Properties: map[string]interface{}{"attr0": 1.0}}
	if err := store.Insert(e); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if e.ID == "" {
		t.Fatal("expected a generated event ID")
	}
	if e.Event != SetEvent {
		t.Fatalf("expected default event %q, got %q", SetEvent, e.Event)
	}

	n, err := store.Count(1)
	if err != nil || n != 1 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}

func TestInsertRequiresEntity(t *testing.T) {
	store := testStore(t)
	if err := store.Insert(&Event{AppID: 1}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestAggregatePropertiesReplaysInOrder(t *testing.T) {
	store := testStore(t)
	base := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	insert := func(entityID string, at time.Time, props map[string]interface{}) {
		t.Helper()
		err := store.Insert(&Event{
			AppID: 2, EntityType: "user", EntityID: entityID,
			Properties: props, EventTime: at,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	insert("u1", base, map[string]interface{}{"attr0": 1.0, "label": 0.0})
	insert("u1", base.Add(time.Hour), map[string]interface{}{"attr0": 5.0})
	insert("u2", base, map[string]interface{}{"attr0": 2.0})

	entities, err := store.AggregateProperties(2, "user")
	if err != nil {
		t.Fatalf("AggregateProperties: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(entities))
	}
	if got := entities["u1"]["attr0"]; got != 5.0 {
		t.Fatalf("later $set must win, got attr0=%v", got)
	}
	if got := entities["u1"]["label"]; got != 0.0 {
		t.Fatalf("earlier properties must survive, got label=%v", got)
	}
}

func TestAggregateScopedToAppAndType(t *testing.T) {
	store := testStore(t)
	store.Insert(&Event{AppID: 1, EntityType: "user", EntityID: "u1",
		Properties: map[string]interface{}{"attr0": 1.0}})
	store.Insert(&Event{AppID: 9, EntityType: "user", EntityID: "other",
		Properties: map[string]interface{}{"attr0": 1.0}})
	store.Insert(&Event{AppID: 1, EntityType: "item", EntityID: "i1",
		Properties: map[string]interface{}{"attr0": 1.0}})

	entities, err := store.AggregateProperties(1, "user")
	if err != nil {
		t.Fatal(err)
	}
	if len(entities) != 1 {
		t.Fatalf("expected only app 1 users, got %v", entities)
	}
}

func TestImportReader(t *testing.T) {
	store := testStore(t)
	input := strings.Join([]string{
		`{"event":"$set","entityType":"user","entityId":"u1","properties":{"attr0":1,"attr1":0,"attr2":0,"label":0}}`,
		``,
		`{"event":"$set","entityType":"user","entityId":"u2","properties":{"attr0":0,"attr1":1,"attr2":0,"label":1}}`,
	}, "\n")

	n, err := ImportReader(store, strings.NewReader(input), ImportOptions{AppID: 4})
	if err != nil {
		t.Fatalf("ImportReader: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d events, want 2", n)
	}

	count, _ := store.Count(4)
	if count != 2 {
		t.Fatalf("store holds %d events, want 2", count)
	}
}

func TestImportReaderMalformedLine(t *testing.T) {
	store := testStore(t)
	input := `{"event":"$set","entityType":"user","entityId":"u1","properties":{}}` + "\n" + `{not json}`

	n, err := ImportReader(store, strings.NewReader(input), ImportOptions{AppID: 4})
	if err == nil {
		t.Fatal("expected error on malformed line")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("error should name the line: %v", err)
	}
	if n != 1 {
		t.Fatalf("imported %d before failing, want 1", n)
	}
}
