package ledger

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestAddThenRemoveRestoresPriorContent(t *testing.T) {
	l := newTestLedger(t)
	for _, species := range []string{"Teak", "Sal", "Teak"} {
		if _, err := l.Add(MeasurementEntry{Species: species, Length: 3, Circumference: 1.2, Volume: 0.45}); err != nil {
			t.Fatalf("seed add error: %v", err)
		}
	}
	before := l.List()

	added, err := l.Add(MeasurementEntry{Species: "Pine", Length: 4, Circumference: 1.5, Volume: 0.7})
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	if len(l.List()) != len(before)+1 {
		t.Fatalf("add should append one entry")
	}
	if err := l.Remove(added.ID()); err != nil {
		t.Fatalf("remove error: %v", err)
	}
	if after := l.List(); !reflect.DeepEqual(before, after) {
		t.Fatalf("ledger not restored:\nbefore=%v\nafter=%v", before, after)
	}
}

func TestRemoveKeepsOrderAndIsIdempotent(t *testing.T) {
	l := newTestLedger(t)
	var ids []string
	for _, species := range []string{"A", "B", "C"} {
		e, err := l.Add(MeasurementEntry{Species: species})
		if err != nil {
			t.Fatalf("add error: %v", err)
		}
		ids = append(ids, e.ID())
	}
	if err := l.Remove(ids[1]); err != nil {
		t.Fatalf("remove error: %v", err)
	}
	if err := l.Remove(ids[1]); err != nil {
		t.Fatalf("second remove should be a no-op: %v", err)
	}
	if err := l.Remove("no-such-id"); err != nil {
		t.Fatalf("unknown id should be a no-op: %v", err)
	}
	got := l.List()
	if len(got) != 2 || got[0].Species != "A" || got[1].Species != "C" {
		t.Fatalf("unexpected survivors: %v", got)
	}
}

func TestClearThenListIsEmpty(t *testing.T) {
	l := newTestLedger(t)
	if _, err := l.Add(MeasurementEntry{Species: "Teak"}); err != nil {
		t.Fatalf("add error: %v", err)
	}
	if err := l.Clear(); err != nil {
		t.Fatalf("clear error: %v", err)
	}
	if got := l.List(); len(got) != 0 || got == nil {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}
}

func TestAddAssignsUniqueMillisecondIDs(t *testing.T) {
	l := newTestLedger(t)
	fixed := time.Date(2026, 3, 1, 8, 30, 0, 123456789, time.UTC)
	l.now = func() time.Time { return fixed }

	first, err := l.Add(MeasurementEntry{Species: "Teak"})
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	second, err := l.Add(MeasurementEntry{Species: "Teak"})
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	if first.ID() != "2026-03-01T08:30:00.123Z" {
		t.Fatalf("unexpected id format: %s", first.ID())
	}
	if second.ID() != "2026-03-01T08:30:00.124Z" {
		t.Fatalf("colliding id should be bumped by 1ms, got %s", second.ID())
	}
}

func TestAddRejectsDuplicateSuppliedID(t *testing.T) {
	l := newTestLedger(t)
	entry := MeasurementEntry{Species: "Teak", CreatedAt: "2026-01-01T00:00:00.000Z"}
	if _, err := l.Add(entry); err != nil {
		t.Fatalf("add error: %v", err)
	}
	if _, err := l.Add(entry); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if len(l.List()) != 1 {
		t.Fatalf("rejected add must not change the ledger")
	}
}

func TestAddDefaultsSpecies(t *testing.T) {
	l := newTestLedger(t)
	e, err := l.Add(MeasurementEntry{Species: "   "})
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	if e.Species != DefaultSpecies {
		t.Fatalf("expected %s, got %q", DefaultSpecies, e.Species)
	}
}

func TestCorruptBlobDegradesToEmpty(t *testing.T) {
	l := newTestLedger(t)
	err := l.store.Update(EntriesKey, func([]byte) ([]byte, error) {
		return []byte("{not json"), nil
	})
	if err != nil {
		t.Fatalf("seed corrupt blob: %v", err)
	}
	if got := l.List(); len(got) != 0 {
		t.Fatalf("corrupt ledger should read as empty, got %v", got)
	}
	if _, err := l.Add(MeasurementEntry{Species: "Teak"}); err != nil {
		t.Fatalf("add over corrupt blob should succeed: %v", err)
	}
	if got := l.List(); len(got) != 1 {
		t.Fatalf("expected 1 entry after add, got %d", len(got))
	}
}

func TestTrucks(t *testing.T) {
	l := newTestLedger(t)
	if _, err := l.AddTruck("  "); !errors.Is(err, ErrEmptyTruck) {
		t.Fatalf("expected ErrEmptyTruck, got %v", err)
	}
	for _, name := range []string{"KA-01", " KA-02 ", "KA-01"} {
		if _, err := l.AddTruck(name); err != nil {
			t.Fatalf("add truck error: %v", err)
		}
	}
	if got := l.Trucks(); !reflect.DeepEqual(got, []string{"KA-01", "KA-02"}) {
		t.Fatalf("unexpected trucks: %v", got)
	}
	if _, err := l.RemoveTruck("KA-01"); err != nil {
		t.Fatalf("remove truck error: %v", err)
	}
	if _, err := l.RemoveTruck("KA-09"); err != nil {
		t.Fatalf("removing an unknown truck should be a no-op: %v", err)
	}
	if got := l.Trucks(); !reflect.DeepEqual(got, []string{"KA-02"}) {
		t.Fatalf("unexpected trucks after remove: %v", got)
	}
}

func TestSecondOpenReportsLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := OpenBoltStore(path, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("open error: %v", err)
	}
	defer store.Close()

	if _, err := OpenBoltStore(path, 50*time.Millisecond); !errors.Is(err, ErrLedgerLocked) {
		t.Fatalf("expected ErrLedgerLocked, got %v", err)
	}
}

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "ledger.db"), time.Second)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return New(store, nil)
}
