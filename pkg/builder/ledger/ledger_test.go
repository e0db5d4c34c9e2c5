package ledger_test

import (
	"testing"

	"github.com/johnathanchiu/componentize/pkg/builder/events"
	"github.com/johnathanchiu/componentize/pkg/builder/ledger"
)

func TestRecordDeduplicates(t *testing.T) {
	l := ledger.New()

	if !l.Record("tu_1", "read", nil) {
		t.Fatal("first record should report true")
	}
	if l.Record("tu_1", "read", nil) {
		t.Fatal("duplicate record should report false")
	}
	if got := l.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(l *ledger.Ledger)
		id         string
		wantOK     bool
		wantStatus events.ToolStatus
		wantResult string
	}{
		{
			name:   "unknown id dropped",
			setup:  func(l *ledger.Ledger) {},
			id:     "tu_missing",
			wantOK: false,
		},
		{
			name: "pending resolves",
			setup: func(l *ledger.Ledger) {
				l.Record("tu_1", "read", nil)
			},
			id:         "tu_1",
			wantOK:     true,
			wantStatus: events.ToolSuccess,
			wantResult: "ok",
		},
		{
			name: "replayed result does not overwrite",
			setup: func(l *ledger.Ledger) {
				l.Record("tu_1", "read", nil)
				l.Resolve("tu_1", events.ToolError, "first")
			},
			id:         "tu_1",
			wantOK:     false,
			wantStatus: events.ToolError,
			wantResult: "first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := ledger.New()
			tt.setup(l)

			ok := l.Resolve(tt.id, events.ToolSuccess, "ok")
			if ok != tt.wantOK {
				t.Fatalf("Resolve() = %v, want %v", ok, tt.wantOK)
			}

			rec, found := l.Get(tt.id)
			if !found {
				if tt.wantStatus != "" {
					t.Fatalf("record %s missing", tt.id)
				}

				return
			}
			if rec.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", rec.Status, tt.wantStatus)
			}
			if rec.Result != tt.wantResult {
				t.Errorf("result = %q, want %q", rec.Result, tt.wantResult)
			}
		})
	}
}

func TestSnapshotOrder(t *testing.T) {
	l := ledger.New()
	l.Record("tu_b", "write", nil)
	l.Record("tu_a", "read", nil)
	l.Record("tu_b", "write", nil) // duplicate must not reorder

	snap := l.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot length = %d, want 2", len(snap))
	}
	if snap[0].ID != "tu_b" || snap[1].ID != "tu_a" {
		t.Fatalf("snapshot order = [%s %s], want [tu_b tu_a]", snap[0].ID, snap[1].ID)
	}
}

func TestReset(t *testing.T) {
	l := ledger.New()
	l.Record("tu_1", "read", nil)
	l.Reset()

	if l.Len() != 0 {
		t.Fatalf("Len() after reset = %d, want 0", l.Len())
	}
	if !l.Record("tu_1", "read", nil) {
		t.Fatal("id should be recordable again after reset")
	}
}
