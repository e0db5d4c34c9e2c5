package effects_test

import (
	"testing"

	"github.com/johnathanchiu/componentize/pkg/builder/effects"
	"github.com/johnathanchiu/componentize/pkg/builder/events"
	"github.com/johnathanchiu/componentize/pkg/builder/internal/testutil"
)

func newDispatcher() (*effects.Dispatcher, *testutil.MemRegistry, *testutil.MemCanvas, *testutil.MemTasks) {
	reg := testutil.NewMemRegistry()
	canvas := testutil.NewMemCanvas()
	tasks := &testutil.MemTasks{}

	d := effects.NewDispatcher(effects.Dependencies{
		Registry: reg,
		Canvas:   canvas,
		Tasks:    tasks,
	})

	return d, reg, canvas, tasks
}

func componentResult(name string) events.Event {
	return events.Event{Type: events.TypeToolResult, Payload: events.ToolResult{
		ToolUseID: "tu_1",
		Status:    events.ResultSuccess,
		Component: &events.CanvasComponent{
			ComponentName: name,
			Code:          "const " + name + " = () => null;",
			Position:      events.Position{X: 10, Y: 20},
		},
	}}
}

func TestApplySameArtifactTwiceIsIdempotent(t *testing.T) {
	d, reg, canvas, _ := newDispatcher()

	evt := componentResult("PricingCard")
	d.Apply(evt)
	d.Apply(evt)

	if reg.Len() != 1 {
		t.Fatalf("registry entries = %d, want exactly 1", reg.Len())
	}
	if canvas.Len() != 1 {
		t.Fatalf("canvas entries = %d, want exactly 1", canvas.Len())
	}
}

func TestErrorResultFiresNoEffect(t *testing.T) {
	d, reg, canvas, _ := newDispatcher()

	d.Apply(events.Event{Type: events.TypeToolResult, Payload: events.ToolResult{
		ToolUseID: "tu_1",
		Status:    events.ResultError,
		Result:    "validation failed",
		Component: &events.CanvasComponent{ComponentName: "Broken", Code: "const Broken = 1"},
	}})

	if reg.Len() != 0 || canvas.Len() != 0 {
		t.Fatal("error result must not mutate external state")
	}
}

func TestLegacyCanvasUpdateMatchesEmbeddedPath(t *testing.T) {
	dEmbedded, regEmbedded, _, _ := newDispatcher()
	dLegacy, regLegacy, _, _ := newDispatcher()

	comp := events.CanvasComponent{
		ComponentName: "Button",
		Code:          "const Button = () => null;",
	}

	dEmbedded.Apply(events.Event{Type: events.TypeToolResult, Payload: events.ToolResult{
		ToolUseID: "tu_1", Status: events.ResultSuccess, Component: &comp,
	}})
	dLegacy.Apply(events.Event{Type: events.TypeCanvasUpdate, Payload: events.CanvasUpdate{Component: comp}})

	if regEmbedded.Code["Button"] != regLegacy.Code["Button"] {
		t.Fatal("legacy and embedded paths diverged")
	}
}

func TestTodoSnapshotsLastWriteWins(t *testing.T) {
	d, _, _, tasks := newDispatcher()

	d.Apply(events.Event{Type: events.TypeTodoUpdate, Payload: events.TodoUpdate{Todos: []events.TodoItem{
		{Content: "create Button", Status: events.TodoInProgress},
		{Content: "place Button", Status: events.TodoPending},
	}}})
	d.Apply(events.Event{Type: events.TypeTodoUpdate, Payload: events.TodoUpdate{Todos: []events.TodoItem{
		{Content: "create Button", Status: events.TodoCompleted},
	}}})

	if len(tasks.Snapshot) != 1 {
		t.Fatalf("snapshot = %d entries, want full replacement with 1", len(tasks.Snapshot))
	}
	if tasks.Snapshot[0].Status != events.TodoCompleted {
		t.Fatalf("status = %q, want completed", tasks.Snapshot[0].Status)
	}
}

func TestStoreFailureDoesNotPanicOrPlace(t *testing.T) {
	reg := testutil.NewMemRegistry()
	reg.Err = events.ErrMissingField // any error will do
	canvas := testutil.NewMemCanvas()

	d := effects.NewDispatcher(effects.Dependencies{Registry: reg, Canvas: canvas})
	d.Apply(componentResult("Card"))

	if canvas.Len() != 0 {
		t.Fatal("placement should be skipped when the registry write fails")
	}
}
