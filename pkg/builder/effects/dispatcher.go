// Package effects applies the structured side effects carried by the
// event stream to external state.
//
// Both emission paths - a canvas component or task snapshot embedded on
// a tool_result, and the legacy standalone canvas_update / todo_update
// events - funnel into the same mutation calls. Mutations are keyed by
// the artifact's own identifier ("ensure component X exists with this
// code"), so observing the same event twice is a no-op on the second
// application. The embedded tool_result path is the canonical emission;
// the standalone kinds are accepted for backward compatibility.
package effects

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/johnathanchiu/componentize/pkg/builder/events"
	"github.com/johnathanchiu/componentize/pkg/builder/ports"
)

// Dependencies groups the external stores the dispatcher writes to.
type Dependencies struct {
	Registry ports.ComponentRegistry
	Canvas   ports.CanvasStore
	Tasks    ports.TaskBoard
	Logger   *zap.SugaredLogger
}

// Dispatcher interprets event payloads and invokes idempotent mutations
// on external state. Effects apply synchronously within event
// processing, never deferred, so a consumer reading external state
// immediately after Apply sees the update.
type Dispatcher struct {
	registry ports.ComponentRegistry
	canvas   ports.CanvasStore
	tasks    ports.TaskBoard
	logger   *zap.SugaredLogger
}

// NewDispatcher creates a dispatcher. Nil stores disable the
// corresponding effect kind; a nil logger disables logging.
func NewDispatcher(deps Dependencies) *Dispatcher {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Dispatcher{
		registry: deps.Registry,
		canvas:   deps.Canvas,
		tasks:    deps.Tasks,
		logger:   logger,
	}
}

// Apply inspects one event and applies any side effect it carries. A
// tool_result with error status fires no effect. Store failures are
// logged and swallowed: a failed side effect must not abort transcript
// reconstruction.
func (d *Dispatcher) Apply(evt events.Event) {
	switch p := evt.Payload.(type) {
	case events.ToolResult:
		if p.Status != events.ResultSuccess {
			return
		}
		if p.Component != nil {
			d.applyComponent(*p.Component)
		}
		if p.Todos != nil {
			d.applyTodos(p.Todos)
		}

	case events.CanvasUpdate:
		d.applyComponent(p.Component)

	case events.TodoUpdate:
		d.applyTodos(p.Todos)
	}
}

func (d *Dispatcher) applyComponent(comp events.CanvasComponent) {
	if comp.ComponentName == "" {
		return
	}

	if d.registry != nil && comp.Code != "" {
		if err := d.registry.Ensure(comp.ComponentName, comp.Code); err != nil {
			d.logger.Warnw("component upsert failed",
				"component", comp.ComponentName, "error", err)

			return
		}
	}

	if d.canvas != nil {
		if err := d.canvas.Place(comp); err != nil {
			d.logger.Warnw("canvas placement failed",
				"component", comp.ComponentName, "error", err)

			return
		}
	}

	d.logger.Debugw("canvas component applied",
		"component", comp.ComponentName,
		"position", fmt.Sprintf("(%g,%g)", comp.Position.X, comp.Position.Y))
}

func (d *Dispatcher) applyTodos(todos []events.TodoItem) {
	if d.tasks == nil {
		return
	}

	d.tasks.Replace(todos)
	d.logger.Debugw("task board replaced", "count", len(todos))
}
