package registry

import (
	"sync"

	"github.com/johnathanchiu/componentize/pkg/builder/events"
)

// Canvas is an in-memory placement store keyed by component name. Place
// is an upsert, so replayed placement events collapse to one entry per
// component. Safe for concurrent use.
type Canvas struct {
	mu    sync.RWMutex
	items map[string]events.CanvasComponent
	order []string
}

// NewCanvas returns an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{items: make(map[string]events.CanvasComponent)}
}

// Place upserts a component placement by name.
func (c *Canvas) Place(comp events.CanvasComponent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[comp.ComponentName]; !ok {
		c.order = append(c.order, comp.ComponentName)
	}
	c.items[comp.ComponentName] = comp

	return nil
}

// Remove deletes a placement by name.
func (c *Canvas) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[name]; !ok {
		return
	}
	delete(c.items, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)

			break
		}
	}
}

// Items returns placements in first-placed order.
func (c *Canvas) Items() []events.CanvasComponent {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]events.CanvasComponent, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.items[name])
	}

	return out
}

// Len reports the number of placed components.
func (c *Canvas) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// TaskBoard holds the latest task-list snapshot. Replace overwrites the
// whole snapshot, last write wins.
type TaskBoard struct {
	mu    sync.RWMutex
	todos []events.TodoItem
}

// NewTaskBoard returns an empty board.
func NewTaskBoard() *TaskBoard {
	return &TaskBoard{}
}

// Replace installs a full snapshot.
func (b *TaskBoard) Replace(todos []events.TodoItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.todos = append([]events.TodoItem(nil), todos...)
}

// Items returns the current snapshot.
func (b *TaskBoard) Items() []events.TodoItem {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return append([]events.TodoItem(nil), b.todos...)
}
