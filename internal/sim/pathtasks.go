package sim

import (
	"fmt"

	"gatewatch/server/internal/geom"
	"gatewatch/server/internal/nav"
)

// PathResult carries a finished query back to the tick loop. Exactly one of
// the three shapes holds: a route (Found), a clean miss (Found false, Err
// nil), or a query error.
type PathResult struct {
	Points []geom.Vec3
	Found  bool
	Err    error
}

// PendingPathTask owns the channel its worker goroutine reports on. The
// channel is buffered so the worker never blocks on a result nobody has
// polled yet.
type PendingPathTask struct {
	ID     uint64
	Start  geom.Vec3
	End    geom.Vec3
	result chan PathResult
}

// TaskManager tracks in-flight path queries. Not safe for concurrent use;
// the world mutates it only from the tick loop.
type TaskManager struct {
	pending []*PendingPathTask
}

func NewTaskManager() *TaskManager {
	return &TaskManager{}
}

// Submit starts a worker goroutine for the query and registers the task.
// Tasks are never cancelled; a result that arrives after its requester is
// gone is received on the next poll and discarded by the caller.
func (m *TaskManager) Submit(field *nav.Field, id uint64, start, end geom.Vec3) *PendingPathTask {
	task := &PendingPathTask{
		ID:     id,
		Start:  start,
		End:    end,
		result: make(chan PathResult, 1),
	}
	m.pending = append(m.pending, task)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				task.result <- PathResult{Err: fmt.Errorf("path query %d panicked: %v", id, r)}
			}
		}()
		points, found, err := field.FindPath(start, end)
		task.result <- PathResult{Points: points, Found: found, Err: err}
	}()
	return task
}

// PollAll drains every finished task without blocking and retains the rest
// in submission order. Unfinished tasks are left untouched; polling twice in
// a row without new completions integrates nothing the second time.
func (m *TaskManager) PollAll(integrate func(*PendingPathTask, PathResult)) int {
	kept := m.pending[:0]
	finished := 0
	for _, task := range m.pending {
		select {
		case res := <-task.result:
			finished++
			if integrate != nil {
				integrate(task, res)
			}
		default:
			kept = append(kept, task)
		}
	}
	for i := len(kept); i < len(m.pending); i++ {
		m.pending[i] = nil
	}
	m.pending = kept
	return finished
}

func (m *TaskManager) Pending() int {
	return len(m.pending)
}
