package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/routinely/routinely/internal/models"
)

// CyclicDependencyError rejects a condition write that would close a
// loop. Path lists the routine ids along the loop; its first and last
// entries are the same routine.
type CyclicDependencyError struct {
	Path []uint
}

func (e *CyclicDependencyError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = fmt.Sprint(id)
	}
	return "cyclic routine dependency: " + strings.Join(parts, " -> ")
}

// CycleCheck is the result of a pre-write cycle probe.
type CycleCheck struct {
	HasCycle bool
	Path     []uint // populated when HasCycle; first == last
}

// BuildDependencyGraph loads every active condition belonging to an
// active smart routine and returns the routine-to-routine adjacency map.
// Task targets are resolved to the routine that owns the task. Routines
// with no outgoing conditions have no key; callers treat a missing key
// as "no dependencies".
func BuildDependencyGraph(gdb *gorm.DB) (map[uint][]uint, error) {
	var conds []models.Condition
	err := gdb.
		Joins("JOIN routines ON routines.id = conditions.routine_id").
		Where("conditions.status = ?", models.StatusActive).
		Where("routines.type = ? AND routines.status = ?", models.RoutineSmart, models.StatusActive).
		Find(&conds).Error
	if err != nil {
		return nil, err
	}

	// Batch-resolve task targets to their owning routines in one query.
	taskIDs := make([]uint, 0, len(conds))
	for _, c := range conds {
		if c.TargetTaskID != nil {
			taskIDs = append(taskIDs, *c.TargetTaskID)
		}
	}
	taskRoutine := make(map[uint]uint, len(taskIDs))
	if len(taskIDs) > 0 {
		var tasks []models.Task
		if err := gdb.Where("id IN ?", taskIDs).Find(&tasks).Error; err != nil {
			return nil, err
		}
		for _, t := range tasks {
			taskRoutine[t.ID] = t.RoutineID
		}
	}

	graph := make(map[uint][]uint)
	seen := make(map[[2]uint]bool)
	addEdge := func(from, to uint) {
		if seen[[2]uint{from, to}] {
			return
		}
		seen[[2]uint{from, to}] = true
		graph[from] = append(graph[from], to)
	}

	for _, c := range conds {
		if c.TargetTaskID != nil {
			if rid, ok := taskRoutine[*c.TargetTaskID]; ok {
				addEdge(c.RoutineID, rid)
			}
		}
		if c.TargetRoutineID != nil {
			addEdge(c.RoutineID, *c.TargetRoutineID)
		}
	}
	return graph, nil
}

// DetectCycle reports whether adding edges from routineID to each of
// proposedTargets would create a cycle. The persisted graph is rebuilt
// from scratch on every check; simple and always consistent, at the cost
// of re-reading conditions each time.
func DetectCycle(gdb *gorm.DB, routineID uint, proposedTargets []uint) (CycleCheck, error) {
	graph, err := BuildDependencyGraph(gdb)
	if err != nil {
		return CycleCheck{}, err
	}

	// Union the proposed edges into a copy; the loaded graph itself is
	// never mutated.
	edges := make(map[uint][]uint, len(graph)+1)
	for k, v := range graph {
		edges[k] = v
	}
	merged := append([]uint{}, edges[routineID]...)
	merged = append(merged, proposedTargets...)
	edges[routineID] = merged

	const (
		white = iota // unvisited
		gray         // on the recursion stack
		black        // fully expanded
	)
	color := map[uint]int{routineID: gray}
	path := []uint{routineID}

	type frame struct {
		node uint
		next int
	}
	stack := []frame{{node: routineID}}

	// Explicit-stack DFS so a large graph can't blow the call stack.
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		out := edges[f.node]
		if f.next < len(out) {
			w := out[f.next]
			f.next++
			switch color[w] {
			case gray:
				// Back-edge: close the loop at w's first appearance.
				start := 0
				for i, n := range path {
					if n == w {
						start = i
						break
					}
				}
				cycle := append(append([]uint{}, path[start:]...), w)
				return CycleCheck{HasCycle: true, Path: cycle}, nil
			case white:
				color[w] = gray
				stack = append(stack, frame{node: w})
				path = append(path, w)
			}
			// black: already fully expanded, skip
		} else {
			color[f.node] = black
			stack = stack[:len(stack)-1]
			path = path[:len(path)-1]
		}
	}
	return CycleCheck{}, nil
}
