package events

import "github.com/routinely/routinely/internal/models"

// OnTaskCompleted is called after a completion is recorded and points
// are credited. handlers will call this if it's set.
var OnTaskCompleted func(c models.TaskCompletion)

// OnCheckin is called after a successful kiosk lookup by check-in code.
var OnCheckin func(p models.Person)
