package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/routinely/routinely/internal/handlers"
)

func Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Public
	r.Get("/healthz", handlers.Health)
	r.Post("/signup", handlers.Signup)
	r.Post("/login", handlers.Login)

	// Kiosk check-in: the check-in code is the credential
	r.Get("/checkin", handlers.CheckinLookup)
	r.Post("/checkin", handlers.CheckinComplete)

	// QR image
	r.Get("/qr/{code}.png", handlers.QR)

	// --- Authenticated API ---
	r.Route("/api", func(ar chi.Router) {
		ar.Use(handlers.RequireUser)

		// Roles & groups
		ar.Post("/roles", handlers.CreateRole)
		ar.Get("/roles", handlers.ListRoles)
		ar.Post("/roles/{roleID}/groups", handlers.CreateGroup)
		ar.Get("/roles/{roleID}/groups", handlers.ListGroups)

		// Persons
		ar.Post("/roles/{roleID}/persons", handlers.CreatePerson)
		ar.Get("/roles/{roleID}/persons", handlers.ListPersons)
		ar.Post("/persons/{personID}/archive", handlers.ArchivePerson)
		ar.Get("/persons/{personID}/completions", handlers.PersonCompletions)

		// Routines
		ar.Post("/roles/{roleID}/routines", handlers.CreateRoutine)
		ar.Get("/roles/{roleID}/routines/today", handlers.RoutinesToday)
		ar.Post("/routines/{routineID}", handlers.UpdateRoutine)
		ar.Post("/routines/{routineID}/archive", handlers.ArchiveRoutine)
		ar.Post("/routines/{routineID}/assign", handlers.AssignRoutine)

		// Tasks & completions
		ar.Post("/routines/{routineID}/tasks", handlers.CreateTask)
		ar.Post("/tasks/{taskID}", handlers.UpdateTask)
		ar.Post("/tasks/{taskID}/delete", handlers.DeleteTask)
		ar.Post("/tasks/{taskID}/complete", handlers.CompleteTask)

		// Smart-routine conditions (cycle-gated)
		ar.Post("/routines/{routineID}/conditions", handlers.CreateCondition)
		ar.Post("/conditions/{conditionID}/delete", handlers.DeleteCondition)

		// Visibility overrides
		ar.Post("/routines/{routineID}/override", handlers.CreateOverride)
		ar.Get("/routines/{routineID}/override", handlers.GetOverride)

		// Person sharing
		ar.Post("/persons/{personID}/invites", handlers.CreateShareInvite)
		ar.Post("/invites/{code}/accept", handlers.AcceptShareInvite)
		ar.Post("/shares/{shareID}/revoke", handlers.RevokeShare)
		ar.Get("/roles/{roleID}/shares", handlers.ListShares)

		// Co-parent / co-teacher delegation
		ar.Post("/roles/{roleID}/coparents", handlers.CreateCoParent)
		ar.Post("/coparents/{coparentID}/revoke", handlers.RevokeCoParent)
		ar.Post("/roles/{roleID}/coteachers", handlers.CreateCoTeacher)
		ar.Post("/coteachers/{coteacherID}/revoke", handlers.RevokeCoTeacher)
	})

	return r
}
