package api

import (
	"github.com/go-chi/chi"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/sameicp/assignment-monitor/docs"
)

func (a *Server) SetupRoutes(r *chi.Mux) {
	handlers := a.handlers
	r.Get("/healthcheck", registerHandler(handlers.HealthCheck))

	r.Post("/v1/students", registerHandler(handlers.CreateStudent))
	r.Post("/v1/supervisors", registerHandler(handlers.CreateSupervisor))
	r.Post("/v1/stake", registerHandler(handlers.Stake))
	r.Post("/v1/assignments", registerHandler(handlers.UploadAssignment))
	r.Post("/v1/solutions", registerHandler(handlers.UploadSolution))
	r.Post("/v1/verify", registerHandler(handlers.VerifyWorkDone))
	r.Post("/v1/claim", registerHandler(handlers.ClaimFunds))

	r.Get("/v1/work", registerHandler(handlers.ViewWorkDone))
	r.Get("/v1/participants", registerHandler(handlers.GetParticipants))
	r.Get("/v1/supervisors", registerHandler(handlers.GetSupervisorList))
	r.Get("/v1/progress", registerHandler(handlers.GetProgress))
	r.Get("/v1/participant/name", registerHandler(handlers.GetParticipantName))
	r.Get("/v1/participant/balance", registerHandler(handlers.GetParticipantBalance))

	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
