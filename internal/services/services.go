package services

import (
	"context"
	"math/rand"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sameicp/assignment-monitor/internal/config"
	"github.com/sameicp/assignment-monitor/internal/db"
	queueClient "github.com/sameicp/assignment-monitor/internal/queue/client"
	"github.com/sameicp/assignment-monitor/internal/scheduler"
	"github.com/sameicp/assignment-monitor/internal/types"
)

// ExpiryDispatcher delivers the event of a fired due-date timer to whatever
// ends up calling ProcessForfeiture. Without one, fired timers are processed
// in-process.
type ExpiryDispatcher func(ctx context.Context, event queueClient.ExpiredAssignmentEvent) error

// Service layer contains the business logic and is used to interact with
// the database and the forfeiture scheduler.
type Services struct {
	DbClient  db.DBClient
	cfg       *config.Config
	scheduler scheduler.Scheduler
	// pickIndex returns a uniformly random index in [0, n)
	pickIndex      func(n int) int
	dispatchExpiry ExpiryDispatcher
}

func New(ctx context.Context, cfg *config.Config, sched scheduler.Scheduler) (*Services, error) {
	dbClient, err := db.New(ctx, cfg.Db)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while creating db client")
		return nil, err
	}
	return NewWithDbClient(cfg, dbClient, sched), nil
}

func NewWithDbClient(cfg *config.Config, dbClient db.DBClient, sched scheduler.Scheduler) *Services {
	return &Services{
		DbClient:  dbClient,
		cfg:       cfg,
		scheduler: sched,
		pickIndex: rand.Intn,
	}
}

// SetExpiryDispatcher replaces the in-process handling of fired timers, e.g.
// to publish them to the expired assignment queue. In-process handling stays
// the fallback when dispatching fails.
func (s *Services) SetExpiryDispatcher(dispatcher ExpiryDispatcher) {
	s.dispatchExpiry = dispatcher
}

// DoHealthCheck checks the health of the services by ping the database.
func (s *Services) DoHealthCheck(ctx context.Context) error {
	return s.DbClient.Ping(ctx)
}

func (s *Services) SaveUnprocessableMessages(ctx context.Context, messageBody, receipt string) *types.Error {
	err := s.DbClient.SaveUnprocessableMessage(ctx, messageBody, receipt)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while saving unprocessable message")
		return types.NewErrorWithMsg(http.StatusInternalServerError, types.InternalServiceError, "error while saving unprocessable message")
	}
	return nil
}
