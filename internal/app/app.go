package app

import (
	"net/http"

	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/config"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/events"
	httphandlers "github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/handler/http"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/notify"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/poller"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/repository"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/storage/memory"
	sqlstore "github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/storage/sql"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/usecase"
)

type Store interface {
	repository.ReminderRepository
	repository.PreferenceRepository
	repository.TaskRepository
}

type App struct {
	Config    config.Config
	Router    http.Handler
	Store     Store
	Reminders *usecase.ReminderService
	Bus       *events.Bus
	Poller    *poller.Poller
}

func New(cfg config.Config) *App {
	var store Store
	switch cfg.Storage {
	case "sql":
		store = sqlstore.New(cfg.DBDriver, cfg.DBDSN)
	default:
		store = memory.New()
	}

	var dispatcher usecase.Dispatcher = notify.LogDispatcher{}
	if cfg.SlackWebhookURL != "" {
		dispatcher = notify.NewMulti(
			notify.LogDispatcher{},
			notify.NewSlackWebhook(cfg.SlackWebhookURL, cfg.SlackTimeout),
		)
	}

	reminders := usecase.NewReminderService(store, store, store, dispatcher)
	bus := events.NewBus()
	usecase.NewTaskEventListener(reminders).Register(bus)

	return &App{
		Config:    cfg,
		Router:    httphandlers.New(reminders, store, bus),
		Store:     store,
		Reminders: reminders,
		Bus:       bus,
		Poller:    poller.New(reminders, cfg.PollInterval),
	}
}
