package handler

import (
	"github.com/go-telegram/bot"
	"github.com/set-night/goldbot/internal/config"
	"github.com/set-night/goldbot/internal/fsm"
	"github.com/set-night/goldbot/internal/service"
	"github.com/set-night/goldbot/internal/telegram"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot         *bot.Bot
	cfg         *config.Config
	users       *service.UserService
	sponsors    *service.SponsorService
	tasks       *service.TaskService
	withdrawals *service.WithdrawalService
	broadcasts  *service.BroadcastService
	states      *fsm.Registry
	sender      *telegram.Sender
	eventLog    *telegram.EventLogger
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot         *bot.Bot
	Cfg         *config.Config
	Users       *service.UserService
	Sponsors    *service.SponsorService
	Tasks       *service.TaskService
	Withdrawals *service.WithdrawalService
	Broadcasts  *service.BroadcastService
	States      *fsm.Registry
	Sender      *telegram.Sender
	EventLog    *telegram.EventLogger
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:         deps.Bot,
		cfg:         deps.Cfg,
		users:       deps.Users,
		sponsors:    deps.Sponsors,
		tasks:       deps.Tasks,
		withdrawals: deps.Withdrawals,
		broadcasts:  deps.Broadcasts,
		states:      deps.States,
		sender:      deps.Sender,
		eventLog:    deps.EventLog,
	}
}
