package app

import (
	"time"

	"github.com/fatflowers/pledger/internal/app/api/server"
	"github.com/fatflowers/pledger/internal/app/service/donation"
	"github.com/fatflowers/pledger/internal/app/service/events"
	"github.com/fatflowers/pledger/internal/app/service/statistics"
	"github.com/fatflowers/pledger/internal/app/service/subscription"
	syncsvc "github.com/fatflowers/pledger/internal/app/service/sync"
	webhooklog "github.com/fatflowers/pledger/internal/app/service/webhook_log"
	"github.com/fatflowers/pledger/internal/platform/db"
	"github.com/fatflowers/pledger/internal/platform/gateways"
	"github.com/fatflowers/pledger/pkg/config"
	"github.com/fatflowers/pledger/pkg/logger"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	gateways.Module,
	server.Module,
	subscription.Module,
	donation.Module,
	statistics.Module,
	webhooklog.Module,
	events.Module,
	syncsvc.Module,
)
