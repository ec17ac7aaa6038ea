package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/skillbridge/internal/notification"
	"github.com/shandysiswandi/skillbridge/internal/training"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.training.enabled") {
		if err := training.New(training.Dependency{
			DBConn:      a.dbConn,
			CacheConn:   a.cacheConn,
			Router:      a.router,
			Idempotency: a.idemp,
			Messaging:   a.messaging,
			Config:      a.config,
			Instrument:  a.ins,
			UID:         a.uid,
			HMAC:        a.hmac,
			Clock:       a.clock,
			Code:        a.code,
			Validator:   a.validator,
			Storage:     a.storage,
		}); err != nil {
			slog.Error("failed to init module training", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:        a.ctx,
			DBConn:     a.dbConn,
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			Clock:      a.clock,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
			Mail:       a.mail,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
