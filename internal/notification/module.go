package notification

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/skillbridge/internal/notification/inbound"
	"github.com/shandysiswandi/skillbridge/internal/notification/outbound/db"
	"github.com/shandysiswandi/skillbridge/internal/notification/outbound/email"
	"github.com/shandysiswandi/skillbridge/internal/notification/usecase"
	"github.com/shandysiswandi/skillbridge/internal/pkg/clock"
	"github.com/shandysiswandi/skillbridge/internal/pkg/config"
	"github.com/shandysiswandi/skillbridge/internal/pkg/goroutine"
	"github.com/shandysiswandi/skillbridge/internal/pkg/instrument"
	"github.com/shandysiswandi/skillbridge/internal/pkg/mail"
	"github.com/shandysiswandi/skillbridge/internal/pkg/messaging"
	"github.com/shandysiswandi/skillbridge/internal/pkg/uid"
	"github.com/shandysiswandi/skillbridge/internal/pkg/validator"
)

type Dependency struct {
	Ctx        context.Context
	DBConn     *pgxpool.Pool
	Messaging  messaging.Consumer
	Config     config.Config
	Instrument instrument.Instrumentation
	UID        uid.NumberID
	UUID       uid.StringID
	Clock      clock.Clocker
	Goroutine  *goroutine.Manager
	Validator  validator.Validator
	Mail       mail.Mail
}

func New(dep Dependency) error {
	uc := usecase.New(usecase.Dependency{
		RepoDB:     db.NewDB(dep.DBConn, dep.Instrument),
		RepoMail:   email.New(dep.Mail, dep.Instrument),
		Config:     dep.Config,
		UID:        dep.UID,
		Clock:      dep.Clock,
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
	})

	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	}

	return nil
}
