package training

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/skillbridge/internal/pkg/clock"
	"github.com/shandysiswandi/skillbridge/internal/pkg/config"
	"github.com/shandysiswandi/skillbridge/internal/pkg/hash"
	"github.com/shandysiswandi/skillbridge/internal/pkg/idempotency"
	"github.com/shandysiswandi/skillbridge/internal/pkg/instrument"
	"github.com/shandysiswandi/skillbridge/internal/pkg/messaging"
	"github.com/shandysiswandi/skillbridge/internal/pkg/otp"
	"github.com/shandysiswandi/skillbridge/internal/pkg/router"
	"github.com/shandysiswandi/skillbridge/internal/pkg/storage"
	"github.com/shandysiswandi/skillbridge/internal/pkg/uid"
	"github.com/shandysiswandi/skillbridge/internal/pkg/validator"
	"github.com/shandysiswandi/skillbridge/internal/training/inbound"
	"github.com/shandysiswandi/skillbridge/internal/training/outbound/cache"
	"github.com/shandysiswandi/skillbridge/internal/training/outbound/db"
	"github.com/shandysiswandi/skillbridge/internal/training/outbound/mq"
	"github.com/shandysiswandi/skillbridge/internal/training/outbound/receipt"
	"github.com/shandysiswandi/skillbridge/internal/training/usecase"
)

type Dependency struct {
	DBConn      *pgxpool.Pool              `validate:"required"`
	CacheConn   redis.UniversalClient      `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	HMAC        hash.Hash                  `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Code        otp.Generator              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	// Storage is optional; without it registrations carry no receipt.
	Storage storage.Storage
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	ucDep := usecase.Dependency{
		RepoDB:        db.NewDB(dep.DBConn, dep.Instrument),
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		Code:          dep.Code,
		UID:           dep.UID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
	}

	switch dep.Config.GetString("modules.training.otp.store") {
	case cache.DriverMemory:
		ucDep.RepoChallenge = cache.NewMemory(dep.Instrument)
	default:
		ucDep.RepoChallenge = cache.NewRedis(dep.CacheConn, dep.Instrument)
	}

	if dep.Storage != nil {
		ucDep.RepoReceipt = receipt.NewReceipt(dep.Storage, dep.Instrument)
	}

	inbound.RegisterHTTPEndpoint(dep.Router, usecase.New(ucDep))

	return nil
}
