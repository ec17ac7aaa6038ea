package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/skillbridge/internal/notification/entity"
	"github.com/shandysiswandi/skillbridge/internal/pkg/goerror"
	"github.com/shandysiswandi/skillbridge/internal/pkg/instrument"
	"github.com/shandysiswandi/skillbridge/internal/pkg/valueobject"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func newTestDB(t *testing.T) (*DB, *pgxpool.Pool) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	migrations := filepath.Join("..", "..", "..", "..", "migrations")
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("skillbridge"),
		postgres.WithUsername("skillbridge"),
		postgres.WithPassword("skillbridge"),
		postgres.WithInitScripts(
			filepath.Join(migrations, "000001_training.up.sql"),
			filepath.Join(migrations, "000002_notification.up.sql"),
			filepath.Join(migrations, "000003_seed.up.sql"),
		),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres dsn: %v", err)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("postgres pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return NewDB(pool, instrument.NewNoop()), pool
}

func TestGetTemplateByTriggerChannel(t *testing.T) {
	// Arrange
	db, _ := newTestDB(t)
	ctx := context.Background()

	// Act
	tpl, err := db.GetTemplateByTriggerChannel(ctx, entity.TriggerKeyPaymentOTP, entity.ChannelEmail)
	_, missErr := db.GetTemplateByTriggerChannel(ctx, entity.TriggerKey("unknown_trigger"), entity.ChannelEmail)

	// Assert
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if tpl.TriggerKey != entity.TriggerKeyPaymentOTP || tpl.Channel != entity.ChannelEmail || tpl.Body == "" {
		t.Fatalf("template = %+v", tpl)
	}
	if !errors.Is(missErr, goerror.ErrNotFound) {
		t.Fatalf("missing template err = %v", missErr)
	}
}

func TestDeliveryLogLifecycle(t *testing.T) {
	// Arrange
	db, pool := newTestDB(t)
	ctx := context.Background()

	// Act
	if err := db.CreateDeliveryLog(ctx, entity.CreateDeliveryLog{
		ID:          11,
		TriggerKey:  entity.TriggerKeyPaymentOTP,
		Channel:     entity.ChannelEmail,
		Recipient:   "fresher@example.com",
		ReferenceID: "777",
		Status:      entity.DeliveryStatusQueued,
	}); err != nil {
		t.Fatalf("create log: %v", err)
	}
	err := db.UpdateDeliveryLogStatus(ctx, entity.UpdateDeliveryLog{
		ID:               11,
		Status:           entity.DeliveryStatusFailed,
		ProviderResponse: valueobject.JSONMap{"error": "connection refused"},
	})

	// Assert
	if err != nil {
		t.Fatalf("update log: %v", err)
	}
	var status int16
	var resp valueobject.JSONMap
	if err := pool.QueryRow(ctx,
		"SELECT status, provider_response FROM notification_delivery_logs WHERE id = $1", int64(11),
	).Scan(&status, &resp); err != nil {
		t.Fatalf("read log: %v", err)
	}
	if entity.DeliveryStatus(status) != entity.DeliveryStatusFailed || resp["error"] != "connection refused" {
		t.Fatalf("status %d resp %v", status, resp)
	}
	if err := db.UpdateDeliveryLogStatus(ctx, entity.UpdateDeliveryLog{ID: 11, Status: entity.DeliveryStatusQueued}); err == nil {
		t.Fatalf("moving back to queued should be rejected")
	}
}
