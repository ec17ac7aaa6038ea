package db

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/skillbridge/internal/pkg/goerror"
	"github.com/shandysiswandi/skillbridge/internal/pkg/instrument"
	"github.com/shandysiswandi/skillbridge/internal/training/entity"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func newTestDB(t *testing.T) *DB {
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

	return NewDB(pool, instrument.NewNoop())
}

func newRegistration(id, trainingID, userID int64) entity.Registration {
	return entity.Registration{
		ID:         id,
		TrainingID: trainingID,
		UserID:     userID,
		Email:      "fresher@example.com",
		Data:       entity.RegistrationData{FullName: "Ayu Lestari", Phone: "+6281234567890"},
		Payment: entity.PaymentDetails{
			Method: entity.PaymentMethodUPI, Amount: 150000000, Currency: "IDR", PayerName: "Ayu Lestari",
		},
		PaymentID:        id + 1,
		PaymentReference: "TRN-" + strconv.FormatInt(id, 10),
		ChallengeID:      id + 2,
		Status:           entity.RegistrationStatusPaid,
		CreatedAt:        time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestDBTrainingQueries(t *testing.T) {
	// Arrange
	ctx := context.Background()
	db := newTestDB(t)

	// Act
	list, listErr := db.ListOpenTrainings(ctx, entity.TrainingListFilter{Size: 10})
	total, countErr := db.CountOpenTrainings(ctx, entity.TrainingListFilter{Search: "sql", IsFilterBySearch: true})
	_, missingErr := db.GetTraining(ctx, 9999)

	// Assert
	if listErr != nil || len(list) != 2 {
		t.Fatalf("list = %d, %v", len(list), listErr)
	}
	if list[0].ID != 1001 {
		t.Fatalf("list must be ordered by start date, first = %d", list[0].ID)
	}
	if countErr != nil || total != 1 {
		t.Fatalf("count = %d, %v", total, countErr)
	}
	if !errors.Is(missingErr, goerror.ErrNotFound) {
		t.Fatalf("missing training err = %v", missingErr)
	}
}

func TestDBFinalizeRegistration(t *testing.T) {
	// Arrange
	ctx := context.Background()
	db := newTestDB(t)

	// Act
	training, err := db.FinalizeRegistration(ctx, newRegistration(10, 1001, 7))
	again, againErr := db.FinalizeRegistration(ctx, newRegistration(20, 1001, 7))
	closed, closedErr := db.FinalizeRegistration(ctx, newRegistration(30, 1003, 8))

	// Assert
	if err != nil || training == nil || training.Booked != 1 {
		t.Fatalf("finalize = %+v, %v", training, err)
	}
	if again != nil || !errors.Is(againErr, goerror.ErrConflict) {
		t.Fatalf("duplicate registration err = %v", againErr)
	}
	if closed != nil || !errors.Is(closedErr, goerror.ErrConflict) {
		t.Fatalf("closed training err = %v", closedErr)
	}

	registered, _ := db.IsRegistered(ctx, 1001, 7)
	if !registered {
		t.Fatalf("registration not visible")
	}
	if err := db.SetReceiptKey(ctx, 10, "receipts/1001/10.json"); err != nil {
		t.Fatalf("set receipt key: %v", err)
	}
	mine, err := db.ListRegistrationsByUser(ctx, 7)
	if err != nil || len(mine) != 1 {
		t.Fatalf("my registrations = %d, %v", len(mine), err)
	}
	if mine[0].ReceiptKey != "receipts/1001/10.json" || mine[0].Method != entity.PaymentMethodUPI {
		t.Fatalf("summary = %+v", mine[0])
	}
}

func TestDBFinalizeRegistrationNeverOverbooks(t *testing.T) {
	// Arrange
	ctx := context.Background()
	db := newTestDB(t)
	const seats = 30
	const buyers = seats + 5
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)

	// Act
	for i := range buyers {
		wg.Add(1)
		go func(i int64) {
			defer wg.Done()
			if _, err := db.FinalizeRegistration(ctx, newRegistration(1000+i*10, 1001, 100+i)); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}(int64(i))
	}
	wg.Wait()

	// Assert
	if success != seats {
		t.Fatalf("success = %d, want %d", success, seats)
	}
	training, _ := db.GetTraining(ctx, 1001)
	if training.Booked != seats || training.Bookable() {
		t.Fatalf("training after rush = %+v", training)
	}
}
