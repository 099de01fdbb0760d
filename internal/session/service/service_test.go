package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	lotdomain "github.com/nlhtungg/parking-lot/internal/lot/domain"
	"github.com/nlhtungg/parking-lot/internal/session/domain"
	sessionrepo "github.com/nlhtungg/parking-lot/internal/session/repository"
)

func newService(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.ParkingSession{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{DB: db, Log: zap.NewNop(), Repo: sessionrepo.Provide(db)}), node
}

func newSession(node *snowflake.Node, lotID snowflake.ID, plate string, checkedIn time.Time) *domain.ParkingSession {
	return &domain.ParkingSession{
		ID:           node.Generate(),
		LotID:        lotID,
		LicensePlate: plate,
		VehicleType:  lotdomain.VehicleTypeCar,
		TicketType:   domain.TicketTypeDaily,
		TicketCode:   uuid.NewString(),
		CheckedInAt:  checkedIn,
	}
}

func TestValidatePlate(t *testing.T) {
	for _, plate := range []string{"ABC-123", "51F12345", "abc-123", "A"} {
		assert.NoError(t, domain.ValidatePlate(plate), plate)
	}
	for _, plate := range []string{"", "AB 123", "AB_123", "AB.123", "xe@123"} {
		assert.ErrorIs(t, domain.ValidatePlate(plate), domain.ErrInvalidPlate, plate)
	}
}

func TestCreateRejectsInvalidPlate(t *testing.T) {
	svc, node := newService(t)

	session := newSession(node, node.Generate(), "bad plate", time.Now().UTC())
	assert.ErrorIs(t, svc.Create(context.Background(), nil, session), domain.ErrInvalidPlate)
}

func TestActiveByLotOrdersNewestFirst(t *testing.T) {
	svc, node := newService(t)
	ctx := context.Background()
	lotID := node.Generate()
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	for i, plate := range []string{"AAA-1", "AAA-2", "AAA-3"} {
		session := newSession(node, lotID, plate, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, svc.Create(ctx, nil, session))
	}

	sessions, err := svc.ActiveByLot(ctx, lotID)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "AAA-3", sessions[0].LicensePlate)
	assert.Equal(t, "AAA-2", sessions[1].LicensePlate)
	assert.Equal(t, "AAA-1", sessions[2].LicensePlate)
}

func TestCompleteGuards(t *testing.T) {
	svc, node := newService(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	session := newSession(node, node.Generate(), "ABC-123", now)
	require.NoError(t, svc.Create(ctx, nil, session))

	require.NoError(t, svc.Complete(ctx, nil, session.ID, now.Add(time.Hour)))

	assert.ErrorIs(t, svc.Complete(ctx, nil, session.ID, now.Add(2*time.Hour)), domain.ErrSessionCompleted)
	assert.ErrorIs(t, svc.Complete(ctx, nil, node.Generate(), now), domain.ErrSessionNotFound)
}

func TestHasActiveOnlyWhileOpen(t *testing.T) {
	svc, node := newService(t)
	ctx := context.Background()
	lotID := node.Generate()
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	session := newSession(node, lotID, "ABC-123", now)
	require.NoError(t, svc.Create(ctx, nil, session))

	active, err := svc.HasActive(ctx, lotID, "ABC-123")
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, svc.Complete(ctx, nil, session.ID, now.Add(time.Hour)))

	active, err = svc.HasActive(ctx, lotID, "ABC-123")
	require.NoError(t, err)
	assert.False(t, active)
}
