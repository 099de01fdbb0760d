package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	lotdomain "github.com/nlhtungg/parking-lot/internal/lot/domain"
	"github.com/nlhtungg/parking-lot/internal/subscription/domain"
	subscriptionrepo "github.com/nlhtungg/parking-lot/internal/subscription/repository"
)

func newService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.MonthlySub{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{DB: db, Log: zap.NewNop(), Repo: subscriptionrepo.Provide(db)}), db, node
}

func TestFindActiveWindowInclusive(t *testing.T) {
	svc, db, node := newService(t)
	ctx := context.Background()

	sub := domain.MonthlySub{
		ID:           node.Generate(),
		LicensePlate: "SUB-777",
		VehicleType:  lotdomain.VehicleTypeCar,
		StartDate:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&sub).Error)

	// Both window ends count, including late in the day on the last date.
	for _, at := range []time.Time{
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 15, 12, 30, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 23, 59, 0, 0, time.UTC),
	} {
		found, err := svc.FindActive(ctx, "SUB-777", at)
		require.NoError(t, err)
		require.NotNil(t, found, "expected active subscription at %s", at)
		assert.Equal(t, sub.ID, found.ID)
	}

	for _, at := range []time.Time{
		time.Date(2025, 5, 31, 23, 59, 0, 0, time.UTC),
		time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	} {
		found, err := svc.FindActive(ctx, "SUB-777", at)
		require.NoError(t, err)
		assert.Nil(t, found, "expected no subscription at %s", at)
	}
}

func TestFindActiveUnknownPlate(t *testing.T) {
	svc, _, _ := newService(t)

	found, err := svc.FindActive(context.Background(), "NOPE-1", time.Now().UTC())
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestFindActivePrefersLatestWindow(t *testing.T) {
	svc, db, node := newService(t)
	ctx := context.Background()

	older := domain.MonthlySub{
		ID:           node.Generate(),
		LicensePlate: "SUB-777",
		VehicleType:  lotdomain.VehicleTypeCar,
		StartDate:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
	}
	newer := domain.MonthlySub{
		ID:           node.Generate(),
		LicensePlate: "SUB-777",
		VehicleType:  lotdomain.VehicleTypeCar,
		StartDate:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Create(&newer).Error)

	found, err := svc.FindActive(ctx, "SUB-777", time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, newer.ID, found.ID)
}
