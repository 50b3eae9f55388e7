package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alima/internal/domain/entity"
	"alima/pkg/errors"
)

func TestCreateServiceRequiresProvider(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "client", "Ayu", entity.RoleClient)

	_, err := f.services.CreateService(context.Background(), "client", CreateServiceInput{Title: "Tutoring"})
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestListServicesEnrichesProvider(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "p1", "Budi", entity.RoleProvider)
	f.addUser(t, "p2", "Citra", entity.RoleProvider)
	ctx := context.Background()

	_, err := f.services.CreateService(ctx, "p1", CreateServiceInput{Title: "Plumbing", Category: "Repairs", Price: 100})
	require.NoError(t, err)
	paused, err := f.services.CreateService(ctx, "p2", CreateServiceInput{Title: "Painting", Category: "repairs", Price: 200})
	require.NoError(t, err)
	_, err = f.services.CreateService(ctx, "p2", CreateServiceInput{Title: "Yoga", Category: "wellness", Price: 50})
	require.NoError(t, err)

	status := entity.ServiceStatusPaused
	_, err = f.services.UpdateService(ctx, "p2", paused.ID, UpdateServiceInput{Status: &status})
	require.NoError(t, err)

	items, total, err := f.services.ListServices(ctx, ServiceFilter{Category: "REPAIRS"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Plumbing", items[0].Title)
	require.NotNil(t, items[0].Provider)
	assert.Equal(t, "Budi", items[0].Provider.DisplayName)

	own, total, err := f.services.ListOwnServices(ctx, "p2", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, own, 2)
}

func TestServiceOwnership(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "p1", "Budi", entity.RoleProvider)
	f.addUser(t, "p2", "Citra", entity.RoleProvider)
	ctx := context.Background()

	svc, err := f.services.CreateService(ctx, "p1", CreateServiceInput{Title: "Plumbing"})
	require.NoError(t, err)

	title := "Mine now"
	_, err = f.services.UpdateService(ctx, "p2", svc.ID, UpdateServiceInput{Title: &title})
	assert.True(t, errors.Is(err, "FORBIDDEN"))
	assert.True(t, errors.Is(f.services.DeleteService(ctx, "p2", svc.ID), "FORBIDDEN"))

	bad := "archived"
	_, err = f.services.UpdateService(ctx, "p1", svc.ID, UpdateServiceInput{Status: &bad})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	require.NoError(t, f.services.DeleteService(ctx, "p1", svc.ID))
	_, err = f.services.GetService(ctx, svc.ID)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}
