package services

import (
	"context"
	"strconv"
	"testing"

	"bookingpro-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceStore_CreateAndUpdateOptions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	svc := env.createService(t, 50,
		OptionInput{Label: "Size", Type: models.OptionDropdown, Choices: []models.OptionChoice{{Label: "Large", Price: 15}}},
		OptionInput{Label: "Fridge", Type: models.OptionCheckbox, Price: 10, SortOrder: 1},
	)
	require.Len(t, svc.Options, 2)
	assert.True(t, svc.IsActive)

	got, err := env.catalog.Get(ctx, svc.ID)
	require.NoError(t, err)
	require.Len(t, got.Options, 2)
	assert.Equal(t, "Size", got.Options[0].Label)
	assert.Equal(t, []models.OptionChoice{{Label: "Large", Price: 15}}, got.Options[0].ChoiceList())

	price := 60.0
	inactive := false
	replacement := []OptionInput{{Label: "Windows", Type: models.OptionNumber, Price: 3}}
	updated, err := env.catalog.Update(ctx, svc.ID, ServiceUpdate{Price: &price, IsActive: &inactive, Options: &replacement})
	require.NoError(t, err)
	assert.Equal(t, 60.0, updated.Price)
	assert.False(t, updated.IsActive)
	require.Len(t, updated.Options, 1)
	assert.Equal(t, "Windows", updated.Options[0].Label)

	title := "Renamed"
	updated, err = env.catalog.Update(ctx, svc.ID, ServiceUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Len(t, updated.Options, 1, "options untouched when none supplied")
}

func TestServiceStore_UpdateKeepsOptionIDs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	svc := env.createService(t, 50,
		OptionInput{Label: "Fridge", Type: models.OptionCheckbox, Price: 10},
		OptionInput{Label: "Oven", Type: models.OptionCheckbox, Price: 20, SortOrder: 1},
	)
	fridge, oven := svc.Options[0], svc.Options[1]

	options := []OptionInput{
		{ID: fridge.ID, Label: "Fridge interior", Type: models.OptionCheckbox, Price: 12},
		{Label: "Balcony", Type: models.OptionCheckbox, Price: 8, SortOrder: 2},
	}
	updated, err := env.catalog.Update(ctx, svc.ID, ServiceUpdate{Options: &options})
	require.NoError(t, err)
	require.Len(t, updated.Options, 2)

	assert.Equal(t, fridge.ID, updated.Options[0].ID, "known option edited in place")
	assert.Equal(t, "Fridge interior", updated.Options[0].Label)
	assert.Equal(t, 12.0, updated.Options[0].Price)
	assert.Equal(t, "Balcony", updated.Options[1].Label)
	assert.NotEqual(t, oven.ID, updated.Options[1].ID)

	var count int64
	require.NoError(t, env.db.Model(&models.ServiceOption{}).Where("id = ?", oven.ID).Count(&count).Error)
	assert.Zero(t, count, "options left out are removed")

	// A booking keyed by the kept option still prices it.
	total := ComputeTotal(updated.Price, updated.Options, models.Selections{
		strconv.FormatUint(uint64(fridge.ID), 10): "yes",
	}, 0, 0)
	assert.Equal(t, 62.0, total)
}

func TestServiceStore_ListAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.createService(t, 10)
	second := env.createService(t, 20)
	inactive := false
	_, err := env.catalog.Update(ctx, second.ID, ServiceUpdate{IsActive: &inactive})
	require.NoError(t, err)

	all, err := env.catalog.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := env.catalog.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, first.ID, active[0].ID)

	require.NoError(t, env.catalog.Delete(ctx, first.ID))
	_, err = env.catalog.Get(ctx, first.ID)
	assert.ErrorIs(t, err, ErrServiceNotFound)
	assert.ErrorIs(t, env.catalog.Delete(ctx, first.ID), ErrServiceNotFound)

	_, err = env.catalog.Create(ctx, ServiceInput{Title: "  "})
	var typed *Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, KindValidation, typed.Kind)
}
