package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockledger/inventory-service/internal/domain"
)

func newBranchEnv() (*BranchService, *fakeBranchRepo) {
	repo := newFakeBranchRepo()
	return NewBranchService(repo, testLogger()), repo
}

func TestCreateBranch(t *testing.T) {
	svc, _ := newBranchEnv()

	dto, err := svc.Create(context.Background(), CreateBranchCommand{
		Name:          "North",
		Address:       "5 Dock Rd",
		TotalShelves:  10,
		TotalSections: 6,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, dto.ID)
	assert.Equal(t, 10, dto.TotalShelves)
}

func TestCreateBranchInvalid(t *testing.T) {
	svc, _ := newBranchEnv()

	_, err := svc.Create(context.Background(), CreateBranchCommand{
		Name:          "",
		TotalShelves:  10,
		TotalSections: 6,
	})
	require.Error(t, err)
}

func TestSetAndClearCustomSections(t *testing.T) {
	svc, _ := newBranchEnv()

	created, err := svc.Create(context.Background(), CreateBranchCommand{
		Name: "North", TotalShelves: 10, TotalSections: 6,
	})
	require.NoError(t, err)

	updated, err := svc.SetCustomSections(context.Background(), created.ID, 4, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, updated.CustomSections[4])

	layout, err := svc.Layout(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "D", layout[3].Label)
	assert.Equal(t, 12, layout[3].Sections)
	assert.Equal(t, 6, layout[0].Sections)

	cleared, err := svc.ClearCustomSections(context.Background(), created.ID, 4)
	require.NoError(t, err)
	_, ok := cleared.CustomSections[4]
	assert.False(t, ok)
}

func TestBranchNotFound(t *testing.T) {
	svc, _ := newBranchEnv()

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrBranchNotFound)

	_, err = svc.Layout(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrBranchNotFound)
}
