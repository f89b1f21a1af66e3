package usecases

import (
	"context"
	"testing"

	"github.com/aarav-aiphi/Backend/pkg/db/dbtest"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndList(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)
	ctx := context.Background()

	res, err := svc.Create(ctx, CreateRequest{Name: " Summarization "})
	require.NoError(t, err)
	assert.Equal(t, "Use case created successfully", res.Message)
	assert.Equal(t, "Summarization", res.UseCase.Name)

	_, err = svc.Create(ctx, CreateRequest{Name: "Customer Support"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Customer Support", list[0].Name)
}

func TestCreateRejectsDuplicatesAndBlank(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Create(ctx, CreateRequest{Name: "Coding"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateRequest{Name: "Coding"})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.Equal(t, "Use case already exists", pkgerrors.As(err).Message())

	_, err = svc.Create(ctx, CreateRequest{Name: "  "})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.Equal(t, "Use case name is required", pkgerrors.As(err).Message())
}
