package contacts

import (
	"context"
	"testing"

	"github.com/aarav-aiphi/Backend/pkg/db/dbtest"
	"github.com/aarav-aiphi/Backend/pkg/db/models"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitStoresMessage(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	receipt, err := svc.Submit(context.Background(), SubmitRequest{Name: " Ada ", Email: "ada@example.com", Message: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, "Your message has been received. We will contact you shortly.", receipt.Message)
	assert.Equal(t, "Ada", receipt.Contact.Name)

	var stored []models.Contact
	require.NoError(t, conn.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, receipt.Contact.ID, stored[0].ID)
}

func TestSubmitRequiresAllFields(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)

	for _, req := range []SubmitRequest{
		{Email: "a@example.com", Message: "m"},
		{Name: "a", Message: "m"},
		{Name: "a", Email: "a@example.com", Message: "   "},
	} {
		_, err := svc.Submit(context.Background(), req)
		assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), "%+v", req)
	}
}
