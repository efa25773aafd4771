package dto_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launderly/launderly/internal/dto"
)

// The items field carries three meanings on PATCH: absent leaves the
// collection untouched, [] clears it, and a non-empty array replaces it.
func TestUpdateOrderRequestItemsTristate(t *testing.T) {
	var omitted dto.UpdateOrderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"note":"n"}`), &omitted))
	assert.Nil(t, omitted.Items)

	var cleared dto.UpdateOrderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"items":[]}`), &cleared))
	require.NotNil(t, cleared.Items)
	assert.Empty(t, *cleared.Items)

	var replaced dto.UpdateOrderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"items":[{"serviceId":"svc-1","quantity":2}]}`), &replaced))
	require.NotNil(t, replaced.Items)
	require.Len(t, *replaced.Items, 1)
	assert.Equal(t, "svc-1", (*replaced.Items)[0].ServiceID)
	assert.Equal(t, 2, (*replaced.Items)[0].Quantity)
}

func TestUpdateOrderRequestOmittedScalarsAreNil(t *testing.T) {
	var patch dto.UpdateOrderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"isPaid":true}`), &patch))

	require.NotNil(t, patch.IsPaid)
	assert.True(t, *patch.IsPaid)
	assert.Nil(t, patch.Status)
	assert.Nil(t, patch.Note)
	assert.Nil(t, patch.CustomerID)
	assert.Nil(t, patch.DeliveryDate)
}
