package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTransition(t *testing.T) {
	testCases := []struct {
		name    string
		current OrderStatus
		next    OrderStatus
		wantErr string
	}{
		{"Pending to Shipped", StatusPending, StatusShipped, ""},
		{"Pending to Cancelled", StatusPending, StatusCancelled, ""},
		{"Shipped to Cancelled", StatusShipped, StatusCancelled, ""},
		{"Pending to Pending is a no-op", StatusPending, StatusPending, ""},
		{"Shipped to Shipped is a no-op", StatusShipped, StatusShipped, ""},
		{"Shipped to Pending rejected", StatusShipped, StatusPending, "cannot change status from Shipped to Pending"},
		{"Cancelled to Pending rejected", StatusCancelled, StatusPending, "cannot update status of a cancelled order"},
		{"Cancelled to Shipped rejected", StatusCancelled, StatusShipped, "cannot update status of a cancelled order"},
		{"Cancelled to Cancelled rejected", StatusCancelled, StatusCancelled, "cannot update status of a cancelled order"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTransition(tc.current, tc.next)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			var invalidState *InvalidOrderStateError
			assert.ErrorAs(t, err, &invalidState)
			assert.EqualError(t, err, tc.wantErr)
		})
	}
}

func TestOrderStatusIsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.True(t, StatusShipped.IsValid())
	assert.True(t, StatusCancelled.IsValid())
	assert.False(t, OrderStatus("Delivered").IsValid())
	assert.False(t, OrderStatus("pending").IsValid())
	assert.False(t, OrderStatus("").IsValid())
}
