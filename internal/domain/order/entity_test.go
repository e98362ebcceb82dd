// internal/domain/order/entity_test.go
package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanBeCancelled(t *testing.T) {
	assert.True(t, (&Order{Status: StatusProcessing}).CanBeCancelled())

	for _, status := range []string{
		StatusDispatched, StatusShipped, StatusOutForDelivery, StatusCompleted, StatusCancelled,
	} {
		assert.False(t, (&Order{Status: status}).CanBeCancelled(), status)
	}
}

func TestCanBeDispatched(t *testing.T) {
	onlinePaid := Order{Status: StatusProcessing, PaymentMethod: PaymentMethodOnline, PaymentStatus: PaymentSuccessful}
	assert.True(t, onlinePaid.CanBeDispatched())

	onlineUnpaid := Order{Status: StatusProcessing, PaymentMethod: PaymentMethodOnline, PaymentStatus: PaymentPending}
	assert.False(t, onlineUnpaid.CanBeDispatched())

	codUnpaid := Order{Status: StatusProcessing, PaymentMethod: PaymentMethodCOD, PaymentStatus: PaymentPending}
	assert.True(t, codUnpaid.CanBeDispatched())

	alreadyDispatched := Order{Status: StatusDispatched, PaymentMethod: PaymentMethodCOD}
	assert.False(t, alreadyDispatched.CanBeDispatched())

	refunding := onlinePaid
	refunding.RefundStatus = RefundPending
	assert.False(t, refunding.CanBeDispatched())
}

func TestIsRefundEligible(t *testing.T) {
	eligible := Order{
		PaymentMethod:    PaymentMethodOnline,
		PaymentStatus:    PaymentSuccessful,
		GatewayPaymentID: "pay_abc",
	}
	assert.True(t, eligible.IsRefundEligible())

	cod := eligible
	cod.PaymentMethod = PaymentMethodCOD
	assert.False(t, cod.IsRefundEligible())

	pending := eligible
	pending.PaymentStatus = PaymentPending
	assert.False(t, pending.IsRefundEligible())

	noPaymentID := eligible
	noPaymentID.GatewayPaymentID = ""
	assert.False(t, noPaymentID.IsRefundEligible())
}

func TestCanAcceptDelivery(t *testing.T) {
	ok := Order{Status: StatusOutForDelivery, PaymentStatus: PaymentSuccessful}
	assert.True(t, ok.CanAcceptDelivery())

	unpaid := Order{Status: StatusOutForDelivery, PaymentStatus: PaymentPending}
	assert.False(t, unpaid.CanAcceptDelivery())

	cancelled := Order{Status: StatusCancelled, PaymentStatus: PaymentSuccessful}
	assert.False(t, cancelled.CanAcceptDelivery())

	completed := Order{Status: StatusCompleted, PaymentStatus: PaymentSuccessful}
	assert.False(t, completed.CanAcceptDelivery())

	refunding := Order{Status: StatusOutForDelivery, PaymentStatus: PaymentSuccessful, RefundStatus: RefundPending}
	assert.False(t, refunding.CanAcceptDelivery())
}

func TestAllItemsDigital(t *testing.T) {
	empty := Order{}
	assert.False(t, empty.AllItemsDigital())

	allDigital := Order{Items: []OrderItem{{IsDigital: true}, {IsDigital: true}}}
	assert.True(t, allDigital.AllItemsDigital())

	mixed := Order{Items: []OrderItem{{IsDigital: true}, {IsDigital: false}}}
	assert.False(t, mixed.AllItemsDigital())
}

func TestCanTransitionTo(t *testing.T) {
	chain := []string{StatusDispatched, StatusShipped, StatusOutForDelivery, StatusCompleted}
	status := StatusProcessing
	for _, next := range chain {
		assert.True(t, (&Order{Status: status}).CanTransitionTo(next), "%s -> %s", status, next)
		status = next
	}

	// No skipping steps, no leaving terminal states.
	assert.False(t, (&Order{Status: StatusProcessing}).CanTransitionTo(StatusShipped))
	assert.False(t, (&Order{Status: StatusDispatched}).CanTransitionTo(StatusCompleted))
	assert.False(t, (&Order{Status: StatusCompleted}).CanTransitionTo(StatusDispatched))
	assert.False(t, (&Order{Status: StatusCancelled}).CanTransitionTo(StatusProcessing))

	// Cancellation is only reachable from processing.
	assert.True(t, (&Order{Status: StatusProcessing}).CanTransitionTo(StatusCancelled))
	assert.False(t, (&Order{Status: StatusShipped}).CanTransitionTo(StatusCancelled))
}
