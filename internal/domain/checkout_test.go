package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAddress = Address{Address: "1 Main St", City: "Boston", PostalCode: "02101", Country: "USA"}

func sessionWith(items bool, addr bool, method PaymentMethod) *CheckoutSession {
	s := NewCheckoutSession()
	if items {
		s.SetCartItems([]CartItem{{Product: "p1", Name: "Airpods", Price: 89.99, CountInStock: 10, Qty: 1}})
	}
	if addr {
		s.SetShippingAddress(testAddress)
	}
	s.PaymentMethod = method
	return s
}

func TestNewCheckoutSession(t *testing.T) {
	s := NewCheckoutSession()
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, StepCart, s.Step)
	assert.Empty(t, s.CartItems)
	assert.Nil(t, s.ShippingAddress)
	assert.Empty(t, s.PaymentMethod)
}

func TestParseStep(t *testing.T) {
	for _, name := range []string{"cart", "shipping", "payment", "placeorder", "completed", "login"} {
		st, err := ParseStep(name)
		require.NoError(t, err)
		assert.Equal(t, Step(name), st)
	}
	_, err := ParseStep("review")
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestParsePaymentMethod(t *testing.T) {
	tests := []struct {
		raw  string
		want PaymentMethod
		err  error
	}{
		{"", PaymentPayPal, nil},
		{"PayPal", PaymentPayPal, nil},
		{"Stripe", PaymentStripe, nil},
		{"paypal", "", ErrInvalidPaymentMethod},
		{"Bitcoin", "", ErrInvalidPaymentMethod},
	}
	for _, tc := range tests {
		got, err := ParsePaymentMethod(tc.raw)
		if tc.err != nil {
			assert.ErrorIs(t, err, tc.err, tc.raw)
			continue
		}
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got)
	}
}

func TestSavePaymentMethod(t *testing.T) {
	s := NewCheckoutSession()

	require.NoError(t, s.SavePaymentMethod(""))
	assert.Equal(t, PaymentPayPal, s.PaymentMethod)

	require.NoError(t, s.SavePaymentMethod("Stripe"))
	assert.Equal(t, PaymentStripe, s.PaymentMethod)

	require.ErrorIs(t, s.SavePaymentMethod("Cash"), ErrInvalidPaymentMethod)
	assert.Equal(t, PaymentStripe, s.PaymentMethod, "rejected value is not stored")
}

func TestEnter(t *testing.T) {
	tests := []struct {
		name      string
		session   *CheckoutSession
		auth      bool
		requested Step
		want      Transition
	}{
		{
			name: "cart always enterable", session: sessionWith(false, false, ""), requested: StepCart,
			want: Transition{Requested: StepCart, Step: StepCart},
		},
		{
			name: "shipping with empty cart", session: sessionWith(false, false, ""), requested: StepShipping,
			want: Transition{Requested: StepShipping, Step: StepCart, Redirected: true, Reason: "cart is empty"},
		},
		{
			name: "shipping with items, anonymous", session: sessionWith(true, false, ""), requested: StepShipping,
			want: Transition{Requested: StepShipping, Step: StepShipping},
		},
		{
			name: "payment without address", session: sessionWith(true, false, ""), auth: true, requested: StepPayment,
			want: Transition{Requested: StepPayment, Step: StepShipping, Redirected: true, Reason: "shipping address required"},
		},
		{
			name: "payment without address beats login", session: sessionWith(true, false, ""), requested: StepPayment,
			want: Transition{Requested: StepPayment, Step: StepShipping, Redirected: true, Reason: "shipping address required"},
		},
		{
			name: "payment with empty cart and no address", session: sessionWith(false, false, ""), auth: true, requested: StepPayment,
			want: Transition{Requested: StepPayment, Step: StepShipping, Redirected: true, Reason: "shipping address required"},
		},
		{
			name: "payment with address but empty cart", session: sessionWith(false, true, ""), auth: true, requested: StepPayment,
			want: Transition{Requested: StepPayment, Step: StepCart, Redirected: true, Reason: "cart is empty"},
		},
		{
			name: "placeorder with empty cart and no address", session: sessionWith(false, false, PaymentPayPal), auth: true, requested: StepPlaceOrder,
			want: Transition{Requested: StepPlaceOrder, Step: StepShipping, Redirected: true, Reason: "shipping address required"},
		},
		{
			name: "payment anonymous", session: sessionWith(true, true, ""), requested: StepPayment,
			want: Transition{Requested: StepPayment, Step: StepLogin, Redirected: true, Reason: "login required", ReturnTo: StepPayment},
		},
		{
			name: "payment ready", session: sessionWith(true, true, ""), auth: true, requested: StepPayment,
			want: Transition{Requested: StepPayment, Step: StepPayment},
		},
		{
			name: "placeorder anonymous", session: sessionWith(true, true, PaymentPayPal), requested: StepPlaceOrder,
			want: Transition{Requested: StepPlaceOrder, Step: StepLogin, Redirected: true, Reason: "login required", ReturnTo: StepPlaceOrder},
		},
		{
			name: "placeorder without method", session: sessionWith(true, true, ""), auth: true, requested: StepPlaceOrder,
			want: Transition{Requested: StepPlaceOrder, Step: StepPayment, Redirected: true, Reason: "payment method required"},
		},
		{
			name: "placeorder ready", session: sessionWith(true, true, PaymentStripe), auth: true, requested: StepPlaceOrder,
			want: Transition{Requested: StepPlaceOrder, Step: StepPlaceOrder},
		},
		{
			name: "completed never entered directly", session: sessionWith(true, true, PaymentStripe), auth: true, requested: StepCompleted,
			want: Transition{Requested: StepCompleted, Step: StepPlaceOrder, Redirected: true, Reason: "order has not been placed"},
		},
		{
			name: "completed follows placeorder gates", session: sessionWith(true, false, ""), auth: true, requested: StepCompleted,
			want: Transition{Requested: StepCompleted, Step: StepShipping, Redirected: true, Reason: "shipping address required"},
		},
		{
			name: "login always enterable", session: sessionWith(false, false, ""), requested: StepLogin,
			want: Transition{Requested: StepLogin, Step: StepLogin},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before := *tc.session
			got := tc.session.Enter(tc.requested, tc.auth)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, before, *tc.session, "Enter must not mutate the session")
		})
	}
}

func TestApply(t *testing.T) {
	s := sessionWith(true, true, "")
	s.Step = StepShipping

	t.Run("login redirect keeps step", func(t *testing.T) {
		s.Apply(s.Enter(StepPayment, false))
		assert.Equal(t, StepShipping, s.Step)
		assert.Equal(t, StepPayment, s.ReturnTo)
	})

	t.Run("successful entry moves and clears return", func(t *testing.T) {
		s.Apply(s.Enter(StepPayment, true))
		assert.Equal(t, StepPayment, s.Step)
		assert.Empty(t, s.ReturnTo)
	})

	t.Run("back navigation keeps saved fields", func(t *testing.T) {
		require.NoError(t, s.SavePaymentMethod("Stripe"))
		s.Apply(s.Enter(StepCart, true))
		assert.Equal(t, StepCart, s.Step)
		assert.Equal(t, PaymentStripe, s.PaymentMethod)
		assert.True(t, s.ShippingAddress.Complete())
		assert.Len(t, s.CartItems, 1)
	})
}

func TestAddress_Complete(t *testing.T) {
	var nilAddr *Address
	assert.False(t, nilAddr.Complete())
	assert.False(t, (&Address{City: "x"}).Complete())
	a := testAddress
	assert.True(t, a.Complete())
}

func TestComplete(t *testing.T) {
	s := sessionWith(true, true, PaymentPayPal)
	s.ReturnTo = StepPlaceOrder
	s.Complete()
	assert.Equal(t, StepCompleted, s.Step)
	assert.Empty(t, s.ReturnTo)
}
