package domain

import (
	"time"

	"github.com/google/uuid"
)

// Step is a position in the checkout flow.
type Step string

const (
	StepCart       Step = "cart"
	StepShipping   Step = "shipping"
	StepPayment    Step = "payment"
	StepPlaceOrder Step = "placeorder"
	StepCompleted  Step = "completed"

	// StepLogin is not part of the flow. Sessions are sent there when a step
	// needs an authenticated user, with ReturnTo naming the step to resume.
	StepLogin Step = "login"
)

// ParseStep validates a step name.
func ParseStep(s string) (Step, error) {
	switch st := Step(s); st {
	case StepCart, StepShipping, StepPayment, StepPlaceOrder, StepCompleted, StepLogin:
		return st, nil
	}
	return "", ErrUnknownStep
}

// PaymentMethod is one of the supported ways to pay.
type PaymentMethod string

const (
	PaymentPayPal PaymentMethod = "PayPal"
	PaymentStripe PaymentMethod = "Stripe"
)

// DefaultPaymentMethod is used when the client submits no choice.
const DefaultPaymentMethod = PaymentPayPal

// ParsePaymentMethod maps an empty value to the default and rejects anything
// outside the supported set.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch m := PaymentMethod(raw); m {
	case "":
		return DefaultPaymentMethod, nil
	case PaymentPayPal, PaymentStripe:
		return m, nil
	}
	return "", ErrInvalidPaymentMethod
}

// Address is a shipping address.
type Address struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Complete reports whether every field is filled in.
func (a *Address) Complete() bool {
	return a != nil && a.Address != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}

// CartItem is a product line with the catalog values captured when it was
// added.
type CartItem struct {
	Product      string  `json:"product"`
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	Price        float64 `json:"price"`
	CountInStock int     `json:"countInStock"`
	Qty          int     `json:"qty"`
}

// CheckoutSession is the state a shopper builds up on the way to an order.
type CheckoutSession struct {
	ID              string        `json:"id"`
	Step            Step          `json:"step"`
	CartItems       []CartItem    `json:"cartItems"`
	ShippingAddress *Address      `json:"shippingAddress,omitempty"`
	PaymentMethod   PaymentMethod `json:"paymentMethod,omitempty"`
	ReturnTo        Step          `json:"returnTo,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// NewCheckoutSession starts an empty session at the cart.
func NewCheckoutSession() *CheckoutSession {
	now := time.Now().UTC()
	return &CheckoutSession{
		ID:        uuid.NewString(),
		Step:      StepCart,
		CartItems: []CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetCartItems replaces the cart. Saved address and payment method are kept.
func (s *CheckoutSession) SetCartItems(items []CartItem) {
	if items == nil {
		items = []CartItem{}
	}
	s.CartItems = items
	s.touch()
}

// SetShippingAddress saves the address.
func (s *CheckoutSession) SetShippingAddress(a Address) {
	s.ShippingAddress = &a
	s.touch()
}

// SavePaymentMethod validates and stores the payment method. An empty value
// selects DefaultPaymentMethod.
func (s *CheckoutSession) SavePaymentMethod(raw string) error {
	m, err := ParsePaymentMethod(raw)
	if err != nil {
		return err
	}
	s.PaymentMethod = m
	s.touch()
	return nil
}

func (s *CheckoutSession) touch() {
	s.UpdatedAt = time.Now().UTC()
}

// Transition is the outcome of asking to enter a step.
type Transition struct {
	Requested  Step   `json:"requested"`
	Step       Step   `json:"step"`
	Redirected bool   `json:"redirected"`
	Reason     string `json:"reason,omitempty"`
	ReturnTo   Step   `json:"returnTo,omitempty"`
}

// gate is an entry precondition. It returns the step to redirect to and why,
// or "" when satisfied.
type gate func(s *CheckoutSession, authenticated bool) (Step, string)

func requireCart(s *CheckoutSession, _ bool) (Step, string) {
	if len(s.CartItems) == 0 {
		return StepCart, "cart is empty"
	}
	return "", ""
}

func requireAddress(s *CheckoutSession, _ bool) (Step, string) {
	if !s.ShippingAddress.Complete() {
		return StepShipping, "shipping address required"
	}
	return "", ""
}

func requireAuth(_ *CheckoutSession, authenticated bool) (Step, string) {
	if !authenticated {
		return StepLogin, "login required"
	}
	return "", ""
}

func requirePaymentMethod(s *CheckoutSession, _ bool) (Step, string) {
	if s.PaymentMethod == "" {
		return StepPayment, "payment method required"
	}
	return "", ""
}

// entryGates lists, per step, the gates checked on entry in order. The first
// failing gate decides the redirect. A missing shipping address always sends
// payment and placeorder back to shipping, whatever the cart holds. Steps not
// listed here cannot be entered directly.
var entryGates = map[Step][]gate{
	StepCart:       nil,
	StepLogin:      nil,
	StepShipping:   {requireCart},
	StepPayment:    {requireAddress, requireCart, requireAuth},
	StepPlaceOrder: {requireAddress, requireCart, requireAuth, requirePaymentMethod},
}

// Enter evaluates the gates of the requested step against the session. It
// does not modify the session; see Apply.
func (s *CheckoutSession) Enter(requested Step, authenticated bool) Transition {
	gates, ok := entryGates[requested]
	if !ok {
		// Completed is only reached by placing the order. Send the caller to
		// wherever placing it would currently land.
		t := s.Enter(StepPlaceOrder, authenticated)
		t.Requested = requested
		if !t.Redirected {
			t.Redirected = true
			t.Reason = "order has not been placed"
		}
		return t
	}

	for _, g := range gates {
		if to, reason := g(s, authenticated); to != "" {
			t := Transition{Requested: requested, Step: to, Redirected: true, Reason: reason}
			if to == StepLogin {
				t.ReturnTo = requested
			}
			return t
		}
	}
	return Transition{Requested: requested, Step: requested}
}

// Apply records the result of a transition. A login redirect keeps the
// current step and remembers where to return.
func (s *CheckoutSession) Apply(t Transition) {
	if t.Step == StepLogin {
		s.ReturnTo = t.ReturnTo
	} else {
		s.Step = t.Step
		s.ReturnTo = ""
	}
	s.touch()
}

// Complete marks the session as done once its order was accepted.
func (s *CheckoutSession) Complete() {
	s.Step = StepCompleted
	s.ReturnTo = ""
	s.touch()
}
