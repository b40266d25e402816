package tool

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	discountThreshold = 18.0
	discountRate      = 0.15
	deliveryFee       = 2.99
	discountedFee     = 1.69

	minOrderNumber = 10000
	maxOrderNumber = 99999
	minEtaMinutes  = 30
	maxEtaMinutes  = 45

	deliveryTimeLayout = "03:04 PM"
)

type (
	// Rand is the source of order numbers and ETAs. *rand.Rand satisfies it.
	Rand interface {
		IntN(n int) int
	}

	// Orders holds the tools that depend on randomness or the wall clock.
	Orders struct {
		rand Rand
		now  func() time.Time
	}

	OrdersOption func(*Orders)

	globalRand struct{}
)

func (globalRand) IntN(n int) int {
	return rand.IntN(n)
}

func WithRand(r Rand) OrdersOption {
	return func(o *Orders) {
		o.rand = r
	}
}

func WithClock(now func() time.Time) OrdersOption {
	return func(o *Orders) {
		o.now = now
	}
}

func NewOrders(opts ...OrdersOption) *Orders {
	o := &Orders{
		rand: globalRand{},
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CalculateTotals applies a 15% discount from a subtotal of 18 and reduces
// the delivery fee whenever a discount applies.
func CalculateTotals(items []CartItem) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price
	}

	fee := deliveryFee
	var discount float64
	if subtotal >= discountThreshold {
		discount = subtotal * discountRate
	}
	if discount > 0 {
		fee = discountedFee
	}

	return Totals{
		Subtotal:    round2(subtotal),
		Discount:    round2(discount),
		DeliveryFee: round2(fee),
		Total:       round2(subtotal - discount + fee),
	}
}

func (t Totals) String() string {
	return fmt.Sprintf("Subtotal: £%.2f, Discount: £%.2f, Delivery fee: £%.2f, Total: £%.2f",
		t.Subtotal, t.Discount, t.DeliveryFee, t.Total)
}

func AddToCart(req AddToCartRequest) *AddToCartResponse {
	if req.RestaurantName == "" || len(req.Items) == 0 {
		return &AddToCartResponse{Error: "Missing restaurant name or items"}
	}

	return &AddToCartResponse{
		Restaurant: req.RestaurantName,
		Items:      req.Items,
		Message:    fmt.Sprintf("Added %d items to cart from %s", len(req.Items), req.RestaurantName),
	}
}

func CalculateTotal(req CalculateTotalRequest) *CalculateTotalResponse {
	if len(req.CartItems) == 0 {
		return &CalculateTotalResponse{Error: "Cart is empty"}
	}

	totals := CalculateTotals(req.CartItems)
	return &CalculateTotalResponse{
		Totals:  &totals,
		Message: totals.String(),
	}
}

func PayOrder(req PayOrderRequest) *PayOrderResponse {
	if req.OrderID == "" || req.PaymentMethod == "" {
		return &PayOrderResponse{Error: "Missing order_id or payment_method"}
	}

	return &PayOrderResponse{
		OrderID:       req.OrderID,
		Status:        StatusPaid,
		PaymentMethod: req.PaymentMethod,
		Message:       fmt.Sprintf("Order %s has been paid using %s.", req.OrderID, req.PaymentMethod),
	}
}

func (o *Orders) ProcessOrder(req ProcessOrderRequest) *ProcessOrderResponse {
	if req.PostalCode == "" || req.PaymentMethod == "" || len(req.CartItems) == 0 {
		return &ProcessOrderResponse{Error: "Missing required order details"}
	}

	orderID := fmt.Sprintf("ORD-%d", minOrderNumber+o.rand.IntN(maxOrderNumber-minOrderNumber+1))
	return &ProcessOrderResponse{
		OrderID:       orderID,
		PostalCode:    req.PostalCode,
		DeliveryTime:  req.DeliveryTime,
		PaymentMethod: req.PaymentMethod,
		Items:         req.CartItems,
		Status:        StatusConfirmed,
		Message: fmt.Sprintf("Order %s has been confirmed for delivery to %s at %s. Payment method: %s.",
			orderID, req.PostalCode, req.DeliveryTime, req.PaymentMethod),
	}
}

func (o *Orders) GenerateOrderSummary(req GenerateOrderSummaryRequest) *GenerateOrderSummaryResponse {
	if req.RestaurantName == "" || len(req.Items) == 0 || req.PostalCode == "" {
		return &GenerateOrderSummaryResponse{Error: "Missing required order details"}
	}

	totals := CalculateTotals(req.Items)
	eta := minEtaMinutes + o.rand.IntN(maxEtaMinutes-minEtaMinutes+1)

	deliveryTime := ""
	if req.DeliveryTime != nil {
		deliveryTime = *req.DeliveryTime
	}
	if deliveryTime == "" {
		deliveryTime = o.now().Add(time.Duration(eta) * time.Minute).Format(deliveryTimeLayout)
	}

	var sb strings.Builder
	sb.WriteString("Order Summary:\n-------------\n")
	fmt.Fprintf(&sb, "Restaurant: %s\n", req.RestaurantName)
	fmt.Fprintf(&sb, "Delivery to: %s\n", req.PostalCode)
	fmt.Fprintf(&sb, "Scheduled delivery: %s\n", deliveryTime)
	fmt.Fprintf(&sb, "Estimated arrival: %d minutes\n\n", eta)
	sb.WriteString("Items:\n")
	for _, item := range req.Items {
		name := item.Name
		if name == "" {
			name = "Unknown item"
		}
		fmt.Fprintf(&sb, "- %s: £%.2f\n", name, item.Price)
	}
	fmt.Fprintf(&sb, "\nSubtotal: £%.2f\n", totals.Subtotal)
	fmt.Fprintf(&sb, "Discount: £%.2f\n", totals.Discount)
	fmt.Fprintf(&sb, "Delivery fee: £%.2f\n", totals.DeliveryFee)
	fmt.Fprintf(&sb, "Total: £%.2f\n\n", totals.Total)
	sb.WriteString("Please confirm if this order summary is correct.")

	return &GenerateOrderSummaryResponse{
		Restaurant:       req.RestaurantName,
		Items:            req.Items,
		PostalCode:       req.PostalCode,
		DeliveryTime:     deliveryTime,
		Totals:           &totals,
		EtaMinutes:       eta,
		FormattedSummary: sb.String(),
	}
}
