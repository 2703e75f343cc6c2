package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestEventsRouteByKind(t *testing.T) {
	if got := (StayCheckedOutEvent{}).RoutingKey(); got != "stay.checked_out" {
		t.Fatalf("unexpected checkout routing key %q", got)
	}
	if got := (PaymentReceivedEvent{}).RoutingKey(); got != "payment.received" {
		t.Fatalf("unexpected payment routing key %q", got)
	}
}

func TestEncodeKeepsDecimalPrecision(t *testing.T) {
	body, err := Encode(StayCheckedOutEvent{
		StayID:       "stay-1",
		BranchID:     "anna-salai",
		RoomNumber:   "101",
		Subtotal:     decimal.NewFromInt(13250),
		TaxAmount:    decimal.NewFromInt(2385),
		Total:        decimal.NewFromInt(15635),
		CheckedOutAt: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["total"] != "15635" {
		t.Fatalf("expected total encoded as decimal string, got %v", decoded["total"])
	}
	if decoded["room_number"] != "101" {
		t.Fatalf("expected room 101, got %v", decoded["room_number"])
	}
}

func TestNoopPublisherAcceptsEvents(t *testing.T) {
	if err := (NoopPublisher{}).Publish(context.Background(), PaymentReceivedEvent{}); err != nil {
		t.Fatalf("noop publish: %v", err)
	}
}
