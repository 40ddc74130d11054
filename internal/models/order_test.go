package models

import (
	"strings"
	"testing"
	"time"
)

func TestOrderItem_IsPending(t *testing.T) {
	tests := []struct {
		name   string
		status ItemStatus
		want   bool
	}{
		{"explicit pending", ItemStatusPending, true},
		{"empty legacy status", "", true},
		{"legacy in-the-kitchen status", "in-the-kitchen", true},
		{"ready", ItemStatusReady, false},
		{"unknown status", "plated", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := OrderItem{Status: tt.status}
			if got := item.IsPending(); got != tt.want {
				t.Errorf("IsPending() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrder_NextPending(t *testing.T) {
	order := Order{
		Items: []OrderItem{
			{Name: "Burger", Status: ItemStatusReady},
			{Name: "Fries", Status: ItemStatusPending},
			{Name: "Soup", Status: ItemStatusPending},
		},
		NewItems: []OrderItem{
			{Name: "Extra Sauce", Status: ItemStatusPending, Supplemental: true},
		},
	}

	item := order.NextPending()
	if item == nil || item.Name != "Fries" {
		t.Fatalf("expected Fries, got %+v", item)
	}

	// Pointer mutations land on the order document
	item.Status = ItemStatusReady
	if order.Items[1].Status != ItemStatusReady {
		t.Errorf("mutation did not reach the order")
	}
}

func TestOrder_NextPending_SupplementalAfterPrimary(t *testing.T) {
	order := Order{
		Items: []OrderItem{
			{Name: "Burger", Status: ItemStatusReady},
		},
		NewItems: []OrderItem{
			{Name: "Extra Fries", Status: ItemStatusPending, Supplemental: true},
		},
	}

	item := order.NextPending()
	if item == nil || item.Name != "Extra Fries" {
		t.Fatalf("expected Extra Fries, got %+v", item)
	}
}

func TestOrder_NextPending_NoneLeft(t *testing.T) {
	order := Order{
		Items: []OrderItem{
			{Name: "Burger", Status: ItemStatusReady},
		},
	}

	if item := order.NextPending(); item != nil {
		t.Errorf("expected nil, got %+v", item)
	}
}

func TestOrder_AllReady(t *testing.T) {
	order := Order{
		Items: []OrderItem{
			{Name: "Burger", Status: ItemStatusReady},
		},
		NewItems: []OrderItem{
			{Name: "Extra Fries", Status: ItemStatusPending},
		},
	}

	if order.AllReady() {
		t.Errorf("expected not all ready with pending supplemental item")
	}

	order.NewItems[0].Status = ItemStatusReady
	if !order.AllReady() {
		t.Errorf("expected all ready")
	}
}

func TestCreateOrderRequest_Validate(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	tests := []struct {
		name    string
		req     CreateOrderRequest
		wantErr string
	}{
		{
			name: "valid request",
			req: CreateOrderRequest{
				TableNumber: intPtr(5),
				Pax:         intPtr(2),
				Items:       []CreateOrderItemRequest{{Name: "Burger", Quantity: 2}},
			},
		},
		{
			name:    "empty items",
			req:     CreateOrderRequest{},
			wantErr: "items array cannot be empty",
		},
		{
			name: "too many items",
			req: CreateOrderRequest{
				Items: make21Items(),
			},
			wantErr: "more than 20 items",
		},
		{
			name: "missing item name",
			req: CreateOrderRequest{
				Items: []CreateOrderItemRequest{{Name: "", Quantity: 1}},
			},
			wantErr: "items[0].name is required",
		},
		{
			name: "item name too long",
			req: CreateOrderRequest{
				Items: []CreateOrderItemRequest{{Name: strings.Repeat("x", 51), Quantity: 1}},
			},
			wantErr: "must not exceed 50 characters",
		},
		{
			name: "zero quantity",
			req: CreateOrderRequest{
				Items: []CreateOrderItemRequest{{Name: "Burger", Quantity: 0}},
			},
			wantErr: "quantity must be between 1 and 10",
		},
		{
			name: "table number out of range",
			req: CreateOrderRequest{
				TableNumber: intPtr(101),
				Items:       []CreateOrderItemRequest{{Name: "Burger", Quantity: 1}},
			},
			wantErr: "table_number must be between 1 and 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func make21Items() []CreateOrderItemRequest {
	items := make([]CreateOrderItemRequest, 21)
	for i := range items {
		items[i] = CreateOrderItemRequest{Name: "Burger", Quantity: 1}
	}
	return items
}

func TestGenerateOrderNumber(t *testing.T) {
	date := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

	got := GenerateOrderNumber(date, 7)
	if got != "ORD_20250315_007" {
		t.Errorf("GenerateOrderNumber() = %s, want ORD_20250315_007", got)
	}

	if short := FormatOrderNumber(7); short != "#007" {
		t.Errorf("FormatOrderNumber() = %s, want #007", short)
	}
}
