package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCartAggregates(t *testing.T) {
	items := []CartItem{
		{ProductID: 1, Quantity: 2, TotalPrice: decimal.RequireFromString("199.98")},
		{ProductID: 3, Quantity: 1, TotalPrice: decimal.RequireFromString("50.00")},
	}

	if got := TotalQuantity(items); got != 3 {
		t.Errorf("Expected quantity 3, got %d", got)
	}
	if got := CartTotal(items); !got.Equal(decimal.RequireFromString("249.98")) {
		t.Errorf("Expected total 249.98, got %s", got)
	}

	lines := OrderLines(items)
	if len(lines) != 2 || lines[0] != (OrderLine{ProductID: 1, Quantity: 2}) || lines[1] != (OrderLine{ProductID: 3, Quantity: 1}) {
		t.Errorf("Unexpected order lines: %+v", lines)
	}
}

func TestOrderCancellable(t *testing.T) {
	for _, status := range OrderStatuses() {
		o := Order{Status: status}
		if got := o.Cancellable(); got != (status == OrderStatusCreated) {
			t.Errorf("Status %s: expected cancellable=%v, got %v", status, status == OrderStatusCreated, got)
		}
	}
	if OrderStatus("SHIPPED").Valid() {
		t.Error("Expected unknown status to be invalid")
	}
}

func TestPagingNormalize(t *testing.T) {
	p := Paging{Page: -1}.Normalize()
	if p != DefaultPaging() {
		t.Errorf("Expected defaults, got %+v", p)
	}

	p = Paging{Page: 2, SizePerPage: 20, Sort: Sort{Field: "price", Direction: SortDesc}}.Normalize()
	if p.Page != 2 || p.SizePerPage != 20 || p.Sort.Field != "price" || p.Sort.Direction != SortDesc {
		t.Errorf("Expected explicit paging kept, got %+v", p)
	}
}

func TestNewProductFormVariants(t *testing.T) {
	tests := []struct {
		in       ProductType
		wantType ProductType
	}{
		{ProductTypeTire, ProductTypeTire},
		{ProductTypeRim, ProductTypeRim},
		{ProductTypeAccessory, ProductTypeAccessory},
		{ProductTypeAll, ProductTypeAll},
		{"UNKNOWN", ProductTypeAll},
	}

	for _, tt := range tests {
		form := NewProductForm(tt.in)
		if form.Fields().Type != tt.wantType {
			t.Errorf("%s: expected type %s, got %s", tt.in, tt.wantType, form.Fields().Type)
		}
		switch form.(type) {
		case *TireForm, *RimForm, *AccessoryForm, *GenericProductForm:
		default:
			t.Errorf("%s: unexpected form %T", tt.in, form)
		}
	}
}

func TestTireFormJSONFlattensFields(t *testing.T) {
	form := &TireForm{
		ProductFields: ProductFields{Name: "Alpin 6", Price: decimal.RequireFromString("399.99"), Stock: 4, Type: ProductTypeTire},
		Season:        "WINTER",
		Size:          "205/55R16",
	}

	data, err := json.Marshal(form)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out["name"] != "Alpin 6" || out["season"] != "WINTER" || out["type"] != "TIRE" {
		t.Errorf("Unexpected payload: %s", data)
	}
}

func TestLocalDateTimeParsing(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{`"2025-04-10T15:30:00"`, time.Date(2025, 4, 10, 15, 30, 0, 0, time.UTC)},
		{`"2025-04-10T15:30:00.123456"`, time.Date(2025, 4, 10, 15, 30, 0, 123456000, time.UTC)},
		{`"2025-04-10T15:30"`, time.Date(2025, 4, 10, 15, 30, 0, 0, time.UTC)},
		{`"2025-04-10T17:30:00+02:00"`, time.Date(2025, 4, 10, 15, 30, 0, 0, time.UTC)},
		{`null`, time.Time{}},
	}

	for _, tt := range tests {
		var d LocalDateTime
		if err := json.Unmarshal([]byte(tt.input), &d); err != nil {
			t.Errorf("Input %s: unexpected error %v", tt.input, err)
			continue
		}
		if !d.Equal(tt.want) {
			t.Errorf("Input %s: expected %v, got %v", tt.input, tt.want, d.Time)
		}
	}

	var d LocalDateTime
	if err := json.Unmarshal([]byte(`"10/04/2025"`), &d); err == nil {
		t.Error("Expected error for unknown date format")
	}
}

func TestOrderDecodesBackendTimestamps(t *testing.T) {
	body := `{"id":7,"status":"CONFIRMED","totalAmount":120.00,"items":[],` +
		`"createdAt":"2025-04-10T15:30:00","isPaid":true,"paidAt":"2025-04-11T09:05:12.5"}`

	var order Order
	if err := json.Unmarshal([]byte(body), &order); err != nil {
		t.Fatalf("Failed to decode order: %v", err)
	}
	if !order.CreatedAt.Equal(time.Date(2025, 4, 10, 15, 30, 0, 0, time.UTC)) {
		t.Errorf("Unexpected createdAt %v", order.CreatedAt.Time)
	}
	if order.PaidAt == nil || !order.PaidAt.Equal(time.Date(2025, 4, 11, 9, 5, 12, 500000000, time.UTC)) {
		t.Errorf("Unexpected paidAt %v", order.PaidAt)
	}

	out, err := json.Marshal(order)
	if err != nil {
		t.Fatalf("Failed to encode order: %v", err)
	}
	var again Order
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("Failed to decode re-encoded order: %v", err)
	}
	if !again.CreatedAt.Equal(order.CreatedAt.Time) || !again.PaidAt.Equal(order.PaidAt.Time) {
		t.Errorf("Timestamps changed on re-encode: %s", out)
	}
}
