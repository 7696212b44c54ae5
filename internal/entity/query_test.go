package entity

import (
	"errors"
	"testing"
)

func TestQueryClauseOrder(t *testing.T) {
	query, err := NewQuery("invoices").
		Eq("user_id", "u1").
		Eq("status", "PAID").
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := `type = "invoices" && user_id = "u1" && status = "PAID"`
	if query != want {
		t.Fatalf("query = %q, want %q", query, want)
	}
}

func TestQuerySkipsEmptyAndNil(t *testing.T) {
	query, err := NewQuery("users").
		Eq("civic_sub", "").
		EqBool("is_active_num", nil).
		Gte("created_at_epoch", nil).
		Lte("created_at_epoch", nil).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if want := `type = "users"`; query != want {
		t.Fatalf("query = %q, want %q", query, want)
	}
}

func TestQueryBoundsAndBools(t *testing.T) {
	active := true
	gte := int64(100)
	lte := int64(200)
	query, err := NewQuery("users").
		EqBool("is_active_num", &active).
		Gte("created_at_epoch", &gte).
		Lte("created_at_epoch", &lte).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := `type = "users" && is_active_num = 1 && created_at_epoch >= 100 && created_at_epoch <= 200`
	if query != want {
		t.Fatalf("query = %q, want %q", query, want)
	}
}

func TestQueryRejectsUnsafeLiterals(t *testing.T) {
	for _, value := range []string{`a"b`, "a\nb", "\x01"} {
		_, err := NewQuery("users").Eq("email_lc", value).Build()
		if !errors.Is(err, ErrUnsafeQueryValue) {
			t.Fatalf("value %q: expected ErrUnsafeQueryValue, got %v", value, err)
		}
	}
}

func TestQuoteAllowsPlainValues(t *testing.T) {
	quoted, err := Quote("alice@example.com")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quoted != `"alice@example.com"` {
		t.Fatalf("quoted = %q", quoted)
	}
}
