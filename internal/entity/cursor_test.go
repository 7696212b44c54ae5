package entity

import "testing"

func TestCursorRoundTrip(t *testing.T) {
	for _, offset := range []int{1, 50, 499, 12345} {
		cursor := EncodeCursor(offset)
		if cursor == "" {
			t.Fatalf("offset %d: expected non-empty cursor", offset)
		}
		if got := DecodeCursor(cursor); got != offset {
			t.Fatalf("offset %d: round-tripped to %d", offset, got)
		}
	}
}

func TestEncodeCursorFirstPage(t *testing.T) {
	if got := EncodeCursor(0); got != "" {
		t.Fatalf("offset 0: expected empty cursor, got %q", got)
	}
	if got := EncodeCursor(-3); got != "" {
		t.Fatalf("negative offset: expected empty cursor, got %q", got)
	}
}

func TestDecodeCursorMalformed(t *testing.T) {
	cases := []string{"", "!!not-base64!!", "bm90LWEtbnVtYmVy", "LTU"} // "not-a-number", "-5"
	for _, cursor := range cases {
		if got := DecodeCursor(cursor); got != 0 {
			t.Fatalf("cursor %q: expected 0, got %d", cursor, got)
		}
	}
}
