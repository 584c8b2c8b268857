package journal

import "testing"

func TestEntryOK(t *testing.T) {
	if !(Entry{Qty: 1, Type: MoveAdd}).OK() {
		t.Error("Expected entry without error to be OK")
	}
	if (Entry{Qty: 1, Type: MoveSubtract, Error: "insufficient stock"}).OK() {
		t.Error("Expected entry with error not to be OK")
	}
}
