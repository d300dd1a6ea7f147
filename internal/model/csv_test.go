package model

import (
	"reflect"
	"strings"
	"testing"
)

func TestEncodeCSV_Header(t *testing.T) {
	data, err := EncodeCSV(Table{})
	if err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}
	first := strings.SplitN(string(data), "\n", 2)[0]
	if first != "Date,Weekday,Name,Activity,Time" {
		t.Errorf("header = %q", first)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	var tbl Table
	tbl.Append(
		NewRecord(date(2025, 3, 5), "Vinoth", "gym, weights", "7pm"),
		NewRecord(nil, "Anu", `say "hi"`, ""),
		NewRecord(date(2025, 3, 12), "Sam", "swim", "6:30am"),
	)

	data, err := EncodeCSV(tbl)
	if err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}

	got, err := DecodeCSV(data)
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}

	if !reflect.DeepEqual(got, tbl) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got.Rows, tbl.Rows)
	}
}

func TestDecodeCSV_Empty(t *testing.T) {
	for _, in := range []string{"", "  \n "} {
		got, err := DecodeCSV([]byte(in))
		if err != nil {
			t.Fatalf("DecodeCSV(%q): %v", in, err)
		}
		if len(got.Rows) != 0 {
			t.Errorf("DecodeCSV(%q) = %d rows, want 0", in, len(got.Rows))
		}
	}
}

func TestDecodeCSV_Malformed(t *testing.T) {
	_, err := DecodeCSV([]byte("Date,Name\n\"unclosed,x"))
	if err == nil {
		t.Fatal("expected error for unbalanced quote")
	}
}
