package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-01")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.March || d.Day() != 1 {
		t.Errorf("unexpected date: %v", d)
	}
	if d.String() != "2024-03-01" {
		t.Errorf("String() = %q, want 2024-03-01", d.String())
	}
}

func TestParseDateRejectsOtherLayouts(t *testing.T) {
	for _, s := range []string{"", "2024-3-1", "01-03-2024", "2024-03-01T00:00:00Z", "2024-13-01", "not a date"} {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) should fail", s)
		}
	}
}

func TestDateOf(t *testing.T) {
	stamp := time.Date(2024, time.March, 1, 23, 59, 59, 123, time.UTC)
	d := DateOf(stamp)
	if d.String() != "2024-03-01" {
		t.Errorf("DateOf dropped to %q", d.String())
	}
	if h, m, sec := d.Clock(); h != 0 || m != 0 || sec != 0 {
		t.Errorf("time component survived: %02d:%02d:%02d", h, m, sec)
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, time.March, 1)

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2024-03-01"` {
		t.Fatalf("marshaled as %s", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Errorf("round trip changed the date: %v != %v", back, d)
	}
}

func TestDateUnmarshalRejectsNonStrings(t *testing.T) {
	for _, data := range []string{`20240301`, `null`, `{"y":2024}`, `"2024-03-01T00:00:00Z"`, `"03/01/2024"`} {
		var d Date
		if err := d.UnmarshalJSON([]byte(data)); err == nil {
			t.Errorf("UnmarshalJSON(%s) should fail", data)
		}
	}
}

func TestDateValue(t *testing.T) {
	v, err := NewDate(2024, time.March, 1).Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != "2024-03-01" {
		t.Errorf("Value() = %v, want 2024-03-01", v)
	}
}

func TestDateScan(t *testing.T) {
	want := "2024-03-01"

	tests := []struct {
		name string
		src  any
	}{
		{"time.Time", time.Date(2024, time.March, 1, 15, 4, 5, 0, time.FixedZone("CET", 3600))},
		{"bytes", []byte("2024-03-01")},
		{"string", "2024-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			if err := d.Scan(tt.src); err != nil {
				t.Fatalf("Scan(%T): %v", tt.src, err)
			}
			if d.String() != want {
				t.Errorf("Scan(%T) = %q, want %q", tt.src, d.String(), want)
			}
		})
	}
}

func TestDateScanNil(t *testing.T) {
	d := NewDate(2024, time.March, 1)
	if err := d.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if !d.IsZero() {
		t.Errorf("Scan(nil) should zero the date, got %v", d)
	}
}

func TestDateScanUnsupportedType(t *testing.T) {
	var d Date
	if err := d.Scan(42); err == nil {
		t.Error("Scan(int) should fail")
	}
}
