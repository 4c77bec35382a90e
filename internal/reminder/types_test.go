package reminder

import (
	"testing"
	"time"
)

func TestParseDueInstant(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		clock string
		want  string
		ok    bool
	}{
		{"dash date", "2025-06-01", "09:00:00", "2025-06-01 09:00:00", true},
		{"slash date", "2025/06/01", "09:00:00", "2025-06-01 09:00:00", true},
		{"short time", "2025-06-01", "09:30", "2025-06-01 09:30:00", true},
		{"empty time is midnight", "2025-06-01", "", "2025-06-01 00:00:00", true},
		{"padded", " 2025-06-01 ", " 09:00:00 ", "2025-06-01 09:00:00", true},
		{"missing date", "", "09:00:00", "", false},
		{"bad date", "2025-13-01", "09:00:00", "", false},
		{"bad time", "2025-06-01", "9 am", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDueInstant(tt.date, tt.clock, time.UTC)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if !ok {
				return
			}
			if s := got.Format("2006-01-02 15:04:05"); s != tt.want {
				t.Errorf("expected %s, got %s", tt.want, s)
			}
		})
	}
}

func TestParseDueInstant_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*60*60)
	got, ok := ParseDueInstant("2025-06-01", "09:00:00", loc)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if want := time.Date(2025, 6, 1, 1, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got.UTC())
	}
}

func TestDueBy(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	if !(Reminder{Category: CategoryBudget}).DueBy(now, time.UTC) {
		t.Error("expected budget reminder to be due")
	}
	if !(Reminder{Category: "promo"}).DueBy(now, time.UTC) {
		t.Error("expected unknown category to be due")
	}
	if !manual(1, "2025-06-01", "09:00:00").DueBy(now, time.UTC) {
		t.Error("expected reminder due exactly now to be due")
	}
	if manual(1, "2025-06-01", "09:00:01").DueBy(now, time.UTC) {
		t.Error("expected future reminder not to be due")
	}
	if manual(1, "", "").DueBy(now, time.UTC) {
		t.Error("expected malformed reminder never to be due")
	}
}
