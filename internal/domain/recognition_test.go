package domain

import (
	"errors"
	"testing"
	"time"
)

func TestActiveOnBounds(t *testing.T) {
	day := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		rec    RecognitionRecord
		active bool
	}{
		{"no bounds", RecognitionRecord{}, true},
		{"started yesterday open end", RecognitionRecord{StartDate: "14/03/2026"}, true},
		{"starts today", RecognitionRecord{StartDate: "15/03/2026"}, true},
		{"ends today", RecognitionRecord{EndDate: "15/03/2026"}, true},
		{"starts tomorrow", RecognitionRecord{StartDate: "16/03/2026"}, false},
		{"ended yesterday", RecognitionRecord{EndDate: "14/03/2026"}, false},
		// Lexicographic DD/MM/YYYY ordering would call this active.
		{"ended previous year", RecognitionRecord{EndDate: "20/12/2025"}, false},
		{"starts next year", RecognitionRecord{StartDate: "01/01/2027"}, false},
		{"no leading zeros", RecognitionRecord{StartDate: "1/3/2026", EndDate: "31/3/2026"}, true},
	}
	for _, tc := range cases {
		got, err := tc.rec.ActiveOn(day)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != tc.active {
			t.Fatalf("%s: active=%v, want %v", tc.name, got, tc.active)
		}
	}
}

func TestActiveOnRejectsUnparsableDates(t *testing.T) {
	day := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, rec := range []RecognitionRecord{
		{StartDate: "2026-03-01"},
		{EndDate: "31/02/2026x"},
		{EndDate: "13/13/2026"},
		{StartDate: "01/01/2100", EndDate: "garbage"},
		{StartDate: "garbage", EndDate: "01/01/2000"},
	} {
		active, err := rec.ActiveOn(day)
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("expected ErrInvalidDate for %+v, got %v", rec, err)
		}
		if active {
			t.Fatalf("record with invalid date must not be active: %+v", rec)
		}
	}
}

func TestTodayTruncatesInLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	now := time.Date(2026, 3, 15, 21, 30, 0, 0, time.UTC)
	got := Today(now, loc)
	if got.Format("2006-01-02 15:04") != "2026-03-16 00:00" {
		t.Fatalf("unexpected today: %s", got)
	}
}

func TestPrimaryLDAP(t *testing.T) {
	rec := RecognitionRecord{LDAP: "  JDoe , asmith"}
	if got := rec.PrimaryLDAP(); got != "jdoe" {
		t.Fatalf("PrimaryLDAP() = %q, want jdoe", got)
	}
	if got := (RecognitionRecord{}).PrimaryLDAP(); got != "" {
		t.Fatalf("PrimaryLDAP() on empty = %q", got)
	}
}

func TestOrgName(t *testing.T) {
	base := "https://dx-recognitions.aem-screens.net/content/screens/org-amitabh"
	cases := map[string]string{
		base + "/org-anup/recognitions.json":            "anup",
		base + "/org-gitesh/all/recognitions.json":      "gitesh",
		base + "/org-sanjay-kumar/recognitions.json":    "sanjay-kumar",
		base + "/recognitions.json":                     "amitabh",
		base + "/org-anup/recognitions.json?sheet=data": "anup",
	}
	for in, want := range cases {
		got, err := OrgName(in, "org-")
		if err != nil {
			t.Fatalf("OrgName(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("OrgName(%q) = %q, want %q", in, got, want)
		}
		again, _ := OrgName(in, "org-")
		if again != got {
			t.Fatalf("OrgName not deterministic: %q vs %q", got, again)
		}
	}

	if _, err := OrgName("https://example.com/content/team/recognitions.json", "org-"); !errors.Is(err, ErrNoOrgSegment) {
		t.Fatalf("expected ErrNoOrgSegment, got %v", err)
	}
	if _, err := OrgName("https://example.com/org-/recognitions.json", ""); !errors.Is(err, ErrNoOrgSegment) {
		t.Fatalf("bare marker segment must not count, got %v", err)
	}
}

func TestOrgSegment(t *testing.T) {
	if got := OrgSegment("anup", ""); got != "org-anup" {
		t.Fatalf("OrgSegment default marker = %q", got)
	}
	if got := OrgSegment("anup", "team-"); got != "team-anup" {
		t.Fatalf("OrgSegment custom marker = %q", got)
	}
	name, err := OrgName("https://e.com/x/team-anup/r.json", "team-")
	if err != nil || OrgSegment(name, "team-") != "team-anup" {
		t.Fatalf("OrgSegment must invert OrgName, got %q, %v", name, err)
	}
}
