package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := map[time.Duration]string{
		0:                                     "00:00:00.000",
		1500 * time.Millisecond:               "00:00:01.500",
		61*time.Second + 250*time.Millisecond: "00:01:01.250",
		time.Hour + 2*time.Minute:             "01:02:00.000",
		-time.Second:                          "00:00:00.000",
		Seconds(59.9996):                      "00:01:00.000",
		Seconds(3599.9997):                    "01:00:00.000",
		Seconds(0.0004):                       "00:00:00.000",
	}
	for in, want := range tests {
		if got := FormatDuration(in); got != want {
			t.Errorf("FormatDuration(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := map[string]time.Duration{
		"45.5":         45500 * time.Millisecond,
		"01:30":        90 * time.Second,
		"01:00:02.250": time.Hour + 2250*time.Millisecond,
	}
	for in, want := range tests {
		got, err := ParseTimestamp(in)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", in, got, want)
		}
	}

	for _, bad := range []string{"", "abc", "1:2:3:4", "-5"} {
		if _, err := ParseTimestamp(bad); err == nil {
			t.Errorf("ParseTimestamp(%q) should fail", bad)
		}
	}
}

func TestParseFrameRate(t *testing.T) {
	if got := ParseFrameRate("30000/1001"); got < 29.97 || got > 29.98 {
		t.Errorf("unexpected frame rate %f", got)
	}
	if got := ParseFrameRate("25/0"); got != 0 {
		t.Errorf("expected 0 for zero denominator, got %f", got)
	}
	if got := ParseFrameRate("garbage"); got != 0 {
		t.Errorf("expected 0 for garbage, got %f", got)
	}
}

func TestSeconds(t *testing.T) {
	if got := Seconds(4.99); got != 4990*time.Millisecond {
		t.Errorf("Seconds(4.99) = %v", got)
	}
}

func TestSiblingTempPath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "final.mp4")

	p := SiblingTempPath(target)
	if filepath.Dir(p) != dir {
		t.Fatalf("temp path %q not next to target", p)
	}
	if filepath.Ext(p) != ".mp4" {
		t.Fatalf("temp path %q lost extension", p)
	}
	if !strings.HasPrefix(filepath.Base(p), ".final.partial-") {
		t.Fatalf("unexpected temp name %q", p)
	}
	if p == SiblingTempPath(target) {
		t.Fatalf("temp paths should be unique")
	}

	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	CleanupFiles(p)
	if FileExists(p) {
		t.Fatalf("CleanupFiles left %s behind", p)
	}
}
