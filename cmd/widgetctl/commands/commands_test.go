package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute %v: %v", args, err)
	}
	return out.String()
}

func TestParseEntityCmd(t *testing.T) {
	const typ = "5b0e3a7c-0000-4000-8000-00000000ca11"

	tests := []struct {
		raw  string
		want string
	}{
		{typ + "|7", "entity type " + typ + ", id 7"},
		{typ + "|", "id from page context"},
		{"not-a-guid|7", "no filter"},
		{typ + "|abc", "no filter"},
		{"a|b|c", "no filter"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := run(t, "parse-entity", tt.raw)
			if !strings.Contains(got, tt.want) {
				t.Errorf("got %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestParseMetricsCmd(t *testing.T) {
	const (
		m1 = "0b1e0000-0000-4000-8000-000000000001"
		m2 = "0b1e0000-0000-4000-8000-000000000002"
		c  = "4c2a0000-0000-4000-8000-00000000000c"
	)

	got := run(t, "parse-metrics", m2+"|"+c+",bad,"+m1+"|"+c)
	lines := strings.Fields(got)
	if len(lines) != 2 || lines[0] != m2 || lines[1] != m1 {
		t.Errorf("got %q", got)
	}

	if got := run(t, "parse-metrics", ""); !strings.Contains(got, "no metrics") {
		t.Errorf("got %q", got)
	}
}

func TestParseParams(t *testing.T) {
	got, err := parseParams([]string{"CampusId=7", "q=a=b"})
	if err != nil {
		t.Fatalf("parseParams: %v", err)
	}
	if got["CampusId"] != "7" || got["q"] != "a=b" {
		t.Errorf("got %v", got)
	}

	for _, bad := range []string{"novalue", "=7"} {
		if _, err := parseParams([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseAt(t *testing.T) {
	got, err := parseAt("2024-03-20T15:30:00Z")
	if err != nil {
		t.Fatalf("parseAt: %v", err)
	}
	if !got.Equal(time.Date(2024, 3, 20, 15, 30, 0, 0, time.UTC)) {
		t.Errorf("got %v", got)
	}

	got, err = parseAt("2024-03-20")
	if err != nil {
		t.Fatalf("parseAt: %v", err)
	}
	if got.Year() != 2024 || got.Month() != time.March || got.Day() != 20 {
		t.Errorf("got %v", got)
	}

	if _, err := parseAt("yesterday"); err == nil {
		t.Error("expected error")
	}

	before := time.Now()
	got, err = parseAt("")
	if err != nil || got.Before(before) {
		t.Errorf("blank should mean now, got %v, %v", got, err)
	}
}
