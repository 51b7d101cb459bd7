package weather

import (
	"testing"

	pkgerrors "github.com/drobeapp/drobe-backend/pkg/errors"
)

func TestParseReadingAcceptsWellFormedLine(t *testing.T) {
	reading, err := parseReading("21.5,scattered clouds\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if reading.Temp != "21.5" {
		t.Fatalf("expected temp 21.5, got %q", reading.Temp)
	}
	if reading.Description != "scattered clouds" {
		t.Fatalf("expected description, got %q", reading.Description)
	}
}

func TestParseReadingRejectsFailureSentinel(t *testing.T) {
	for _, output := range []string{"-1,-1", "-1,clear sky", "21.5,-1"} {
		_, err := parseReading(output)
		if err == nil {
			t.Fatalf("expected sentinel %q to fail", output)
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeDependency {
			t.Fatalf("expected dependency error for %q, got %v", output, err)
		}
	}
}

func TestParseReadingRejectsMalformedOutput(t *testing.T) {
	for _, output := range []string{"", "no-comma", ",", "21.5,"} {
		_, err := parseReading(output)
		if err == nil {
			t.Fatalf("expected malformed output %q to fail", output)
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeDependency {
			t.Fatalf("expected dependency error for %q, got %v", output, err)
		}
	}
}
