package recommend

import (
	"testing"

	pkgerrors "github.com/drobeapp/drobe-backend/pkg/errors"
)

func TestParseDocumentAcceptsValidJSON(t *testing.T) {
	doc, err := parseDocument([]byte(` {"outfits":[{"top":"shirt","bottom":"jeans"}]} ` + "\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if string(doc) != `{"outfits":[{"top":"shirt","bottom":"jeans"}]}` {
		t.Fatalf("expected trimmed passthrough, got %q", doc)
	}
}

func TestParseDocumentRejectsInvalidOutput(t *testing.T) {
	for _, output := range []string{"", "not json", `{"unterminated":`} {
		_, err := parseDocument([]byte(output))
		if err == nil {
			t.Fatalf("expected %q to fail", output)
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeDependency {
			t.Fatalf("expected dependency error for %q, got %v", output, err)
		}
	}
}
