package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/drobeapp/drobe-backend/internal/weather"
	pkgerrors "github.com/drobeapp/drobe-backend/pkg/errors"
)

func TestWeatherReturnsReading(t *testing.T) {
	client := &stubWeatherClient{reading: &weather.Reading{Temp: "21.5", Description: "clear sky"}}
	rec := httptest.NewRecorder()
	Weather(client, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/weather", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Data weather.Reading `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Data.Temp != "21.5" || payload.Data.Description != "clear sky" {
		t.Fatalf("unexpected payload %+v", payload.Data)
	}
}

func TestWeatherMapsUpstreamFailure(t *testing.T) {
	client := &stubWeatherClient{err: pkgerrors.New(pkgerrors.CodeDependency, "weather unavailable")}
	rec := httptest.NewRecorder()
	Weather(client, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/weather", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestRecommendationsPassesDocumentThrough(t *testing.T) {
	client := &stubRecommendClient{doc: json.RawMessage(`{"outfits":[]}`)}
	rec := httptest.NewRecorder()
	Recommendations(client, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recommendations", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(payload.Data) != `{"outfits":[]}` {
		t.Fatalf("unexpected document %s", payload.Data)
	}
}

type stubWeatherClient struct {
	reading *weather.Reading
	err     error
}

func (s *stubWeatherClient) Fetch(ctx context.Context) (*weather.Reading, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.reading, nil
}

type stubRecommendClient struct {
	doc json.RawMessage
	err error
}

func (s *stubRecommendClient) Fetch(ctx context.Context) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.doc, nil
}
