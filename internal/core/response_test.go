package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"grovesim/internal/types"
)

// --- JSON helper tests ---

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	data := APIResponse{Data: map[string]string{"name": "test"}}
	JSON(w, r, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}

	var body APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	dataMap, ok := body.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("expected data to be a map, got %T", body.Data)
	}
	if dataMap["name"] != "test" {
		t.Errorf("expected name=test, got %v", dataMap["name"])
	}
}

func TestJSON_MarshalFailure(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := types.WithRequestID(r.Context(), "req-marshal-fail")
	r = r.WithContext(ctx)

	// Channels cannot be marshalled to JSON.
	unmarshalable := make(chan int)
	JSON(w, r, http.StatusOK, unmarshalable)

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", resp.StatusCode)
	}

	var errResp APIErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode fallback error: %v", err)
	}
	if errResp.Error.Code != string(types.ErrCodeInternalUnexpected) {
		t.Errorf("expected code %s, got %s", types.ErrCodeInternalUnexpected, errResp.Error.Code)
	}
	if errResp.Error.RequestID != "req-marshal-fail" {
		t.Errorf("expected request_id req-marshal-fail, got %s", errResp.Error.RequestID)
	}
}

// --- Error helper tests ---

func TestError_AppError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r = r.WithContext(types.WithRequestID(r.Context(), "req-123"))

	appErr := types.NewAppErrorWithDetails(
		types.ErrCodeValidationRainfallRange,
		"rainfall_mm must be between 200 and 800",
		nil,
		map[string]any{"field": "rainfall_mm"},
	)
	Error(w, r, appErr)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", resp.StatusCode)
	}

	var errResp APIErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Error.Code != string(types.ErrCodeValidationRainfallRange) {
		t.Errorf("expected code %s, got %s", types.ErrCodeValidationRainfallRange, errResp.Error.Code)
	}
	if errResp.Error.Details["field"] != "rainfall_mm" {
		t.Errorf("expected details.field=rainfall_mm, got %v", errResp.Error.Details["field"])
	}
	if errResp.Error.RequestID != "req-123" {
		t.Errorf("expected request_id req-123, got %s", errResp.Error.RequestID)
	}
}

func TestError_WrappedAppError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	appErr := types.NewAppError(types.ErrCodeNotFoundSimulation, "simulation run not found", nil)
	wrapped := fmt.Errorf("handler: %w", appErr)
	Error(w, r, wrapped)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestError_UnknownError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	Error(w, r, errors.New("something broke"))

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", resp.StatusCode)
	}

	var errResp APIErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Error.Code != string(types.ErrCodeInternalUnexpected) {
		t.Errorf("expected code %s, got %s", types.ErrCodeInternalUnexpected, errResp.Error.Code)
	}
	// Internal error text must not leak to the client.
	if strings.Contains(errResp.Error.Message, "something broke") {
		t.Errorf("internal error detail leaked to client: %s", errResp.Error.Message)
	}
}

// --- DecodeJSON tests ---

type decodeTarget struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func newJSONRequest(body string) (*httptest.ResponseRecorder, *http.Request) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return w, r
}

func TestDecodeJSON_Success(t *testing.T) {
	w, r := newJSONRequest(`{"name":"cover","value":42.5}`)

	var dst decodeTarget
	if err := DecodeJSON(w, r, &dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dst.Name != "cover" || dst.Value != 42.5 {
		t.Errorf("unexpected decode result: %+v", dst)
	}
}

func TestDecodeJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed syntax", `{"name":`},
		{"wrong type", `{"name":123}`},
		{"unknown field", `{"name":"x","bogus":true}`},
		{"empty body", ``},
		{"multiple values", `{"name":"a"}{"name":"b"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, r := newJSONRequest(tt.body)

			var dst decodeTarget
			err := DecodeJSON(w, r, &dst)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var appErr *types.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected *types.AppError, got %T", err)
			}
			if appErr.Code != types.ErrCodeValidationInvalidJSON {
				t.Errorf("expected code %s, got %s", types.ErrCodeValidationInvalidJSON, appErr.Code)
			}
		})
	}
}

func TestDecodeJSON_BodyTooLarge(t *testing.T) {
	// Build a body just over the 1 MB cap.
	var buf bytes.Buffer
	buf.WriteString(`{"name":"`)
	buf.Write(bytes.Repeat([]byte("x"), maxRequestBodySize+1))
	buf.WriteString(`"}`)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", &buf)

	var dst decodeTarget
	err := DecodeJSON(w, r, &dst)
	if err == nil {
		t.Fatal("expected error for oversized body, got nil")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *types.AppError, got %T", err)
	}
	if appErr.Code != types.ErrCodeValidationInvalidJSON {
		t.Errorf("expected code %s, got %s", types.ErrCodeValidationInvalidJSON, appErr.Code)
	}
}
