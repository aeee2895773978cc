package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/moodify/internal/core/ports"
)

func TestClient_Generate(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		responseBody string
		want         string
		wantErr      bool
	}{
		{
			name:         "Success joins parts",
			status:       http.StatusOK,
			responseBody: `{"candidates":[{"content":{"role":"model","parts":[{"text":"Rel"},{"text":"axed\n"}]},"finishReason":"STOP"}]}`,
			want:         "Relaxed",
		},
		{
			name:         "API error",
			status:       http.StatusBadRequest,
			responseBody: `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`,
			wantErr:      true,
		},
		{
			name:         "Blocked prompt",
			status:       http.StatusOK,
			responseBody: `{"promptFeedback":{"blockReason":"SAFETY"}}`,
			wantErr:      true,
		},
		{
			name:         "No candidates",
			status:       http.StatusOK,
			responseBody: `{"candidates":[]}`,
			wantErr:      true,
		},
		{
			name:         "Empty text",
			status:       http.StatusOK,
			responseBody: `{"candidates":[{"content":{"parts":[]},"finishReason":"MAX_TOKENS"}]}`,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotRequest generateRequest
			var gotKey, gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotKey = r.Header.Get("x-goog-api-key")
				if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer srv.Close()

			client := NewClient("key-1", "", srv.URL, time.Second)
			got, err := client.Generate(context.Background(), "be brief", "user: hello")

			if (err != nil) != tt.wantErr {
				t.Fatalf("expected err=%v, got %v", tt.wantErr, err)
			}
			if gotPath != "/v1beta/models/gemini-2.0-flash:generateContent" {
				t.Fatalf("unexpected path %q", gotPath)
			}
			if gotKey != "key-1" {
				t.Fatalf("expected api key header, got %q", gotKey)
			}
			if tt.wantErr {
				if !errors.Is(err, ports.ErrOracleUnavailable) {
					t.Fatalf("expected ErrOracleUnavailable, got %v", err)
				}
				return
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if gotRequest.SystemInstruction == nil || gotRequest.SystemInstruction.Parts[0].Text != "be brief" {
				t.Fatalf("system instruction mismatch: %+v", gotRequest.SystemInstruction)
			}
			if len(gotRequest.Contents) != 1 || gotRequest.Contents[0].Parts[0].Text != "user: hello" {
				t.Fatalf("contents mismatch: %+v", gotRequest.Contents)
			}
			if gotRequest.GenerationConfig.MaxOutputTokens != 2048 || gotRequest.GenerationConfig.Temperature != 0.9 {
				t.Fatalf("generation config mismatch: %+v", gotRequest.GenerationConfig)
			}
			if len(gotRequest.SafetySettings) != 4 {
				t.Fatalf("expected 4 safety settings, got %d", len(gotRequest.SafetySettings))
			}
		})
	}
}

func TestClient_Generate_MissingKey(t *testing.T) {
	_, err := NewClient("", "", "", time.Second).Generate(context.Background(), "", "hi")
	if !errors.Is(err, ErrMissingAPIKey) || !errors.Is(err, ports.ErrOracleUnavailable) {
		t.Fatalf("expected missing key error, got %v", err)
	}
}
