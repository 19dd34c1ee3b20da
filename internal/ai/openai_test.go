package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatClient_Generate(t *testing.T) {
	t.Run("sends JSON mode and returns the first choice", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

			var body chatCompletionRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "gpt-test", body.Model)
			assert.Equal(t, "json_object", body.ResponseFormat["type"])
			assert.Equal(t, "grade this", body.Messages[0].Content)

			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"score\":1}"}}]}`))
		}))
		defer srv.Close()

		c := NewChatClient("key", srv.URL, "gpt-test", 0.7)
		out, err := c.Generate(context.Background(), Request{Instructions: "grade this", RequireJSON: true})

		require.NoError(t, err)
		assert.Equal(t, `{"score":1}`, out)
	})

	t.Run("non 2xx is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := NewChatClient("key", srv.URL, "m", 0).Generate(context.Background(), Request{Instructions: "x"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("no choices is empty content", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		_, err := NewChatClient("key", srv.URL, "m", 0).Generate(context.Background(), Request{Instructions: "x"})

		assert.ErrorIs(t, err, ErrEmptyContent)
	})

	t.Run("missing key fails fast", func(t *testing.T) {
		_, err := NewChatClient("", "", "m", 0).Generate(context.Background(), Request{})
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})
}

func TestAssistantClient_Generate(t *testing.T) {
	t.Run("polls until the run completes", func(t *testing.T) {
		var polls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "assistants=v2", r.Header.Get("OpenAI-Beta"))
			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/threads/runs":
				_, _ = w.Write([]byte(`{"id":"run_1","thread_id":"th_1","status":"queued"}`))
			case r.Method == http.MethodGet && r.URL.Path == "/threads/th_1/runs/run_1":
				status := "in_progress"
				if atomic.AddInt32(&polls, 1) >= 2 {
					status = "completed"
				}
				_, _ = w.Write([]byte(`{"id":"run_1","thread_id":"th_1","status":"` + status + `"}`))
			case r.Method == http.MethodGet && r.URL.Path == "/threads/th_1/messages":
				_, _ = w.Write([]byte(`{"data":[{"role":"assistant","content":[{"type":"text","text":{"value":"{\"score\":2}"}}]}]}`))
			default:
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		c := NewAssistantClient("key", srv.URL, "asst_1", 5*time.Millisecond)
		out, err := c.Generate(context.Background(), Request{Instructions: "grade", RequireJSON: true})

		require.NoError(t, err)
		assert.Equal(t, `{"score":2}`, out)
		assert.Equal(t, int32(2), atomic.LoadInt32(&polls))
	})

	t.Run("failed run is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				_, _ = w.Write([]byte(`{"id":"run_1","thread_id":"th_1","status":"queued"}`))
				return
			}
			_, _ = w.Write([]byte(`{"id":"run_1","thread_id":"th_1","status":"failed"}`))
		}))
		defer srv.Close()

		c := NewAssistantClient("key", srv.URL, "asst_1", time.Millisecond)
		_, err := c.Generate(context.Background(), Request{Instructions: "grade"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed")
	})

	t.Run("context deadline interrupts polling", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":"run_1","thread_id":"th_1","status":"in_progress"}`))
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		c := NewAssistantClient("key", srv.URL, "asst_1", 5*time.Millisecond)
		_, err := c.Generate(ctx, Request{Instructions: "grade"})

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
