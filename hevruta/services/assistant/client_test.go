package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hevruta/hevruta/config"
	"hevruta/hevruta/utils/logging"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	logging.InitLogger()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(config.Config{
		AssistantBaseURL: srv.URL,
		AssistantAPIKey:  "sk-test",
		AssistantID:      "asst_test",
	})
	c.pollInterval = 5 * time.Millisecond
	return c
}

func TestCreateThread(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/threads" || r.Method != "POST" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("OpenAI-Beta") != "assistants=v2" {
			t.Error("missing assistants=v2 header")
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "thread_abc"})
	}))

	id, err := client.CreateThread(context.Background())
	if err != nil {
		t.Fatalf("CreateThread failed: %v", err)
	}
	if id != "thread_abc" {
		t.Errorf("expected thread_abc, got %q", id)
	}
}

func TestSendMessageFullCycle(t *testing.T) {
	polls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/threads/thread_abc/messages", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" {
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, `{}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{
					"role":   "assistant",
					"run_id": "run_xyz",
					"content": []map[string]interface{}{
						{"type": "text", "text": map[string]string{"value": "מאי חברותא? לימוד בצוותא."}},
					},
				},
			},
		})
	})
	mux.HandleFunc("/threads/thread_abc/runs", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "run_xyz", "status": "queued"})
	})
	mux.HandleFunc("/threads/thread_abc/runs/run_xyz", func(w http.ResponseWriter, r *http.Request) {
		polls++
		status := "in_progress"
		if polls >= 2 {
			status = "completed"
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "run_xyz", "status": status})
	})

	client := newTestClient(t, mux)
	reply, runID, err := client.SendMessage(context.Background(), "thread_abc", "מאי חברותא?")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if runID != "run_xyz" {
		t.Errorf("expected run_xyz, got %q", runID)
	}
	if reply != "מאי חברותא? לימוד בצוותא." {
		t.Errorf("unexpected reply %q", reply)
	}
	if polls < 2 {
		t.Errorf("expected at least 2 polls, got %d", polls)
	}
}

func TestSendMessageFailedRun(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/threads/thread_abc/messages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("/threads/thread_abc/runs", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "run_bad", "status": "failed"})
	})

	client := newTestClient(t, mux)
	_, runID, err := client.SendMessage(context.Background(), "thread_abc", "שלום")
	if err == nil {
		t.Fatal("expected error for failed run")
	}
	if runID != "run_bad" {
		t.Errorf("run id should survive a failure, got %q", runID)
	}
}

func TestStreamMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/threads/thread_abc/messages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("/threads/thread_abc/runs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: thread.run.created\n")
		fmt.Fprint(w, `data: {"id": "run_stream", "status": "queued"}`+"\n\n")
		fmt.Fprint(w, "event: thread.message.delta\n")
		fmt.Fprint(w, `data: {"delta": {"content": [{"type": "text", "text": {"value": "שנים "}}]}}`+"\n\n")
		fmt.Fprint(w, "event: thread.message.delta\n")
		fmt.Fprint(w, `data: {"delta": {"content": [{"type": "text", "text": {"value": "שיושבין"}}]}}`+"\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	client := newTestClient(t, mux)
	deltas, result, err := client.StreamMessage(context.Background(), "thread_abc", "שלום")
	if err != nil {
		t.Fatalf("StreamMessage failed: %v", err)
	}

	var got string
	for d := range deltas {
		got += d
	}
	res := <-result
	if res.Err != nil {
		t.Fatalf("stream ended with error: %v", res.Err)
	}
	if res.RunID != "run_stream" {
		t.Errorf("expected run_stream, got %q", res.RunID)
	}
	if got != "שנים שיושבין" || res.Reply != got {
		t.Errorf("deltas %q, collected reply %q", got, res.Reply)
	}
}

func TestStreamMessageRunFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/threads/thread_abc/messages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("/threads/thread_abc/runs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: thread.run.failed\n")
		fmt.Fprint(w, `data: {"id": "run_dead", "status": "failed"}`+"\n\n")
	})

	client := newTestClient(t, mux)
	deltas, result, err := client.StreamMessage(context.Background(), "thread_abc", "שלום")
	if err != nil {
		t.Fatalf("StreamMessage failed: %v", err)
	}
	for range deltas {
	}
	res := <-result
	if res.Err == nil {
		t.Fatal("expected stream failure result")
	}
}
