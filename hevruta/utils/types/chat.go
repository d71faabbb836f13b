package types

// ChatRequest is the body of POST /chat/send.
type ChatRequest struct {
	ThreadID string `json:"thread_id"`
	Content  string `json:"content"`
}

// ChatResponse carries the assistant reply plus the run id the external
// service issued for this turn. The run id is what feedback is keyed on.
type ChatResponse struct {
	ThreadID string `json:"thread_id"`
	Reply    string `json:"reply"`
	RunID    string `json:"run_id"`
}

// ThreadSummary is the threads-panel projection of a thread.
// CreatedAt/UpdatedAt: RFC3339 strings.
type ThreadSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
