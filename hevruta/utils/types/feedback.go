package types

type FeedbackRequest struct {
	RunID    string `json:"run_id"`
	ThreadID string `json:"thread_id,omitempty"`
	Rating   string `json:"rating"` // "like" or "dislike"
	Comment  string `json:"comment,omitempty"`
}
