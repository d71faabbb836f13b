package assistant

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hevruta/hevruta/config"
	"hevruta/hevruta/utils/apperrors"
	httputils "hevruta/hevruta/utils/http"
	"hevruta/hevruta/utils/logging"

	"go.uber.org/zap"
)

// Client talks to the external conversational-AI service. Conversations
// are thread-based: the service owns thread ids, and every assistant
// turn is a "run" whose id correlates feedback later.
type Client struct {
	baseURL     string
	apiKey      string
	assistantID string

	pollInterval time.Duration
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.AssistantBaseURL, "/"),
		apiKey:       cfg.AssistantAPIKey,
		assistantID:  cfg.AssistantID,
		pollInterval: 800 * time.Millisecond,
	}
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"OpenAI-Beta":   "assistants=v2",
	}
}

// CreateThread asks the service for a fresh conversation thread and
// returns its id.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	defer logging.LogDuration(ctx, "assistant_create_thread")()

	var resp struct {
		ID string `json:"id"`
	}
	err := httputils.DoJSON(ctx, "POST", c.baseURL+"/threads", c.headers(), map[string]interface{}{}, &resp)
	if err != nil {
		return "", apperrors.External("assistant thread creation failed", err)
	}
	if resp.ID == "" {
		return "", apperrors.External("assistant returned empty thread id", nil)
	}
	return resp.ID, nil
}

type runStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type messageList struct {
	Data []struct {
		Role    string `json:"role"`
		RunID   string `json:"run_id"`
		Content []struct {
			Type string `json:"type"`
			Text struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"data"`
}

// SendMessage posts the user message on the thread, starts a run, waits
// for it to finish and returns the assistant reply plus the run id.
func (c *Client) SendMessage(ctx context.Context, threadID, content string) (string, string, error) {
	defer logging.LogDuration(ctx, "assistant_send_message")()

	err := httputils.DoJSON(ctx, "POST", c.baseURL+"/threads/"+threadID+"/messages", c.headers(),
		map[string]string{"role": "user", "content": content}, nil)
	if err != nil {
		return "", "", apperrors.External("assistant message post failed", err)
	}

	var run runStatus
	err = httputils.DoJSON(ctx, "POST", c.baseURL+"/threads/"+threadID+"/runs", c.headers(),
		map[string]string{"assistant_id": c.assistantID}, &run)
	if err != nil {
		return "", "", apperrors.External("assistant run creation failed", err)
	}

	if err := c.waitForRun(ctx, threadID, &run); err != nil {
		return "", run.ID, err
	}

	reply, err := c.latestAssistantReply(ctx, threadID, run.ID)
	if err != nil {
		return "", run.ID, err
	}
	return reply, run.ID, nil
}

func (c *Client) waitForRun(ctx context.Context, threadID string, run *runStatus) error {
	for {
		switch run.Status {
		case "completed":
			return nil
		case "failed", "cancelled", "expired":
			return apperrors.External(fmt.Sprintf("assistant run ended with status %s", run.Status), nil)
		}

		select {
		case <-ctx.Done():
			return apperrors.External("assistant run wait cancelled", ctx.Err())
		case <-time.After(c.pollInterval):
		}

		err := httputils.DoJSON(ctx, "GET", c.baseURL+"/threads/"+threadID+"/runs/"+run.ID, c.headers(), nil, run)
		if err != nil {
			return apperrors.External("assistant run poll failed", err)
		}
	}
}

func (c *Client) latestAssistantReply(ctx context.Context, threadID, runID string) (string, error) {
	var msgs messageList
	url := c.baseURL + "/threads/" + threadID + "/messages?order=desc&limit=10"
	if err := httputils.DoJSON(ctx, "GET", url, c.headers(), nil, &msgs); err != nil {
		return "", apperrors.External("assistant message fetch failed", err)
	}
	for _, m := range msgs.Data {
		if m.Role != "assistant" {
			continue
		}
		if runID != "" && m.RunID != "" && m.RunID != runID {
			continue
		}
		var sb strings.Builder
		for _, part := range m.Content {
			if part.Type == "text" {
				sb.WriteString(part.Text.Value)
			}
		}
		return sb.String(), nil
	}
	return "", apperrors.External("assistant produced no reply", nil)
}

// StreamResult closes out a streamed turn: the collected reply, the run
// id, and the first error hit while streaming.
type StreamResult struct {
	RunID string
	Reply string
	Err   error
}

// StreamMessage is the streaming variant of SendMessage. Text deltas
// arrive on the first channel as they are generated; the final
// StreamResult arrives on the second channel after the deltas close.
func (c *Client) StreamMessage(ctx context.Context, threadID, content string) (<-chan string, <-chan StreamResult, error) {
	err := httputils.DoJSON(ctx, "POST", c.baseURL+"/threads/"+threadID+"/messages", c.headers(),
		map[string]string{"role": "user", "content": content}, nil)
	if err != nil {
		return nil, nil, apperrors.External("assistant message post failed", err)
	}

	body, err := httputils.DoStream(ctx, "POST", c.baseURL+"/threads/"+threadID+"/runs", c.headers(),
		map[string]interface{}{"assistant_id": c.assistantID, "stream": true})
	if err != nil {
		return nil, nil, apperrors.External("assistant stream start failed", err)
	}

	deltas := make(chan string)
	result := make(chan StreamResult, 1)

	go func() {
		var res StreamResult
		defer func() {
			close(deltas)
			result <- res
			close(result)
			body.Close()
		}()

		reader := bufio.NewReader(body)
		var event string
		for {
			select {
			case <-ctx.Done():
				res.Err = ctx.Err()
				return
			default:
			}

			line, err := reader.ReadString('\n')
			if err != nil {
				// EOF ends the stream; anything else is a transport error
				if !strings.Contains(err.Error(), "EOF") {
					logging.ErrorLogger.Error("assistant stream read error", zap.Error(err))
					res.Err = err
				}
				return
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "event:") {
				event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
				continue
			}
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				return
			}

			switch event {
			case "thread.run.created":
				var run runStatus
				if err := json.Unmarshal([]byte(data), &run); err == nil {
					res.RunID = run.ID
				}
			case "thread.run.failed", "thread.run.expired", "thread.run.cancelled":
				res.Err = apperrors.External("assistant run ended with status "+strings.TrimPrefix(event, "thread.run."), nil)
				return
			case "thread.message.delta":
				var chunk struct {
					Delta struct {
						Content []struct {
							Type string `json:"type"`
							Text struct {
								Value string `json:"value"`
							} `json:"text"`
						} `json:"content"`
					} `json:"delta"`
				}
				if err := json.Unmarshal([]byte(data), &chunk); err != nil {
					logging.ErrorLogger.Error("assistant stream JSON parse error",
						zap.Error(err), zap.String("raw_line", data))
					continue
				}
				for _, part := range chunk.Delta.Content {
					if part.Type != "text" || part.Text.Value == "" {
						continue
					}
					res.Reply += part.Text.Value
					select {
					case deltas <- part.Text.Value:
					case <-ctx.Done():
						res.Err = ctx.Err()
						return
					}
				}
			}
		}
	}()

	return deltas, result, nil
}
