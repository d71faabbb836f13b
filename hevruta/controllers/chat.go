package controllers

import (
	"context"
	"strings"
	"time"

	"hevruta/hevruta/services/assistant"
	"hevruta/hevruta/sources/psql/dao"
	"hevruta/hevruta/sources/psql/models"
	"hevruta/hevruta/utils/apperrors"
	"hevruta/hevruta/utils/logging"
	"hevruta/hevruta/utils/types"

	"go.uber.org/zap"
)

const maxTitleRunes = 40

// AssistantService is what the chat flow needs from the external
// conversational-AI client.
type AssistantService interface {
	CreateThread(ctx context.Context) (string, error)
	SendMessage(ctx context.Context, threadID, content string) (string, string, error)
	StreamMessage(ctx context.Context, threadID, content string) (<-chan string, <-chan assistant.StreamResult, error)
}

// ThreadCache keeps the per-user threads panel between list calls.
// Failures are logged and swallowed; the DAO stays authoritative.
type ThreadCache interface {
	GetThreads(ctx context.Context, userEmail string) ([]types.ThreadSummary, bool, error)
	SetThreads(ctx context.Context, userEmail string, threads []types.ThreadSummary) error
	Invalidate(ctx context.Context, userEmail string) error
}

type ChatController struct {
	threadDAO  *dao.ThreadDAO
	messageDAO *dao.MessageDAO
	assistant  AssistantService
	cache      ThreadCache // nil disables caching
}

func NewChatController(threadDAO *dao.ThreadDAO, messageDAO *dao.MessageDAO, svc AssistantService, threadCache ThreadCache) *ChatController {
	return &ChatController{
		threadDAO:  threadDAO,
		messageDAO: messageDAO,
		assistant:  svc,
		cache:      threadCache,
	}
}

func (c *ChatController) CreateThread(ctx context.Context, userEmail string) (*models.Thread, error) {
	externalID, err := c.assistant.CreateThread(ctx)
	if err != nil {
		return nil, err
	}
	thread := &models.Thread{
		ID:        externalID,
		Title:     models.DefaultThreadTitle,
		UserEmail: userEmail,
	}
	if err := c.threadDAO.CreateThread(ctx, thread); err != nil {
		return nil, err
	}
	c.invalidateCache(ctx, userEmail)
	return thread, nil
}

func (c *ChatController) ListThreads(ctx context.Context, userEmail string) ([]types.ThreadSummary, error) {
	if c.cache != nil {
		cached, hit, err := c.cache.GetThreads(ctx, userEmail)
		if err != nil {
			logging.AppLogger.Warn("thread cache read failed", zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	threads, err := c.threadDAO.GetAllThreadsByUser(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	summaries := make([]types.ThreadSummary, 0, len(threads))
	for _, t := range threads {
		summaries = append(summaries, types.ThreadSummary{
			ID:        t.ID,
			Title:     t.Title,
			CreatedAt: t.CreatedAt.Format(time.RFC3339),
			UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
		})
	}

	if c.cache != nil {
		if err := c.cache.SetThreads(ctx, userEmail, summaries); err != nil {
			logging.AppLogger.Warn("thread cache write failed", zap.Error(err))
		}
	}
	return summaries, nil
}

func (c *ChatController) GetMessagesForThread(ctx context.Context, userEmail, threadID string) ([]models.Message, error) {
	thread, err := c.threadDAO.GetThreadForOwner(ctx, threadID, userEmail)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, apperrors.NotFound("thread not found")
	}
	return c.messageDAO.GetMessagesByThread(ctx, threadID)
}

func (c *ChatController) DeleteThread(ctx context.Context, userEmail, threadID string) error {
	thread, err := c.threadDAO.GetThreadForOwner(ctx, threadID, userEmail)
	if err != nil {
		return err
	}
	if thread == nil {
		return apperrors.NotFound("thread not found")
	}
	if err := c.threadDAO.DeleteThread(ctx, threadID); err != nil {
		return err
	}
	c.invalidateCache(ctx, userEmail)
	return nil
}

// Send runs one synchronous chat turn: persist the user message, get the
// assistant reply, persist it with the run id, and rename the thread off
// the first message if it still carries the placeholder title.
func (c *ChatController) Send(ctx context.Context, userEmail string, req types.ChatRequest) (*types.ChatResponse, error) {
	defer logging.LogDuration(ctx, "chat_send")()

	if strings.TrimSpace(req.Content) == "" {
		return nil, apperrors.Validation("content required")
	}
	if req.ThreadID == "" {
		return nil, apperrors.Validation("thread_id required")
	}
	thread, err := c.threadDAO.GetThreadForOwner(ctx, req.ThreadID, userEmail)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, apperrors.NotFound("thread not found")
	}

	userMsg := &models.Message{
		ThreadID:  thread.ID,
		Role:      "user",
		Content:   req.Content,
		UserEmail: userEmail,
	}
	if err := c.messageDAO.SaveMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	reply, runID, err := c.assistant.SendMessage(ctx, thread.ID, req.Content)
	if err != nil {
		return nil, err
	}

	assistantMsg := &models.Message{
		ThreadID:  thread.ID,
		Role:      "assistant",
		Content:   reply,
		RunID:     &runID,
		UserEmail: userEmail,
	}
	if err := c.messageDAO.SaveMessage(ctx, assistantMsg); err != nil {
		return nil, err
	}

	c.afterTurn(ctx, thread, userEmail)

	return &types.ChatResponse{
		ThreadID: thread.ID,
		Reply:    reply,
		RunID:    runID,
	}, nil
}

// SendStream is the websocket variant: deltas flow out on the channel
// and the assembled reply is persisted once the stream finishes.
func (c *ChatController) SendStream(ctx context.Context, userEmail string, req types.ChatRequest) (chan string, chan error) {
	ch := make(chan string)
	errCh := make(chan error, 1)

	fail := func(err error) (chan string, chan error) {
		errCh <- err
		close(ch)
		close(errCh)
		return ch, errCh
	}

	if strings.TrimSpace(req.Content) == "" {
		return fail(apperrors.Validation("content required"))
	}
	thread, err := c.threadDAO.GetThreadForOwner(ctx, req.ThreadID, userEmail)
	if err != nil {
		return fail(err)
	}
	if thread == nil {
		return fail(apperrors.NotFound("thread not found"))
	}

	userMsg := &models.Message{
		ThreadID:  thread.ID,
		Role:      "user",
		Content:   req.Content,
		UserEmail: userEmail,
	}
	if err := c.messageDAO.SaveMessage(ctx, userMsg); err != nil {
		return fail(err)
	}

	deltas, result, err := c.assistant.StreamMessage(ctx, thread.ID, req.Content)
	if err != nil {
		return fail(err)
	}

	go func() {
		defer close(ch)
		defer close(errCh)
		for delta := range deltas {
			select {
			case ch <- delta:
			case <-ctx.Done():
				return
			}
		}
		res := <-result
		if res.Err != nil {
			errCh <- res.Err
			return
		}

		// Persist on a fresh context; the request one may be gone.
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assistantMsg := &models.Message{
			ThreadID:  thread.ID,
			Role:      "assistant",
			Content:   res.Reply,
			UserEmail: userEmail,
		}
		if res.RunID != "" {
			runID := res.RunID
			assistantMsg.RunID = &runID
		}
		if err := c.messageDAO.SaveMessage(saveCtx, assistantMsg); err != nil {
			errCh <- err
			return
		}
		c.afterTurn(saveCtx, thread, userEmail)
	}()

	return ch, errCh
}

// afterTurn handles the bookkeeping shared by both send paths: default
// title replacement, recency bump, cache invalidation.
func (c *ChatController) afterTurn(ctx context.Context, thread *models.Thread, userEmail string) {
	if thread.Title == models.DefaultThreadTitle {
		first, err := c.messageDAO.GetFirstUserMessage(ctx, thread.ID)
		if err == nil && first != nil {
			if title := deriveTitle(first.Content); title != "" {
				if err := c.threadDAO.UpdateTitle(ctx, thread.ID, title); err != nil {
					logging.AppLogger.Warn("thread rename failed", zap.Error(err), zap.String("thread_id", thread.ID))
				}
			}
		}
	}
	if err := c.threadDAO.TouchThread(ctx, thread.ID); err != nil {
		logging.AppLogger.Warn("thread touch failed", zap.Error(err), zap.String("thread_id", thread.ID))
	}
	c.invalidateCache(ctx, userEmail)
}

func (c *ChatController) invalidateCache(ctx context.Context, userEmail string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Invalidate(ctx, userEmail); err != nil {
		logging.AppLogger.Warn("thread cache invalidate failed", zap.Error(err))
	}
}

// deriveTitle turns the first user message into a thread title. The cut
// is rune-based so Hebrew text never splits mid-character.
func deriveTitle(content string) string {
	title := strings.Join(strings.Fields(content), " ")
	runes := []rune(title)
	if len(runes) > maxTitleRunes {
		title = strings.TrimSpace(string(runes[:maxTitleRunes])) + "…"
	}
	return title
}
