package controllers

import (
	"context"
	"strings"

	"hevruta/hevruta/services/airtable"
	"hevruta/hevruta/sources/psql/dao"
	"hevruta/hevruta/sources/psql/models"
	"hevruta/hevruta/utils/apperrors"
	"hevruta/hevruta/utils/logging"
	"hevruta/hevruta/utils/types"

	"go.uber.org/zap"
)

// FeedbackMirror is the slice of the Airtable client the feedback flow
// uses to keep the review sheet in sync.
type FeedbackMirror interface {
	ListRecords(ctx context.Context, filterByFormula string, pageSize int) ([]airtable.Record, error)
	CreateRecord(ctx context.Context, fields map[string]interface{}) (*airtable.Record, error)
	UpdateRecord(ctx context.Context, recordID string, fields map[string]interface{}) (*airtable.Record, error)
}

type FeedbackController struct {
	dao    *dao.FeedbackDAO
	mirror FeedbackMirror // nil disables mirroring
}

func NewFeedbackController(feedbackDAO *dao.FeedbackDAO, mirror FeedbackMirror) *FeedbackController {
	return &FeedbackController{dao: feedbackDAO, mirror: mirror}
}

// Submit upserts the local feedback row by run id and mirrors it to the
// review sheet. The local row is authoritative: a mirror failure leaves
// it in place and surfaces as an external-service error.
func (c *FeedbackController) Submit(ctx context.Context, reviewerEmail string, req types.FeedbackRequest) (*models.Feedback, error) {
	defer logging.LogDuration(ctx, "feedback_submit")()

	if req.RunID == "" {
		return nil, apperrors.Validation("run_id required")
	}
	if req.Rating != models.RatingLike && req.Rating != models.RatingDislike {
		return nil, apperrors.Validation("rating must be like or dislike")
	}

	fb := &models.Feedback{
		RunID:         req.RunID,
		ThreadID:      req.ThreadID,
		Rating:        req.Rating,
		Comment:       req.Comment,
		ReviewerEmail: reviewerEmail,
	}
	fb, created, err := c.dao.UpsertByRunID(ctx, fb)
	if err != nil {
		return nil, err
	}
	logging.AppLogger.Info("feedback stored",
		zap.String("run_id", fb.RunID),
		zap.String("rating", fb.Rating),
		zap.Bool("created", created),
	)

	if c.mirror != nil {
		if err := c.mirrorToSheet(ctx, fb); err != nil {
			logging.ErrorLogger.Error("feedback mirror failed", zap.Error(err), zap.String("run_id", fb.RunID))
			return fb, err
		}
	}
	return fb, nil
}

func (c *FeedbackController) mirrorToSheet(ctx context.Context, fb *models.Feedback) error {
	fields := map[string]interface{}{
		"RunID":    fb.RunID,
		"ThreadID": fb.ThreadID,
		"Rating":   fb.Rating,
		"Comment":  fb.Comment,
		"Reviewer": fb.ReviewerEmail,
	}

	filter := "{RunID} = '" + strings.ReplaceAll(fb.RunID, "'", "\\'") + "'"
	records, err := c.mirror.ListRecords(ctx, filter, 1)
	if err != nil {
		return err
	}
	if len(records) > 0 {
		_, err = c.mirror.UpdateRecord(ctx, records[0].ID, fields)
		return err
	}
	_, err = c.mirror.CreateRecord(ctx, fields)
	return err
}

// Get returns feedback for a run. Only the reviewer who submitted it or
// an admin can see it; everyone else gets not-found.
func (c *FeedbackController) Get(ctx context.Context, callerEmail, callerRole, runID string) (*models.Feedback, error) {
	fb, err := c.dao.GetByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if fb == nil {
		return nil, apperrors.NotFound("feedback not found")
	}
	if fb.ReviewerEmail != callerEmail && callerRole != models.RoleAdmin {
		return nil, apperrors.NotFound("feedback not found")
	}
	return fb, nil
}
