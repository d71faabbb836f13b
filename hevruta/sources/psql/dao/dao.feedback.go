package dao

import (
	"context"

	"hevruta/hevruta/sources/psql/models"

	"gorm.io/gorm"
)

type FeedbackDAO struct {
	DB *gorm.DB
}

func NewFeedbackDAO(db *gorm.DB) *FeedbackDAO {
	return &FeedbackDAO{DB: db}
}

func (dao *FeedbackDAO) GetByRunID(ctx context.Context, runID string) (*models.Feedback, error) {
	var fb models.Feedback
	err := dao.DB.WithContext(ctx).Where("run_id = ?", runID).First(&fb).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

// UpsertByRunID creates the row on first rating and updates
// rating/comment in place on resubmission. The second return value
// reports whether a new row was created.
func (dao *FeedbackDAO) UpsertByRunID(ctx context.Context, fb *models.Feedback) (*models.Feedback, bool, error) {
	existing, err := dao.GetByRunID(ctx, fb.RunID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		if err := dao.DB.WithContext(ctx).Create(fb).Error; err != nil {
			return nil, false, err
		}
		return fb, true, nil
	}

	updates := map[string]interface{}{
		"rating":         fb.Rating,
		"comment":        fb.Comment,
		"reviewer_email": fb.ReviewerEmail,
	}
	if fb.ThreadID != "" {
		updates["thread_id"] = fb.ThreadID
	}
	err = dao.DB.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("run_id = ?", fb.RunID).
		Updates(updates).Error
	if err != nil {
		return nil, false, err
	}
	updated, err := dao.GetByRunID(ctx, fb.RunID)
	if err != nil {
		return nil, false, err
	}
	return updated, false, nil
}
