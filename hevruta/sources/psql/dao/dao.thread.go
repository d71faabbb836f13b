package dao

import (
	"context"
	"time"

	"hevruta/hevruta/sources/psql/models"

	"gorm.io/gorm"
)

type ThreadDAO struct {
	DB *gorm.DB
}

func NewThreadDAO(db *gorm.DB) *ThreadDAO {
	return &ThreadDAO{DB: db}
}

func (dao *ThreadDAO) CreateThread(ctx context.Context, thread *models.Thread) error {
	return dao.DB.WithContext(ctx).Create(thread).Error
}

// GetThreadForOwner returns nil when the thread does not exist OR belongs
// to someone else. Callers cannot tell the two apart.
func (dao *ThreadDAO) GetThreadForOwner(ctx context.Context, id, userEmail string) (*models.Thread, error) {
	var thread models.Thread
	err := dao.DB.WithContext(ctx).
		Where("id = ? AND user_email = ?", id, userEmail).
		First(&thread).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

func (dao *ThreadDAO) GetAllThreadsByUser(ctx context.Context, userEmail string) ([]models.Thread, error) {
	var threads []models.Thread
	err := dao.DB.WithContext(ctx).
		Where("user_email = ?", userEmail).
		Order("updated_at desc").
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	return threads, nil
}

func (dao *ThreadDAO) UpdateTitle(ctx context.Context, id, title string) error {
	return dao.DB.WithContext(ctx).
		Model(&models.Thread{}).
		Where("id = ?", id).
		Update("title", title).Error
}

// TouchThread bumps updated_at so the thread sorts to the top of the
// panel after a new message.
func (dao *ThreadDAO) TouchThread(ctx context.Context, id string) error {
	return dao.DB.WithContext(ctx).
		Model(&models.Thread{}).
		Where("id = ?", id).
		Update("updated_at", time.Now().UTC()).Error
}

// DeleteThread removes the thread and its messages. Messages go
// explicitly rather than via the FK cascade so the behaviour is the same
// on every backend the tests run against.
func (dao *ThreadDAO) DeleteThread(ctx context.Context, id string) error {
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thread_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Thread{}).Error
	})
}
