package dao

import (
	"context"

	"hevruta/hevruta/sources/psql/models"

	"gorm.io/gorm"
)

type MessageDAO struct {
	DB *gorm.DB
}

func NewMessageDAO(db *gorm.DB) *MessageDAO {
	return &MessageDAO{DB: db}
}

func (dao *MessageDAO) SaveMessage(ctx context.Context, msg *models.Message) error {
	return dao.DB.WithContext(ctx).Create(msg).Error
}

func (dao *MessageDAO) GetMessagesByThread(ctx context.Context, threadID string) ([]models.Message, error) {
	var msgs []models.Message
	err := dao.DB.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("timestamp asc").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (dao *MessageDAO) GetFirstUserMessage(ctx context.Context, threadID string) (*models.Message, error) {
	var msg models.Message
	err := dao.DB.WithContext(ctx).
		Where("thread_id = ? AND role = ?", threadID, "user").
		Order("timestamp asc").
		First(&msg).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
