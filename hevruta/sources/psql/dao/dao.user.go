package dao

import (
	"context"

	"hevruta/hevruta/sources/psql/models"

	"gorm.io/gorm"
)

type UserDAO struct {
	DB *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{DB: db}
}

// GetUser looks a user up by email. New rows are keyed by email directly;
// legacy rows imported from the old directory are uuid-keyed with the
// email only in the Email column. When the legacy path hits, the row is
// re-keyed onto the email so the next read takes the fast path.
func (dao *UserDAO) GetUser(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := dao.DB.WithContext(ctx).First(&user, "id = ?", email).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	// Legacy read path: uuid-keyed row with matching email field.
	err = dao.DB.WithContext(ctx).Where("email = ? AND id <> ?", email, email).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	migrated := user
	migrated.ID = email
	migrateErr := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.User{}, "id = ?", user.ID).Error; err != nil {
			return err
		}
		return tx.Create(&migrated).Error
	})
	if migrateErr != nil {
		// Migration is best-effort; the legacy row still answers reads.
		return &user, nil
	}
	return &migrated, nil
}

func (dao *UserDAO) CreateUser(ctx context.Context, email, role string, name *string) (*models.User, error) {
	user := models.User{
		ID:    email,
		Email: email,
		Role:  role,
		Name:  name,
	}
	err := dao.DB.WithContext(ctx).Create(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (dao *UserDAO) UpdateRole(ctx context.Context, email, role string) (bool, error) {
	res := dao.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? OR email = ?", email, email).
		Update("role", role)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (dao *UserDAO) DeleteUser(ctx context.Context, email string) (bool, error) {
	res := dao.DB.WithContext(ctx).
		Where("id = ? OR email = ?", email, email).
		Delete(&models.User{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (dao *UserDAO) GetAllUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := dao.DB.WithContext(ctx).Order("email asc").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
