package identity

import (
	"errors"
	"idea-review-platform/internal/domain"

	"gorm.io/gorm"
)

// Directory answers role questions for the review and decision engines.
// Roles are opaque strings; admin satisfies every check.
type Directory interface {
	HasRole(userID uint64, role string) (bool, error)
	CountUsersWithRole(role string) (int64, error)
}

type GormDirectory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

func (d *GormDirectory) HasRole(userID uint64, role string) (bool, error) {
	var count int64
	err := d.db.Model(&domain.UserRole{}).
		Where("user_id = ? AND role IN ?", userID, []string{role, domain.RoleAdmin}).
		Count(&count).Error
	return count > 0, err
}

func (d *GormDirectory) CountUsersWithRole(role string) (int64, error) {
	var count int64
	err := d.db.Model(&domain.UserRole{}).
		Where("role = ?", role).
		Distinct("user_id").
		Count(&count).Error
	return count, err
}

// Grant is idempotent; granting an existing role is a no-op.
func (d *GormDirectory) Grant(userID uint64, role string) error {
	err := d.db.Create(&domain.UserRole{UserID: userID, Role: role}).Error
	if isDuplicateGrant(err) {
		return nil
	}
	return err
}

func isDuplicateGrant(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func (d *GormDirectory) Revoke(userID uint64, role string) error {
	return d.db.Where("user_id = ? AND role = ?", userID, role).
		Delete(&domain.UserRole{}).Error
}
