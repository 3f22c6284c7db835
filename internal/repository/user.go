package repository

import (
	"context"

	"bitacora/internal/models"
	"bitacora/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository reads identity references. Users are issued by the identity
// provider; Upsert exists for seeding and the development bootstrap.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger("users")}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	users := []*models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Select(models.PublicUserColumns).Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, translateError(err, "User", "")
	}
	return users, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role models.UserRole) ([]*models.User, error) {
	users := []*models.User{}
	err := r.db.WithContext(ctx).
		Select(models.PublicUserColumns).
		Where("role = ?", role).
		Order("name ASC").
		Find(&users).Error
	if err != nil {
		return nil, translateError(err, "User", "")
	}
	return users, nil
}

// Upsert inserts the user or refreshes its profile columns by id.
func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "username", "image", "role", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		r.log.LogError(ctx, err, "upsert")
		return translateError(err, "User", user.ID)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"id": user.ID, "role": user.Role})
	return nil
}
