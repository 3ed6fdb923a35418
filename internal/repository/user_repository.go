package repository

import (
	"property-crm/internal/models"

	"github.com/jmoiron/sqlx"
)

const userColumns = "id, name, username, email, password_hash, role, is_active, created_at, updated_at"

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) findOne(where string, arg interface{}) (*models.User, error) {
	var user models.User
	query := "SELECT " + userColumns + " FROM users WHERE " + where + " LIMIT 1"
	if err := r.db.Get(&user, query, arg); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(username string) (*models.User, error) {
	return r.findOne("username = ?", username)
}

func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	return r.findOne("email = ?", email)
}

func (r *UserRepository) FindByID(id int) (*models.User, error) {
	return r.findOne("id = ?", id)
}

func (r *UserRepository) Create(user *models.User) error {
	query := `INSERT INTO users (name, username, email, password_hash, role, is_active)
	          VALUES (:name, :username, :email, :password_hash, :role, :is_active)`
	result, err := r.db.NamedExec(query, user)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	user.ID = int(id)
	return nil
}
