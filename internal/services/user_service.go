package services

import (
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/fartlog/fartlog-be/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(username, password string) (models.User, error)
	Authenticate(username, password string) (models.User, error)
	GetByID(id int64) (models.User, error)
}

// UserService provides registration and credential checks.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// Register creates a new account. Usernames are lowercased before the
// uniqueness check, so "Foo" and "foo" collide.
func (s *UserService) Register(username, password string) (models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return models.User{}, errInvalidRequest("Missing username or password")
	}

	var exists int
	err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE username = ?", username).Scan(&exists)
	if err != nil {
		return models.User{}, err
	}
	if exists > 0 {
		return models.User{}, ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	res, err := s.db.Exec("INSERT INTO users (username, password_hash) VALUES (?, ?)", username, string(hashed))
	if err != nil {
		return models.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	return s.GetByID(id)
}

// Authenticate verifies a username/password pair. A missing user and a wrong
// password are indistinguishable to the caller.
func (s *UserService) Authenticate(username, password string) (models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return models.User{}, errInvalidRequest("Missing username or password")
	}

	var user models.User
	row := s.db.QueryRow("SELECT id, username, password_hash FROM users WHERE username = ?", username)
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err == sql.ErrNoRows {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID retrieves a single user by id.
func (s *UserService) GetByID(id int64) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, password_hash FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
