// Package repository provides data access layer for the user service.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/GunarsK-portfolio/user-service/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
}

// userRecord is the on-disk shape of a user. It keeps the password hash,
// which models.User never serializes.
type userRecord struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password,omitempty"`
	Role     models.Role `json:"role,omitempty"`
}

type database struct {
	Users []userRecord `json:"users"`
}

type fileUserRepository struct {
	mu   sync.RWMutex
	path string
}

// NewFileUserRepository creates a UserRepository backed by a JSON file.
// The file does not need to exist; it is created on the first write.
func NewFileUserRepository(path string) UserRepository {
	return &fileUserRepository{path: path}
}

func (r *fileUserRepository) List(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	db, err := r.read()
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(db.Users))
	for _, rec := range db.Users {
		users = append(users, rec.toModel())
	}
	return users, nil
}

func (r *fileUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	db, err := r.read()
	if err != nil {
		return nil, err
	}

	if i := db.indexByID(id); i >= 0 {
		user := db.Users[i].toModel()
		return &user, nil
	}
	return nil, fmt.Errorf("failed to find user by id %d: %w", id, ErrUserNotFound)
}

func (r *fileUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	db, err := r.read()
	if err != nil {
		return nil, err
	}

	if i := db.indexByEmail(email); i >= 0 {
		user := db.Users[i].toModel()
		return &user, nil
	}
	return nil, fmt.Errorf("failed to find user by email %s: %w", email, ErrUserNotFound)
}

// Create assigns the next id to user and appends it. The email uniqueness
// check and the id assignment happen under the same write lock.
func (r *fileUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	db, err := r.read()
	if err != nil {
		return err
	}

	if db.indexByEmail(user.Email) >= 0 {
		return fmt.Errorf("failed to create user %s: %w", user.Email, ErrEmailTaken)
	}

	user.ID = db.nextID()
	db.Users = append(db.Users, recordFromModel(user))

	if err := r.write(db); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *fileUserRepository) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	db, err := r.read()
	if err != nil {
		return nil, err
	}

	i := db.indexByID(id)
	if i < 0 {
		return nil, fmt.Errorf("failed to update user id %d: %w", id, ErrUserNotFound)
	}

	rec := db.Users[i]
	if patch.Name != "" {
		rec.Name = patch.Name
	}
	if patch.Email != "" && patch.Email != rec.Email {
		if db.indexByEmail(patch.Email) >= 0 {
			return nil, fmt.Errorf("failed to update user id %d: %w", id, ErrEmailTaken)
		}
		rec.Email = patch.Email
	}
	db.Users[i] = rec

	if err := r.write(db); err != nil {
		return nil, fmt.Errorf("failed to update user id %d: %w", id, err)
	}

	user := rec.toModel()
	return &user, nil
}

// read loads the whole file. Callers must hold r.mu.
func (r *fileUserRepository) read() (*database, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &database{Users: []userRecord{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.path, err)
	}

	db := &database{}
	if len(data) == 0 {
		return db, nil
	}
	if err := json.Unmarshal(data, db); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", r.path, err)
	}
	return db, nil
}

// write replaces the file through a temp file and rename so readers never
// observe a partial document. Callers must hold r.mu for writing.
func (r *fileUserRepository) write(db *database) error {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode users: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", r.path, err)
	}
	return nil
}

func (db *database) indexByID(id int64) int {
	for i, rec := range db.Users {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

func (db *database) indexByEmail(email string) int {
	for i, rec := range db.Users {
		if rec.Email == email {
			return i
		}
	}
	return -1
}

// nextID is max(existing ids) + 1, so ids are never reused.
func (db *database) nextID() int64 {
	var maxID int64
	for _, rec := range db.Users {
		if rec.ID > maxID {
			maxID = rec.ID
		}
	}
	return maxID + 1
}

func (rec userRecord) toModel() models.User {
	role := rec.Role
	if role == "" {
		role = models.RoleUser
	}
	return models.User{
		ID:           rec.ID,
		Name:         rec.Name,
		Email:        rec.Email,
		PasswordHash: rec.Password,
		Role:         role,
	}
}

func recordFromModel(user *models.User) userRecord {
	return userRecord{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Password: user.PasswordHash,
		Role:     user.Role,
	}
}
