package repositories

import (
	"errors"
	"fmt"
	"time"

	"microblog/internal/models"

	"gorm.io/gorm"
)

// GORMPostRepository is a GORM implementation of PostRepository.
type GORMPostRepository struct {
	db *gorm.DB
}

// NewGORMPostRepository creates a new instance of GORMPostRepository.
func NewGORMPostRepository(db *gorm.DB) *GORMPostRepository {
	return &GORMPostRepository{
		db: db,
	}
}

// GetAll retrieves all posts from the database.
func (r *GORMPostRepository) GetAll() ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get all posts: %w", err)
	}
	return posts, nil
}

// GetByID retrieves a single post with its author from the database.
func (r *GORMPostRepository) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.Preload("Author").First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post by ID %d: %w", id, err)
	}
	return &post, nil
}

// GetFiltered retrieves the posts of one author created inside the given date range.
func (r *GORMPostRepository) GetFiltered(from, to time.Time, authorID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.
		Where("created_at >= ? AND created_at <= ?", from, to).
		Where("author_id = ?", authorID).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get filtered posts: %w", err)
	}
	return posts, nil
}

// Create inserts a new post. Missing required fields are rejected by the store.
func (r *GORMPostRepository) Create(post *models.Post) error {
	if err := r.db.Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// Update persists the post's current field values.
func (r *GORMPostRepository) Update(post *models.Post) error {
	res := r.db.Omit("Author").Save(post)
	if res.Error != nil {
		return fmt.Errorf("failed to update post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("post with ID %d not found for update: %w", post.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a post by its ID.
func (r *GORMPostRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Post{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("post with ID %d not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}
