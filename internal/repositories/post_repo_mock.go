package repositories

import (
	"fmt"
	"sync"
	"time"

	"microblog/internal/models"
)

// MockPostRepository is an in-memory implementation of PostRepository.
type MockPostRepository struct {
	posts  map[uint]models.Post
	nextID uint
	mu     sync.RWMutex
}

// NewMockPostRepository creates a new instance of MockPostRepository.
func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{
		posts:  make(map[uint]models.Post),
		nextID: 1,
	}
}

// GetAll returns all posts.
func (r *MockPostRepository) GetAll() ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	postList := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		postList = append(postList, p)
	}
	return postList, nil
}

// GetByID returns a post by its ID.
func (r *MockPostRepository) GetByID(id uint) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("post with ID %d: %w", id, ErrNotFound)
	}
	return &post, nil
}

// GetFiltered returns the posts of one author created inside the given date range.
func (r *MockPostRepository) GetFiltered(from, to time.Time, authorID uint) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var postList []models.Post
	for _, p := range r.posts {
		if p.AuthorID == nil || *p.AuthorID != authorID {
			continue
		}
		if p.CreatedAt.Before(from) || p.CreatedAt.After(to) {
			continue
		}
		postList = append(postList, p)
	}
	return postList, nil
}

// Create adds a new post, assigning an ID and creation time.
func (r *MockPostRepository) Create(post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if post.ID == 0 {
		post.ID = r.nextID
		r.nextID++
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	r.posts[post.ID] = *post
	return nil
}

// Update modifies an existing post.
func (r *MockPostRepository) Update(post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.posts[post.ID]
	if !ok {
		return fmt.Errorf("post with ID %d not found for update: %w", post.ID, ErrNotFound)
	}
	r.posts[post.ID] = *post
	return nil
}

// Delete removes a post by its ID.
func (r *MockPostRepository) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.posts[id]
	if !ok {
		return fmt.Errorf("post with ID %d not found for deletion: %w", id, ErrNotFound)
	}
	delete(r.posts, id)
	return nil
}
