package services

import (
	"log"
	"time"

	"microblog/internal/models"
	"microblog/internal/repositories"
	"microblog/pkg/rabbitmq"
)

// PostService handles business logic related to posts.
type PostService struct {
	repo     repositories.PostRepository
	mqClient *rabbitmq.Client
}

// NewPostService creates a new PostService. mqClient may be nil, in which
// case record events are not published.
func NewPostService(repo repositories.PostRepository, mqClient *rabbitmq.Client) *PostService {
	return &PostService{
		repo:     repo,
		mqClient: mqClient,
	}
}

// UpdatePostParams carries a partial update for a post. A nil field means
// "not supplied" and leaves the stored value untouched.
type UpdatePostParams struct {
	ID          uint
	Title       *string
	Description *string
}

// GetAllPosts retrieves all posts.
func (s *PostService) GetAllPosts() ([]models.Post, error) {
	return s.repo.GetAll()
}

// GetFilteredPosts retrieves the posts of one author created inside the
// given date range.
func (s *PostService) GetFilteredPosts(from, to time.Time, authorID uint) ([]models.Post, error) {
	return s.repo.GetFiltered(from, to, authorID)
}

// GetPost retrieves a single post with its author.
func (s *PostService) GetPost(id uint) (*models.Post, error) {
	return s.repo.GetByID(id)
}

// CreatePost inserts a new post. There is no uniqueness check; missing
// required fields are rejected by the store.
func (s *PostService) CreatePost(post *models.Post) error {
	if err := s.repo.Create(post); err != nil {
		return err
	}
	s.publishEvent("created", post.ID)
	return nil
}

// UpdatePost applies the supplied fields to an existing post, leaving absent
// fields untouched.
func (s *PostService) UpdatePost(params UpdatePostParams) error {
	post, err := s.repo.GetByID(params.ID)
	if err != nil {
		return err
	}

	if params.Title != nil {
		post.Title = *params.Title
	}
	if params.Description != nil {
		post.Description = *params.Description
	}

	if err := s.repo.Update(post); err != nil {
		return err
	}
	s.publishEvent("updated", post.ID)
	return nil
}

// DeletePost removes a post by its ID.
func (s *PostService) DeletePost(id uint) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.publishEvent("deleted", id)
	return nil
}

func (s *PostService) publishEvent(action string, id uint) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.PublishRecordEvent("post", action, id); err != nil {
		log.Printf("Warning: failed to publish post %s event for ID %d: %v", action, id, err)
	}
}
