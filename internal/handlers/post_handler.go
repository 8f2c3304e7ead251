package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"microblog/internal/models"
	"microblog/internal/repositories"
	"microblog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PostHandler handles REST requests for posts.
type PostHandler struct {
	service  *services.PostService
	validate *validator.Validate
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service *services.PostService) *PostHandler {
	return &PostHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the post routes with the Fiber app.
func (h *PostHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/posts/", h.HandleGetPosts)
	router.Post("/create_post/", h.HandleCreatePost)
	router.Get("/get_post/", h.HandleGetPost)
	router.Put("/update_post/", h.HandleUpdatePost)
	router.Delete("/delete_post/", h.HandleDeletePost)
}

// HandleGetPosts retrieves all posts.
func (h *PostHandler) HandleGetPosts(c *fiber.Ctx) error {
	posts, err := h.service.GetAllPosts()
	if err != nil {
		log.Printf("Error getting all posts: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve posts",
			"error":   err.Error(),
		})
	}
	return c.JSON(posts)
}

// HandleCreatePost creates a new post. There is no uniqueness check.
func (h *PostHandler) HandleCreatePost(c *fiber.Ctx) error {
	var post models.Post
	if err := c.BodyParser(&post); err != nil {
		log.Printf("Error parsing create post request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(post); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationMessages(err),
		})
	}

	if err := h.service.CreatePost(&post); err != nil {
		log.Printf("Error creating post %s: %v", post.Title, err)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Could not create post",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("Post %s has been created", post.Title),
	})
}

// HandleGetPost retrieves a single post by its ID.
func (h *PostHandler) HandleGetPost(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Query("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusNoContent).JSON(fiber.Map{
			"message": "Not Found",
		})
	}

	post, err := h.service.GetPost(uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNoContent).JSON(fiber.Map{
				"message": "Not Found",
			})
		}
		log.Printf("Error getting post %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve post",
			"error":   err.Error(),
		})
	}
	return c.JSON(post)
}

// UpdatePostRequest is the request body for a partial post update.
// Absent fields leave the stored values untouched.
type UpdatePostRequest struct {
	ID          uint    `json:"id" validate:"required"`
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
}

// HandleUpdatePost applies a partial update to an existing post.
func (h *PostHandler) HandleUpdatePost(c *fiber.Ctx) error {
	var req UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update post request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationMessages(err),
		})
	}

	params := services.UpdatePostParams{
		ID:          req.ID,
		Title:       optional(req.Title),
		Description: optional(req.Description),
	}

	if err := h.service.UpdatePost(params); err != nil {
		log.Printf("Error updating post %d: %v", req.ID, err)
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Error. No such post record in the db",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update post",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("Post %d has been updated", req.ID),
	})
}

// HandleDeletePost deletes a post by its ID.
func (h *PostHandler) HandleDeletePost(c *fiber.Ctx) error {
	var req DeleteRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing delete post request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.service.DeletePost(req.ID); err != nil {
		log.Printf("Error deleting post %d: %v", req.ID, err)
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Error. No such post record in the db",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete post",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Post id: %d has been deleted", req.ID),
	})
}
