package handlers

import (
	"errors"
	"fmt"
	"log"

	"microblog/internal/models"
	"microblog/internal/repositories"
	"microblog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles REST requests for users.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleGetUsers)
	router.Get("/users/", h.HandleGetUsers)
	router.Post("/create_user/", h.HandleCreateUser)
	router.Get("/get_user/", h.HandleGetUser)
	router.Put("/update_user/", h.HandleUpdateUser)
	router.Delete("/delete_user/", h.HandleDeleteUser)
}

// HandleGetUsers retrieves all users with their posts.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.service.GetAllUsers()
	if err != nil {
		log.Printf("Error getting all users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve users",
			"error":   err.Error(),
		})
	}
	return c.JSON(users)
}

// HandleCreateUser creates a new user.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var user models.User
	if err := c.BodyParser(&user); err != nil {
		log.Printf("Error parsing create user request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(user); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationMessages(err),
		})
	}

	if err := h.service.CreateUser(&user); err != nil {
		log.Printf("Error creating user %s: %v", user.Username, err)
		if errors.Is(err, repositories.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Error. Username or email is already exist",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create user",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("User %s has been created", user.Username),
	})
}

// HandleGetUser retrieves a single user by numeric ID or by email.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	identifier := c.Query("id")
	user, err := h.service.GetUser(identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNoContent).JSON(fiber.Map{
				"message": "Not Found",
			})
		}
		log.Printf("Error getting user %s: %v", identifier, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve user",
			"error":   err.Error(),
		})
	}
	return c.JSON(user)
}

// UpdateUserRequest is the request body for a partial user update.
// Absent fields leave the stored values untouched.
type UpdateUserRequest struct {
	ID        uint    `json:"id" validate:"required"`
	Username  *string `json:"username" validate:"omitempty,max=30"`
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	FirstName *string `json:"first_name" validate:"omitempty,max=35"`
	LastName  *string `json:"last_name" validate:"omitempty,max=35"`
	Location  *string `json:"location" validate:"omitempty,max=45"`
}

// HandleUpdateUser applies a partial update to an existing user.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update user request body: %v", err)
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

	params := services.UpdateUserParams{
		ID:        req.ID,
		Username:  optional(req.Username),
		Email:     optional(req.Email),
		FirstName: optional(req.FirstName),
		LastName:  optional(req.LastName),
		Location:  optional(req.Location),
	}

	if err := h.service.UpdateUser(params); err != nil {
		log.Printf("Error updating user %d: %v", req.ID, err)
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Error. No such user record in the db",
			})
		}
		if errors.Is(err, repositories.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Error. Username or email is already exist",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update user",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("User %d has been updated", req.ID),
	})
}

// DeleteRequest is the request body for a delete operation.
type DeleteRequest struct {
	ID uint `json:"id" validate:"required"`
}

// HandleDeleteUser deletes a user and, by cascade, all their posts.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	var req DeleteRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing delete user request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.service.DeleteUser(req.ID); err != nil {
		log.Printf("Error deleting user %d: %v", req.ID, err)
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "No such user record in the db",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete user",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("User id: %d has been deleted", req.ID),
	})
}
