package handlers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"microblog/internal/models"
	"microblog/internal/repositories"
	"microblog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const dateLayout = "2006-01-02"

// WebHandler serves the server-rendered HTML pages.
type WebHandler struct {
	users    *services.UserService
	posts    *services.PostService
	store    *session.Store
	validate *validator.Validate
}

// NewWebHandler creates a new WebHandler. The session store backs the
// flash messages shown after a write.
func NewWebHandler(users *services.UserService, posts *services.PostService, store *session.Store) *WebHandler {
	return &WebHandler{
		users:    users,
		posts:    posts,
		store:    store,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the page routes with the Fiber app.
// Static routes go first so they win over the :id routes.
func (h *WebHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleUserList)
	router.Get("/users/", h.HandleUserList)
	router.Get("/new_user/", h.HandleNewUserForm)
	router.Post("/new_user/", h.HandleNewUser)
	router.Get("/users/:id/", h.HandleUserDetail)
	router.Get("/edit_user/:id/", h.HandleEditUserForm)
	router.Post("/edit_user/:id/", h.HandleEditUser)
	router.Get("/delete_user/:id/", h.HandleDeleteUser)

	router.Get("/posts/", h.HandlePostList)
	router.Post("/posts/", h.HandlePostList)
	router.Get("/new_post/", h.HandleNewPostForm)
	router.Post("/new_post/", h.HandleNewPost)
	router.Get("/posts/:id/", h.HandlePostDetail)
	router.Get("/edit_post/:id/", h.HandleEditPostForm)
	router.Post("/edit_post/:id/", h.HandleEditPost)
	router.Get("/delete_post/:id/", h.HandleDeletePost)
}

// HandleUserList renders the list of users with their post counts.
func (h *WebHandler) HandleUserList(c *fiber.Ctx) error {
	users, err := h.users.GetAllUsers()
	if err != nil {
		log.Printf("Error getting users for list page: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not retrieve users")
	}

	rows := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		rows = append(rows, fiber.Map{
			"ID":           u.ID,
			"Username":     u.Username,
			"Email":        u.Email,
			"FirstName":    u.FirstName,
			"LastName":     u.LastName,
			"Location":     u.Location,
			"RegisteredAt": u.RegisteredAt.Format(dateLayout),
			"NumPosts":     len(u.Posts),
		})
	}

	category, message := h.popFlash(c)
	return c.Render("user_list", fiber.Map{
		"Users":         rows,
		"FlashCategory": category,
		"FlashMessage":  message,
	})
}

// HandleNewUserForm renders the user creation form.
func (h *WebHandler) HandleNewUserForm(c *fiber.Ctx) error {
	return c.Render("new_user", fiber.Map{})
}

// HandleNewUser processes the user creation form and redirects home.
func (h *WebHandler) HandleNewUser(c *fiber.Ctx) error {
	user := models.User{
		Username:  c.FormValue("username"),
		Email:     c.FormValue("email"),
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Location:  c.FormValue("location"),
	}

	if err := h.validate.Struct(user); err != nil {
		h.flash(c, "error", "Error. All fields are required and must be valid")
		return c.Redirect("/")
	}

	if err := h.users.CreateUser(&user); err != nil {
		log.Printf("Error creating user from form: %v", err)
		if errors.Is(err, repositories.ErrConflict) {
			h.flash(c, "error", "Error. Username or email is already exist")
		} else {
			h.flash(c, "error", "Error. Could not create user record")
		}
		return c.Redirect("/")
	}

	h.flash(c, "message", "New user record created!")
	return c.Redirect("/")
}

// HandleUserDetail renders a single user page.
func (h *WebHandler) HandleUserDetail(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.Params("id"))
	if err != nil {
		log.Printf("Error getting user %s for detail page: %v", c.Params("id"), err)
		return c.Redirect("/")
	}

	return c.Render("user", fiber.Map{
		"ID":           user.ID,
		"Username":     user.Username,
		"Email":        user.Email,
		"FirstName":    user.FirstName,
		"LastName":     user.LastName,
		"Location":     user.Location,
		"RegisteredAt": user.RegisteredAt.Format(dateLayout),
		"NumPosts":     len(user.Posts),
	})
}

// HandleEditUserForm renders the user edit form with current values.
func (h *WebHandler) HandleEditUserForm(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.Params("id"))
	if err != nil {
		log.Printf("Error getting user %s for edit page: %v", c.Params("id"), err)
		return c.Redirect("/")
	}

	return c.Render("edit_user", fiber.Map{
		"ID":        user.ID,
		"Username":  user.Username,
		"Email":     user.Email,
		"FirstName": user.FirstName,
		"LastName":  user.LastName,
		"Location":  user.Location,
	})
}

// HandleEditUser processes the user edit form. Empty form fields leave the
// stored values untouched.
func (h *WebHandler) HandleEditUser(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Redirect("/")
	}

	params := services.UpdateUserParams{
		ID:        uint(id),
		Username:  optionalForm(c.FormValue("username")),
		Email:     optionalForm(c.FormValue("email")),
		FirstName: optionalForm(c.FormValue("first_name")),
		LastName:  optionalForm(c.FormValue("last_name")),
		Location:  optionalForm(c.FormValue("location")),
	}

	if err := h.users.UpdateUser(params); err != nil {
		log.Printf("Error updating user %d from form: %v", id, err)
		h.flash(c, "error", "Error. No such user record in the db")
		return c.Redirect("/")
	}

	h.flash(c, "message", "User record updated!")
	return c.Redirect("/")
}

// HandleDeleteUser deletes a user and redirects home.
func (h *WebHandler) HandleDeleteUser(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Redirect("/")
	}

	if err := h.users.DeleteUser(uint(id)); err != nil {
		log.Printf("Error deleting user %d from page: %v", id, err)
		h.flash(c, "error", "No such user record in the db")
		return c.Redirect("/")
	}

	h.flash(c, "message", "User record deleted!")
	return c.Redirect("/")
}

// HandlePostList renders the list of posts. A POST request filters the list
// by date range and author.
func (h *WebHandler) HandlePostList(c *fiber.Ctx) error {
	users, err := h.users.GetAllUsers()
	if err != nil {
		log.Printf("Error getting users for post list page: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not retrieve users")
	}

	var posts []models.Post
	if c.Method() == fiber.MethodPost {
		from, to, authorID, parseErr := parsePostFilter(c)
		if parseErr != nil {
			h.flash(c, "error", "Error. Invalid filter values")
			return c.Redirect("/posts/")
		}
		posts, err = h.posts.GetFilteredPosts(from, to, authorID)
	} else {
		posts, err = h.posts.GetAllPosts()
	}
	if err != nil {
		log.Printf("Error getting posts for list page: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not retrieve posts")
	}

	authorNames := make(map[uint]string, len(users))
	for _, u := range users {
		authorNames[u.ID] = u.FirstName + " " + u.LastName
	}

	rows := make([]fiber.Map, 0, len(posts))
	for _, p := range posts {
		author := ""
		if p.AuthorID != nil {
			author = authorNames[*p.AuthorID]
		}
		rows = append(rows, fiber.Map{
			"ID":        p.ID,
			"Title":     p.Title,
			"CreatedAt": p.CreatedAt.Format(dateLayout),
			"Author":    author,
		})
	}

	category, message := h.popFlash(c)
	return c.Render("post_list", fiber.Map{
		"Posts":         rows,
		"Users":         users,
		"FlashCategory": category,
		"FlashMessage":  message,
	})
}

// HandleNewPostForm renders the post creation form with an author select.
func (h *WebHandler) HandleNewPostForm(c *fiber.Ctx) error {
	users, err := h.users.GetAllUsers()
	if err != nil {
		log.Printf("Error getting users for new post page: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not retrieve users")
	}
	return c.Render("new_post", fiber.Map{
		"Users": users,
	})
}

// HandleNewPost processes the post creation form and redirects to the list.
func (h *WebHandler) HandleNewPost(c *fiber.Ctx) error {
	post := models.Post{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
	}
	if raw := c.FormValue("author_id"); raw != "" {
		authorID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			h.flash(c, "error", "Error. Invalid author")
			return c.Redirect("/posts/")
		}
		id := uint(authorID)
		post.AuthorID = &id
	}

	if err := h.validate.Struct(post); err != nil {
		h.flash(c, "error", "Error. Title and description are required")
		return c.Redirect("/posts/")
	}

	if err := h.posts.CreatePost(&post); err != nil {
		log.Printf("Error creating post from form: %v", err)
		h.flash(c, "error", "Error. Could not create post record")
		return c.Redirect("/posts/")
	}

	h.flash(c, "message", "New post record created!")
	return c.Redirect("/posts/")
}

// HandlePostDetail renders a single post page with the author's name.
// An unknown ID redirects home, as the original pages did.
func (h *WebHandler) HandlePostDetail(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Redirect("/")
	}

	post, err := h.posts.GetPost(uint(id))
	if err != nil {
		log.Printf("Error getting post %d for detail page: %v", id, err)
		return c.Redirect("/")
	}

	firstName, lastName := "", ""
	if post.Author != nil {
		firstName = post.Author.FirstName
		lastName = post.Author.LastName
	}

	return c.Render("post", fiber.Map{
		"ID":          post.ID,
		"Title":       post.Title,
		"Description": post.Description,
		"CreatedAt":   post.CreatedAt.Format(dateLayout),
		"FirstName":   firstName,
		"LastName":    lastName,
	})
}

// HandleEditPostForm renders the post edit form with current values.
func (h *WebHandler) HandleEditPostForm(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Redirect("/posts/")
	}

	post, err := h.posts.GetPost(uint(id))
	if err != nil {
		log.Printf("Error getting post %d for edit page: %v", id, err)
		return c.Redirect("/posts/")
	}

	return c.Render("edit_post", fiber.Map{
		"ID":          post.ID,
		"Title":       post.Title,
		"Description": post.Description,
	})
}

// HandleEditPost processes the post edit form. Empty form fields leave the
// stored values untouched.
func (h *WebHandler) HandleEditPost(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Redirect("/posts/")
	}

	params := services.UpdatePostParams{
		ID:          uint(id),
		Title:       optionalForm(c.FormValue("title")),
		Description: optionalForm(c.FormValue("description")),
	}

	if err := h.posts.UpdatePost(params); err != nil {
		log.Printf("Error updating post %d from form: %v", id, err)
		h.flash(c, "error", "Error. No such post record in the db")
		return c.Redirect("/posts/")
	}

	h.flash(c, "message", "Post record updated!")
	return c.Redirect("/posts/" + strconv.FormatUint(id, 10) + "/")
}

// HandleDeletePost deletes a post and redirects to the list.
func (h *WebHandler) HandleDeletePost(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Redirect("/posts/")
	}

	if err := h.posts.DeletePost(uint(id)); err != nil {
		log.Printf("Error deleting post %d from page: %v", id, err)
		h.flash(c, "error", "Error. No such post record in the db")
		return c.Redirect("/posts/")
	}

	h.flash(c, "message", "Post record deleted!")
	return c.Redirect("/posts/")
}

// parsePostFilter reads the date range and author from the filter form.
// Missing dates default to an open-ended range.
func parsePostFilter(c *fiber.Ctx) (from, to time.Time, authorID uint, err error) {
	from = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	to = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

	if raw := c.FormValue("date_from"); raw != "" {
		from, err = time.Parse(dateLayout, raw)
		if err != nil {
			return from, to, 0, err
		}
	}
	if raw := c.FormValue("date_to"); raw != "" {
		to, err = time.Parse(dateLayout, raw)
		if err != nil {
			return from, to, 0, err
		}
		// Include the whole closing day.
		to = to.Add(24*time.Hour - time.Second)
	}

	id, err := strconv.ParseUint(c.FormValue("author_id"), 10, 64)
	if err != nil {
		return from, to, 0, err
	}
	return from, to, uint(id), nil
}

func (h *WebHandler) flash(c *fiber.Ctx, category, message string) {
	sess, err := h.store.Get(c)
	if err != nil {
		log.Printf("Error getting session for flash: %v", err)
		return
	}
	sess.Set("flash_category", category)
	sess.Set("flash_message", message)
	if err := sess.Save(); err != nil {
		log.Printf("Error saving session for flash: %v", err)
	}
}

func (h *WebHandler) popFlash(c *fiber.Ctx) (category, message string) {
	sess, err := h.store.Get(c)
	if err != nil {
		log.Printf("Error getting session for flash: %v", err)
		return "", ""
	}
	if v, ok := sess.Get("flash_category").(string); ok {
		category = v
	}
	if v, ok := sess.Get("flash_message").(string); ok {
		message = v
	}
	if message != "" {
		sess.Delete("flash_category")
		sess.Delete("flash_message")
		if err := sess.Save(); err != nil {
			log.Printf("Error saving session after flash read: %v", err)
		}
	}
	return category, message
}
