package repositories_test

import (
	"fmt"
	"testing"
	"time"

	"microblog/internal/models"
	"microblog/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupDB opens a fresh in-memory SQLite database for one test.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}))
	return db
}

func newUser(username, email string) *models.User {
	return &models.User{
		Username:  username,
		Email:     email,
		FirstName: "John",
		LastName:  "Smith",
		Location:  "Ukraine",
	}
}

func TestGORMUserRepository_CreateAndGet(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMUserRepository(db)

	user := newUser("coolguy", "test@gmail.com")
	require.NoError(t, repo.Create(user))
	assert.NotZero(t, user.ID)
	assert.False(t, user.RegisteredAt.IsZero())

	byID, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "coolguy", byID.Username)

	byEmail, err := repo.GetByEmail("test@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.GetByID(999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = repo.GetByEmail("nobody@example.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMUserRepository_UniqueConstraints(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMUserRepository(db)

	require.NoError(t, repo.Create(newUser("coolguy", "test@gmail.com")))

	// Same email, different username: the store rejects the insert even
	// without the service's pre-check.
	err := repo.Create(newUser("otherguy", "test@gmail.com"))
	assert.ErrorIs(t, err, repositories.ErrConflict)

	// Same username, different email: usernames are unique in the schema
	// too, so a racing create cannot slip a duplicate in.
	err = repo.Create(newUser("coolguy", "other@gmail.com"))
	assert.ErrorIs(t, err, repositories.ErrConflict)
}

func TestGORMUserRepository_ExistenceChecks(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMUserRepository(db)

	require.NoError(t, repo.Create(newUser("coolguy", "test@gmail.com")))

	taken, err := repo.ExistsByEmail("test@gmail.com")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.ExistsByEmail("free@example.com")
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.ExistsByUsername("coolguy")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.ExistsByUsername("freeguy")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestGORMUserRepository_Update(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMUserRepository(db)

	user := newUser("coolguy", "test@gmail.com")
	require.NoError(t, repo.Create(user))
	registered := user.RegisteredAt

	user.Location = "Ukraine/Kyiv"
	require.NoError(t, repo.Update(user))

	reloaded, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ukraine/Kyiv", reloaded.Location)
	assert.Equal(t, "coolguy", reloaded.Username)
	assert.Equal(t, "test@gmail.com", reloaded.Email)
	assert.Equal(t, "John", reloaded.FirstName)
	assert.Equal(t, "Smith", reloaded.LastName)
	// The registration timestamp is a create-only column.
	assert.WithinDuration(t, registered, reloaded.RegisteredAt, time.Second)
}

func TestGORMUserRepository_DeleteCascadesToPosts(t *testing.T) {
	db := setupDB(t)
	userRepo := repositories.NewGORMUserRepository(db)
	postRepo := repositories.NewGORMPostRepository(db)

	user := newUser("coolguy", "test@gmail.com")
	require.NoError(t, userRepo.Create(user))

	owned := &models.Post{Title: "Owned", Description: "Body", AuthorID: &user.ID}
	require.NoError(t, postRepo.Create(owned))
	ownedToo := &models.Post{Title: "Owned too", Description: "Body", AuthorID: &user.ID}
	require.NoError(t, postRepo.Create(ownedToo))
	orphan := &models.Post{Title: "Orphan", Description: "No author"}
	require.NoError(t, postRepo.Create(orphan))

	require.NoError(t, userRepo.Delete(user.ID))

	posts, err := postRepo.GetAll()
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Orphan", posts[0].Title)

	err = userRepo.Delete(user.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMPostRepository_CRUD(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMPostRepository(db)

	post := &models.Post{Title: "First post", Description: "Hello"}
	require.NoError(t, repo.Create(post))
	assert.NotZero(t, post.ID)

	got, err := repo.GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "First post", got.Title)
	assert.Nil(t, got.AuthorID)

	got.Title = "Renamed post"
	require.NoError(t, repo.Update(got))

	reloaded, err := repo.GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed post", reloaded.Title)
	assert.Equal(t, "Hello", reloaded.Description)

	require.NoError(t, repo.Delete(post.ID))
	_, err = repo.GetByID(post.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(post.ID), repositories.ErrNotFound)
}

func TestGORMPostRepository_GetByIDPreloadsAuthor(t *testing.T) {
	db := setupDB(t)
	userRepo := repositories.NewGORMUserRepository(db)
	postRepo := repositories.NewGORMPostRepository(db)

	user := newUser("coolguy", "test@gmail.com")
	require.NoError(t, userRepo.Create(user))
	post := &models.Post{Title: "With author", Description: "Body", AuthorID: &user.ID}
	require.NoError(t, postRepo.Create(post))

	got, err := postRepo.GetByID(post.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Author)
	assert.Equal(t, "John", got.Author.FirstName)
	assert.Equal(t, "Smith", got.Author.LastName)
}

func TestGORMPostRepository_GetFiltered(t *testing.T) {
	db := setupDB(t)
	userRepo := repositories.NewGORMUserRepository(db)
	postRepo := repositories.NewGORMPostRepository(db)

	user := newUser("coolguy", "test@gmail.com")
	require.NoError(t, userRepo.Create(user))
	other := newUser("otherguy", "other@gmail.com")
	require.NoError(t, userRepo.Create(other))

	day := func(d int) time.Time {
		return time.Date(2023, 6, d, 12, 0, 0, 0, time.UTC)
	}
	inRange := &models.Post{Title: "In range", Description: "Body", AuthorID: &user.ID, CreatedAt: day(10)}
	require.NoError(t, postRepo.Create(inRange))
	tooEarly := &models.Post{Title: "Too early", Description: "Body", AuthorID: &user.ID, CreatedAt: day(1)}
	require.NoError(t, postRepo.Create(tooEarly))
	wrongAuthor := &models.Post{Title: "Wrong author", Description: "Body", AuthorID: &other.ID, CreatedAt: day(10)}
	require.NoError(t, postRepo.Create(wrongAuthor))

	posts, err := postRepo.GetFiltered(day(5), day(15), user.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "In range", posts[0].Title)
}
