package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/flashblog/flashblog-server/internal/auth"
	"github.com/flashblog/flashblog-server/internal/domain"
	"github.com/flashblog/flashblog-server/internal/mail"
	"github.com/flashblog/flashblog-server/internal/otp"
	"github.com/flashblog/flashblog-server/internal/store/sqlite"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// captureSender records sent mail instead of delivering it.
type captureSender struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (c *captureSender) Send(_ context.Context, msg mail.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	return nil
}

func (c *captureSender) last() (mail.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return mail.Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// testEnv wires every service against a real temporary store.
type testEnv struct {
	store    *sqlite.Store
	auth     *AuthService
	sessions *SessionService
	users    *UserService
	blogs    *BlogService
	tags     *TagService
	comments *CommentService
	likes    *LikeService
	otp      *otp.Store
	mail     *captureSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	s, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	otpStore, err := otp.New(otp.Options{
		Path:   filepath.Join(dir, "otp"),
		Secret: "test-secret",
		TTL:    time.Minute,
		Logger: logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { otpStore.Close() })

	tokenService, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	sender := &captureSender{}
	sessionService := NewSessionService(s, tokenService, logger)

	return &testEnv{
		store:    s,
		auth:     NewAuthService(s, tokenService, sessionService, otpStore, sender, 10*time.Minute, logger),
		sessions: sessionService,
		users:    NewUserService(s, logger),
		blogs:    NewBlogService(s, logger),
		tags:     NewTagService(s, logger),
		comments: NewCommentService(s, logger),
		likes:    NewLikeService(s, logger),
		otp:      otpStore,
		mail:     sender,
	}
}

// registerUser creates an account and returns the stored user.
func (e *testEnv) registerUser(t *testing.T, email, name string) *domain.User {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), RegisterRequest{
		Email:       email,
		Password:    "correct horse battery",
		DisplayName: name,
	})
	require.NoError(t, err)
	return resp.User
}

// createTag provisions a tag directly through the tag service.
func (e *testEnv) createTag(t *testing.T, name string) *domain.Tag {
	t.Helper()
	tag, err := e.tags.Create(context.Background(), CreateTagRequest{Name: name})
	require.NoError(t, err)
	return tag
}

// createPost makes a published post for the given author.
func (e *testEnv) createPost(t *testing.T, author *domain.User, title string) *domain.Blog {
	t.Helper()
	blog, err := e.blogs.Create(context.Background(), author, CreateBlogRequest{
		Title:   title,
		Content: "Content of " + title,
		Publish: true,
	})
	require.NoError(t, err)
	return blog
}
