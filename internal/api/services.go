package api

import (
	"github.com/flashblog/flashblog-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth    *service.AuthService
	User    *service.UserService
	Blog    *service.BlogService
	Tag     *service.TagService
	Comment *service.CommentService
	Like    *service.LikeService
	Search  *service.SearchService
}
