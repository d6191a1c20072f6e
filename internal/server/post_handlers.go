package server

import (
	"io"
	"strconv"
	"strings"

	"drawerbox/internal/models"
	"drawerbox/internal/observability"
	"drawerbox/internal/service"

	"github.com/gofiber/fiber/v2"
)

const defaultPostPageSize = 20

// CreatePost handles POST /api/posts. The body is multipart form data so
// image attachments can ride along with the post fields.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := viewerID(c)

	title := strings.TrimSpace(c.FormValue("title"))
	content := c.FormValue("content")

	var drawerID *uint
	if raw := strings.TrimSpace(c.FormValue("drawer_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || parsed == 0 {
			return models.RespondWithError(c, models.NewValidationError("Invalid drawer ID"))
		}
		id := uint(parsed)
		drawerID = &id
	}

	imagePaths, err := s.saveUploadedImages(c, "images")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:     userID,
		Title:      title,
		Content:    content,
		DrawerID:   drawerID,
		ImagePaths: imagePaths,
	})
	if err != nil {
		// The post never landed; the stored files are orphans.
		s.removeStoredImages(c, imagePaths)
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// saveUploadedImages stores every file uploaded under the given form field
// and returns the stored names. On a failed upload the already stored files
// are removed before the error is returned.
func (s *Server) saveUploadedImages(c *fiber.Ctx, field string) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}
	files := form.File[field]
	if len(files) == 0 || s.store == nil {
		return nil, nil
	}

	paths := make([]string, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			s.removeStoredImages(c, paths)
			return nil, models.NewValidationError("Invalid image upload")
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			s.removeStoredImages(c, paths)
			return nil, models.NewInternalError(err)
		}

		name, err := s.store.Save(content)
		if err != nil {
			s.removeStoredImages(c, paths)
			return nil, err
		}
		paths = append(paths, name)
	}
	return paths, nil
}

func (s *Server) removeStoredImages(c *fiber.Ctx, paths []string) {
	for _, path := range paths {
		if err := s.store.Remove(path); err != nil {
			observability.GlobalLogger.WarnContext(c.UserContext(), "failed to remove stored image",
				"path", path, "error", err)
		}
	}
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPostPageSize)

	posts, err := s.postService.ListPosts(c.Context(), page.Limit, page.Offset, viewerID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:slug
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetPost(c.Context(), c.Params("slug"), viewerID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// GetDrawerPosts handles GET /api/drawers/:name/posts
func (s *Server) GetDrawerPosts(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPostPageSize)
	status := c.Query("status")

	posts, err := s.postService.ListDrawerPosts(c.Context(), c.Params("name"), status,
		page.Limit, page.Offset, viewerID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(posts)
}

// GetUserPosts handles GET /api/users/:username/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPostPageSize)

	posts, err := s.postService.ListUserPosts(c.Context(), c.Params("username"),
		page.Limit, page.Offset, viewerID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(posts)
}

// UpdatePost handles PATCH /api/posts/:slug
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:  viewerID(c),
		Slug:    c.Params("slug"),
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:slug
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.postService.DeletePost(c.Context(), viewerID(c), c.Params("slug")); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// UpdatePostStatus handles PATCH /api/posts/:slug/status
func (s *Server) UpdatePostStatus(c *fiber.Ctx) error {
	var req struct {
		Tag string `json:"tag"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePostStatus(c.Context(), service.UpdatePostStatusInput{
		UserID: viewerID(c),
		Slug:   c.Params("slug"),
		Action: models.StatusAction(req.Tag),
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}
