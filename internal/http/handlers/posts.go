package handlers

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/geocoder89/docblog/internal/blog"
	"github.com/geocoder89/docblog/internal/domain/category"
	"github.com/geocoder89/docblog/internal/domain/post"
	"github.com/geocoder89/docblog/internal/domain/user"
	"github.com/geocoder89/docblog/internal/http/middlewares"
	"github.com/geocoder89/docblog/internal/observability"
	"github.com/geocoder89/docblog/internal/policy"
	"github.com/geocoder89/docblog/internal/uploads"
	"github.com/gin-gonic/gin"
)

type BlogService interface {
	Categories(ctx context.Context) ([]category.Category, error)
	ListPublished(ctx context.Context, categoryID *int64) ([]blog.PostView, error)
	ListMine(ctx context.Context, id user.Identity) ([]blog.PostView, error)
	ListByCategory(ctx context.Context) ([]blog.CategoryGroup, error)
	GetPost(ctx context.Context, id int64, identity *user.Identity) (blog.PostView, error)
	CreatePost(ctx context.Context, identity user.Identity, req post.CreatePostRequest, imageURL *string) (post.Post, error)
	UpdatePost(ctx context.Context, identity user.Identity, id int64, patch post.Patch) (post.Post, error)
	DeletePost(ctx context.Context, identity user.Identity, id int64) error
}

type ImageStore interface {
	Save(fh *multipart.FileHeader) (string, error)
	Remove(url string) error
}

type PostsHandler struct {
	svc    BlogService
	images ImageStore
	prom   *observability.Prom
	log    *slog.Logger
}

func NewPostsHandler(svc BlogService, images ImageStore, prom *observability.Prom, log *slog.Logger) *PostsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &PostsHandler{svc: svc, images: images, prom: prom, log: log}
}

func (h *PostsHandler) Categories(ctx *gin.Context) {
	cats, err := h.svc.Categories(ctx.Request.Context())
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list categories failed", "err", err)
		RespondInternal(ctx, "Failed to fetch categories")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, APIResponse{Success: true, Data: cats})
}

func (h *PostsHandler) ListPublished(ctx *gin.Context) {
	var categoryID *int64

	if raw := strings.TrimSpace(ctx.Query("category_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			RespondBadRequest(ctx, "Validation failed", gin.H{"category_id": "must be a positive integer"})
			return
		}
		categoryID = &id
	}

	views, err := h.svc.ListPublished(ctx.Request.Context(), categoryID)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list published posts failed", "err", err)
		RespondInternal(ctx, "Failed to fetch posts")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, APIResponse{Success: true, Data: views})
}

func (h *PostsHandler) ListMine(ctx *gin.Context) {
	identity, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Access token required")
		return
	}

	views, err := h.svc.ListMine(ctx.Request.Context(), identity)
	if err != nil {
		h.respondServiceError(ctx, err, "Only doctors can view their posts", "Failed to fetch your posts")
		return
	}

	RespondOK(ctx, http.StatusOK, "", views)
}

func (h *PostsHandler) ListByCategory(ctx *gin.Context) {
	groups, err := h.svc.ListByCategory(ctx.Request.Context())
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list posts by category failed", "err", err)
		RespondInternal(ctx, "Failed to fetch posts by category")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, APIResponse{Success: true, Data: groups})
}

func (h *PostsHandler) GetPost(ctx *gin.Context) {
	id, ok := postID(ctx)
	if !ok {
		return
	}

	var caller *user.Identity
	if identity, ok := middlewares.IdentityFromContext(ctx); ok {
		caller = &identity
	}

	view, err := h.svc.GetPost(ctx.Request.Context(), id, caller)
	if err != nil {
		h.respondServiceError(ctx, err, "", "Failed to fetch post")
		return
	}

	RespondOK(ctx, http.StatusOK, "", view)
}

func (h *PostsHandler) CreatePost(ctx *gin.Context) {
	identity, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Access token required")
		return
	}

	var req post.CreatePostRequest
	if !Bind(ctx, &req) {
		return
	}

	imageURL, ok := h.saveImage(ctx)
	if !ok {
		return
	}

	created, err := h.svc.CreatePost(ctx.Request.Context(), identity, req, imageURL)
	if err != nil {
		h.discardImage(ctx, imageURL)
		h.observeWrite("create", err)
		h.respondServiceError(ctx, err, "Only doctors can create posts", "Failed to create blog post")
		return
	}

	h.observeWrite("create", nil)
	RespondOK(ctx, http.StatusCreated, "Blog post created successfully", created)
}

func (h *PostsHandler) UpdatePost(ctx *gin.Context) {
	identity, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Access token required")
		return
	}

	id, ok := postID(ctx)
	if !ok {
		return
	}

	var req post.UpdatePostRequest
	if !BindPatch(ctx, &req) {
		return
	}

	imageURL, ok := h.saveImage(ctx)
	if !ok {
		return
	}

	updated, err := h.svc.UpdatePost(ctx.Request.Context(), identity, id, req.ToPatch(imageURL))
	if err != nil {
		h.discardImage(ctx, imageURL)
		h.observeWrite("update", err)
		h.respondServiceError(ctx, err, "You can only edit your own posts", "Failed to update post")
		return
	}

	h.observeWrite("update", nil)
	RespondOK(ctx, http.StatusOK, "Post updated successfully", updated)
}

func (h *PostsHandler) DeletePost(ctx *gin.Context) {
	identity, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Access token required")
		return
	}

	id, ok := postID(ctx)
	if !ok {
		return
	}

	if err := h.svc.DeletePost(ctx.Request.Context(), identity, id); err != nil {
		h.observeWrite("delete", err)
		h.respondServiceError(ctx, err, "You can only delete your own posts", "Failed to delete post")
		return
	}

	h.observeWrite("delete", nil)
	RespondOK(ctx, http.StatusOK, "Post deleted successfully", nil)
}

// helpers

func postID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondNotFound(ctx, "Post not found")
		return 0, false
	}
	return id, true
}

// saveImage stores the optional "image" part of a multipart body. ok is false when a response was written.
func (h *PostsHandler) saveImage(ctx *gin.Context) (url *string, ok bool) {
	if ctx.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil, true
	}

	fh, err := ctx.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		RespondBadRequest(ctx, "Invalid image upload", gin.H{"image": err.Error()})
		return nil, false
	}

	saved, err := h.images.Save(fh)
	if err != nil {
		switch {
		case errors.Is(err, uploads.ErrUnsupportedType):
			RespondBadRequest(ctx, "Only image files are allowed", gin.H{"image": err.Error()})
		case errors.Is(err, uploads.ErrTooLarge):
			RespondError(ctx, http.StatusRequestEntityTooLarge, "payload_too_large", "Image exceeds the upload size limit", nil)
		default:
			h.log.ErrorContext(ctx.Request.Context(), "saving image failed", "err", err)
			RespondInternal(ctx, "Failed to store image")
		}
		return nil, false
	}

	return &saved, true
}

func (h *PostsHandler) discardImage(ctx *gin.Context, url *string) {
	if url == nil {
		return
	}
	if err := h.images.Remove(*url); err != nil {
		h.log.WarnContext(ctx.Request.Context(), "removing orphaned image failed", "url", *url, "err", err)
	}
}

func (h *PostsHandler) respondServiceError(ctx *gin.Context, err error, forbiddenMessage, internalMessage string) {
	switch {
	case errors.Is(err, post.ErrNotFound):
		RespondNotFound(ctx, "Post not found")
	case errors.Is(err, category.ErrNotFound):
		RespondNotFound(ctx, "Category not found")
	case errors.Is(err, policy.ErrForbidden):
		if forbiddenMessage == "" {
			forbiddenMessage = "Forbidden"
		}
		RespondForbidden(ctx, forbiddenMessage)
	case errors.Is(err, post.ErrInvalid):
		RespondBadRequest(ctx, "Validation failed", nil)
	default:
		h.log.ErrorContext(ctx.Request.Context(), internalMessage, "err", err)
		RespondInternal(ctx, internalMessage)
	}
}

func (h *PostsHandler) observeWrite(op string, err error) {
	switch {
	case err == nil:
		h.prom.ObservePostWrite(op, "ok")
	case blog.IsClientError(err):
		h.prom.ObservePostWrite(op, "rejected")
	default:
		h.prom.ObservePostWrite(op, "error")
	}
}
