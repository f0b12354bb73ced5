package post

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

// NumericID is an int64 that also binds from a quoted integer such as "2".
type NumericID int64

func (n *NumericID) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return &json.UnmarshalTypeError{Value: "string", Type: reflect.TypeOf(int64(0))}
	}
	*n = NumericID(v)
	return nil
}

// CreatePostRequest binds from JSON or multipart form; the image travels as a separate file part.
type CreatePostRequest struct {
	Title      string    `json:"title" form:"title" binding:"required,trimmed_min=5,max=500"`
	Summary    string    `json:"summary" form:"summary" binding:"required,trimmed_min=10"`
	Content    string    `json:"content" form:"content" binding:"required,trimmed_min=50"`
	CategoryID NumericID `json:"category_id" form:"category_id" binding:"required,gt=0"`
	IsDraft    bool      `json:"is_draft" form:"is_draft"`
}

func (r CreatePostRequest) ToNewPost(authorID int64, imageURL *string) NewPost {
	return NewPost{
		Title:      strings.TrimSpace(r.Title),
		Summary:    strings.TrimSpace(r.Summary),
		Content:    strings.TrimSpace(r.Content),
		CategoryID: int64(r.CategoryID),
		AuthorID:   authorID,
		IsDraft:    r.IsDraft,
		ImageURL:   imageURL,
	}
}

// partial update, absent fields stay as they are
type UpdatePostRequest struct {
	Title      *string    `json:"title" form:"title" binding:"omitnil,trimmed_min=5,max=500"`
	Summary    *string    `json:"summary" form:"summary" binding:"omitnil,trimmed_min=10"`
	Content    *string    `json:"content" form:"content" binding:"omitnil,trimmed_min=50"`
	CategoryID *NumericID `json:"category_id" form:"category_id" binding:"omitnil,gt=0"`
	IsDraft    *bool      `json:"is_draft" form:"is_draft"`
}

func (r UpdatePostRequest) ToPatch(imageURL *string) Patch {
	return Patch{
		Title:      trimmed(r.Title),
		Summary:    trimmed(r.Summary),
		Content:    trimmed(r.Content),
		CategoryID: int64Ptr(r.CategoryID),
		IsDraft:    r.IsDraft,
		ImageURL:   imageURL,
	}
}

func int64Ptr(n *NumericID) *int64 {
	if n == nil {
		return nil
	}
	v := int64(*n)
	return &v
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
