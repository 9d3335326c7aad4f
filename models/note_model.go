package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TitleMaxLen   = 200
	ContentMaxLen = 10000
	DefaultColor  = "#FFFFFF"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type Note struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"-"`
	Title     string             `bson:"title" json:"title"`
	Content   string             `bson:"content" json:"content"`
	IsPinned  bool               `bson:"is_pinned" json:"is_pinned"`
	Tags      []string           `bson:"tags" json:"tags"`
	Color     string             `bson:"color" json:"color"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
	Synced    bool               `bson:"synced" json:"synced"`
}

// NotesList is the paginated listing payload returned by GET /api/v1/notes.
type NotesList struct {
	Notes      []Note `json:"notes"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

// NoteCreate carries the client-supplied fields of a new note.
type NoteCreate struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	IsPinned bool     `json:"is_pinned"`
	Tags     []string `json:"tags"`
	Color    string   `json:"color"`
}

// NoteUpdate carries a partial update; nil means "leave unchanged".
type NoteUpdate struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	IsPinned *bool     `json:"is_pinned"`
	Tags     *[]string `json:"tags"`
	Color    *string   `json:"color"`
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate trims title and content in place, applies defaults and checks
// the Note invariants. It must pass before anything is written to the store.
func (p *NoteCreate) Validate() error {
	title, err := validateText("title", p.Title, TitleMaxLen)
	if err != nil {
		return err
	}
	p.Title = title

	content, err := validateText("content", p.Content, ContentMaxLen)
	if err != nil {
		return err
	}
	p.Content = content

	if p.Tags == nil {
		p.Tags = []string{}
	}

	if p.Color == "" {
		p.Color = DefaultColor
		return nil
	}
	color, err := validateColor(p.Color)
	if err != nil {
		return err
	}
	p.Color = color
	return nil
}

// Validate checks only the fields that were actually supplied.
func (p *NoteUpdate) Validate() error {
	if p.Title != nil {
		title, err := validateText("title", *p.Title, TitleMaxLen)
		if err != nil {
			return err
		}
		*p.Title = title
	}
	if p.Content != nil {
		content, err := validateText("content", *p.Content, ContentMaxLen)
		if err != nil {
			return err
		}
		*p.Content = content
	}
	if p.Color != nil {
		color, err := validateColor(*p.Color)
		if err != nil {
			return err
		}
		*p.Color = color
	}
	return nil
}

func validateText(field, value string, maxLen int) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", &ValidationError{Field: field, Message: "must not be empty or whitespace"}
	}
	if utf8.RuneCountInString(trimmed) > maxLen {
		return "", &ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters", maxLen)}
	}
	return trimmed, nil
}

func validateColor(value string) (string, error) {
	if !colorPattern.MatchString(value) {
		return "", &ValidationError{Field: "color", Message: "must match #RRGGBB"}
	}
	return strings.ToUpper(value), nil
}
