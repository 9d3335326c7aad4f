package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"notes-server/models"
	"notes-server/repository"
)

const (
	MinPageSize = 1
	MaxPageSize = 100
)

// NoteService owns the ownership checks around the store and the listing
// pipeline (filter, sort, paginate) on top of it.
type NoteService struct {
	repo repository.NoteRepositoryInterface
	log  *zap.Logger
}

func NewNoteService(repo repository.NoteRepositoryInterface, log *zap.Logger) *NoteService {
	return &NoteService{repo: repo, log: log}
}

// ListNotes returns one page of the user's notes. The store is asked only
// for the ownership predicate; search filtering, the pinned/updated
// ordering and pagination all run in memory on the full result.
func (s *NoteService) ListNotes(ctx context.Context, userID, search string, page, pageSize int) (*models.NotesList, error) {
	if page < 1 {
		return nil, &models.ValidationError{Field: "page", Message: "must be at least 1"}
	}
	if pageSize < MinPageSize || pageSize > MaxPageSize {
		return nil, &models.ValidationError{Field: "page_size", Message: "must be between 1 and 100"}
	}

	notes, err := s.repo.FindNotesByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to fetch user notes",
			zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	notes = filterNotes(notes, search)
	sortNotes(notes)

	total := len(notes)
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	items := notes[start:end]
	if items == nil {
		items = []models.Note{}
	}

	return &models.NotesList{
		Notes:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// filterNotes keeps notes whose title, content or any tag contains the
// search term, case-insensitively. Plain substring containment, no
// tokenizing.
func filterNotes(notes []models.Note, search string) []models.Note {
	if search == "" {
		return notes
	}
	needle := strings.ToLower(search)
	matched := make([]models.Note, 0, len(notes))
	for _, note := range notes {
		if noteMatches(note, needle) {
			matched = append(matched, note)
		}
	}
	return matched
}

func noteMatches(note models.Note, needle string) bool {
	if strings.Contains(strings.ToLower(note.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(note.Content), needle) {
		return true
	}
	for _, tag := range note.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// sortNotes orders pinned notes first, then by most recent update. A zero
// UpdatedAt naturally sorts last among notes with the same pinned state,
// and the stable sort keeps retrieval order on full ties.
func sortNotes(notes []models.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].IsPinned != notes[j].IsPinned {
			return notes[i].IsPinned
		}
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
}

// CreateNote validates the payload, persists it and returns the stored
// note re-read by its generated id.
func (s *NoteService) CreateNote(ctx context.Context, userID string, payload models.NoteCreate) (models.Note, error) {
	if err := payload.Validate(); err != nil {
		return models.Note{}, err
	}

	now := time.Now().UTC()
	note := models.Note{
		UserID:    userID,
		Title:     payload.Title,
		Content:   payload.Content,
		IsPinned:  payload.IsPinned,
		Tags:      payload.Tags,
		Color:     payload.Color,
		CreatedAt: now,
		UpdatedAt: now,
		Synced:    true,
	}

	id, err := s.repo.InsertNote(ctx, note)
	if err != nil {
		s.log.Error("failed to insert note",
			zap.String("user_id", userID), zap.Error(err))
		return models.Note{}, err
	}
	return s.GetNoteByID(ctx, id, userID)
}

// GetNoteByID fetches a note and enforces ownership. A note owned by
// someone else is reported as not found.
func (s *NoteService) GetNoteByID(ctx context.Context, id, userID string) (models.Note, error) {
	note, err := s.repo.FindNoteByID(ctx, id)
	if err != nil {
		return models.Note{}, err
	}
	if note.UserID != userID {
		return models.Note{}, repository.ErrNoteNotFound
	}
	return note, nil
}

// UpdateNote applies only the supplied fields, always refreshing
// updated_at, and returns the updated note.
func (s *NoteService) UpdateNote(ctx context.Context, id, userID string, payload models.NoteUpdate) (models.Note, error) {
	if err := payload.Validate(); err != nil {
		return models.Note{}, err
	}
	if _, err := s.GetNoteByID(ctx, id, userID); err != nil {
		return models.Note{}, err
	}

	fields := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if payload.Title != nil {
		fields["title"] = *payload.Title
	}
	if payload.Content != nil {
		fields["content"] = *payload.Content
	}
	if payload.IsPinned != nil {
		fields["is_pinned"] = *payload.IsPinned
	}
	if payload.Tags != nil {
		fields["tags"] = *payload.Tags
	}
	if payload.Color != nil {
		fields["color"] = *payload.Color
	}

	if err := s.repo.UpdateNoteFields(ctx, id, fields); err != nil {
		s.log.Error("failed to update note",
			zap.String("note_id", id), zap.String("user_id", userID), zap.Error(err))
		return models.Note{}, err
	}
	return s.GetNoteByID(ctx, id, userID)
}

// DeleteNote removes a note after the same ownership check.
func (s *NoteService) DeleteNote(ctx context.Context, id, userID string) error {
	if _, err := s.GetNoteByID(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.DeleteNoteByID(ctx, id); err != nil {
		s.log.Error("failed to delete note",
			zap.String("note_id", id), zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}
