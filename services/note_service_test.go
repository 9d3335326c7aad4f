package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"notes-server/models"
	"notes-server/repository"
)

type mockNoteRepository struct {
	mu          sync.RWMutex
	notes       map[string]models.Note
	insertCalls int
	findCalls   int
	findErr     error
}

func newMockNoteRepository() *mockNoteRepository {
	return &mockNoteRepository{notes: make(map[string]models.Note)}
}

func (m *mockNoteRepository) InsertNote(_ context.Context, note models.Note) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.insertCalls++
	note.ID = primitive.NewObjectID()
	m.notes[note.ID.Hex()] = note
	return note.ID.Hex(), nil
}

func (m *mockNoteRepository) FindNoteByID(_ context.Context, id string) (models.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return models.Note{}, repository.ErrNoteNotFound
	}
	note, ok := m.notes[id]
	if !ok {
		return models.Note{}, repository.ErrNoteNotFound
	}
	return note, nil
}

func (m *mockNoteRepository) FindNotesByUserID(_ context.Context, userID string) ([]models.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	m.findCalls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	var notes []models.Note
	for _, note := range m.notes {
		if note.UserID == userID {
			notes = append(notes, note)
		}
	}
	return notes, nil
}

func (m *mockNoteRepository) UpdateNoteFields(_ context.Context, id string, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	note, ok := m.notes[id]
	if !ok {
		return repository.ErrNoteNotFound
	}
	for key, value := range fields {
		switch key {
		case "title":
			note.Title = value.(string)
		case "content":
			note.Content = value.(string)
		case "is_pinned":
			note.IsPinned = value.(bool)
		case "tags":
			note.Tags = value.([]string)
		case "color":
			note.Color = value.(string)
		case "updated_at":
			note.UpdatedAt = value.(time.Time)
		}
	}
	m.notes[id] = note
	return nil
}

func (m *mockNoteRepository) DeleteNoteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.notes[id]; !ok {
		return repository.ErrNoteNotFound
	}
	delete(m.notes, id)
	return nil
}

func (m *mockNoteRepository) seed(note models.Note) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	note.ID = primitive.NewObjectID()
	m.notes[note.ID.Hex()] = note
	return note.ID.Hex()
}

func newTestService() (*NoteService, *mockNoteRepository) {
	repo := newMockNoteRepository()
	return NewNoteService(repo, zap.NewNop()), repo
}

func TestListNotes_SortsPinnedThenRecency(t *testing.T) {
	svc, repo := newTestService()
	userID := uuid.NewString()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	repo.seed(models.Note{UserID: userID, Title: "A", Content: "x", IsPinned: true, UpdatedAt: base.Add(10 * time.Minute)})
	repo.seed(models.Note{UserID: userID, Title: "B", Content: "x", UpdatedAt: base.Add(20 * time.Minute)})
	repo.seed(models.Note{UserID: userID, Title: "C", Content: "x", IsPinned: true, UpdatedAt: base.Add(5 * time.Minute)})

	result, err := svc.ListNotes(context.Background(), userID, "", 1, 20)
	require.NoError(t, err)
	require.Len(t, result.Notes, 3)
	assert.Equal(t, "A", result.Notes[0].Title)
	assert.Equal(t, "C", result.Notes[1].Title)
	assert.Equal(t, "B", result.Notes[2].Title)
}

func TestListNotes_ZeroUpdatedAtSortsLast(t *testing.T) {
	svc, repo := newTestService()
	userID := uuid.NewString()

	repo.seed(models.Note{UserID: userID, Title: "no-timestamp", Content: "x"})
	repo.seed(models.Note{UserID: userID, Title: "recent", Content: "x", UpdatedAt: time.Now().UTC()})

	result, err := svc.ListNotes(context.Background(), userID, "", 1, 20)
	require.NoError(t, err)
	require.Len(t, result.Notes, 2)
	assert.Equal(t, "recent", result.Notes[0].Title)
	assert.Equal(t, "no-timestamp", result.Notes[1].Title)
}

func TestListNotes_Pagination(t *testing.T) {
	svc, repo := newTestService()
	userID := uuid.NewString()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// note-1 is the most recently updated, so sort rank equals note number
	for i := 1; i <= 25; i++ {
		repo.seed(models.Note{
			UserID:    userID,
			Title:     fmt.Sprintf("note-%d", i),
			Content:   "x",
			UpdatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}

	result, err := svc.ListNotes(context.Background(), userID, "", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 25, result.Total)
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, 10, result.PageSize)
	assert.Equal(t, 3, result.TotalPages)
	require.Len(t, result.Notes, 10)
	for i, note := range result.Notes {
		assert.Equal(t, fmt.Sprintf("note-%d", i+11), note.Title)
	}
}

func TestListNotes_OutOfRangePage(t *testing.T) {
	svc, repo := newTestService()
	userID := uuid.NewString()
	for i := 0; i < 25; i++ {
		repo.seed(models.Note{UserID: userID, Title: fmt.Sprintf("note-%d", i), Content: "x"})
	}

	result, err := svc.ListNotes(context.Background(), userID, "", 4, 10)
	require.NoError(t, err)
	assert.Empty(t, result.Notes)
	assert.Equal(t, 25, result.Total)
}

func TestListNotes_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	svc, repo := newTestService()
	userID := uuid.NewString()

	repo.seed(models.Note{UserID: userID, Title: "groceries", Content: "milk", Tags: []string{"Work"}})
	repo.seed(models.Note{UserID: userID, Title: "Meeting NOTES", Content: "agenda"})
	repo.seed(models.Note{UserID: userID, Title: "other", Content: "Network outage"})
	repo.seed(models.Note{UserID: userID, Title: "unrelated", Content: "nothing here"})

	byTag, err := svc.ListNotes(context.Background(), userID, "wor", 1, 20)
	require.NoError(t, err)
	require.Len(t, byTag.Notes, 2) // tag "Work" and content "Network"

	byTitle, err := svc.ListNotes(context.Background(), userID, "meeting", 1, 20)
	require.NoError(t, err)
	require.Len(t, byTitle.Notes, 1)
	assert.Equal(t, "Meeting NOTES", byTitle.Notes[0].Title)
	assert.Equal(t, 1, byTitle.Total)
}

func TestListNotes_OwnershipIsolation(t *testing.T) {
	svc, repo := newTestService()
	owner := uuid.NewString()
	other := uuid.NewString()

	repo.seed(models.Note{UserID: owner, Title: "mine", Content: "x"})
	repo.seed(models.Note{UserID: other, Title: "theirs", Content: "x"})

	result, err := svc.ListNotes(context.Background(), owner, "", 1, 20)
	require.NoError(t, err)
	require.Len(t, result.Notes, 1)
	for _, note := range result.Notes {
		assert.Equal(t, owner, note.UserID)
	}
}

func TestListNotes_PaginationValidation(t *testing.T) {
	svc, repo := newTestService()
	userID := uuid.NewString()

	var ve *models.ValidationError
	for _, tc := range []struct {
		page, pageSize int
	}{
		{0, 10},
		{-1, 10},
		{1, 0},
		{1, 101},
	} {
		_, err := svc.ListNotes(context.Background(), userID, "", tc.page, tc.pageSize)
		require.Error(t, err)
		assert.ErrorAs(t, err, &ve)
	}
	assert.Zero(t, repo.findCalls, "validation must happen before any store call")
}

func TestListNotes_StoreErrorPropagates(t *testing.T) {
	svc, repo := newTestService()
	repo.findErr = errors.New("connection reset")

	_, err := svc.ListNotes(context.Background(), uuid.NewString(), "", 1, 20)
	assert.ErrorIs(t, err, repo.findErr)
}

func TestCreateNote_AppliesDefaults(t *testing.T) {
	svc, _ := newTestService()
	userID := uuid.NewString()

	note, err := svc.CreateNote(context.Background(), userID, models.NoteCreate{
		Title:   "  padded title  ",
		Content: "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "padded title", note.Title)
	assert.Equal(t, models.DefaultColor, note.Color)
	assert.NotNil(t, note.Tags)
	assert.Empty(t, note.Tags)
	assert.False(t, note.IsPinned)
	assert.True(t, note.Synced)
	assert.Equal(t, note.CreatedAt, note.UpdatedAt)
	assert.Equal(t, userID, note.UserID)
}

func TestCreateNote_NormalizesColor(t *testing.T) {
	svc, _ := newTestService()

	note, err := svc.CreateNote(context.Background(), uuid.NewString(), models.NoteCreate{
		Title:   "t",
		Content: "c",
		Color:   "#ffaa00",
	})
	require.NoError(t, err)
	assert.Equal(t, "#FFAA00", note.Color)
}

func TestCreateNote_RejectsWhitespaceTitleBeforeStore(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.CreateNote(context.Background(), uuid.NewString(), models.NoteCreate{
		Title:   "   ",
		Content: "c",
	})
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "title", ve.Field)
	assert.Zero(t, repo.insertCalls)
}

func TestGetNoteByID_Idempotent(t *testing.T) {
	svc, repo := newTestService()
	userID := uuid.NewString()
	id := repo.seed(models.Note{UserID: userID, Title: "t", Content: "c"})

	first, err := svc.GetNoteByID(context.Background(), id, userID)
	require.NoError(t, err)
	second, err := svc.GetNoteByID(context.Background(), id, userID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGetNoteByID_ForeignOwnerLooksMissing(t *testing.T) {
	svc, repo := newTestService()
	id := repo.seed(models.Note{UserID: uuid.NewString(), Title: "t", Content: "c"})

	_, err := svc.GetNoteByID(context.Background(), id, uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNoteNotFound)

	_, err = svc.GetNoteByID(context.Background(), primitive.NewObjectID().Hex(), uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNoteNotFound)
}

func TestUpdateNote_PartialUpdateKeepsOtherFields(t *testing.T) {
	svc, repo := newTestService()
	userID := uuid.NewString()
	before := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	id := repo.seed(models.Note{
		UserID:    userID,
		Title:     "old title",
		Content:   "old content",
		IsPinned:  true,
		Tags:      []string{"a", "b"},
		Color:     "#112233",
		UpdatedAt: before,
	})

	newTitle := "X"
	note, err := svc.UpdateNote(context.Background(), id, userID, models.NoteUpdate{Title: &newTitle})
	require.NoError(t, err)

	assert.Equal(t, "X", note.Title)
	assert.Equal(t, "old content", note.Content)
	assert.True(t, note.IsPinned)
	assert.Equal(t, []string{"a", "b"}, note.Tags)
	assert.Equal(t, "#112233", note.Color)
	assert.True(t, note.UpdatedAt.After(before), "updated_at must be refreshed")
}

func TestUpdateNote_ForeignOwnerLooksMissing(t *testing.T) {
	svc, repo := newTestService()
	id := repo.seed(models.Note{UserID: uuid.NewString(), Title: "t", Content: "c"})

	newTitle := "X"
	_, err := svc.UpdateNote(context.Background(), id, uuid.NewString(), models.NoteUpdate{Title: &newTitle})
	assert.ErrorIs(t, err, repository.ErrNoteNotFound)
}

func TestUpdateNote_RejectsInvalidFields(t *testing.T) {
	svc, repo := newTestService()
	userID := uuid.NewString()
	id := repo.seed(models.Note{UserID: userID, Title: "t", Content: "c"})

	blank := " "
	_, err := svc.UpdateNote(context.Background(), id, userID, models.NoteUpdate{Content: &blank})
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "content", ve.Field)
}

func TestDeleteNote(t *testing.T) {
	svc, repo := newTestService()
	userID := uuid.NewString()
	id := repo.seed(models.Note{UserID: userID, Title: "t", Content: "c"})

	// foreign owner cannot delete, and cannot tell the note exists
	err := svc.DeleteNote(context.Background(), id, uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNoteNotFound)

	require.NoError(t, svc.DeleteNote(context.Background(), id, userID))
	_, err = svc.GetNoteByID(context.Background(), id, userID)
	assert.ErrorIs(t, err, repository.ErrNoteNotFound)
}
