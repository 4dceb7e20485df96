package post

import (
	"context"
	"sort"
	"time"

	"github.com/dkovalev/autoinstapost/app/database"
	"github.com/dkovalev/autoinstapost/app/drive"
)

type mockDedup struct {
	marked map[string]bool
}

var _ database.DedupRepository = (*mockDedup)(nil)

func newMockDedup(ids ...string) *mockDedup {
	m := &mockDedup{marked: map[string]bool{}}
	for _, id := range ids {
		m.marked[id] = true
	}
	return m
}

func (m *mockDedup) IsMarked(photoID string) (bool, error) {
	return m.marked[photoID], nil
}

func (m *mockDedup) Mark(photoID string) error {
	m.marked[photoID] = true
	return nil
}

func (m *mockDedup) Unmark(photoID string) error {
	delete(m.marked, photoID)
	return nil
}

func (m *mockDedup) MarkedIDs() ([]string, error) {
	ids := make([]string, 0, len(m.marked))
	for id := range m.marked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type mockHistory struct {
	entries []database.HistoryEntry
}

var _ database.HistoryRepository = (*mockHistory)(nil)

func (m *mockHistory) Append(entry database.HistoryEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockHistory) List() ([]database.HistoryEntry, error) {
	reversed := make([]database.HistoryEntry, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		reversed = append(reversed, m.entries[i])
	}
	return reversed, nil
}

func (m *mockHistory) Count() (int, error) {
	return len(m.entries), nil
}

type mockPending struct {
	posts map[string]database.PendingPost
	order []string
}

var _ database.PendingRepository = (*mockPending)(nil)

func newMockPending() *mockPending {
	return &mockPending{posts: map[string]database.PendingPost{}}
}

func (m *mockPending) Add(post database.PendingPost) error {
	m.posts[post.ID] = post
	m.order = append(m.order, post.ID)
	return nil
}

func (m *mockPending) List() ([]database.PendingPost, error) {
	posts := make([]database.PendingPost, 0, len(m.posts))
	for _, id := range m.order {
		if post, ok := m.posts[id]; ok {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (m *mockPending) Take(id string) (*database.PendingPost, error) {
	post, ok := m.posts[id]
	if !ok {
		return nil, nil
	}
	delete(m.posts, id)
	return &post, nil
}

func (m *mockPending) Delete(id string) (bool, error) {
	if _, ok := m.posts[id]; !ok {
		return false, nil
	}
	delete(m.posts, id)
	return true, nil
}

type mockSchedule struct {
	config    database.ScheduleConfig
	lastRunAt *time.Time
}

var _ database.ScheduleRepository = (*mockSchedule)(nil)

func (m *mockSchedule) GetConfig() (database.ScheduleConfig, error) {
	return m.config, nil
}

func (m *mockSchedule) SaveConfig(cfg database.ScheduleConfig) (database.ScheduleConfig, error) {
	cfg.Version = m.config.Version + 1
	m.config = cfg
	return cfg, nil
}

func (m *mockSchedule) GetLastRunAt() (*time.Time, error) {
	return m.lastRunAt, nil
}

func (m *mockSchedule) SetLastRunAt(t time.Time) error {
	m.lastRunAt = &t
	return nil
}

type stubFolder struct {
	photos  []drive.Photo
	listErr error
}

var _ FolderSource = (*stubFolder)(nil)

func (s *stubFolder) ListPhotos(ctx context.Context, folderID string) ([]drive.Photo, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.photos, nil
}

func (s *stubFolder) GetFolderInfo(ctx context.Context, folderID string) (*drive.FolderInfo, error) {
	return &drive.FolderInfo{ID: folderID, Name: "Test Folder"}, nil
}

type stubTarget struct {
	mediaID string
	err     error
	noCreds bool
	calls   [][]string
}

var _ MediaPublisher = (*stubTarget)(nil)

func (s *stubTarget) Publish(ctx context.Context, photoIDs []string, caption string) (string, error) {
	s.calls = append(s.calls, photoIDs)
	if s.err != nil {
		return "", s.err
	}
	return s.mediaID, nil
}

func (s *stubTarget) HasCredentials() bool {
	return !s.noCreds
}
