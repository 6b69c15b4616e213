// Package memrepo provides in-memory repositories for tests
package memrepo

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"devdash/internal/repository"
	"devdash/pkg/models"
)

// Store backs every repository with slices guarded by one mutex. Setting one
// of the Err fields makes the matching reads fail.
type Store struct {
	mu            sync.Mutex
	Users         []models.User
	Profiles      map[string]models.UserProfile
	Stats         []models.VideoStats
	Engagements   []models.VideoEngagement
	Messages      []models.ChatMessage
	Notifications []models.Notification

	UsersErr         error
	StatsErr         error
	EngagementsErr   error
	ChatErr          error
	NotificationsErr error
}

// New creates an empty store
func New() *Store {
	return &Store{Profiles: map[string]models.UserProfile{}}
}

// Repositories exposes the store through the repository interfaces
func (s *Store) Repositories() (repository.UserRepository, repository.VideoRepository, repository.ChatRepository, repository.NotificationRepository) {
	return userRepo{s}, videoRepo{s}, chatRepo{s}, notificationRepo{s}
}

type userRepo struct{ s *Store }

func (r userRepo) List(ctx context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.UsersErr != nil {
		return nil, r.s.UsersErr
	}
	return append([]models.User{}, r.s.Users...), nil
}

func (r userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.UsersErr != nil {
		return nil, r.s.UsersErr
	}
	for _, u := range r.s.Users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, models.NewHTTPError(models.ErrCodeNotFound, "user not found", 404, models.ErrUserNotFound)
}

func (r userRepo) Upsert(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.Users {
		if r.s.Users[i].ID == user.ID {
			r.s.Users[i] = *user
			return nil
		}
	}
	r.s.Users = append(r.s.Users, *user)
	return nil
}

func (r userRepo) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.Profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r userRepo) UpsertProfile(ctx context.Context, p *models.UserProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Profiles[p.UserID] = *p
	return nil
}

type videoRepo struct{ s *Store }

func (r videoRepo) ListStats(ctx context.Context) ([]models.VideoStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.StatsErr != nil {
		return nil, r.s.StatsErr
	}
	return append([]models.VideoStats{}, r.s.Stats...), nil
}

func (r videoRepo) GetStats(ctx context.Context, videoID string) (*models.VideoStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.StatsErr != nil {
		return nil, r.s.StatsErr
	}
	for _, vs := range r.s.Stats {
		if vs.VideoID == videoID {
			vs := vs
			return &vs, nil
		}
	}
	return nil, models.NewHTTPError(models.ErrCodeNotFound, "video not found", 404, models.ErrVideoNotFound)
}

func (r videoRepo) UpsertStats(ctx context.Context, stats *models.VideoStats) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.Stats {
		if r.s.Stats[i].VideoID == stats.VideoID {
			r.s.Stats[i] = *stats
			return nil
		}
	}
	r.s.Stats = append(r.s.Stats, *stats)
	return nil
}

func (r videoRepo) filter(keep func(models.VideoEngagement) bool) ([]models.VideoEngagement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.EngagementsErr != nil {
		return nil, r.s.EngagementsErr
	}
	out := []models.VideoEngagement{}
	for _, e := range r.s.Engagements {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r videoRepo) ListEngagements(ctx context.Context) ([]models.VideoEngagement, error) {
	return r.filter(func(models.VideoEngagement) bool { return true })
}

func (r videoRepo) ListEngagementsByUser(ctx context.Context, userID string) ([]models.VideoEngagement, error) {
	return r.filter(func(e models.VideoEngagement) bool { return e.UserID == userID })
}

func (r videoRepo) ListEngagementsByVideo(ctx context.Context, videoID string) ([]models.VideoEngagement, error) {
	return r.filter(func(e models.VideoEngagement) bool { return e.VideoID == videoID })
}

func (r videoRepo) CreateEngagement(ctx context.Context, e *models.VideoEngagement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e.Vote == "" {
		e.Vote = models.VoteNone
	}
	if e.LastViewed.IsZero() {
		e.LastViewed = time.Now()
	}
	r.s.Engagements = append(r.s.Engagements, *e)
	return nil
}

type chatRepo struct{ s *Store }

func (r chatRepo) Create(ctx context.Context, m *models.ChatMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ChatErr != nil {
		return r.s.ChatErr
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	r.s.Messages = append(r.s.Messages, *m)
	return nil
}

func (r chatRepo) ListRecent(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ChatErr != nil {
		return nil, r.s.ChatErr
	}
	if limit <= 0 {
		limit = models.ChatHistoryLimit
	}
	out := []models.ChatMessage{}
	for _, m := range r.s.Messages {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r chatRepo) MarkRead(ctx context.Context, userID string, sender models.SenderType) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ChatErr != nil {
		return 0, r.s.ChatErr
	}
	var n int64
	for i := range r.s.Messages {
		m := &r.s.Messages[i]
		if m.UserID == userID && m.SenderType == sender && !m.Read {
			m.Read = true
			n++
		}
	}
	return n, nil
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) List(ctx context.Context) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.NotificationsErr != nil {
		return nil, r.s.NotificationsErr
	}
	return append([]models.Notification{}, r.s.Notifications...), nil
}

func (r notificationRepo) Upsert(ctx context.Context, n *models.Notification) error {
	if n.UserName == "" {
		return errors.New("memrepo: notification needs a user name")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.UpdatedAt = time.Now()
	for i := range r.s.Notifications {
		if r.s.Notifications[i].UserName == n.UserName {
			r.s.Notifications[i] = *n
			return nil
		}
	}
	r.s.Notifications = append(r.s.Notifications, *n)
	return nil
}

// ChatMessages returns a copy of the stored messages
func (s *Store) ChatMessages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage{}, s.Messages...)
}
