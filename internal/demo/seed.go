// Package demo fills an empty database with sample parents, engagements and
// chat threads for local development
package demo

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"devdash/internal/catalog"
	"devdash/internal/repository"
	"devdash/pkg/models"
)

// Stores are the repositories Seed writes through
type Stores struct {
	Users         repository.UserRepository
	Videos        repository.VideoRepository
	Chats         repository.ChatRepository
	Notifications repository.NotificationRepository
}

// Options control the generated data
type Options struct {
	Parents int
	// Seed makes runs reproducible
	Seed int64
	Now  time.Time
}

// Result counts what Seed wrote
type Result struct {
	Users       int
	Engagements int
	Videos      int
	Messages    int
}

var parentNames = []string{
	"Asha Verma", "Ravi Kumar", "Meera Nair", "Arjun Rao", "Priya Shah",
	"Kiran Das", "Neha Gupta", "Vikram Iyer", "Anjali Menon", "Sanjay Patel",
}

var childNames = []string{"Aarav", "Diya", "Ishaan", "Anaya", "Vihaan", "Myra", "Kabir", "Saanvi"}

var parentQuestions = []string{
	"My baby is not holding her head up yet, is that normal?",
	"We watched the tummy time video, how long should we practice each day?",
	"He startles a lot at night, should we be worried?",
	"Thank you doctor, the exercises are helping.",
}

var doctorReplies = []string{
	"That is within the normal range for this age. Keep practicing daily.",
	"Start with a few minutes several times a day and build up slowly.",
	"Please book a visit next week so we can take a closer look.",
}

// Seed writes opts.Parents parents with profiles, engagements against cat's
// videos, the matching video counters, concern notifications and a short chat
// thread per parent
func Seed(ctx context.Context, s Stores, cat *catalog.Catalog, opts Options) (*Result, error) {
	if opts.Parents <= 0 {
		opts.Parents = len(parentNames)
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	entries := cat.Entries()
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	res := &Result{}
	stats := map[string]*models.VideoStats{}

	for i := 0; i < opts.Parents; i++ {
		name := parentNames[i%len(parentNames)]
		if i >= len(parentNames) {
			name = fmt.Sprintf("%s %d", name, i/len(parentNames)+1)
		}
		created := opts.Now.Add(-time.Duration(rng.Intn(90)+1) * 24 * time.Hour)
		active := opts.Now.Add(-time.Duration(rng.Intn(72)) * time.Hour)
		user := &models.User{
			ID:          fmt.Sprintf("parent-%03d", i+1),
			Name:        name,
			PhoneNumber: fmt.Sprintf("+9198%08d", rng.Intn(100000000)),
			CreatedAt:   &created,
			LastActive:  &active,
		}
		if err := s.Users.Upsert(ctx, user); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", user.ID, err)
		}
		res.Users++

		age := 1 + rng.Intn(35)
		child := childNames[rng.Intn(len(childNames))]
		if err := s.Users.UpsertProfile(ctx, &models.UserProfile{
			UserID:         user.ID,
			ChildAgeMonths: &age,
			ChildName:      &child,
			ParentName:     &user.Name,
		}); err != nil {
			return nil, fmt.Errorf("seed profile %s: %w", user.ID, err)
		}

		var concerns []models.NotificationDisapproval
		for _, idx := range rng.Perm(len(entries))[:1+rng.Intn(min(6, len(entries)))] {
			video := entries[idx]
			e := &models.VideoEngagement{
				VideoID:    video.ID,
				UserID:     user.ID,
				Vote:       randomVote(rng),
				ViewCount:  1 + rng.Intn(6),
				LastViewed: opts.Now.Add(-time.Duration(rng.Intn(14*24)) * time.Hour),
			}
			if err := s.Videos.CreateEngagement(ctx, e); err != nil {
				return nil, fmt.Errorf("seed engagement: %w", err)
			}
			res.Engagements++

			st, ok := stats[video.ID]
			if !ok {
				st = &models.VideoStats{VideoID: video.ID}
				stats[video.ID] = st
			}
			st.TotalViews += e.ViewCount
			switch e.Vote {
			case models.VoteApprove:
				st.TotalApprovals++
			case models.VoteDisapprove:
				st.TotalDisapprovals++
				concerns = append(concerns, models.NotificationDisapproval{
					VideoName: video.Name,
					Timestamp: e.LastViewed,
					Type:      models.DisapprovalType,
				})
			}
		}

		if len(concerns) > 0 {
			id := user.ID
			if err := s.Notifications.Upsert(ctx, &models.Notification{
				UserName:     user.Name,
				UserID:       &id,
				UserPhone:    user.PhoneNumber,
				Disapprovals: concerns,
				UpdatedAt:    opts.Now,
			}); err != nil {
				return nil, fmt.Errorf("seed notification %s: %w", user.ID, err)
			}
		}

		n, err := seedThread(ctx, s.Chats, rng, user.ID, opts.Now)
		if err != nil {
			return nil, err
		}
		res.Messages += n
	}

	for _, st := range stats {
		if err := s.Videos.UpsertStats(ctx, st); err != nil {
			return nil, fmt.Errorf("seed stats %s: %w", st.VideoID, err)
		}
	}
	res.Videos = len(stats)
	return res, nil
}

func seedThread(ctx context.Context, chats repository.ChatRepository, rng *rand.Rand, userID string, now time.Time) (int, error) {
	turns := rng.Intn(3)
	at := now.Add(-time.Duration(turns+1) * time.Hour)
	written := 0
	for t := 0; t < turns; t++ {
		for _, m := range []models.ChatMessage{
			{UserID: userID, Message: parentQuestions[rng.Intn(len(parentQuestions))], SenderType: models.SenderUser, Timestamp: at},
			{UserID: userID, Message: doctorReplies[rng.Intn(len(doctorReplies))], SenderType: models.SenderDoctor, Timestamp: at.Add(10 * time.Minute), Read: true},
		} {
			if err := chats.Create(ctx, &m); err != nil {
				return written, fmt.Errorf("seed chat %s: %w", userID, err)
			}
			written++
		}
		at = at.Add(time.Hour)
	}
	return written, nil
}

func randomVote(rng *rand.Rand) models.Vote {
	switch n := rng.Intn(10); {
	case n < 6:
		return models.VoteApprove
	case n < 8:
		return models.VoteDisapprove
	default:
		return models.VoteNone
	}
}
