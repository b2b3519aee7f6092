package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"

	"promo-bot/internal/model"
	"promo-bot/internal/repository"
)

// BroadcastService fans messages out to every registered channel,
// immediately or on a persisted daily schedule. The live cron entries
// are rebuilt from the store at startup; the map from post id to entry
// id only exists so /deleteschedule can unhook a running job.
type BroadcastService struct {
	channels  *repository.ChannelRepository
	schedules *repository.ScheduleRepository
	scheduler *SchedulerService
	api       TelegramAPI

	mu      sync.Mutex
	entries map[uint]cron.EntryID
}

func NewBroadcastService(channels *repository.ChannelRepository, schedules *repository.ScheduleRepository, scheduler *SchedulerService, api TelegramAPI) *BroadcastService {
	return &BroadcastService{
		channels:  channels,
		schedules: schedules,
		scheduler: scheduler,
		api:       api,
		entries:   make(map[uint]cron.EntryID),
	}
}

// BroadcastCopy replicates a source message into every registered
// channel. Per-channel failures are logged and do not stop the pass;
// the returned count is the number of successful deliveries.
func (s *BroadcastService) BroadcastCopy(ctx context.Context, fromChatID int64, messageID int) (int, error) {
	channels, err := s.channels.List(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, ch := range channels {
		payload := model.PostPayload{
			Kind:            model.PayloadCopy,
			SourceChatID:    fromChatID,
			SourceMessageID: messageID,
		}
		if err := s.deliver(ch, payload); err != nil {
			log.Printf("broadcast to %q: %v", ch.Title, err)
			continue
		}
		sent++
	}
	return sent, nil
}

// Schedule validates the HH:MM time, persists the post and registers
// its live daily trigger.
func (s *BroadcastService) Schedule(ctx context.Context, timeStr string, payload model.PostPayload) (*model.ScheduledPost, error) {
	if err := ValidateDailyTime(timeStr); err != nil {
		return nil, err
	}
	raw, err := payload.Encode()
	if err != nil {
		return nil, err
	}

	post := &model.ScheduledPost{ScheduleTime: timeStr, Payload: raw}
	if err := s.schedules.Create(ctx, post); err != nil {
		return nil, err
	}

	if err := s.register(*post); err != nil {
		return nil, err
	}

	log.Printf("[info] post scheduled id=%d time=%s kind=%s", post.ID, timeStr, payload.Kind)
	return post, nil
}

// LoadJobs re-registers every persisted schedule into the live engine.
// This is the sole restart-survival mechanism: cron holds no durable
// state. Returns the number of jobs loaded.
func (s *BroadcastService) LoadJobs(ctx context.Context) (int, error) {
	posts, err := s.schedules.List(ctx)
	if err != nil {
		return 0, err
	}
	loaded := 0
	for _, post := range posts {
		if err := s.register(post); err != nil {
			log.Printf("load schedule %d (%s): %v", post.ID, post.ScheduleTime, err)
			continue
		}
		loaded++
	}
	return loaded, nil
}

// ListSchedules returns every persisted scheduled post.
func (s *BroadcastService) ListSchedules(ctx context.Context) ([]model.ScheduledPost, error) {
	return s.schedules.List(ctx)
}

// Delete removes the stored post and its live trigger. The store
// deletion result stands even if no live entry was found.
func (s *BroadcastService) Delete(ctx context.Context, id uint) (bool, error) {
	removed, err := s.schedules.Delete(ctx, id)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	entryID, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()
	if ok {
		s.scheduler.Remove(entryID)
	}

	return removed, nil
}

func (s *BroadcastService) register(post model.ScheduledPost) error {
	postID := post.ID
	entryID, err := s.scheduler.ScheduleDaily(post.ScheduleTime, func() {
		s.Dispatch(postID)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entries[postID] = entryID
	s.mu.Unlock()
	return nil
}

// Dispatch delivers one occurrence of a scheduled post. The post and
// the channel list are re-fetched so edits and deletions between
// firings take effect; a post deleted from the store skips the
// occurrence with a logged error.
func (s *BroadcastService) Dispatch(postID uint) {
	ctx := context.Background()

	post, err := s.schedules.FindByID(ctx, postID)
	if err != nil {
		log.Printf("scheduled post %d: %v", postID, err)
		return
	}
	payload, err := model.DecodePayload(post.Payload)
	if err != nil {
		log.Printf("scheduled post %d: %v", postID, err)
		return
	}

	channels, err := s.channels.List(ctx)
	if err != nil {
		log.Printf("scheduled post %d: list channels: %v", postID, err)
		return
	}

	for _, ch := range channels {
		if err := s.deliver(ch, payload); err != nil {
			log.Printf("auto-post %d to %q: %v", postID, ch.Title, err)
		}
	}
}

func (s *BroadcastService) deliver(ch model.Channel, payload model.PostPayload) error {
	chatID, err := strconv.ParseInt(ch.ChannelID, 10, 64)
	if err != nil {
		return fmt.Errorf("no deliverable chat id (%q)", ch.ChannelID)
	}

	switch payload.Kind {
	case model.PayloadCopy:
		_, err = s.api.CopyMessage(tgbotapi.NewCopyMessage(chatID, payload.SourceChatID, payload.SourceMessageID))
	case model.PayloadText:
		_, err = s.api.Send(tgbotapi.NewMessage(chatID, payload.Text))
	default:
		err = fmt.Errorf("unknown payload kind %q", payload.Kind)
	}
	return err
}
