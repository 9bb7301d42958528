package dialogs

import (
	"context"
	"errors"
	"fmt"

	"tg_sender/models"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
)

var (
	// ErrNotForum: группа не является форумом или темы отключены.
	ErrNotForum = errors.New("это не группа-форум, или темы отключены")
	// ErrNoAccess: аккаунт не состоит в группе или не видит темы.
	ErrNoAccess = errors.New("нет доступа к группе: проверьте участие и права на просмотр")
)

// Тема «General» остаётся доступной даже скрытой.
const generalTopicID = 1

// topicsLimit ограничивает число запрашиваемых тем одной группы.
const topicsLimit = 100

// GetGroupTopics возвращает открытые темы форум-группы.
func GetGroupTopics(ctx context.Context, api *tg.Client, g models.FetchedGroup) ([]models.FetchedTopic, error) {
	if g.Kind != models.GroupKindChannel || !g.Forum {
		return nil, ErrNotForum
	}
	_, raw, err := UnmarkID(g.ID)
	if err != nil {
		return nil, err
	}

	res, err := api.ChannelsGetForumTopics(ctx, &tg.ChannelsGetForumTopicsRequest{
		Channel: &tg.InputChannel{ChannelID: raw, AccessHash: g.AccessHash},
		Limit:   topicsLimit,
	})
	switch {
	case tgerr.Is(err, "CHANNEL_PRIVATE", "CHAT_ADMIN_REQUIRED"):
		return nil, fmt.Errorf("%w: %v", ErrNoAccess, err)
	case tgerr.Is(err, "CHANNEL_FORUM_MISSING"):
		return nil, ErrNotForum
	case err != nil:
		return nil, err
	}

	return openTopics(g, res.Topics), nil
}

// openTopics отбрасывает закрытые темы и скрытые, кроме General.
func openTopics(g models.FetchedGroup, topics []tg.ForumTopicClass) []models.FetchedTopic {
	result := []models.FetchedTopic{}
	for _, raw := range topics {
		t, ok := raw.(*tg.ForumTopic)
		if !ok {
			continue
		}
		if t.Closed || (t.Hidden && t.ID != generalTopicID) {
			continue
		}
		result = append(result, models.FetchedTopic{
			GroupID:    g.ID,
			GroupName:  g.Name,
			AccessHash: g.AccessHash,
			TopicID:    t.ID,
			Name:       t.Title,
		})
	}
	return result
}
