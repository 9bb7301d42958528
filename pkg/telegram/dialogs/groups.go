package dialogs

import (
	"context"
	"log"

	"tg_sender/models"

	"github.com/gotd/td/tg"
)

// Диалогов за один вызов.
const dialogsPageSize = 100

// GetUserGroups возвращает все группы, супергруппы и каналы, в которых состоит аккаунт.
func GetUserGroups(ctx context.Context, api *tg.Client) ([]models.FetchedGroup, error) {
	var (
		groups = []models.FetchedGroup{}
		seen   = make(map[int64]bool)
		req    = &tg.MessagesGetDialogsRequest{
			OffsetPeer: &tg.InputPeerEmpty{},
			Limit:      dialogsPageSize,
		}
	)

	for page := 0; ; page++ {
		res, err := api.MessagesGetDialogs(ctx, req)
		if err != nil {
			return nil, err
		}
		dialogs, ok := res.AsModified()
		if !ok {
			break
		}

		for _, g := range collectGroups(dialogs.GetDialogs(), dialogs.GetChats()) {
			if seen[g.ID] {
				continue
			}
			seen[g.ID] = true
			groups = append(groups, g)
		}

		// Полный список приходит как MessagesDialogs; срез — как MessagesDialogsSlice.
		if _, isSlice := res.(*tg.MessagesDialogsSlice); !isSlice || len(dialogs.GetDialogs()) < dialogsPageSize {
			break
		}
		next, ok := nextOffset(dialogs)
		if !ok || (next.OffsetID == req.OffsetID && next.OffsetDate == req.OffsetDate) {
			break
		}
		req = next
		log.Printf("[DIALOGS] страница %d: найдено групп %d", page+1, len(groups))
	}

	return groups, nil
}

// collectGroups отбирает из диалогов обычные группы и каналы.
func collectGroups(dialogs []tg.DialogClass, chats []tg.ChatClass) []models.FetchedGroup {
	index := make(map[int64]tg.ChatClass, len(chats))
	for _, c := range chats {
		index[c.GetID()] = c
	}

	var groups []models.FetchedGroup
	for _, raw := range dialogs {
		d, ok := raw.(*tg.Dialog)
		if !ok {
			continue
		}
		switch peer := d.Peer.(type) {
		case *tg.PeerChat:
			chat, ok := index[peer.ChatID].(*tg.Chat)
			if !ok || chat.Deactivated || chat.Left {
				continue
			}
			groups = append(groups, models.FetchedGroup{
				ID:   MarkedID(models.GroupKindChat, chat.ID),
				Kind: models.GroupKindChat,
				Name: chat.Title,
			})
		case *tg.PeerChannel:
			ch, ok := index[peer.ChannelID].(*tg.Channel)
			if !ok || ch.Left {
				continue
			}
			groups = append(groups, models.FetchedGroup{
				ID:         MarkedID(models.GroupKindChannel, ch.ID),
				Kind:       models.GroupKindChannel,
				AccessHash: ch.AccessHash,
				Name:       ch.Title,
				Username:   ch.Username,
				Forum:      ch.Forum,
			})
		}
	}
	return groups
}

// nextOffset вычисляет смещение следующей страницы по последнему диалогу.
func nextOffset(dialogs tg.ModifiedMessagesDialogs) (*tg.MessagesGetDialogsRequest, bool) {
	list := dialogs.GetDialogs()
	if len(list) == 0 {
		return nil, false
	}
	last, ok := list[len(list)-1].(*tg.Dialog)
	if !ok {
		return nil, false
	}

	channels := make(map[int64]*tg.Channel)
	for _, c := range dialogs.GetChats() {
		if ch, ok := c.(*tg.Channel); ok {
			channels[ch.ID] = ch
		}
	}
	users := make(map[int64]*tg.User)
	for _, u := range dialogs.GetUsers() {
		if user, ok := u.(*tg.User); ok {
			users[user.ID] = user
		}
	}

	var date int
	for _, m := range dialogs.GetMessages() {
		if m.GetID() != last.TopMessage {
			continue
		}
		switch msg := m.(type) {
		case *tg.Message:
			if samePeer(msg.PeerID, last.Peer) {
				date = msg.Date
			}
		case *tg.MessageService:
			if samePeer(msg.PeerID, last.Peer) {
				date = msg.Date
			}
		}
	}

	return &tg.MessagesGetDialogsRequest{
		OffsetDate: date,
		OffsetID:   last.TopMessage,
		OffsetPeer: inputPeerFor(last.Peer, channels, users),
		Limit:      dialogsPageSize,
	}, true
}

func samePeer(a, b tg.PeerClass) bool {
	switch pa := a.(type) {
	case *tg.PeerChannel:
		pb, ok := b.(*tg.PeerChannel)
		return ok && pa.ChannelID == pb.ChannelID
	case *tg.PeerChat:
		pb, ok := b.(*tg.PeerChat)
		return ok && pa.ChatID == pb.ChatID
	case *tg.PeerUser:
		pb, ok := b.(*tg.PeerUser)
		return ok && pa.UserID == pb.UserID
	}
	return false
}
