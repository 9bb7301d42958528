// Package dialogs получает группы и темы аккаунта и превращает сохранённые
// записи обратно в адресатов для отправки.
package dialogs

import (
	"fmt"

	"tg_sender/models"

	"github.com/gotd/td/tg"
)

// channelShift — смещение «маркированных» ID каналов и супергрупп (-100…).
const channelShift int64 = 1_000_000_000_000

// MarkedID переводит сырой ID Telegram в маркированный вид, под которым группа хранится.
func MarkedID(kind string, rawID int64) int64 {
	if kind == models.GroupKindChat {
		return -rawID
	}
	return -(channelShift + rawID)
}

// UnmarkID определяет вид группы по маркированному ID и возвращает сырой ID.
func UnmarkID(marked int64) (kind string, rawID int64, err error) {
	switch {
	case marked < -channelShift:
		return models.GroupKindChannel, -marked - channelShift, nil
	case marked < 0:
		return models.GroupKindChat, -marked, nil
	default:
		return "", 0, fmt.Errorf("ID %d не относится к группе", marked)
	}
}

// InputPeer собирает адресата для запросов отправки. Для каналов нужен access hash.
func InputPeer(g models.Group) (tg.InputPeerClass, error) {
	kind, raw, err := UnmarkID(g.ID)
	if err != nil {
		return nil, err
	}
	if kind == models.GroupKindChat {
		return &tg.InputPeerChat{ChatID: raw}, nil
	}
	if g.AccessHash == 0 {
		return nil, fmt.Errorf("для группы %d неизвестен access hash, загрузите группы заново", g.ID)
	}
	return &tg.InputPeerChannel{ChannelID: raw, AccessHash: g.AccessHash}, nil
}

// inputPeerFor строит InputPeer для смещения пагинации диалогов.
func inputPeerFor(peer tg.PeerClass, chats map[int64]*tg.Channel, users map[int64]*tg.User) tg.InputPeerClass {
	switch p := peer.(type) {
	case *tg.PeerChannel:
		if ch, ok := chats[p.ChannelID]; ok {
			return &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}
		}
	case *tg.PeerChat:
		return &tg.InputPeerChat{ChatID: p.ChatID}
	case *tg.PeerUser:
		if u, ok := users[p.UserID]; ok {
			return &tg.InputPeerUser{UserID: u.ID, AccessHash: u.AccessHash}
		}
	}
	return &tg.InputPeerEmpty{}
}
