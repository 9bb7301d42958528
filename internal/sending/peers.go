package sending

import (
	"context"
	"log"

	"tg_sender/models"
	"tg_sender/pkg/telegram/dialogs"
	"tg_sender/pkg/telegram/sender"

	"github.com/gotd/td/tg"
)

// resolvePeers заполняет адресатов. Если для каких-то каналов нет access hash,
// один раз загружает диалоги аккаунта и сохраняет найденные значения.
// Нерешённые получатели остаются без адресата и попадут в ошибки рассылки.
func (h *SendHandler) resolvePeers(ctx context.Context, api *tg.Client, entries []sender.Entry, hashes map[int64]int64) {
	if missingHashes(entries, hashes) {
		groups, err := dialogs.GetUserGroups(ctx, api)
		if err != nil {
			log.Printf("[SEND WARN] Не удалось загрузить диалоги для поиска групп: %v", err)
		}
		for _, g := range groups {
			if g.Kind != models.GroupKindChannel || hashes[g.ID] == g.AccessHash {
				continue
			}
			if !wantsPeer(entries, g.ID) {
				continue
			}
			hashes[g.ID] = g.AccessHash
			if err := h.DB.SetGroupAccessHash(ctx, g.ID, g.AccessHash); err != nil {
				log.Printf("[SEND WARN] Не удалось сохранить access hash %d: %v", g.ID, err)
			}
		}
	}
	fillPeers(entries, hashes)
}

// fillPeers строит адресатов по известным access hash.
func fillPeers(entries []sender.Entry, hashes map[int64]int64) {
	for i := range entries {
		peer, err := dialogs.InputPeer(models.Group{ID: entries[i].PeerID, AccessHash: hashes[entries[i].PeerID]})
		if err != nil {
			log.Printf("[SEND WARN] %s: %v", entries[i].Label(), err)
			continue
		}
		entries[i].Peer = peer
	}
}

func missingHashes(entries []sender.Entry, hashes map[int64]int64) bool {
	for _, e := range entries {
		kind, _, err := dialogs.UnmarkID(e.PeerID)
		if err == nil && kind == models.GroupKindChannel && hashes[e.PeerID] == 0 {
			return true
		}
	}
	return false
}

func wantsPeer(entries []sender.Entry, peerID int64) bool {
	for _, e := range entries {
		if e.PeerID == peerID {
			return true
		}
	}
	return false
}
