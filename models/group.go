package models

// Виды чатов, в которые можно отправлять сообщения.
const (
	GroupKindChat    = "chat"    // Обычная группа
	GroupKindChannel = "channel" // Супергруппа или канал
)

// Group — сохранённая группа-получатель.
// ID хранится в «маркированном» виде: -100… для каналов, -id для обычных групп.
type Group struct {
	ID              int64             `json:"id"`
	Kind            string            `json:"kind"`
	AccessHash      int64             `json:"access_hash"`
	Name            string            `json:"name"`
	Username        string            `json:"username"`
	ClientNumber    string            `json:"client_number"`
	Tags            []string          `json:"tags"`
	CustomTemplates map[string]string `json:"custom_templates"` // Имя шаблона → свой текст
}

// FetchedGroup — группа, полученная из списка диалогов аккаунта.
type FetchedGroup struct {
	ID         int64  `json:"id"`
	Kind       string `json:"kind"`
	AccessHash int64  `json:"access_hash"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	Forum      bool   `json:"forum"`
}
