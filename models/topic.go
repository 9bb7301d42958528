package models

// Topic — тема форум-группы, в которую отправляются сообщения.
// AccessHash относится к самой группе и нужен для отправки.
type Topic struct {
	GroupID         int64             `json:"group_id"`
	TopicID         int               `json:"topic_id"`
	AccessHash      int64             `json:"access_hash"`
	Name            string            `json:"name"`
	ClientNumber    string            `json:"client_number"`
	Tags            []string          `json:"tags"`
	CustomTemplates map[string]string `json:"custom_templates"`
}

// FetchedTopic — тема, найденная в одной из загруженных групп.
type FetchedTopic struct {
	GroupID    int64  `json:"group_id"`
	GroupName  string `json:"group_name"`
	AccessHash int64  `json:"access_hash"`
	TopicID    int    `json:"topic_id"`
	Name       string `json:"name"`
}
