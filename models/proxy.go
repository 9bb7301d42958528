package models

// Proxy описывает SOCKS5-прокси, через который аккаунт подключается к Telegram.
type Proxy struct {
	ID       int    `json:"id"`
	IP       string `json:"ip"`
	Port     int    `json:"port"`
	Login    string `json:"login"`
	Password string `json:"password"`
}
