package models

// Template — сохранённая шпаргалка: текст сообщения и имена его параметров.
type Template struct {
	Name   string   `json:"name"`
	Text   string   `json:"text"`
	Params []string `json:"params"`
}
