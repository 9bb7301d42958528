// Package cheatsheet подставляет параметры в шаблоны сообщений и выбирает
// текст шаблона для конкретного получателя.
package cheatsheet

import (
	"fmt"
	"strings"
)

// Param — пара «имя — значение» для подстановки вместо [имя].
type Param struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Placeholder возвращает метку параметра в тексте.
func Placeholder(name string) string {
	return "[" + name + "]"
}

// Render заменяет все вхождения [имя] значениями. Параметры применяются по порядку,
// поэтому значение одного параметра может содержать метку следующего.
func Render(text string, params []Param) string {
	for _, p := range params {
		if p.Name == "" {
			continue
		}
		text = strings.ReplaceAll(text, Placeholder(p.Name), p.Value)
	}
	return text
}

// Resolve возвращает текст, переопределённый для получателя под шаблон templateName,
// или base, если переопределения нет.
func Resolve(base, templateName string, overrides map[string]string) string {
	if templateName == "" {
		return base
	}
	if text, ok := overrides[templateName]; ok {
		return text
	}
	return base
}

// NextParamName предлагает имя нового параметра: paramN, где N на единицу больше
// числа уже заданных имён; при совпадении дописывается «_».
func NextParamName(existing []string) string {
	taken := make(map[string]bool, len(existing))
	for _, name := range existing {
		taken[name] = true
	}
	name := fmt.Sprintf("param%d", len(taken)+1)
	for taken[name] {
		name += "_"
	}
	return name
}
