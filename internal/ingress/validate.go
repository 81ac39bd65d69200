package ingress

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxMessageLength = 2000

var (
	ErrEmpty		= errors.New("пустое сообщение")
	ErrTooLong		= errors.New("сообщение слишком длинное")
	ErrDangerousContent	= errors.New("обнаружено потенциально опасное содержимое")
)

// (?is): без учёта регистра, точка захватывает переводы строк
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script.*?>.*?</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)vbscript:`),
	regexp.MustCompile(`(?i)data:text/html`),
}

// Sanitize проверяет входящий текст до любого обращения к состоянию.
// Возвращает текст без краевых пробелов либо одну из ошибок валидации.
func Sanitize(text string) (string, error) {
	// лимит считается в символах, не в байтах: японский текст
	// не должен упираться в кратно меньший порог
	if utf8.RuneCountInString(text) > maxMessageLength {
		return "", ErrTooLong
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrEmpty
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(text) {
			return "", ErrDangerousContent
		}
	}

	return trimmed, nil
}
