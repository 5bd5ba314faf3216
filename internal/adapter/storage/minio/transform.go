package minio

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// profiles — именованные преобразования, которые понимает прокси изображений
// перед бакетом. Параметры добавляются к query-строке URL.
var profiles = map[string]map[string]string{
	"thumbnail": {"w": "150", "h": "150", "fit": "crop"},
	"avatar":    {"w": "250", "h": "250", "fit": "crop", "gravity": "face", "radius": "max"},
	"preview":   {"w": "800", "fit": "scale"},
	"grayscale": {"effect": "grayscale"},
	"sepia":     {"effect": "sepia"},
}

// Profiles возвращает имена доступных профилей по алфавиту
func Profiles() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Transform применяет профиль к URL изображения. Профили накладываются:
// повторный вызов с другим профилем добавляет его параметры к уже примененным.
func (c *Client) Transform(rawURL, profile string) (string, error) {
	return transform(rawURL, profile)
}

func transform(rawURL, profile string) (string, error) {
	params, ok := profiles[strings.ToLower(profile)]
	if !ok {
		return "", fmt.Errorf("неизвестный профиль преобразования %q", profile)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("некорректный URL изображения: %w", err)
	}

	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
