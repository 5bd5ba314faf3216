package payloads

// MediaCleanupPayload — задача на удаление файла изображения с медиа-хостинга
type MediaCleanupPayload struct {
	ImageID  string `json:"image_id"`
	PublicID string `json:"public_id"`
}
