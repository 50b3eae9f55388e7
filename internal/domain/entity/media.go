package entity

// PlaceholderPublicID marks a media result that was not uploaded.
const PlaceholderPublicID = "placeholder"

// MediaAsset is what the media relay hands back to callers.
type MediaAsset struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
}

func (m *MediaAsset) IsPlaceholder() bool {
	return m.PublicID == PlaceholderPublicID
}
