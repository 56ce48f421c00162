package models

type Image struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	ProductID int64  `json:"productId"`
	PublicID  string `json:"publicId"`
}

type ImageRequest struct {
	URL       string `json:"url" validate:"required,url"`
	ProductID int64  `json:"productId"`
	PublicID  string `json:"publicId"`
}

// FirstImageURL returns the first image's URL, or "" when there is none.
func FirstImageURL(images []Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
