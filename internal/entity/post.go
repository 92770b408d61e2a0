package entity

// Post is a single social media post mentioning a ticker.
type Post struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}
