package domain

// Post is a social feed entry, either community-wide or belonging to one
// resident's update stream.
type Post struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Timestamp int64     `json:"timestamp"`
	Content   string    `json:"content"`
	Likes     int       `json:"likes"`
	Comments  []Comment `json:"comments"`
}

// Comment is a reply attached to a post.
type Comment struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}
