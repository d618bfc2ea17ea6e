package models

import "time"

// postPreviewLen is the number of characters used for the short string form of a post.
const postPreviewLen = 15

// Post is a text entry written by an author, optionally filed under a group.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null;index" json:"text"`
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	GroupID  *uint     `gorm:"index" json:"group_id,omitempty"`
	Group    *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	// Image is the storage key of the attached picture, empty when there is none.
	Image     string    `gorm:"size:255" json:"image,omitempty"`
	Comments  []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasImage reports whether the post carries an uploaded image.
func (p Post) HasImage() bool {
	return p.Image != ""
}

func (p Post) String() string {
	r := []rune(p.Text)
	if len(r) > postPreviewLen {
		return string(r[:postPreviewLen])
	}
	return p.Text
}
