package identity

import (
	"strconv"
	"time"
)

// UserID is the opaque identity naming one user.
type UserID int64

// ChannelID names one channel.
type ChannelID int64

// MessageID names one message.
type MessageID int64

// ParseUserID parses the decimal form used in token subjects and URL paths.
func ParseUserID(s string) (UserID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return UserID(n), nil
}

// String returns the decimal form of the id.
func (id UserID) String() string { return strconv.FormatInt(int64(id), 10) }

// User is globchat's security principal.
// PasswordHash is the only credential material that ever crosses this
// boundary; the plaintext never does.
type User struct {
	ID           UserID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Channel is a named message container.
type Channel struct {
	ID        ChannelID
	Name      string
	CreatorID UserID
	CreatedAt time.Time
}

// Message is one persisted chat message.
type Message struct {
	ID        MessageID
	ChannelID ChannelID
	AuthorID  UserID
	Contents  string
	CreatedAt time.Time
}

// MessagesQuery selects messages of one channel within a CreatedAt window.
// To is optional; nil means unbounded.
type MessagesQuery struct {
	Channel ChannelID
	From    time.Time
	To      *time.Time
	Limit   int
}
