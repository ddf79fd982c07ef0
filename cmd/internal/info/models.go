package info

import "globchat/cmd/identity"

// Wire shapes for the lookup endpoints. Timestamps are unix seconds.

type userResponse struct {
	Username     string          `json:"username"`
	UserID       identity.UserID `json:"user_id"`
	CreationTime int64           `json:"creation_time"`
}

type channelResponse struct {
	Name         string             `json:"name"`
	CreationTime int64              `json:"creation_time"`
	Creator      identity.UserID    `json:"creator"`
	ChannelID    identity.ChannelID `json:"channel_id"`
}

type messageResponse struct {
	Contents  string             `json:"contents"`
	Author    identity.UserID    `json:"author"`
	Timestamp int64              `json:"timestamp"`
	MessageID identity.MessageID `json:"message_id"`
}

type channelCreateRequest struct {
	Name string `json:"name"`
}
