package identity

import "context"

// Store is the document-store boundary the core consumes.
//
// Contract:
//   - Find* return ErrNotFound when no record matches; any other error is a
//     transport/database failure.
//   - InsertUser returns ErrConflict when the username is already taken.
//     The existence check and the insert are one atomic operation; two
//     concurrent registrations for the same username cannot both succeed.
//   - Implementations must be safe for concurrent use.
type Store interface {
	FindUserByID(ctx context.Context, id UserID) (User, error)
	FindUserByUsername(ctx context.Context, username string) (User, error)
	InsertUser(ctx context.Context, u User) error

	FindChannelByID(ctx context.Context, id ChannelID) (Channel, error)
	InsertChannel(ctx context.Context, c Channel) error

	FindMessages(ctx context.Context, q MessagesQuery) ([]Message, error)
	InsertMessage(ctx context.Context, m Message) error

	Close(ctx context.Context) error
}
