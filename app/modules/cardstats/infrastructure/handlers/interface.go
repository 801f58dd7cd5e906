package cardstatshandlers

import "github.com/ThreeDotsLabs/watermill/message"

// Handlers turns trigger messages into service calls.
type Handlers interface {
	HandleTournamentImported(msg *message.Message) ([]*message.Message, error)
	HandleGroupMembershipChanged(msg *message.Message) ([]*message.Message, error)
	HandleRecomputeRequested(msg *message.Message) ([]*message.Message, error)
}
