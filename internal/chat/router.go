package chat

import (
	"log"

	"github.com/dpayton/go-chatserver/internal/stats"
)

// ConnTable resolves live connection ids to their transport handles.
type ConnTable interface {
	Lookup(id string) (Conn, bool)
}

// Router fans messages out to the other online members of the sender's
// active room. Delivery is fire-and-forget: offline members are skipped and
// nothing is queued or retried.
type Router struct {
	log        *log.Logger
	identities IdentityStore
	rooms      RoomStore
	conns      ConnTable
	stats      stats.StatsProvider
}

func NewRouter(logger *log.Logger, identities IdentityStore, rooms RoomStore, conns ConnTable, sp stats.StatsProvider) *Router {
	return &Router{
		log:        logger,
		identities: identities,
		rooms:      rooms,
		conns:      conns,
		stats:      sp,
	}
}

// Route delivers "<sender>: <text>" to every online member of the sender's
// active room except the sender. With no active room it is a silent no-op.
// It returns the number of connections the message was queued to.
func (rt *Router) Route(sender *Account, text string) int {
	if sender.ActiveRoom == "" {
		return 0
	}

	room, ok := rt.rooms.Get(sender.ActiveRoom)
	if !ok {
		rt.log.Printf("active room %q for %q no longer exists", sender.ActiveRoom, sender.Username)
		return 0
	}

	line := sender.Username + ": " + text

	var delivered int
	for member := range room.Members {
		if member == sender.Username {
			continue
		}

		acct, ok := rt.identities.Get(member)
		if !ok || acct.ConnID == "" {
			continue
		}

		conn, ok := rt.conns.Lookup(acct.ConnID)
		if !ok {
			// binding is stale, the connection already closed
			continue
		}

		// MessagesRouted counts queued deliveries, not send attempts
		if conn.WriteText(line) {
			delivered++
			rt.stats.Incr("MessagesRouted")
		}
	}

	return delivered
}
