package server

// Server aggregates the entity-specific HTTP servers.
type Server struct {
	ListingServer
	BidServer
}

func NewServer(
	listingServer ListingServer,
	bidServer BidServer,
) Server {
	return Server{
		ListingServer: listingServer,
		BidServer:     bidServer,
	}
}
