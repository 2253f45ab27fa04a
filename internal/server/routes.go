package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"bid_market/pkg/httpx/reply"
)

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Route("/listings", func(r chi.Router) {
				// public zone
				r.Get("/{id}", handler(s.getV1Listing))

				// seller/bidder zone
				r.Group(func(r chi.Router) {
					r.Use(RequireAuth)

					r.Get("/", handler(s.getV1Listings))
					r.Post("/", handler(s.postV1Listing))
					r.Patch("/{id}", handler(s.patchV1Listing))

					r.Route("/{id}/bids", func(r chi.Router) {
						r.Get("/", handler(s.getV1ListingBids))
						r.Post("/", handler(s.postV1ListingBid))
						r.Post("/{bidID}/accept", handler(s.postV1BidAccept))
						r.Post("/{bidID}/contact", handler(s.postV1BidContact))
					})
				})
			})
		})
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, asFailure(err))
		}
	}
}
