package router

import (
	"net/http"

	"bookmart/internal/handler"
	"bookmart/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// New creates the HTTP router with all routes and middleware configured.
// paymentHandler may be nil when online payments are disabled.
func New(
	bookHandler *handler.BookHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	paymentHandler *handler.PaymentHandler,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware in order: Recovery -> Logging -> CORS -> Identity
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.Identity(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/books", bookHandler.GetAll)
		r.Get("/books/{id}", bookHandler.GetByID)

		r.Get("/cart", cartHandler.Get)
		r.Post("/cart", cartHandler.AddItem)
		r.Put("/cart", cartHandler.UpdateItem)
		r.Delete("/cart/{bookId}", cartHandler.RemoveItem)

		r.Post("/orders", orderHandler.Checkout)
		r.Get("/orders", orderHandler.ListAll)
		r.Get("/orders/{id}", orderHandler.GetByID)

		if paymentHandler != nil {
			r.Post("/payment/momo", paymentHandler.CreateIntent)
			r.Post("/payment/momo/ipn", paymentHandler.HandleIPN)
		}
	})

	return r
}
