package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"

	"github.com/Dosada05/knockout-arena/handlers"
	"github.com/Dosada05/knockout-arena/middleware"
	"github.com/Dosada05/knockout-arena/models"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	wagerHandler *handlers.WagerHandler,
	chatHandler *handlers.ChatHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Get("/ws", webSocketHandler.ServeWs)

	// Публичные маршруты просмотра: то же, что получает websocket-наблюдатель.
	router.Get("/tournament", tournamentHandler.GetState)
	router.Get("/users", tournamentHandler.ListUsers)
	router.Get("/bets", wagerHandler.Book)
	router.Get("/chat", chatHandler.History)

	// Маршруты игроков
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.RequireRole(models.RolePlayer))

		r.Post("/bets", wagerHandler.Place)
		r.Post("/chat", chatHandler.Send)
	})

	// Маршруты администратора
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.RequireRole(models.RoleAdmin))

		r.Post("/tournament/groups/{group}/result", tournamentHandler.DeclareGroupResult)
		r.Post("/tournament/matches/{stage}/{matchID}/winner", tournamentHandler.DeclareMatchWinner)
		r.Post("/tournament/final/winner", tournamentHandler.DeclareFinalWinner)

		r.Delete("/tournament/groups/{group}/result", tournamentHandler.ResetGroup)
		r.Delete("/tournament/matches/{stage}/{matchID}/winner", tournamentHandler.ResetMatch)
		r.Post("/tournament/reset", tournamentHandler.FullReset)
		r.Post("/tournament/participants/replace", tournamentHandler.ReplaceParticipant)

		r.Delete("/bets/{target}/{bettor}", wagerHandler.AdminCancel)

		r.Get("/chat/mutes", chatHandler.MuteTable)
		r.Post("/chat/mutes", chatHandler.Mute)
		r.Delete("/chat/mutes", chatHandler.Unmute)
	})
}
