package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/AdamBeresnev/tourney-predictor/internal/config"
	"github.com/AdamBeresnev/tourney-predictor/internal/db"
	"github.com/AdamBeresnev/tourney-predictor/internal/httputil"
	"github.com/AdamBeresnev/tourney-predictor/internal/middleware"
	"github.com/AdamBeresnev/tourney-predictor/internal/service"
	"github.com/AdamBeresnev/tourney-predictor/internal/simulation"
	"github.com/AdamBeresnev/tourney-predictor/internal/store"
	"github.com/AdamBeresnev/tourney-predictor/views"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"
)

func newRouter(sessionManager *scs.SessionManager, cfg *config.Config, strategy simulation.Strategy) http.Handler {
	dbConn := db.GetDB()
	tournamentStore := store.NewTournamentStore(dbConn)
	guessStore := store.NewGuessStore(dbConn)
	userStore := store.NewUserStore(dbConn)

	scheduleService := service.NewScheduleService(dbConn, tournamentStore)
	tournamentService := service.NewTournamentService(dbConn, tournamentStore, cfg.HeadToHead)
	guessService := service.NewGuessService(dbConn, tournamentStore, guessStore, cfg.HeadToHead)
	leaderboardService := service.NewLeaderboardService(tournamentStore, guessStore, userStore, service.LeaderboardOptions{
		HeadToHead:      cfg.HeadToHead,
		HonorRollPoints: cfg.HonorRollPoints,
		Concurrency:     cfg.LeaderboardConcurrency,
	})
	userService := service.NewUserService(dbConn, userStore)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadAuthenticatedUser(sessionManager, userStore))

	// Serve static files
	fileServer := http.FileServer(http.Dir("./static"))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// Read-only JSON for other frontends
	r.Route("/api/tournaments/{id}", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"https://*", "http://*"},
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))

		r.Get("/standings", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlUUID(w, r)
			if !ok {
				return
			}
			overview, err := tournamentService.GetOverview(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to get standings", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, standingsResponse(overview))
		})

		r.Get("/bracket", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlUUID(w, r)
			if !ok {
				return
			}
			overview, err := tournamentService.GetOverview(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to get bracket", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, newBracketResponse(overview))
		})

		r.Get("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlUUID(w, r)
			if !ok {
				return
			}
			entries, err := leaderboardService.GetLeaderboard(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to get leaderboard", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, entries)
		})

		r.Get("/simulation", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlUUID(w, r)
			if !ok {
				return
			}
			overview, err := tournamentService.Simulate(r.Context(), id, strategy)
			if err != nil {
				httputil.Error(w, "Failed to simulate tournament", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, newBracketResponse(overview))
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			owned, err := tournamentService.GetTournamentsForUser(r.Context())
			if err != nil {
				httputil.Error(w, "Failed to get tournaments", err)
				return
			}
			tournaments, err := tournamentService.ListTournaments(r.Context())
			if err != nil {
				httputil.InternalServerError(w, "Failed to get tournaments", err)
				return
			}
			views.Index(owned, tournaments).Render(r.Context(), w)
		})

		r.Get("/tournaments/create", func(w http.ResponseWriter, r *http.Request) {
			views.CreateTournamentPage().Render(r.Context(), w)
		})

		r.Post("/tournaments", func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				httputil.BadRequest(w, "Invalid form data", err)
				return
			}
			name := r.Form.Get("name")
			if name == "" {
				httputil.BadRequest(w, "A tournament needs a name", nil)
				return
			}
			groups, err := parseGroups(r.Form.Get("groups"))
			if err != nil {
				httputil.BadRequest(w, err.Error(), err)
				return
			}
			opts := service.ScheduleOptions{
				DoubleRoundRobin: r.Form.Get("double_round_robin") == "on",
				ThirdPlaceGame:   r.Form.Get("third_place") == "on",
			}

			id, err := scheduleService.CreateTournament(r.Context(), name, groups, opts)
			if err != nil {
				httputil.Error(w, "Failed to create tournament", err)
				return
			}
			w.Header().Set("HX-Redirect", fmt.Sprintf("/tournaments/%s", id))
			w.WriteHeader(http.StatusOK)
		})

		r.Get("/tournaments/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlUUID(w, r)
			if !ok {
				return
			}
			overview, err := tournamentService.GetOverview(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to get tournament", err)
				return
			}
			userID, _ := middleware.GetUserIDFromContext(r.Context())
			views.TournamentView(overview, overview.Tournament.OwnerID == userID).Render(r.Context(), w)
		})

		r.Get("/tournaments/{id}/predictions", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlUUID(w, r)
			if !ok {
				return
			}
			userID, _ := middleware.GetUserIDFromContext(r.Context())
			predicted, err := guessService.GetPredictedBracket(r.Context(), userID, id)
			if err != nil {
				httputil.Error(w, "Failed to get predictions", err)
				return
			}
			views.PredictionsView(predicted).Render(r.Context(), w)
		})

		r.Get("/tournaments/{id}/leaderboard", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlUUID(w, r)
			if !ok {
				return
			}
			tournament, err := tournamentService.GetTournament(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to get tournament", err)
				return
			}
			entries, err := leaderboardService.GetLeaderboard(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to get leaderboard", err)
				return
			}
			views.LeaderboardView(tournament, entries).Render(r.Context(), w)
		})

		r.Post("/tournaments/{id}/honor-roll", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlUUID(w, r)
			if !ok {
				return
			}
			if err := r.ParseForm(); err != nil {
				httputil.BadRequest(w, "Invalid form data", err)
				return
			}
			input, err := parseHonorRollForm(r)
			if err != nil {
				httputil.BadRequest(w, "Invalid team", err)
				return
			}
			userID, _ := middleware.GetUserIDFromContext(r.Context())
			if _, err := guessService.SaveHonorRollGuess(r.Context(), userID, id, input); err != nil {
				httputil.Error(w, "Failed to save honor roll picks", err)
				return
			}
			views.Notice("Picks saved").Render(r.Context(), w)
		})

		r.Post("/games/{id}/guess", func(w http.ResponseWriter, r *http.Request) {
			gameID, ok := urlUUID(w, r)
			if !ok {
				return
			}
			if err := r.ParseForm(); err != nil {
				httputil.BadRequest(w, "Invalid form data", err)
				return
			}
			input, err := parseGuessForm(r)
			if err != nil {
				httputil.BadRequest(w, "Invalid score", err)
				return
			}
			userID, _ := middleware.GetUserIDFromContext(r.Context())
			if _, err := guessService.SaveGuess(r.Context(), userID, gameID, input); err != nil {
				httputil.Error(w, "Failed to save guess", err)
				return
			}
			views.Notice("Guess saved").Render(r.Context(), w)
		})

		r.Post("/games/{id}/result", func(w http.ResponseWriter, r *http.Request) {
			gameID, ok := urlUUID(w, r)
			if !ok {
				return
			}
			if err := r.ParseForm(); err != nil {
				httputil.BadRequest(w, "Invalid form data", err)
				return
			}
			input, err := parseResultForm(r)
			if err != nil {
				httputil.BadRequest(w, "Invalid score", err)
				return
			}
			userID, _ := middleware.GetUserIDFromContext(r.Context())
			if _, err := tournamentService.RecordResult(r.Context(), userID, gameID, input); err != nil {
				httputil.Error(w, "Failed to record result", err)
				return
			}
			views.Notice("Result saved").Render(r.Context(), w)
		})

		r.Post("/teams/{id}/conduct", func(w http.ResponseWriter, r *http.Request) {
			teamID, ok := urlUUID(w, r)
			if !ok {
				return
			}
			if err := r.ParseForm(); err != nil {
				httputil.BadRequest(w, "Invalid form data", err)
				return
			}
			score, err := optionalInt(r, "score")
			if err != nil || score == nil {
				httputil.BadRequest(w, "Invalid conduct score", err)
				return
			}
			userID, _ := middleware.GetUserIDFromContext(r.Context())
			if err := tournamentService.SetConductScore(r.Context(), userID, teamID, *score); err != nil {
				httputil.Error(w, "Failed to set conduct score", err)
				return
			}
			views.Notice("Conduct saved").Render(r.Context(), w)
		})
	})

	r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

		gothic.BeginAuthHandler(w, r)
	})

	r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

		gothUser, err := gothic.CompleteUserAuth(w, r)
		if err != nil {
			httputil.BadRequest(w, "Authentication failure", err)
			return
		}

		user, err := userService.FindOrCreateUserByProvider(r.Context(), gothUser)
		if err != nil {
			httputil.InternalServerError(w, "Failed to find or create user", err)
			return
		}

		sessionManager.Put(r.Context(), middleware.SessionUserKey, user.ID.String())

		http.Redirect(w, r, "/", http.StatusFound)
	})

	r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
		views.LoginPage().Render(r.Context(), w)
	})

	r.Post("/auth/guest", func(w http.ResponseWriter, r *http.Request) {
		user, err := userService.EnsureGuestUser(r.Context())
		if err != nil {
			httputil.InternalServerError(w, "Failed to login as guest", err)
			return
		}

		sessionManager.Put(r.Context(), middleware.SessionUserKey, user.ID.String())
		http.Redirect(w, r, "/", http.StatusFound)
	})

	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		sessionManager.Destroy(r.Context())
		if r.Header.Get("HX-Request") != "" {
			w.Header().Set("HX-Redirect", "/login")
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	})

	return r
}

func urlUUID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid ID", err)
		return uuid.Nil, false
	}
	return id, true
}
