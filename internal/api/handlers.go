package api

import (
	"encoding/json"
	"net/http"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/paperbot-dev/paperbot/internal/feed"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Email != s.cfg.AdminEmail || s.cfg.AdminPasswordHash == "" {
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(req.Password)); err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, err := s.generateToken(req.Email)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to generate token")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "token",
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		respondJSON(w, http.StatusOK, map[string]any{
			"message": "Login successful",
			"token":   token,
		})
	}
}

func (s *Server) handleLatestDigest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := s.store.GetLatestDigest(r.Context())
		if err != nil {
			s.logger.Error("latest digest lookup failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if d == nil {
			respondError(w, http.StatusNotFound, "No digest available yet")
			return
		}
		respondJSON(w, http.StatusOK, d)
	}
}

func (s *Server) handleDigestByDate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.PathValue("date")
		if _, err := feed.ParseDay(date); err != nil {
			respondError(w, http.StatusBadRequest, "Date must be YYYY-MM-DD")
			return
		}
		d, err := s.store.GetDigest(r.Context(), date)
		if err != nil {
			s.logger.Error("digest lookup failed", "date", date, "error", err)
			respondError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if d == nil {
			respondError(w, http.StatusNotFound, "No digest for that date")
			return
		}
		respondJSON(w, http.StatusOK, d)
	}
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type subscribeRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleSubscribe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if !emailPattern.MatchString(req.Email) {
			respondError(w, http.StatusBadRequest, "Invalid email address")
			return
		}

		if err := s.store.AddSubscriber(r.Context(), req.Email); err != nil {
			s.logger.Error("subscribe failed", "email", req.Email, "error", err)
			respondError(w, http.StatusInternalServerError, "Database error")
			return
		}
		respondJSON(w, http.StatusCreated, map[string]string{"message": "Subscribed", "email": req.Email})
	}
}

func (s *Server) handleUnsubscribe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.PathValue("email")
		if err := s.store.RemoveSubscriber(r.Context(), email); err != nil {
			respondError(w, http.StatusNotFound, "Subscriber not found")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"message": "Unsubscribed", "email": email})
	}
}

func (s *Server) handleListSubscribers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subs, err := s.store.GetActiveSubscribers(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Database error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"subscribers": subs, "count": len(subs)})
	}
}

func (s *Server) handleListRuns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := s.store.RecentRuns(r.Context(), 20)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Database error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
	}
}

type triggerRequest struct {
	Day string `json:"day"`
}

func (s *Server) handleTriggerRun() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.trigger == nil {
			respondError(w, http.StatusServiceUnavailable, "Run trigger not configured")
			return
		}

		var req triggerRequest
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&req)
		}
		if req.Day != "" {
			if _, err := feed.ParseDay(req.Day); err != nil {
				respondError(w, http.StatusBadRequest, "Day must be YYYY-MM-DD")
				return
			}
		}

		if err := s.trigger(r.Context(), req.Day); err != nil {
			s.logger.Error("triggered run failed", "day", req.Day, "error", err)
			respondError(w, http.StatusInternalServerError, "Run failed: "+err.Error())
			return
		}
		respondJSON(w, http.StatusAccepted, map[string]string{"message": "Run completed", "day": req.Day})
	}
}
