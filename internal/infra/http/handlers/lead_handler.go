package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/davronx1/leadgate/internal/infra/http/middleware"
	"github.com/davronx1/leadgate/internal/usecase"
)

type LeadHandler struct {
	submit      *usecase.SubmitLeadUseCase
	rateLimiter *RateLimiter
}

func NewLeadHandler(submit *usecase.SubmitLeadUseCase) *LeadHandler {
	return &LeadHandler{
		submit:      submit,
		rateLimiter: NewRateLimiter(10, time.Minute), // 10 req/min per IP
	}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (h *LeadHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clientIP := getClientIP(r)
	if !h.rateLimiter.Allow(clientIP) {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Message: "Too many requests. Please try again later.",
		})
		return
	}

	var input usecase.SubmitLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid JSON"})
		return
	}

	out, err := h.submit.Execute(ctx, input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	middleware.RecordLeadCreated(string(out.Status))
	if out.Merged {
		middleware.RecordMerge()
	}

	writeJSON(w, http.StatusCreated, out)
}

func writeUseCaseError(w http.ResponseWriter, err error) {
	if de, ok := err.(*usecase.DomainError); ok {
		status := http.StatusUnprocessableEntity
		switch de.Code {
		case usecase.CodeValidation:
			status = http.StatusBadRequest
		case usecase.CodeNotFound:
			status = http.StatusNotFound
		case usecase.CodeAlreadyDecided, usecase.CodeInvalidState:
			status = http.StatusConflict
		}
		writeJSON(w, status, errorResponse{Message: de.Message})
		return
	}
	log.Printf("[http] internal error: %v", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Internal error"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := time.Now()

	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for ip, v := range rl.visitors {
			if now.Sub(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}
