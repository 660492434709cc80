package server

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	"card-clash/internal/config"

	"gorm.io/gorm"
)

type Server struct {
	store    *Store
	db       *gorm.DB
	deck     *Deck
	prompts  []string
	ws       *wsHub
	homeWS   *homeHub
	cfg      config.Config
	sessions *sessionStore
	limiter  *rateLimiter
	rngMu    sync.Mutex
	rng      *rand.Rand
	timersMu sync.Mutex
	timers   map[string]*time.Timer
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	return NewWithSeed(conn, cfg, time.Now().UnixNano())
}

// NewWithSeed builds a server with a deterministic shuffle, used by tests
// that assert on dealt hands.
func NewWithSeed(conn *gorm.DB, cfg config.Config, seed int64) *Server {
	return &Server{
		store:    NewStore(),
		db:       conn,
		deck:     NewDeck(loadCards(conn), rand.New(rand.NewSource(seed))),
		prompts:  loadPrompts(conn),
		ws:       newWSHub(),
		homeWS:   newHomeHub(),
		cfg:      cfg,
		sessions: newSessionStore(conn),
		limiter:  newRateLimiter(),
		rng:      rand.New(rand.NewSource(seed + 1)),
		timers:   make(map[string]*time.Timer),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleHome)
	mux.HandleFunc("GET /join", s.handleJoinView)
	mux.HandleFunc("GET /join/", s.handleJoinView)
	mux.HandleFunc("GET /play/", s.handlePlayerView)
	mux.HandleFunc("GET /rooms/", s.handleRoomView)
	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /api/rooms/", s.handleRoomSubroutes)
	mux.HandleFunc("POST /api/rooms/", s.handleRoomSubroutes)
	mux.HandleFunc("GET /ws/rooms/", s.handleWebsocket)
	mux.HandleFunc("GET /ws/home", s.handleHomeWebsocket)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	return mux
}
