package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"snatch/internal/logging"
	"snatch/internal/media"
	"snatch/internal/sites"
)

// RouterConfig carries everything the HTTP surface needs.
type RouterConfig struct {
	Service     *Service
	SecretKey   string
	ServeStatic bool
	AudioDir    string
	VideoDir    string
	Logger      *slog.Logger
}

type server struct {
	svc       *Service
	secretKey string
	logger    *slog.Logger
}

// NewRouter builds the chi router serving the full HTTP surface.
func NewRouter(cfg RouterConfig) http.Handler {
	s := &server{
		svc:       cfg.Service,
		secretKey: cfg.SecretKey,
		logger:    logging.NewComponentLogger(cfg.Logger, "http"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(responseTime)
	r.Use(cors)
	r.Use(secureHeaders)

	mountSite := func(prefix, site string, humanized bool) {
		group := &siteGroup{svc: cfg.Service, site: site, humanized: humanized}
		r.Route(prefix, func(r chi.Router) {
			r.Get("/info", group.handleInfo)
			r.Get("/video", group.handleExtract(media.KindVideo))
			r.Get("/audio", group.handleExtract(media.KindAudio))
			r.Get("/video-queue", group.handleQueue(media.KindVideo))
			r.Get("/audio-queue", group.handleQueue(media.KindAudio))
		})
	}
	mountSite("/yt", sites.YouTube, false)
	mountSite("/tt", sites.TikTok, true)
	mountSite("/dl", sites.Default, true)

	r.Post("/cookies/upload", s.handleCookiesUpload)
	r.Get("/cookies/clear", s.handleCookiesClear)
	r.Get("/cache/flush", s.handleCacheFlush)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/pending", s.handlePending)
		r.Get("/history", s.handleHistory)
	})

	if cfg.ServeStatic {
		r.Handle("/audio/*", http.StripPrefix("/audio/", http.FileServer(http.Dir(cfg.AudioDir))))
		r.Handle("/video/*", http.StripPrefix("/video/", http.FileServer(http.Dir(cfg.VideoDir))))
	}

	return r
}
