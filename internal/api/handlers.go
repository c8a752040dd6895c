package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"snatch/internal/history"
	"snatch/internal/logging"
	"snatch/internal/media"
	"snatch/internal/sites"
)

type infoQuery struct {
	URL string `json:"url" validate:"required,url"`
}

// siteGroup serves the per-site extraction endpoints. YouTube responses
// report raw byte sizes while the other groups humanize them, matching
// the behavior clients already depend on.
type siteGroup struct {
	svc       *Service
	site      string
	humanized bool
}

func (g *siteGroup) artifactData(artifact *Artifact) map[string]any {
	data := map[string]any{
		"link":     artifact.Link,
		"filename": artifact.Filename,
	}
	if g.humanized {
		data["size"] = humanize.Bytes(uint64(artifact.Size))
	} else {
		data["size"] = artifact.Size
	}
	return data
}

func (g *siteGroup) writeExtractError(w http.ResponseWriter, err error) {
	if errors.Is(err, sites.ErrUnavailable) {
		writeMessage(w, http.StatusBadRequest, "Requested item is unavailable")
		return
	}
	writeMessage(w, http.StatusBadRequest, err.Error())
}

func (g *siteGroup) handleInfo(w http.ResponseWriter, r *http.Request) {
	q := infoQuery{URL: strings.TrimSpace(r.URL.Query().Get("url"))}
	if fields := validateStruct(&q); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}
	result, err := g.svc.Info(r.Context(), g.site, q.URL)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	writeData(w, result)
}

func (g *siteGroup) handleExtract(kind media.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawURL, format, quality, fields := parseExtractQuery(kind, g.site, r.URL.Query())
		if len(fields) > 0 {
			writeFieldErrors(w, fields)
			return
		}
		artifact, err := g.svc.Produce(r.Context(), g.site, kind, rawURL, format, quality)
		if err != nil {
			g.writeExtractError(w, err)
			return
		}
		writeData(w, g.artifactData(artifact))
	}
}

func (g *siteGroup) handleQueue(kind media.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawURL, format, quality, fields := parseExtractQuery(kind, g.site, r.URL.Query())
		if len(fields) > 0 {
			writeFieldErrors(w, fields)
			return
		}
		artifact, queued, err := g.svc.Enqueue(r.Context(), g.site, kind, rawURL, format, quality)
		if err != nil {
			g.writeExtractError(w, err)
			return
		}
		if queued {
			writeMessage(w, http.StatusAccepted, queuedMessage(kind))
			return
		}
		writeData(w, g.artifactData(artifact))
	}
}

func queuedMessage(kind media.Kind) string {
	if kind == media.KindAudio {
		return "Audio is being processed. Please try again shortly."
	}
	return "Video is being processed. Please try again shortly."
}

// admin endpoints

func (s *server) requireKey(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("key") != s.secretKey {
		writeMessage(w, http.StatusUnauthorized, "Access denied, wrong key")
		return false
	}
	return true
}

func (s *server) handleCacheFlush(w http.ResponseWriter, r *http.Request) {
	if !s.requireKey(w, r) {
		return
	}
	flushed := s.svc.FlushPending()
	writeData(w, map[string]int{"flushed": flushed})
}

func (s *server) handleCookiesClear(w http.ResponseWriter, r *http.Request) {
	if !s.requireKey(w, r) {
		return
	}
	removed, err := s.svc.ClearCookies()
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, map[string]int{"removed": removed})
}

const maxCookieUploadBytes = 1 << 20

func (s *server) handleCookiesUpload(w http.ResponseWriter, r *http.Request) {
	site := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("site")))
	if site == "" {
		writeFieldErrors(w, map[string]string{"site": "The field 'site' is required."})
		return
	}

	if err := r.ParseMultipartForm(maxCookieUploadBytes); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("cookies")
	if err != nil {
		writeFieldErrors(w, map[string]string{"cookies": "The field 'cookies' is required."})
		return
	}
	defer file.Close()

	path, err := s.svc.SaveCookies(site, file)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("cookie file stored",
		logging.String(logging.FieldSite, site),
		logging.String("path", path))
	writeMessage(w, http.StatusOK, "Cookies saved")
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Status(r.Context())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, report)
}

func (s *server) handlePending(w http.ResponseWriter, _ *http.Request) {
	writeData(w, s.svc.PendingJobs())
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeFieldErrors(w, map[string]string{"limit": "The field 'limit' must be a positive integer."})
			return
		}
		limit = parsed
	}
	attempts, err := s.svc.History(r.Context(), limit)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if attempts == nil {
		attempts = []history.Attempt{}
	}
	writeData(w, attempts)
}
