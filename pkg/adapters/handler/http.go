package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/wadjakorntonsri/trimlink/pkg/auth"
	"github.com/wadjakorntonsri/trimlink/pkg/core/domain"
	"github.com/wadjakorntonsri/trimlink/pkg/core/services"
	"github.com/wadjakorntonsri/trimlink/pkg/ports"
	"go.uber.org/zap"
)

type HTTPHandler struct {
	links    ports.LinkService
	clicks   ports.ClickService
	accounts ports.AccountService
	flow     ports.CreationFlow
	recorder ports.VisitRecorder
	ips      *ClientIPs
	logger   *zap.Logger
}

func NewHTTPHandler(links ports.LinkService, clicks ports.ClickService, accounts ports.AccountService, flow ports.CreationFlow, recorder ports.VisitRecorder, ips *ClientIPs, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		links:    links,
		clicks:   clicks,
		accounts: accounts,
		flow:     flow,
		recorder: recorder,
		ips:      ips,
		logger:   logger.Named("http"),
	}
}

type linkDetail struct {
	Link   *domain.Link   `json:"link"`
	Clicks []domain.Click `json:"clicks"`
	Stats  domain.Stats   `json:"stats"`
}

type meResponse struct {
	User      *domain.User `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type dashboardResponse struct {
	Links       []domain.Link  `json:"links"`
	Clicks      []domain.Click `json:"clicks"`
	TotalClicks int            `json:"total_clicks"`
}

// Redirect sends the visitor to the link target. Recording the click is
// queued and never delays or blocks the redirect.
func (h *HTTPHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		writeMessage(w, http.StatusBadRequest, "Short code missing")
		return
	}

	link, err := h.links.ResolveByCode(r.Context(), code)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if r.URL.Query().Get("no_stat") == "" {
		h.recorder.Enqueue(domain.Visit{
			LinkID:    link.ID,
			IP:        h.ips.From(r),
			UserAgent: r.UserAgent(),
		})
	}

	http.Redirect(w, r, link.OriginalURL, http.StatusFound)
}

// Resolve returns public link metadata without recording a click.
func (h *HTTPHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	link, err := h.links.ResolveByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"short_url":    link.ShortURL,
		"custom_url":   link.CustomURL,
		"original_url": link.OriginalURL,
		"title":        link.Title,
		"qr":           link.QR,
	})
}

func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := auth.FromContext(r.Context())

	var form domain.LinkForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	link, err := h.flow.Submit(r.Context(), s.UserID, form, func(st domain.CreationState) {
		h.logger.Debug("create link", zap.Stringer("state", st), zap.String("user_id", s.UserID))
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/link/"+strconv.FormatInt(link.ID, 10))
	writeJSON(w, http.StatusCreated, link)
}

func (h *HTTPHandler) Draft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.flow.DraftFromQuery(r.URL.Query()))
}

func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	s := auth.FromContext(r.Context())
	links, err := h.links.ListByOwner(r.Context(), s.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": links, "total": len(links)})
}

func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.detail(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s := auth.FromContext(r.Context())
	if err := h.links.Delete(r.Context(), id, s.UserID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	resp, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Me returns the stored account behind the caller's session.
func (h *HTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	s := auth.FromContext(r.Context())
	user, err := h.accounts.Get(r.Context(), s.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{User: user, ExpiresAt: s.ExpiresAt})
}

// DashboardPage is the browser view of Dashboard. ?createNew= opens the
// creation dialog prefilled.
func (h *HTTPHandler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	resp, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	renderPage(w, http.StatusOK, "dashboard", dashboardPage{
		Links:       resp.Links,
		TotalClicks: resp.TotalClicks,
		Draft:       h.flow.DraftFromQuery(r.URL.Query()),
	})
}

func (h *HTTPHandler) LinkPage(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.detail(w, r)
	if !ok {
		return
	}
	renderPage(w, http.StatusOK, "link", linkPage{Link: detail.Link, Stats: detail.Stats})
}

func (h *HTTPHandler) detail(w http.ResponseWriter, r *http.Request) (*linkDetail, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	s := auth.FromContext(r.Context())

	link, err := h.links.GetOwned(r.Context(), id, s.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return nil, false
	}
	clicks, err := h.clicks.ListForURL(r.Context(), link.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return nil, false
	}
	return &linkDetail{Link: link, Clicks: clicks, Stats: services.Summarize(clicks)}, true
}

func (h *HTTPHandler) dashboard(w http.ResponseWriter, r *http.Request) (*dashboardResponse, bool) {
	s := auth.FromContext(r.Context())

	links, err := h.links.ListByOwner(r.Context(), s.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return nil, false
	}
	ids := make([]int64, len(links))
	for i, l := range links {
		ids[i] = l.ID
	}
	clicks, err := h.clicks.ListForURLs(r.Context(), ids)
	if err != nil {
		writeError(w, h.logger, err)
		return nil, false
	}
	return &dashboardResponse{Links: links, Clicks: clicks, TotalClicks: len(clicks)}, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return id, true
}
