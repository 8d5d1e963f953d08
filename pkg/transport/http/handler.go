package http

import (
	"bytes"
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/kujenga/peekaboo/pkg/file"
	"github.com/kujenga/peekaboo/pkg/fractal"
	"github.com/kujenga/peekaboo/pkg/page"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Counter counts visitors by id
type Counter interface {
	Increment(ctx context.Context, key string) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
}

// SettingsProvider returns the rendering settings in use
type SettingsProvider interface {
	Current() file.Settings
}

type peekHandler struct {
	counter  Counter
	settings SettingsProvider
	pages    *page.Renderer
	logger   *logrus.Logger
}

func (h *peekHandler) handleIndex(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var buf bytes.Buffer
	if err := h.pages.Index(&buf, h.settings.Current().Title); err != nil {
		h.logger.WithError(err).Error("could not render index")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeBody(w, "text/html; charset=utf-8", buf.Bytes())
}

func (h *peekHandler) handlePeek(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if _, err := h.counter.Increment(r.Context(), id); err != nil {
		h.logger.WithError(err).WithField("id", id).Warn("could not count visit")
	}

	settings := h.settings.Current()
	img, err := fractal.Render(r.URL.Query().Get("t"), settings.ImageSize, settings.MaxIterations)
	if errors.Is(err, fractal.ErrUnknownKind) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("could not render image")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := fractal.EncodePNG(&buf, img); err != nil {
		h.logger.WithError(err).Error("could not encode image")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeBody(w, "image/png", buf.Bytes())
}

func (h *peekHandler) handlePeekInfo(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	// ids that were never seen are shown as zero visitors
	count, err := h.counter.Get(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).WithField("id", id).Debug("no visitor count")
		count = 0
	}

	var buf bytes.Buffer
	if err := h.pages.Info(&buf, h.settings.Current().Title, id, count); err != nil {
		h.logger.WithError(err).Error("could not render info")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeBody(w, "text/html; charset=utf-8", buf.Bytes())
}

func writeBody(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
