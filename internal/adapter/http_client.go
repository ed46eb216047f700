package adapter

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cardbox-tools/cardbox/internal/config"
	"github.com/cardbox-tools/cardbox/internal/logger"
	"github.com/cardbox-tools/cardbox/models"
)

type httpRemoteAdapter struct {
	client *resty.Client
	logger *logger.Logger
}

// NewHTTPRemoteAdapter builds a [RemoteAdapter] speaking the simple JSON
// address-book protocol: a collection listing at /cards and one raw vCard
// payload per /cards/{id}, versioned through the ETag header.
func NewHTTPRemoteAdapter(cfg config.Remote, log *logger.Logger) RemoteAdapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.Resource, "/")).
		SetTimeout(timeout)

	if cfg.User != "" {
		cli.SetBasicAuth(cfg.User, cfg.Password)
	}
	if cfg.SkipVerify {
		cli.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	return &httpRemoteAdapter{client: cli, logger: log}
}

type snapshotEntry struct {
	ID   string `json:"id"`
	Etag string `json:"etag"`
}

func (h *httpRemoteAdapter) Snapshot(ctx context.Context) ([]models.RemoteState, error) {
	log := logger.FromContext(ctx)

	resp, err := h.client.R().SetContext(ctx).Get("/cards")
	if err != nil {
		log.Err(err).
			Str("func", "httpRemoteAdapter.Snapshot").
			Msg("snapshot request failed")
		return nil, fmt.Errorf("%w: %w", ErrRemoteFetch, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var entries []snapshotEntry
	if err = json.Unmarshal(resp.Body(), &entries); err != nil {
		return nil, fmt.Errorf("%w: decode snapshot: %w", ErrRemoteFetch, err)
	}

	states := make([]models.RemoteState, 0, len(entries))
	for _, e := range entries {
		states = append(states, models.RemoteState{ID: e.ID, Etag: e.Etag})
	}

	log.Debug().
		Str("func", "httpRemoteAdapter.Snapshot").
		Int("cards", len(states)).
		Msg("remote snapshot fetched")

	return states, nil
}

func (h *httpRemoteAdapter) Fetch(ctx context.Context, ids []string) ([]models.RemoteCard, error) {
	log := logger.FromContext(ctx)

	cards := make([]models.RemoteCard, 0, len(ids))
	for _, id := range ids {
		resp, err := h.client.R().SetContext(ctx).Get("/cards/" + url.PathEscape(id))
		if err != nil {
			log.Err(err).
				Str("func", "httpRemoteAdapter.Fetch").
				Str("card_id", id).
				Msg("card fetch request failed")
			return nil, fmt.Errorf("%w: card %s: %w", ErrRemoteFetch, id, err)
		}
		if resp.StatusCode() == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrCardMissing, id)
		}
		if err = mapHTTPError(resp); err != nil {
			return nil, err
		}

		cards = append(cards, models.RemoteCard{
			ID:   id,
			Etag: strings.Trim(resp.Header().Get("ETag"), `"`),
			Raw:  append([]byte(nil), resp.Body()...),
		})
	}

	return cards, nil
}

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return ErrUnauthorized
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	return fmt.Errorf("%w: http %d: %s", ErrRemoteFetch, resp.StatusCode(), body)
}
