package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/absmach/fedlearn/participant"
	"github.com/absmach/fedlearn/pkg/api"
	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/absmach/supermq"
	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/go-chi/chi/v5"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const waitKey = "wait"

func MakeHandler(svc participant.Service, logger *slog.Logger, instanceID string) http.Handler {
	mux := chi.NewRouter()

	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(apiutil.LoggingErrorEncoder(logger, encodeError)),
	}

	mux.Get("/status", otelhttp.NewHandler(kithttp.NewServer(
		statusEndpoint(svc),
		decodeStatusReq,
		api.EncodeResponse,
		opts...,
	), "get-status").ServeHTTP)

	mux.Route("/model", func(r chi.Router) {
		r.Get("/", otelhttp.NewHandler(kithttp.NewServer(
			globalModelEndpoint(svc),
			kithttp.NopRequestDecoder,
			api.EncodeResponse,
			opts...,
		), "get-global-model").ServeHTTP)
		r.Post("/", otelhttp.NewHandler(kithttp.NewServer(
			submitModelEndpoint(svc),
			decodeSubmitModelReq,
			api.EncodeResponse,
			opts...,
		), "submit-local-model").ServeHTTP)
	})

	mux.Post("/stop", otelhttp.NewHandler(kithttp.NewServer(
		stopEndpoint(svc),
		kithttp.NopRequestDecoder,
		api.EncodeResponse,
		opts...,
	), "stop").ServeHTTP)

	mux.Get("/health", supermq.Health("participant", instanceID))
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func decodeStatusReq(_ context.Context, r *http.Request) (any, error) {
	return statusReq{
		wait: r.URL.Query().Get(waitKey),
	}, nil
}

// decodeSubmitModelReq accepts JSON and CBOR encoded models.
func decodeSubmitModelReq(_ context.Context, r *http.Request) (any, error) {
	var req submitModelReq

	ct := r.Header.Get("Content-Type")
	switch {
	case strings.Contains(ct, api.ContentType):
		if err := json.NewDecoder(r.Body).Decode(&req.Model); err != nil {
			return nil, errors.Join(err, apiutil.ErrValidation)
		}
	case strings.Contains(ct, fl.CBORContentType):
		if err := fl.NewCBORDecoder(r.Body).Decode(&req.Model); err != nil {
			return nil, errors.Join(err, apiutil.ErrValidation)
		}
	default:
		return nil, errors.Join(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	return req, nil
}

func encodeError(ctx context.Context, err error, w http.ResponseWriter) {
	switch {
	case errors.Is(err, participant.ErrNotSelected):
		api.EncodeErrorCode(ctx, err, http.StatusConflict, w)
	case errors.Is(err, context.DeadlineExceeded):
		api.EncodeErrorCode(ctx, err, http.StatusGatewayTimeout, w)
	default:
		api.EncodeError(ctx, err, w)
	}
}
