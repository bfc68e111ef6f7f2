package api_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/absmach/fedlearn/pkg/api"
	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc string
		err  error
		code int
	}{
		{desc: "validation", err: errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData), code: http.StatusBadRequest},
		{desc: "unsupported content type", err: errors.Join(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType), code: http.StatusUnsupportedMediaType},
		{desc: "not found", err: pkgerrors.ErrNotFound, code: http.StatusNotFound},
		{desc: "model mismatch", err: fmt.Errorf("round 3: %w", pkgerrors.ErrModelMismatch), code: http.StatusUnprocessableEntity},
		{desc: "stopped", err: pkgerrors.ErrStopped, code: http.StatusConflict},
		{desc: "unavailable", err: pkgerrors.ErrUnavailable, code: http.StatusServiceUnavailable},
		{desc: "unknown", err: errors.New("disk full"), code: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.code, api.StatusCode(tc.err))
		})
	}
}
