package api

import (
	"context"
	"errors"

	"github.com/absmach/fedlearn/participant"
	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/go-kit/kit/endpoint"
)

func statusEndpoint(svc participant.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(statusReq)
		if !ok {
			return statusRes{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return statusRes{}, errors.Join(apiutil.ErrValidation, err)
		}

		var err error
		switch req.wait {
		case waitSelected:
			_, err = svc.WaitUntilSelectedOrDone(ctx)
		case waitNextRound:
			_, err = svc.WaitUntilNextRound(ctx)
		}
		if err != nil {
			return statusRes{}, err
		}

		st, err := svc.Status(ctx)
		if err != nil {
			return statusRes{}, err
		}

		return statusRes{Status: st}, nil
	}
}

func globalModelEndpoint(svc participant.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		model, err := svc.GlobalModel(ctx)
		if err != nil {
			return globalModelRes{}, err
		}

		return globalModelRes{Model: model}, nil
	}
}

func submitModelEndpoint(svc participant.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(submitModelReq)
		if !ok {
			return submitModelRes{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return submitModelRes{}, errors.Join(apiutil.ErrValidation, err)
		}

		if err := svc.SubmitLocalModel(ctx, req.Model); err != nil {
			return submitModelRes{}, err
		}

		return submitModelRes{}, nil
	}
}

func stopEndpoint(svc participant.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		snap, err := svc.Stop(ctx)
		if err != nil {
			return stopRes{}, err
		}

		return stopRes{
			State:   snap.State,
			Round:   snap.Round,
			SavedAt: snap.SavedAt,
		}, nil
	}
}
