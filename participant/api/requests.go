package api

import (
	"errors"

	"github.com/absmach/fedlearn/pkg/fl"
)

const (
	waitSelected  = "selected"
	waitNextRound = "next_round"
)

var errInvalidWait = errors.New("wait must be one of selected or next_round")

type statusReq struct {
	wait string
}

func (req statusReq) validate() error {
	switch req.wait {
	case "", waitSelected, waitNextRound:
		return nil
	default:
		return errInvalidWait
	}
}

type submitModelReq struct {
	fl.Model
}

func (req submitModelReq) validate() error {
	return req.Model.Validate()
}
