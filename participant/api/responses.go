package api

import (
	"net/http"
	"time"

	"github.com/absmach/fedlearn/participant"
	"github.com/absmach/supermq"
)

var (
	_ supermq.Response = (*statusRes)(nil)
	_ supermq.Response = (*globalModelRes)(nil)
	_ supermq.Response = (*submitModelRes)(nil)
	_ supermq.Response = (*stopRes)(nil)
)

type statusRes struct {
	participant.Status
}

func (res statusRes) Code() int {
	return http.StatusOK
}

func (res statusRes) Headers() map[string]string {
	return map[string]string{}
}

func (res statusRes) Empty() bool {
	return false
}

type globalModelRes struct {
	Model any `json:"model"`
}

func (res globalModelRes) Code() int {
	return http.StatusOK
}

func (res globalModelRes) Headers() map[string]string {
	return map[string]string{}
}

func (res globalModelRes) Empty() bool {
	return false
}

type submitModelRes struct{}

func (res submitModelRes) Code() int {
	return http.StatusAccepted
}

func (res submitModelRes) Headers() map[string]string {
	return map[string]string{}
}

func (res submitModelRes) Empty() bool {
	return true
}

// stopRes leaves out the session since it may carry key material.
type stopRes struct {
	State   participant.State `json:"state"`
	Round   uint64            `json:"round"`
	SavedAt time.Time         `json:"saved_at"`
}

func (res stopRes) Code() int {
	return http.StatusOK
}

func (res stopRes) Headers() map[string]string {
	return map[string]string{}
}

func (res stopRes) Empty() bool {
	return false
}
