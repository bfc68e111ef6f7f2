package sdk

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/absmach/fedlearn/pkg/fl"
)

const (
	statusEndpoint = "/status"
	modelEndpoint  = "/model"
	stopEndpoint   = "/stop"
	healthEndpoint = "/health"
)

type Status struct {
	State        string  `json:"state"`
	Round        uint64  `json:"round"`
	Worker       string  `json:"worker"`
	Mode         string  `json:"mode"`
	GlobalModel  bool    `json:"global_model"`
	PendingRound *uint64 `json:"pending_round,omitempty"`
}

type StopResult struct {
	State   string    `json:"state"`
	Round   uint64    `json:"round"`
	SavedAt time.Time `json:"saved_at"`
}

type HealthInfo struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Commit      string `json:"commit"`
	Description string `json:"description"`
	BuildTime   string `json:"build_time"`
	InstanceID  string `json:"instance_id"`
}

func (sdk *partSDK) Status(wait string) (Status, error) {
	reqURL := sdk.participantURL + statusEndpoint
	if wait != "" {
		reqURL += "?" + url.Values{"wait": []string{wait}}.Encode()
	}

	body, err := sdk.processRequest(http.MethodGet, reqURL, nil, http.StatusOK)
	if err != nil {
		return Status{}, err
	}

	var s Status
	if err := json.Unmarshal(body, &s); err != nil {
		return Status{}, err
	}

	return s, nil
}

func (sdk *partSDK) GlobalModel() (fl.Model, error) {
	body, err := sdk.processRequest(http.MethodGet, sdk.participantURL+modelEndpoint, nil, http.StatusOK)
	if err != nil {
		return fl.Model{}, err
	}

	var res struct {
		Model fl.Model `json:"model"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return fl.Model{}, err
	}

	return res.Model, nil
}

func (sdk *partSDK) SubmitModel(model fl.Model) error {
	data, err := json.Marshal(model)
	if err != nil {
		return err
	}

	_, err = sdk.processRequest(http.MethodPost, sdk.participantURL+modelEndpoint, data, http.StatusAccepted)

	return err
}

func (sdk *partSDK) Stop() (StopResult, error) {
	body, err := sdk.processRequest(http.MethodPost, sdk.participantURL+stopEndpoint, nil, http.StatusOK)
	if err != nil {
		return StopResult{}, err
	}

	var res StopResult
	if err := json.Unmarshal(body, &res); err != nil {
		return StopResult{}, err
	}

	return res, nil
}

func (sdk *partSDK) Health() (HealthInfo, error) {
	body, err := sdk.processRequest(http.MethodGet, sdk.participantURL+healthEndpoint, nil, http.StatusOK)
	if err != nil {
		return HealthInfo{}, err
	}

	var h HealthInfo
	if err := json.Unmarshal(body, &h); err != nil {
		return HealthInfo{}, err
	}

	return h, nil
}
