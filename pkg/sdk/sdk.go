package sdk

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/absmach/fedlearn/pkg/fl"
)

const CTJSON string = "application/json"

// Error is returned for responses with an unexpected status code.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected response code: %d", e.StatusCode)
	}

	return fmt.Sprintf("unexpected response code: %d: %s", e.StatusCode, e.Message)
}

type SDK interface {
	// Status returns the participant status. A non empty wait blocks until
	// the participant is "selected" (or done) or reaches the "next_round".
	//
	// example:
	//  status, _ := sdk.Status("selected")
	//  fmt.Println(status.State)
	Status(wait string) (Status, error)

	// GlobalModel returns the latest global model fetched by the participant.
	//
	// example:
	//  model, _ := sdk.GlobalModel()
	//  fmt.Println(model.Values)
	GlobalModel() (fl.Model, error)

	// SubmitModel hands a locally trained model to a participant running in
	// async mode.
	//
	// example:
	//  model := fl.Model{
	//    DataType: fl.F32,
	//    Values:   []float64{0.1, 0.2},
	//  }
	//  _ = sdk.SubmitModel(model)
	SubmitModel(model fl.Model) error

	// Stop stops the participant and returns the saved snapshot summary.
	//
	// example:
	//  res, _ := sdk.Stop()
	//  fmt.Println(res.State, res.Round)
	Stop() (StopResult, error)

	// Health returns the participant's health information.
	//
	// example:
	//  health, _ := sdk.Health()
	//  fmt.Println(health.Status)
	Health() (HealthInfo, error)
}

type partSDK struct {
	participantURL string
	client         *http.Client
}

type Config struct {
	ParticipantURL  string
	TLSVerification bool
}

func NewSDK(cfg Config) SDK {
	return &partSDK{
		participantURL: strings.TrimSuffix(cfg.ParticipantURL, "/"),
		client: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: !cfg.TLSVerification,
				},
			},
		},
	}
}

func (sdk *partSDK) processRequest(method, reqURL string, data []byte, expectedRespCode int) ([]byte, error) {
	req, err := http.NewRequest(method, reqURL, bytes.NewReader(data))
	if err != nil {
		return []byte{}, err
	}

	req.Header.Add("Content-Type", CTJSON)

	resp, err := sdk.client.Do(req)
	if err != nil {
		return []byte{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return []byte{}, err
	}

	if resp.StatusCode != expectedRespCode {
		return []byte{}, decodeError(resp.StatusCode, body)
	}

	return body, nil
}

func decodeError(code int, body []byte) error {
	var res struct {
		Err string `json:"error"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return &Error{StatusCode: code}
	}

	return &Error{StatusCode: code, Message: res.Err}
}

// IsStatus reports whether err is an Error carrying code.
func IsStatus(err error, code int) bool {
	var e *Error

	return errors.As(err, &e) && e.StatusCode == code
}
