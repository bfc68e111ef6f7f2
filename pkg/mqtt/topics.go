package mqtt

import "fmt"

const (
	statusTopicTemplate = "m/%s/c/%s/fl/status"
	modelTopicTemplate  = "m/%s/c/%s/fl/model"
	updateTopicTemplate = "m/%s/c/%s/fl/updates/%s"
	aliveTopicTemplate  = "m/%s/c/%s/fl/participants/%s/alive"
)

// Topics builds the federated learning topics of one channel. The
// coordinator publishes status and model as retained messages.
type Topics struct {
	domainID  string
	channelID string
}

func NewTopics(domainID, channelID string) Topics {
	return Topics{domainID: domainID, channelID: channelID}
}

func (t Topics) Status() string {
	return fmt.Sprintf(statusTopicTemplate, t.domainID, t.channelID)
}

func (t Topics) Model() string {
	return fmt.Sprintf(modelTopicTemplate, t.domainID, t.channelID)
}

func (t Topics) Update(participantID string) string {
	return fmt.Sprintf(updateTopicTemplate, t.domainID, t.channelID, participantID)
}

func (t Topics) Alive(participantID string) string {
	return fmt.Sprintf(aliveTopicTemplate, t.domainID, t.channelID, participantID)
}
