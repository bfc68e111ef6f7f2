package mqtt_test

import (
	"testing"

	"github.com/absmach/fedlearn/pkg/mqtt"
	"github.com/stretchr/testify/assert"
)

func TestTopics(t *testing.T) {
	t.Parallel()

	topics := mqtt.NewTopics("domain", "channel")

	cases := []struct {
		desc  string
		topic string
		want  string
	}{
		{desc: "status", topic: topics.Status(), want: "m/domain/c/channel/fl/status"},
		{desc: "model", topic: topics.Model(), want: "m/domain/c/channel/fl/model"},
		{desc: "update", topic: topics.Update("p1"), want: "m/domain/c/channel/fl/updates/p1"},
		{desc: "alive", topic: topics.Alive("p1"), want: "m/domain/c/channel/fl/participants/p1/alive"},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.topic)
		})
	}
}
