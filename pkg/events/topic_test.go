package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/statsbridge/pkg/models"
)

func TestTopic_DeliversInOrder(t *testing.T) {
	topic := NewTopic[int]("numbers", nil)

	var got []string

	a := topic.Subscribe(func(v int) { got = append(got, "a") })
	topic.Subscribe(func(v int) { got = append(got, "b") })

	topic.Publish(1)
	assert.Equal(t, []string{"a", "b"}, got)

	a.Close()
	a.Close()

	got = nil
	topic.Publish(2)
	assert.Equal(t, []string{"b"}, got)
	assert.Equal(t, 1, topic.Len())
}

func TestTopic_PanickingSubscriberIsContained(t *testing.T) {
	topic := NewTopic[string]("words", nil)

	var delivered int

	topic.Subscribe(func(string) { panic("bad consumer") })
	topic.Subscribe(func(string) { delivered++ })

	require.NotPanics(t, func() { topic.Publish("x") })
	assert.Equal(t, 1, delivered)
}

func TestTopic_UnsubscribeDuringPublish(t *testing.T) {
	topic := NewTopic[int]("numbers", nil)

	var (
		self  *Subscription
		calls int
	)

	self = topic.Subscribe(func(int) {
		calls++
		self.Close()
	})

	topic.Publish(1)
	topic.Publish(2)
	assert.Equal(t, 1, calls)
	assert.Zero(t, topic.Len())
}

func TestHub(t *testing.T) {
	hub := NewHub(nil)

	var (
		snaps   []models.Snapshot
		changes []models.StatusChange
	)

	subs := Group{
		hub.OnSnapshot(func(s models.Snapshot) { snaps = append(snaps, s) }),
		hub.OnStatus(func(c models.StatusChange) { changes = append(changes, c) }),
	}

	hub.PublishSnapshot(models.Snapshot{Tick: 3, Resources: map[string]models.ResourceSample{}})
	hub.PublishStatus(models.StatusChange{From: models.StatusUnknown, To: models.StatusOnline})

	require.Len(t, snaps, 1)
	assert.Equal(t, int64(3), snaps[0].Tick)
	require.Len(t, changes, 1)
	assert.Equal(t, models.StatusOnline, changes[0].To)

	subs.Close()

	s, c := hub.Subscribers()
	assert.Zero(t, s)
	assert.Zero(t, c)

	hub.PublishSnapshot(models.Snapshot{})
	assert.Len(t, snaps, 1)

	var nilSub *Subscription
	assert.NotPanics(t, nilSub.Close)
}
