package ws_session

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/moviematch/core/internal/model"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type HubUnitSuite struct {
	suite.Suite
}

func newTestHub() *Hub {
	return New(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func newTestClient(id model.SessionID, buffer int) *Client {
	return &Client{
		Send:      make(chan []byte, buffer),
		SessionID: id,
	}
}

func (s *HubUnitSuite) TestPublishDelivers(t provider.T) {
	t.Parallel()

	id := model.SessionID("AB12CD34")
	hub := newTestHub()
	client := newTestClient(id, 1)
	hub.RegisterClient(client)

	hub.Publish(id, model.TopicMatches, model.MovieID(101))

	raw := <-client.Send
	var event Event
	assert.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, model.TopicMatches, event.Topic)
	assert.EqualValues(t, 101, event.Payload)
}

func (s *HubUnitSuite) TestPublishDropsSlowClient(t provider.T) {
	t.Parallel()

	id := model.SessionID("AB12CD34")
	hub := newTestHub()
	slow := newTestClient(id, 1)
	hub.RegisterClient(slow)

	// The first event fills the buffer, the second finds it full.
	hub.Publish(id, model.TopicUsers, []string{"Alice"})
	hub.Publish(id, model.TopicUsers, []string{"Alice", "Bob"})

	_, open := <-slow.Send
	assert.True(t, open)
	_, open = <-slow.Send
	assert.False(t, open, "dropped client channel must be closed")

	// The dropped client is gone: further publishes find nobody.
	hub.Publish(id, model.TopicSessionStatus, "voting")
}

func (s *HubUnitSuite) TestConcurrentPublishes(t provider.T) {
	t.Parallel()

	id := model.SessionID("AB12CD34")
	hub := newTestHub()
	for range 8 {
		hub.RegisterClient(newTestClient(id, 1))
	}

	// Publishers racing on the same session must agree on who drops a
	// slow client, so no channel is closed twice and the client set is
	// never mutated mid-iteration.
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				hub.Publish(id, model.TopicUsers, []string{"Alice"})
			}
		}()
	}
	wg.Wait()

	// The hub stays usable afterwards.
	survivor := newTestClient(id, 1)
	hub.RegisterClient(survivor)
	hub.Publish(id, model.TopicSessionStatus, "voting")
	assert.NotEmpty(t, <-survivor.Send)
}

func TestHubUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(HubUnitSuite))
}
