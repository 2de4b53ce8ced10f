package order

import (
	"testing"

	"github.com/raykavin/coinwatch/core"
	"github.com/stretchr/testify/require"
)

func TestFeed_NewOrderFeed(t *testing.T) {
	feed := NewOrderFeed()
	require.NotEmpty(t, feed)
}

func TestFeed_Subscribe(t *testing.T) {
	feed, pair := NewOrderFeed(), "SHELLUSDT"
	called := make(chan bool, 1)

	feed.Subscribe(pair, func(_ core.Order) {
		called <- true
	}, false)

	feed.Start()
	feed.Publish(core.Order{Pair: pair}, false)
	require.True(t, <-called)
}

func TestFeed_PublishWithoutSubscriber(t *testing.T) {
	feed := NewOrderFeed()

	// a pair without a feed is dropped silently
	feed.Publish(core.Order{Pair: "BTCUSDT"}, false)
}
