package coinwatch

import (
	"github.com/raykavin/coinwatch/core"
	"github.com/raykavin/coinwatch/notification"
)

// initializeNotifications sets up notification systems like Telegram
func initializeNotifications(monitor *Monitor) error {
	if !monitor.settings.Telegram.Enabled {
		return nil
	}

	options := []notification.Option{
		notification.WithStatusReport(monitor.StatusReport),
	}
	if monitor.news != nil {
		options = append(options, notification.WithNewsSummary(func() string {
			return monitor.news.Summary(newsSummaryLimit)
		}))
	}

	telegram, err := notification.NewTelegram(monitor.orderController, monitor.settings, monitor.log, options...)
	if err != nil {
		return err
	}

	// Register telegram as notifier
	monitor.telegram = telegram
	monitor.notifier = telegram
	monitor.orderController.SetNotifier(telegram)
	monitor.SubscribeOrder(telegram)

	return nil
}

// SubscribeOrder subscribes the given subscribers to order updates for all pairs
func (m *Monitor) SubscribeOrder(subscriptions ...core.OrderSubscriber) {
	for _, pair := range m.settings.Pairs {
		for _, subscription := range subscriptions {
			m.orderFeed.Subscribe(pair, subscription.OnOrder, false)
		}
	}
}

// SubscribeCandle subscribes the given subscribers to candle updates for all pairs
func (m *Monitor) SubscribeCandle(subscriptions ...core.CandleSubscriber) {
	for _, pair := range m.settings.Pairs {
		for _, subscription := range subscriptions {
			m.dataFeed.Subscribe(pair, m.strategy.Timeframe(), subscription.OnCandle, false)
		}
	}
}
