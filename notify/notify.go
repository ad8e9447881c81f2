package notify

import (
	"context"
	"strconv"

	"fiveaside/events"
	"fiveaside/models"

	log "github.com/sirupsen/logrus"
)

// Sink receives human-readable notifications about betting activity.
type Sink interface {
	Notify(ctx context.Context, message string)
}

// LogSink writes notifications to the application log. It stands in for a
// push channel to the booking app.
type LogSink struct{}

func (LogSink) Notify(ctx context.Context, message string) {
	log.WithField("channel", "notify").Info(message)
}

// Register subscribes notification handlers to the event bus.
func Register(bus *events.Bus, sink Sink) {
	bus.Subscribe(events.EventTypeUserCreated, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.UserCreatedEvent)
		if !ok {
			return
		}
		sink.Notify(ctx, "Welcome "+e.Username+", your starting balance is "+models.FormatNaira(e.InitialBalance))
	})

	bus.Subscribe(events.EventTypeWagerPlaced, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.WagerPlacedEvent)
		if !ok {
			return
		}
		sink.Notify(ctx, "Wager of "+models.FormatNaira(e.Stake)+" on "+string(e.Outcome)+
			" accepted for match "+e.MatchID+", potential payout "+models.FormatNaira(e.PotentialPayout))
	})

	bus.Subscribe(events.EventTypeMatchSettled, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.MatchSettledEvent)
		if !ok {
			return
		}
		if e.WinnerCount == 0 && e.LoserCount == 0 {
			return
		}
		sink.Notify(ctx, "Match "+e.MatchID+" settled on "+string(e.Winner)+": paid out "+
			models.FormatNaira(e.TotalPaidOut)+" across "+plural(e.WinnerCount, "winner")+
			", fees "+models.FormatNaira(e.FeeCollected))
	})
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
