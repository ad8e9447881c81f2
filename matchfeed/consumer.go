package matchfeed

import (
	"context"
	"encoding/json"
	"time"

	"fiveaside/metrics"
	"fiveaside/models"
	"fiveaside/service"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// MatchEvent is the wire format of a match lifecycle event on the feed topic.
type MatchEvent struct {
	MatchID   string     `json:"match_id"`
	TeamA     string     `json:"team_a"`
	TeamB     string     `json:"team_b"`
	Venue     string     `json:"venue,omitempty"`
	Status    string     `json:"status"`
	Winner    string     `json:"winner,omitempty"`
	KickoffAt *time.Time `json:"kickoff_at,omitempty"`
}

// MessageReader is the subset of kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// SettlementLocker is a best-effort advisory lock around settlement attempts.
type SettlementLocker interface {
	TryLock(ctx context.Context, matchID string) bool
}

// NewReader creates a kafka reader for the match feed topic.
func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

// Consumer applies match feed events to the local read-model and triggers
// settlement when a match completes.
type Consumer struct {
	reader     MessageReader
	matches    service.MatchService
	settlement service.SettlementService
	lock       SettlementLocker // optional
}

// NewConsumer creates a feed consumer. lock may be nil.
func NewConsumer(reader MessageReader, matches service.MatchService, settlement service.SettlementService, lock SettlementLocker) *Consumer {
	return &Consumer{
		reader:     reader,
		matches:    matches,
		settlement: settlement,
		lock:       lock,
	}
}

// Run consumes the feed until the context is cancelled. Messages are
// committed only after processing so delivery is at least once; settlement
// itself is idempotent, so redelivery is safe.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.WithError(err).Warn("Match feed fetch failed")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if err := c.handle(ctx, msg.Value); err != nil {
			metrics.FeedEvents.WithLabelValues("error").Inc()
			log.WithError(err).WithField("offset", msg.Offset).Error("Match feed event failed")
			// Commit anyway: the event stays in the match read-model and a
			// failed settlement can be retried from the next completed event
			// or operator action. Blocking the partition would stall every
			// other match.
		} else {
			metrics.FeedEvents.WithLabelValues("ok").Inc()
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.WithError(err).Warn("Match feed commit failed")
		}
	}
}

func (c *Consumer) handle(ctx context.Context, value []byte) error {
	var event MatchEvent
	if err := json.Unmarshal(value, &event); err != nil {
		metrics.FeedEvents.WithLabelValues("invalid").Inc()
		log.WithError(err).Warn("Discarding malformed match feed event")
		return nil
	}

	if event.MatchID == "" {
		metrics.FeedEvents.WithLabelValues("invalid").Inc()
		log.Warn("Discarding match feed event without match_id")
		return nil
	}

	status := models.MatchStatus(event.Status)
	if !status.Valid() {
		metrics.FeedEvents.WithLabelValues("invalid").Inc()
		log.WithFields(log.Fields{
			"matchID": event.MatchID,
			"status":  event.Status,
		}).Warn("Discarding match feed event with unknown status")
		return nil
	}

	match := &models.Match{
		ID:        event.MatchID,
		TeamA:     event.TeamA,
		TeamB:     event.TeamB,
		Venue:     event.Venue,
		Status:    status,
		KickoffAt: event.KickoffAt,
	}
	if event.Winner != "" {
		winner, err := models.ParseOutcome(event.Winner)
		if err != nil {
			metrics.SettlementPreconditionFailures.Inc()
			log.WithFields(log.Fields{
				"matchID": event.MatchID,
				"winner":  event.Winner,
			}).Error("Match feed declared an unknown winner, refusing to settle")
			return err
		}
		match.WinnerOutcome = &winner
	}

	if err := c.matches.RecordMatchUpdate(ctx, match); err != nil {
		return err
	}

	if status != models.MatchStatusCompleted {
		return nil
	}

	if match.WinnerOutcome == nil {
		metrics.SettlementPreconditionFailures.Inc()
		log.WithField("matchID", event.MatchID).Error("Completed match has no winner, refusing to settle")
		return nil
	}

	if c.lock != nil && !c.lock.TryLock(ctx, event.MatchID) {
		log.WithField("matchID", event.MatchID).Info("Settlement already in progress elsewhere")
		return nil
	}

	if _, err := c.settlement.Settle(ctx, event.MatchID, *match.WinnerOutcome); err != nil {
		return err
	}

	return nil
}
