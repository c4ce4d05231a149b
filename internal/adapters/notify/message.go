// Package notify pushes finished forecast jobs to websocket subscribers and
// to an AMQP exchange.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/okian/leaguecast/internal/domain/model"
	"github.com/okian/leaguecast/internal/domain/types"
)

// Message is the envelope sent to every subscriber.
type Message struct {
	Type      string            `json:"type"`
	Timestamp int64             `json:"timestamp"`
	Job       types.JobResponse `json:"job"`
}

const messageTypeJob = "job"

func newMessage(res model.JobResult, now time.Time) Message { //nolint:gocritic // hugeParam
	return Message{
		Type:      messageTypeJob,
		Timestamp: now.Unix(),
		Job:       types.NewJobResponse(res),
	}
}

// Notifier receives finished jobs.
type Notifier interface {
	Notify(ctx context.Context, res model.JobResult) error
}

// Multi fans a result out to every notifier and joins their errors.
type Multi []Notifier

// Notify calls every notifier even when an earlier one fails.
func (m Multi) Notify(ctx context.Context, res model.JobResult) error { //nolint:gocritic // hugeParam
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
