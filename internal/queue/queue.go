// internal/queue/queue.go
package queue

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/wishsend/wishsend-backend/internal/logger"
)

// Run job types.
const (
	RunTypeCampaign = "campaign"
	RunTypeFollowUp = "follow_up"
)

// RunJob asks the worker to execute one whole send run. One job per run, not
// per message: the dispatcher owns the sequential per-contact loop and its
// pacing, so fanning contacts out across consumers would break the ordering
// and throttle guarantees.
type RunJob struct {
	RunType            string `json:"run_type"`
	CampaignID         string `json:"campaign_id,omitempty"`
	FollowUpCampaignID string `json:"follow_up_campaign_id,omitempty"`
	// UserID is the owning tenant, carried for worker-side log context.
	UserID string `json:"user_id,omitempty"`
}

// Publisher enqueues run jobs.
type Publisher interface {
	PublishRun(job RunJob) error
}

// AMQPQueue is the RabbitMQ-backed run queue.
type AMQPQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	name string
	log  *logger.Logger
}

// Dial connects to RabbitMQ and declares the durable run queue.
func Dial(url, queueName string, log *logger.Logger) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &AMQPQueue{conn: conn, ch: ch, name: queueName, log: log.WithComponent("queue")}, nil
}

func (q *AMQPQueue) PublishRun(job RunJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.ch.Publish(
		"",
		q.name,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Consume processes run jobs until the channel closes. A handler error
// requeues the job up to maxRetries times; the dispatcher skips contacts
// with terminal logs, so a requeued run resumes instead of double-sending.
func (q *AMQPQueue) Consume(handler func(RunJob) error) error {
	const maxRetries = 3

	msgs, err := q.ch.Consume(
		q.name,
		"",
		false, // manual ack for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for d := range msgs {
		var job RunJob
		if err := json.Unmarshal(d.Body, &job); err != nil {
			q.log.Warn().Err(err).Msg("invalid job payload, dropping")
			d.Ack(false)
			continue
		}

		if err := handler(job); err != nil {
			retryCount := 0
			if v, ok := d.Headers["x-retry-count"].(int32); ok {
				retryCount = int(v)
			}
			if retryCount < maxRetries {
				q.log.Warn().Err(err).Int("retry", retryCount+1).Msg("job failed, requeueing")
				q.republish(d.Body, retryCount+1)
			} else {
				q.log.Error().Err(err).Msg("job permanently failed")
			}
		}
		d.Ack(false)
	}
	return nil
}

func (q *AMQPQueue) republish(body []byte, retryCount int) {
	err := q.ch.Publish("", q.name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers:      amqp.Table{"x-retry-count": int32(retryCount)},
		Body:         body,
	})
	if err != nil {
		q.log.Error().Err(err).Msg("failed to requeue job")
	}
}

func (q *AMQPQueue) Close() {
	q.ch.Close()
	q.conn.Close()
}

var _ Publisher = (*AMQPQueue)(nil)
