package service

import (
	"context"

	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/pkg/queue"
)

// queuePublisher адаптирует pkg/queue к интерфейсу TaskPublisher
type queuePublisher struct {
	q queue.Queue
}

// NewQueuePublisher оборачивает очередь Redis в TaskPublisher
func NewQueuePublisher(q queue.Queue) TaskPublisher {
	return &queuePublisher{q: q}
}

func (p *queuePublisher) Publish(ctx context.Context, task *Task) error {
	return p.q.Publish(ctx, &queue.Task{
		ID:         task.ID,
		Type:       task.Type,
		Data:       task.Data,
		ExecuteAt:  task.ExecuteAt,
		MaxRetries: task.MaxRetries,
		Attempts:   task.Attempts,
	})
}
