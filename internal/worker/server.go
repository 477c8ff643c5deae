package worker

import (
	"context"
	"log"

	"github.com/hibiken/asynq"

	"ledger-service/internal/consumers"
)

type Worker struct {
	Processor *consumers.EventProcessor
}

func NewWorker(processor *consumers.EventProcessor) *Worker {
	return &Worker{Processor: processor}
}

func (w *Worker) HandleLedgerEvent(ctx context.Context, t *asynq.Task) error {
	return w.Processor.ProcessLedgerEvent(t.Payload())
}

func StartWorker(redisOpt asynq.RedisClientOpt, processor *consumers.EventProcessor) {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	worker := NewWorker(processor)
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeLedgerEvent, worker.HandleLedgerEvent)

	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run worker: %v", err)
	}
}
