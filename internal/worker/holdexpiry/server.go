package holdexpiry

import (
	"github.com/hibiken/asynq"
)

// ServerOptions настройки обработчика очереди
type ServerOptions struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
	Queue         string
	Logger        asynq.Logger
}

// RedisOpt параметры подключения asynq к Redis
func (o ServerOptions) RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     o.RedisAddr,
		Password: o.RedisPassword,
		DB:       o.RedisDB,
	}
}

// NewServer создает сервер asynq, обрабатывающий очередь Queue
func NewServer(o ServerOptions) *asynq.Server {
	queue := o.Queue
	if queue == "" {
		queue = "default"
	}
	concurrency := o.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	return asynq.NewServer(o.RedisOpt(), asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
		Logger:      o.Logger,
	})
}
