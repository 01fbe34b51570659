package natsstan

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	stan "github.com/nats-io/stan.go"

	"github.com/example/order-service/internal/domain"
)

// Publisher публикует события заказов в NATS Streaming.
type Publisher struct {
	Subject string
	sc      stan.Conn
}

// Connect устанавливает соединение и закрывает его при отмене контекста.
func Connect(ctx context.Context, clusterID, clientID, url, subject string) (*Publisher, error) {
	if clientID == "" {
		clientID = fmt.Sprintf("orders-svc-%d", time.Now().UnixNano())
	}
	sc, err := stan.Connect(clusterID, clientID, stan.NatsURL(url))
	if err != nil {
		return nil, err
	}
	go func() {
		<-ctx.Done()
		sc.Close()
	}()
	return &Publisher{Subject: subject, sc: sc}, nil
}

func (p *Publisher) Publish(_ context.Context, ev domain.OrderEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.sc.Publish(p.Subject, b)
}

var _ domain.OrderEventPublisher = (*Publisher)(nil)
