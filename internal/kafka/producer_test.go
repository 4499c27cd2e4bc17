package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestProducer_CheckConnection(t *testing.T) {
	t.Run("no brokers", func(t *testing.T) {
		p := NewProducer(nil, nil)
		defer p.Close()

		err := p.CheckConnection(context.Background())
		assert.EqualError(t, err, "no kafka brokers configured")
	})

	t.Run("unreachable broker", func(t *testing.T) {
		p := NewProducer([]string{"127.0.0.1:1"}, zap.NewNop())
		defer p.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		err := p.CheckConnection(ctx)
		assert.ErrorContains(t, err, "failed to connect to Kafka")
	})
}
