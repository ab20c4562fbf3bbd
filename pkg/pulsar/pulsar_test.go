package pulsar_test

import (
	"context"
	"testing"
	"time"

	"github.com/kubelab/log-aggregator/pkg/pulsar"
	"github.com/stretchr/testify/assert"
)

func TestPulsateStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := pulsar.NewPulsar(5, time.Millisecond)
	assert.Equal(t, 5*time.Millisecond, p.Period)

	pulses := p.Pulsate(ctx)

	for i := 0; i < 3; i++ {
		select {
		case <-pulses:
		case <-time.After(time.Second):
			t.Fatalf("Expected pulse %d within a second", i)
		}
	}

	cancel()

	// drain until closed
	deadline := time.After(time.Second)

	for {
		select {
		case _, ok := <-pulses:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("Expected pulse channel to be closed after cancel")
		}
	}
}
