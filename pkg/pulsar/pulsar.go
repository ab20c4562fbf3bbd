package pulsar

import (
	"context"
	"time"
)

// Pulsar generates pulses at a fixed period until its context is done.
// We can use it in the following way:
//
//	p := pulsar.NewPulsar(1, time.Hour) // pulse every hour
//	for pulse := range p.Pulsate(ctx) {
//		fmt.Println("received a pulse", pulse)
//	}
type Pulsar struct {
	Period time.Duration
}

// NewPulsar creates a pulsar with a period of period*timeUnit.
func NewPulsar(period int, timeUnit time.Duration) *Pulsar {
	return &Pulsar{
		Period: time.Duration(period) * timeUnit,
	}
}

// Pulsate starts pulsing. The returned channel is closed once ctx is done.
// Pulses are dropped while the consumer is still busy with the previous one.
func (p *Pulsar) Pulsate(ctx context.Context) <-chan time.Time {
	pulsate := make(chan time.Time)

	go func() {
		defer close(pulsate)

		ticker := time.NewTicker(p.Period)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				select {
				case pulsate <- t:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return pulsate
}
