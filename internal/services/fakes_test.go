package services

import (
	"context"
	"sync"

	"lavishtravels/internal/domain"
)

// recordingMailer records every message and answers with a per-recipient result.
type recordingMailer struct {
	mu       sync.Mutex
	sent     []Message
	respond  func(ctx context.Context, msg Message) (*Receipt, error)
	panicMsg string
}

func acceptAll(ctx context.Context, msg Message) (*Receipt, error) {
	return &Receipt{StatusCode: 202}, nil
}

func (m *recordingMailer) Send(ctx context.Context, msg Message) (*Receipt, error) {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if m.respond == nil {
		return acceptAll(ctx, msg)
	}
	return m.respond(ctx, msg)
}

func (m *recordingMailer) messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}

func (m *recordingMailer) to(addr string) []Message {
	var out []Message
	for _, msg := range m.messages() {
		if msg.To == addr {
			out = append(out, msg)
		}
	}
	return out
}

// stubNotifier returns canned deliveries and counts calls.
type stubNotifier struct {
	mu            sync.Mutex
	support       Delivery
	confirmation  Delivery
	supportCalls  int
	confirmCalls  int
	lastInquiry   domain.Inquiry
	lastCorr      domain.Correlation
	panicOnNotify bool
}

func (n *stubNotifier) SendSupportNotice(ctx context.Context, inq domain.Inquiry, corr domain.Correlation) Delivery {
	n.mu.Lock()
	n.supportCalls++
	n.lastInquiry = inq
	n.lastCorr = corr
	n.mu.Unlock()
	if n.panicOnNotify {
		panic("template exploded")
	}
	return n.support
}

func (n *stubNotifier) SendUserConfirmation(ctx context.Context, inq domain.Inquiry, corr domain.Correlation) Delivery {
	n.mu.Lock()
	n.confirmCalls++
	n.mu.Unlock()
	return n.confirmation
}

func strPtr(s string) *string { return &s }
