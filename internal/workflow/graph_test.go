package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/service-desk/internal/domain"
)

func TestGraphForKnownTypes(t *testing.T) {
	for _, tt := range []struct {
		ticketType domain.TicketType
		initial    domain.Node
	}{
		{domain.TicketTypeInquiry, domain.NodeDraft},
		{domain.TicketTypeRMA, domain.NodeSubmitted},
		{domain.TicketTypeSVC, domain.NodeGeReview},
	} {
		g, ok := GraphFor(tt.ticketType)
		require.True(t, ok, "graph missing for %s", tt.ticketType)
		assert.Equal(t, tt.initial, g.Initial())
	}

	_, ok := GraphFor(domain.TicketType("bogus"))
	assert.False(t, ok)
}

func TestRmaHappyPath(t *testing.T) {
	g, _ := GraphFor(domain.TicketTypeRMA)
	path := []domain.Node{
		domain.NodeSubmitted,
		domain.NodeMsReview,
		domain.NodeOpReceiving,
		domain.NodeOpDiagnosing,
		domain.NodeOpRepairing,
		domain.NodeOpQA,
		domain.NodeMsClosing,
		domain.NodeClosed,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, g.IsValidTransition(path[i], path[i+1]),
			"%s -> %s should be allowed", path[i], path[i+1])
	}
	assert.True(t, g.IsTerminal(domain.NodeClosed))
}

func TestSvcHappyPath(t *testing.T) {
	g, _ := GraphFor(domain.TicketTypeSVC)
	path := []domain.Node{
		domain.NodeGeReview,
		domain.NodeDlReceiving,
		domain.NodeDlRepairing,
		domain.NodeDlQA,
		domain.NodeGeClosing,
		domain.NodeClosed,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, g.IsValidTransition(path[i], path[i+1]))
	}
}

func TestNoSkippingStages(t *testing.T) {
	g, _ := GraphFor(domain.TicketTypeRMA)
	assert.False(t, g.IsValidTransition(domain.NodeSubmitted, domain.NodeOpRepairing))
	assert.False(t, g.IsValidTransition(domain.NodeMsReview, domain.NodeClosed))
	// No edges run backwards.
	assert.False(t, g.IsValidTransition(domain.NodeOpQA, domain.NodeOpDiagnosing))
}

func TestEveryNonTerminalCanCancel(t *testing.T) {
	for _, ticketType := range []domain.TicketType{domain.TicketTypeInquiry, domain.TicketTypeRMA, domain.TicketTypeSVC} {
		g, _ := GraphFor(ticketType)
		for _, node := range []domain.Node{g.Initial()} {
			assert.True(t, g.IsValidTransition(node, domain.NodeCancelled),
				"%s/%s should cancel", ticketType, node)
		}
	}

	g, _ := GraphFor(domain.TicketTypeRMA)
	for _, node := range []domain.Node{
		domain.NodeSubmitted, domain.NodeMsReview, domain.NodeOpReceiving,
		domain.NodeOpDiagnosing, domain.NodeOpRepairing, domain.NodeOpQA, domain.NodeMsClosing,
	} {
		assert.True(t, g.IsValidTransition(node, domain.NodeCancelled))
	}
}

func TestTerminalNodesHaveNoCancelEdge(t *testing.T) {
	g, _ := GraphFor(domain.TicketTypeRMA)
	assert.False(t, g.IsValidTransition(domain.NodeClosed, domain.NodeCancelled))
	assert.Empty(t, g.Transitions(domain.NodeClosed))

	inquiry, _ := GraphFor(domain.TicketTypeInquiry)
	assert.False(t, inquiry.IsValidTransition(domain.NodeCancelled, domain.NodeDraft))
	assert.False(t, inquiry.IsValidTransition(domain.NodeConverted, domain.NodeCancelled))
}

func TestResolvedInquiryOnlyAutoCloses(t *testing.T) {
	g, _ := GraphFor(domain.TicketTypeInquiry)
	assert.True(t, g.IsTerminal(domain.NodeResolved))
	assert.Equal(t, []domain.Node{domain.NodeAutoClosed}, g.Transitions(domain.NodeResolved))
}

func TestInquiryConversionEdges(t *testing.T) {
	g, _ := GraphFor(domain.TicketTypeInquiry)
	for _, from := range []domain.Node{domain.NodeDraft, domain.NodeInProgress, domain.NodeWaitingCustomer} {
		assert.True(t, g.IsValidTransition(from, domain.NodeConverted))
	}
	assert.False(t, g.IsValidTransition(domain.NodeResolved, domain.NodeConverted))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, domain.TicketStatusOpen, StatusFor(domain.NodeDraft))
	assert.Equal(t, domain.TicketStatusInProgress, StatusFor(domain.NodeOpRepairing))
	assert.Equal(t, domain.TicketStatusWaiting, StatusFor(domain.NodeWaitingCustomer))
	assert.Equal(t, domain.TicketStatusResolved, StatusFor(domain.NodeResolved))
	assert.Equal(t, domain.TicketStatusClosed, StatusFor(domain.NodeAutoClosed))
	assert.Equal(t, domain.TicketStatusCancelled, StatusFor(domain.NodeCancelled))
	assert.Equal(t, domain.TicketStatusOpen, StatusFor(domain.Node("mystery")))
}
