package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/repository"
)

// TicketNumberGenerator allocates human-readable ticket numbers backed by a
// per-(type, channel, month) persistent sequence.
type TicketNumberGenerator struct {
	sequences repository.SequenceRepository
}

func NewTicketNumberGenerator(sequences repository.SequenceRepository) *TicketNumberGenerator {
	return &TicketNumberGenerator{sequences: sequences}
}

// Next returns the next number for the given ticket type and channel at the
// given time. Formats:
//
//	inquiry  K2509-0001
//	rma      RMA-D-2509-0001
//	svc      SVC-D-2509-0001
//
// The channel code is C for customer-direct and D for dealer-originated
// tickets; svc tickets are always dealer-originated.
func (g *TicketNumberGenerator) Next(ctx context.Context, ticketType domain.TicketType, channelCode string, now time.Time) (string, error) {
	channel := strings.ToUpper(channelCode)
	if channel != "C" {
		channel = "D"
	}
	if ticketType == domain.TicketTypeSVC {
		channel = "D"
	}

	yearMonth := now.Format("0601")
	seq, err := g.sequences.Next(ctx, ticketType, channel, yearMonth)
	if err != nil {
		return "", err
	}

	suffix := formatSequence(seq)
	switch ticketType {
	case domain.TicketTypeInquiry:
		return fmt.Sprintf("K%s-%s", yearMonth, suffix), nil
	case domain.TicketTypeRMA:
		return fmt.Sprintf("RMA-%s-%s-%s", channel, yearMonth, suffix), nil
	case domain.TicketTypeSVC:
		return fmt.Sprintf("SVC-%s-%s-%s", channel, yearMonth, suffix), nil
	default:
		return "", fmt.Errorf("unknown ticket type %q", ticketType)
	}
}

// formatSequence renders the sequence as four decimal digits; once a month
// overflows 9999 it switches to uppercase hex so the width stays fixed.
func formatSequence(seq int) string {
	if seq <= 9999 {
		return fmt.Sprintf("%04d", seq)
	}
	return strings.ToUpper(fmt.Sprintf("%04x", seq))
}
