// internal/service/matcher.go
package service

import (
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crewpact/creatorreach-backend/internal/model"
	"github.com/crewpact/creatorreach-backend/internal/repository"
)

// InboundMessage is a reply as handed over by the (out-of-scope) mailbox
// poller. References and InReplyTo carry the raw threading header values.
type InboundMessage struct {
	From       string   `json:"from"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	InReplyTo  string   `json:"in_reply_to,omitempty"`
	References []string `json:"references,omitempty"`
}

// Correlation tokens are uuids embedded as [ref:<token>] in outbound
// subjects and threading headers.
var tokenPattern = regexp.MustCompile(`\[ref:([0-9a-fA-F-]{36})\]`)

// recencyWindow bounds the heuristic sender-address fallback.
const recencyWindow = 24 * time.Hour

type ThreadMatcher struct {
	Outreach repository.OutreachRepositoryInterface
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewThreadMatcher(outreach repository.OutreachRepositoryInterface, logger *zap.Logger) *ThreadMatcher {
	return &ThreadMatcher{Outreach: outreach, Logger: logger, Now: time.Now}
}

// Match resolves an inbound message to the outreach record that started the
// thread. Strategies run in priority order, each a fallback for the previous:
// subject token, threading-header token, then recipient-address recency.
// Returns (nil, nil) when nothing matches; not every inbound message is a
// tracked reply.
func (m *ThreadMatcher) Match(msg InboundMessage) (*model.OutreachRecord, error) {
	if token := extractToken(msg.Subject); token != "" {
		rec, err := m.Outreach.GetByToken(token)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return rec, nil
		}
	}

	headers := msg.InReplyTo + " " + strings.Join(msg.References, " ")
	if token := extractToken(headers); token != "" {
		rec, err := m.Outreach.GetByToken(token)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return rec, nil
		}
	}

	since := m.Now().Add(-recencyWindow)
	candidates, err := m.Outreach.FindByRecipientSince(msg.From, since)
	if err != nil {
		return nil, err
	}
	if len(candidates) > 0 {
		// Repository orders by sent_at descending; first is latest.
		if len(candidates) > 1 {
			m.Logger.Debug("multiple outreach candidates for sender, taking most recent",
				zap.String("from", msg.From),
				zap.Int("candidates", len(candidates)),
			)
		}
		return candidates[0], nil
	}

	return nil, nil
}

func extractToken(s string) string {
	m := tokenPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}
