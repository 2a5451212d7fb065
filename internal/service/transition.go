// internal/service/transition.go
//
// The stage transition controller. Decide is a pure function over the current
// stage, the classification, and the reply text; it owns every automated stage
// move. Escalations do not advance the stage here: the target stage is carried
// on the approval request and applied when a human approves.
package service

import (
	"regexp"
	"strings"

	"github.com/crewpact/creatorreach-backend/internal/analysis"
	"github.com/crewpact/creatorreach-backend/internal/model"
)

type ActionType string

const (
	ActionAutoRespond ActionType = "auto_respond"
	ActionEscalate    ActionType = "escalate"
	ActionClose       ActionType = "close"
	ActionNone        ActionType = "none"
)

// Action is a tagged outcome: exactly the fields for its Type are set.
type Action struct {
	Type         ActionType `json:"type"`
	ResponseText string     `json:"response_text,omitempty"` // auto_respond, close
	Priority     string     `json:"priority,omitempty"`      // escalate
	Reason       string     `json:"reason,omitempty"`        // escalate
}

// Decision pairs the target stage with the required action. For auto_respond
// and close the stage is applied immediately; for escalate it is applied only
// when the approval is resolved with an approve verdict.
type Decision struct {
	NextStage model.Stage `json:"next_stage"`
	Action    Action      `json:"action"`
}

// ResponseContext feeds the auto-response templates.
type ResponseContext struct {
	CreatorName  string
	CampaignName string
}

// Fixed signal set covering rate, timeline and deliverable-change language.
// Whole words only: "rate" must not fire inside "grateful". A currency sign
// is checked separately since word boundaries don't apply to it.
var negotiationSignalPattern = regexp.MustCompile(`(?i)\b(?:` +
	`rates?|price|pricing|budget|fees?|compensation|pay|payment|` +
	`instead|counter|` +
	`timelines?|deadlines?|turnaround|` +
	`deliverables?|more videos|fewer videos|extra posts?)\b`)

var signedDocPattern = regexp.MustCompile(`(?i)\b(?:signed|attached|contract)\b`)

// ContainsNegotiation reports whether the reply carries counter-offer
// language. Kept outside the state machine so it can be tuned independently.
func ContainsNegotiation(text string) bool {
	return strings.Contains(text, "$") || negotiationSignalPattern.MatchString(text)
}

// ContainsSignedDocument reports whether the reply looks like a returned
// signed agreement.
func ContainsSignedDocument(text string) bool {
	return signedDocPattern.MatchString(text)
}

const (
	detailsTemplate = "Hi {creator_name}, great to hear you're interested in {campaign_name}! " +
		"Here are the collaboration details: deliverables, timeline and compensation are outlined in the attached brief. " +
		"Let us know if everything looks good and we'll take it from there."

	closeTemplate = "Hi {creator_name}, thanks for taking the time to consider {campaign_name}. " +
		"Totally understand — we'll keep you in mind for future collaborations. All the best!"

	contractReadyTemplate = "Fantastic, {creator_name}! We'll prepare the agreement for {campaign_name} and send it over shortly. " +
		"Once it's signed we can get started."
)

func renderResponse(template string, rc ResponseContext) string {
	return RenderTemplate(template, map[string]string{
		"creator_name":  rc.CreatorName,
		"campaign_name": rc.CampaignName,
	})
}

func escalate(stage model.Stage, priority, reason string) Decision {
	return Decision{
		NextStage: stage,
		Action:    Action{Type: ActionEscalate, Priority: priority, Reason: reason},
	}
}

// Decide maps (stage, classification, reply) to the next stage and action.
// Terminal stages never transition. An unrecognized or ambiguous
// classification at any stage escalates at medium priority with the stage
// left unchanged.
func Decide(stage model.Stage, cls analysis.Classification, replyText string, rc ResponseContext) Decision {
	if stage.Terminal() {
		return Decision{NextStage: stage, Action: Action{Type: ActionNone}}
	}

	d := decide(stage, cls, replyText, rc)

	// The oracle can flag a reply for human approval even when the intent is
	// recognized. The suggested response and target stage survive on the
	// approval request so the operator can one-click apply them.
	if cls.RequiresHumanApproval && (d.Action.Type == ActionAutoRespond || d.Action.Type == ActionClose) {
		reason := cls.Reason
		if reason == "" {
			reason = "analysis flagged reply for human approval"
		}
		return Decision{
			NextStage: stage,
			Action: Action{
				Type:         ActionEscalate,
				Priority:     model.PriorityMedium,
				Reason:       reason,
				ResponseText: d.Action.ResponseText,
			},
		}
	}
	return d
}

func decide(stage model.Stage, cls analysis.Classification, replyText string, rc ResponseContext) Decision {
	switch stage {
	case model.StageInitialContact:
		switch cls.Intent {
		case analysis.IntentInterested:
			return Decision{
				NextStage: model.StageInterested,
				Action:    Action{Type: ActionAutoRespond, ResponseText: renderResponse(detailsTemplate, rc)},
			}
		case analysis.IntentRejection:
			return Decision{
				NextStage: model.StageRejected,
				Action:    Action{Type: ActionClose, ResponseText: renderResponse(closeTemplate, rc)},
			}
		}
		return escalate(stage, model.PriorityMedium, "unrecognized reply during initial contact")

	case model.StageInterested, model.StageNegotiating:
		if ContainsNegotiation(replyText) || cls.Intent == analysis.IntentNegotiation {
			return Decision{
				NextStage: model.StageNegotiating,
				Action:    Action{Type: ActionEscalate, Priority: model.PriorityHigh, Reason: "counter-offer terms need review"},
			}
		}
		if cls.Intent == analysis.IntentAgreement {
			return Decision{
				NextStage: model.StageTermsAgreed,
				Action:    Action{Type: ActionAutoRespond, ResponseText: renderResponse(contractReadyTemplate, rc)},
			}
		}
		return escalate(stage, model.PriorityMedium, "ambiguous reply during negotiation")

	case model.StageTermsAgreed:
		if cls.Intent == analysis.IntentAgreement {
			return Decision{
				NextStage: model.StageContractPending,
				Action:    Action{Type: ActionEscalate, Priority: model.PriorityHigh, Reason: "contract generation requires sign-off"},
			}
		}
		return escalate(stage, model.PriorityMedium, "unexpected reply after terms agreed")

	case model.StageContractSent:
		if ContainsSignedDocument(replyText) {
			return Decision{
				NextStage: model.StageContractSigned,
				Action:    Action{Type: ActionEscalate, Priority: model.PriorityHigh, Reason: "verify returned signed document"},
			}
		}
		return escalate(stage, model.PriorityMedium, "reply after contract sent needs review")
	}

	return escalate(stage, model.PriorityMedium, "no automated handling for stage "+string(stage))
}
