package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crewpact/creatorreach-backend/internal/analysis"
	"github.com/crewpact/creatorreach-backend/internal/model"
	"github.com/crewpact/creatorreach-backend/internal/service"
)

var rc = service.ResponseContext{CreatorName: "Amara", CampaignName: "Spring Launch"}

func TestDecideInitialContactInterested(t *testing.T) {
	d := service.Decide(model.StageInitialContact, analysis.Classification{Intent: analysis.IntentInterested}, "Sounds fun, tell me more!", rc)

	assert.Equal(t, model.StageInterested, d.NextStage)
	assert.Equal(t, service.ActionAutoRespond, d.Action.Type)
	assert.Contains(t, d.Action.ResponseText, "Amara")
	assert.Contains(t, d.Action.ResponseText, "Spring Launch")
}

func TestDecideInitialContactRejection(t *testing.T) {
	d := service.Decide(model.StageInitialContact, analysis.Classification{Intent: analysis.IntentRejection}, "I don't think this is the right fit", rc)

	assert.Equal(t, model.StageRejected, d.NextStage)
	assert.Equal(t, service.ActionClose, d.Action.Type)
	assert.NotEmpty(t, d.Action.ResponseText)
	assert.True(t, d.NextStage.Terminal())
}

func TestDecideNegotiatingCounterOffer(t *testing.T) {
	d := service.Decide(model.StageNegotiating, analysis.Classification{Intent: analysis.IntentNegotiation}, "Could we do $3200 instead and a 2-week timeline?", rc)

	assert.Equal(t, model.StageNegotiating, d.NextStage)
	assert.Equal(t, service.ActionEscalate, d.Action.Type)
	assert.Equal(t, model.PriorityHigh, d.Action.Priority)
}

func TestDecideInterestedWithNegotiationLanguage(t *testing.T) {
	// keyword detection alone is enough, whatever the oracle said
	d := service.Decide(model.StageInterested, analysis.Classification{Intent: analysis.IntentQuestion}, "What's the rate for this?", rc)

	assert.Equal(t, model.StageNegotiating, d.NextStage)
	assert.Equal(t, service.ActionEscalate, d.Action.Type)
	assert.Equal(t, model.PriorityHigh, d.Action.Priority)
}

func TestDecideNegotiatingAgreement(t *testing.T) {
	d := service.Decide(model.StageNegotiating, analysis.Classification{Intent: analysis.IntentAgreement}, "Deal, let's move forward", rc)

	assert.Equal(t, model.StageTermsAgreed, d.NextStage)
	assert.Equal(t, service.ActionAutoRespond, d.Action.Type)
}

func TestDecideTermsAgreedConfirmation(t *testing.T) {
	d := service.Decide(model.StageTermsAgreed, analysis.Classification{Intent: analysis.IntentAgreement}, "Yes, confirmed!", rc)

	assert.Equal(t, model.StageContractPending, d.NextStage)
	assert.Equal(t, service.ActionEscalate, d.Action.Type)
	assert.Equal(t, model.PriorityHigh, d.Action.Priority)
}

func TestDecideContractSentSignedDocument(t *testing.T) {
	d := service.Decide(model.StageContractSent, analysis.Classification{Intent: analysis.IntentUnknown}, "Signed copy attached, excited to start!", rc)

	assert.Equal(t, model.StageContractSigned, d.NextStage)
	assert.Equal(t, service.ActionEscalate, d.Action.Type)
	assert.Equal(t, model.PriorityHigh, d.Action.Priority)
}

func TestDecideAmbiguousEscalatesMedium(t *testing.T) {
	d := service.Decide(model.StageInitialContact, analysis.Classification{Intent: analysis.IntentUnknown}, "???", rc)

	assert.Equal(t, model.StageInitialContact, d.NextStage)
	assert.Equal(t, service.ActionEscalate, d.Action.Type)
	assert.Equal(t, model.PriorityMedium, d.Action.Priority)
}

func TestDecideTerminalStagesDoNothing(t *testing.T) {
	for _, stage := range []model.Stage{model.StageContractSigned, model.StageRejected} {
		d := service.Decide(stage, analysis.Classification{Intent: analysis.IntentInterested}, "hello again", rc)
		assert.Equal(t, stage, d.NextStage)
		assert.Equal(t, service.ActionNone, d.Action.Type)
	}
}

func TestDecideOracleFlagConvertsAutoRespondToEscalation(t *testing.T) {
	cls := analysis.Classification{
		Intent:                analysis.IntentInterested,
		RequiresHumanApproval: true,
		Reason:                "low confidence",
	}
	d := service.Decide(model.StageInitialContact, cls, "Sure, sounds interesting", rc)

	assert.Equal(t, service.ActionEscalate, d.Action.Type)
	assert.Equal(t, model.PriorityMedium, d.Action.Priority)
	// stage held back until a human approves; the target stage and the
	// suggested reply travel on the approval request
	assert.Equal(t, model.StageInitialContact, d.NextStage)
	assert.NotEmpty(t, d.Action.ResponseText)
}

func TestDecideNeverRegressesStage(t *testing.T) {
	stages := []model.Stage{
		model.StageInitialContact, model.StageInterested, model.StageNegotiating,
		model.StageTermsAgreed, model.StageContractPending, model.StageContractSent,
	}
	intents := []string{
		analysis.IntentInterested, analysis.IntentRejection, analysis.IntentAgreement,
		analysis.IntentNegotiation, analysis.IntentQuestion, analysis.IntentUnknown,
	}
	for _, stage := range stages {
		for _, intent := range intents {
			d := service.Decide(stage, analysis.Classification{Intent: intent}, "some reply about the rate", rc)
			if d.NextStage == model.StageRejected {
				continue // rejection is terminal, reachable from anywhere
			}
			assert.True(t, stage.CanAdvanceTo(d.NextStage),
				"stage %s regressed to %s on intent %s", stage, d.NextStage, intent)
		}
	}
}

func TestContainsNegotiation(t *testing.T) {
	assert.True(t, service.ContainsNegotiation("Could we do $3200 instead?"))
	assert.True(t, service.ContainsNegotiation("The timeline is too tight"))
	assert.True(t, service.ContainsNegotiation("I'd want one more deliverable covered"))
	assert.False(t, service.ContainsNegotiation("Looking forward to it!"))
	// whole words only: "rate" must not fire inside "grateful"
	assert.False(t, service.ContainsNegotiation("I'm so grateful for the opportunity"))
}

func TestTerminalStagesCannotAdvance(t *testing.T) {
	for _, stage := range []model.Stage{model.StageContractSigned, model.StageRejected} {
		assert.False(t, stage.CanAdvanceTo(model.StageInterested), "stage %s", stage)
		assert.False(t, stage.CanAdvanceTo(model.StageContractSigned), "stage %s", stage)
		assert.False(t, stage.CanAdvanceTo(model.StageRejected), "stage %s", stage)
	}
}
