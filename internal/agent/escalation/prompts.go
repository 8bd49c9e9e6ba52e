package escalation

import (
	_ "embed"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
)

//go:embed template/classify.txt
var classifySystemPrompt string

//go:embed template/clarify.txt
var clarifySystemPrompt string

const (
	varBusinessName = "BusinessName"
	varIntents      = "Intents"
	varAddress      = "Address"
	varPhone        = "Phone"
	varWhatsApp     = "WhatsApp"
	varNeed         = "Need"
	varMessage      = "Message"
	varHistory      = "history"
)

// newClassifyTemplate asks for the structured JSON answer.
func newClassifyTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(classifySystemPrompt),
		schema.MessagesPlaceholder(varHistory, true),
		schema.UserMessage("{{.Message}}"),
	)
}

// newClarifyTemplate asks for a free-form clarifying reply.
func newClarifyTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(clarifySystemPrompt),
		schema.MessagesPlaceholder(varHistory, true),
		schema.UserMessage("{{.Message}}"),
	)
}

// answerableIntents are offered to the model. State-only intents need
// memory the model does not see.
var answerableIntents = []model.IntentName{
	model.IntentGreeting,
	model.IntentProductInquiry,
	model.IntentComparison,
	model.IntentHours,
	model.IntentLocation,
	model.IntentDelivery,
	model.IntentPurchaseOrder,
	model.IntentConfirmOrder,
	model.IntentCancelOrder,
	model.IntentComplaint,
	model.IntentFarewell,
	model.IntentThanks,
	model.IntentUnknown,
}

func intentNames() []string {
	out := make([]string, len(answerableIntents))
	for i, n := range answerableIntents {
		out[i] = n.String()
	}
	return out
}

// historyMessages maps stored turns onto chat roles.
func historyMessages(turns []model.Turn) []*schema.Message {
	out := make([]*schema.Message, 0, len(turns))
	for _, t := range turns {
		if t.Content == "" {
			continue
		}
		switch t.Sender {
		case model.SenderCustomer:
			out = append(out, schema.UserMessage(t.Content))
		case model.SenderBot:
			out = append(out, schema.AssistantMessage(t.Content, nil))
		}
	}
	return out
}
