package changes

import (
	"fmt"

	"github.com/aarav-aiphi/Backend/pkg/db/models"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	"github.com/aarav-aiphi/Backend/pkg/mail"
)

func approvedMessage(requester *models.User, action enums.ChangeAction) mail.Message {
	return mail.Message{
		To:      []string{requester.Email},
		Subject: "Your Change Request has been Approved",
		Text: fmt.Sprintf("Hello %s,\n\nYour request to %s an agent has been approved.\n\nThank you.",
			requester.DisplayName(), describe(action)),
	}
}

func rejectedMessage(requester *models.User, action enums.ChangeAction, reason string) mail.Message {
	return mail.Message{
		To:      []string{requester.Email},
		Subject: "Your Change Request has been Rejected",
		Text: fmt.Sprintf("Hello %s,\n\nYour request to %s an agent has been rejected.\n\nReason: %s\n\nPlease review and try again.\n\nThank you.",
			requester.DisplayName(), describe(action), reason),
	}
}

func onHoldMessage(ownerEmail, listingName, instructions string) mail.Message {
	return mail.Message{
		To:      []string{ownerEmail},
		Subject: fmt.Sprintf("Modification Request for Agent: %s", listingName),
		Text:    fmt.Sprintf("Your agent submission has been put on hold. Instructions:\n\n%s", instructions),
	}
}

func describe(action enums.ChangeAction) string {
	if action == enums.ChangeActionStatusChange {
		return "change the status of"
	}
	return string(action)
}
