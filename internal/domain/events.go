/**
 * @description
 * This file defines the outbound message contracts published by the
 * account-service. The notification-service consumes these from the broker,
 * so the JSON field names are a stable, externally documented contract and
 * must stay backward compatible.
 */
package domain

// EmailMessage is the payload delivered on the email notification channel
// (default "emailQueue").
type EmailMessage struct {
	RecipientEmail string `json:"recipientEmail"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
}
