package model

type NewsletterSignup struct {
	Email           string `json:"email"`
	PrivacyAccepted bool   `json:"privacy_accepted"`
	Domain          string `json:"domain"`
	Language        string `json:"language"`
}
