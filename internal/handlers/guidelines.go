package handlers

import (
	"net/http"

	pkghttp "github.com/BradenHooton/passguard/pkg/http"
)

// GuidelineSection is one titled list of security advice.
type GuidelineSection struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

type GuidelinesResponse struct {
	pkghttp.Result
	Sections []GuidelineSection `json:"sections"`
}

var guidelines = []GuidelineSection{
	{
		Title: "Passwords",
		Items: []string{
			"Use at least 12 to 16 characters.",
			"Mix uppercase, lowercase, numbers, and symbols.",
			"Avoid dictionary words or personal info.",
			"Use a passphrase made of random words for stronger security.",
			"Never reuse passwords between sites.",
		},
	},
	{
		Title: "Authentication",
		Items: []string{
			"Enable two-factor authentication (2FA) whenever possible.",
			"Use an authenticator app instead of SMS codes.",
			"Don't share authentication codes or backup keys.",
			"Review active sessions and revoke unknown devices.",
		},
	},
	{
		Title: "Cybersecurity",
		Items: []string{
			"Keep your system and browser up to date.",
			"Be careful with links and attachments in emails.",
			"Use a VPN on public Wi-Fi networks.",
			"Regularly back up your important data.",
			"Lock your device when you step away.",
		},
	},
}

// Guidelines returns static security guidance.
func Guidelines(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, GuidelinesResponse{
		Result:   pkghttp.Success(),
		Sections: guidelines,
	})
}
