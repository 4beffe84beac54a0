package templates

// RenderTeamInvitation generates the HTML for the team invitation email
func RenderTeamInvitation(caseTitle string) string {
	return RenderGenericEmail(
		"You've been invited to an investigation team",
		"An investigator has invited you to join their team on the case:\n\n"+
			caseTitle+"\n\n"+
			"Open the app to accept or decline the invitation. If the case is resolved, the reward is split between team members according to the agreed contribution percentages.",
	)
}

// RenderReviewReminder generates the HTML for the pending review reminder
// email sent to the case submitter
func RenderReviewReminder(name, caseTitle string) string {
	greeting := "Hi"
	if name != "" {
		greeting = "Hi " + name
	}
	return RenderGenericEmail(
		"A resolution is waiting for your review",
		greeting+",\n\n"+
			"The investigator working on your case has proposed a resolution and it has been waiting for your review for over a week:\n\n"+
			caseTitle+"\n\n"+
			"Please open the app and accept or dispute the resolution so the case can move forward.",
	)
}

// RenderDisputeReminder generates the HTML for the dispute reminder email
// sent to the assigned investigator
func RenderDisputeReminder(name, caseTitle string) string {
	greeting := "Hi"
	if name != "" {
		greeting = "Hi " + name
	}
	return RenderGenericEmail(
		"A disputed case needs your attention",
		greeting+",\n\n"+
			"The submitter has disputed your proposed resolution on the case:\n\n"+
			caseTitle+"\n\n"+
			"Please review their feedback and submit an updated resolution, or the case may be opened for a community vote.",
	)
}
