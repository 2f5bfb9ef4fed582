package domain

import "fmt"

// AgentRole selects the persona and provider for a completion call.
type AgentRole string

const (
	RoleResearcher         AgentRole = "researcher"
	RoleScriptWriter       AgentRole = "script_writer"
	RoleScriptReviewer     AgentRole = "script_reviewer"
	RoleNewsResearcher     AgentRole = "news_researcher"
	RoleNewsletterWriter   AgentRole = "newsletter_writer"
	RoleNewsletterReviewer AgentRole = "newsletter_reviewer"
)

// AgentRoles lists every role in pipeline order.
func AgentRoles() []AgentRole {
	return []AgentRole{
		RoleResearcher,
		RoleScriptWriter,
		RoleScriptReviewer,
		RoleNewsResearcher,
		RoleNewsletterWriter,
		RoleNewsletterReviewer,
	}
}

// ParseAgentRole maps a config key to a role.
func ParseAgentRole(value string) (AgentRole, error) {
	for _, role := range AgentRoles() {
		if string(role) == value {
			return role, nil
		}
	}
	return "", fmt.Errorf("unknown agent role %q", value)
}

// Completion is the text produced by an agent.
type Completion struct {
	Text string
}

// Orientation is the aspect-ratio variant of a thumbnail.
type Orientation string

const (
	OrientationPortrait  Orientation = "Portrait"
	OrientationLandscape Orientation = "Landscape"
)

// ParseOrientation accepts the recognized orientation names.
func ParseOrientation(value string) (Orientation, error) {
	switch Orientation(value) {
	case OrientationPortrait, OrientationLandscape:
		return Orientation(value), nil
	default:
		return "", fmt.Errorf("unknown orientation %q", value)
	}
}

// ChatRequest is the provider-neutral shape of one completion call.
type ChatRequest struct {
	Model        string
	SystemPrompt string
	Prompt       string
}
