package session

import (
	"github.com/rbright/usher/internal/admission"
	"github.com/rbright/usher/internal/page"
)

// Selectors carries every UI selector the controller touches, as data. Each
// supported meeting application ships its own set; the defaults target
// attribute conventions common to the big conferencing web apps.
type Selectors struct {
	// PermissionDismiss are prompts dismissed best-effort before joining.
	PermissionDismiss []string
	// MeetingMarker identifies the pre-join meeting UI.
	MeetingMarker string
	// SignInMarker identifies a sign-in wall.
	SignInMarker string
	NameInput    string
	MuteMic      string
	MuteCam      string
	JoinButton   string
	// WelcomeDismiss are post-admission dialogs dismissed best-effort.
	WelcomeDismiss []string

	Cues             admission.CueSet
	ParticipantCount page.Chain
}

// DefaultSelectors returns the stock selector set.
func DefaultSelectors() Selectors {
	participantCount := page.Chain{
		{Kind: page.StrategyAttrPrefix, Attribute: "aria-label", Match: "Participants"},
		{Kind: page.StrategyAttrContains, Attribute: "data-testid", Match: "participant-count"},
		{Kind: page.StrategyTextRegex, Match: `^\(?\d+\)?$`},
		{Kind: page.StrategyStructural, Match: "participant-list-badge"},
	}

	return Selectors{
		PermissionDismiss: []string{
			`button[data-testid="dismiss-permissions"]`,
			`button[aria-label="Continue without microphone"]`,
		},
		MeetingMarker: `div[data-meeting-root]`,
		SignInMarker:  `form[action*="signin"], input[type="password"]`,
		NameInput:     `input[aria-label="Your name"]`,
		MuteMic:       `button[aria-label*="Turn off microphone"]`,
		MuteCam:       `button[aria-label*="Turn off camera"]`,
		JoinButton:    `button[data-testid="ask-to-join"]`,
		WelcomeDismiss: []string{
			`button[aria-label="Close"]`,
			`button[data-testid="dismiss-welcome"]`,
		},
		Cues: admission.CueSet{
			InCallUI: page.Chain{
				{Kind: page.StrategyAttrPrefix, Attribute: "aria-label", Match: "People"},
				{Kind: page.StrategyAttrContains, Attribute: "data-testid", Match: "in-call-controls"},
			},
			Denial: page.Chain{
				{Kind: page.StrategyTextRegex, Match: `(?i)can't join|denied your request`},
			},
			WaitingForHost: page.Chain{
				{Kind: page.StrategyTextRegex, Match: `(?i)waiting for the host|host will let you in`},
			},
			RequestTimedOut: page.Chain{
				{Kind: page.StrategyTextRegex, Match: `(?i)no one responded|request timed out`},
			},
			ParticipantCount: participantCount,
			BodyText: page.Chain{
				{Kind: page.StrategyCSS, Match: "main"},
				{Kind: page.StrategyCSS, Match: "body"},
			},
		},
		ParticipantCount: participantCount,
	}
}
