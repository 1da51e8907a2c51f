package cta

// Family groups CTA kinds by where they are shown.
type Family int

const (
	// FamilyUnknown is the family of any value not produced by ParseKind or
	// the Kind constants.
	FamilyUnknown Family = iota
	// FamilyDaxBubble CTAs are shown in the onboarding bubble on the new tab page.
	FamilyDaxBubble
	// FamilyDaxDialog CTAs are shown as a dialog over a visited page.
	FamilyDaxDialog
	// FamilyHomePanel CTAs are shown as panels on the home screen.
	FamilyHomePanel
)

func (f Family) String() string {
	switch f {
	case FamilyDaxBubble:
		return "dax_bubble"
	case FamilyDaxDialog:
		return "dax_dialog"
	case FamilyHomePanel:
		return "home_panel"
	default:
		return "unknown"
	}
}

// Kind is one onboarding call-to-action.
type Kind int

const (
	DaxIntro Kind = iota
	DaxEnd
	DaxSerp
	DaxTrackersBlocked
	DaxMainNetwork
	DaxNoSerp
	DaxFireButton
	Survey
	DeviceShortcuts
	AddWidgetAuto
	AddWidgetInstructions
)

type kindInfo struct {
	code        string
	family      Family
	shownPixel  string
	okPixel     string
	cancelPixel string
}

var kinds = map[Kind]kindInfo{
	DaxIntro:              {code: "i", family: FamilyDaxBubble, shownPixel: "m_odc_s"},
	DaxEnd:                {code: "e", family: FamilyDaxBubble, shownPixel: "m_odc_s"},
	DaxSerp:               {code: "s", family: FamilyDaxDialog, shownPixel: "m_odc_s", okPixel: "m_odc_ok"},
	DaxTrackersBlocked:    {code: "t", family: FamilyDaxDialog, shownPixel: "m_odc_s", okPixel: "m_odc_ok"},
	DaxMainNetwork:        {code: "m", family: FamilyDaxDialog, shownPixel: "m_odc_s", okPixel: "m_odc_ok"},
	DaxNoSerp:             {code: "n", family: FamilyDaxDialog, shownPixel: "m_odc_s", okPixel: "m_odc_ok"},
	DaxFireButton:         {code: "f", family: FamilyDaxDialog, shownPixel: "m_odc_s"},
	Survey:                {code: "survey", family: FamilyHomePanel, shownPixel: "mus_cs", okPixel: "mus_cl", cancelPixel: "mus_cd"},
	DeviceShortcuts:       {code: "shortcuts", family: FamilyHomePanel, shownPixel: "m_sc_s", okPixel: "m_sc_l", cancelPixel: "m_sc_d"},
	AddWidgetAuto:         {code: "widget_auto", family: FamilyHomePanel, shownPixel: "m_wca_s", okPixel: "m_wca_l", cancelPixel: "m_wca_d"},
	AddWidgetInstructions: {code: "widget_instructions", family: FamilyHomePanel, shownPixel: "m_wci_s", okPixel: "m_wci_l", cancelPixel: "m_wci_d"},
}

var kindsByCode = func() map[string]Kind {
	m := make(map[string]Kind, len(kinds))
	for k, info := range kinds {
		m[info.code] = k
	}
	return m
}()

// ParseKind resolves a short pixel code to its Kind.
func ParseKind(code string) (Kind, error) {
	k, ok := kindsByCode[code]
	if !ok {
		return 0, ErrUnknownCta
	}
	return k, nil
}

// Code is the short code written to the journey history and pixel parameters.
func (k Kind) Code() string { return kinds[k].code }

// Family returns where the kind is shown, FamilyUnknown for values outside
// the Kind constants.
func (k Kind) Family() Family { return kinds[k].family }

// Valid reports whether k is one of the Kind constants.
func (k Kind) Valid() bool { return k.Family() != FamilyUnknown }

// TracksHistory reports whether the kind is de-duplicated against the
// onboarding journey history. Home panel CTAs and unknown kinds are not.
func (k Kind) TracksHistory() bool {
	f := k.Family()
	return f == FamilyDaxBubble || f == FamilyDaxDialog
}

// ShownPixel, OkPixel and CancelPixel return the pixel names fired for each
// interaction, or "" when the kind fires none.
func (k Kind) ShownPixel() string  { return kinds[k].shownPixel }
func (k Kind) OkPixel() string     { return kinds[k].okPixel }
func (k Kind) CancelPixel() string { return kinds[k].cancelPixel }

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.code
	}
	return "unknown"
}
