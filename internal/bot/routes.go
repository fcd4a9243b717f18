package bot

import (
	"bode-andarilho/agenda/internal/constants"
)

func argRoute(verb string) string {
	return verb + argSeparator + "*"
}

// routeList is the full command table. Roles above member are checked by
// the router before a handler runs.
func (b *Bot) routeList() []Route {
	member, secretary, admin := constants.RoleMember, constants.RoleSecretary, constants.RoleAdmin
	return []Route{
		{Pattern: constants.TextCommandStart, Role: member, Handler: b.handleStart},
		{Pattern: constants.TextCommandCancel, Role: member, Handler: b.cancelFlow},
		{Pattern: constants.TextCommandCancelAlt, Role: member, Handler: b.cancelFlow},
		{Pattern: constants.VerbCancelFlow, Role: member, Handler: b.cancelFlow},

		{Pattern: constants.VerbMainMenu, Role: member, Private: true, Handler: b.handleMainMenu},
		{Pattern: constants.VerbMyProfile, Role: member, Private: true, Handler: b.handleMyProfile},
		{Pattern: constants.VerbCloseMessage, Role: member, Handler: b.handleCloseMessage},

		{Pattern: constants.VerbListEvents, Role: member, Private: true, Handler: b.handleListEvents},
		{Pattern: constants.VerbEventsByDate, Role: member, Private: true, Handler: b.handleEventDates},
		{Pattern: argRoute(constants.VerbEventsByDate), Role: member, Private: true, Handler: b.handleEventsOnDate},
		{Pattern: constants.VerbEventsByGrade, Role: member, Private: true, Handler: b.handleEventGrades},
		{Pattern: argRoute(constants.VerbEventsByGrade), Role: member, Private: true, Handler: b.handleEventsForGrade},
		{Pattern: argRoute(constants.VerbShowEvent), Role: member, Private: true, Handler: b.handleShowEvent},
		{Pattern: argRoute(constants.VerbListAttendees), Role: member, Private: true, Handler: b.handleListAttendees},

		// confirmation works from the announcement in the channel itself
		{Pattern: argRoute(constants.VerbConfirmAttendance), Role: member, Handler: b.handleConfirmAttendance},
		{Pattern: argRoute(constants.VerbCancelAttendance), Role: member, Private: true, Handler: b.handleCancelAttendance},
		{Pattern: argRoute(constants.VerbConfirmCancelAttendance), Role: member, Private: true, Handler: b.handleConfirmCancelAttendance},
		{Pattern: constants.VerbMyConfirmations, Role: member, Private: true, Handler: b.handleMyConfirmations},
		{Pattern: argRoute(constants.VerbShowMyConfirmation), Role: member, Private: true, Handler: b.handleShowMyConfirmation},

		{Pattern: constants.VerbRegister, Role: member, Private: true, Handler: b.flowHandler(flowRegistration)},
		{Pattern: constants.VerbEditProfile, Role: member, Private: true, Handler: b.flowHandler(flowEditProfile)},

		{Pattern: constants.VerbSecretaryArea, Role: secretary, Private: true, Handler: b.handleSecretaryArea},
		{Pattern: constants.VerbCreateEvent, Role: secretary, Private: true, Handler: b.handleCreateEvent},
		{Pattern: constants.VerbMyEvents, Role: secretary, Private: true, Handler: b.handleMyEvents},
		{Pattern: argRoute(constants.VerbManageEvent), Role: secretary, Private: true, Handler: b.handleManageEvent},
		{Pattern: argRoute(constants.VerbEditEvent), Role: secretary, Private: true, Handler: b.handleEditEvent},
		{Pattern: argRoute(constants.VerbCancelEvent), Role: secretary, Private: true, Handler: b.handleCancelEvent},
		{Pattern: argRoute(constants.VerbConfirmCancelEvt), Role: secretary, Private: true, Handler: b.handleConfirmCancelEvent},
		{Pattern: argRoute(constants.VerbExportAttendees), Role: secretary, Private: true, Handler: b.handleExportAttendees},

		{Pattern: constants.VerbAdminArea, Role: admin, Private: true, Handler: b.handleAdminArea},
		{Pattern: constants.VerbListMembers, Role: admin, Private: true, Handler: b.handleListMembers},
		{Pattern: constants.VerbEditMember, Role: admin, Private: true, Handler: b.flowHandler(flowEditMember)},
		{Pattern: constants.VerbPromote, Role: admin, Private: true, Handler: b.flowHandler(flowPromote)},
		{Pattern: constants.VerbDemote, Role: admin, Private: true, Handler: b.flowHandler(flowDemote)},

		// answers to a step that is no longer waiting for them
		{Pattern: argRoute(constants.VerbChoose), Role: member, Handler: b.handleStale},
		{Pattern: argRoute(constants.VerbEditProfileField), Role: member, Handler: b.handleStale},
		{Pattern: argRoute(constants.VerbEditEventField), Role: member, Handler: b.handleStale},
	}
}
