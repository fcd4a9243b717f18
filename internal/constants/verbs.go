package constants

// Command verbs carried in button payloads. A payload is either the bare verb
// or verb|arg|arg with every argument percent-encoded.
const (
	VerbMainMenu      = "main_menu"
	VerbMyProfile     = "my_profile"
	VerbSecretaryArea = "secretary_area"
	VerbAdminArea     = "admin_area"

	VerbListEvents    = "list_events"
	VerbEventsByDate  = "events_by_date"
	VerbEventsByGrade = "events_by_grade"
	VerbShowEvent     = "show_event"
	VerbListAttendees = "list_attendees"

	VerbConfirmAttendance       = "confirm_attendance"
	VerbCancelAttendance        = "cancel_attendance"
	VerbConfirmCancelAttendance = "confirm_cancel_attendance"
	VerbMyConfirmations         = "my_confirmations"
	VerbShowMyConfirmation      = "show_my_confirmation"
	VerbCloseMessage            = "close_message"

	VerbRegister         = "register"
	VerbEditProfile      = "edit_profile"
	VerbEditProfileField = "edit_profile_field"
	VerbCreateEvent      = "create_event"
	VerbMyEvents         = "my_events"
	VerbManageEvent      = "manage_event"
	VerbEditEvent        = "edit_event"
	VerbEditEventField   = "edit_event_field"
	VerbCancelEvent      = "cancel_event"
	VerbConfirmCancelEvt = "confirm_cancel_event"
	VerbExportAttendees  = "export_attendees"

	VerbListMembers = "list_members"
	VerbEditMember  = "edit_member"
	VerbPromote     = "promote"
	VerbDemote      = "demote"

	// VerbChoose answers the question asked by the current conversation step.
	VerbChoose     = "choose"
	VerbCancelFlow = "cancel_flow"
)

// Text commands.
const (
	TextCommandStart     = "/start"
	TextCommandCancel    = "/cancelar"
	TextCommandCancelAlt = "/cancel"
)
