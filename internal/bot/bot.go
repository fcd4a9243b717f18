package bot

import (
	"context"
	"errors"
	"time"

	"bode-andarilho/agenda/internal/auth"
	"bode-andarilho/agenda/internal/catalog"
	"bode-andarilho/agenda/internal/common"
	"bode-andarilho/agenda/internal/metrics"
	"bode-andarilho/agenda/internal/services"
)

// RoleResolver resolves the acting user on every interaction.
type RoleResolver interface {
	Actor(ctx context.Context, userID int64) (auth.Actor, error)
}

// Settings are the configured identifiers and limits the bot needs.
type Settings struct {
	DefaultChannelID int64
	Location         *time.Location
	SessionIdle      time.Duration
	PublicBaseURL    string
	ExportLinkTTL    time.Duration
}

// Deps are the collaborators the bot drives.
type Deps struct {
	Transport Transport
	Roles     RoleResolver
	Members   *services.MemberService
	Directory *services.EventDirectory
	Events    *services.EventService
	Ledger    *services.AttendanceLedger
	Catalog   *catalog.Catalog
	Signer    *common.URLSigner
	Metrics   *metrics.MetricsRegistry
	// Now defaults to time.Now.
	Now func() time.Time
}

// Bot routes interactions to handlers and conversation flows.
type Bot struct {
	Deps
	settings Settings

	sessions   *SessionStore
	locks      *common.KeyedMutex[SessionKey]
	redirector *Redirector
	routes     *routeTable
	flows      map[string]*Flow
}

func New(deps Deps, settings Settings) (*Bot, error) {
	if deps.Transport == nil || deps.Roles == nil {
		return nil, errors.New("bot: transport and role resolver are required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Catalog == nil {
		deps.Catalog = catalog.Default()
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.SessionIdle <= 0 {
		settings.SessionIdle = 30 * time.Minute
	}
	if settings.ExportLinkTTL <= 0 {
		settings.ExportLinkTTL = 15 * time.Minute
	}

	b := &Bot{
		Deps:     deps,
		settings: settings,
		sessions: NewSessionStore(settings.SessionIdle),
		locks:    common.NewKeyedMutex[SessionKey](),
	}
	b.redirector = NewRedirector(deps.Transport, b.locks)

	b.flows = map[string]*Flow{}
	for _, f := range []*Flow{
		b.registrationFlow(),
		b.createEventFlow(),
		b.editProfileFlow(),
		b.editMemberFlow(),
		b.editEventFlow(),
		b.roleChangeFlow(flowPromote),
		b.roleChangeFlow(flowDemote),
		b.attendanceFlow(),
	} {
		if err := f.compile(); err != nil {
			return nil, err
		}
		b.flows[f.Name] = f
	}

	routes, err := compileRoutes(b.routeList())
	if err != nil {
		return nil, err
	}
	b.routes = routes
	return b, nil
}

// now is the current time in the configured zone.
func (b *Bot) now() time.Time {
	return b.Now().In(b.settings.Location)
}
