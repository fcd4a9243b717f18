package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"bode-andarilho/agenda/internal/auth"
	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/logging"
	"bode-andarilho/agenda/internal/models/dtos"
	"bode-andarilho/agenda/internal/services"
)

type HandlerFunc func(ctx context.Context, t *Turn) error

// Route binds a command pattern to a handler. Pattern is either a literal
// payload ("list_events", "/start") or a verb taking arguments
// ("show_event|*").
type Route struct {
	Pattern string
	Role    constants.Role
	// Private routes run in the user's private chat; presses in a shared
	// chat are redirected there first.
	Private bool
	Handler HandlerFunc
}

func (r Route) prefix() (string, bool) {
	p, ok := strings.CutSuffix(r.Pattern, argSeparator+"*")
	if !ok {
		return "", false
	}
	return p + argSeparator, true
}

// routeTable is compiled once: literal patterns are looked up first, then
// argument patterns are tried longest prefix first.
type routeTable struct {
	exact  map[string]Route
	prefix []Route
}

func compileRoutes(routes []Route) (*routeTable, error) {
	rt := &routeTable{exact: map[string]Route{}}
	seen := map[string]bool{}
	for _, r := range routes {
		if r.Handler == nil {
			return nil, fmt.Errorf("route %q has no handler", r.Pattern)
		}
		if seen[r.Pattern] {
			return nil, fmt.Errorf("route %q registered twice", r.Pattern)
		}
		seen[r.Pattern] = true
		if r.Role == "" {
			r.Role = constants.RoleMember
		}
		if _, ok := r.prefix(); ok {
			rt.prefix = append(rt.prefix, r)
			continue
		}
		rt.exact[r.Pattern] = r
	}
	sort.SliceStable(rt.prefix, func(i, j int) bool {
		return len(rt.prefix[i].Pattern) > len(rt.prefix[j].Pattern)
	})
	return rt, nil
}

func (rt *routeTable) match(raw string) (Route, bool) {
	if r, ok := rt.exact[raw]; ok {
		return r, true
	}
	for _, r := range rt.prefix {
		p, _ := r.prefix()
		if strings.HasPrefix(raw, p) {
			return r, true
		}
	}
	return Route{}, false
}

// HandleInteraction is the single entry point for inbound interactions. It
// never returns an error: every failure becomes a notice to the user.
func (b *Bot) HandleInteraction(ctx context.Context, in dtos.Interaction) {
	start := time.Now()
	kind := "text"
	if in.IsCallback() {
		kind = "callback"
	}

	unlock := b.locks.Lock(SessionKey{ChatID: in.ChatID, UserID: in.UserID})
	defer unlock()

	t := newTurn(in, Command{}, b.Transport)
	outcome := "handled"

	defer func() {
		if r := recover(); r != nil {
			logging.Error("Panic while handling interaction",
				"update_id", in.UpdateID, "user_id", in.UserID, "panic", r, "stack", string(debug.Stack()))
			outcome = "panic"
			b.sayQuietly(ctx, t, constants.MsgGenericError)
		}
		t.Ack(ctx, "")
		t.release()
		b.Metrics.ObserveInteraction(kind, outcome, time.Since(start))
		b.Metrics.SetActiveSessions(b.sessions.Len())
	}()

	outcome = b.route(ctx, t)
}

func (b *Bot) route(ctx context.Context, t *Turn) string {
	in := t.In
	raw := in.Command
	if raw == "" {
		raw = textCommand(in.Text)
	}
	log := logging.WithInteraction(in.UpdateID, in.UserID, in.ChatID, raw)

	if raw != "" {
		cmd, err := ParseCommand(raw)
		if err != nil {
			log.Warnw("Malformed command payload", "error", err)
			return b.unrecognized(ctx, t)
		}
		t.Cmd = cmd
	}

	actor, err := b.Roles.Actor(ctx, in.UserID)
	if err != nil {
		log.Errorw("Failed to resolve role", "error", err)
		b.sayQuietly(ctx, t, constants.MsgGenericError)
		return "error"
	}
	t.Actor = actor
	ctx = auth.WithActor(ctx, actor)

	if s, ok := b.sessions.Get(t.Key()); ok {
		if isCancel(t.Cmd.Verb) {
			return b.outcome(ctx, t, b.cancelFlow(ctx, t))
		}
		if b.accepts(s, t) {
			return b.outcome(ctx, t, b.advance(ctx, t, s))
		}
		if raw == "" {
			// typed text where the step only takes buttons
			b.sayQuietly(ctx, t, constants.MsgChooseOption)
			return b.outcome(ctx, t, b.resume(ctx, t, s))
		}
	}

	if raw == "" {
		// free text with no conversation waiting for it
		if t.Private() {
			b.sayQuietly(ctx, t, constants.MsgTextWithoutFlow)
			return "unrecognized"
		}
		return "ignored"
	}

	route, ok := b.routes.match(raw)
	if !ok {
		log.Infow("No route matched", "error", ErrRoutingMiss)
		return b.unrecognized(ctx, t)
	}

	if route.Role != constants.RoleMember && !actor.Allows(route.Role) {
		log.Infow("Permission denied", "required_role", route.Role, "role", actor.Role)
		return b.outcome(ctx, t, ErrPermissionDenied)
	}

	if route.Private && !t.Private() {
		b.redirector.Redirect(ctx, t)
	}

	return b.outcome(ctx, t, route.Handler(ctx, t))
}

// textCommand extracts "/start" from "/start@bot payload".
func textCommand(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	word, _, _ := strings.Cut(text, " ")
	word, _, _ = strings.Cut(word, "@")
	return strings.ToLower(word)
}

func isCancel(verb string) bool {
	switch verb {
	case constants.VerbCancelFlow, constants.TextCommandCancel, constants.TextCommandCancelAlt:
		return true
	}
	return false
}

func (b *Bot) unrecognized(ctx context.Context, t *Turn) string {
	t.Ack(ctx, constants.MsgUnrecognized)
	if !t.In.IsCallback() {
		b.sayQuietly(ctx, t, constants.MsgUnrecognized)
	}
	return "unrecognized"
}

// outcome turns a handler result into the user-visible notice.
func (b *Bot) outcome(ctx context.Context, t *Turn, err error) string {
	if err == nil {
		return "handled"
	}

	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		b.sayQuietly(ctx, t, verr.Message)
		return "invalid"
	case errors.Is(err, ErrPermissionDenied):
		t.Ack(ctx, constants.MsgPermissionDenied)
		b.sayQuietly(ctx, t, constants.MsgPermissionDenied)
		return "denied"
	case errors.Is(err, services.ErrNotRegistered):
		b.sayQuietly(ctx, t, constants.MsgNotRegistered)
		return "not_registered"
	case errors.Is(err, services.ErrNotFound):
		b.sayQuietly(ctx, t, constants.MsgEventNotFound)
		return "not_found"
	case errors.Is(err, services.ErrEventNotActive):
		b.sayQuietly(ctx, t, constants.MsgEventUnavailable)
		return "not_found"
	}

	logging.Error("Interaction failed",
		"update_id", t.In.UpdateID, "user_id", t.In.UserID, "command", t.Cmd.Verb, "error", err)
	b.sayQuietly(ctx, t, constants.MsgGenericError)
	return "error"
}

// sayQuietly replies and only logs a transport failure.
func (b *Bot) sayQuietly(ctx context.Context, t *Turn, text string) {
	if err := t.Say(ctx, text); err != nil {
		logging.Warn("Failed to deliver reply", "chat_id", t.ChatID(), "error", err)
	}
}
