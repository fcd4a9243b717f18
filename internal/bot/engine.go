package bot

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/logging"
	"bode-andarilho/agenda/internal/models/dtos"
)

// stateDone ends a flow and discards its session.
const stateDone = "done"

// Step collects one answer. It accepts typed text when Text is set and the
// listed button verbs (choose when none are listed).
type Step struct {
	Name  string
	Text  bool
	Verbs []string

	// Choices, when set, limits choose to the values the step offers for s.
	// A step offering none takes no choose press at all.
	Choices func(s *Session) []choice

	Prompt func(ctx context.Context, s *Session) (dtos.OutboundMessage, error)
	// Receive validates value, stores it in s and names the next step. Once
	// its write has committed it returns stateDone, with any later error.
	Receive func(ctx context.Context, t *Turn, s *Session, value string) (string, error)
}

func (st *Step) acceptsCommand(s *Session, cmd Command) bool {
	if len(st.Verbs) > 0 {
		return slices.Contains(st.Verbs, cmd.Verb)
	}
	if cmd.Verb != constants.VerbChoose {
		return false
	}
	return st.Choices == nil || hasChoice(st.Choices(s), cmd.Arg(0))
}

// Flow is a fixed sequence of steps ending in one domain write.
type Flow struct {
	Name string
	Role constants.Role
	// Begin runs before the first prompt and may pick another first step or
	// finish at once with stateDone.
	Begin func(ctx context.Context, t *Turn, s *Session) (string, error)
	Steps []*Step

	index map[string]*Step
}

func (f *Flow) compile() error {
	if len(f.Steps) == 0 {
		return fmt.Errorf("flow %s has no steps", f.Name)
	}
	if f.Role == "" {
		f.Role = constants.RoleMember
	}
	f.index = make(map[string]*Step, len(f.Steps))
	for _, st := range f.Steps {
		if st.Name == stateDone || f.index[st.Name] != nil {
			return fmt.Errorf("flow %s: bad step name %q", f.Name, st.Name)
		}
		if st.Prompt == nil || st.Receive == nil {
			return fmt.Errorf("flow %s: step %s incomplete", f.Name, st.Name)
		}
		f.index[st.Name] = st
	}
	return nil
}

func (f *Flow) first() string {
	return f.Steps[0].Name
}

func (b *Bot) stepOf(s *Session) (*Flow, *Step, bool) {
	flow, ok := b.flows[s.Flow]
	if !ok {
		return nil, nil, false
	}
	step, ok := flow.index[s.State]
	return flow, step, ok
}

// accepts reports whether the interaction answers the session's current step.
func (b *Bot) accepts(s *Session, t *Turn) bool {
	_, step, ok := b.stepOf(s)
	if !ok {
		// let advance abort the broken session
		return true
	}
	if t.In.Command == "" {
		return step.Text && textCommand(t.In.Text) == ""
	}
	return step.acceptsCommand(s, t.Cmd)
}

// startFlow opens a session for name in t's chat. An active session there
// is never replaced: the user is asked to finish or cancel it first.
func (b *Bot) startFlow(ctx context.Context, t *Turn, name string, seed map[string]string) error {
	flow, ok := b.flows[name]
	if !ok {
		return fmt.Errorf("unknown flow %q", name)
	}
	if !t.Actor.Allows(flow.Role) {
		return ErrPermissionDenied
	}

	key := t.Key()
	if current, ok := b.sessions.Get(key); ok {
		logging.Info("Flow start rejected, session active",
			"user_id", key.UserID, "chat_id", key.ChatID, "active_flow", current.Flow, "requested_flow", name)
		b.Metrics.CountFlowStep(name, "rejected_busy")
		return t.Send(ctx, dtos.OutboundMessage{
			Text:    constants.MsgFlowBusy,
			Buttons: [][]dtos.Button{{cancelFlowButton()}},
		})
	}

	s := &Session{Key: key, Flow: name, Fields: maps.Clone(seed)}
	if s.Fields == nil {
		s.Fields = map[string]string{}
	}

	state := flow.first()
	if flow.Begin != nil {
		next, err := flow.Begin(ctx, t, s)
		if err != nil {
			return b.stepFailed(ctx, t, flow, s, err, true)
		}
		state = next
	}
	b.Metrics.CountFlowStep(name, "started")
	if state == stateDone {
		b.Metrics.CountFlowStep(name, "completed")
		return nil
	}
	return b.enter(ctx, t, s, state)
}

// resume prompts the current step again.
func (b *Bot) resume(ctx context.Context, t *Turn, s *Session) error {
	flow, step, ok := b.stepOf(s)
	if !ok {
		return b.abort(ctx, t, s, corrupt("unknown state %s/%s", s.Flow, s.State))
	}
	if !t.Actor.Allows(flow.Role) {
		b.sessions.Delete(s.Key)
		return ErrPermissionDenied
	}
	msg, err := step.Prompt(ctx, s)
	if err != nil {
		return b.stepFailed(ctx, t, flow, s, err, true)
	}
	return t.Send(ctx, msg)
}

// advance feeds the interaction to the current step. The step works on a
// copy; the stored session only changes when the step succeeds.
func (b *Bot) advance(ctx context.Context, t *Turn, s *Session) error {
	flow, step, ok := b.stepOf(s)
	if !ok {
		return b.abort(ctx, t, s, corrupt("unknown state %s/%s", s.Flow, s.State))
	}
	if !t.Actor.Allows(flow.Role) {
		b.sessions.Delete(s.Key)
		return ErrPermissionDenied
	}

	value := strings.TrimSpace(t.In.Text)
	if t.In.Command != "" {
		value = t.Cmd.Arg(0)
	}

	work := s.Clone()
	next, err := step.Receive(ctx, t, work, value)
	if next == stateDone {
		// committed: the session goes even if the reply failed
		b.sessions.Delete(s.Key)
		b.Metrics.CountFlowStep(flow.Name, "completed")
		return err
	}
	if err != nil {
		return b.stepFailed(ctx, t, flow, s, err, false)
	}

	b.Metrics.CountFlowStep(flow.Name, "advanced")
	return b.enter(ctx, t, work, next)
}

// enter stores the session at state and shows that step's prompt.
func (b *Bot) enter(ctx context.Context, t *Turn, s *Session, state string) error {
	flow := b.flows[s.Flow]
	step, ok := flow.index[state]
	if !ok {
		return b.abort(ctx, t, s, corrupt("flow %s has no step %s", s.Flow, state))
	}
	s.State = state
	msg, err := step.Prompt(ctx, s)
	if err != nil {
		return b.stepFailed(ctx, t, flow, s, err, true)
	}
	b.sessions.Put(s)
	return t.Reply(ctx, msg)
}

// stepFailed applies the failure policy: invalid input asks again, a
// corrupt session is dropped with an apology, anything else leaves the
// stored session as it was and bubbles up. With fresh set there is no
// earlier prompt to repeat, so invalid input is only reported.
func (b *Bot) stepFailed(ctx context.Context, t *Turn, flow *Flow, s *Session, err error, fresh bool) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		b.Metrics.CountFlowStep(flow.Name, "reprompt")
		if fresh {
			return err
		}
		if sayErr := t.Say(ctx, verr.Message); sayErr != nil {
			return sayErr
		}
		return b.resume(ctx, t, s)
	case errors.Is(err, errSessionCorrupt):
		return b.abort(ctx, t, s, err)
	case errors.Is(err, ErrPermissionDenied):
		b.sessions.Delete(s.Key)
		return err
	}
	b.Metrics.CountFlowStep(flow.Name, "failed")
	return err
}

func (b *Bot) abort(ctx context.Context, t *Turn, s *Session, cause error) error {
	logging.Warn("Flow aborted", "flow", s.Flow, "state", s.State, "user_id", s.Key.UserID, "error", cause)
	b.sessions.Delete(s.Key)
	b.Metrics.CountFlowStep(s.Flow, "aborted")
	return t.Say(ctx, constants.MsgFlowAborted)
}

// cancelFlow drops the session in t's chat, if any.
func (b *Bot) cancelFlow(ctx context.Context, t *Turn) error {
	s, ok := b.sessions.Get(t.Key())
	if !ok {
		return t.Say(ctx, constants.MsgNothingToCancelFlow)
	}
	b.sessions.Delete(s.Key)
	b.Metrics.CountFlowStep(s.Flow, "cancelled")
	return t.Reply(ctx, dtos.OutboundMessage{
		Text:    constants.MsgFlowCancelled,
		Buttons: [][]dtos.Button{{mainMenuButton()}},
	})
}

func cancelFlowButton() dtos.Button {
	return dtos.Button{Label: "❌ Cancelar", Command: constants.VerbCancelFlow}
}
