package gameserver

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gamemaster/internal/game/agent"
	"github.com/cory-johannsen/gamemaster/internal/game/llm"
	"github.com/cory-johannsen/gamemaster/internal/game/message"
	"github.com/cory-johannsen/gamemaster/internal/game/session"
	"github.com/cory-johannsen/gamemaster/internal/game/verify"
)

// startDirective is the fixed instruction sent to a freshly created agent.
const startDirective = "Do not reply to this instruction with an acknowledgement. Start the game."

// Client-facing error texts. Sent on the error envelope, never broadcast.
const (
	errTextNoSession  = "no active game; send an initialization message first"
	errTextNoResponse = "the host could not respond; please try again"
)

// Dispatcher routes decoded envelopes through the session state machine.
// A room is UNINITIALIZED until its first successful initialization, then
// ACTIVE; chat loops on ACTIVE and answers produce unicast results.
//
// No branch terminates the connection or the dispatch loop: malformed input
// is dropped, and every downstream failure maps to a log line plus, where a
// well-formed request deserves a reply, an error envelope to the originator.
type Dispatcher struct {
	logger      *zap.Logger
	registry    *Registry
	sessions    *session.Manager
	factory     *agent.Factory
	verifier    verify.Verifier
	provider    agent.ProviderType
	defaultRoom string
}

// NewDispatcher wires the dispatch state machine.
//
// Precondition: all arguments must be non-nil / non-empty.
// Postcondition: Envelopes without a room_id resolve to a room key generated
// for this dispatcher instance.
func NewDispatcher(logger *zap.Logger, registry *Registry, sessions *session.Manager, factory *agent.Factory, verifier verify.Verifier, provider agent.ProviderType) *Dispatcher {
	return &Dispatcher{
		logger:      logger,
		registry:    registry,
		sessions:    sessions,
		factory:     factory,
		verifier:    verifier,
		provider:    provider,
		defaultRoom: uuid.NewString(),
	}
}

// Dispatch handles one inbound frame from conn. It is total over its input:
// it never returns an error and never panics on malformed data.
func (d *Dispatcher) Dispatch(ctx context.Context, conn Conn, data []byte) {
	env, err := message.Decode(data)
	if err != nil {
		d.logger.Warn("dropping envelope", zap.Error(err))
		return
	}

	room := env.RoomID
	if room == "" {
		room = d.defaultRoom
	}

	switch env.Kind {
	case message.KindInitialization:
		d.handleInitialization(ctx, conn, env, room)
	case message.KindChat:
		d.handleChat(ctx, conn, env, room)
	case message.KindAnswer:
		d.handleAnswer(ctx, conn, env, room)
	default:
		// result and error are outbound-only.
		d.logger.Warn("dropping inbound envelope of outbound kind",
			zap.String("kind", string(env.Kind)),
			zap.String("sender", env.Sender),
		)
	}
}

// handleInitialization creates the room's agent on first use and broadcasts
// the opening text. A repeat initialization re-broadcasts the stored opening
// without another provider call, keeping the operation observably idempotent.
func (d *Dispatcher) handleInitialization(ctx context.Context, conn Conn, env message.Envelope, room string) {
	a, created, err := d.sessions.GetOrCreate(room, env.GameType, d.provider, d.factory)
	if err != nil {
		// Unsupported game type or provider; the room stays uninitialized.
		d.logger.Error("creating agent",
			zap.String("room", room),
			zap.String("game_type", string(env.GameType)),
			zap.Error(err),
		)
		return
	}

	opening := a.OpeningContext()
	if created {
		opening, err = a.InitializeTheme(ctx, startDirective)
		if err != nil {
			// Release the half-built session so the room stays
			// uninitialized and a retry creates a fresh agent.
			_ = d.sessions.End(room)
			d.logger.Error("initializing theme",
				zap.String("room", room),
				zap.Bool("timeout", errors.Is(err, llm.ErrTimeout)),
				zap.Error(err),
			)
			d.sendError(ctx, conn, errTextNoResponse, env.RoomID)
			return
		}
		d.logger.Info("game started",
			zap.String("room", room),
			zap.String("game_type", string(env.GameType)),
			zap.String("sender", env.Sender),
		)
	} else {
		if opening == "" {
			// A concurrent creator holds the agent but its theme
			// initialization has not succeeded. Reply with the
			// no-response error instead of an empty broadcast.
			d.logger.Warn("initialization raced an unthemed agent",
				zap.String("room", room),
				zap.String("sender", env.Sender),
			)
			d.sendError(ctx, conn, errTextNoResponse, env.RoomID)
			return
		}
		d.logger.Info("restating opening for initialized room",
			zap.String("room", room),
			zap.String("sender", env.Sender),
		)
	}

	d.broadcast(ctx, message.NewBotChat(opening, env.RoomID))
}

// handleChat forwards a player message to the room's agent and broadcasts
// the reply.
func (d *Dispatcher) handleChat(ctx context.Context, conn Conn, env message.Envelope, room string) {
	a, ok := d.sessions.Get(room)
	if !ok {
		d.logger.Warn("chat before initialization",
			zap.String("room", room),
			zap.String("sender", env.Sender),
			zap.Error(session.ErrMissingSession),
		)
		d.sendError(ctx, conn, errTextNoSession, env.RoomID)
		return
	}

	response, err := a.GetResponse(ctx, env.Message)
	if err != nil {
		d.logger.Error("getting agent response",
			zap.String("room", room),
			zap.String("sender", env.Sender),
			zap.Bool("timeout", errors.Is(err, llm.ErrTimeout)),
			zap.Error(err),
		)
		d.sendError(ctx, conn, errTextNoResponse, env.RoomID)
		return
	}

	d.broadcast(ctx, message.NewBotChat(response, env.RoomID))
}

// handleAnswer verifies a claimed answer and unicasts the verdict to the
// answering connection. Verification failures fall back to a failed result
// instead of silence.
func (d *Dispatcher) handleAnswer(ctx context.Context, conn Conn, env message.Envelope, room string) {
	if _, ok := d.sessions.Get(room); !ok {
		d.logger.Warn("answer before initialization",
			zap.String("room", room),
			zap.String("sender", env.Sender),
			zap.Error(session.ErrMissingSession),
		)
		d.sendError(ctx, conn, errTextNoSession, env.RoomID)
		return
	}

	outcome, err := d.verifier.Verify(ctx, env.Message)
	if err != nil {
		d.logger.Error("verifying answer",
			zap.String("room", room),
			zap.String("sender", env.Sender),
			zap.Bool("timeout", errors.Is(err, verify.ErrTimeout)),
			zap.Error(err),
		)
		outcome = verify.OutcomeFailed
	}

	d.logger.Info("answer verified",
		zap.String("room", room),
		zap.String("sender", env.Sender),
		zap.String("outcome", string(outcome)),
	)
	d.send(ctx, conn, message.NewResult(outcome == verify.OutcomeSuccess, env.RoomID))
}

// EndEmptySessions releases all sessions when no connections remain. The
// websocket handler invokes it after each disconnect.
func (d *Dispatcher) EndEmptySessions() {
	if d.registry.Len() == 0 && d.sessions.Count() > 0 {
		d.logger.Info("last connection left, ending sessions",
			zap.Int("sessions", d.sessions.Count()),
		)
		d.sessions.Reset()
	}
}

func (d *Dispatcher) broadcast(ctx context.Context, env message.Envelope) {
	data, err := message.Encode(env)
	if err != nil {
		d.logger.Error("encoding broadcast envelope", zap.Error(err))
		return
	}
	attempts := d.registry.Broadcast(ctx, data)
	d.logger.Debug("broadcast delivered",
		zap.String("kind", string(env.Kind)),
		zap.Int("attempts", attempts),
	)
}

func (d *Dispatcher) send(ctx context.Context, conn Conn, env message.Envelope) {
	data, err := message.Encode(env)
	if err != nil {
		d.logger.Error("encoding envelope", zap.Error(err))
		return
	}
	if err := d.registry.SendDirect(ctx, conn, data); err != nil {
		d.logger.Warn("direct send failed", zap.Error(err))
	}
}

func (d *Dispatcher) sendError(ctx context.Context, conn Conn, text, roomID string) {
	d.send(ctx, conn, message.NewError(text, roomID))
}
