package dispatch

import (
	"context"

	"equion/internal/apperr"
	"equion/internal/fabric"
	"equion/internal/service"
	"equion/internal/voice"
)

// Call carries the per-invocation context a handler needs beyond its
// parameters: the live-connection address for streaming-only commands
// (empty for HTTP calls), and an optional requestId to echo back.
type Call struct {
	Addr      string
	RequestID *string
}

// HandlerFunc is one command's business logic, already past parameter
// extraction. It returns the response's field map (success:true is added by
// the caller) or an error (success:false, error:<msg>).
type HandlerFunc func(ctx context.Context, call Call, args *Args) (map[string]any, error)

// Command is one dispatcher table entry (spec §4.1: "a static registry …
// parameter spec … response shape").
type Command struct {
	Params     []ParamSpec
	StreamOnly bool
	Handle     HandlerFunc
}

// Dispatcher is the static command registry plus the services it wires into
// handlers (spec §9 "Model handlers as a static table of {name,
// parameter-spec, handler} entries").
type Dispatcher struct {
	commands map[string]Command

	Users    *service.Users
	Sets     *service.Sets
	Messages *service.Messages
	Files    *service.Files
	Voice    *service.Voice
	Fabric   *fabric.Fabric
	VoiceReg *voice.Registry
}

// New builds the Dispatcher and its command table.
func New(users *service.Users, sets *service.Sets, messages *service.Messages, files *service.Files, voiceSvc *service.Voice, f *fabric.Fabric, vr *voice.Registry) *Dispatcher {
	d := &Dispatcher{
		Users:    users,
		Sets:     sets,
		Messages: messages,
		Files:    files,
		Voice:    voiceSvc,
		Fabric:   f,
		VoiceReg: vr,
	}
	d.commands = d.buildCommands()
	return d
}

// Result is a fully-formed dispatcher response (spec §6 envelope shapes).
type Result struct {
	Success bool
	Fields  map[string]any
	Error   string
}

// Dispatch resolves name against the command table, extracts its declared
// parameters, and invokes its handler (spec §4.1 dispatcher contract).
// streaming reports whether the call arrived over the live channel; HTTP
// calls may not invoke stream-only commands.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, raw map[string]any, call Call, streaming bool) Result {
	cmd, ok := d.commands[name]
	if !ok {
		return errorResult(apperr.ErrInvalidCommand)
	}
	if cmd.StreamOnly && !streaming {
		return errorResult(apperr.ErrInvalidCommand)
	}

	args, err := Extract(raw, cmd.Params)
	if err != nil {
		return errorResult(err)
	}

	fields, err := cmd.Handle(ctx, call, args)
	if err != nil {
		return errorResult(err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return Result{Success: true, Fields: fields}
}

func errorResult(err error) Result {
	return Result{Success: false, Error: err.Error()}
}
