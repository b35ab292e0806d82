package dispatch

import (
	"context"

	"equion/internal/apperr"
	"equion/internal/service"
	"equion/internal/storage"
)

// withCallerTx resolves token inside a fresh transaction and runs fn with
// the resulting uid, used by commands (subscribe/unsubscribe) whose
// business logic lives in the fabric rather than the service layer.
func (d *Dispatcher) withCallerTx(ctx context.Context, token string, fn func(tx storage.Tx, uid string) error) error {
	return d.Users.Store.WithTx(ctx, func(tx storage.Tx) error {
		caller, err := service.ResolveToken(tx, token)
		if err != nil {
			return err
		}
		return fn(tx, caller.ID)
	})
}

// buildCommands assembles the full command set table (spec §4.1's table
// plus the streaming-only commands it names, plus updateSet per spec §9
// design note (b)).
func (d *Dispatcher) buildCommands() map[string]Command {
	return map[string]Command{
		"signup": {
			Params: []ParamSpec{
				{Name: "username", Kind: KindString},
				{Name: "password", Kind: KindString},
				{Name: "displayName", Kind: KindString},
				{Name: "email", Kind: KindString},
			},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				res, err := d.Users.Signup(ctx, a.String("username"), a.String("password"), a.String("displayName"), a.String("email"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"uid": res.UID, "token": res.Token}, nil
			},
		},
		"login": {
			Params: []ParamSpec{
				{Name: "username", Kind: KindString},
				{Name: "password", Kind: KindString},
			},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				res, err := d.Users.Login(ctx, a.String("username"), a.String("password"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"uid": res.UID, "token": res.Token}, nil
			},
		},
		"logout": {
			Params: []ParamSpec{{Name: "token", Kind: KindString}},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				return nil, d.Users.Logout(ctx, a.String("token"))
			},
		},
		"validateToken": {
			Params: []ParamSpec{{Name: "token", Kind: KindString}},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				uid, err := d.Users.ValidateToken(ctx, a.String("token"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"uid": uid}, nil
			},
		},
		"user": {
			Params: []ParamSpec{{Name: "uid", Kind: KindString}},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				user, err := d.Users.GetUser(ctx, a.String("uid"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"user": user}, nil
			},
		},
		"updateUser": {
			Params: []ParamSpec{
				{Name: "token", Kind: KindString},
				{Name: "displayName", Kind: KindOptionalString},
				{Name: "email", Kind: KindOptionalString},
				{Name: "bio", Kind: KindOptionalString},
			},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				return nil, d.Users.UpdateUser(ctx, a.String("token"), a.OptString("displayName"), a.OptString("email"), a.OptString("bio"))
			},
		},
		"sets": {
			Params: []ParamSpec{{Name: "token", Kind: KindString}},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				sets, err := d.Sets.GetSets(ctx, a.String("token"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"sets": sets}, nil
			},
		},
		"set": {
			Params: []ParamSpec{
				{Name: "token", Kind: KindString},
				{Name: "id", Kind: KindString},
			},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				set, err := d.Sets.GetSet(ctx, a.String("token"), a.String("id"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"set": set}, nil
			},
		},
		"createSet": {
			Params: []ParamSpec{
				{Name: "token", Kind: KindString},
				{Name: "name", Kind: KindString},
				{Name: "icon", Kind: KindOptionalString},
			},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				id, err := d.Sets.CreateSet(ctx, a.String("token"), a.String("name"), a.OptString("icon"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"id": id}, nil
			},
		},
		"createSubset": {
			Params: []ParamSpec{
				{Name: "token", Kind: KindString},
				{Name: "set", Kind: KindString},
				{Name: "name", Kind: KindString},
			},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				id, err := d.Sets.CreateSubset(ctx, a.String("token"), a.String("set"), a.String("name"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"id": id}, nil
			},
		},
		"updateSubset": {
			Params: []ParamSpec{
				{Name: "token", Kind: KindString},
				{Name: "id", Kind: KindString},
				{Name: "name", Kind: KindOptionalString},
				{Name: "delete", Kind: KindOptionalNumeric},
			},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				del := a.OptInt("delete")
				return nil, d.Sets.UpdateSubset(ctx, a.String("token"), a.String("id"), a.OptString("name"), del != nil && *del != 0)
			},
		},
		"updateSet": {
			Params: []ParamSpec{
				{Name: "token", Kind: KindString},
				{Name: "id", Kind: KindString},
				{Name: "name", Kind: KindOptionalString},
				{Name: "delete", Kind: KindOptionalNumeric},
			},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				del := a.OptInt("delete")
				return nil, d.Sets.UpdateSet(ctx, a.String("token"), a.String("id"), a.OptString("name"), del != nil && *del != 0)
			},
		},
		"joinSet": {
			Params: []ParamSpec{
				{Name: "token", Kind: KindString},
				{Name: "set", Kind: KindString},
			},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				id, err := d.Sets.JoinSet(ctx, a.String("token"), a.String("set"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"id": id}, nil
			},
		},
		"leaveSet": {
			Params: []ParamSpec{
				{Name: "token", Kind: KindString},
				{Name: "set", Kind: KindString},
			},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				return nil, d.Sets.LeaveSet(ctx, a.String("token"), a.String("set"))
			},
		},
		"createInvite": {
			Params: []ParamSpec{
				{Name: "token", Kind: KindString},
				{Name: "set", Kind: KindString},
				{Name: "duration", Kind: KindOptionalNumeric},
			},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				code, err := d.Sets.CreateInvite(ctx, a.String("token"), a.String("set"), a.OptInt("duration"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"code": code}, nil
			},
		},
		"revokeInvite": {
			Params: []ParamSpec{
				{Name: "token", Kind: KindString},
				{Name: "id", Kind: KindString},
			},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				return nil, d.Sets.RevokeInvite(ctx, a.String("token"), a.String("id"))
			},
		},
		"invites": {
			Params: []ParamSpec{
				{Name: "token", Kind: KindString},
				{Name: "set", Kind: KindString},
			},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				invites, err := d.Sets.GetInvites(ctx, a.String("token"), a.String("set"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"invites": invites}, nil
			},
		},
		"messages": {
			Params: []ParamSpec{
				{Name: "token", Kind: KindString},
				{Name: "subset", Kind: KindString},
				{Name: "before", Kind: KindOptionalString},
				{Name: "limit", Kind: KindOptionalNumeric},
			},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				msgs, err := d.Messages.List(ctx, a.String("token"), a.String("subset"), a.OptString("before"), a.OptInt("limit"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"messages": msgs}, nil
			},
		},
		"sendMessage": {
			Params: []ParamSpec{
				{Name: "token", Kind: KindString},
				{Name: "subset", Kind: KindString},
				{Name: "message", Kind: KindString},
			},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				attachment, err := extractAttachment(a)
				if err != nil {
					return nil, err
				}
				return nil, d.Messages.Send(ctx, a.String("token"), a.String("subset"), a.String("message"), attachment)
			},
		},
		"updateMessage": {
			Params: []ParamSpec{
				{Name: "token", Kind: KindString},
				{Name: "id", Kind: KindString},
				{Name: "message", Kind: KindString},
			},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				return nil, d.Messages.Update(ctx, a.String("token"), a.String("id"), a.String("message"))
			},
		},
		"deleteMessage": {
			Params: []ParamSpec{
				{Name: "token", Kind: KindString},
				{Name: "id", Kind: KindString},
			},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				return nil, d.Messages.Delete(ctx, a.String("token"), a.String("id"))
			},
		},
		"typing": {
			Params: []ParamSpec{
				{Name: "token", Kind: KindString},
				{Name: "subset", Kind: KindString},
			},
			Handle: func(ctx context.Context, _ Call, a *Args) (map[string]any, error) {
				return nil, d.Messages.Typing(ctx, a.String("token"), a.String("subset"))
			},
		},

		// Streaming-only commands (spec §4.1, §4.6).
		"subscribe": {
			StreamOnly: true,
			Params: []ParamSpec{
				{Name: "token", Kind: KindString},
				{Name: "set", Kind: KindString},
			},
			Handle: func(ctx context.Context, call Call, a *Args) (map[string]any, error) {
				return nil, d.withCallerTx(ctx, a.String("token"), func(tx storage.Tx, uid string) error {
					return d.Fabric.Subscribe(tx, uid, a.String("set"), call.Addr)
				})
			},
		},
		"unsubscribe": {
			StreamOnly: true,
			Params: []ParamSpec{
				{Name: "token", Kind: KindString},
				{Name: "set", Kind: KindString},
			},
			Handle: func(ctx context.Context, call Call, a *Args) (map[string]any, error) {
				return nil, d.withCallerTx(ctx, a.String("token"), func(tx storage.Tx, uid string) error {
					return d.Fabric.Unsubscribe(tx, uid, a.String("set"), call.Addr)
				})
			},
		},
		"connectUserVoice": {
			StreamOnly: true,
			Params: []ParamSpec{
				{Name: "token", Kind: KindString},
				{Name: "peerId", Kind: KindString},
			},
			Handle: func(ctx context.Context, call Call, a *Args) (map[string]any, error) {
				_, err := d.Voice.ConnectUserVoice(ctx, a.String("token"), a.String("peerId"), call.Addr)
				return nil, err
			},
		},
		"disconnectUserVoice": {
			StreamOnly: true,
			Params:     []ParamSpec{{Name: "token", Kind: KindString}},
			Handle: func(ctx context.Context, call Call, a *Args) (map[string]any, error) {
				return nil, d.Voice.DisconnectUserVoice(ctx, a.String("token"))
			},
		},
		"connectToVoiceChannel": {
			StreamOnly: true,
			Params: []ParamSpec{
				{Name: "token", Kind: KindString},
				{Name: "channel", Kind: KindString},
			},
			Handle: func(ctx context.Context, call Call, a *Args) (map[string]any, error) {
				return nil, d.Voice.ConnectToVoiceChannel(ctx, a.String("token"), a.String("channel"))
			},
		},
		"leaveVoiceChannel": {
			StreamOnly: true,
			Params:     []ParamSpec{{Name: "token", Kind: KindString}},
			Handle: func(ctx context.Context, call Call, a *Args) (map[string]any, error) {
				return nil, d.Voice.LeaveVoiceChannel(ctx, a.String("token"))
			},
		},
		"ping": {
			StreamOnly: true,
			Handle: func(ctx context.Context, call Call, a *Args) (map[string]any, error) {
				return nil, nil
			},
		},
	}
}

// extractAttachment pulls the optional nested attachment object out of
// sendMessage's params (spec §4.1 "?attachment.name, ?attachment.data").
func extractAttachment(a *Args) (*service.AttachmentInput, error) {
	raw, present := a.Raw("attachment")
	if !present {
		return nil, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, apperr.Invalid("attachment")
	}

	name, _ := obj["name"].(string)
	data, _ := obj["data"].(string)
	if name == "" {
		return nil, apperr.Missing("attachment.name")
	}
	if data == "" {
		return nil, apperr.Missing("attachment.data")
	}
	return &service.AttachmentInput{Name: name, Data: data}, nil
}
