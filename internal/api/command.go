package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"equion/internal/apperr"
	"equion/internal/dispatch"
)

// CommandHandler addresses every dispatcher command at /api/{command} (spec
// §4.9 "every API command is addressable as /api/{command} with a JSON
// body"). The request body is the params object directly — no envelope,
// since the command name is the URL path tail (spec §6).
type CommandHandler struct {
	dsp *dispatch.Dispatcher
}

// NewCommandHandler constructs a CommandHandler.
func NewCommandHandler(dsp *dispatch.Dispatcher) *CommandHandler {
	return &CommandHandler{dsp: dsp}
}

func (h *CommandHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	command := chi.URLParam(r, "command")

	var params map[string]any
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			badRequest(w, apperr.ErrInvalidJSON.Error())
			return
		}
	}
	if params == nil {
		params = map[string]any{}
	}

	result := h.dsp.Dispatch(r.Context(), command, params, dispatch.Call{}, false)

	fields := map[string]any{"success": result.Success}
	status := http.StatusOK
	if result.Success {
		for k, v := range result.Fields {
			fields[k] = v
		}
	} else {
		fields["error"] = result.Error
		status = http.StatusBadRequest
	}
	writeJSON(w, status, fields)
}
