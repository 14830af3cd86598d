package handler

import (
	"net/http"

	"github.com/testforge-labs/testforge/internal/cppbuild"
)

// EnvironmentHandler reports which build tools are present, so clients can
// tell whether generation runs will be verifiable on this deployment.
type EnvironmentHandler struct{}

func NewEnvironmentHandler() *EnvironmentHandler {
	return &EnvironmentHandler{}
}

func (h *EnvironmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	tools := cppbuild.Available()

	ready := true
	for _, found := range tools {
		if !found {
			ready = false
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tools": tools,
		"ready": ready,
	})
}
