package api

import (
	"net/http"
)

type adminRequest struct {
	Caller string `json:"caller"`
}

type setPoolRequest struct {
	Caller      string `json:"caller"`
	PoolAddress string `json:"poolAddress"`
}

type transferOwnershipRequest struct {
	Caller   string `json:"caller"`
	NewOwner string `json:"newOwner"`
}

type adminStateResponse struct {
	Owner  string `json:"owner"`
	Pool   string `json:"pool"`
	Paused bool   `json:"paused"`
}

func (s *Server) adminState() adminStateResponse {
	return adminStateResponse{
		Owner:  s.service.Owner().Hex(),
		Pool:   s.service.Pool().Hex(),
		Paused: s.service.IsPaused(),
	}
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	caller, err := parseAddress("caller", req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.service.PauseContract(r.Context(), caller); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.adminState())
}

func (s *Server) handleUnpause(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	caller, err := parseAddress("caller", req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.service.UnpauseContract(r.Context(), caller); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.adminState())
}

func (s *Server) handleSetPoolAddress(w http.ResponseWriter, r *http.Request) {
	var req setPoolRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	caller, err := parseAddress("caller", req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}
	pool, err := parseAddress("poolAddress", req.PoolAddress)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.service.SetPoolAddress(r.Context(), caller, pool); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.adminState())
}

func (s *Server) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	var req transferOwnershipRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	caller, err := parseAddress("caller", req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}
	newOwner, err := parseAddress("newOwner", req.NewOwner)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.service.TransferOwnership(r.Context(), caller, newOwner); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.adminState())
}

func (s *Server) handleRenounceOwnership(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	caller, err := parseAddress("caller", req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.service.RenounceOwnership(r.Context(), caller); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.adminState())
}
