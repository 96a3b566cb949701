package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/pgold-labs/staking-ledger/internal/db/model"
	"github.com/pgold-labs/staking-ledger/internal/ledger"
	"github.com/pgold-labs/staking-ledger/internal/types"
)

const defaultEventsLimit = 50

type registerRequest struct {
	Address  string `json:"address"`
	Referrer string `json:"referrer,omitempty"`
}

type stakeRequest struct {
	Address string `json:"address"`
	Amount  string `json:"amountToken"`
	Option  uint8  `json:"option"`
}

type stakeResponse struct {
	StakeID uint64 `json:"stakeId"`
}

type unstakeRequest struct {
	Address string `json:"address"`
	StakeID uint64 `json:"stakeId"`
}

type unstakeResponse struct {
	Payout string `json:"payout"`
}

type userResponse struct {
	Referrer       string `json:"referrer"`
	AmountReferees uint64 `json:"amountReferees"`
	ActiveStakes   uint64 `json:"activeStakes"`
	IsRegistered   bool   `json:"isRegistered"`
}

type stakeDetailsResponse struct {
	StakeID        uint64 `json:"stakeId"`
	AmountStaked   string `json:"amountStaked"`
	CurrentRewards string `json:"currentRewards"`
	TimeStaked     int64  `json:"timeStaked"`
	StakeEndTime   int64  `json:"stakeEndTime"`
	Rate           int64  `json:"rate"`
	Option         uint8  `json:"option"`
	Claimed        bool   `json:"claimed"`
	CanClaim       bool   `json:"canClaim"`
}

type rewardsResponse struct {
	CurrentRewards string `json:"currentRewards"`
	StakeEndTime   int64  `json:"stakeEndTime"`
}

type eventResponse struct {
	Seq           uint64 `json:"seq"`
	Type          string `json:"type"`
	User          string `json:"user"`
	Referrer      string `json:"referrer,omitempty"`
	StakeID       uint64 `json:"stakeId,omitempty"`
	Amount        string `json:"amountToken"`
	Timestamp     int64  `json:"timestamp"`
	Rate          int64  `json:"rate,omitempty"`
	Option        uint8  `json:"option,omitempty"`
	PreviousOwner string `json:"previousOwner,omitempty"`
	NewOwner      string `json:"newOwner,omitempty"`
}

type statsResponse struct {
	TotalUsers   uint64 `json:"totalUsers"`
	ActiveStakes uint64 `json:"activeStakes"`
	TotalStaked  string `json:"totalStaked"`
	Owner        string `json:"owner"`
	Pool         string `json:"pool"`
	Paused       bool   `json:"paused"`
}

type listResponse[T any] struct {
	Data []T `json:"data"`
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Healthcheck failed")
		writeError(w, types.NewError(
			http.StatusServiceUnavailable, types.InternalServiceError, err,
		))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	caller, err := parseAddress("address", req.Address)
	if err != nil {
		writeError(w, err)
		return
	}

	referrer := common.Address{}
	if req.Referrer != "" {
		if referrer, err = parseAddress("referrer", req.Referrer); err != nil {
			writeError(w, err)
			return
		}
	}

	if err := s.service.RegisterUser(r.Context(), caller, referrer); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(s.service.GetUserInfo(caller)))
}

func (s *Server) handleStake(w http.ResponseWriter, r *http.Request) {
	var req stakeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	caller, err := parseAddress("address", req.Address)
	if err != nil {
		writeError(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	stakeID, err := s.service.Stake(r.Context(), caller, amount, types.StakeOption(req.Option))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stakeResponse{StakeID: stakeID})
}

func (s *Server) handleUnstake(w http.ResponseWriter, r *http.Request) {
	var req unstakeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	caller, err := parseAddress("address", req.Address)
	if err != nil {
		writeError(w, err)
		return
	}

	payout, err := s.service.Unstake(r.Context(), caller, req.StakeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, unstakeResponse{Payout: payout.String()})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(s.service.GetUserInfo(addr)))
}

func (s *Server) handleGetStake(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		writeError(w, err)
		return
	}
	stakeID, err := pathStakeID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	details, err := s.service.GetStakeDetails(addr, stakeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStakeDetailsResponse(*details))
}

func (s *Server) handleGetStakeRewards(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		writeError(w, err)
		return
	}
	stakeID, err := pathStakeID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rewards, err := s.service.CalculateRewards(addr, stakeID)
	if err != nil {
		writeError(w, err)
		return
	}
	endTime, err := s.service.GetStakeEndTime(addr, stakeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rewardsResponse{
		CurrentRewards: rewards.String(),
		StakeEndTime:   endTime,
	})
}

func (s *Server) handleListStakes(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		writeError(w, err)
		return
	}

	stakes := s.service.ListStakes(addr)
	data := make([]stakeDetailsResponse, 0, len(stakes))
	for _, details := range stakes {
		data = append(data, toStakeDetailsResponse(details))
	}
	writeJSON(w, http.StatusOK, listResponse[stakeDetailsResponse]{Data: data})
}

func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		writeError(w, err)
		return
	}

	limit := int64(defaultEventsLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil || parsed <= 0 {
			writeError(w, types.NewError(
				http.StatusBadRequest, types.ValidationError,
				fmt.Errorf("invalid limit: %s", raw),
			))
			return
		}
		limit = parsed
	}

	events, dbErr := s.service.GetEventsByUser(r.Context(), addr, limit)
	if dbErr != nil {
		log.Ctx(r.Context()).Error().Err(dbErr).Msg("Failed to fetch user events")
		writeError(w, types.NewError(
			http.StatusInternalServerError, types.InternalServiceError, dbErr,
		))
		return
	}

	data := make([]eventResponse, 0, len(events))
	for i := range events {
		data = append(data, toEventResponse(&events[i]))
	}
	writeJSON(w, http.StatusOK, listResponse[eventResponse]{Data: data})
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	totals := s.service.OverallTotals()
	writeJSON(w, http.StatusOK, statsResponse{
		TotalUsers:   totals.TotalUsers,
		ActiveStakes: totals.ActiveStakes,
		TotalStaked:  totals.TotalStaked.String(),
		Owner:        s.service.Owner().Hex(),
		Pool:         s.service.Pool().Hex(),
		Paused:       s.service.IsPaused(),
	})
}

func toUserResponse(info ledger.UserInfo) userResponse {
	return userResponse{
		Referrer:       info.Referrer.Hex(),
		AmountReferees: info.RefereeCount,
		ActiveStakes:   info.ActiveStakes,
		IsRegistered:   info.IsRegistered,
	}
}

func toStakeDetailsResponse(details ledger.StakeDetails) stakeDetailsResponse {
	return stakeDetailsResponse{
		StakeID:        details.StakeID,
		AmountStaked:   details.AmountStaked.String(),
		CurrentRewards: details.CurrentRewards.String(),
		TimeStaked:     details.TimeStaked,
		StakeEndTime:   details.StakeEndTime,
		Rate:           details.Rate,
		Option:         uint8(details.Option),
		Claimed:        details.Claimed,
		CanClaim:       details.CanClaim,
	}
}

func toEventResponse(doc *model.EventDocument) eventResponse {
	return eventResponse{
		Seq:           doc.Seq,
		Type:          doc.Type,
		User:          doc.User,
		Referrer:      doc.Referrer,
		StakeID:       doc.StakeID,
		Amount:        doc.Amount,
		Timestamp:     doc.Timestamp,
		Rate:          doc.Rate,
		Option:        doc.Option,
		PreviousOwner: doc.PreviousOwner,
		NewOwner:      doc.NewOwner,
	}
}
