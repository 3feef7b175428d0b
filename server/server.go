// Package server exposes the match engine over HTTP.
//
// The API is JSON: five match routes under /api/matches plus an
// administrative verifying key upload at /api/vk. Byte-valued fields
// (commitments, seeds, proof points, public inputs) travel hex encoded and
// tolerate a 0x prefix on input. The verifying key upload accepts the JSON
// artifact emitted by snarkjs.
package server

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/briwylde08/dead-mans-draw/auth"
	"github.com/briwylde08/dead-mans-draw/groth16"
	"github.com/briwylde08/dead-mans-draw/logger"
	"github.com/briwylde08/dead-mans-draw/match"
)

// maxVKBody bounds the verifying key upload size.
const maxVKBody = 1 << 20

// Server holds the HTTP handlers over a match engine.
type Server struct {
	engine *match.Engine
	log    zerolog.Logger
}

// New returns a Server driving engine.
func New(engine *match.Engine) *Server {
	return &Server{
		engine: engine,
		log:    logger.Logger().With().Str("component", "server").Logger(),
	}
}

// Register mounts the API under /api.
func (s *Server) Register(e *echo.Echo) {
	api := e.Group("/api")

	matches := api.Group("/matches")
	matches.POST("", s.createMatch)
	matches.GET("/:id", s.getMatch)
	matches.POST("/:id/join", s.joinMatch)
	matches.POST("/:id/reveal", s.revealSeed)
	matches.POST("/:id/settle", s.settleMatch)

	api.PUT("/vk", s.putVerifyingKey)
}

type createRequest struct {
	SessionID  uint32 `json:"session_id"`
	Player1    string `json:"player1"`
	SeedCommit string `json:"seed_commit"`
}

type joinRequest struct {
	Player2    string `json:"player2"`
	SeedCommit string `json:"seed_commit"`
}

type revealRequest struct {
	Player string `json:"player"`
	Seed   string `json:"seed"`
}

type settleRequest struct {
	Proof        proofPayload  `json:"proof"`
	PublicInputs inputsPayload `json:"public_inputs"`
}

type proofPayload struct {
	PiA string `json:"pi_a"`
	PiB string `json:"pi_b"`
	PiC string `json:"pi_c"`
}

type inputsPayload struct {
	SeedCommit1 string `json:"seed_commit1"`
	SeedCommit2 string `json:"seed_commit2"`
	Seed1       string `json:"seed1"`
	Seed2       string `json:"seed2"`
	SessionID   string `json:"session_id"`
	Winner      string `json:"winner"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type settleResponse struct {
	Winner string `json:"winner"`
}

// matchView is the public shape of a match record. Optional fields are
// omitted until the lifecycle fills them in.
type matchView struct {
	SessionID   uint32  `json:"session_id"`
	Phase       string  `json:"phase"`
	Player1     string  `json:"player1"`
	Player2     *string `json:"player2,omitempty"`
	SeedCommit1 string  `json:"seed_commit1"`
	SeedCommit2 *string `json:"seed_commit2,omitempty"`
	Seed1       *string `json:"seed1,omitempty"`
	Seed2       *string `json:"seed2,omitempty"`
	Winner      uint8   `json:"winner,omitempty"`
}

func newMatchView(id match.SessionID, m match.Match) matchView {
	v := matchView{
		SessionID:   uint32(id),
		Phase:       m.Phase.String(),
		Player1:     string(m.Player1),
		SeedCommit1: hex.EncodeToString(m.SeedCommit1[:]),
		Winner:      m.Winner,
	}
	if m.Player2 != nil {
		p := string(*m.Player2)
		v.Player2 = &p
		c := hex.EncodeToString(m.SeedCommit2[:])
		v.SeedCommit2 = &c
	}
	if m.Seed1 != nil {
		h := hex.EncodeToString(m.Seed1[:])
		v.Seed1 = &h
	}
	if m.Seed2 != nil {
		h := hex.EncodeToString(m.Seed2[:])
		v.Seed2 = &h
	}
	return v
}

func (s *Server) createMatch(c echo.Context) error {
	var body createRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to parse request body")
	}
	if body.Player1 == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "player1 is required")
	}
	var commit match.Commitment
	if err := decodeHex("seed_commit", body.SeedCommit, commit[:]); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := s.engine.Create(c.Request().Context(), match.SessionID(body.SessionID), match.Player(body.Player1), commit)
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusCreated, statusResponse{Status: "created"})
}

func (s *Server) getMatch(c echo.Context) error {
	id, err := sessionParam(c)
	if err != nil {
		return err
	}
	m, ok, err := s.engine.Get(c.Request().Context(), id)
	if err != nil {
		return s.httpError(err)
	}
	if !ok {
		return s.httpError(match.ErrMatchNotFound)
	}
	return c.JSON(http.StatusOK, newMatchView(id, m))
}

func (s *Server) joinMatch(c echo.Context) error {
	id, err := sessionParam(c)
	if err != nil {
		return err
	}
	var body joinRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to parse request body")
	}
	if body.Player2 == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "player2 is required")
	}
	var commit match.Commitment
	if err := decodeHex("seed_commit", body.SeedCommit, commit[:]); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := s.engine.Join(c.Request().Context(), id, match.Player(body.Player2), commit); err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "joined"})
}

func (s *Server) revealSeed(c echo.Context) error {
	id, err := sessionParam(c)
	if err != nil {
		return err
	}
	var body revealRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to parse request body")
	}
	if body.Player == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "player is required")
	}
	var seed match.Seed
	if err := decodeHex("seed", body.Seed, seed[:]); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := s.engine.Reveal(c.Request().Context(), id, match.Player(body.Player), seed); err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "revealed"})
}

func (s *Server) settleMatch(c echo.Context) error {
	id, err := sessionParam(c)
	if err != nil {
		return err
	}
	var body settleRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to parse request body")
	}
	proof, inputs, err := body.decode()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	winner, err := s.engine.Settle(c.Request().Context(), id, proof, inputs)
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusOK, settleResponse{Winner: string(winner)})
}

func (s *Server) putVerifyingKey(c echo.Context) error {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxVKBody+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}
	if len(raw) > maxVKBody {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "verifying key too large")
	}
	vk, err := groth16.ParseSnarkJSVerifyingKey(bytes.NewReader(raw))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if vk.NbPublicInputs() != match.NbPublicInputs {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("verifying key must expose %d public inputs", match.NbPublicInputs))
	}

	if err := s.engine.SetVerifyingKey(c.Request().Context(), vk); err != nil {
		return s.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// decode converts the hex payload into the engine's proof and input types.
func (r *settleRequest) decode() (*groth16.Proof, *match.PublicInputs, error) {
	var proof groth16.Proof
	if err := decodeHex("proof.pi_a", r.Proof.PiA, proof.PiA[:]); err != nil {
		return nil, nil, err
	}
	if err := decodeHex("proof.pi_b", r.Proof.PiB, proof.PiB[:]); err != nil {
		return nil, nil, err
	}
	if err := decodeHex("proof.pi_c", r.Proof.PiC, proof.PiC[:]); err != nil {
		return nil, nil, err
	}

	var in match.PublicInputs
	for _, f := range []struct {
		name string
		src  string
		dst  []byte
	}{
		{"public_inputs.seed_commit1", r.PublicInputs.SeedCommit1, in.SeedCommit1[:]},
		{"public_inputs.seed_commit2", r.PublicInputs.SeedCommit2, in.SeedCommit2[:]},
		{"public_inputs.seed1", r.PublicInputs.Seed1, in.Seed1[:]},
		{"public_inputs.seed2", r.PublicInputs.Seed2, in.Seed2[:]},
		{"public_inputs.session_id", r.PublicInputs.SessionID, in.SessionID[:]},
		{"public_inputs.winner", r.PublicInputs.Winner, in.Winner[:]},
	} {
		if err := decodeHex(f.name, f.src, f.dst); err != nil {
			return nil, nil, err
		}
	}
	return &proof, &in, nil
}

// decodeHex fills dst from the hex string s, tolerating a 0x prefix.
func decodeHex(field, s string, dst []byte) error {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if len(raw) != len(dst) {
		return fmt.Errorf("%s: want %d bytes, got %d", field, len(dst), len(raw))
	}
	copy(dst, raw)
	return nil
}

func sessionParam(c echo.Context) (match.SessionID, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "session id must be a 32-bit unsigned integer")
	}
	return match.SessionID(id), nil
}

// httpError maps the engine's error taxonomy onto HTTP statuses. Unknown
// errors are logged and reported as 500 without detail.
func (s *Server) httpError(err error) error {
	switch {
	case errors.Is(err, match.ErrMatchNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, match.ErrMatchExists),
		errors.Is(err, match.ErrInvalidPhase),
		errors.Is(err, match.ErrAlreadyRevealed),
		errors.Is(err, match.ErrSeedsNotRevealed),
		errors.Is(err, match.ErrAlreadySettled):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, match.ErrSelfPlay),
		errors.Is(err, match.ErrInvalidWinner),
		errors.Is(err, match.ErrPublicInputMismatch),
		errors.Is(err, match.ErrInvalidProof):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, match.ErrNotPlayer):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, auth.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, match.ErrNoVerifyingKey):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		s.log.Error().Err(err).Msg("request failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
