package protocol

import (
	"encoding/json"
	"errors"

	"github.com/openbingo/bingo-server/models"
)

// MessageType tags every envelope crossing the WebSocket.
type MessageType string

const (
	TypeJoinGame     MessageType = "JOIN_GAME"
	TypeLeaveGame    MessageType = "LEAVE_GAME"
	TypeStartGame    MessageType = "START_GAME"
	TypeNumberCalled MessageType = "NUMBER_CALLED"
	TypeMarkNumber   MessageType = "MARK_NUMBER"
	TypeClaimBingo   MessageType = "CLAIM_BINGO"
	TypeGameUpdated  MessageType = "GAME_UPDATED"
	TypeGameEnded    MessageType = "GAME_ENDED"
	TypeError        MessageType = "ERROR"
)

// ErrInvalidMessage covers malformed envelopes and unknown types.
var ErrInvalidMessage = errors.New("invalid message format")

// Message is an outbound envelope.
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// Inbound is a client envelope with its payload still undecoded.
type Inbound struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

var clientTypes = map[MessageType]bool{
	TypeJoinGame:   true,
	TypeLeaveGame:  true,
	TypeStartGame:  true,
	TypeMarkNumber: true,
	TypeClaimBingo: true,
}

// Parse decodes and validates a raw client frame.
func Parse(data []byte) (*Inbound, error) {
	var msg Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, ErrInvalidMessage
	}
	if !clientTypes[msg.Type] {
		return nil, ErrInvalidMessage
	}
	return &msg, nil
}

// -------------------- Client payloads --------------------

// JoinRequest asks to join a game. UserID 0 means "provision me a
// user". Stake is in dollars; 0 means the server default.
type JoinRequest struct {
	UserID uint    `json:"userId"`
	Stake  float64 `json:"stake"`
}

type StartRequest struct {
	GameID string `json:"gameId"`
}

type MarkRequest struct {
	Number int `json:"number"`
}

// DecodeJoin parses a JOIN_GAME payload.
func DecodeJoin(raw json.RawMessage) (*JoinRequest, error) {
	var req JoinRequest
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, ErrInvalidMessage
		}
	}
	if req.Stake < 0 {
		return nil, ErrInvalidMessage
	}
	return &req, nil
}

// DecodeStart parses a START_GAME payload.
func DecodeStart(raw json.RawMessage) (*StartRequest, error) {
	var req StartRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, ErrInvalidMessage
	}
	if req.GameID == "" {
		return nil, ErrInvalidMessage
	}
	return &req, nil
}

// DecodeMark parses a MARK_NUMBER payload.
func DecodeMark(raw json.RawMessage) (*MarkRequest, error) {
	var req MarkRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, ErrInvalidMessage
	}
	if req.Number < 1 || req.Number > 75 {
		return nil, ErrInvalidMessage
	}
	return &req, nil
}

// -------------------- Server payloads --------------------

type JoinedPayload struct {
	GameID        string      `json:"gameId"`
	UserID        uint        `json:"userId"`
	PlayerID      uint        `json:"playerId"`
	CardNumbers   models.Card `json:"cardNumbers"`
	BoardNumber   int         `json:"boardNumber"`
	Wallet        float64     `json:"wallet"`
	Stake         float64     `json:"stake"`
	PlayerCount   int         `json:"playerCount"`
	CalledNumbers []int       `json:"calledNumbers"`
	CurrentCall   *int        `json:"currentCall"`
	Countdown     int         `json:"countdown"`
}

type StartedPayload struct {
	GameID string `json:"gameId"`
}

type NumberCalledPayload struct {
	Number        int   `json:"number"`
	Countdown     int   `json:"countdown"`
	CalledNumbers []int `json:"calledNumbers"`
}

type MarkedPayload struct {
	MarkedNumbers []int `json:"markedNumbers"`
}

type ClaimResultPayload struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	Winnings *float64 `json:"winnings,omitempty"`
}

type GameUpdatedPayload struct {
	ActiveGames *int   `json:"activeGames,omitempty"`
	PlayerCount *int   `json:"playerCount,omitempty"`
	Countdown   *int   `json:"countdown,omitempty"`
	GameID      string `json:"gameId,omitempty"`
}

type GameEndedPayload struct {
	GameID   string `json:"gameId"`
	WinnerID *uint  `json:"winnerId,omitempty"`
	Message  string `json:"message"`
}

type LeavePayload struct {
	Success bool `json:"success"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// ErrorMessage builds an ERROR envelope for the given message.
func ErrorMessage(msg string) Message {
	return Message{Type: TypeError, Payload: ErrorPayload{Message: msg}}
}
