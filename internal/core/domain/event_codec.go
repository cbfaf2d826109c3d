package domain

import (
	"encoding/json"
	"fmt"
)

type eventEnvelope struct {
	Type    EventType
	Payload json.RawMessage
}

func MarshalRoundEvent(event RoundEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return json.Marshal(eventEnvelope{Type: event.GetType(), Payload: payload})
}

func UnmarshalRoundEvent(buf []byte) (RoundEvent, error) {
	var envelope eventEnvelope
	if err := json.Unmarshal(buf, &envelope); err != nil {
		return nil, err
	}

	switch envelope.Type {
	case EventTypeRoundStarted:
		return decodeEvent[RoundStarted](envelope.Payload)
	case EventTypeBetPlaced:
		return decodeEvent[BetPlaced](envelope.Payload)
	case EventTypeWinnerDetermined:
		return decodeEvent[WinnerDetermined](envelope.Payload)
	case EventTypeFeeSettled:
		return decodeEvent[FeeSettled](envelope.Payload)
	case EventTypeRewardPotCreated:
		return decodeEvent[RewardPotCreated](envelope.Payload)
	case EventTypeRewardTokensMinted:
		return decodeEvent[RewardTokensMinted](envelope.Payload)
	case EventTypeEntitlementsCalculated:
		return decodeEvent[EntitlementsCalculated](envelope.Payload)
	case EventTypeWinningsClaimed:
		return decodeEvent[WinningsClaimed](envelope.Payload)
	case EventTypeRewardClaimed:
		return decodeEvent[RewardClaimed](envelope.Payload)
	default:
		return nil, fmt.Errorf("unknown event type %d", envelope.Type)
	}
}

func decodeEvent[T RoundEvent](payload json.RawMessage) (RoundEvent, error) {
	var event T
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return event, nil
}
