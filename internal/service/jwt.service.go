package service

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	participantIdKey = "participant_id"
	displayNameKey   = "display_name"
)

// Identity is the caller as vouched for by a signed token.
type Identity struct {
	ParticipantId string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
}

func (s service) IssueToken(identity Identity) (string, error) {
	claims := jwt.MapClaims{
		participantIdKey: identity.ParticipantId,
		displayNameKey:   identity.DisplayName,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(s.secret)
}

func (s service) ParseToken(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, errors.Join(ErrInvalidToken, err)
	}

	if !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	participantId, ok := claims[participantIdKey].(string)
	if !ok || participantId == "" {
		return Identity{}, ErrInvalidToken
	}

	displayName, _ := claims[displayNameKey].(string)

	return Identity{
		ParticipantId: participantId,
		DisplayName:   displayName,
	}, nil
}
