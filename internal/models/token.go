package models

import (
	"time"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued on login, refresh or federated sign in
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
