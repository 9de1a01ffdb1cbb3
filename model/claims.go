package model

import "github.com/golang-jwt/jwt/v5"

// ServiceClaims identifies the internal caller of the gateway API.
type ServiceClaims struct {
	Service string `json:"service"`
	jwt.RegisteredClaims
}
