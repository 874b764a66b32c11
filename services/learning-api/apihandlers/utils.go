package apihandlers

import (
	"errors"
	"math/rand"
	"time"

	"github.com/gin-gonic/gin"

	jwthandling "github.com/smirnypavel/edu-backend/pkg/jwt-handling"
)

func randomWait(minTimeSec int, maxTimeSec int) {
	time.Sleep(time.Duration(rand.Intn(maxTimeSec-minTimeSec)+minTimeSec) * time.Second)
}

func getUserClaims(c *gin.Context) (*jwthandling.UserClaims, error) {
	tokenValue, ok := c.Get("validatedToken")
	if !ok {
		return nil, errors.New("validatedToken not found in context")
	}
	claims, ok := tokenValue.(*jwthandling.UserClaims)
	if !ok {
		return nil, errors.New("unexpected token claims type")
	}
	return claims, nil
}
