// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package middleware provides HTTP middleware for the coach service.
//
// Callers authenticate with a shared application token sent in the
// x-app-token header. When the service is configured without a token
// (local development), every request passes.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenHeader is the header the backend workers send the app token in.
const TokenHeader = "x-app-token"

// AppTokenFromEnv reads the shared token from APP_API_TOKEN, with the
// usual /run/secrets fallback for containerized deployments.
func AppTokenFromEnv() string {
	if token := os.Getenv("APP_API_TOKEN"); token != "" {
		return strings.TrimSpace(token)
	}
	if data, err := os.ReadFile("/run/secrets/app_api_token"); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// AppTokenAuth rejects requests whose x-app-token header does not match
// the configured token. An empty configured token disables the check.
func AppTokenAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got := c.GetHeader(TokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}
		c.Next()
	}
}
