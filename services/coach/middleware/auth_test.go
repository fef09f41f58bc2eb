// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func authRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AppTokenAuth(token), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func get(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAppTokenAuthAcceptsMatchingToken(t *testing.T) {
	router := authRouter("s3cret")
	assert.Equal(t, http.StatusOK, get(router, "s3cret").Code)
}

func TestAppTokenAuthRejectsBadToken(t *testing.T) {
	router := authRouter("s3cret")
	assert.Equal(t, http.StatusUnauthorized, get(router, "wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "").Code)
}

func TestAppTokenAuthDisabledWithoutToken(t *testing.T) {
	router := authRouter("")
	assert.Equal(t, http.StatusOK, get(router, "").Code)
	assert.Equal(t, http.StatusOK, get(router, "anything").Code)
}

func TestAppTokenFromEnv(t *testing.T) {
	t.Setenv("APP_API_TOKEN", "  tok-123 \n")
	assert.Equal(t, "tok-123", AppTokenFromEnv())
}
