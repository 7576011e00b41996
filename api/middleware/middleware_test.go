/*
Copyright 2025 Fathom Energy Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/fathomenergy/curvetrace/config"
)

func newGuardedRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return r
}

func serve(router *gin.Engine, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/ping", nil)
	for key, value := range header {
		req.Header.Set(key, value)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestSecretKeyAuth(t *testing.T) {
	config.MockConfig(&config.Configuration{
		Server: config.ServerConfig{Secure: true, SecretKey: "s3cret"},
	})
	router := newGuardedRouter(SecretKeyAuthMiddleware())

	tests := []struct {
		name         string
		header       map[string]string
		expectedCode int
	}{
		{"Missing Key", nil, http.StatusUnauthorized},
		{"Wrong Key", map[string]string{SecretKeyHeader: "wrong"}, http.StatusUnauthorized},
		{"Valid Key", map[string]string{SecretKeyHeader: "s3cret"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := serve(router, tt.header)
			assert.Equal(t, tt.expectedCode, resp.Code)
		})
	}
}

func TestSecretKeyAuth_UnconfiguredKey(t *testing.T) {
	config.MockConfig(&config.Configuration{})
	router := newGuardedRouter(SecretKeyAuthMiddleware())

	resp := serve(router, map[string]string{SecretKeyHeader: "anything"})
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	router := newGuardedRouter(RateLimitMiddleware(&config.Configuration{}))

	for i := 0; i < 5; i++ {
		resp := serve(router, nil)
		assert.Equal(t, http.StatusOK, resp.Code)
	}
}

func TestRateLimitThrottlesBurst(t *testing.T) {
	rps := 1.0
	burst := 1
	cleanup := 60
	router := newGuardedRouter(RateLimitMiddleware(&config.Configuration{
		RateLimit: config.RateLimitConfig{
			RequestsPerSecond:  &rps,
			Burst:              &burst,
			CleanupIntervalSec: &cleanup,
		},
	}))

	assert.Equal(t, http.StatusOK, serve(router, nil).Code)

	limited := false
	for i := 0; i < 5; i++ {
		if serve(router, nil).Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited)
}
