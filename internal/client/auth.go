package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Auth calls the auth service.
type Auth struct {
	baseURL string
	http    *http.Client
}

// NewAuth creates an auth client for the given base URL.
func NewAuth(baseURL string, hc *http.Client) *Auth {
	return &Auth{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

type pointsRequest struct {
	Points int64 `json:"points"`
}

// AwardPoints credits loyalty points to a customer account.
func (c *Auth) AwardPoints(ctx context.Context, customerID string, points int64) error {
	endpoint := c.baseURL + "/users/" + url.PathEscape(customerID) + "/points"
	return postJSON(ctx, c.http, endpoint, pointsRequest{Points: points})
}
