package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetLastResponseHeader(key string) string
	GetAdminToken() string
}

// RegisterSteps registers rate limiting and audit trail steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I send (\d+) requests to "([^"]*)"$`, steps.sendRequests)
	ctx.Step(`^at least one request should have been rate limited$`, steps.someRequestRateLimited)
	ctx.Step(`^the last response should be rate limited$`, steps.lastResponseRateLimited)
	ctx.Step(`^the audit trail should contain a "([^"]*)" event$`, steps.auditTrailShouldContain)
}

type ratelimitSteps struct {
	tc       TestContext
	statuses []int
}

func (s *ratelimitSteps) sendRequests(_ context.Context, n int, path string) error {
	s.statuses = s.statuses[:0]
	for range n {
		if err := s.tc.GET(path, nil); err != nil {
			return err
		}
		s.statuses = append(s.statuses, s.tc.GetLastResponseStatus())
	}
	return nil
}

func (s *ratelimitSteps) someRequestRateLimited(_ context.Context) error {
	for _, status := range s.statuses {
		if status == 429 {
			return nil
		}
	}
	return fmt.Errorf("no request was rate limited: %v", s.statuses)
}

func (s *ratelimitSteps) lastResponseRateLimited(_ context.Context) error {
	if status := s.tc.GetLastResponseStatus(); status != 429 {
		return fmt.Errorf("expected 429, got %d", status)
	}
	if s.tc.GetLastResponseHeader("Retry-After") == "" {
		return fmt.Errorf("429 without Retry-After")
	}
	code, err := s.tc.GetResponseField("error")
	if err != nil {
		return err
	}
	if code != "rate_limited" {
		return fmt.Errorf("expected error rate_limited, got %v", code)
	}
	return nil
}

func (s *ratelimitSteps) auditTrailShouldContain(_ context.Context, action string) error {
	token := s.tc.GetAdminToken()
	if token == "" {
		return godog.ErrSkip
	}
	if err := s.tc.GET("/admin/audit/recent?limit=500", map[string]string{"X-Admin-Token": token}); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("audit listing returned %d", status)
	}

	var body struct {
		Events []struct {
			Action string `json:"action"`
		} `json:"events"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &body); err != nil {
		return fmt.Errorf("decode audit events: %w", err)
	}
	for _, e := range body.Events {
		if e.Action == action {
			return nil
		}
	}
	return fmt.Errorf("no %q event among %d recent events", action, len(body.Events))
}
