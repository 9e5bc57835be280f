package common

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cucumber/godog"
	"github.com/golang-jwt/jwt/v5"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	POSTRaw(path, body string) error
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetLastResponseHeader(key string) string
	GetSigningKey() string
	SetAccessToken(token string)
	SetForwardedIP(ip string)
}

// RegisterSteps registers background, request and assertion steps shared by
// every feature.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	// Background
	ctx.Step(`^the service is healthy$`, steps.serviceIsHealthy)
	ctx.Step(`^I am authenticated as client "([^"]*)"$`, steps.authenticatedAsClient)
	ctx.Step(`^I present the bearer token "([^"]*)"$`, steps.presentBearerToken)
	ctx.Step(`^requests come from IP "([^"]*)"$`, steps.requestsComeFromIP)

	// Requests
	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^I POST to "([^"]*)" with body:$`, steps.postWithBody)

	// Assertions
	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.responseFieldShouldBe)
	ctx.Step(`^the response header "([^"]*)" should be present$`, steps.responseHeaderShouldBePresent)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) serviceIsHealthy(ctx context.Context) error {
	if err := s.tc.GET("/health", nil); err != nil {
		return err
	}
	return s.responseStatusShouldBe(ctx, 200)
}

// authenticatedAsClient mints a token the way `ibancheck token` does, using
// the same signing key, issuer and audience as the server under test.
func (s *commonSteps) authenticatedAsClient(_ context.Context, clientID string) error {
	key := s.tc.GetSigningKey()
	if key == "" {
		return godog.ErrSkip
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"client_id": clientID,
		"sub":       clientID,
		"iss":       envOr("JWT_ISSUER", "ibancheck"),
		"aud":       []string{envOr("JWT_AUDIENCE", "ibancheck-api")},
		"iat":       now.Unix(),
		"exp":       now.Add(5 * time.Minute).Unix(),
	})
	signed, err := token.SignedString([]byte(key))
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	s.tc.SetAccessToken(signed)
	return nil
}

func (s *commonSteps) presentBearerToken(_ context.Context, token string) error {
	s.tc.SetAccessToken(token)
	return nil
}

func (s *commonSteps) requestsComeFromIP(_ context.Context, ip string) error {
	s.tc.SetForwardedIP(ip)
	return nil
}

func (s *commonSteps) get(_ context.Context, path string) error {
	return s.tc.GET(path, nil)
}

func (s *commonSteps) postWithBody(_ context.Context, path string, body *godog.DocString) error {
	return s.tc.POSTRaw(path, body.Content)
}

func (s *commonSteps) responseStatusShouldBe(_ context.Context, expected int) error {
	if got := s.tc.GetLastResponseStatus(); got != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, got, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *commonSteps) responseFieldShouldBe(_ context.Context, field, expected string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != expected {
		return fmt.Errorf("expected %s=%q, got %q", field, expected, got)
	}
	return nil
}

func (s *commonSteps) responseHeaderShouldBePresent(_ context.Context, header string) error {
	if s.tc.GetLastResponseHeader(header) == "" {
		return fmt.Errorf("expected response header %s", header)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
