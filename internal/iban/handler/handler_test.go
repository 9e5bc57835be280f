package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ibancheck/internal/iban"
	"ibancheck/internal/iban/country"
	"ibancheck/internal/iban/handler/mocks"
	dErrors "ibancheck/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type HandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.router = chi.NewRouter()
	New(s.service, logger).Register(s.router)
}

func (s *HandlerSuite) do(method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) TestValidate_Success() {
	valid := iban.Evaluate("DE89370400440532013000")
	bad := iban.Evaluate("DE89370400440532013001")
	s.service.EXPECT().
		Validate(gomock.Any(), []string{"DE89370400440532013000", "DE89370400440532013001"}).
		Return([]iban.Verdict{valid, bad}, nil)

	body := `{"ibans":["DE89370400440532013000","DE89370400440532013001"]}`
	w := s.do(http.MethodPost, "/v1/iban/validate", strings.NewReader(body))

	s.Equal(http.StatusOK, w.Code)
	s.Equal("application/json", w.Header().Get("Content-Type"))

	var resp struct {
		Verdicts []map[string]any `json:"verdicts"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().Len(resp.Verdicts, 2)
	s.Equal("DE89370400440532013000", resp.Verdicts[0]["iban"])
	s.Equal(true, resp.Verdicts[0]["isAlphanumeric"])
	s.Equal(true, resp.Verdicts[0]["isValidCountry"])
	s.Equal(true, resp.Verdicts[0]["isCorrectLength"])
	s.Equal(true, resp.Verdicts[0]["isDivisibleBy97"])
	s.Equal(false, resp.Verdicts[1]["isDivisibleBy97"])
}

func (s *HandlerSuite) TestValidate_PassesInputUnchanged() {
	s.service.EXPECT().
		Validate(gomock.Any(), []string{" de89 3704 "}).
		Return([]iban.Verdict{{IBAN: " de89 3704 "}}, nil)

	w := s.do(http.MethodPost, "/v1/iban/validate", strings.NewReader(`{"ibans":[" de89 3704 "]}`))
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerSuite) TestValidate_MissingField() {
	w := s.do(http.MethodPost, "/v1/iban/validate", strings.NewReader(`{}`))
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "validation_error")
}

func (s *HandlerSuite) TestValidate_MalformedJSON() {
	w := s.do(http.MethodPost, "/v1/iban/validate", strings.NewReader(`{"ibans":`))
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "bad_request")
}

func (s *HandlerSuite) TestValidate_BodyTooLarge() {
	big := bytes.Repeat([]byte("A"), 2<<20)
	body := append(append([]byte(`{"ibans":["`), big...), []byte(`"]}`)...)
	w := s.do(http.MethodPost, "/v1/iban/validate", bytes.NewReader(body))
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "request body too large")
}

func (s *HandlerSuite) TestValidate_ServiceError() {
	s.service.EXPECT().
		Validate(gomock.Any(), []string{}).
		Return(nil, dErrors.New(dErrors.CodeBadRequest, "at least one IBAN is required"))

	w := s.do(http.MethodPost, "/v1/iban/validate", strings.NewReader(`{"ibans":[]}`))
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "at least one IBAN is required")
}

func (s *HandlerSuite) TestValidateOne() {
	s.service.EXPECT().
		ValidateOne(gomock.Any(), "GB82WEST12345698765432").
		Return(iban.Evaluate("GB82WEST12345698765432"), nil)

	w := s.do(http.MethodGet, "/v1/iban/validate/GB82WEST12345698765432", nil)
	s.Equal(http.StatusOK, w.Code)

	var v iban.Verdict
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &v))
	s.True(v.Valid())
}

func (s *HandlerSuite) TestValidateOne_DecodesEscapedPath() {
	s.service.EXPECT().
		ValidateOne(gomock.Any(), "DE 89").
		Return(iban.Verdict{IBAN: "DE 89"}, nil)

	w := s.do(http.MethodGet, "/v1/iban/validate/DE%2089", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerSuite) TestCountries() {
	s.service.EXPECT().Countries().Return([]country.Country{{Code: "DE", Length: 22}, {Code: "NO", Length: 15}})

	w := s.do(http.MethodGet, "/v1/iban/countries", nil)
	s.Equal(http.StatusOK, w.Code)

	var resp CountriesResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().Len(resp.Countries, 2)
	s.Equal("NO", resp.Countries[1].Code)
	s.Equal(15, resp.Countries[1].Length)
}
