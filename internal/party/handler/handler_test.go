package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"party360/internal/idempotency"
	"party360/internal/party/handler/mocks"
	"party360/internal/party/models"
	"party360/internal/policy"
	id "party360/pkg/domain"
	dErrors "party360/pkg/domain-errors"
	"party360/pkg/testutil"
)

const personPath = "/api/parties/person"

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  http.Handler
	actor   id.ActorID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.actor = id.ActorID(uuid.New())

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	h := New(s.service, policy.NewEnforcer(), logger)
	r := chi.NewRouter()
	h.Register(r)
	s.router = r
}

func validBody() map[string]any {
	return map[string]any{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"dob":       "1985-12-10",
		"ssn":       "123-45-6789",
		"consentId": "consent-1",
		"tenant":    "acme",
		"addresses": []map[string]any{
			{"type": "MAILING", "line1": "1 Main St", "city": "Austin", "state": "TX", "postalCode": "78701"},
		},
		"contacts": []map[string]any{{"type": "EMAIL", "value": "ada@example.com"}},
	}
}

func (s *HandlerSuite) newCreateRequest(key string, body any) *http.Request {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, personPath, body)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	req = testutil.WithRequestID(req, "corr-1")
	return testutil.WithAuth(req, s.actor, "acme")
}

func (s *HandlerSuite) TestCreatePerson_Created() {
	key := uuid.New()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.service.EXPECT().
		CreatePerson(gomock.Any(), key, gomock.Any(), "acme", s.actor, "corr-1").
		DoAndReturn(func(_ any, _ uuid.UUID, req *models.CreatePersonRequest, _ string, _ id.ActorID, _ string) (*models.CreatePartyResponse, error) {
			s.Equal("Ada", req.FirstName)
			s.Equal("123-45-6789", req.SSN)
			return &models.CreatePartyResponse{
				PartyID:         "p-1",
				Type:            models.PartyTypePerson,
				RiskLevel:       models.RiskLow,
				ScreeningStatus: models.ScreeningQueued,
				KYCRequestID:    "kyc-1",
				CreatedAt:       created,
			}, nil
		})

	rr := testutil.DoRequest(s.router, s.newCreateRequest(key.String(), validBody()))

	s.Require().Equal(http.StatusCreated, rr.Code)
	resp := testutil.UnmarshalResponse[models.CreatePartyResponse](s.T(), rr)
	s.Equal("p-1", resp.PartyID)
	s.Equal(models.ScreeningQueued, resp.ScreeningStatus)
	s.Equal("kyc-1", resp.KYCRequestID)
	s.True(created.Equal(resp.CreatedAt))
}

func (s *HandlerSuite) TestCreatePerson_IdempotencyKeyRequired() {
	tests := []struct {
		name string
		key  string
	}{
		{"missing", ""},
		{"not a uuid", "abc"},
		{"version 1 uuid", "8c4e0a2c-7e3b-11ee-b962-0242ac120002"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			rr := testutil.DoRequest(s.router, s.newCreateRequest(tt.key, validBody()))
			testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
		})
	}
}

func (s *HandlerSuite) TestCreatePerson_MalformedBody() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, personPath, `{"firstName":`)
	req.Header.Set(HeaderIdempotencyKey, uuid.NewString())
	req = testutil.WithAuth(req, s.actor, "acme")

	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
}

func (s *HandlerSuite) TestCreatePerson_OversizeBody() {
	body := validBody()
	body["firstName"] = strings.Repeat("a", maxBodyBytes)

	rr := testutil.DoRequest(s.router, s.newCreateRequest(uuid.NewString(), body))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusRequestEntityTooLarge, string(dErrors.CodePayloadTooLarge))
}

func (s *HandlerSuite) TestCreatePerson_TenantMismatchForbidden() {
	body := validBody()
	body["tenant"] = "globex"

	rr := testutil.DoRequest(s.router, s.newCreateRequest(uuid.NewString(), body))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, string(dErrors.CodeForbidden))
}

func (s *HandlerSuite) TestCreatePerson_ServiceErrors() {
	tests := []struct {
		name   string
		err    error
		status int
		code   dErrors.Code
		reason string
	}{
		{
			name:   "key reused with a different body",
			err:    dErrors.Wrap(idempotency.ErrConflict, dErrors.CodeConflict, "key reused").WithReason(idempotency.ReasonKeyReused),
			status: http.StatusConflict,
			code:   dErrors.CodeConflict,
			reason: idempotency.ReasonKeyReused,
		},
		{
			name:   "original request still running",
			err:    dErrors.Wrap(idempotency.ErrInProgress, dErrors.CodeConflict, "in progress").WithReason(idempotency.ReasonInProgress),
			status: http.StatusConflict,
			code:   dErrors.CodeConflict,
			reason: idempotency.ReasonInProgress,
		},
		{
			name:   "validation",
			err:    dErrors.New(dErrors.CodeValidation, "dob must be YYYY-MM-DD").WithReason(models.ReasonInvalidDOB),
			status: http.StatusBadRequest,
			code:   dErrors.CodeValidation,
			reason: models.ReasonInvalidDOB,
		},
		{
			name:   "internal",
			err:    dErrors.New(dErrors.CodeInternal, "boom"),
			status: http.StatusInternalServerError,
			code:   dErrors.CodeInternal,
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.service.EXPECT().
				CreatePerson(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, tt.err)

			rr := testutil.DoRequest(s.router, s.newCreateRequest(uuid.NewString(), validBody()))
			testutil.AssertStatusAndError(s.T(), rr, tt.status, string(tt.code))
			testutil.AssertReason(s.T(), rr, tt.reason)
		})
	}
}

func (s *HandlerSuite) TestGetParty() {
	partyID := id.NewPartyID()

	s.Run("found", func() {
		s.service.EXPECT().GetParty(gomock.Any(), partyID, "acme").
			Return(&models.PartySummary{PartyID: partyID.String(), Tenant: "acme", SSNLast4: "6789"}, nil)

		req := testutil.WithAuth(httptestGet("/api/parties/"+partyID.String()), s.actor, "acme")
		rr := testutil.DoRequest(s.router, req)

		s.Require().Equal(http.StatusOK, rr.Code)
		got := testutil.UnmarshalResponse[models.PartySummary](s.T(), rr)
		s.Equal("6789", got.SSNLast4)
	})

	s.Run("not found", func() {
		s.service.EXPECT().GetParty(gomock.Any(), partyID, "acme").
			Return(nil, dErrors.New(dErrors.CodeNotFound, "party not found"))

		req := testutil.WithAuth(httptestGet("/api/parties/"+partyID.String()), s.actor, "acme")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})

	s.Run("invalid id", func() {
		req := testutil.WithAuth(httptestGet("/api/parties/not-a-uuid"), s.actor, "acme")
		rr := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusBadRequest, rr.Code)
	})

	s.Run("unauthenticated", func() {
		rr := testutil.DoRequest(s.router, httptestGet("/api/parties/"+partyID.String()))
		s.Equal(http.StatusUnauthorized, rr.Code)
	})
}

func httptestGet(path string) *http.Request {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	return req
}

func TestCreatePersonReplay(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	actor := id.ActorID(uuid.New())
	h := New(svc, policy.NewEnforcer(), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	r := chi.NewRouter()
	h.Register(r)

	key := uuid.New()
	stored := &models.CreatePartyResponse{PartyID: "p-9", Type: models.PartyTypePerson, ScreeningStatus: models.ScreeningQueued}

	testutil.Given(t, "a request that already completed under a key", func(t *testing.T) {
		svc.EXPECT().
			CreatePerson(gomock.Any(), key, gomock.Any(), "acme", actor, gomock.Any()).
			Return(stored, nil).
			Times(2)

		testutil.When(t, "the caller retries with the same key", func(t *testing.T) {
			var bodies []string
			for range 2 {
				req := testutil.NewJSONRequest(t, http.MethodPost, personPath, validBody())
				req.Header.Set(HeaderIdempotencyKey, key.String())
				rr := testutil.DoRequest(r, testutil.WithAuth(req, actor, "acme"))
				require.Equal(t, http.StatusCreated, rr.Code)
				bodies = append(bodies, rr.Body.String())
			}

			testutil.Then(t, "both responses are identical", func(t *testing.T) {
				assert.Equal(t, bodies[0], bodies[1])
			})
			testutil.And(t, "the stored party id is returned", func(t *testing.T) {
				assert.Contains(t, bodies[1], `"partyId":"p-9"`)
			})
		})
	})
}
