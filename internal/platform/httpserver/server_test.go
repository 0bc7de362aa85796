package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	campaignregistry "ballotpool/contexts/voting-market/campaign-registry"
	metricsadapter "ballotpool/contexts/voting-market/campaign-registry/adapters/metrics"
	"ballotpool/contexts/voting-market/campaign-registry/domain/entities"
	registryhttp "ballotpool/contexts/voting-market/campaign-registry/transport/http"

	"github.com/prometheus/client_golang/prometheus"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

type testServer struct {
	server *Server
	module campaignregistry.Module
	clock  *fixedClock
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	clock := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	registry := prometheus.NewRegistry()
	module := campaignregistry.NewInMemoryModule(nil, campaignregistry.Dependencies{
		Clock:   clock,
		Metrics: metricsadapter.NewPrometheus(registry),
		Admin:   "admin-1",
	})
	return testServer{
		server: New(module, nil, ":0", Options{Gatherer: registry}),
		module: module,
		clock:  clock,
	}
}

func (s testServer) do(t *testing.T, method string, path string, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			payload.WriteString(raw)
		} else if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &payload)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rec := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) registryhttp.ErrorResponse {
	t.Helper()
	var resp registryhttp.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	if got := decodeError(t, rec).Code; got != code {
		t.Fatalf("expected code %s, got %s", code, got)
	}
}

func addVoting(t *testing.T, s testServer) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/v1/votings", "admin-1", registryhttp.AddVotingRequest{
		Name:            "v1",
		Candidates:      []string{"cand-0", "cand-1", "cand-2"},
		DurationSeconds: 60,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add voting: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMutationsRequireCallerIdentity(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/v1/votings", "/v1/votings/v1/votes", "/v1/votings/v1/finish", "/v1/commission/withdraw"} {
		expectError(t, s.do(t, http.MethodPost, path, "", "{}"), http.StatusUnauthorized, "missing_user")
	}
}

func TestAddVotingErrors(t *testing.T) {
	s := newTestServer(t)

	expectError(t, s.do(t, http.MethodPost, "/v1/votings", "admin-1", "{"), http.StatusBadRequest, "invalid_json")
	expectError(t, s.do(t, http.MethodPost, "/v1/votings", "voter-1", registryhttp.AddVotingRequest{
		Name: "v1", Candidates: []string{"a"}, DurationSeconds: 60,
	}), http.StatusForbidden, "unauthorized")
	expectError(t, s.do(t, http.MethodPost, "/v1/votings", "admin-1", registryhttp.AddVotingRequest{
		Name: "", Candidates: []string{"a"}, DurationSeconds: 60,
	}), http.StatusBadRequest, "invalid_input")

	addVoting(t, s)
	expectError(t, s.do(t, http.MethodPost, "/v1/votings", "admin-1", registryhttp.AddVotingRequest{
		Name: "v1", Candidates: []string{"a"}, DurationSeconds: 60,
	}), http.StatusConflict, "duplicate_voting")
}

func TestVoteFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	addVoting(t, s)

	rec := s.do(t, http.MethodPost, "/v1/votings/v1/votes", "voter-0", registryhttp.VoteRequest{
		Candidate:  "cand-0",
		AmountPaid: 2 * entities.DefaultVotePrice,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("vote: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var vote registryhttp.VoteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &vote); err != nil {
		t.Fatalf("decode vote: %v", err)
	}
	if vote.AmountCredited != entities.DefaultVotePrice || vote.AmountRefunded != entities.DefaultVotePrice {
		t.Fatalf("unexpected vote response %+v", vote)
	}

	expectError(t, s.do(t, http.MethodPost, "/v1/votings/v1/votes", "voter-0", registryhttp.VoteRequest{
		Candidate: "cand-1", AmountPaid: entities.DefaultVotePrice,
	}), http.StatusConflict, "duplicate_vote")
	expectError(t, s.do(t, http.MethodPost, "/v1/votings/v1/votes", "voter-1", registryhttp.VoteRequest{
		Candidate: "cand-1", AmountPaid: entities.DefaultVotePrice - 1,
	}), http.StatusPaymentRequired, "insufficient_payment")
	expectError(t, s.do(t, http.MethodPost, "/v1/votings/v1/votes", "voter-1", registryhttp.VoteRequest{
		Candidate: "nobody", AmountPaid: entities.DefaultVotePrice,
	}), http.StatusUnprocessableEntity, "unknown_candidate")
	expectError(t, s.do(t, http.MethodPost, "/v1/votings/missing/votes", "voter-1", registryhttp.VoteRequest{
		Candidate: "cand-1", AmountPaid: entities.DefaultVotePrice,
	}), http.StatusConflict, "voting_inactive")
	expectError(t, s.do(t, http.MethodPost, "/v1/votings/v1/finish", "voter-1", nil), http.StatusConflict, "voting_not_yet_expired")

	s.clock.now = s.clock.now.Add(time.Minute)
	expectError(t, s.do(t, http.MethodPost, "/v1/votings/v1/votes", "voter-1", registryhttp.VoteRequest{
		Candidate: "cand-1", AmountPaid: entities.DefaultVotePrice,
	}), http.StatusConflict, "voting_expired")

	rec = s.do(t, http.MethodPost, "/v1/votings/v1/finish", "voter-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("finish: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var finish registryhttp.FinishResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &finish); err != nil {
		t.Fatalf("decode finish: %v", err)
	}
	if len(finish.Winners) != 1 || finish.Winners[0] != "cand-0" || finish.PaidOut != 9_000_000 || finish.Retained != 1_000_000 {
		t.Fatalf("unexpected finish response %+v", finish)
	}

	rec = s.do(t, http.MethodGet, "/v1/registry", "", nil)
	var summary registryhttp.RegistryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode registry: %v", err)
	}
	if summary.VotingsNumber != 1 || summary.Balance != 1_000_000 || summary.CommissionPool != 1_000_000 {
		t.Fatalf("unexpected registry summary %+v", summary)
	}
	held, err := s.module.Store.Custody(context.Background())
	if err != nil || held != summary.Balance {
		t.Fatalf("store custody %d (err %v) disagrees with registry balance %d", held, err, summary.Balance)
	}

	expectError(t, s.do(t, http.MethodPost, "/v1/commission/withdraw", "voter-1", nil), http.StatusForbidden, "unauthorized")
	rec = s.do(t, http.MethodPost, "/v1/commission/withdraw", "admin-1", nil)
	var withdrawal registryhttp.WithdrawCommissionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &withdrawal); err != nil {
		t.Fatalf("decode withdrawal: %v", err)
	}
	if rec.Code != http.StatusOK || withdrawal.Total != 1_000_000 || len(withdrawal.Sweeps) != 1 {
		t.Fatalf("unexpected withdrawal %d %+v", rec.Code, withdrawal)
	}
}

func TestReadEndpoints(t *testing.T) {
	s := newTestServer(t)
	addVoting(t, s)

	expectError(t, s.do(t, http.MethodGet, "/v1/votings/missing", "", nil), http.StatusNotFound, "voting_not_found")
	expectError(t, s.do(t, http.MethodGet, "/v1/votings/missing/transfers", "", nil), http.StatusNotFound, "voting_not_found")

	rec := s.do(t, http.MethodGet, "/v1/votings/missing/candidates", "", nil)
	var candidates registryhttp.CandidatesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &candidates); err != nil {
		t.Fatalf("decode candidates: %v", err)
	}
	if rec.Code != http.StatusOK || candidates.Candidates == nil || len(candidates.Candidates) != 0 {
		t.Fatalf("unknown voting should list no candidates, got %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/v1/votings", "", nil)
	var list registryhttp.VotingListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Count != 1 || list.Items[0].Name != "v1" || !list.Items[0].Active || list.Items[0].CandidatesNumber != 3 {
		t.Fatalf("unexpected voting list %+v", list)
	}

	rec = s.do(t, http.MethodGet, "/v1/votings/v1/results", "", nil)
	var results registryhttp.ResultsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if len(results.Items) != 3 || results.Items[2].Candidate != "cand-2" {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestOpsEndpoints(t *testing.T) {
	s := newTestServer(t)
	addVoting(t, s)

	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ballotpool_registry_campaigns_created_total 1") {
		t.Fatalf("metrics endpoint did not expose registry counters: %s", rec.Body.String())
	}

	unhealthy := New(campaignregistry.Module{}, nil, "", Options{
		Health: func(context.Context) error { return errors.New("db down") },
	})
	rec = httptest.NewRecorder()
	unhealthy.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	expectError(t, rec, http.StatusServiceUnavailable, "unhealthy")
}

func TestRegistryRequestsAreLogged(t *testing.T) {
	var logs bytes.Buffer
	module := campaignregistry.NewInMemoryModule(nil, campaignregistry.Dependencies{
		Admin:  "admin-1",
		Logger: slog.New(slog.NewJSONHandler(&logs, nil)),
	})
	s := testServer{server: New(module, nil, ":0", Options{}), module: module}

	expectError(t, s.do(t, http.MethodPost, "/v1/votings", "voter-1", registryhttp.AddVotingRequest{
		Name: "v1", Candidates: []string{"a"}, DurationSeconds: 60,
	}), http.StatusForbidden, "unauthorized")

	out := logs.String()
	for _, want := range []string{
		`"event":"http_add_voting_received"`,
		`"event":"http_add_voting_failed"`,
		`"layer":"transport"`,
		`"caller_id":"voter-1"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in request logs:\n%s", want, out)
		}
	}
}
