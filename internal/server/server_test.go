package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uditb/resumesculpt/internal/ats"
	"github.com/uditb/resumesculpt/internal/config"
	"github.com/uditb/resumesculpt/internal/db"
	"github.com/uditb/resumesculpt/internal/pipeline"
	"github.com/uditb/resumesculpt/internal/quota"
	"github.com/uditb/resumesculpt/internal/server/ratelimit"
	"github.com/uditb/resumesculpt/internal/types"
)

// mockDB is an in-memory DBClient for handler tests.
type mockDB struct {
	mu            sync.Mutex
	usersByEmail  map[string]*db.User
	usersByID     map[uuid.UUID]*db.User
	usage         map[uuid.UUID]int
	optimizations map[uuid.UUID][]*db.OptimizationRecord
}

func newMockDB() *mockDB {
	return &mockDB{
		usersByEmail:  make(map[string]*db.User),
		usersByID:     make(map[uuid.UUID]*db.User),
		usage:         make(map[uuid.UUID]int),
		optimizations: make(map[uuid.UUID][]*db.OptimizationRecord),
	}
}

func (m *mockDB) CreateUser(_ context.Context, email, passwordHash, fullName, plan string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.usersByEmail[email]; exists {
		return nil, db.ErrDuplicateEmail
	}
	u := &db.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Plan:         plan,
		CreatedAt:    time.Now(),
	}
	m.usersByEmail[email] = u
	m.usersByID[u.ID] = u
	return u, nil
}

func (m *mockDB) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.usersByEmail[email]
	if !ok {
		return nil, db.ErrNotFound
	}
	return u, nil
}

func (m *mockDB) GetUserByID(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.usersByID[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return u, nil
}

func (m *mockDB) SetResume(_ context.Context, userID uuid.UUID, resumeYAML, filename string, uploadedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.usersByID[userID]
	if !ok {
		return db.ErrNotFound
	}
	u.ResumeYAML = &resumeYAML
	u.ResumeFilename = &filename
	u.ResumeUploadedAt = &uploadedAt
	return nil
}

func (m *mockDB) WeeklyUsage(_ context.Context, userID uuid.UUID, _ time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage[userID], nil
}

func (m *mockDB) ListOptimizations(_ context.Context, userID uuid.UUID) ([]*db.OptimizationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.optimizations[userID], nil
}

// stubNormalizer counts calls so tests can assert fail-fast behavior.
type stubNormalizer struct {
	jd    *types.JobDescription
	err   error
	calls int
}

func (s *stubNormalizer) Normalize(_ context.Context, rawText string) (*types.JobDescription, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.jd != nil {
		return s.jd, nil
	}
	return &types.JobDescription{JobTitle: "Engineer", JobDescription: rawText}, nil
}

type stubScorer struct {
	score  *types.DetailedScore
	legacy *types.LegacyScore
	err    error
}

func (s *stubScorer) ScoreDetailed(_ context.Context, _ string, _ *types.JobDescription) (*types.DetailedScore, error) {
	return s.score, s.err
}

func (s *stubScorer) Score(_ context.Context, _ string, _ *types.JobDescription) (*types.LegacyScore, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.legacy, nil
}

type stubSerializer struct {
	yaml string
	err  error
}

func (s *stubSerializer) Serialize(_ context.Context, _ string) (string, error) {
	return s.yaml, s.err
}

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) Extract(_ context.Context, _ []byte) (string, error) {
	return s.text, s.err
}

type stubOrchestrator struct {
	result *pipeline.Result
	err    error
	runs   int
}

func (s *stubOrchestrator) Run(_ context.Context, _ *db.User, _, _ string) (*pipeline.Result, error) {
	s.runs++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type testEnv struct {
	server       *Server
	handler      http.Handler
	db           *mockDB
	normalizer   *stubNormalizer
	scorer       *stubScorer
	serializer   *stubSerializer
	extractor    *stubExtractor
	orchestrator *stubOrchestrator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mdb := newMockDB()
	jwtService := NewJWTService(&config.JWTConfig{Secret: "test-secret", ExpirationHours: 1})
	userService := NewUserService(mdb, &config.PasswordConfig{BcryptCost: 10})

	env := &testEnv{
		db:           mdb,
		normalizer:   &stubNormalizer{},
		scorer:       &stubScorer{score: &types.DetailedScore{OverallScore: 75, MatchLevel: types.MatchGood}},
		serializer:   &stubSerializer{yaml: "name: Jane Doe"},
		extractor:    &stubExtractor{text: "Jane Doe, Backend Engineer"},
		orchestrator: &stubOrchestrator{},
	}

	env.server = New(Options{
		Port:         0,
		ModelName:    "gemini-2.5-flash",
		DBClient:     mdb,
		JWTService:   jwtService,
		UserService:  userService,
		Normalizer:   env.normalizer,
		Scorer:       env.scorer,
		Serializer:   env.serializer,
		Extractor:    env.extractor,
		Orchestrator: env.orchestrator,
		QuotaGate:    quota.NewGate(mdb),
		RateLimiter:  ratelimit.NewLimiter(&ratelimit.Config{Enabled: false}),
	})
	env.handler = env.server.Handler()
	t.Cleanup(env.server.rateLimiter.Stop)
	return env
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) signup(t *testing.T, email string) (token string, userID uuid.UUID) {
	t.Helper()
	rec := e.do(http.MethodPost, "/auth/signup", "", types.SignupRequest{
		Email:    email,
		Password: "secret123",
		FullName: "Jane Doe",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp types.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	id, err := uuid.Parse(resp.UserID)
	require.NoError(t, err)
	return resp.AccessToken, id
}

func (e *testEnv) giveResume(userID uuid.UUID) {
	yaml := "name: Jane Doe"
	filename := "resume.pdf"
	now := time.Now()
	e.db.mu.Lock()
	u := e.db.usersByID[userID]
	u.ResumeYAML = &yaml
	u.ResumeFilename = &filename
	u.ResumeUploadedAt = &now
	e.db.mu.Unlock()
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, true, resp["model_loaded"])
}

func TestRootBanner(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ResumeSculpt API")
}

func TestOptimizeResume_QuotaExhaustion(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.signup(t, "jane@example.com")
	env.giveResume(userID)

	env.orchestrator.result = &pipeline.Result{
		Record: &db.OptimizationRecord{
			ID:             uuid.New(),
			UserID:         userID,
			OriginalScore:  60,
			OptimizedScore: 80,
			MatchLevel:     types.MatchGood,
		},
		NewScore:    &types.DetailedScore{MatchLevel: types.MatchGood},
		WeeklyUsage: 1,
	}

	// Free plan allows 5 generations per week
	for i := 0; i < 5; i++ {
		rec := env.do(http.MethodPost, "/optimize-resume", token, types.OptimizeResumeRequest{JobDesc: "Go engineer"})
		require.Equal(t, http.StatusOK, rec.Code, "request %d: %s", i, rec.Body.String())
		env.db.mu.Lock()
		env.db.usage[userID]++
		env.db.mu.Unlock()
	}

	rec := env.do(http.MethodPost, "/optimize-resume", token, types.OptimizeResumeRequest{JobDesc: "Go engineer"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Upgrade to Pro")
	assert.Equal(t, 5, env.orchestrator.runs)
}

func TestOptimizeResume_ResponsePayload(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.signup(t, "jane@example.com")
	env.giveResume(userID)

	env.orchestrator.result = &pipeline.Result{
		Record: &db.OptimizationRecord{
			ID:               uuid.New(),
			UserID:           userID,
			JobTitle:         "Backend Engineer",
			OriginalScore:    60,
			OptimizedScore:   80,
			ScoreImprovement: 20,
			MatchLevel:       types.MatchGood,
			OptimizedYAML:    "name: Jane Doe\nsummary: Optimized.",
			KeywordsAdded:    []string{"Docker"},
		},
		NewScore:    &types.DetailedScore{MatchLevel: types.MatchGood},
		WeeklyUsage: 1,
	}

	rec := env.do(http.MethodPost, "/optimize-resume", token, types.OptimizeResumeRequest{JobDesc: "Go engineer"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Resume optimized successfully", resp["message"])
	assert.Equal(t, "name: Jane Doe\nsummary: Optimized.", resp["optimized_resume_yaml"])
	assert.Equal(t, float64(80), resp["optimized_score"])
	assert.Equal(t, float64(1), resp["weekly_usage"])
	assert.Equal(t, float64(5), resp["weekly_limit"])
	assert.NotContains(t, resp, "optimized_yaml")
}

func TestOptimizeResume_NoResume(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "jane@example.com")

	rec := env.do(http.MethodPost, "/optimize-resume", token, types.OptimizeResumeRequest{JobDesc: "Go engineer"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, env.orchestrator.runs)
}

func TestCalculateATSDetailed(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.signup(t, "jane@example.com")

	t.Run("no resume", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/calculate-ats-detailed", token, types.CalculateATSRequest{JobDesc: "Go engineer"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	env.giveResume(userID)

	t.Run("empty job description", func(t *testing.T) {
		env.normalizer.err = &ats.InvalidInputError{Field: "job_desc", Message: "job description cannot be empty"}
		rec := env.do(http.MethodPost, "/calculate-ats-detailed", token, types.CalculateATSRequest{JobDesc: ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env.normalizer.err = nil
	})

	t.Run("success", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/calculate-ats-detailed", token, types.CalculateATSRequest{JobDesc: "Go engineer"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var score types.DetailedScore
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &score))
		assert.Equal(t, 75.0, score.OverallScore)
	})

	t.Run("unauthorized", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/calculate-ats-detailed", "", types.CalculateATSRequest{JobDesc: "Go engineer"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCalculateATSLegacy(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.signup(t, "jane@example.com")
	env.scorer.legacy = &types.LegacyScore{Score: 68, Reason: "Solid keyword coverage"}

	t.Run("no resume", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/calculate-ats", token, types.CalculateATSRequest{JobDesc: "Go engineer"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	env.giveResume(userID)

	t.Run("success", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/calculate-ats", token, types.CalculateATSRequest{JobDesc: "Go engineer"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, float64(68), resp["ats_score"])
		assert.Equal(t, "Solid keyword coverage", resp["reason"])
	})

	t.Run("unauthorized", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/calculate-ats", "", types.CalculateATSRequest{JobDesc: "Go engineer"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMyResume(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.signup(t, "jane@example.com")

	rec := env.do(http.MethodGet, "/my-resume", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	env.giveResume(userID)

	rec = env.do(http.MethodGet, "/my-resume", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "resume.pdf", resp["filename"])
	assert.Equal(t, "name: Jane Doe", resp["resume_yaml"])
}

func TestMyOptimizations(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.signup(t, "jane@example.com")

	rec := env.do(http.MethodGet, "/my-optimizations", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":0`)

	env.db.mu.Lock()
	env.db.optimizations[userID] = []*db.OptimizationRecord{
		{ID: uuid.New(), UserID: userID, OptimizedScore: 80},
	}
	env.db.mu.Unlock()

	rec = env.do(http.MethodGet, "/my-optimizations", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&ErrEmailAlreadyExists{Email: "a@b.c"}, http.StatusConflict},
		{&ErrInvalidCredentials{}, http.StatusUnauthorized},
		{&ErrUserNotFound{}, http.StatusNotFound},
		{&ErrNoResume{}, http.StatusNotFound},
		{&ErrValidation{Field: "file"}, http.StatusBadRequest},
		{&quota.ExceededError{Used: 5, Limit: 5}, http.StatusTooManyRequests},
		{fmt.Errorf("wrapped: %w", &quota.ExceededError{}), http.StatusTooManyRequests},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "error %v", tt.err)
	}
}
