// internal/infrastructure/handler/integration_test.go
package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	appservice "github.com/arnoldphilip/task-payment-system/internal/application/service"
	"github.com/arnoldphilip/task-payment-system/internal/domain/repository"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/cache"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/db"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/gateway"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/handler"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/logger"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/middleware"
	"github.com/dgraph-io/badger/v3"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	server   *httptest.Server
	txRepo   *db.BadgerTransactionRepository
	taskRepo *db.BadgerTaskRepository
	idemRepo *db.BadgerIdempotencyRepository
}

// setupTestServer wires the full stack, including the middleware chain,
// against a throwaway badger database. successRate pins the simulated
// provider outcome (1 always settles, 0 always declines).
func setupTestServer(t *testing.T, successRate float64) *testEnv {
	t.Helper()

	badgerOpts := badger.DefaultOptions(t.TempDir()).WithLogger(nil)
	badgerOpts.SyncWrites = false

	badgerDB, err := badger.Open(badgerOpts)
	require.NoError(t, err, "failed to open test database")

	quiet := logger.NewJSONLogger(io.Discard, logger.ErrorLevel)

	txRepo := db.NewBadgerTransactionRepository(badgerDB)
	taskRepo := db.NewBadgerTaskRepository(badgerDB)
	idemRepo := db.NewBadgerIdempotencyRepository(badgerDB)

	gw := gateway.NewSimulatedGateway(0, successRate, 0, rand.New(rand.NewSource(7)), quiet)

	taskService := appservice.NewTaskService(taskRepo, quiet)
	paymentService := appservice.NewPaymentService(txRepo, taskRepo, gw, 1, 0, quiet)

	taskHandler := handler.NewTaskHandler(taskService, quiet)
	paymentHandler := handler.NewPaymentHandler(paymentService, idemRepo, quiet)

	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.IdempotencyMiddleware(idemRepo, cache.NewReplayCache(0), quiet))

	taskHandler.RegisterRoutes(router)
	paymentHandler.RegisterRoutes(router)

	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		badgerDB.Close()
	})

	return &testEnv{server: server, txRepo: txRepo, taskRepo: taskRepo, idemRepo: idemRepo}
}

func (e *testEnv) createTask(t *testing.T) string {
	t.Helper()

	resp, err := http.Post(e.server.URL+"/tasks", "application/json",
		bytes.NewBufferString(`{"title":"Pay invoice","description":"integration"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var task handler.TaskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))
	require.NotEmpty(t, task.ID)
	return task.ID
}

func (e *testEnv) postPayment(t *testing.T, body, idempotencyKey string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest("POST", e.server.URL+"/payments", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set(middleware.IdempotencyKeyHeader, idempotencyKey)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, payload
}

func (e *testEnv) taskStatus(t *testing.T, id string) string {
	t.Helper()

	resp, err := http.Get(e.server.URL + "/tasks/" + id)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var task handler.TaskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))
	return task.Status
}

func paymentBody(taskID, ref string) string {
	return fmt.Sprintf(`{"taskId":%q,"amount":100.00,"currency":"USD","externalReference":%q}`, taskID, ref)
}

func TestPaymentLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := setupTestServer(t, 1.0)
	taskID := env.createTask(t)

	// First submission settles and completes the task
	status, payload := env.postPayment(t, paymentBody(taskID, "ref-1"), "")
	assert.Equal(t, http.StatusOK, status)

	var tx handler.TransactionResponse
	require.NoError(t, json.Unmarshal(payload, &tx))
	assert.Equal(t, "SUCCESS", tx.Status)
	assert.Equal(t, "DEBIT", tx.Type)
	assert.Equal(t, taskID, tx.TaskID)
	assert.Equal(t, "ref-1", tx.ExternalReference)
	assert.Equal(t, "COMPLETED", env.taskStatus(t, taskID))

	// Second submission with the same reference conflicts and changes nothing
	status, payload = env.postPayment(t, paymentBody(taskID, "ref-1"), "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	var errResp handler.ErrorResponse
	require.NoError(t, json.Unmarshal(payload, &errResp))
	assert.Equal(t, "Duplicate external reference", errResp.Error)
	assert.Equal(t, "COMPLETED", env.taskStatus(t, taskID))

	persisted, err := env.txRepo.FindByReference(context.Background(), "ref-1")
	assert.NoError(t, err)
	assert.Equal(t, tx.ID, persisted.ID, "only the first transaction may exist")
}

func TestDeclinedPayment(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := setupTestServer(t, 0)
	taskID := env.createTask(t)

	status, payload := env.postPayment(t, paymentBody(taskID, "ref-declined"), "")

	// A decline is still a 200: the workflow completed with a FAILED outcome
	assert.Equal(t, http.StatusOK, status)

	var tx handler.TransactionResponse
	require.NoError(t, json.Unmarshal(payload, &tx))
	assert.Equal(t, "FAILED", tx.Status)
	assert.Equal(t, "CANCELLED", env.taskStatus(t, taskID))
}

func TestIdempotentReplay(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := setupTestServer(t, 1.0)
	taskID := env.createTask(t)

	status, first := env.postPayment(t, paymentBody(taskID, "ref-A"), "idem-1")
	require.Equal(t, http.StatusOK, status)

	// Same key, different body: the cached response wins over the new body
	status, second := env.postPayment(t, paymentBody(taskID, "ref-B"), "idem-1")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, string(first), string(second), "replay must return the original response verbatim")

	_, err := env.txRepo.FindByReference(context.Background(), "ref-B")
	assert.ErrorIs(t, err, repository.ErrNotFound, "replay must not execute the workflow")
}

func TestFailedAttemptNotCached(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := setupTestServer(t, 1.0)

	// First attempt references a missing task and fails
	status, _ := env.postPayment(t, paymentBody("no-such-task", "ref-retry"), "idem-retry")
	require.Equal(t, http.StatusNotFound, status)

	// The same key is still live: a corrected request re-executes
	taskID := env.createTask(t)
	status, payload := env.postPayment(t, paymentBody(taskID, "ref-retry"), "idem-retry")
	assert.Equal(t, http.StatusOK, status)

	var tx handler.TransactionResponse
	require.NoError(t, json.Unmarshal(payload, &tx))
	assert.Equal(t, "SUCCESS", tx.Status)
}

func TestIdempotencyRecordListing(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := setupTestServer(t, 1.0)
	taskID := env.createTask(t)

	_, _ = env.postPayment(t, paymentBody(taskID, "ref-listed"), "idem-listed")

	resp, err := http.Get(env.server.URL + "/payments/idempotency")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var records []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	require.Len(t, records, 1)
	assert.Equal(t, "idem-listed", records[0]["key"])
	assert.Equal(t, float64(http.StatusOK), records[0]["responseCode"])
}
