package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/seguimiento-confeccion/internal/application/auth"
	"github.com/jhoicas/seguimiento-confeccion/internal/application/dto"
	"github.com/jhoicas/seguimiento-confeccion/internal/application/notification"
	"github.com/jhoicas/seguimiento-confeccion/internal/application/tracking"
	"github.com/jhoicas/seguimiento-confeccion/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/seguimiento-confeccion/internal/interfaces/http"
	"github.com/jhoicas/seguimiento-confeccion/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// App completa sobre el almacén en memoria
// ──────────────────────────────────────────────────────────────────────────────

const (
	adminEmail    = "admin@taller.test"
	adminPassword = "clave-segura-123"
)

func buildAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	log := logger.Nop()

	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})
	created, err := authUC.EnsureAdmin(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)
	require.True(t, created)

	notificationUC := notification.NewUseCase(store.Notifications(), nil, log)
	deps := tracking.Deps{Tx: store, Notifier: notificationUC, Policy: tracking.DefaultPolicy(), Log: log}

	app := apphttp.NewApp("seguimiento-test", log)
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:         authUC,
		OrderUC:        tracking.NewOrderUseCase(deps),
		RepositionUC:   tracking.NewRepositionUseCase(deps),
		TransferUC:     tracking.NewTransferUseCase(deps),
		LifecycleUC:    tracking.NewLifecycleUseCase(deps),
		QueryUC:        tracking.NewQueryUseCase(store.Repos()),
		NotificationUC: notificationUC,
		JWTSecret:      testJWTSecret,
		Log:            log,
	})
	return app
}

// call envía la petición y decodifica la respuesta JSON en out (si no es nil).
func call(t *testing.T, app *fiber.App, method, path, token string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func distributionOf(t *testing.T, app *fiber.App, token, id string) map[string]int {
	t.Helper()
	var out dto.PieceDistributionResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/subjects/"+id+"/pieces", token, nil, &out))
	got := map[string]int{}
	for _, item := range out.Distribution {
		if item.Pieces > 0 {
			got[item.Area] = item.Pieces
		}
	}
	return got
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo completo
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_FlujoTransferenciaParcial(t *testing.T) {
	app := buildAPI(t)
	corte := tokenFor(t, "u-corte", "corte", "operador")
	bordado := tokenFor(t, "u-bordado", "bordado", "operador")

	var order dto.OrderResponse
	status := call(t, app, http.MethodPost, "/api/orders", corte,
		dto.CreateOrderRequest{Client: "Textiles Sur", Model: "Polo", TotalPieces: 100}, &order)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "ORD-000001", order.Folio)
	assert.Equal(t, "corte", order.CurrentArea)

	var tr dto.TransferResponse
	status = call(t, app, http.MethodPost, "/api/transfers", corte,
		dto.ProposeTransferRequest{SubjectID: order.ID, FromArea: "corte", ToArea: "bordado", Pieces: 40}, &tr)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "pending", tr.Status)

	// La propuesta no mueve piezas.
	assert.Equal(t, map[string]int{"corte": 100}, distributionOf(t, app, corte, order.ID))

	// El área destino ve la solicitud en su bandeja.
	var inbox dto.NotificationListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/notifications?unread=true", bordado, nil, &inbox))
	require.NotEmpty(t, inbox.Items)
	assert.Equal(t, "transfer_request", inbox.Items[0].Type)

	var incoming []dto.TransferResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/transfers/incoming", bordado, nil, &incoming))
	require.Len(t, incoming, 1)

	// Corte no puede aceptar su propia propuesta.
	var errResp dto.ErrorResponse
	status = call(t, app, http.MethodPost, "/api/transfers/"+tr.ID+"/accept", corte, nil, &errResp)
	assert.Equal(t, http.StatusForbidden, status)

	status = call(t, app, http.MethodPost, "/api/transfers/"+tr.ID+"/accept", bordado, nil, &tr)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "accepted", tr.Status)
	assert.Equal(t, map[string]int{"corte": 60, "bordado": 40}, distributionOf(t, app, corte, order.ID))

	status = call(t, app, http.MethodPost, "/api/transfers/"+tr.ID+"/accept", bordado, nil, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_PROCESSED", errResp.Code)

	// Con el pedido repartido no se puede pausar.
	status = call(t, app, http.MethodPost, "/api/orders/"+order.ID+"/pause", corte,
		dto.PauseRequest{Reason: "falta hilo azul marino"}, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "PARTIAL_TRANSFER_BLOCKS_PAUSE", errResp.Code)

	var history []dto.HistoryEventResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/subjects/"+order.ID+"/history", corte, nil, &history))
	assert.Len(t, history, 3)
}

func TestAPI_ErroresMapeados(t *testing.T) {
	app := buildAPI(t)
	corte := tokenFor(t, "u-corte", "corte", "operador")
	bordado := tokenFor(t, "u-bordado", "bordado", "operador")

	var errResp dto.ErrorResponse
	status := call(t, app, http.MethodPost, "/api/orders", bordado,
		dto.CreateOrderRequest{Client: "X", Model: "Y", TotalPieces: 10}, &errResp)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errResp.Code)

	status = call(t, app, http.MethodPost, "/api/orders", corte,
		dto.CreateOrderRequest{Client: "X", Model: "Y", TotalPieces: 0}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errResp.Code)
	assert.Contains(t, errResp.Fields, "total_pieces")

	var order dto.OrderResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/orders", corte,
		dto.CreateOrderRequest{Client: "X", Model: "Y", TotalPieces: 10}, &order))

	status = call(t, app, http.MethodPost, "/api/transfers", corte,
		dto.ProposeTransferRequest{SubjectID: order.ID, FromArea: "corte", ToArea: "bordado", Pieces: 11}, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_PIECES", errResp.Code)

	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/transfers", corte,
		dto.ProposeTransferRequest{SubjectID: order.ID, FromArea: "corte", ToArea: "bordado", Pieces: 2}, nil))
	status = call(t, app, http.MethodPost, "/api/transfers", corte,
		dto.ProposeTransferRequest{SubjectID: order.ID, FromArea: "corte", ToArea: "bordado", Pieces: 2}, &errResp)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", errResp.Code)

	status = call(t, app, http.MethodGet, "/api/orders/00000000-0000-0000-0000-00000000dead", corte, nil, &errResp)
	assert.Equal(t, http.StatusNotFound, status)

	status = call(t, app, http.MethodPost, "/api/orders", "", dto.CreateOrderRequest{}, &errResp)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_LoginYAltaDeUsuarios(t *testing.T) {
	app := buildAPI(t)

	var errResp dto.ErrorResponse
	status := call(t, app, http.MethodPost, "/api/auth/login", "",
		dto.LoginRequest{Email: adminEmail, Password: "incorrecta"}, &errResp)
	assert.Equal(t, http.StatusUnauthorized, status)

	var login dto.LoginResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/auth/login", "",
		dto.LoginRequest{Email: adminEmail, Password: adminPassword}, &login))
	require.NotEmpty(t, login.Token)
	adminToken := "Bearer " + login.Token

	var user dto.UserResponse
	status = call(t, app, http.MethodPost, "/api/users", adminToken, dto.CreateUserRequest{
		Email: "bordado@taller.test", Password: "bordado-123", Name: "Operadora Bordado", Area: "Bordado",
	}, &user)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "bordado", user.Area)

	status = call(t, app, http.MethodPost, "/api/users", adminToken, dto.CreateUserRequest{
		Email: "bordado@taller.test", Password: "bordado-123", Name: "Otra", Area: "bordado",
	}, &errResp)
	assert.Equal(t, http.StatusConflict, status)

	operador := tokenFor(t, "u-corte", "corte", "operador")
	status = call(t, app, http.MethodPost, "/api/users", operador, dto.CreateUserRequest{
		Email: "x@taller.test", Password: "12345678", Name: "X", Area: "corte",
	}, &errResp)
	assert.Equal(t, http.StatusForbidden, status)

	var users []dto.UserResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/users?area=bordado", adminToken, nil, &users))
	assert.Len(t, users, 1)
}

func TestAPI_AreasYHealth(t *testing.T) {
	app := buildAPI(t)

	var areas []dto.AreaResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/areas", "", nil, &areas))
	assert.NotEmpty(t, areas)

	var health map[string]string
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/health", "", nil, &health))
	assert.Equal(t, "ok", health["status"])
}
