package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/symptomcheck/internal/credential"
	"github.com/Skufu/symptomcheck/internal/prediction"
	"github.com/Skufu/symptomcheck/internal/store"
)

// apiKeyHeader carries a key entered or selected in the browser.
const apiKeyHeader = "X-Goog-Api-Key"

// recordTimeout bounds how long a response waits on the event recorder.
const recordTimeout = 2 * time.Second

type handler struct {
	predictor Predictor
	creds     Credentials
	sessions  credential.SessionStore
	recorder  store.Recorder
	logger    *slog.Logger
	inflight  *inFlight
}

type errorBody struct {
	Error           string `json:"error"`
	Message         string `json:"message"`
	CredentialReset bool   `json:"credentialReset,omitempty"`
}

type credentialState struct {
	Mode      credential.Mode `json:"mode"`
	Ready     bool            `json:"ready"`
	ServerKey bool            `json:"serverKey"`
}

func (h *handler) symptoms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"symptoms": prediction.SymptomList})
}

func (h *handler) credentialStatus(c *gin.Context) {
	mode := h.creds.Mode()
	status := credentialState{Mode: mode, ServerKey: h.creds.HasServerKey()}

	switch mode {
	case credential.ModeEnv:
		status.Ready = status.ServerKey
	case credential.ModeHost:
		ready, err := h.sessions.Ready(c.Request.Context(), sessionID(c))
		if err != nil {
			h.logger.Error("session lookup failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, errorBody{Error: "session_unavailable", Message: "Could not check API key status. Please try again later."})
			return
		}
		status.Ready = ready
	}

	c.JSON(http.StatusOK, status)
}

// selectCredential records that the user picked a key in the host selector.
func (h *handler) selectCredential(c *gin.Context) {
	if !h.creds.Mode().UsesSession() {
		c.JSON(http.StatusBadRequest, errorBody{Error: "unsupported_mode", Message: "Key selection is not used in this deployment."})
		return
	}
	if err := h.sessions.MarkReady(c.Request.Context(), sessionID(c)); err != nil {
		h.logger.Error("session mark ready failed", "err", err)
		c.JSON(http.StatusServiceUnavailable, errorBody{Error: "session_unavailable", Message: "Could not save API key status. Please try again later."})
		return
	}
	c.JSON(http.StatusOK, credentialState{Mode: h.creds.Mode(), Ready: true, ServerKey: h.creds.HasServerKey()})
}

func (h *handler) predict(c *gin.Context) {
	var req prediction.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid_payload", Message: "invalid payload"})
		return
	}

	sid := sessionID(c)
	if !h.inflight.acquire(sid) {
		c.JSON(http.StatusConflict, errorBody{Error: "in_flight", Message: "A prediction is already in progress."})
		return
	}
	defer h.inflight.release(sid)

	started := time.Now()
	result, err := h.predictor.Predict(c.Request.Context(), req, c.GetHeader(apiKeyHeader))
	h.record(c.Request.Context(), req, result, err, time.Since(started))

	if err != nil {
		kind := prediction.Classify(err)
		body := errorBody{Error: errorCode(kind), Message: kind.Message()}
		if kind == prediction.KindCredential {
			body.CredentialReset = true
			h.resetSession(c.Request.Context(), sid)
		}
		c.JSON(statusFor(kind), body)
		return
	}

	if result.Predictions == nil {
		result.Predictions = []prediction.Prediction{}
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) resetSession(ctx context.Context, sid string) {
	if !h.creds.Mode().UsesSession() {
		return
	}
	if err := h.sessions.Invalidate(ctx, sid); err != nil {
		h.logger.Error("session invalidate failed", "err", err)
	}
}

func (h *handler) record(ctx context.Context, req prediction.Request, result *prediction.Result, err error, d time.Duration) {
	n := req.Normalize()
	e := store.Event{
		SymptomCount: len(n.Symptoms),
		HasFreeText:  n.OtherSymptoms != "",
		Outcome:      "ok",
		Duration:     d,
	}
	if err != nil {
		e.Outcome = string(prediction.Classify(err))
	} else if result != nil {
		e.PredictionCount = len(result.Predictions)
	}

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if rerr := h.recorder.Record(rctx, e); rerr != nil {
		h.logger.Warn("record prediction event failed", "err", rerr)
	}
}

func errorCode(kind prediction.Kind) string {
	if kind == prediction.KindValidation {
		return "validation_failed"
	}
	return string(kind)
}

func statusFor(kind prediction.Kind) int {
	switch kind {
	case prediction.KindValidation:
		return http.StatusUnprocessableEntity
	case prediction.KindCredential:
		return http.StatusUnauthorized
	case prediction.KindEmptyResponse, prediction.KindMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusServiceUnavailable
	}
}
