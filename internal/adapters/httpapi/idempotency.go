package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/aquaclean/carwash-api/internal/app/apperr"
	"github.com/aquaclean/carwash-api/internal/domain"
	"github.com/aquaclean/carwash-api/internal/ports/out/idempotency"
)

const idempotencyKeyHeader = "Idempotency-Key"

// hashBody fingerprints a canonicalized request payload.
func hashBody(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// idempotent runs do at most once per (key, user, route, body):
//   - same key and body replays the stored 2xx response
//   - same key with a different body is rejected with 409
//
// Requests without an Idempotency-Key header always run do.
func (s *Server) idempotent(w http.ResponseWriter, r *http.Request, route string, user domain.UserID, bodyHash string, do func() (int, any, error)) {
	key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
	if key == "" || s.Idem == nil {
		s.respond(w, r, do)
		return
	}
	ctx := r.Context()

	metaFP := idempotency.Fingerprint{
		Key:      idempotency.Key(key),
		User:     user,
		Method:   r.Method,
		Route:    route,
		BodyHash: "",
	}
	if meta, ok, err := s.Idem.Get(ctx, metaFP); err != nil {
		writeServiceError(w, r, s.Log, err)
		return
	} else if ok {
		if string(meta.Body) != bodyHash {
			writeError(w, r, http.StatusConflict, apperr.CodeIdempotencyKeyReuse, "idempotency key reuse with different payload", nil)
			return
		}
	} else {
		if err := s.Idem.Put(ctx, metaFP, idempotency.Record{
			StatusCode:  0,
			ContentType: "text/plain",
			Body:        []byte(bodyHash),
			CreatedAt:   s.Clock.Now(),
		}); err != nil {
			s.Log.Warn("store idempotency fingerprint failed", zap.String("route", route), zap.Error(err))
		}
	}

	respFP := metaFP
	respFP.BodyHash = bodyHash
	if rec, ok, err := s.Idem.Get(ctx, respFP); err != nil {
		writeServiceError(w, r, s.Log, err)
		return
	} else if ok && rec.StatusCode >= 200 && rec.StatusCode < 300 && strings.HasPrefix(rec.ContentType, "application/json") {
		w.Header().Set("Content-Type", rec.ContentType)
		w.Header().Set("Idempotent-Replayed", "true")
		w.WriteHeader(rec.StatusCode)
		_, _ = w.Write(rec.Body)
		return
	}

	status, payload, err := do()
	if err != nil {
		writeServiceError(w, r, s.Log, err)
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		writeServiceError(w, r, s.Log, err)
		return
	}
	if err := s.Idem.Put(ctx, respFP, idempotency.Record{
		StatusCode:  status,
		ContentType: "application/json",
		Body:        b,
		CreatedAt:   s.Clock.Now(),
	}); err != nil {
		s.Log.Warn("store idempotent response failed", zap.String("route", route), zap.Error(err))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, do func() (int, any, error)) {
	status, payload, err := do()
	if err != nil {
		writeServiceError(w, r, s.Log, err)
		return
	}
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, payload)
}
