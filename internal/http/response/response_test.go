package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/kiosk-backend/internal/platform/apierr"
)

func TestRespondAPIError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
		code   string
		msg    string
	}{
		{apierr.NotFound("node.get", "node not found"), http.StatusNotFound, "not_found", "node not found"},
		{apierr.Validation("node.create", "title is required"), http.StatusBadRequest, "validation", "title is required"},
		{apierr.Storage("upload.put", errors.New("bucket gone")), http.StatusBadGateway, "storage", "bucket gone"},
		{errors.New("pq: secret detail"), http.StatusInternalServerError, "internal", "internal error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		RespondAPIError(c, tc.err)

		if rec.Code != tc.status {
			t.Fatalf("%v: status want=%d got=%d", tc.err, tc.status, rec.Code)
		}
		var env ErrorEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.Error.Code != tc.code || env.Error.Message != tc.msg {
			t.Fatalf("%v: envelope got=%+v", tc.err, env.Error)
		}
	}
}
