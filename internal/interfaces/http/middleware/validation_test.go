package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	RUT      string `json:"rut" binding:"required,rut"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
	Password string `json:"password" binding:"required,min=8"`
	Age      int    `json:"age" binding:"omitempty,gte=18"`
}

func bindRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/signup", func(c *gin.Context) {
		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fields := BindingErrors(err)
			if fields == nil {
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(fields, ""))
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func postSignup(t *testing.T, body string) (int, map[string][]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	bindRouter().ServeHTTP(w, req)

	if w.Code == http.StatusOK {
		return w.Code, nil
	}
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	return w.Code, resp.Error.Fields
}

func TestBindingErrors(t *testing.T) {
	t.Run("valid payload binds", func(t *testing.T) {
		code, _ := postSignup(t, `{"email":"ana@example.cl","rut":"12.345.678-5","phone":"+56 9 1234 5678","password":"secret123"}`)
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("reports every failing field by json name", func(t *testing.T) {
		code, fields := postSignup(t, `{"email":"nope","rut":"12345678","phone":"12ab","password":"short","age":12}`)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, []string{"Invalid email format"}, fields["email"])
		assert.Equal(t, []string{"Invalid RUT, expected e.g. 12.345.678-9"}, fields["rut"])
		assert.Equal(t, []string{"Invalid phone number"}, fields["phone"])
		assert.Equal(t, []string{"Must be at least 8 characters"}, fields["password"])
		assert.Equal(t, []string{"Must be greater than or equal to 18"}, fields["age"])
	})

	t.Run("missing required fields", func(t *testing.T) {
		_, fields := postSignup(t, `{}`)
		for _, name := range []string{"email", "rut", "password"} {
			assert.Equal(t, []string{"This field is required"}, fields[name], name)
		}
		assert.NotContains(t, fields, "phone")
	})

	t.Run("wrong json type", func(t *testing.T) {
		_, fields := postSignup(t, `{"email":"ana@example.cl","rut":"12.345.678-5","password":"secret123","age":"old"}`)
		assert.Contains(t, fields, "age")
	})

	t.Run("malformed json", func(t *testing.T) {
		_, fields := postSignup(t, `{"email":}`)
		assert.Contains(t, fields, "body")

		_, fields = postSignup(t, `{"email":`)
		assert.Contains(t, fields, "body")
	})

	t.Run("unrelated errors are not field errors", func(t *testing.T) {
		assert.Nil(t, BindingErrors(assert.AnError))
	})
}
