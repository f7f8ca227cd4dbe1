package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func contextWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/files?"+query, nil)

	return c
}

func TestFromQuery(t *testing.T) {
	tests := []struct {
		query string
		want  Params
	}{
		{"", Params{Limit: 20, Offset: 0}},
		{"limit=5&offset=10", Params{Limit: 5, Offset: 10}},
		{"limit=500", Params{Limit: 100, Offset: 0}},
		{"limit=abc&offset=-3", Params{Limit: 20, Offset: 0}},
		{"limit=0&offset=7", Params{Limit: 20, Offset: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, FromQuery(contextWithQuery(tt.query), 20, 100))
		})
	}
}

func TestNewMeta(t *testing.T) {
	assert.True(t, NewMeta(Params{Limit: 20, Offset: 0}, 21).HasMore)
	assert.False(t, NewMeta(Params{Limit: 20, Offset: 0}, 20).HasMore)
	assert.False(t, NewMeta(Params{Limit: 20, Offset: 40}, 3).HasMore)
}
