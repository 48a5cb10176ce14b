package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestUrlFor(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "http://salas.local/", nil)

	if got := UrlFor(c, "", "sala/1/"); got != "http://salas.local/sala/1/" {
		t.Errorf("autodetected url = %q", got)
	}

	c.Request.Header.Set("X-Forwarded-Proto", "https")
	if got := UrlFor(c, "", "/"); got != "https://salas.local/" {
		t.Errorf("proxied url = %q", got)
	}

	if got := UrlFor(c, "https://example.org/", "/sala/2/"); got != "https://example.org/sala/2/" {
		t.Errorf("configured url = %q", got)
	}
}
