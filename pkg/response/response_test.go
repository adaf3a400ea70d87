package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

func TestFlashRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/alunos/adicionar", nil)

	RedirectWithFlash(c, "/alunos", FlashSuccess, "Aluno cadastrado | ok")
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/alunos", w.Header().Get("Location"))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Request = httptest.NewRequest(http.MethodGet, "/alunos", nil)
	c2.Request.AddCookie(cookies[0])

	flash := PopFlash(c2)
	require.NotNil(t, flash)
	assert.Equal(t, FlashSuccess, flash.Kind)
	assert.Equal(t, "Aluno cadastrado | ok", flash.Message)
	assert.Contains(t, w2.Header().Get("Set-Cookie"), FlashCookie+"=;")
}

func TestPopFlashWithoutCookie(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, PopFlash(c))
}

func TestErrorMessageHidesInternalDetails(t *testing.T) {
	assert.Equal(t, GenericErrorMessage, ErrorMessage(errors.New("pq: connection refused")))
	assert.Equal(t, "student not found", ErrorMessage(appErrors.Clone(appErrors.ErrNotFound, "student not found")))
}

func TestDownloadSetsAttachment(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Download(c, "report.csv", "text/csv", []byte("a,b\n"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="report.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", w.Body.String())
}
