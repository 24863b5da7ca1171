package handler

import (
	"encoding/json"
	"testing"

	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-assistant-go/internal/agent"
	"cv-assistant-go/internal/types"
)

func TestHandleDataUnknownSession(t *testing.T) {
	mock := agent.NewMockChatClient(testGreeting, nil)
	h, _ := newTestApp(t, mock)

	w := ut.PerformRequest(h.Engine, "GET", "/api/v1/cv/data?sessionId=desconocido", nil)

	assert.Equal(t, 404, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Session not found", body["error"])
}

func TestHandleDataReturnsRecord(t *testing.T) {
	mock := agent.NewMockChatClient(testGreeting, nil)
	h, store := newTestApp(t, mock)

	sess := types.NewSession("user-1")
	sess.CVData.Personal.Name = "Ana García"
	sess.CVData.Skills.Technical = []string{"Go"}
	store.Put("user-1", sess)

	w := ut.PerformRequest(h.Engine, "GET", "/api/v1/cv/data?sessionId=user-1", nil)

	assert.Equal(t, 200, w.Code)
	var record types.CVRecord
	require.NoError(t, json.Unmarshal(w.Result().Body(), &record))
	assert.Equal(t, "Ana García", record.Personal.Name)
	assert.Equal(t, []string{"Go"}, record.Skills.Technical)
	assert.NotNil(t, record.Education, "空切片应序列化为[]而不是null")
}

func TestHandleRenderPDFUnknownSession(t *testing.T) {
	mock := agent.NewMockChatClient(testGreeting, nil)
	h, _ := newTestApp(t, mock)

	w := ut.PerformRequest(h.Engine, "GET", "/api/v1/cv/desconocido/pdf", nil)

	assert.Equal(t, 404, w.Code)
}

func TestHandleRenderPDFIncomplete(t *testing.T) {
	mock := agent.NewMockChatClient(testGreeting, nil)
	h, store := newTestApp(t, mock)

	// 只有姓名：三个内容部分都缺
	sess := types.NewSession("user-1")
	sess.CVData.Personal.Name = "Ana"
	store.Put("user-1", sess)

	w := ut.PerformRequest(h.Engine, "GET", "/api/v1/cv/user-1/pdf", nil)

	assert.Equal(t, 400, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "El CV está incompleto para generar el PDF", body["error"])
	assert.ElementsMatch(t, []interface{}{"education", "experience", "skills"}, body["missingSections"])
}

func TestHandleRenderPDFSuccess(t *testing.T) {
	mock := agent.NewMockChatClient(testGreeting, nil)
	h, store := newTestApp(t, mock)

	sess := types.NewSession("user-1")
	sess.CVData.Personal.Name = "Ana María García"
	sess.CVData.Education = []types.EducationEntry{{Degree: "Grado", University: "UCM"}}
	sess.CVData.Experience = []types.ExperienceEntry{{Position: "Dev", Company: "Acme"}}
	sess.CVData.Skills.Technical = []string{"Go"}
	store.Put("user-1", sess)

	w := ut.PerformRequest(h.Engine, "GET", "/api/v1/cv/user-1/pdf", nil)

	assert.Equal(t, 200, w.Code)
	resp := w.Result()
	assert.Equal(t, "application/pdf", string(resp.Header.ContentType()))
	assert.Equal(t, "attachment; filename=CV_Ana_María_García.pdf",
		string(resp.Header.Get("Content-Disposition")))

	pdfBytes := resp.Body()
	require.NotEmpty(t, pdfBytes)
	assert.Equal(t, "%PDF", string(pdfBytes[:4]))
}

func TestPDFFilename(t *testing.T) {
	assert.Equal(t, "CV_Ana_García.pdf", pdfFilename("Ana García"))
	assert.Equal(t, "CV_Ana_María.pdf", pdfFilename("Ana \t María"))
	assert.Equal(t, "CV.pdf", pdfFilename(""))
}
