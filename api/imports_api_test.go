package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/inlethq/inlet"
	model2 "github.com/inlethq/inlet/api/model"
	"github.com/inlethq/inlet/config"
	"github.com/inlethq/inlet/database/mocks"
	"github.com/inlethq/inlet/model"
)

func newTestRouter(t *testing.T, mockDS *mocks.MockDataSource) http.Handler {
	t.Helper()
	config.MockConfig(&config.Configuration{
		ProjectName: "Inlet Test",
		Server:      config.ServerConfig{Port: "5401"},
		DataSource:  config.DataSourceConfig{Dns: "postgres://test"},
	})

	service, err := inlet.NewInlet(mockDS)
	assert.NoError(t, err)
	return NewAPI(service).Router()
}

func multipartUpload(t *testing.T, fields map[string]string, fileName, fileContent string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		assert.NoError(t, writer.WriteField(k, v))
	}
	part, err := writer.CreateFormFile("file", fileName)
	assert.NoError(t, err)
	_, err = part.Write([]byte(fileContent))
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestImportContactsEndpoint(t *testing.T) {
	mockDS := new(mocks.MockDataSource)
	mockDS.On("GetContactCandidates", mock.Anything).Return([]model.Candidate{}, nil)
	mockDS.On("RecordImportRun", mock.Anything, mock.Anything).Return(nil)
	mockDS.On("UpdateImportRun", mock.Anything, mock.Anything).Return(nil)
	mockDS.On("CreateContact", mock.Anything, mock.Anything).Return("ctc_1", nil)
	mockDS.On("LinkContactToProject", mock.Anything, "ctc_1", "prj_1").Return(nil)

	router := newTestRouter(t, mockDS)

	body, contentType := multipartUpload(t, map[string]string{"project_id": "prj_1"}, "contacts.csv",
		"Name,Phone,Primary_Email,Roles\nJordan Hale,555-0101,jordan@example.com,engineer\n")

	req := httptest.NewRequest("POST", "/imports/contacts", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var got model2.ImportRunResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, "contacts", got.Flow)
	assert.NotNil(t, got.Report)
	assert.Equal(t, 1, got.Report.Created)
}

func TestImportContactsEndpointMissingProject(t *testing.T) {
	mockDS := new(mocks.MockDataSource)
	router := newTestRouter(t, mockDS)

	body, contentType := multipartUpload(t, nil, "contacts.csv", "Name,Phone,Primary_Email,Roles\n")

	req := httptest.NewRequest("POST", "/imports/contacts", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	mockDS.AssertNotCalled(t, "RecordImportRun", mock.Anything, mock.Anything)
}

func TestImportContactsEndpointMissingFile(t *testing.T) {
	mockDS := new(mocks.MockDataSource)
	router := newTestRouter(t, mockDS)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	assert.NoError(t, writer.WriteField("project_id", "prj_1"))
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/imports/contacts", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestImportContactsEndpointUnparsableFile(t *testing.T) {
	mockDS := new(mocks.MockDataSource)
	mockDS.On("GetContactCandidates", mock.Anything).Return([]model.Candidate{}, nil)
	mockDS.On("RecordImportRun", mock.Anything, mock.Anything).Return(nil)
	mockDS.On("UpdateImportRun", mock.Anything, mock.Anything).Return(nil)

	router := newTestRouter(t, mockDS)

	body, contentType := multipartUpload(t, map[string]string{"project_id": "prj_1"}, "notes.txt",
		"just some prose, nothing tabular")

	req := httptest.NewRequest("POST", "/imports/contacts", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, resp.Code)
}

func TestBulkUpdateAccountsEndpoint(t *testing.T) {
	mockDS := new(mocks.MockDataSource)
	mockDS.On("GetAccountCandidates", mock.Anything).Return([]model.Candidate{
		{ID: "acc_1", DisplayName: "AquaScot Seafood Ltd", CompareFields: []string{"AquaScot Seafood Ltd"}},
	}, nil)
	mockDS.On("RecordImportRun", mock.Anything, mock.Anything).Return(nil)
	mockDS.On("UpdateImportRun", mock.Anything, mock.Anything).Return(nil)
	mockDS.On("UpdateAccountInfo", mock.Anything, "acc_1", mock.Anything).Return(nil)

	router := newTestRouter(t, mockDS)

	body, contentType := multipartUpload(t, nil, "accounts.csv",
		"Company_Name,Status,Health_Score,Renewal_Date\nAqua-Scot,active,82,15/06/2026\n")

	req := httptest.NewRequest("POST", "/imports/accounts", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var got model2.ImportRunResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Report.Updated)
}

func TestGetImportRunEndpoint(t *testing.T) {
	mockDS := new(mocks.MockDataSource)
	stored := &model.ImportRun{ImportID: "imp_1", Flow: "contacts", Status: "completed"}
	mockDS.On("GetImportRun", mock.Anything, "imp_1").Return(stored, nil)

	router := newTestRouter(t, mockDS)

	req := httptest.NewRequest("GET", "/imports/imp_1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var got model2.ImportRunResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, "imp_1", got.ImportID)
}
