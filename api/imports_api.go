package api

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/inlethq/inlet"
	model2 "github.com/inlethq/inlet/api/model"
	"github.com/inlethq/inlet/internal/apierror"
	"github.com/inlethq/inlet/model"
)

// uploadFile pulls the spreadsheet out of the multipart form.
func uploadFile(c *gin.Context) (multipart.File, string, error) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	return file, header.Filename, nil
}

// respondWithRun writes the run result. A failed parse still recorded a run,
// so the caller gets both the error and the run reference.
func respondWithRun(c *gin.Context, run *model.ImportRun, err error) {
	if err != nil {
		status := http.StatusInternalServerError
		code := apierror.ErrInternalServer
		var parseErr *inlet.ParseError
		if errors.As(err, &parseErr) {
			status = http.StatusBadRequest
			code = apierror.ErrBadRequest
			if strings.Contains(parseErr.Reason, "unsupported file type") {
				status = http.StatusUnsupportedMediaType
				code = apierror.ErrUnsupportedMedia
			}
		}
		resp := gin.H{"error": apierror.NewAPIError(code, err.Error(), nil)}
		if run != nil {
			resp["import_id"] = run.ImportID
		}
		c.JSON(status, resp)
		return
	}
	c.JSON(http.StatusOK, model2.ToImportRunResponse(run))
}

// ImportContacts handles the contact sheet upload for a project
func (a Api) ImportContacts(c *gin.Context) {
	var req model2.ImportRequest
	req.ProjectID = c.PostForm("project_id")

	file, fileName, err := uploadFile(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File upload failed"})
		return
	}
	defer file.Close()
	req.FileName = fileName

	if err := req.ValidateImportRequest(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run, err := a.inlet.ImportContacts(c.Request.Context(), req.ProjectID, file, fileName)
	respondWithRun(c, run, err)
}

// ImportVisionModels handles the vision model sheet upload for a project
func (a Api) ImportVisionModels(c *gin.Context) {
	var req model2.ImportRequest
	req.ProjectID = c.PostForm("project_id")

	file, fileName, err := uploadFile(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File upload failed"})
		return
	}
	defer file.Close()
	req.FileName = fileName

	if err := req.ValidateImportRequest(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run, err := a.inlet.ImportVisionModels(c.Request.Context(), req.ProjectID, file, fileName)
	respondWithRun(c, run, err)
}

// BulkUpdateAccounts handles the account info sheet upload
func (a Api) BulkUpdateAccounts(c *gin.Context) {
	file, fileName, err := uploadFile(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File upload failed"})
		return
	}
	defer file.Close()

	req := model2.BulkUpdateRequest{FileName: fileName}
	if err := req.ValidateBulkUpdateRequest(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run, err := a.inlet.BulkUpdateAccounts(c.Request.Context(), file, fileName)
	respondWithRun(c, run, err)
}

// GetImportRun returns a previously recorded import run
func (a Api) GetImportRun(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /imports/:id"})
		return
	}

	run, err := a.inlet.GetImportRun(c.Request.Context(), id)
	if err != nil {
		logrus.Error(err)
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, model2.ToImportRunResponse(run))
}
